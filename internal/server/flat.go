package server

import (
	flatdomain "github.com/aquameter/aquameter/internal/flat/domain"
	tenancydomain "github.com/aquameter/aquameter/internal/tenancy/domain"
	"github.com/gin-gonic/gin"
)

// @Summary      Add flat
// @Description  Create a flat under a property; its invite code is derived from the property code and flat number
// @Tags         flat
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Property ID"
// @Param        request body flatdomain.AddFlatRequest true "Add Flat Request"
// @Success      200  {object}  flatdomain.Flat
// @Router       /properties/{id}/flats [post]
func (s *Server) AddFlat(c *gin.Context) {
	propertyID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req flatdomain.AddFlatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_body", err.Error()))
		return
	}

	flat, err := s.flatsvc.AddFlat(c.Request.Context(), accountFrom(c).ID, propertyID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, flat)
}

// @Summary      List flats
// @Tags         flat
// @Produce      json
// @Param        id   path      string  true  "Property ID"
// @Success      200  {array}  flatdomain.Flat
// @Router       /properties/{id}/flats [get]
func (s *Server) ListFlats(c *gin.Context) {
	propertyID, ok := paramID(c, "id")
	if !ok {
		return
	}

	flats, err := s.flatsvc.ListByProperty(c.Request.Context(), accountFrom(c).ID, propertyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, flats)
}

// @Summary      Delete flat
// @Description  Remove a vacant flat; occupied flats must be vacated first
// @Tags         flat
// @Param        id   path      string  true  "Flat ID"
// @Success      200
// @Router       /flats/{id} [delete]
func (s *Server) DeleteFlat(c *gin.Context) {
	flatID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := s.flatsvc.DeleteFlat(c.Request.Context(), accountFrom(c).ID, flatID); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"deleted": true})
}

type allowanceRequest struct {
	FreeWaterUnits float64 `json:"free_water_units"`
}

// @Summary      Set free allowance
// @Description  Standing input to future bills; past readings keep their snapshot
// @Tags         flat
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Flat ID"
// @Param        request body allowanceRequest true "Allowance Request"
// @Success      200  {object}  flatdomain.Flat
// @Router       /flats/{id}/allowance [patch]
func (s *Server) SetFreeAllowance(c *gin.Context) {
	flatID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req allowanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_body", err.Error()))
		return
	}

	flat, err := s.flatsvc.SetFreeAllowance(c.Request.Context(), accountFrom(c).ID, flatID, req.FreeWaterUnits)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, flat)
}

// @Summary      Vacate flat
// @Description  Remove the tenant and rotate the invite code in one commit
// @Tags         tenancy
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Flat ID"
// @Param        request body tenancydomain.UnbindRequest false "Unbind Request"
// @Success      200  {object}  flatdomain.Flat
// @Router       /flats/{id}/unbind [post]
func (s *Server) UnbindFlat(c *gin.Context) {
	flatID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req tenancydomain.UnbindRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, newValidationError("body", "invalid_body", err.Error()))
			return
		}
	}

	flat, err := s.tenancysvc.Unbind(c.Request.Context(), accountFrom(c).ID, flatID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, flat)
}
