package server

import (
	propertydomain "github.com/aquameter/aquameter/internal/property/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func paramID(c *gin.Context, name string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(c.Param(name))
	if err != nil {
		AbortWithError(c, newValidationError(name, "invalid_id", "must be a valid id"))
		return 0, false
	}
	return id, true
}

// @Summary      Create property
// @Tags         property
// @Accept       json
// @Produce      json
// @Param        request body propertydomain.CreateRequest true "Create Property Request"
// @Success      200  {object}  propertydomain.Property
// @Router       /properties [post]
func (s *Server) CreateProperty(c *gin.Context) {
	var req propertydomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_body", err.Error()))
		return
	}

	property, err := s.propertysvc.Create(c.Request.Context(), accountFrom(c).ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, property)
}

// @Summary      List properties
// @Tags         property
// @Produce      json
// @Success      200  {array}  propertydomain.Property
// @Router       /properties [get]
func (s *Server) ListProperties(c *gin.Context) {
	properties, err := s.propertysvc.ListByOwner(c.Request.Context(), accountFrom(c).ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, properties)
}

// @Summary      Get property
// @Tags         property
// @Produce      json
// @Param        id   path      string  true  "Property ID"
// @Success      200  {object}  propertydomain.Property
// @Router       /properties/{id} [get]
func (s *Server) GetProperty(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	property, err := s.propertysvc.Get(c.Request.Context(), accountFrom(c).ID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, property)
}

// @Summary      Update property rates
// @Description  Change standing rates; issued bills keep their amounts
// @Tags         property
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Property ID"
// @Param        request body propertydomain.UpdateRatesRequest true "Update Rates Request"
// @Success      200  {object}  propertydomain.Property
// @Router       /properties/{id}/rates [patch]
func (s *Server) UpdatePropertyRates(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req propertydomain.UpdateRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_body", err.Error()))
		return
	}

	property, err := s.propertysvc.UpdateRates(c.Request.Context(), accountFrom(c).ID, id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, property)
}
