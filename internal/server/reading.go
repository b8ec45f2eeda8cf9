package server

import (
	"strconv"
	"strings"

	flatdomain "github.com/aquameter/aquameter/internal/flat/domain"
	readingdomain "github.com/aquameter/aquameter/internal/reading/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

// @Summary      Record reading
// @Description  Convert a new meter reading into a bill
// @Tags         reading
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Flat ID"
// @Param        request body readingdomain.RecordRequest true "Record Reading Request"
// @Success      200  {object}  readingdomain.Reading
// @Router       /flats/{id}/readings [post]
func (s *Server) RecordReading(c *gin.Context) {
	flatID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req readingdomain.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_body", err.Error()))
		return
	}

	reading, err := s.readingsvc.Record(c.Request.Context(), accountFrom(c).ID, flatID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, reading)
}

// @Summary      List readings
// @Tags         reading
// @Produce      json
// @Param        id          path   string  true   "Flat ID"
// @Param        page_token  query  string  false  "Page token"
// @Param        page_size   query  int     false  "Page size"
// @Success      200  {object}  readingdomain.ListResponse
// @Router       /flats/{id}/readings [get]
func (s *Server) ListReadings(c *gin.Context) {
	flatID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.visibleFlat(c, flatID); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.readingsvc.ListForFlat(c.Request.Context(), flatID, listRequestFromQuery(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, resp.Readings, &resp.PageInfo)
}

// visibleFlat checks the caller is the flat's bound tenant or the
// owner of its property. Strangers get not_found.
func (s *Server) visibleFlat(c *gin.Context, flatID snowflake.ID) error {
	account := accountFrom(c)
	if account.FlatID != nil && *account.FlatID == flatID {
		return nil
	}

	flat, err := s.flatsvc.Get(c.Request.Context(), flatID)
	if err != nil {
		return err
	}
	if _, err := s.propertysvc.Get(c.Request.Context(), account.ID, flat.PropertyID); err != nil {
		return flatdomain.ErrFlatNotFound
	}
	return nil
}

func listRequestFromQuery(c *gin.Context) readingdomain.ListRequest {
	req := readingdomain.ListRequest{
		PageToken: strings.TrimSpace(c.Query("page_token")),
		SortBy:    strings.TrimSpace(c.Query("sort_by")),
		OrderBy:   strings.TrimSpace(c.Query("order_by")),
	}
	if raw := c.Query("page_size"); raw != "" {
		if size, err := strconv.ParseInt(raw, 10, 32); err == nil {
			req.PageSize = int32(size)
		}
	}
	return req
}
