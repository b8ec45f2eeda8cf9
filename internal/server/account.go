package server

import (
	"strings"

	identitydomain "github.com/aquameter/aquameter/internal/identity/domain"
	"github.com/gin-gonic/gin"
)

// @Summary      Register an account
// @Description  Create an owner or tenant account
// @Tags         identity
// @Accept       json
// @Produce      json
// @Param        request body identitydomain.RegisterRequest true "Register Request"
// @Success      200  {object}  identitydomain.Account
// @Router       /signup [post]
func (s *Server) Signup(c *gin.Context) {
	var req identitydomain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_body", err.Error()))
		return
	}

	account, err := s.identitysvc.Register(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, account)
}

// @Summary      Current account
// @Tags         identity
// @Produce      json
// @Success      200  {object}  identitydomain.Account
// @Router       /me [get]
func (s *Server) Me(c *gin.Context) {
	respondData(c, accountFrom(c))
}

type bindRequest struct {
	FlatCode string `json:"flat_code" binding:"required"`
}

// @Summary      Bind to a flat
// @Description  Attach the calling tenant to the flat matching the invite code
// @Tags         tenancy
// @Accept       json
// @Produce      json
// @Param        request body bindRequest true "Bind Request"
// @Success      200  {object}  flatdomain.Flat
// @Router       /bind [post]
func (s *Server) BindFlat(c *gin.Context) {
	var req bindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("flat_code", "required", "flat_code is required"))
		return
	}

	flat, err := s.tenancysvc.Bind(c.Request.Context(), accountFrom(c).ID, strings.TrimSpace(req.FlatCode))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, flat)
}
