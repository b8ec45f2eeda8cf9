package server

import (
	"net/http"
	"strings"

	identitydomain "github.com/aquameter/aquameter/internal/identity/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const (
	accountIDHeader   = "X-Account-ID"
	contextAccountKey = "account"
)

// AccountRequired resolves the caller from the X-Account-ID header.
// Role checks stay in the services; this middleware only establishes
// who is calling.
func (s *Server) AccountRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(accountIDHeader))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "unauthorized", "message": "X-Account-ID header is required"},
			})
			return
		}

		id, err := snowflake.ParseString(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "unauthorized", "message": "X-Account-ID is not a valid id"},
			})
			return
		}

		account, err := s.identitysvc.Get(c.Request.Context(), id)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "unauthorized", "message": "unknown account"},
			})
			return
		}

		c.Set(contextAccountKey, account)
		c.Next()
	}
}

func accountFrom(c *gin.Context) *identitydomain.Account {
	v, ok := c.Get(contextAccountKey)
	if !ok {
		return nil
	}
	return v.(*identitydomain.Account)
}
