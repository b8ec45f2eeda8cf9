package server

import (
	"net/http"

	"github.com/aquameter/aquameter/pkg/apperror"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AbortWithError translates the error taxonomy into HTTP. Consistency
// failures are logged with the full cause before the generic 500 goes
// out; everything else is safe to echo.
func AbortWithError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	code := apperror.CodeOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperror.KindValidation:
		status = http.StatusBadRequest
	case apperror.KindNotFound:
		status = http.StatusNotFound
	case apperror.KindConflict:
		status = http.StatusConflict
	case apperror.KindExternal:
		status = http.StatusBadGateway
	case apperror.KindConsistency:
		if log, ok := c.Get(contextLoggerKey); ok {
			log.(*zap.Logger).Error("internal inconsistency",
				zap.String("code", code),
				zap.Error(err),
			)
		}
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": publicMessage(kind, err),
		},
	})
}

func publicMessage(kind apperror.Kind, err error) string {
	if kind == apperror.KindConsistency {
		return "internal error"
	}
	return err.Error()
}

func newValidationError(field, code, message string) error {
	return apperror.Validation(code, field+": "+message)
}
