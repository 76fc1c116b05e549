package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/qgen/internal/qgen"
)

type okEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, okEnvelope{Success: true, Data: data})
}

// respondError maps err to its error code and HTTP status.
func respondError(c *gin.Context, err error) {
	code := qgen.ErrorCode(err)
	env := errorEnvelope{Error: err.Error(), Code: code}
	var verr *qgen.ValidationError
	if errors.As(err, &verr) {
		env.Field = verr.Field
	}
	_ = c.Error(err)
	c.JSON(statusFor(code), env)
}

// statusFor is the single place error codes become HTTP statuses. Caller
// mistakes and unmatched skills are 400; everything else is a server-side
// failure.
func statusFor(code string) int {
	switch code {
	case qgen.CodeValidation,
		qgen.CodeNoCompatibleContext,
		qgen.CodeNoCompatibleGoal,
		qgen.CodeNoCompatibleTemplate:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
