// Package apierr maps engine errors onto HTTP responses.
package apierr

import (
	"errors"
	"net/http"
	"strconv"

	"blocks-cms/internal/domain/errs"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type FieldDTO struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Status returns the HTTP status for err.
func Status(err error) int {
	switch {
	case errors.Is(err, errs.ErrUniqueConstraintViolation), errors.Is(err, errs.ErrPublishConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrNotFound), errors.Is(err, errs.ErrUnknownModel):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrValidation):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// Write aborts the request with the response for err.
func Write(c *gin.Context, err error) {
	status := Status(err)
	body := gin.H{"error": http.StatusText(status), "details": err.Error()}

	var failures errs.ValidationErrors
	if errors.As(err, &failures) {
		fields := make([]FieldDTO, 0, len(failures))
		for _, fe := range failures {
			fields = append(fields, FieldDTO{Field: fe.Field, Reason: fe.Reason})
		}
		body["fields"] = fields
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		body["details"] = "internal error"
	}
	c.AbortWithStatusJSON(status, body)
}

// BadRequest aborts with a 400 for malformed input.
func BadRequest(c *gin.Context, msg string, err error) {
	body := gin.H{"error": msg}
	if err != nil {
		body["details"] = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}

// UintParam reads a positive integer path parameter. It writes the 400
// itself and reports false when the parameter is malformed.
func UintParam(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		BadRequest(c, "Invalid "+name, nil)
		return 0, false
	}
	return uint(n), true
}
