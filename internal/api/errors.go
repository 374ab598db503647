package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"example.com/shipstores/internal/domain"
)

// ErrorResponse defines the structure of an error response
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// statusForKind maps business error kinds onto HTTP statuses. Conflicting
// lifecycle operations are 409s; everything the caller can fix is a 4xx.
var statusForKind = map[domain.ErrorKind]int{
	domain.KindUnauthorized:           http.StatusForbidden,
	domain.KindInvalidTransition:      http.StatusConflict,
	domain.KindMissingSupplier:        http.StatusUnprocessableEntity,
	domain.KindImmutableState:         http.StatusConflict,
	domain.KindDeleteNotAllowed:       http.StatusConflict,
	domain.KindOverReceipt:            http.StatusUnprocessableEntity,
	domain.KindInvalidQuantity:        http.StatusUnprocessableEntity,
	domain.KindNotReceivable:          http.StatusConflict,
	domain.KindConcurrentModification: http.StatusConflict,
	domain.KindNotFound:               http.StatusNotFound,
	domain.KindValidation:             http.StatusBadRequest,
}

// WriteError translates an error into a JSON response. Unknown errors are
// logged and reported as opaque 500s.
func WriteError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	if status, ok := statusForKind[kind]; ok {
		c.AbortWithStatusJSON(status, ErrorResponse{
			Message: err.Error(),
			Code:    string(kind),
		})
		return
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled error")
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Message: "internal server error",
		Code:    string(domain.KindInternal),
	})
}

// WriteValidationError reports a malformed request body or parameter.
func WriteValidationError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Message: err.Error(),
		Code:    string(domain.KindValidation),
	})
}
