package apperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Status maps an error to its HTTP status code.
func Status(e *Error) int {
	switch e.Code {
	case CodeTokenNotFound, CodeInvalidCredentials:
		// token lookups and password checks never reveal more than "bad request"
		return http.StatusBadRequest
	case CodeForbidden:
		return http.StatusForbidden
	}

	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err as {"error": code, "message": message} and aborts the
// request. The wrapped cause is never sent to the client.
func Respond(c *gin.Context, err error) {
	e := From(err)
	if e.Err != nil {
		_ = c.Error(e.Err)
	}
	c.AbortWithStatusJSON(Status(e), gin.H{"error": e.Code, "message": e.Message})
}
