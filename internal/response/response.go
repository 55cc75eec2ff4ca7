// Package response writes the uniform JSON envelope used by every endpoint.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	dom "vidtube/internal/domain"
)

// Success is the envelope of a successful call.
type Success struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
	Success    bool   `json:"success"`
}

// Failure is the envelope of a failed call. Data is always null.
type Failure struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Data       any      `json:"data"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

const genericMessage = "Something went wrong"

// OK writes a success envelope.
func OK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Success{StatusCode: status, Message: message, Data: data, Success: true})
}

// Fail writes a failure envelope for err and records err on the context for the request logger.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	f := failureFor(err)
	c.JSON(f.StatusCode, f)
}

// Abort is Fail for middleware: the handler chain stops.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	f := failureFor(err)
	c.AbortWithStatusJSON(f.StatusCode, f)
}

// StatusOf maps a domain error kind to its HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, dom.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, dom.ErrUnauthorized),
		errors.Is(err, dom.ErrInvalidToken),
		errors.Is(err, dom.ErrTokenStale):
		return http.StatusUnauthorized
	case errors.Is(err, dom.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, dom.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dom.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// failureFor builds the envelope for err. 5xx causes stay on c.Errors for
// the logger; the client only sees the kind.
func failureFor(err error) Failure {
	status := StatusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		switch {
		case errors.Is(err, dom.ErrUpload):
			msg = dom.ErrUpload.Error()
		case errors.Is(err, dom.ErrInternal):
			msg = dom.ErrInternal.Error()
		default:
			msg = genericMessage
		}
	}
	return Failure{StatusCode: status, Message: msg, Errors: []string{msg}}
}
