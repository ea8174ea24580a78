// Package response writes the JSON envelopes returned by the HTTP handlers.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkspot/service-booking/internal/apperr"
)

// Envelope is the body of every non-saga response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta carries collection metadata.
type Meta struct {
	Total int `json:"total"`
}

// Success writes 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// List writes 200 with a collection and its size.
func List(c *gin.Context, items interface{}, total int) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: items, Meta: &Meta{Total: total}})
}

// BadRequest writes 400 with message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Error: message})
}

// Error writes the status matching err's kind.
func Error(c *gin.Context, err error) {
	c.JSON(StatusFor(apperr.KindOf(err)), Envelope{Success: false, Error: apperr.MessageOf(err)})
}

// StatusFor maps an error kind to an HTTP status code.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidTransition, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindRemoteRejection:
		return http.StatusUnprocessableEntity
	case apperr.KindRemoteUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
