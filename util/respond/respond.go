// Package respond wraps every outward payload in the uniform
// {success, status, message, data} envelope.
package respond

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Luis24M/biblioinfo-back/util/apperr"
)

type Envelope struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func Success(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{Success: true, Status: status, Message: message, Data: data})
}

func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: false, Status: status, Message: message})
}

// FromError maps a service error kind onto the status code and wraps
// it. Internal details never reach the client.
func FromError(c echo.Context, err error) error {
	var ae *apperr.Error
	msg := "internal error"
	if errors.As(err, &ae) {
		msg = ae.Msg
	}
	switch apperr.KindOf(err) {
	case apperr.Validation:
		return Error(c, http.StatusBadRequest, msg)
	case apperr.NotFound:
		return Error(c, http.StatusNotFound, msg)
	case apperr.Conflict:
		return Error(c, http.StatusConflict, msg)
	case apperr.Unavailable:
		return Error(c, http.StatusServiceUnavailable, msg)
	default:
		return Error(c, http.StatusInternalServerError, "internal error")
	}
}
