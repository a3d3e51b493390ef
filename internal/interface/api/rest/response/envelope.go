package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"json-share-api/internal/application/apperr"
)

type (
	Success struct {
		Success bool   `json:"success"`
		Data    any    `json:"data"`
		Message string `json:"message,omitempty"`
	}
	Failure struct {
		Success bool      `json:"success"`
		Error   ErrorBody `json:"error"`
	}
	ErrorBody struct {
		Code    apperr.Code `json:"code"`
		Message string      `json:"message"`
		Details any         `json:"details,omitempty"`
	}
)

func OK(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, Success{Success: true, Data: data, Message: message})
}

func Created(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, Success{Success: true, Data: data, Message: message})
}

// Fail aborts with the error envelope for err. The underlying cause is only
// exposed when debug is set.
func Fail(c *gin.Context, err error, debug bool) {
	ae := apperr.As(err)

	body := ErrorBody{
		Code:    ae.Code,
		Message: ae.Message,
		Details: ae.Details,
	}
	if debug && body.Details == nil && ae.Err != nil {
		body.Details = ae.Err.Error()
	}

	c.AbortWithStatusJSON(ae.Status(), Failure{Success: false, Error: body})
}
