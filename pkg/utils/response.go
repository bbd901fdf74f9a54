package utils

import (
	"github.com/gin-gonic/gin"
)

// Envelope is the uniform response body shared by every endpoint.
// Data is null on failures and on successes that carry no payload.
type Envelope struct {
	Ok      bool        `json:"ok"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// RespondOK sends a success envelope with the given status code.
func RespondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{Ok: true, Message: message, Data: data})
}

// RespondFail sends a failure envelope and aborts further processing,
// so it is safe to use from middleware as well as handlers.
func RespondFail(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Ok: false, Message: message, Data: nil})
	c.Abort()
}
