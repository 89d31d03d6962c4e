// Package handlers implements the status server endpoints.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeAppError maps an application error to its HTTP status. Server side
// failures are masked.
func writeAppError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)
	if errors.IsServerError(code) {
		c.JSON(status, ErrorResponse{Code: string(code), Message: errors.DefaultMessageForCode(code)})
		return
	}
	c.JSON(status, ErrorResponse{Code: string(code), Message: err.Error()})
}

//Personal.AI order the ending
