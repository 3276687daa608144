package utils

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every JSON endpoint answers with, except the
// webhook whose body is read by the provider.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func errorResponse(message string) Response {
	return Response{Success: false, Error: message}
}

func SendSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func SendError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, errorResponse(message))
}

// AbortWithError sends an error envelope and stops the middleware chain.
func AbortWithError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, errorResponse(message))
}

// ValidateRequestBody binds the JSON body into obj and answers 400 when it
// is missing or invalid.
func ValidateRequestBody(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) {
		SendError(c, http.StatusBadRequest, "Request body is required")
		return false
	}
	SendError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
	return false
}
