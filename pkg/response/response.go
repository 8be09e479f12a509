package response

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/academic-catalog-api/pkg/errors"
)

// ErrorBody is the JSON document written for failed requests.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// Message is the acknowledgement body used by write endpoints.
type Message struct {
	Message string      `json:"message"`
	Synced  interface{} `json:"synced,omitempty"`
}

// JSON writes data as the bare response document.
func JSON(c *gin.Context, status int, data interface{}) {
	noStore(c)
	c.JSON(status, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Success responds with {"success": true}.
func Success(c *gin.Context) {
	JSON(c, http.StatusOK, gin.H{"success": true})
}

// Error converts err to the common error body. Server errors include the
// underlying message and, unless gin runs in release mode, the stack recorded
// where the error was wrapped. Errors without one fall back to the stack of
// this call.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	body := ErrorBody{Code: appErr.Code, Message: appErr.Message}
	if appErr.Status >= http.StatusInternalServerError {
		body.Message = appErr.Error()
		if gin.Mode() != gin.ReleaseMode {
			body.Stack = appErr.Stack()
			if body.Stack == "" {
				body.Stack = string(debug.Stack())
			}
		}
		_ = c.Error(err)
	}
	noStore(c)
	c.JSON(appErr.Status, body)
}

// Abort writes the error body and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
