// Package handlers implements the HTTP endpoints consumed by the storefront
// web view.
//
// All failure responses share one envelope so the web app can branch on a
// stable code instead of parsing messages:
//
//	HTTP/1.1 400 Bad Request
//	{
//	  "success": false,
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "bad_request",
//	  "message": "chat_id is required"
//	}
//
// Success shapes vary per endpoint (arrays for the catalog, `{success:true,…}`
// envelopes for cart and order operations) and are documented on each handler.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akbarovs/go-storefront-bot/internal/http/middleware"
)

// ErrorResponse is the failure envelope returned by every endpoint.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	RequestID string `json:"request_id,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// fail aborts the request with the failure envelope. Server-side errors
// (>= 500) are logged through the request-scoped logger so they carry the
// correlation id.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		Success:   false,
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail(), used by router fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
