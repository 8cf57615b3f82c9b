// Package handlers provides the HTTP handlers of the products API.
//
// Handlers are transport-thin: they parse input, call the service, and write
// success bodies. Failures are never rendered here. fail records the error
// on the Gin context and the terminal middleware.ErrorHandler writes the
// single error response:
//
//	HTTP/1.1 404 Not Found
//	{ "error": "Product not found" }
//
// Outside production the body also carries a "stack" field.
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-products-api/internal/apperr"
)

// ErrorResponse documents the error body written by middleware.ErrorHandler.
type ErrorResponse struct {
	// Human-readable message (safe to show to users)
	Error string `json:"error" example:"Product not found"`
	// Diagnostic stack, omitted in production
	Stack string `json:"stack,omitempty"`
}

// fail hands err to the terminal error handler and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response. There is no body, so any
// Content-Encoding set by the gzip middleware is removed.
func noContent(c *gin.Context) {
	c.Writer.Header().Del("Content-Encoding")
	c.Status(http.StatusNoContent)
}

// decodeJSON binds the request body into dst. An empty body leaves dst
// untouched. Oversized bodies map to 413; anything else unreadable to 400.
func decodeJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	case errors.As(err, &tooLarge):
		return apperr.New(MsgBodyTooLarge, http.StatusRequestEntityTooLarge)
	default:
		return apperr.BadRequest(MsgInvalidJSON)
	}
}
