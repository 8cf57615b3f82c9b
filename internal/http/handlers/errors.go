package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-products-api/internal/apperr"
)

// Transport-level messages. Validation and lookup messages live in the
// services package.
const (
	MsgInvalidJSON   = "invalid JSON body"
	MsgBodyTooLarge  = "request body too large"
	MsgRouteNotFound = "Route not found"
)

// NoRoute reports unmatched routes through the terminal error handler.
// Method mismatches land here as well.
func NoRoute(c *gin.Context) {
	fail(c, apperr.NotFound(MsgRouteNotFound))
}
