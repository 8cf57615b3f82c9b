package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-products-api/internal/apperr"
)

// ErrorHandler is the terminal error renderer. Handlers report failures with
// c.Error and return; once the chain unwinds, ErrorHandler writes the last
// recorded error as {"error": message} with the status the error carries.
// Errors that are not *apperr.Error become 500 "Internal Server Error".
//
// When exposeStack is true the body also carries a "stack" field; enable it
// outside production only. Server errors are logged with the request logger.
//
// Register it before Recovery so recovered panics are rendered here too.
func ErrorHandler(exposeStack bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		status, msg := apperr.StatusOf(err), apperr.MsgInternal
		if ae, ok := apperr.From(err); ok {
			msg = ae.Message
		}

		if status >= 500 {
			LoggerFrom(c).Error().Err(err).Int("status", status).Msg("request failed")
		}

		body := gin.H{"error": msg}
		if exposeStack {
			if st := apperr.StackOf(err); st != "" {
				body["stack"] = st
			}
		}
		c.AbortWithStatusJSON(status, body)
	}
}
