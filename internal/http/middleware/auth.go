package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-products-api/internal/utils"
)

const (
	apiKeyHeader = "X-API-Key"
	apiKeyScheme = "ApiKey"

	// MsgUnauthorized is the fixed body message for a rejected key.
	MsgUnauthorized = "Unauthorized - invalid or missing API key"
)

// APIKey returns a middleware that admits only requests carrying key, either
// in the X-API-Key header or as "Authorization: ApiKey <key>". Anything else
// is aborted with 401 before later handlers run. The rejection is written
// directly and never reaches ErrorHandler.
func APIKey(key string) gin.HandlerFunc {
	want := []byte(key)
	return func(c *gin.Context) {
		got := utils.FirstNonEmpty(c.GetHeader(apiKeyHeader), fromAuthorization(c.GetHeader("Authorization")))
		if got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": MsgUnauthorized})
			return
		}
		c.Next()
	}
}

// fromAuthorization extracts the credential of an ApiKey-scheme
// Authorization value. The scheme is matched case-insensitively.
func fromAuthorization(v string) string {
	scheme, cred, ok := strings.Cut(strings.TrimSpace(v), " ")
	if !ok || !strings.EqualFold(scheme, apiKeyScheme) {
		return ""
	}
	return strings.TrimSpace(cred)
}
