package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

// DefaultCORSOrigin is answered to origins outside the allow-list
const DefaultCORSOrigin = "https://vininfo.cz"

// CORSMiddleware mirrors allowed origins and answers preflight requests.
// Requests without an Origin get "*"; localhost and 127.0.0.1 on any port are allowed.
func CORSMiddleware(allowed []string) gin.HandlerFunc {
	allow := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		allow[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", corsOrigin(allow, c.GetHeader("Origin")))
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func corsOrigin(allow map[string]struct{}, origin string) string {
	if origin == "" {
		return "*"
	}
	if _, ok := allow[origin]; ok {
		return origin
	}
	if isLoopbackOrigin(origin) {
		return origin
	}
	return DefaultCORSOrigin
}

func isLoopbackOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1"
}
