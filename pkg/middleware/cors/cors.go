package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var baseAllowHeaders = []string{"Authorization", "Content-Type", "X-Requested-With", "X-Request-ID"}

// New returns a CORS middleware for the dashboard front-end. An empty
// allowedOrigins list allows any origin without credentials. extraHeaders are
// appended to Access-Control-Allow-Headers, e.g. the tunnel bypass header.
func New(allowedOrigins []string, extraHeaders ...string) gin.HandlerFunc {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[strings.TrimRight(origin, "/")] = struct{}{}
	}
	allowAll := len(origins) == 0

	headers := append([]string{}, baseAllowHeaders...)
	for _, h := range extraHeaders {
		if h = strings.TrimSpace(h); h != "" {
			headers = append(headers, h)
		}
	}

	static := http.Header{}
	static.Set("Vary", "Origin")
	static.Set("Access-Control-Allow-Headers", strings.Join(headers, ", "))
	static.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	static.Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
	static.Set("Access-Control-Max-Age", "600")

	return func(c *gin.Context) {
		h := c.Writer.Header()
		for k, v := range static {
			h[k] = append([]string(nil), v...)
		}

		switch origin := strings.TrimRight(c.GetHeader("Origin"), "/"); {
		case allowAll:
			h.Set("Access-Control-Allow-Origin", "*")
		case origin == "":
		default:
			if _, ok := origins[origin]; ok {
				h.Set("Access-Control-Allow-Origin", c.GetHeader("Origin"))
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
