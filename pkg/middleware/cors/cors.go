package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const allowedMethods = "GET, POST, PUT, OPTIONS"

// New returns a CORS middleware that honors a list of allowed origins. An empty
// list allows any origin but never advertises credentials.
func New(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		originSet[strings.TrimRight(origin, "/")] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		header := c.Writer.Header()
		switch {
		case origin == "" && allowAll:
			header.Set("Access-Control-Allow-Origin", "*")
		case origin != "" && allowAll:
			header.Set("Access-Control-Allow-Origin", origin)
		case origin != "" && hasOrigin(originSet, origin):
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Credentials", "true")
		}

		header.Set("Vary", "Origin")
		header.Set("Access-Control-Allow-Headers", "Content-Type, X-Requested-With, X-Request-ID")
		header.Set("Access-Control-Allow-Methods", allowedMethods)
		header.Set("Access-Control-Expose-Headers", "X-Request-ID, Content-Disposition")
		header.Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func hasOrigin(originSet map[string]struct{}, origin string) bool {
	_, ok := originSet[strings.TrimRight(origin, "/")]
	return ok
}
