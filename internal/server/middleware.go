package server

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
)

const HeaderAdminKey = "X-Admin-Key"

// AdminKeyRequired guards campaign management and diagnostics with the
// static ADMIN_API_KEY. With no key configured the routes are closed.
func (s *Server) AdminKeyRequired() gin.HandlerFunc {
	expected := []byte(strings.TrimSpace(s.cfg.AdminAPIKey))
	return func(c *gin.Context) {
		if len(expected) == 0 {
			AbortWithError(c, ErrForbidden)
			return
		}
		provided := strings.TrimSpace(c.GetHeader(HeaderAdminKey))
		if provided == "" {
			provided = bearerToken(c.GetHeader("Authorization"))
		}
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
