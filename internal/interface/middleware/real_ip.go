package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

func parseIP(v string) string {
	if ip := net.ParseIP(strings.TrimSpace(v)); ip != nil {
		return ip.String()
	}
	return ""
}

// RealIP stores the client IP under "real_ip". With trustProxy set it prefers
// CF-Connecting-IP, then the left-most X-Forwarded-For entry; otherwise, and as
// the fallback, it uses c.ClientIP().
func RealIP(trustProxy bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := ""
		if trustProxy {
			ip = parseIP(c.GetHeader("CF-Connecting-IP"))
			if ip == "" {
				if first, _, _ := strings.Cut(c.GetHeader("X-Forwarded-For"), ","); first != "" {
					ip = parseIP(first)
				}
			}
		}
		if ip == "" {
			ip = c.ClientIP()
		}
		c.Set("real_ip", ip)
		c.Next()
	}
}
