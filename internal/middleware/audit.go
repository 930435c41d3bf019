package middleware

import (
	"fmt"
	"strings"

	"github.com/bugnest/backend/internal/services"
	"github.com/gin-gonic/gin"
)

// AuditLog records write operations (POST/PUT/DELETE) to the operation log
// after the handler completes.
func AuditLog(logs *services.SystemLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != "POST" && method != "PUT" && method != "DELETE" {
			c.Next()
			return
		}

		c.Next()

		status := c.Writer.Status()
		level := "info"
		if status >= 500 {
			level = "error"
		} else if status >= 400 {
			level = "warning"
		}

		var uid *uint
		if id := GetUserID(c); id > 0 {
			uid = &id
		}

		module, action := routeInfo(c.FullPath(), method)
		message := fmt.Sprintf("%s %s -> %d", method, c.Request.URL.Path, status)
		logs.Record(level, module, action, message, uid, c.ClientIP(), c.Request.UserAgent())
	}
}

// routeInfo derives a module/action pair from the route template, e.g.
// POST /api/projects/:id/invite -> ("projects", "invite").
func routeInfo(fullPath, method string) (string, string) {
	trimmed := strings.TrimPrefix(fullPath, "/api/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		return "api", strings.ToLower(method)
	}

	module := parts[0]
	action := strings.ToLower(method)
	if last := parts[len(parts)-1]; len(parts) > 1 && !strings.HasPrefix(last, ":") {
		action = last
	}
	return module, action
}
