package middleware

import (
	"github.com/gin-gonic/gin"
)

// AppInfoWithConfig 创建注入应用信息的中间件（支持依赖注入）
func AppInfoWithConfig(name, version string) gin.HandlerFunc {

	return func(c *gin.Context) {
		c.Set("app_name", name)
		c.Set("app_version", version)

		c.Next()
	}
}
