package http

import (
	nethttp "net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/medsupply/internal/auth/domain"
	"github.com/wyfcoding/medsupply/pkg/response"
)

// AuthRequired 解析 Authorization 头中的 Bearer 令牌，写入调用者身份。
// 无会话一律 401，不区分原因。
func AuthRequired(tokens *domain.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Error(c, nethttp.StatusUnauthorized, "Non autorisé")
			c.Abort()
			return
		}

		claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Error(c, nethttp.StatusUnauthorized, "Non autorisé")
			c.Abort()
			return
		}

		identity := domain.Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}
		c.Request = c.Request.WithContext(domain.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// AdminRequired 要求管理员角色。拒绝时返回统一的 Accès refusé，
// 不暴露目标资源是否存在。
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := domain.IdentityFrom(c.Request.Context())
		if !ok || !identity.IsAdmin() {
			response.Error(c, nethttp.StatusForbidden, "Accès refusé")
			c.Abort()
			return
		}
		c.Next()
	}
}
