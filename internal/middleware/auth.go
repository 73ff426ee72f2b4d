package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobchat/internal/utils"
)

// SessionMiddleware 驗證上游簽發的會話 token，並把會話內容放進上下文。
// 聊天子系統不做註冊登入，只信任這個 token。
// WebSocket 握手無法自訂請求頭，因此也接受 query 參數傳遞。
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session token is required"})
			c.Abort()
			return
		}

		claims, err := utils.ParseSessionToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("displayName", claims.DisplayName)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}
