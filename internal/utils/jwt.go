package utils

import (
	"time"

	"github.com/golang-jwt/jwt"
)

var jwtSecret = []byte("your_jwt_secret") // 在實際應用中，這應該是一個環境變量

// SessionClaims 上游認證服務簽發的會話內容。
// 聊天子系統只消費它：DisplayName 就是消息的 author。
type SessionClaims struct {
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
	jwt.StandardClaims
}

// GenerateSessionToken 簽發一個會話 token，測試與本地開發使用
func GenerateSessionToken(userID uint, displayName string) (string, error) {
	nowTime := time.Now()
	expireTime := nowTime.Add(240 * time.Hour)

	claims := SessionClaims{
		UserID:      userID,
		DisplayName: displayName,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expireTime.Unix(),
			IssuedAt:  nowTime.Unix(),
		},
	}

	tokenClaims := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenClaims.SignedString(jwtSecret)
}

// ParseSessionToken 解析並驗證會話 token
func ParseSessionToken(token string) (*SessionClaims, error) {
	tokenClaims, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})

	if tokenClaims != nil {
		if claims, ok := tokenClaims.Claims.(*SessionClaims); ok && tokenClaims.Valid {
			return claims, nil
		}
	}

	return nil, err
}
