package middlewares

import (
	"time"

	"retrowheel/auth"
	"retrowheel/models"

	jwt "github.com/dgrijalva/jwt-go"
)

// GenerateToken は参加者ID・セッションID・モデレーターフラグを束ねた
// 署名付きトークンを発行します。localStorageの自己申告IDの代わりに、
// 全ての変更系リクエストでこのトークンを検証します。
func GenerateToken(participantID, sessionID uint, isModerator bool) (string, error) {
	expirationTime := time.Now().Add(24 * time.Hour) // レトロ1回分には十分な有効期限

	claims := &models.MyClaims{
		ParticipantID: participantID,
		SessionID:     sessionID,
		IsModerator:   isModerator,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expirationTime.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(auth.JwtKey)
}
