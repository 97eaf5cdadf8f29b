package auth

import (
	"os"

	"retrowheel/models"

	jwt "github.com/dgrijalva/jwt-go"
)

// JwtKey はトークン署名用のシークレット。環境変数で設定する。
var JwtKey = loadJwtKey()

func loadJwtKey() []byte {
	if key := os.Getenv("JWT_SECRET"); key != "" {
		return []byte(key)
	}
	return []byte("retrowheel-dev-secret") // 開発用デフォルト
}

func IsValidToken(tokenString string) (bool, error) {
	claims := &models.MyClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtKey, nil
	})

	if err != nil {
		return false, err
	}

	return token.Valid, nil
}
