package models

import (
	jwt "github.com/dgrijalva/jwt-go"
)

// MyClaims はJWTクレームの構造体定義です。参加者ID・セッションID・
// モデレーターフラグをトークンに束ね、全ての変更系リクエストで検証します。
type MyClaims struct {
	ParticipantID uint `json:"participantId"`
	SessionID     uint `json:"sessionId"`
	IsModerator   bool `json:"isModerator"`
	jwt.StandardClaims
}
