package utils

import (
	"math/rand"
	"time"
)

// 参加コードに使う文字。0/O/1/Iのような紛らわしい文字は除外。
const SessionCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// 参加コードの長さ
const SessionCodeLength = 6

// 乱数はコード生成とルーレットの回転量の決定に使用
func CreateLocalRandGenerator() *rand.Rand {
	source := rand.NewSource(time.Now().UnixNano())
	return rand.New(source)
}

// GenerateSessionCode は6文字の参加コードを生成します。
// 一意性はデータベース側の制約と呼び出し側の再試行で担保します。
func GenerateSessionCode(randGen *rand.Rand) string {
	code := make([]byte, SessionCodeLength)
	for i := range code {
		code[i] = SessionCodeAlphabet[randGen.Intn(len(SessionCodeAlphabet))]
	}
	return string(code)
}
