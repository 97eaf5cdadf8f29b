package models

import (
	"gorm.io/gorm"
)

// CollectedHeart モデルの定義。ラッキーハートのマスに当たるたびに
// hearts_countが加算される。
type CollectedHeart struct {
	gorm.Model
	SessionID     uint `gorm:"not null;index;uniqueIndex:idx_session_heart_participant"`
	ParticipantID uint `gorm:"not null;uniqueIndex:idx_session_heart_participant"`
	HeartsCount   int  `gorm:"not null;default:0"`
}
