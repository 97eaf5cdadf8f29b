package models

import (
	"time"

	"gorm.io/gorm"
)

// Participant モデルの定義。名前はセッション内で一意。
type Participant struct {
	gorm.Model
	SessionID   uint   `gorm:"not null;index;uniqueIndex:idx_session_participant_name"`
	Name        string `gorm:"not null;uniqueIndex:idx_session_participant_name"`
	IsModerator bool   `gorm:"not null;default:false"` // 運用上セッションごとに1人のみ
	JoinedAt    time.Time
}
