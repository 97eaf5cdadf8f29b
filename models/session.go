package models

import (
	"time"

	"gorm.io/gorm"
)

// セッションのステータス。active→finished の一方向のみ。
const (
	SessionActive   = "active"
	SessionFinished = "finished"
)

// Session モデルの定義
type Session struct {
	gorm.Model
	Code          string `gorm:"uniqueIndex;not null"` // 6文字の参加コード
	Name          string `gorm:"not null"`
	ModeratorName string `gorm:"not null"`
	Status        string `gorm:"not null;default:'active'"`
	FinishedAt    *time.Time

	// 共有タイマーの状態。TimerDurationは停止中は残り秒数を保持する。
	TimerDuration  int `gorm:"not null;default:0"`
	TimerStartedAt *time.Time
	TimerIsActive  bool `gorm:"not null;default:false"`

	Participants []Participant `gorm:"foreignKey:SessionID"`
}

// TimerRemaining derives the seconds left on the shared countdown from
// the caller's clock. While running the value is recomputed from
// TimerStartedAt; while paused TimerDuration already holds the
// remainder.
func (s *Session) TimerRemaining(now time.Time) int {
	if !s.TimerIsActive || s.TimerStartedAt == nil {
		return s.TimerDuration
	}
	elapsed := int(now.Sub(*s.TimerStartedAt).Seconds())
	remaining := s.TimerDuration - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
