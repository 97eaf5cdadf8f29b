package models

import (
	"gorm.io/gorm"
)

// 回答本文の上限（文字数）。超過分は境界で拒否される。
const MaxAnswerLength = 800

// Answer モデルの定義。作成後は不変。
type Answer struct {
	gorm.Model
	SessionID     uint   `gorm:"not null;index"`
	ParticipantID uint   `gorm:"not null;index"`
	Question      string `gorm:"not null"`
	Answer        string `gorm:"not null;size:800"`
}
