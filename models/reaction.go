package models

import (
	"gorm.io/gorm"
)

// Reaction モデルの定義。(answer_id, participant_id)ごとに最大1件。
// トグルで作成・削除され、更新はされない。
type Reaction struct {
	gorm.Model
	AnswerID      uint `gorm:"not null;index;uniqueIndex:idx_answer_participant"`
	ParticipantID uint `gorm:"not null;uniqueIndex:idx_answer_participant"`
}
