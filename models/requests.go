package models

// SessionCreateRequest はモデレーターによるセッション作成リクエストを表します。
type SessionCreateRequest struct {
	Name          string `json:"name" binding:"required"`
	ModeratorName string `json:"moderatorName" binding:"required"`
}

// SessionJoinRequest は参加コードによる入室リクエストを表します。
type SessionJoinRequest struct {
	Name string `json:"name" binding:"required"`
}

// AnswerRequest はルーレットで選ばれた質問への回答送信を表します。
type AnswerRequest struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
}

// ReactionToggleRequest はハートのトグル対象を表します。
type ReactionToggleRequest struct {
	AnswerID uint `json:"answerId" binding:"required"`
}

// VoteRequest は「スプリントの主役」への投票先を表します。
type VoteRequest struct {
	VotedForID uint `json:"votedForId" binding:"required"`
}

// TimerRequest は共有タイマーの操作を表します。
// Actionは "start"、"stop"、"add"、"reset" のいずれか。
type TimerRequest struct {
	Action  string `json:"action" binding:"required"`
	Seconds int    `json:"seconds"`
}
