package feed

// 変更通知の対象テーブル名
const (
	TableSessions        = "sessions"
	TableParticipants    = "participants"
	TableAnswers         = "answers"
	TableReactions       = "reactions"
	TableVotes           = "votes"
	TableCollectedHearts = "collected_hearts"
)

// 変更の種別
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// ChangeEvent は共有ストアへの書き込み1件を購読者に通知するイベントです。
// 確定した行の内容をそのまま運び、受信側のローカルキャッシュを無条件に
// 上書きします（last-authoritative-write-wins）。
type ChangeEvent struct {
	Type  string      `json:"type"` // 常に "change"
	Table string      `json:"table"`
	Event string      `json:"event"`
	Row   interface{} `json:"row"`
}

// NewChange は送信用のChangeEventを組み立てます。
func NewChange(table, event string, row interface{}) ChangeEvent {
	return ChangeEvent{Type: "change", Table: table, Event: event, Row: row}
}
