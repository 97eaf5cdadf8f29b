package client

// Store は共有ストアへの書き込み口を抽象化したものです。実体はHTTP API
// ですが、エンジン側は書き込みの成否しか見ないためこの形で十分で、
// テストでは失敗するストアを差し込める。
type Store interface {
	// ToggleReaction はリアクションのトグルを依頼し、実際に行われた
	// 操作（"added"か"removed"）を返します。
	ToggleReaction(answerID uint) (string, error)
	// CastVote は投票先の作成または更新を依頼します。
	CastVote(votedForID uint) error
	// StopTimer は共有タイマーの停止を依頼します。既に停止している
	// 場合はストア側で no-op になる。
	StopTimer() error
}
