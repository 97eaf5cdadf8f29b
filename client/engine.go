package client

import (
	"encoding/json"
	"fmt"
	"sync"

	"retrowheel/feed"
	"retrowheel/models"

	"github.com/jonboulle/clockwork"
)

// cachedReaction はローカルキャッシュ上のリアクション1件。
// Provisionalは書き込み確定前の楽観的な行であることを示し、
// ストア発の確定イベントを受け取った時点で外れる。
type cachedReaction struct {
	models.Reaction
	Provisional bool
}

// Engine は1タブ分のクライアント同期エンジンです。共有ストアの
// 対象エンティティのキャッシュを持ち、(1)楽観的なローカル変更、
// (2)ストアへの書き込み、(3)失敗時の巻き戻し、(4)変更フィードからの
// 確定状態による無条件上書き、を担う。
type Engine struct {
	store         Store
	clock         clockwork.Clock
	participantID uint

	mu           sync.Mutex
	session      models.Session
	participants []models.Participant
	answers      []models.Answer
	reactions    map[uint][]cachedReaction // answer_idごと
	votes        map[uint]models.Vote      // voter_idごと
	hearts       map[uint]int              // participant_idごと
	nextTempID   uint
	alarmFired   bool

	// OnTimerZero はこのクライアントのローカル計算で残り時間が0に
	// 達したとき一度だけ呼ばれる（アラーム音・通知用）。
	OnTimerZero func()

	// OnStoreError はユーザー操作を伴わないバックグラウンドの書き込みが
	// 失敗したとき呼ばれる（タイマー0到達時のstopなど、エラーを返す
	// 呼び出し元がいない書き込みの通知用）。
	OnStoreError func(error)
}

func NewEngine(store Store, participantID uint, clock clockwork.Clock) *Engine {
	return &Engine{
		store:         store,
		clock:         clock,
		participantID: participantID,
		reactions:     make(map[uint][]cachedReaction),
		votes:         make(map[uint]models.Vote),
		hearts:        make(map[uint]int),
		nextTempID:    ^uint(0), // 仮IDは上位から割り当て、本物のIDと衝突しない
	}
}

// Bootstrap はページ初期読み込みのスナップショットをキャッシュに流し込みます。
func (e *Engine) Bootstrap(session models.Session, participants []models.Participant, answers []models.Answer, reactions []models.Reaction, votes []models.Vote, hearts []models.CollectedHeart) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.session = session
	e.participants = participants
	e.answers = answers
	e.reactions = make(map[uint][]cachedReaction)
	for _, r := range reactions {
		e.reactions[r.AnswerID] = append(e.reactions[r.AnswerID], cachedReaction{Reaction: r})
	}
	e.votes = make(map[uint]models.Vote)
	for _, v := range votes {
		e.votes[v.VoterID] = v
	}
	e.hearts = make(map[uint]int)
	for _, h := range hearts {
		e.hearts[h.ParticipantID] = h.HeartsCount
	}
}

// Session returns a copy of the cached session row.
func (e *Engine) Session() models.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

func (e *Engine) Participants() []models.Participant {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Participant, len(e.participants))
	copy(out, e.participants)
	return out
}

func (e *Engine) Answers() []models.Answer {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Answer, len(e.answers))
	copy(out, e.answers)
	return out
}

// ReactionCount はキャッシュ上の回答へのリアクション数を返します。
func (e *Engine) ReactionCount(answerID uint) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.reactions[answerID])
}

// HasReacted は自分がその回答にリアクション済みかを返します。
func (e *Engine) HasReacted(answerID uint) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.findReaction(answerID, e.participantID) >= 0
}

func (e *Engine) findReaction(answerID, participantID uint) int {
	for i, r := range e.reactions[answerID] {
		if r.ParticipantID == participantID {
			return i
		}
	}
	return -1
}

// ToggleReaction は往復の待ち時間を隠すため、ローカル状態を先にひっくり
// 返してからストアに書き込みます。成功時のローカル調整は不要で、確定状態は
// 変更フィード経由で全クライアント共通に届く。失敗時は楽観的変更を
// 巻き戻してエラーを返す。
func (e *Engine) ToggleReaction(answerID uint) (string, error) {
	e.mu.Lock()
	idx := e.findReaction(answerID, e.participantID)
	var action string
	var removed cachedReaction
	if idx >= 0 {
		// 楽観的に削除
		removed = e.reactions[answerID][idx]
		e.reactions[answerID] = append(e.reactions[answerID][:idx], e.reactions[answerID][idx+1:]...)
		action = "removed"
	} else {
		// 仮IDで楽観的に追加
		temp := cachedReaction{Provisional: true}
		temp.ID = e.nextTempID
		e.nextTempID--
		temp.AnswerID = answerID
		temp.ParticipantID = e.participantID
		e.reactions[answerID] = append(e.reactions[answerID], temp)
		action = "added"
	}
	e.mu.Unlock()

	if _, err := e.store.ToggleReaction(answerID); err != nil {
		// 巻き戻し
		e.mu.Lock()
		if action == "removed" {
			e.reactions[answerID] = append(e.reactions[answerID], removed)
		} else if i := e.findReaction(answerID, e.participantID); i >= 0 {
			e.reactions[answerID] = append(e.reactions[answerID][:i], e.reactions[answerID][i+1:]...)
		}
		e.mu.Unlock()
		return "", err
	}
	return action, nil
}

// MyVote は自分の現在の投票先を返します（未投票なら0）。
func (e *Engine) MyVote() uint {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.votes[e.participantID].VotedForID
}

// Vote は投票のupsertを楽観的に行います。自己投票はストアに到達する前に
// ここで拒否される。失敗時は保存しておいた元の状態に戻す。
func (e *Engine) Vote(votedForID uint) error {
	if votedForID == e.participantID {
		return fmt.Errorf("no puedes votar por ti mismo")
	}

	e.mu.Lock()
	prev, hadPrev := e.votes[e.participantID]
	optimistic := prev
	optimistic.VoterID = e.participantID
	optimistic.SessionID = e.session.ID
	optimistic.VotedForID = votedForID
	e.votes[e.participantID] = optimistic
	e.mu.Unlock()

	if err := e.store.CastVote(votedForID); err != nil {
		e.mu.Lock()
		if hadPrev {
			e.votes[e.participantID] = prev
		} else {
			delete(e.votes, e.participantID)
		}
		e.mu.Unlock()
		return err
	}
	return nil
}

// Votes はキャッシュ上の投票のスナップショットを返します。
func (e *Engine) Votes() []models.Vote {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Vote, 0, len(e.votes))
	for _, v := range e.votes {
		out = append(out, v)
	}
	return out
}

// Winners は現在のキャッシュから勝者（最多得票、同数は全員）を求めます。
func (e *Engine) Winners() []uint {
	return models.VoteWinners(e.Votes())
}

// Hearts は参加者の集めたハート数を返します。
func (e *Engine) Hearts(participantID uint) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hearts[participantID]
}

// decodeRow は変更イベントの行を型付きの行へ復元します。Websocket経由の
// イベントではJSONのデコード結果（map）がRowに入っているため、一度JSONに
// 戻してから対象の型で読み直す。同一プロセス内で型付きのまま渡された行も
// 同じ経路で扱える。
func decodeRow(row interface{}, out interface{}) bool {
	data, err := json.Marshal(row)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// ApplyChange は変更フィードから届いた確定状態をキャッシュに反映します。
// 該当する行は楽観的変更の結果にかかわらず無条件に上書きする
// （last-authoritative-write-wins）。
func (e *Engine) ApplyChange(event feed.ChangeEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch event.Table {
	case feed.TableSessions:
		var session models.Session
		if !decodeRow(event.Row, &session) {
			return
		}
		wasActive := e.session.TimerIsActive
		e.session = session
		// タイマーが再スタートされたらアラームを再度鳴らせるようにする
		if session.TimerIsActive && !wasActive {
			e.alarmFired = false
		}

	case feed.TableParticipants:
		var p models.Participant
		if event.Event != feed.EventInsert || !decodeRow(event.Row, &p) {
			return
		}
		e.participants = append(e.participants, p)

	case feed.TableAnswers:
		var a models.Answer
		if event.Event != feed.EventInsert || !decodeRow(event.Row, &a) {
			return
		}
		// 新しい回答は先頭に（新しい順の表示に合わせる）
		e.answers = append([]models.Answer{a}, e.answers...)

	case feed.TableReactions:
		var r models.Reaction
		if !decodeRow(event.Row, &r) {
			return
		}
		switch event.Event {
		case feed.EventInsert:
			// 同じペアの仮の行があれば確定行で置き換える
			if i := e.findReaction(r.AnswerID, r.ParticipantID); i >= 0 {
				e.reactions[r.AnswerID][i] = cachedReaction{Reaction: r}
			} else {
				e.reactions[r.AnswerID] = append(e.reactions[r.AnswerID], cachedReaction{Reaction: r})
			}
		case feed.EventDelete:
			if i := e.findReaction(r.AnswerID, r.ParticipantID); i >= 0 {
				e.reactions[r.AnswerID] = append(e.reactions[r.AnswerID][:i], e.reactions[r.AnswerID][i+1:]...)
			}
		}

	case feed.TableVotes:
		var v models.Vote
		if !decodeRow(event.Row, &v) {
			return
		}
		e.votes[v.VoterID] = v

	case feed.TableCollectedHearts:
		var h models.CollectedHeart
		if !decodeRow(event.Row, &h) {
			return
		}
		e.hearts[h.ParticipantID] = h.HeartsCount
	}
}
