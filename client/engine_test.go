package client

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"retrowheel/feed"
	"retrowheel/models"

	"github.com/jonboulle/clockwork"
)

// fakeStore は書き込みの成否を切り替えられるテスト用ストア。
type fakeStore struct {
	toggleErr   error
	voteErr     error
	stopErr     error
	toggleCalls int
	voteCalls   int
	stopCalls   int
	lastVote    uint
}

func (f *fakeStore) ToggleReaction(answerID uint) (string, error) {
	f.toggleCalls++
	if f.toggleErr != nil {
		return "", f.toggleErr
	}
	return "added", nil
}

func (f *fakeStore) CastVote(votedForID uint) error {
	f.voteCalls++
	if f.voteErr != nil {
		return f.voteErr
	}
	f.lastVote = votedForID
	return nil
}

func (f *fakeStore) StopTimer() error {
	f.stopCalls++
	return f.stopErr
}

func newTestEngine(store Store, participantID uint) *Engine {
	return NewEngine(store, participantID, clockwork.NewFakeClock())
}

func TestToggleReactionOptimisticAdd(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, 1)

	action, err := engine.ToggleReaction(100)
	if err != nil {
		t.Fatalf("ToggleReaction: %v", err)
	}
	if action != "added" {
		t.Errorf("action = %q, want added", action)
	}
	if !engine.HasReacted(100) {
		t.Error("expected optimistic reaction to be visible immediately")
	}
	if engine.ReactionCount(100) != 1 {
		t.Errorf("count = %d, want 1", engine.ReactionCount(100))
	}
}

func TestToggleReactionTwiceNetsZero(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, 1)

	if _, err := engine.ToggleReaction(100); err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	action, err := engine.ToggleReaction(100)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if action != "removed" {
		t.Errorf("action = %q, want removed", action)
	}
	if engine.ReactionCount(100) != 0 {
		t.Errorf("count after add+remove = %d, want 0", engine.ReactionCount(100))
	}
	if store.toggleCalls != 2 {
		t.Errorf("store calls = %d, want 2", store.toggleCalls)
	}
}

func TestToggleReactionRollbackOnFailure(t *testing.T) {
	store := &fakeStore{toggleErr: errors.New("network down")}
	engine := newTestEngine(store, 1)

	if _, err := engine.ToggleReaction(100); err == nil {
		t.Fatal("expected error from failing store")
	}
	if engine.HasReacted(100) {
		t.Error("optimistic add should have been rolled back")
	}
	if engine.ReactionCount(100) != 0 {
		t.Errorf("count after rollback = %d, want 0", engine.ReactionCount(100))
	}
}

func TestToggleReactionRollbackRestoresRemoved(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, 1)

	// 確定済みのリアクションをフィード経由で投入
	authoritative := models.Reaction{AnswerID: 100, ParticipantID: 1}
	authoritative.ID = 55
	engine.ApplyChange(feed.NewChange(feed.TableReactions, feed.EventInsert, authoritative))

	store.toggleErr = errors.New("network down")
	if _, err := engine.ToggleReaction(100); err == nil {
		t.Fatal("expected error from failing store")
	}
	// 楽観的に消した行が巻き戻っている
	if !engine.HasReacted(100) {
		t.Error("removed reaction should have been restored on failure")
	}
}

func TestAuthoritativeInsertReplacesProvisional(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, 1)

	if _, err := engine.ToggleReaction(100); err != nil {
		t.Fatalf("ToggleReaction: %v", err)
	}

	// ストア発の確定行が届くと仮の行を置き換え、重複はしない
	authoritative := models.Reaction{AnswerID: 100, ParticipantID: 1}
	authoritative.ID = 77
	engine.ApplyChange(feed.NewChange(feed.TableReactions, feed.EventInsert, authoritative))

	if engine.ReactionCount(100) != 1 {
		t.Errorf("count = %d, want 1 after reconciliation", engine.ReactionCount(100))
	}
}

func TestVoteRejectsSelfVote(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, 1)

	if err := engine.Vote(1); err == nil {
		t.Fatal("expected self-vote to be rejected")
	}
	if store.voteCalls != 0 {
		t.Error("self-vote must never reach the store")
	}
	if engine.MyVote() != 0 {
		t.Error("self-vote must not appear in the cache")
	}
}

func TestVoteOptimisticAndRollback(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, 1)

	if err := engine.Vote(10); err != nil {
		t.Fatalf("Vote: %v", err)
	}
	if engine.MyVote() != 10 {
		t.Errorf("MyVote = %d, want 10", engine.MyVote())
	}

	// 再投票が失敗すると元の投票先に戻る
	store.voteErr = errors.New("network down")
	if err := engine.Vote(20); err == nil {
		t.Fatal("expected error from failing store")
	}
	if engine.MyVote() != 10 {
		t.Errorf("MyVote after rollback = %d, want 10", engine.MyVote())
	}

	// 初回投票の失敗は未投票に戻る
	fresh := newTestEngine(&fakeStore{voteErr: errors.New("network down")}, 2)
	if err := fresh.Vote(10); err == nil {
		t.Fatal("expected error from failing store")
	}
	if fresh.MyVote() != 0 {
		t.Errorf("MyVote after first-vote rollback = %d, want 0", fresh.MyVote())
	}
}

func TestWinnersFromCache(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, 1)

	votes := []models.Vote{
		{VoterID: 1, VotedForID: 10},
		{VoterID: 2, VotedForID: 10},
		{VoterID: 3, VotedForID: 20},
	}
	for _, v := range votes {
		engine.ApplyChange(feed.NewChange(feed.TableVotes, feed.EventInsert, v))
	}

	if got := engine.Winners(); !reflect.DeepEqual(got, []uint{10}) {
		t.Errorf("Winners = %v, want [10]", got)
	}

	// 再投票（UPDATE）で同数になれば両者が勝者
	engine.ApplyChange(feed.NewChange(feed.TableVotes, feed.EventUpdate, models.Vote{VoterID: 2, VotedForID: 20}))
	if got := engine.Winners(); !reflect.DeepEqual(got, []uint{10, 20}) {
		t.Errorf("Winners after revote = %v, want [10 20]", got)
	}
}

func TestApplyChangeAnswersAndParticipants(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, 1)

	session := models.Session{Code: "KL4P92", Status: models.SessionActive}
	session.ID = 1
	engine.Bootstrap(session, nil, nil, nil, nil, nil)

	p := models.Participant{SessionID: 1, Name: "Ana"}
	p.ID = 2
	engine.ApplyChange(feed.NewChange(feed.TableParticipants, feed.EventInsert, p))
	if len(engine.Participants()) != 1 {
		t.Fatalf("participants = %d, want 1", len(engine.Participants()))
	}

	first := models.Answer{SessionID: 1, ParticipantID: 2, Question: "q1", Answer: "a1"}
	first.ID = 1
	second := models.Answer{SessionID: 1, ParticipantID: 2, Question: "q2", Answer: "a2"}
	second.ID = 2
	engine.ApplyChange(feed.NewChange(feed.TableAnswers, feed.EventInsert, first))
	engine.ApplyChange(feed.NewChange(feed.TableAnswers, feed.EventInsert, second))

	answers := engine.Answers()
	if len(answers) != 2 {
		t.Fatalf("answers = %d, want 2", len(answers))
	}
	// 新しい回答が先頭
	if answers[0].ID != 2 {
		t.Errorf("answers[0].ID = %d, want 2", answers[0].ID)
	}

	// セッションの更新（終了）は無条件に上書きされる
	session.Status = models.SessionFinished
	engine.ApplyChange(feed.NewChange(feed.TableSessions, feed.EventUpdate, session))
	if engine.Session().Status != models.SessionFinished {
		t.Error("session update was not applied")
	}
}

// ハブが配信するJSONを購読者がデコードした形のイベントを作る
func wireEvent(t *testing.T, table, eventType string, row interface{}) feed.ChangeEvent {
	t.Helper()
	data, err := json.Marshal(feed.NewChange(table, eventType, row))
	if err != nil {
		t.Fatalf("failed to marshal change event: %v", err)
	}
	var event feed.ChangeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("failed to unmarshal change event: %v", err)
	}
	return event
}

func TestApplyChangeFromWireFormat(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, 1)

	// 配信フォーマット（JSON往復後はRowがmapになる）経由でも反映される
	answer := models.Answer{SessionID: 1, ParticipantID: 2, Question: "¿Qué salió bien?", Answer: "todo"}
	answer.ID = 9
	engine.ApplyChange(wireEvent(t, feed.TableAnswers, feed.EventInsert, answer))

	answers := engine.Answers()
	if len(answers) != 1 {
		t.Fatalf("answers in cache after wire-format event = %d, want 1", len(answers))
	}
	if answers[0].ID != 9 || answers[0].Question != "¿Qué salió bien?" {
		t.Errorf("decoded answer = %+v, want ID 9 with original question", answers[0])
	}

	reaction := models.Reaction{AnswerID: 9, ParticipantID: 3}
	reaction.ID = 4
	engine.ApplyChange(wireEvent(t, feed.TableReactions, feed.EventInsert, reaction))
	if engine.ReactionCount(9) != 1 {
		t.Errorf("reaction count after wire-format event = %d, want 1", engine.ReactionCount(9))
	}
	engine.ApplyChange(wireEvent(t, feed.TableReactions, feed.EventDelete, reaction))
	if engine.ReactionCount(9) != 0 {
		t.Errorf("reaction count after wire-format delete = %d, want 0", engine.ReactionCount(9))
	}

	engine.ApplyChange(wireEvent(t, feed.TableVotes, feed.EventInsert, models.Vote{SessionID: 1, VoterID: 2, VotedForID: 3}))
	if got := engine.Winners(); !reflect.DeepEqual(got, []uint{3}) {
		t.Errorf("winners after wire-format vote = %v, want [3]", got)
	}

	session := models.Session{Code: "KL4P92", Status: models.SessionFinished}
	session.ID = 1
	engine.ApplyChange(wireEvent(t, feed.TableSessions, feed.EventUpdate, session))
	if engine.Session().Status != models.SessionFinished {
		t.Error("session update via wire format was not applied")
	}
}

func TestApplyChangeHearts(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, 1)

	h := models.CollectedHeart{SessionID: 1, ParticipantID: 2, HeartsCount: 3}
	engine.ApplyChange(feed.NewChange(feed.TableCollectedHearts, feed.EventUpdate, h))
	if engine.Hearts(2) != 3 {
		t.Errorf("Hearts(2) = %d, want 3", engine.Hearts(2))
	}
}
