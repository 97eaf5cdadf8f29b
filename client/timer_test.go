package client

import (
	"errors"
	"testing"
	"time"

	"retrowheel/feed"
	"retrowheel/models"

	"github.com/jonboulle/clockwork"
)

func sessionWithTimer(duration int, startedAt *time.Time, active bool) models.Session {
	s := models.Session{Code: "KL4P92", Status: models.SessionActive}
	s.ID = 1
	s.TimerDuration = duration
	s.TimerStartedAt = startedAt
	s.TimerIsActive = active
	return s
}

func TestTimerRemainingWhileRunning(t *testing.T) {
	clock := clockwork.NewFakeClock()
	engine := NewEngine(&fakeStore{}, 1, clock)

	started := clock.Now()
	engine.Bootstrap(sessionWithTimer(300, &started, true), nil, nil, nil, nil, nil)

	if got := engine.TimerRemaining(); got != 300 {
		t.Errorf("remaining at start = %d, want 300", got)
	}
	clock.Advance(60 * time.Second)
	if got := engine.TimerRemaining(); got != 240 {
		t.Errorf("remaining after 60s = %d, want 240", got)
	}
	clock.Advance(500 * time.Second)
	if got := engine.TimerRemaining(); got != 0 {
		t.Errorf("remaining past zero = %d, want 0", got)
	}
}

func TestTimerRemainingWhilePaused(t *testing.T) {
	clock := clockwork.NewFakeClock()
	engine := NewEngine(&fakeStore{}, 1, clock)

	// 停止中は保存された残り秒数がそのまま残り時間
	engine.Bootstrap(sessionWithTimer(240, nil, false), nil, nil, nil, nil, nil)
	if got := engine.TimerRemaining(); got != 240 {
		t.Errorf("paused remaining = %d, want 240", got)
	}
	clock.Advance(time.Hour)
	if got := engine.TimerRemaining(); got != 240 {
		t.Errorf("paused remaining after an hour = %d, want 240", got)
	}
}

func TestTimerTickFiresAlarmOnceAndStopsStore(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := &fakeStore{}
	engine := NewEngine(store, 1, clock)

	fired := 0
	engine.OnTimerZero = func() { fired++ }

	started := clock.Now()
	engine.Bootstrap(sessionWithTimer(5, &started, true), nil, nil, nil, nil, nil)

	clock.Advance(3 * time.Second)
	engine.TimerTick()
	if fired != 0 {
		t.Fatal("alarm fired before zero")
	}

	clock.Advance(2 * time.Second)
	engine.TimerTick()
	engine.TimerTick()
	engine.TimerTick()
	if fired != 1 {
		t.Errorf("alarm fired %d times, want exactly 1", fired)
	}
	if store.stopCalls != 1 {
		t.Errorf("StopTimer called %d times, want 1", store.stopCalls)
	}
}

func TestTimerTickReportsStopFailure(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := &fakeStore{stopErr: errors.New("network down")}
	engine := NewEngine(store, 1, clock)

	var reported error
	engine.OnStoreError = func(err error) { reported = err }

	started := clock.Now()
	engine.Bootstrap(sessionWithTimer(1, &started, true), nil, nil, nil, nil, nil)
	clock.Advance(time.Second)
	engine.TimerTick()

	if reported == nil {
		t.Fatal("failed stop write was not reported")
	}
	if reported.Error() != "network down" {
		t.Errorf("reported error = %v, want the store failure", reported)
	}
}

func TestTimerTickNotFiredWhenStopped(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := &fakeStore{}
	engine := NewEngine(store, 1, clock)

	fired := 0
	engine.OnTimerZero = func() { fired++ }

	// 残り0だが停止中のタイマーは鳴らさない
	engine.Bootstrap(sessionWithTimer(0, nil, false), nil, nil, nil, nil, nil)
	engine.TimerTick()
	if fired != 0 || store.stopCalls != 0 {
		t.Error("stopped timer must not fire the alarm")
	}
}

func TestTimerAlarmRearmsOnRestart(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := &fakeStore{}
	engine := NewEngine(store, 1, clock)

	fired := 0
	engine.OnTimerZero = func() { fired++ }

	started := clock.Now()
	engine.Bootstrap(sessionWithTimer(1, &started, true), nil, nil, nil, nil, nil)
	clock.Advance(time.Second)
	engine.TimerTick()
	if fired != 1 {
		t.Fatalf("alarm fired %d times, want 1", fired)
	}

	// フィード経由で停止→再スタートが届くとアラームは再び鳴らせる
	engine.ApplyChange(feed.NewChange(feed.TableSessions, feed.EventUpdate, sessionWithTimer(1, nil, false)))
	restarted := clock.Now()
	engine.ApplyChange(feed.NewChange(feed.TableSessions, feed.EventUpdate, sessionWithTimer(1, &restarted, true)))

	clock.Advance(time.Second)
	engine.TimerTick()
	if fired != 2 {
		t.Errorf("alarm fired %d times after restart, want 2", fired)
	}
}

func TestStopThenResumeKeepsRemaining(t *testing.T) {
	clock := clockwork.NewFakeClock()
	engine := NewEngine(&fakeStore{}, 1, clock)

	started := clock.Now()
	engine.Bootstrap(sessionWithTimer(300, &started, true), nil, nil, nil, nil, nil)
	clock.Advance(60 * time.Second)

	// 司会が停止すると残り秒数がdurationとして保存されて届く
	engine.ApplyChange(feed.NewChange(feed.TableSessions, feed.EventUpdate, sessionWithTimer(240, nil, false)))
	clock.Advance(10 * time.Minute)
	if got := engine.TimerRemaining(); got != 240 {
		t.Errorf("remaining while paused = %d, want 240", got)
	}

	// 再開は240から続く（300には戻らない）
	resumed := clock.Now()
	engine.ApplyChange(feed.NewChange(feed.TableSessions, feed.EventUpdate, sessionWithTimer(240, &resumed, true)))
	clock.Advance(40 * time.Second)
	if got := engine.TimerRemaining(); got != 200 {
		t.Errorf("remaining after resume+40s = %d, want 200", got)
	}
}
