package client

import (
	"context"
	"time"
)

// TimerRemaining はキャッシュ上のタイマー状態とこのクライアント自身の
// 時計から残り秒数を導出します。作動中は started_at からの経過で再計算し、
// 停止中は保存されている残り秒数をそのまま返す。クライアント間の時計の
// ずれによる表示の食い違いは許容している。
func (e *Engine) TimerRemaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.TimerRemaining(e.clock.Now())
}

// TimerTick は1秒ごとの再計算1回分。ローカル計算で0に達した最初の
// 1回だけOnTimerZeroを呼び、停止状態をストアに書き込む。複数クライアントが
// 同時に0へ到達してstopを書き合うことがあるが、stopは冪等なので無害。
func (e *Engine) TimerTick() {
	e.mu.Lock()
	running := e.session.TimerIsActive
	remaining := e.session.TimerRemaining(e.clock.Now())
	fired := e.alarmFired
	if running && remaining == 0 && !fired {
		e.alarmFired = true
	}
	e.mu.Unlock()

	if running && remaining == 0 && !fired {
		if e.OnTimerZero != nil {
			e.OnTimerZero()
		}
		// 確定した停止状態はフィード経由で全クライアントに配られる
		if err := e.store.StopTimer(); err != nil && e.OnStoreError != nil {
			e.OnStoreError(err)
		}
	}
}

// RunTimer は毎秒TimerTickを呼ぶループです。タブが開いている間
// ゴルーチンとして回し、ctxのキャンセルで止める。
func (e *Engine) RunTimer(ctx context.Context) {
	ticker := e.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			e.TimerTick()
		}
	}
}
