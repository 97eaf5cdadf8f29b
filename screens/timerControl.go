package screens

import (
	"net/http"
	"time"

	"retrowheel/feed"
	"retrowheel/middlewares"
	"retrowheel/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TimerControl は共有タイマーの操作を処理するハンドラです。モデレーター専用。
// タイマーの正とする状態（開始時刻・残り秒数・作動フラグ）はSession行に
// 保存され、各クライアントが自分の時計で残り時間を導出する。
//
// 遷移:
//   - start: 停止中→作動中。durationを設定しstarted_atを現在時刻にする。
//   - stop:  作動中→停止中。残り秒数を再計算して保存し、started_atを消す。
//     既に停止中なら何もしない（複数クライアントが0到達で競って
//     stopを書く設計なので、二重stopは明示的に無害な no-op とする）。
//   - add:   作動中・停止中いずれでもdurationに加算。
//   - reset: どの状態からでも初期状態へ。
func TimerControl(c *gin.Context, db *gorm.DB, hub *feed.Hub, logger *zap.Logger) {
	claims, err := middlewares.GetClaimsFromToken(c, logger)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	if !claims.IsModerator {
		c.JSON(http.StatusForbidden, gin.H{"error": "Solo el moderador puede controlar el temporizador"})
		return
	}

	var request models.TimerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request binding error"})
		return
	}

	var session models.Session
	if err := db.First(&session, claims.SessionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sesión no encontrada"})
		return
	}
	if session.Status != models.SessionActive {
		c.JSON(http.StatusConflict, gin.H{"error": "La sesión ya ha finalizado"})
		return
	}

	now := time.Now()
	switch request.Action {
	case "start":
		duration := request.Seconds
		if duration <= 0 {
			// 秒数の指定がなければ停止中に保持している残り秒数から再開
			duration = session.TimerDuration
		}
		if duration <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Duración inválida"})
			return
		}
		session.TimerDuration = duration
		session.TimerStartedAt = &now
		session.TimerIsActive = true

	case "stop":
		if !session.TimerIsActive {
			// 二重stopは no-op。先に書いたクライアントが勝ち。
			c.JSON(http.StatusOK, gin.H{"session": session, "timerRemaining": session.TimerRemaining(now)})
			return
		}
		session.TimerDuration = session.TimerRemaining(now)
		session.TimerStartedAt = nil
		session.TimerIsActive = false

	case "add":
		if request.Seconds <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Duración inválida"})
			return
		}
		session.TimerDuration += request.Seconds

	case "reset":
		session.TimerDuration = 0
		session.TimerStartedAt = nil
		session.TimerIsActive = false

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Acción inválida"})
		return
	}

	// started_atのnil化も反映されるようカラムを明示して保存
	if err := db.Model(&session).
		Select("timer_duration", "timer_started_at", "timer_is_active").
		Updates(&session).Error; err != nil {
		logger.Error("Failed to persist timer state", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar el temporizador"})
		return
	}

	hub.Broadcast(session.ID, feed.NewChange(feed.TableSessions, feed.EventUpdate, session))

	c.JSON(http.StatusOK, gin.H{
		"session":        session,
		"timerRemaining": session.TimerRemaining(now),
	})
}
