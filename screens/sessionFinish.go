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

// SessionFinish はセッションの終了を処理するハンドラです。モデレーター
// 専用。active→finishedの一方向の遷移で、既にfinishedの場合は何もしない。
func SessionFinish(c *gin.Context, db *gorm.DB, hub *feed.Hub, logger *zap.Logger) {
	claims, err := middlewares.GetClaimsFromToken(c, logger)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	if !claims.IsModerator {
		c.JSON(http.StatusForbidden, gin.H{"error": "Solo el moderador puede finalizar la sesión"})
		return
	}

	now := time.Now()
	// statusの条件付き更新でactive→finishedの一方向を保証
	result := db.Model(&models.Session{}).
		Where("id = ? AND status = ?", claims.SessionID, models.SessionActive).
		Updates(map[string]interface{}{
			"status":          models.SessionFinished,
			"finished_at":     now,
			"timer_is_active": false,
		})
	if result.Error != nil {
		logger.Error("Failed to finish session", zap.Error(result.Error))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to finish session"})
		return
	}

	var session models.Session
	if err := db.First(&session, claims.SessionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sesión no encontrada"})
		return
	}

	if result.RowsAffected > 0 {
		// 全クライアントを結果画面へ誘導するための更新通知
		hub.Broadcast(session.ID, feed.NewChange(feed.TableSessions, feed.EventUpdate, session))
	}

	c.JSON(http.StatusOK, gin.H{"session": session})
}
