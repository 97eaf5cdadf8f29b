package screens

import (
	"net/http"
	"strings"
	"time"

	"retrowheel/feed"
	"retrowheel/middlewares"
	"retrowheel/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionInfo はセッションの現在の状態（参加者・回答・リアクション・
// タイマー）をまとめて返すハンドラです。ページを開いた直後の初期読み込みに
// 使い、以降の差分は変更フィードで受け取ります。
func SessionInfo(c *gin.Context, db *gorm.DB, hub *feed.Hub, logger *zap.Logger) {
	claims, err := middlewares.GetClaimsFromToken(c, logger)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	code := strings.ToUpper(c.Param("code"))

	var session models.Session
	if err := db.Where("code = ?", code).First(&session).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sesión no encontrada"})
		return
	}
	if claims.SessionID != session.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this session"})
		return
	}

	var participants []models.Participant
	if err := db.Where("session_id = ?", session.ID).Order("joined_at ASC").
		Find(&participants).Error; err != nil {
		logger.Error("Failed to load participants", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session data"})
		return
	}

	// 回答は新しい順
	var answers []models.Answer
	if err := db.Where("session_id = ?", session.ID).Order("created_at DESC").
		Find(&answers).Error; err != nil {
		logger.Error("Failed to load answers", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session data"})
		return
	}

	// セッション内の全リアクション
	var reactions []models.Reaction
	if err := db.Joins("JOIN answers ON answers.id = reactions.answer_id").
		Where("answers.session_id = ?", session.ID).
		Find(&reactions).Error; err != nil {
		logger.Error("Failed to load reactions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session data"})
		return
	}

	var hearts []models.CollectedHeart
	if err := db.Where("session_id = ?", session.ID).Find(&hearts).Error; err != nil {
		logger.Error("Failed to load hearts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":        session,
		"participants":   participants,
		"answers":        answers,
		"reactions":      reactions,
		"hearts":         hearts,
		"timerRemaining": session.TimerRemaining(time.Now()),
	})
}
