package screens

import (
	"errors"
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

// SessionJoin は参加コードによる入室を処理するハンドラです。
func SessionJoin(c *gin.Context, db *gorm.DB, hub *feed.Hub, logger *zap.Logger) {
	code := strings.ToUpper(c.Param("code")) // コードは大文字で保存されている

	var request models.SessionJoinRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request binding error"})
		return
	}

	// activeなセッションのみ参加可能
	var session models.Session
	if err := db.Where("code = ? AND status = ?", code, models.SessionActive).
		First(&session).Error; err != nil {
		logger.Error("Session not found with code", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "Sesión no encontrada o finalizada"})
		return
	}

	participant := models.Participant{
		SessionID:   session.ID,
		Name:        request.Name,
		IsModerator: false,
		JoinedAt:    time.Now(),
	}
	if err := db.Create(&participant).Error; err != nil {
		// 名前の重複は一意制約違反として返ってくる
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{
				"code":  "conflict",
				"error": "Ya existe un participante con ese nombre en esta sesión",
			})
			return
		}
		logger.Error("Failed to create participant", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join session"})
		return
	}

	token, err := middlewares.GenerateToken(participant.ID, session.ID, false)
	if err != nil {
		logger.Error("Token generation error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
		return
	}

	// 他のクライアントに新しい参加者を通知
	hub.Broadcast(session.ID, feed.NewChange(feed.TableParticipants, feed.EventInsert, participant))

	c.JSON(http.StatusCreated, gin.H{
		"session":     session,
		"participant": participant,
		"token":       token,
	})
}
