package screens

import (
	"errors"
	"net/http"

	"retrowheel/feed"
	"retrowheel/middlewares"
	"retrowheel/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReactionToggle はハートのトグルを処理するハンドラです。check-then-act:
// (answer_id, participant_id)の行が既にあれば削除（"removed"）、
// なければ作成（"added"）。ペアごとに冪等なので連打されても行は増えない。
func ReactionToggle(c *gin.Context, db *gorm.DB, hub *feed.Hub, logger *zap.Logger) {
	claims, err := middlewares.GetClaimsFromToken(c, logger)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	var request models.ReactionToggleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request binding error"})
		return
	}

	// 対象の回答がこのセッションのものであることを確認
	var answer models.Answer
	if err := db.Where("id = ? AND session_id = ?", request.AnswerID, claims.SessionID).
		First(&answer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Respuesta no encontrada"})
		return
	}

	var existing models.Reaction
	err = db.Where("answer_id = ? AND participant_id = ?", request.AnswerID, claims.ParticipantID).
		First(&existing).Error
	if err == nil {
		// 既にあるので削除
		if err := db.Delete(&existing).Error; err != nil {
			logger.Error("Failed to delete reaction", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al reaccionar"})
			return
		}
		hub.Broadcast(claims.SessionID, feed.NewChange(feed.TableReactions, feed.EventDelete, existing))
		c.JSON(http.StatusOK, gin.H{"action": "removed"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to look up reaction", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al reaccionar"})
		return
	}

	reaction := models.Reaction{
		AnswerID:      request.AnswerID,
		ParticipantID: claims.ParticipantID,
	}
	if err := db.Create(&reaction).Error; err != nil {
		// 同じペアの同時トグルは一意制約で弾かれる
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"code": "conflict", "error": "Reaction already exists"})
			return
		}
		logger.Error("Failed to create reaction", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al reaccionar"})
		return
	}

	hub.Broadcast(claims.SessionID, feed.NewChange(feed.TableReactions, feed.EventInsert, reaction))
	c.JSON(http.StatusCreated, gin.H{"action": "added", "reaction": reaction})
}
