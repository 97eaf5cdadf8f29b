package screens

import (
	"net/http"
	"unicode/utf8"

	"retrowheel/feed"
	"retrowheel/middlewares"
	"retrowheel/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AnswerSave はルーレットで選ばれた質問への回答送信を処理するハンドラです。
// 回答は作成後不変で、800文字を超える本文は境界で拒否します。
func AnswerSave(c *gin.Context, db *gorm.DB, hub *feed.Hub, logger *zap.Logger) {
	claims, err := middlewares.GetClaimsFromToken(c, logger)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	var request models.AnswerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request binding error"})
		return
	}

	if utf8.RuneCountInString(request.Answer) > models.MaxAnswerLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La respuesta supera los 800 caracteres"})
		return
	}

	// 終了したセッションには回答できない
	var session models.Session
	if err := db.Where("id = ? AND status = ?", claims.SessionID, models.SessionActive).
		First(&session).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sesión no encontrada o finalizada"})
		return
	}

	answer := models.Answer{
		SessionID:     session.ID,
		ParticipantID: claims.ParticipantID,
		Question:      request.Question,
		Answer:        request.Answer,
	}
	if err := db.Create(&answer).Error; err != nil {
		logger.Error("Failed to create answer", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al guardar la respuesta"})
		return
	}

	// モデレーターのライブビューと他の参加者に新しい回答を通知
	hub.Broadcast(session.ID, feed.NewChange(feed.TableAnswers, feed.EventInsert, answer))

	c.JSON(http.StatusCreated, gin.H{"answer": answer})
}
