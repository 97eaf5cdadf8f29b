package screens

import (
	"errors"
	"net/http"
	"time"

	"retrowheel/feed"
	"retrowheel/middlewares"
	"retrowheel/models"
	"retrowheel/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionCreate はモデレーターによるセッション作成を処理するハンドラです。
// 参加コードを生成し、セッション行とモデレーター参加者行を作成して
// 署名付きトークンを返します。
func SessionCreate(c *gin.Context, db *gorm.DB, hub *feed.Hub, logger *zap.Logger) {
	var request models.SessionCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request binding error"})
		return
	}

	randGen := utils.CreateLocalRandGenerator()

	// コード衝突はデータベースの一意制約で検出し、引き直して再試行する
	var session models.Session
	const maxAttempts = 5
	var err error
	for i := 0; i < maxAttempts; i++ {
		session = models.Session{
			Code:          utils.GenerateSessionCode(randGen),
			Name:          request.Name,
			ModeratorName: request.ModeratorName,
			Status:        models.SessionActive,
		}
		err = db.Create(&session).Error
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if err != nil {
		logger.Error("Failed to create session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	// モデレーターを最初の参加者として作成
	moderator := models.Participant{
		SessionID:   session.ID,
		Name:        request.ModeratorName,
		IsModerator: true,
		JoinedAt:    time.Now(),
	}
	if err := db.Create(&moderator).Error; err != nil {
		logger.Error("Failed to create moderator participant", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create moderator participant"})
		return
	}

	token, err := middlewares.GenerateToken(moderator.ID, session.ID, true)
	if err != nil {
		logger.Error("Token generation error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session":     session,
		"participant": moderator,
		"token":       token,
	})
}
