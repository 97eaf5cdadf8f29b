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

// HeartCollect はラッキーハートのマスに当たった参加者のカウンターを
// 1加算するハンドラです。行がなければ作成する。
func HeartCollect(c *gin.Context, db *gorm.DB, hub *feed.Hub, logger *zap.Logger) {
	claims, err := middlewares.GetClaimsFromToken(c, logger)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	var heart models.CollectedHeart
	err = db.Where("session_id = ? AND participant_id = ?", claims.SessionID, claims.ParticipantID).
		First(&heart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		heart = models.CollectedHeart{
			SessionID:     claims.SessionID,
			ParticipantID: claims.ParticipantID,
			HeartsCount:   1,
		}
		if err := db.Create(&heart).Error; err != nil {
			// 同時の初回加算は一意制約で片方が負けるので、加算で再試行
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				logger.Error("Failed to create collected heart", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al guardar el corazón"})
				return
			}
			// fallthroughで加算パスへ
		} else {
			hub.Broadcast(claims.SessionID, feed.NewChange(feed.TableCollectedHearts, feed.EventInsert, heart))
			c.JSON(http.StatusCreated, gin.H{"heart": heart})
			return
		}
	} else if err != nil {
		logger.Error("Failed to look up collected heart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al guardar el corazón"})
		return
	}

	// 加算はデータベース側の式で行い、同時加算でも取りこぼさない
	if err := db.Model(&models.CollectedHeart{}).
		Where("session_id = ? AND participant_id = ?", claims.SessionID, claims.ParticipantID).
		Update("hearts_count", gorm.Expr("hearts_count + 1")).Error; err != nil {
		logger.Error("Failed to increment hearts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al guardar el corazón"})
		return
	}

	db.Where("session_id = ? AND participant_id = ?", claims.SessionID, claims.ParticipantID).
		First(&heart)

	hub.Broadcast(claims.SessionID, feed.NewChange(feed.TableCollectedHearts, feed.EventUpdate, heart))
	c.JSON(http.StatusOK, gin.H{"heart": heart})
}
