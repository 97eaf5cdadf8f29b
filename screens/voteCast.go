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

// VoteCast は「スプリントの主役」への投票を処理するハンドラです。
// (session_id, voter_id)をキーとするupsertで、再投票は投票先の更新になる。
// 自己投票はここで拒否され、行が作られることはない。
func VoteCast(c *gin.Context, db *gorm.DB, hub *feed.Hub, logger *zap.Logger) {
	claims, err := middlewares.GetClaimsFromToken(c, logger)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	var request models.VoteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request binding error"})
		return
	}

	if request.VotedForID == claims.ParticipantID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No puedes votar por ti mismo"})
		return
	}

	// 投票先がこのセッションの参加者であることを確認
	var candidate models.Participant
	if err := db.Where("id = ? AND session_id = ?", request.VotedForID, claims.SessionID).
		First(&candidate).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Participante no encontrado"})
		return
	}

	var existing models.Vote
	err = db.Where("session_id = ? AND voter_id = ?", claims.SessionID, claims.ParticipantID).
		First(&existing).Error
	if err == nil {
		// 再投票: 投票先のみ更新
		existing.VotedForID = request.VotedForID
		if err := db.Save(&existing).Error; err != nil {
			logger.Error("Failed to update vote", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al votar"})
			return
		}
		hub.Broadcast(claims.SessionID, feed.NewChange(feed.TableVotes, feed.EventUpdate, existing))
		c.JSON(http.StatusOK, gin.H{"vote": existing})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to look up vote", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al votar"})
		return
	}

	vote := models.Vote{
		SessionID:  claims.SessionID,
		VoterID:    claims.ParticipantID,
		VotedForID: request.VotedForID,
	}
	if err := db.Create(&vote).Error; err != nil {
		// 同じ投票者の同時初回投票は一意制約で片方が負けるので、更新で再試行
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := db.Where("session_id = ? AND voter_id = ?", claims.SessionID, claims.ParticipantID).
				First(&existing).Error; err != nil {
				logger.Error("Failed to look up vote after conflict", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al votar"})
				return
			}
			existing.VotedForID = request.VotedForID
			if err := db.Save(&existing).Error; err != nil {
				logger.Error("Failed to update vote after conflict", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al votar"})
				return
			}
			hub.Broadcast(claims.SessionID, feed.NewChange(feed.TableVotes, feed.EventUpdate, existing))
			c.JSON(http.StatusOK, gin.H{"vote": existing})
			return
		}
		logger.Error("Failed to create vote", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al votar"})
		return
	}

	hub.Broadcast(claims.SessionID, feed.NewChange(feed.TableVotes, feed.EventInsert, vote))
	c.JSON(http.StatusCreated, gin.H{"vote": vote})
}
