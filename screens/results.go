package screens

import (
	"net/http"
	"strings"

	"retrowheel/feed"
	"retrowheel/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 結果画面の回答表示用
type answerWithReactions struct {
	models.Answer
	ParticipantName string            `json:"participantName"`
	Reactions       []models.Reaction `json:"reactions"`
	ReactionCount   int               `json:"reactionCount"`
}

// Results は終了したセッションの結果（参加者ごとの回答・リアクション数・
// 投票の集計と勝者・集めたハート）を返すハンドラです。
func Results(c *gin.Context, db *gorm.DB, hub *feed.Hub, logger *zap.Logger) {
	code := strings.ToUpper(c.Param("code"))

	var session models.Session
	if err := db.Where("code = ?", code).First(&session).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sesión no encontrada"})
		return
	}
	if session.Status != models.SessionFinished {
		c.JSON(http.StatusConflict, gin.H{"error": "La sesión aún no ha finalizado"})
		return
	}

	var participants []models.Participant
	if err := db.Where("session_id = ?", session.ID).Order("joined_at ASC").
		Find(&participants).Error; err != nil {
		logger.Error("Failed to load participants", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load results"})
		return
	}
	names := make(map[uint]string, len(participants))
	for _, p := range participants {
		names[p.ID] = p.Name
	}

	var answers []models.Answer
	if err := db.Where("session_id = ?", session.ID).Order("created_at DESC").
		Find(&answers).Error; err != nil {
		logger.Error("Failed to load answers", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load results"})
		return
	}

	var reactions []models.Reaction
	if err := db.Joins("JOIN answers ON answers.id = reactions.answer_id").
		Where("answers.session_id = ?", session.ID).
		Find(&reactions).Error; err != nil {
		logger.Error("Failed to load reactions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load results"})
		return
	}
	reactionsByAnswer := make(map[uint][]models.Reaction)
	for _, r := range reactions {
		reactionsByAnswer[r.AnswerID] = append(reactionsByAnswer[r.AnswerID], r)
	}

	answersOut := make([]answerWithReactions, 0, len(answers))
	for _, a := range answers {
		answersOut = append(answersOut, answerWithReactions{
			Answer:          a,
			ParticipantName: names[a.ParticipantID],
			Reactions:       reactionsByAnswer[a.ID],
			ReactionCount:   len(reactionsByAnswer[a.ID]),
		})
	}

	var votes []models.Vote
	if err := db.Where("session_id = ?", session.ID).Find(&votes).Error; err != nil {
		logger.Error("Failed to load votes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load results"})
		return
	}

	// 同数の場合は全員が勝者。投票ゼロなら勝者なし。
	winnerIDs := models.VoteWinners(votes)
	winners := make([]gin.H, 0, len(winnerIDs))
	tally := models.TallyVotes(votes)
	for _, id := range winnerIDs {
		winners = append(winners, gin.H{
			"participantId": id,
			"name":          names[id],
			"votes":         tally[id],
		})
	}

	var hearts []models.CollectedHeart
	if err := db.Where("session_id = ?", session.ID).Find(&hearts).Error; err != nil {
		logger.Error("Failed to load hearts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load results"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":      session,
		"participants": participants,
		"answers":      answersOut,
		"votes":        votes,
		"winners":      winners,
		"hearts":       hearts,
	})
}
