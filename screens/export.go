package screens

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"retrowheel/feed"
	"retrowheel/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Export はセッションの全回答をプレーンテキストで書き出すハンドラです。
// 参加者ごとに質問・回答・送信時刻を並べ、retro-<code>-<timestamp>.txt
// という名前の添付ファイルとして返します。
func Export(c *gin.Context, db *gorm.DB, hub *feed.Hub, logger *zap.Logger) {
	code := strings.ToUpper(c.Param("code"))

	var session models.Session
	if err := db.Where("code = ?", code).First(&session).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sesión no encontrada"})
		return
	}

	var participants []models.Participant
	if err := db.Where("session_id = ?", session.ID).Order("joined_at ASC").
		Find(&participants).Error; err != nil {
		logger.Error("Failed to load participants", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export session"})
		return
	}

	var answers []models.Answer
	if err := db.Where("session_id = ?", session.ID).Order("created_at DESC").
		Find(&answers).Error; err != nil {
		logger.Error("Failed to load answers", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export session"})
		return
	}
	answersByParticipant := make(map[uint][]models.Answer)
	for _, a := range answers {
		answersByParticipant[a.ParticipantID] = append(answersByParticipant[a.ParticipantID], a)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "RETROSPECTIVA: %s\n", session.Name)
	fmt.Fprintf(&b, "Código de Sesión: %s\n", session.Code)
	fmt.Fprintf(&b, "Moderador: %s\n", session.ModeratorName)
	fmt.Fprintf(&b, "Fecha: %s\n", session.CreatedAt.Format("02/01/2006 15:04:05"))
	fmt.Fprintf(&b, "\n%s\n\n", strings.Repeat("=", 60))

	for _, participant := range participants {
		fmt.Fprintf(&b, "PARTICIPANTE: %s\n", participant.Name)
		fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 60))

		pAnswers := answersByParticipant[participant.ID]
		if len(pAnswers) == 0 {
			b.WriteString("  (Sin respuestas)\n\n")
		} else {
			for idx, answer := range pAnswers {
				fmt.Fprintf(&b, "\n%d. %s\n", idx+1, answer.Question)
				fmt.Fprintf(&b, "   Respuesta: %s\n", answer.Answer)
				fmt.Fprintf(&b, "   Hora: %s\n", answer.CreatedAt.Format("15:04:05"))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	filename := fmt.Sprintf("retro-%s-%d.txt", session.Code, time.Now().UnixMilli())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(b.String()))
}
