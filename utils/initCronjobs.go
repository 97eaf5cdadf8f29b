package utils

import (
	"time"

	"retrowheel/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func CronCleaner(db *gorm.DB, logger *zap.Logger) {
	c := cron.New()

	// 放置されたセッションをfinishedに更新するジョブ（毎日実行）
	c.AddFunc("@daily", func() {
		logger.Info("放置セッションの回収を開始")
		now := time.Now()
		// 24時間更新がないactiveセッションをfinishedに更新
		result := db.Model(&models.Session{}).
			Where("status = ? AND updated_at <= ?", models.SessionActive, now.Add(-24*time.Hour)).
			Updates(map[string]interface{}{
				"status":          models.SessionFinished,
				"finished_at":     now,
				"timer_is_active": false,
			})
		if result.Error != nil {
			logger.Error("放置セッションの回収に失敗しました", zap.Error(result.Error))
		} else if result.RowsAffected > 0 {
			logger.Info("放置セッションを回収", zap.Int64("sessions", result.RowsAffected))
		}
	})

	// 古いfinishedセッションを削除するジョブ（"分 時 日 月 曜日"）
	c.AddFunc("0 3 * * *", func() {
		logger.Info("古いセッションの削除処理を開始")
		// 7日以上前に終了したセッションを取得
		expiredIDs := []uint{}
		db.Model(&models.Session{}).
			Where("status = ? AND updated_at <= ?", models.SessionFinished, time.Now().Add(-7*24*time.Hour)).
			Pluck("id", &expiredIDs)

		if len(expiredIDs) == 0 {
			return
		}

		// 依存する行を先に削除
		var answerIDs []uint
		db.Model(&models.Answer{}).Where("session_id IN ?", expiredIDs).Pluck("id", &answerIDs)
		if len(answerIDs) > 0 {
			db.Where("answer_id IN ?", answerIDs).Delete(&models.Reaction{})
		}
		db.Where("session_id IN ?", expiredIDs).Delete(&models.Answer{})
		db.Where("session_id IN ?", expiredIDs).Delete(&models.Vote{})
		db.Where("session_id IN ?", expiredIDs).Delete(&models.CollectedHeart{})
		db.Where("session_id IN ?", expiredIDs).Delete(&models.Participant{})

		// 最後にセッション自体を削除
		result := db.Where("id IN ?", expiredIDs).Delete(&models.Session{})
		if result.Error != nil {
			logger.Error("古いセッションの削除に失敗しました", zap.Error(result.Error))
		} else {
			logger.Info("古いセッションの削除完了", zap.Int("sessions_deleted", int(result.RowsAffected)))
		}
	})

	c.Start()
}
