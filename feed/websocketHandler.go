package feed

import (
	"context"
	"net/http"
	"time"

	"retrowheel/middlewares"
	"retrowheel/models"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WebSocket接続へのアップグレードを行い、クライアントを変更フィードの
// 購読者として登録する。1接続＝1セッションの購読で、接続が生きている間
// そのセッションへの全書き込みがプッシュ配信される。
func HandleConnections(ctx context.Context, c *gin.Context, db *gorm.DB, rdb *redis.Client, hub *Hub, logger *zap.Logger, upgrader websocket.Upgrader) {
	// トークンから購読者の身元を取得
	claims, err := middlewares.GetClaimsFromToken(c, logger)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	client := &models.Client{
		ParticipantID: claims.ParticipantID,
		SessionID:     claims.SessionID,
		IsModerator:   claims.IsModerator,
	}

	// フィードセッションIDが送られてきた場合は購読者情報を復元
	feedSessionID := c.GetHeader("FeedSessionID")
	if feedSessionID != "" {
		restored := ValidateFeedSession(ctx, rdb, feedSessionID, logger)
		if restored == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired feed session ID"})
			return
		}
		client.ParticipantID = restored.ParticipantID
		client.SessionID = restored.SessionID
		client.IsModerator = restored.IsModerator
		// 旧フィードセッションの削除。新しいIDは接続確立後に再発行される。
		rdb.Del(ctx, "feed:"+feedSessionID)
	}

	// 購読者がセッションの参加者であることを確認
	var participant models.Participant
	if err := db.Where("id = ? AND session_id = ?", client.ParticipantID, client.SessionID).
		First(&participant).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this session"})
		return
	}

	// WebSocket接続へのアップグレードと確立
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("Error upgrading WebSocket", zap.Error(err))
		return
	}
	client.Conn = conn

	hub.Register(client)

	// WebSocketのCloseHandlerを設定
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Info("WebSocket closed", zap.Int("code", code), zap.String("reason", text))
		hub.Unregister(client)
		conn.Close()
		return nil
	})

	// クライアントごとにメッセージ読み取りゴルーチンを起動。
	// フィードは配信専用なので受信内容は読み捨て、切断検知のみ行う。
	go func() {
		defer func() {
			hub.Unregister(client)
			conn.Close()
			logger.Info("Feed client removed", zap.Uint("ParticipantID", client.ParticipantID))
		}()
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Ping/Pongを管理するゴルーチンを起動
	go func(cl *models.Client) {
		// Pongメッセージを受信したら読み取りデッドラインを更新
		cl.Conn.SetPongHandler(func(string) error {
			cl.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		pingPeriod := 10 * time.Second // 10秒ごとにPingを送信
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for range ticker.C {
			if err := cl.WriteMessage(websocket.PingMessage, nil); err != nil {
				return // 切断は読み取りゴルーチン側で後始末される
			}
		}
	}(client)

	// 再接続用のフィードセッションIDを発行してクライアントへ返す
	if err := GenerateAndStoreFeedSession(ctx, client, rdb, logger); err != nil {
		logger.Error("Failed to generate or store feed session ID", zap.Error(err))
	}
}
