package feed

import (
	"context"
	"encoding/json"
	"time"

	"retrowheel/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ValidateFeedSession checks the feed session ID in Redis and returns
// the stored subscriber identity when it is still valid.
func ValidateFeedSession(ctx context.Context, rdb *redis.Client, feedSessionID string, logger *zap.Logger) *models.Client {
	if feedSessionID == "" {
		return nil
	}

	infoJSON, err := rdb.Get(ctx, "feed:"+feedSessionID).Result()
	if err != nil {
		logger.Error("Failed to retrieve feed session info", zap.Error(err))
		return nil
	}

	var info map[string]interface{}
	if err := json.Unmarshal([]byte(infoJSON), &info); err != nil {
		logger.Error("Failed to decode feed session info", zap.Error(err))
		return nil
	}

	participantID, ok := info["participantID"].(float64) // JSONの数値はfloat64としてデコードされる
	if !ok {
		logger.Error("Invalid feed session info: missing participantID")
		return nil
	}
	sessionID, ok := info["sessionID"].(float64)
	if !ok {
		logger.Error("Invalid feed session info: missing sessionID")
		return nil
	}
	isModerator, _ := info["isModerator"].(bool)

	return &models.Client{
		ParticipantID: uint(participantID),
		SessionID:     uint(sessionID),
		IsModerator:   isModerator,
	}
}

// GenerateAndStoreFeedSession は再接続用のフィードセッションIDを発行して
// Redisに保存し、クライアントに送り返します。
func GenerateAndStoreFeedSession(ctx context.Context, client *models.Client, rdb *redis.Client, logger *zap.Logger) error {
	feedSessionID := uuid.New().String()

	info := map[string]interface{}{
		"participantID": client.ParticipantID,
		"sessionID":     client.SessionID,
		"isModerator":   client.IsModerator,
	}
	infoJSON, err := json.Marshal(info)
	if err != nil {
		logger.Error("Error encoding feed session info", zap.Error(err))
		return err
	}

	// 24時間の有効期限
	err = rdb.Set(ctx, "feed:"+feedSessionID, infoJSON, 24*time.Hour).Err()
	if err != nil {
		logger.Error("Error storing feed session info in Redis", zap.Error(err))
		return err
	}

	return sendFeedSessionToClient(client, feedSessionID, logger)
}

func sendFeedSessionToClient(client *models.Client, feedSessionID string, logger *zap.Logger) error {
	response := map[string]interface{}{
		"type":          "subscribed",
		"feedSessionID": feedSessionID,
		"participantID": client.ParticipantID,
	}
	responseJSON, err := json.Marshal(response)
	if err != nil {
		logger.Error("Error marshalling feed session response", zap.Error(err))
		return err
	}

	if client.Conn == nil {
		logger.Warn("WebSocket connection is not established, cannot send feed session ID")
		return nil
	}
	if err := client.WriteMessage(websocket.TextMessage, responseJSON); err != nil {
		logger.Error("Error sending feed session ID to client", zap.Error(err))
		return err
	}
	return nil
}
