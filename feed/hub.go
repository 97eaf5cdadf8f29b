package feed

import (
	"encoding/json"
	"sync"

	"retrowheel/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub はセッションIDごとの購読者を管理し、確定した書き込みを
// 変更イベントとして全購読クライアントに配信します。
type Hub struct {
	mu       sync.RWMutex
	sessions map[uint]map[*models.Client]bool
	logger   *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		sessions: make(map[uint]map[*models.Client]bool),
		logger:   logger,
	}
}

func (h *Hub) Register(client *models.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[client.SessionID] == nil {
		h.sessions[client.SessionID] = make(map[*models.Client]bool)
	}
	h.sessions[client.SessionID][client] = true
	h.logger.Info("New feed subscriber",
		zap.Uint("ParticipantID", client.ParticipantID),
		zap.Uint("SessionID", client.SessionID),
		zap.Int("subscribers", len(h.sessions[client.SessionID])))
}

func (h *Hub) Unregister(client *models.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.sessions[client.SessionID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.sessions, client.SessionID)
		}
		h.logger.Info("Feed subscriber removed", zap.Uint("ParticipantID", client.ParticipantID))
	}
}

// SubscriberCount は指定セッションの現在の購読者数を返します。
func (h *Hub) SubscriberCount(sessionID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// Broadcast は変更イベントをセッションの全購読者に送信します。
// 書き込みに失敗した接続は切断扱いで購読から外します。
func (h *Hub) Broadcast(sessionID uint, event ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.sessions[sessionID]
	if !ok {
		return
	}

	messageJSON, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal change event", zap.Error(err))
		return
	}

	for client := range conns {
		if err := client.WriteMessage(websocket.TextMessage, messageJSON); err != nil {
			h.logger.Error("Failed to broadcast change event", zap.Error(err))
			client.Conn.Close()
			delete(conns, client)
		}
	}
}
