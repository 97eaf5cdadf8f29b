package models

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Websocketクライアント（変更フィードの購読者）を定義
type Client struct {
	Conn          *websocket.Conn
	ParticipantID uint // JWTから抽出した参加者ID
	SessionID     uint
	IsModerator   bool

	writeMu sync.Mutex
}

// WriteMessage serializes writes to the connection. The broadcast path
// and the ping goroutine share the same conn.
func (c *Client) WriteMessage(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}
