package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"siipcoffee/internal/chat"
	"siipcoffee/internal/models"
	"siipcoffee/internal/session"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// WSConnection maintains the WebSocket connection with one chat client
type WSConnection struct {
	conn     *websocket.Conn
	send     chan []byte
	mu       sync.Mutex
	sessions *session.Registry
}

// wsRequest is one inbound chat turn from the client.
type wsRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	wsConn := &WSConnection{
		conn:     conn,
		send:     make(chan []byte, 256),
		sessions: s.sessions,
	}

	// Start the read and write pumps
	go wsConn.writePump()
	go wsConn.readPump()
}

// readPump pumps messages from the WebSocket connection to the handler
func (c *WSConnection) readPump() {
	defer func() {
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512 * 1024) // 512KB
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		// Handle the message
		c.handleMessage(message)
	}
}

// writePump pumps messages from the server to the WebSocket connection
func (c *WSConnection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// The channel was closed
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes incoming messages
func (c *WSConnection) handleMessage(message []byte) {
	var req wsRequest
	if err := json.Unmarshal(message, &req); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		return
	}
	if req.SessionID == "" {
		req.SessionID = req.UserID
	}
	if req.SessionID == "" {
		c.sendError("session_id or user_id required")
		return
	}

	// Run the turn in background so slow replies never block the read pump
	go func() {
		sess := c.sessions.GetOrCreate(req.SessionID, req.UserID)
		reply, err := sess.Send(context.Background(), req.Message)
		if err != nil {
			if err == chat.ErrBusy {
				c.sendError("A message is already being processed")
				return
			}
			c.sendError(err.Error())
			return
		}
		if reply == nil {
			return
		}
		c.sendReply(req.SessionID, reply)
	}()
}

// sendReply sends a bot reply envelope to the client
func (c *WSConnection) sendReply(sessionID string, msg *models.ChatMessage) {
	env := models.WSEnvelope{
		Success: true,
		Data: &models.WSPayload{
			Message:     msg.Text,
			Intent:      msg.Intent,
			OrderIntent: msg.OrderIntent,
			SessionID:   sessionID,
		},
	}
	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("Error marshaling reply: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case c.send <- data:
	default:
		log.Println("WebSocket buffer full, dropping message")
	}
}

// sendError sends an error envelope to the client
func (c *WSConnection) sendError(message string) {
	data, _ := json.Marshal(models.WSEnvelope{Error: message})

	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case c.send <- data:
	default:
		log.Println("WebSocket buffer full, dropping error message")
	}
}
