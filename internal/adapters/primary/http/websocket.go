package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/versely/versely/internal/domain/entities"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// createUpgrader creates a WebSocket upgrader with proper origin validation
func (s *Server) createUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return s.isValidOrigin(r)
		},
	}
}

// ClientMode represents the type of WebSocket client
type ClientMode string

const (
	ClientModeDisplay  ClientMode = "display"
	ClientModeOperator ClientMode = "operator"
)

// WebSocketClient represents a WebSocket client connection
type WebSocketClient struct {
	id      string
	conn    *websocket.Conn
	send    chan entities.SyncEvent
	server  *Server
	mode    ClientMode
}

// ClientMessage represents a message received from the client
type ClientMessage struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// handleWebSocket handles WebSocket upgrade requests. Display windows
// connect read-only; operator consoles connect with mode=operator and may
// drive the presenter.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.createUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	mode := ClientModeDisplay
	if r.URL.Query().Get("mode") == "operator" {
		mode = ClientModeOperator
	}

	client := &WebSocketClient{
		id:     uuid.New().String(),
		conn:   conn,
		send:   make(chan entities.SyncEvent, 256),
		server: s,
		mode:   mode,
	}

	s.connMgr.register <- &Connection{
		ID:   client.id,
		Send: client.send,
	}

	go client.writePump()
	go client.readPump()

	// New displays need the current state immediately.
	state := s.presenter.State()
	event := entities.NewSyncEvent("display", map[string]interface{}{
		"state": state,
	})

	select {
	case client.send <- event:
	default:
	}
}

// readPump pumps messages from the WebSocket connection
func (c *WebSocketClient) readPump() {
	defer func() {
		c.server.connMgr.Unregister(c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.logger.Error("websocket connection error", "client", c.id, "error", err)
			}
			break
		}

		if c.mode != ClientModeOperator {
			continue
		}

		var clientMsg ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			c.server.logger.Error("bad operator message", "client", c.id, "error", err)
			continue
		}

		c.handleOperatorCommand(clientMsg)
	}
}

// writePump pumps messages to the WebSocket connection
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleOperatorCommand drives the presenter from an operator console.
func (c *WebSocketClient) handleOperatorCommand(msg ClientMessage) {
	s := c.server

	switch msg.Type {
	case "navigate":
		action, _ := msg.Data["action"].(string)
		target := 0
		if t, ok := msg.Data["target"].(float64); ok {
			target = int(t)
		}
		if err := s.presenter.Navigate(action, target); err != nil {
			s.logger.Warn("navigate failed", "client", c.id, "action", action, "error", err)
		}

	case "blank":
		on, _ := msg.Data["on"].(bool)
		s.presenter.Blank(on)

	default:
		s.logger.Debug("ignoring operator message", "client", c.id, "type", msg.Type)
	}
}

// BroadcastDisplay sends a sync event to all connected clients.
func (s *Server) BroadcastDisplay(event entities.SyncEvent) {
	s.connMgr.Broadcast(event)
}

// isValidOrigin validates WebSocket connection origins based on environment
func (s *Server) isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Allow empty origin (same-origin requests)
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		s.logger.Warn("websocket rejected: invalid origin", "origin", origin, "error", err)
		return false
	}

	if s.config.IsDevelopment() {
		return s.isDevelopmentOrigin(originURL)
	}

	return s.isProductionOrigin(originURL)
}

// isDevelopmentOrigin validates origins for development environment
func (s *Server) isDevelopmentOrigin(originURL *url.URL) bool {
	hostname := originURL.Hostname()

	allowedHosts := []string{
		"localhost",
		"127.0.0.1",
		"0.0.0.0",
	}

	for _, allowed := range allowedHosts {
		if hostname == allowed {
			return true
		}
	}

	// Displays on the venue LAN connect from private addresses.
	if strings.HasPrefix(hostname, "192.168.") ||
		strings.HasPrefix(hostname, "10.") ||
		isPrivateClassB(hostname) {
		return true
	}

	return false
}

// isProductionOrigin validates origins for production environment
func (s *Server) isProductionOrigin(originURL *url.URL) bool {
	for _, allowedOrigin := range s.config.GetCORSOrigins() {
		if originURL.String() == allowedOrigin {
			return true
		}

		if strings.HasPrefix(allowedOrigin, "*.") {
			domain := strings.TrimPrefix(allowedOrigin, "*.")
			if strings.HasSuffix(originURL.Hostname(), domain) {
				return true
			}
		}
	}

	s.logger.Warn("websocket rejected: origin not in whitelist",
		"origin", originURL.String(),
		"allowed", s.config.GetCORSOrigins())
	return false
}

// isPrivateClassB checks for 172.16.0.0 to 172.31.255.255 range
func isPrivateClassB(hostname string) bool {
	if !strings.HasPrefix(hostname, "172.") {
		return false
	}

	parts := strings.Split(hostname, ".")
	if len(parts) < 2 {
		return false
	}

	switch parts[1] {
	case "16", "17", "18", "19", "20", "21", "22", "23", "24", "25", "26", "27", "28", "29", "30", "31":
		return true
	default:
		return false
	}
}
