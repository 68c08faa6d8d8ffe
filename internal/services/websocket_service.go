package services

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"agrimarket-backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Live event types
const (
	EventConnected           = "connected"
	EventPong                = "pong"
	EventCartUpdated         = "cart.updated"
	EventNotificationUpdated = "notification.updated"
)

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type    string      `json:"type"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Client represents a WebSocket client
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan WebSocketMessage
	Hub    *Hub
}

type userMessage struct {
	userID  string
	client  *Client // only this connection when set
	message WebSocketMessage
}

// Hub tracks every live connection per user. Only run mutates the maps.
type Hub struct {
	clients    map[*Client]bool
	users      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	deliver    chan userMessage
	stop       chan struct{}
	mutex      sync.RWMutex
	logger     *zap.Logger
}

// WebSocketService handles WebSocket connections and pushes live updates
type WebSocketService struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketService creates a new WebSocket service and starts its hub
func NewWebSocketService(allowedOrigins []string, allowAllOrigins bool, logger *zap.Logger) *WebSocketService {
	if logger == nil {
		logger = zap.NewNop()
	}
	hub := &Hub{
		clients:    make(map[*Client]bool),
		users:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan userMessage, 256),
		stop:       make(chan struct{}),
		logger:     logger,
	}

	service := &WebSocketService{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if allowAllOrigins || origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if strings.EqualFold(origin, allowed) {
						return true
					}
				}
				return false
			},
		},
		logger: logger,
	}

	go hub.run()

	return service
}

// HandleWebSocket upgrades an authenticated request to a WebSocket
func (s *WebSocketService) HandleWebSocket(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authentication required"})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan WebSocketMessage, 64),
		Hub:    s.hub,
	}
	s.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// SendToUser queues a message for every connection of a user
func (s *WebSocketService) SendToUser(userID string, message WebSocketMessage) {
	if s.ConnectionCount(userID) == 0 {
		return
	}
	select {
	case s.hub.deliver <- userMessage{userID: userID, message: message}:
	default:
		s.logger.Warn("websocket delivery queue full, dropping message",
			zap.String("userId", userID), zap.String("type", message.Type))
	}
}

// PublishCart pushes a cart change to the cart owner
func (s *WebSocketService) PublishCart(event CartEvent) {
	s.SendToUser(event.OwnerID, WebSocketMessage{
		Type: EventCartUpdated,
		Data: models.CartView{Items: event.Items, Totals: event.Totals},
	})
}

// PublishNotifications pushes the new unread count to a user
func (s *WebSocketService) PublishNotifications(userID string, unread int) {
	s.SendToUser(userID, WebSocketMessage{
		Type: EventNotificationUpdated,
		Data: gin.H{"unreadCount": unread},
	})
}

// ConnectionCount returns how many live connections a user has
func (s *WebSocketService) ConnectionCount(userID string) int {
	s.hub.mutex.RLock()
	defer s.hub.mutex.RUnlock()
	return len(s.hub.users[userID])
}

// Stop closes every connection and stops the hub
func (s *WebSocketService) Stop() {
	close(s.hub.stop)
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			if h.users[client.UserID] == nil {
				h.users[client.UserID] = make(map[*Client]bool)
			}
			h.users[client.UserID][client] = true
			h.mutex.Unlock()

			h.send(client, WebSocketMessage{Type: EventConnected, Message: "Connected to live updates"})

		case client := <-h.unregister:
			h.remove(client)

		case m := <-h.deliver:
			h.mutex.RLock()
			targets := make([]*Client, 0, len(h.users[m.userID]))
			for client := range h.users[m.userID] {
				if m.client == nil || m.client == client {
					targets = append(targets, client)
				}
			}
			h.mutex.RUnlock()

			for _, client := range targets {
				h.send(client, m.message)
			}

		case <-h.stop:
			h.mutex.Lock()
			for client := range h.clients {
				close(client.Send)
			}
			h.clients = make(map[*Client]bool)
			h.users = make(map[string]map[*Client]bool)
			h.mutex.Unlock()
			return
		}
	}
}

// send never blocks the hub; a client that cannot keep up is dropped
func (h *Hub) send(client *Client, message WebSocketMessage) {
	select {
	case client.Send <- message:
	default:
		h.logger.Warn("websocket client too slow, disconnecting", zap.String("userId", client.UserID))
		h.remove(client)
	}
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	if conns := h.users[client.UserID]; conns != nil {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.users, client.UserID)
		}
	}
	close(client.Send)
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.stop:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var message WebSocketMessage
		err := c.Conn.ReadJSON(&message)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Debug("websocket read error", zap.String("userId", c.UserID), zap.Error(err))
			}
			return
		}

		if message.Type == "ping" {
			select {
			case c.Hub.deliver <- userMessage{userID: c.UserID, client: c, message: WebSocketMessage{Type: EventPong}}:
			default:
			}
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				c.Hub.logger.Debug("websocket write error", zap.String("userId", c.UserID), zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
