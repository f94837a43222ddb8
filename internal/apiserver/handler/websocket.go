package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/storecrew/storecrew/internal/apiserver/notifier"
	"github.com/storecrew/storecrew/internal/auth/jwt"
)

// RealtimeManager fans database change events out to WebSocket clients.
// Clients subscribe per table and receive every matching event; row-level
// filtering happens client side against data the caller could read anyway.
type RealtimeManager struct {
	jwtService *jwt.Service
	notifier   notifier.Notifier
	logger     *zap.Logger

	clients  map[string]*realtimeClient
	mutex    sync.RWMutex
	upgrader websocket.Upgrader
}

type realtimeClient struct {
	conn   *websocket.Conn
	userID string
	tables map[string]struct{}
	mu     sync.Mutex
}

// SubscribeMessage is the client-to-server subscription frame
type SubscribeMessage struct {
	Type   string   `json:"type"` // "subscribe", "unsubscribe"
	Tables []string `json:"tables"`
}

// RealtimeMessage is the server-to-client event frame
type RealtimeMessage struct {
	Type      string          `json:"type"` // "event", "connected"
	Event     string          `json:"event,omitempty"`
	Table     string          `json:"table,omitempty"`
	Record    json.RawMessage `json:"record,omitempty"`
	ClientID  string          `json:"client_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewRealtimeManager creates a realtime fanout manager
func NewRealtimeManager(jwtService *jwt.Service, n notifier.Notifier, logger *zap.Logger) *RealtimeManager {
	return &RealtimeManager{
		jwtService: jwtService,
		notifier:   n,
		logger:     logger.Named("realtime"),
		clients:    make(map[string]*realtimeClient),
		upgrader: websocket.Upgrader{
			CheckOrigin:      func(r *http.Request) bool { return true },
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// Run consumes the notifier stream and broadcasts until ctx is canceled
func (m *RealtimeManager) Run(ctx context.Context) error {
	events, err := m.notifier.Subscribe(ctx)
	if err != nil {
		return err
	}
	go func() {
		for event := range events {
			m.broadcast(event)
		}
	}()
	return nil
}

// Handle upgrades the connection and serves the subscription loop. The
// token travels as a query parameter because browsers cannot set headers
// on WebSocket handshakes.
func (m *RealtimeManager) Handle(c *gin.Context) {
	claims, err := m.jwtService.ValidateToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := m.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		m.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	client := &realtimeClient{
		conn:   conn,
		userID: claims.UserID,
		tables: make(map[string]struct{}),
	}
	clientID := uuid.NewString()

	m.mutex.Lock()
	m.clients[clientID] = client
	m.mutex.Unlock()
	defer func() {
		m.mutex.Lock()
		delete(m.clients, clientID)
		m.mutex.Unlock()
		m.logger.Info("realtime client disconnected", zap.String("client_id", clientID))
	}()

	m.logger.Info("realtime client connected",
		zap.String("client_id", clientID),
		zap.String("user_id", claims.UserID))

	if err := client.write(&RealtimeMessage{Type: "connected", Timestamp: time.Now()}); err != nil {
		return
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	for {
		var msg SubscribeMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.logger.Warn("realtime read error", zap.Error(err))
			}
			return
		}
		client.mu.Lock()
		switch msg.Type {
		case "subscribe":
			for _, table := range msg.Tables {
				client.tables[table] = struct{}{}
			}
		case "unsubscribe":
			for _, table := range msg.Tables {
				delete(client.tables, table)
			}
		}
		client.mu.Unlock()
	}
}

func (m *RealtimeManager) broadcast(event *notifier.Event) {
	msg := &RealtimeMessage{
		Type:      "event",
		Event:     event.Event,
		Table:     event.Table,
		Record:    event.Record,
		ClientID:  event.ClientID,
		Timestamp: event.Timestamp,
	}

	m.mutex.RLock()
	clients := make(map[string]*realtimeClient, len(m.clients))
	for id, client := range m.clients {
		clients[id] = client
	}
	m.mutex.RUnlock()

	for clientID, client := range clients {
		client.mu.Lock()
		_, subscribed := client.tables[event.Table]
		client.mu.Unlock()
		if !subscribed {
			continue
		}
		if err := client.write(msg); err != nil {
			m.logger.Debug("dropping dead realtime client",
				zap.String("client_id", clientID), zap.Error(err))
			_ = client.conn.Close()
			m.mutex.Lock()
			delete(m.clients, clientID)
			m.mutex.Unlock()
		}
	}
}

// SendHeartbeat pings all clients on an interval so half-open connections
// get reaped.
func (m *RealtimeManager) SendHeartbeat(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.pingAll()
		}
	}
}

func (m *RealtimeManager) pingAll() {
	m.mutex.RLock()
	clients := make(map[string]*realtimeClient, len(m.clients))
	for id, client := range m.clients {
		clients[id] = client
	}
	m.mutex.RUnlock()

	for clientID, client := range clients {
		client.mu.Lock()
		err := client.conn.WriteMessage(websocket.PingMessage, nil)
		client.mu.Unlock()
		if err != nil {
			_ = client.conn.Close()
			m.mutex.Lock()
			delete(m.clients, clientID)
			m.mutex.Unlock()
		}
	}
}

// ConnectionCount returns the number of connected clients
func (m *RealtimeManager) ConnectionCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// CloseAll closes every client connection
func (m *RealtimeManager) CloseAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, client := range m.clients {
		_ = client.conn.Close()
	}
	m.clients = make(map[string]*realtimeClient)
}

func (c *realtimeClient) write(msg *RealtimeMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}
