package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/cueroom/go/internal/events"
)

// ConnectionManager fans room events out to WebSocket viewers. Connections
// are pooled per room; the first viewer of a room opens an event
// subscription, the last one closing tears it down.
type ConnectionManager struct {
	channel events.Channel

	mu    sync.RWMutex
	rooms map[uuid.UUID]*roomPool

	upgrader websocket.Upgrader
	config   ConnectionConfig

	broadcastCh chan broadcastMessage
}

type roomPool struct {
	conns  map[*Connection]bool
	sub    events.Subscription
	cancel context.CancelFunc
}

// Connection represents a single WebSocket viewer.
type Connection struct {
	ID     string
	RoomID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte

	manager *ConnectionManager

	// mu guards closed and the Send channel: deliveries and the close on
	// unregister race otherwise. Same discipline as the in-memory event
	// channel subscriptions.
	mu     sync.Mutex
	closed bool

	ConnectedAt time.Time
	LastPing    time.Time
}

// ConnectionConfig holds WebSocket tuning knobs.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

type broadcastMessage struct {
	RoomID  uuid.UUID
	Payload []byte
}

// DefaultConnectionConfig returns the default WebSocket configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// NewConnectionManager creates a connection manager over the given event channel.
func NewConnectionManager(channel events.Channel, config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		channel: channel,
		rooms:   make(map[uuid.UUID]*roomPool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan broadcastMessage, 1000),
	}
}

// Start processes broadcast messages until the context is cancelled.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// UpgradeConnection upgrades an HTTP request to a WebSocket viewer connection
// and returns the connection so the caller can push an initial snapshot.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, roomID uuid.UUID) (*Connection, error) {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		RoomID:      roomID,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		manager:     cm,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}

	if err := cm.registerConnection(connection); err != nil {
		conn.Close()
		return nil, err
	}

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("room_id", roomID.String()).
		Msg("WebSocket connection established")

	return connection, nil
}

// registerConnection adds a connection to its room pool, opening the room's
// event subscription if this is the first viewer.
func (cm *ConnectionManager) registerConnection(conn *Connection) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	pool, ok := cm.rooms[conn.RoomID]
	if !ok {
		sub, err := cm.channel.Subscribe(context.Background(), conn.RoomID)
		if err != nil {
			return fmt.Errorf("subscribe room events: %w", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		pool = &roomPool{
			conns:  make(map[*Connection]bool),
			sub:    sub,
			cancel: cancel,
		}
		cm.rooms[conn.RoomID] = pool
		go cm.consumeRoomEvents(ctx, conn.RoomID, sub)
	}
	pool.conns[conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("room_id", conn.RoomID.String()).
		Int("total_connections", len(pool.conns)).
		Msg("connection registered")
	return nil
}

// unregisterConnection removes a connection, tearing the room subscription
// down when the pool empties.
func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	pool, ok := cm.rooms[conn.RoomID]
	if !ok {
		return
	}
	if _, ok := pool.conns[conn]; !ok {
		return
	}
	delete(pool.conns, conn)
	conn.closeSend()

	if len(pool.conns) == 0 {
		pool.cancel()
		if err := pool.sub.Unsubscribe(); err != nil {
			log.Warn().Err(err).Str("room_id", conn.RoomID.String()).Msg("failed to unsubscribe room events")
		}
		delete(cm.rooms, conn.RoomID)
	}

	log.Info().
		Str("connection_id", conn.ID).
		Str("room_id", conn.RoomID.String()).
		Msg("connection unregistered")
}

// consumeRoomEvents bridges one room's event subscription into the broadcast loop.
func (cm *ConnectionManager) consumeRoomEvents(ctx context.Context, roomID uuid.UUID, sub events.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-sub.C():
			if !ok {
				return
			}
			payload, err := json.Marshal(env)
			if err != nil {
				log.Error().Err(err).Msg("failed to marshal event for broadcast")
				continue
			}
			select {
			case cm.broadcastCh <- broadcastMessage{RoomID: roomID, Payload: payload}:
			default:
				log.Warn().Str("room_id", roomID.String()).Msg("broadcast channel full, dropping message")
			}
		}
	}
}

// handleBroadcast delivers a payload to every viewer of a room.
func (cm *ConnectionManager) handleBroadcast(message broadcastMessage) {
	cm.mu.RLock()
	pool, ok := cm.rooms[message.RoomID]
	if !ok {
		cm.mu.RUnlock()
		return
	}
	targets := make([]*Connection, 0, len(pool.conns))
	for conn := range pool.conns {
		targets = append(targets, conn)
	}
	cm.mu.RUnlock()

	for _, conn := range targets {
		if conn.deliver(message.Payload) {
			continue
		}
		// Connection is slow/dead, close it
		log.Warn().
			Str("connection_id", conn.ID).
			Msg("connection send buffer full, closing connection")
		cm.unregisterConnection(conn)
		conn.Conn.Close()
	}

	log.Debug().
		Str("room_id", message.RoomID.String()).
		Int("connections", len(targets)).
		Msg("event broadcasted")
}

// ConnectionStats reports active connection counts per room.
func (cm *ConnectionManager) ConnectionStats() (total int, roomCounts map[string]int) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	roomCounts = make(map[string]int)
	for roomID, pool := range cm.rooms {
		roomCounts[roomID.String()] = len(pool.conns)
		total += len(pool.conns)
	}
	return total, roomCounts
}

// SendJSON queues a message on a single connection without broadcasting.
func (c *Connection) SendJSON(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if !c.deliver(payload) {
		return fmt.Errorf("send buffer full")
	}
	return nil
}

// deliver queues a payload unless the connection was already unregistered.
// Reports false only when the send buffer is full; a closed connection is
// treated as delivered since nothing is listening anymore.
func (c *Connection) deliver(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once, blocking out concurrent
// deliveries so no send can hit a closed channel.
func (c *Connection) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// writePump drains the send channel onto the socket and keeps pings flowing.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			c.LastPing = time.Now()
		}
	}
}

// readPump consumes client frames. Viewers are read-only: incoming frames
// only serve keepalive, so payloads are logged and dropped.
func (c *Connection) readPump() {
	defer func() {
		c.manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.manager.config.ReadTimeout))
		c.LastPing = time.Now()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		log.Debug().
			Str("connection_id", c.ID).
			RawJSON("message", message).
			Msg("received client message")
		c.Conn.SetReadDeadline(time.Now().Add(c.manager.config.ReadTimeout))
	}
}
