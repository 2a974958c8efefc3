package gateway

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ConnectionManager owns every WebSocket display connection. There is a
// single shared document, so there is a single pool; each connection gets a
// buffered send channel and slow consumers are dropped rather than allowed
// to stall the broadcast path.
type ConnectionManager struct {
	mu          sync.RWMutex
	connections map[*Connection]bool

	upgrader websocket.Upgrader
	config   ConnectionConfig
}

// Connection is one attached display client.
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time

	done     chan struct{}
	doneOnce sync.Once
}

// ConnectionConfig holds per-connection WebSocket tuning.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default WebSocket configuration.
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

// NewConnectionManager creates the display connection pool.
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config: config,
	}
}

// Upgrade promotes an HTTP request to a WebSocket connection, registers it,
// and starts its pumps. The caller drives the connection's outbound frames
// through Send and learns about teardown through Done.
func (cm *ConnectionManager) Upgrade(w http.ResponseWriter, r *http.Request) (*Connection, error) {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Manager:     cm,
		ConnectedAt: time.Now(),
		done:        make(chan struct{}),
	}

	cm.register(connection)
	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("remote", r.RemoteAddr).
		Msg("display connection established")
	return connection, nil
}

func (cm *ConnectionManager) register(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.connections[conn] = true
	log.Debug().
		Str("connection_id", conn.ID).
		Int("total_connections", len(cm.connections)).
		Msg("connection registered")
}

func (cm *ConnectionManager) unregister(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if _, exists := cm.connections[conn]; exists {
		delete(cm.connections, conn)
		log.Info().
			Str("connection_id", conn.ID).
			Msg("connection unregistered")
	}
	// Send stays open; pushers and the write pump watch done instead, which
	// avoids racing a close against an in-flight Push.
	conn.markDone()
}

// CloseAll tears down every connection, used during shutdown.
func (cm *ConnectionManager) CloseAll() {
	cm.mu.Lock()
	conns := make([]*Connection, 0, len(cm.connections))
	for conn := range cm.connections {
		conns = append(conns, conn)
	}
	cm.mu.Unlock()

	for _, conn := range conns {
		conn.Conn.Close()
		cm.unregister(conn)
	}
}

// ConnectionCount returns how many displays are attached.
func (cm *ConnectionManager) ConnectionCount() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// Done closes when the connection is torn down.
func (c *Connection) Done() <-chan struct{} { return c.done }

func (c *Connection) markDone() {
	c.doneOnce.Do(func() { close(c.done) })
}

// Push queues a frame without ever blocking the caller. A full send buffer
// means the client has stopped reading; it gets closed and evicted.
func (c *Connection) Push(frame []byte) {
	select {
	case <-c.done:
	case c.Send <- frame:
	default:
		log.Warn().
			Str("connection_id", c.ID).
			Msg("connection send buffer full, closing connection")
		c.Conn.Close()
		c.Manager.unregister(c)
	}
}

// writePump drains the send channel onto the wire and keeps the ping
// heartbeat going.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregister(c)
	}()

	for {
		select {
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write frame")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump exists to service pongs and detect closure; displays are
// read-only subscribers and any payload they send is ignored.
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected close")
			}
			return
		}
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
