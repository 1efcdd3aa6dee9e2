package sink

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/harunnryd/echoscribe/pkg/errorsx"
	"github.com/harunnryd/echoscribe/pkg/logging"
)

const writeWait = 5 * time.Second

// Broadcast pushes completed sentences to every connected websocket
// client, for live transcript views. A slow client is dropped rather
// than allowed to stall the rest.
type Broadcast struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

type wirePayload struct {
	SessionID string  `json:"session_id"`
	Recording string  `json:"recording,omitempty"`
	Text      string  `json:"text"`
	At        string  `json:"at"`
	Offset    float64 `json:"offset_seconds"`
}

func NewBroadcast(logger *slog.Logger) *Broadcast {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcast{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  logging.NewComponentLogger(logger, "broadcast"),
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (b *Broadcast) Name() string { return "websocket" }

// ServeHTTP upgrades the request and registers the client for sentence
// delivery until it disconnects.
func (b *Broadcast) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	b.mu.Lock()
	b.clients[conn] = struct{}{}
	n := len(b.clients)
	b.mu.Unlock()
	b.logger.Info("client connected", "remote", r.RemoteAddr, "clients", n)

	// Reader loop exists only to notice disconnects.
	go func() {
		defer b.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (b *Broadcast) Write(ctx context.Context, s Sentence) error {
	payload, err := json.Marshal(wirePayload{
		SessionID: s.SessionID,
		Recording: s.Recording,
		Text:      s.Text,
		At:        s.At.Format(time.RFC3339),
		Offset:    s.Offset,
	})
	if err != nil {
		return errorsx.Wrap(err, errorsx.ReasonSinkBroadcast)
	}

	b.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(b.clients))
	for c := range b.clients {
		conns = append(conns, c)
	}
	b.mu.Unlock()

	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			b.logger.Warn("client dropped", "error", err)
			b.drop(c)
		}
	}
	return nil
}

// Clients reports the connected client count.
func (b *Broadcast) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

func (b *Broadcast) Close() error {
	b.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(b.clients))
	for c := range b.clients {
		conns = append(conns, c)
	}
	b.clients = make(map[*websocket.Conn]struct{})
	b.mu.Unlock()
	for _, c := range conns {
		_ = c.Close()
	}
	return nil
}

func (b *Broadcast) drop(conn *websocket.Conn) {
	b.mu.Lock()
	if _, ok := b.clients[conn]; ok {
		delete(b.clients, conn)
		conn.Close()
	}
	b.mu.Unlock()
}

var _ Sink = (*Broadcast)(nil)
