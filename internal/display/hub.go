// internal/display/hub.go
//
// Websocket fan-out of game frames.
// Responsibilities:
//   - Implements game.Display: every presented frame is JSON-encoded once
//     and queued to each connected viewer.
//   - Keeps the latest frame so late joiners see the current screen at once.
//   - Drops viewers whose connection fails or whose queue is full; the
//     engine is never blocked by a slow viewer.

package display

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/firebolt55439/airplay-hangman/internal/game"
	"github.com/firebolt55439/airplay-hangman/internal/metrics"
)

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
)

type viewer struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub is a game.Display that pushes frames to websocket viewers.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	viewers map[*viewer]struct{}
	latest  []byte
}

var _ game.Display = (*Hub)(nil)

// NewHub returns a hub accepting connections from origin.
// An empty origin or "*" accepts any origin.
func NewHub(origin string) *Hub {
	h := &Hub{viewers: make(map[*viewer]struct{})}
	h.upgrader.CheckOrigin = func(r *http.Request) bool {
		if origin == "" || origin == "*" {
			return true
		}
		got := r.Header.Get("Origin")
		return got == "" || got == origin
	}
	return h
}

// Present implements game.Display.
func (h *Hub) Present(f game.Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		log.Error().Err(err).Msg("encode frame")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = data
	for v := range h.viewers {
		select {
		case v.send <- data:
		default:
			log.Warn().Str("remote", v.conn.RemoteAddr().String()).Msg("viewer too slow, dropping")
			h.removeLocked(v)
		}
	}
}

// Latest returns the most recently presented frame, nil before the first.
func (h *Hub) Latest() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

// Viewers returns the number of connected viewers.
func (h *Hub) Viewers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.viewers)
}

// ServeHTTP upgrades the request and streams frames until the viewer leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	v := &viewer{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.viewers[v] = struct{}{}
	if h.latest != nil {
		v.send <- h.latest
	}
	h.mu.Unlock()
	metrics.Viewers.Inc()
	log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("viewer joined")

	go h.writeLoop(v)
	h.readLoop(v)
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for v := range h.viewers {
		h.removeLocked(v)
	}
}

func (h *Hub) remove(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(v)
}

func (h *Hub) removeLocked(v *viewer) {
	if _, ok := h.viewers[v]; !ok {
		return
	}
	delete(h.viewers, v)
	close(v.send)
	metrics.Viewers.Dec()
}

// readLoop discards client messages and keeps the read deadline fresh.
func (h *Hub) readLoop(v *viewer) {
	defer h.remove(v)
	v.conn.SetReadLimit(1 << 10)
	_ = v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(v *viewer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = v.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-v.send:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = v.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := v.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(v)
				return
			}
		case <-ticker.C:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(v)
				return
			}
		}
	}
}
