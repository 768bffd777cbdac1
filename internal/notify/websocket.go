package notify

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/udisondev/onigiri/internal/model"
)

const (
	hubQueueSize  = 256
	hubWriteWait  = 10 * time.Second
	hubBufferSize = 1024
)

// WebSocketHub streams every collaborator event as JSON to connected
// websocket clients. Publishing never blocks the session: when the queue
// is full the event is dropped and counted.
type WebSocketHub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}

	upgrader   websocket.Upgrader
	broadcast  chan Event
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	wg         sync.WaitGroup

	closeOnce sync.Once
	dropped   int
}

// NewWebSocketHub creates a hub and starts its broadcast goroutine.
func NewWebSocketHub() *WebSocketHub {
	h := &WebSocketHub{
		clients:    make(map[*websocket.Conn]struct{}),
		broadcast:  make(chan Event, hubQueueSize),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  hubBufferSize,
			WriteBufferSize: hubBufferSize,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	h.wg.Add(1)
	go h.run()

	return h
}

// ServeHTTP upgrades the request and registers the connection.
// The read loop only exists to notice the client going away.
func (h *WebSocketHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				select {
				case h.unregister <- conn:
				case <-h.done:
				}
				return
			}
		}
	}()
}

// Publish enqueues an event for broadcast.
func (h *WebSocketHub) Publish(e Event) {
	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.broadcast <- e:
	default:
		h.mu.Lock()
		h.dropped++
		h.mu.Unlock()
	}
}

// ClientCount returns number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns number of events dropped on a full queue.
func (h *WebSocketHub) Dropped() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

func (h *WebSocketHub) Effect(tag model.EffectTag, pos model.Vec2) {
	h.Publish(EffectEvent(tag, pos))
}

func (h *WebSocketHub) Score(ev ScoreEvent) {
	h.Publish(ScoreEventRecord(ev))
}

func (h *WebSocketHub) Completion(pos model.Vec2) {
	h.Publish(CompletionEvent(pos))
}

func (h *WebSocketHub) GameOver() {
	h.Publish(GameOverEvent())
}

func (h *WebSocketHub) Preview(kind model.Kind, filling *model.Filling) {
	h.Publish(PreviewEvent(kind, filling))
}

func (h *WebSocketHub) run() {
	defer h.wg.Done()
	for {
		select {
		case <-h.done:
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = struct{}{}
			h.mu.Unlock()
			slog.Debug("websocket client connected", "remote", conn.RemoteAddr())

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case e := <-h.broadcast:
			data, err := e.JSON()
			if err != nil {
				slog.Error("encoding event", "type", e.Type, "error", err)
				continue
			}
			h.write(data)
		}
	}
}

// write sends data to every client, dropping clients whose write fails.
func (h *WebSocketHub) write(data []byte) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	var failed []*websocket.Conn
	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(hubWriteWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			failed = append(failed, conn)
			conn.Close()
		}
	}

	if len(failed) > 0 {
		h.mu.Lock()
		for _, conn := range failed {
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	}
}

// Close stops the broadcast goroutine and closes all client connections.
func (h *WebSocketHub) Close() error {
	h.closeOnce.Do(func() {
		close(h.done)
		h.wg.Wait()

		h.mu.Lock()
		for conn := range h.clients {
			conn.Close()
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	})
	return nil
}
