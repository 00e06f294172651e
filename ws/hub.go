package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"goLangClient/config"
	"goLangClient/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  config.WSReadBufferSize,
	WriteBufferSize: config.WSWriteBufferSize,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Resizer receives viewport sizes reported by viewers.
type Resizer interface {
	Resize(width, height float64) bool
}

// ViewerMessage is what viewers send over the chart feed.
type ViewerMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type ResizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// viewer is one connected chart display.
type viewer struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
}

// FrameHub fans laid-out frames out to every connected viewer. Publish never
// blocks; a viewer whose buffer is full misses frames until it catches up.
type FrameHub struct {
	log     logrus.FieldLogger
	resizer Resizer

	viewers    map[*viewer]bool
	register   chan *viewer
	unregister chan *viewer
	broadcast  chan []byte
	done       chan struct{}

	latest atomic.Pointer[[]byte]
	count  atomic.Int64
}

func NewFrameHub(resizer Resizer, log logrus.FieldLogger) *FrameHub {
	return &FrameHub{
		log:        log,
		resizer:    resizer,
		viewers:    make(map[*viewer]bool),
		register:   make(chan *viewer),
		unregister: make(chan *viewer),
		broadcast:  make(chan []byte, 16),
		done:       make(chan struct{}),
	}
}

// Run is the hub's dispatcher. It owns the viewer set.
func (h *FrameHub) Run(ctx context.Context) {
	h.log.Info("🚀 Chart feed started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for v := range h.viewers {
				delete(h.viewers, v)
				close(v.Send)
			}
			h.count.Store(0)
			return

		case v := <-h.register:
			h.viewers[v] = true
			h.count.Store(int64(len(h.viewers)))
			if latest := h.latest.Load(); latest != nil {
				h.deliver(v, *latest)
			}
			h.log.Infof("✅ Viewer registered: %s (Total: %d)", v.ID, len(h.viewers))

		case v := <-h.unregister:
			if _, ok := h.viewers[v]; ok {
				delete(h.viewers, v)
				close(v.Send)
			}
			h.count.Store(int64(len(h.viewers)))
			h.log.Infof("👋 Viewer unregistered: %s (Total: %d)", v.ID, len(h.viewers))

		case message := <-h.broadcast:
			for v := range h.viewers {
				h.deliver(v, message)
			}
		}
	}
}

func (h *FrameHub) deliver(v *viewer, message []byte) {
	select {
	case v.Send <- message:
	default:
		h.log.Warnf("⚠️  Viewer %s send buffer full, skipping frame", v.ID)
	}
}

// Publish queues a frame for every viewer.
func (h *FrameHub) Publish(frame game.Frame) {
	data, err := json.Marshal(map[string]any{"type": "frame", "data": frame})
	if err != nil {
		h.log.Errorf("❌ Failed to marshal frame: %v", err)
		return
	}
	h.latest.Store(&data)

	select {
	case h.broadcast <- data:
	default:
		// Dispatcher is behind; the stored latest frame still reaches new viewers.
	}
}

// Viewers is the number of connected viewers.
func (h *FrameHub) Viewers() int {
	return int(h.count.Load())
}

// ServeHTTP upgrades a chart viewer connection.
func (h *FrameHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("❌ WebSocket upgrade failed: %v", err)
		return
	}

	v := &viewer{
		ID:   uuid.NewString(),
		Conn: conn,
		Send: make(chan []byte, config.ViewerSendBuffer),
	}

	select {
	case h.register <- v:
	case <-h.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	go h.writePump(v)
	go h.readPump(v)
}

// writePump sends queued frames and keeps the connection alive with pings.
func (h *FrameHub) writePump(v *viewer) {
	ticker := time.NewTicker(config.WSPingInterval)
	defer func() {
		ticker.Stop()
		v.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-v.Send:
			v.Conn.SetWriteDeadline(time.Now().Add(config.WSWriteDeadline))
			if !ok {
				v.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := v.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				h.log.Errorf("❌ Write error for viewer %s: %v", v.ID, err)
				return
			}

		case <-ticker.C:
			v.Conn.SetWriteDeadline(time.Now().Add(config.WSWriteDeadline))
			if err := v.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump handles viewer messages until the connection drops.
func (h *FrameHub) readPump(v *viewer) {
	defer func() {
		select {
		case h.unregister <- v:
		case <-h.done:
		}
		v.Conn.Close()
	}()

	v.Conn.SetReadLimit(config.MaxMessageSize)
	v.Conn.SetReadDeadline(time.Now().Add(config.WSReadDeadline))
	v.Conn.SetPongHandler(func(string) error {
		return v.Conn.SetReadDeadline(time.Now().Add(config.WSReadDeadline))
	})

	for {
		_, raw, err := v.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Errorf("❌ Read error for viewer %s: %v", v.ID, err)
			}
			return
		}
		v.Conn.SetReadDeadline(time.Now().Add(config.WSReadDeadline))

		var msg ViewerMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.log.Warnf("⚠️  Failed to parse message from viewer %s: %v", v.ID, err)
			continue
		}
		h.handleMessage(v, msg)
	}
}

func (h *FrameHub) handleMessage(v *viewer, msg ViewerMessage) {
	switch msg.Type {
	case "resize":
		var req ResizeRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil || !h.resizer.Resize(req.Width, req.Height) {
			h.log.Warnf("⚠️  Viewer %s sent invalid size %s", v.ID, msg.Data)
			return
		}
		h.log.Debugf("📐 Viewer %s resized chart to %vx%v", v.ID, req.Width, req.Height)

	default:
		h.log.Warnf("⚠️  Unknown message type from viewer %s: %s", v.ID, msg.Type)
	}
}
