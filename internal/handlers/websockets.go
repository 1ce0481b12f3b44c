package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"cbrne_dashboard/internal/filter"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB
)

const (
	wsTypeSnapshot = "snapshot"
	wsTypeError    = "error"
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// newUpgrader checks the Origin header against allowed. A request without
// Origin (non-browser clients) is accepted. "*" accepts any origin; an empty
// list accepts only the server's own host.
func newUpgrader(allowed []string) websocket.Upgrader {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o = normalizeOrigin(o); o != "" {
			set[o] = struct{}{}
		}
	}
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(set, r)
		},
	}
}

func originAllowed(allowed map[string]struct{}, r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if _, ok := allowed["*"]; ok {
		return true
	}
	if len(allowed) == 0 {
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
	_, ok := allowed[normalizeOrigin(origin)]
	return ok
}

func normalizeOrigin(o string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(o)), "/")
}

// @Summary      Stream filter snapshots
// @Description  Sends the current snapshot, then one message per change. Slow clients are disconnected, as are clients of a closed or expired session.
// @Tags         filters
// @Param        id  path  string  true  "session id"
// @Router       /ws/filters/{id} [get]
func (h *Handler) wsFilterStream(c *gin.Context) {
	id := c.Param("id")

	feed := newSnapshotFeed(h.snapshotBuffer)
	sub, err := h.services.Subscribe(id, feed.push)
	if err != nil {
		h.respondServiceError(c, "ws_subscribe_failed", err)
		return
	}
	defer sub.Cancel()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "session", id, "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if err := h.writeSnapshot(conn, sub.Initial); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "session", id, "err", err)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-sub.Closed:
			h.drainFeed(conn, feed)
			writeClose(conn, websocket.CloseNormalClosure, "session closed")
			return
		case <-feed.overflow:
			if h.log != nil {
				h.log.Warnw("ws_client_too_slow", "session", id, "buffer", h.snapshotBuffer)
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteJSON(wsEnvelope{Type: wsTypeError, Error: "client too slow"})
			writeClose(conn, websocket.ClosePolicyViolation, "client too slow")
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "session", id, "err", err)
				}
				return
			}
		case s := <-feed.snapshots:
			if err := h.writeSnapshot(conn, s); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "session", id, "err", err)
				}
				return
			}
		}
	}
}

// drainFeed flushes snapshots queued before the session closed.
func (h *Handler) drainFeed(conn *websocket.Conn, feed *snapshotFeed) {
	for {
		select {
		case s := <-feed.snapshots:
			if err := h.writeSnapshot(conn, s); err != nil {
				return
			}
		default:
			return
		}
	}
}

func writeClose(conn *websocket.Conn, code int, reason string) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
}

// snapshotFeed hands snapshots from the session's notifier to the socket
// writer. push never blocks; once the buffer is full overflow is closed.
type snapshotFeed struct {
	snapshots chan filter.Snapshot
	overflow  chan struct{}
	once      sync.Once
}

func newSnapshotFeed(size int) *snapshotFeed {
	return &snapshotFeed{
		snapshots: make(chan filter.Snapshot, size),
		overflow:  make(chan struct{}),
	}
}

func (f *snapshotFeed) push(s filter.Snapshot) {
	select {
	case f.snapshots <- s:
	default:
		f.once.Do(func() { close(f.overflow) })
	}
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

func (h *Handler) writeSnapshot(conn *websocket.Conn, s filter.Snapshot) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(wsEnvelope{Type: wsTypeSnapshot, Data: newSnapshotResponse(s)})
}
