package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"cbrne_dashboard/internal/filter"
	"cbrne_dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type  string           `json:"type"`
	Data  snapshotResponse `json:"data"`
	Error string           `json:"error"`
}

func newStreamServer(s *service.Service, buffer int, origins []string) *httptest.Server {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil)
	h.SetSnapshotBuffer(buffer)
	if origins != nil {
		h.SetAllowedOrigins(origins)
	}
	return httptest.NewServer(h.InitRoutes())
}

func streamURL(srv *httptest.Server, id string) string {
	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws/filters/" + id
	return u.String()
}

func dialFilterStream(t *testing.T, s *service.Service, id string, buffer int) (*websocket.Conn, func()) {
	t.Helper()
	srv := newStreamServer(s, buffer, nil)

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(streamURL(srv, id), nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial error: %v", err)
	}
	return conn, func() {
		_ = conn.Close()
		srv.Close()
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWebSocket_FilterStream_InitialAndChanges(t *testing.T) {
	s, _ := newTestServices()
	info := s.Open("sensors")
	if _, err := s.Toggle(info.ID, filter.FacetBuilding, "Building C"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	conn, cleanup := dialFilterStream(t, s, info.ID, 8)
	defer cleanup()

	msg := readMessage(t, conn)
	if msg.Type != wsTypeSnapshot || !msg.Data.Snapshot.Buildings.Has("Building C") {
		t.Fatalf("bad initial message: %+v", msg)
	}

	if _, err := s.Toggle(info.ID, filter.FacetSeverity, "High"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := s.SelectQuickRange(info.ID, filter.QuickRangeToday); err != nil {
		t.Fatalf("quick range: %v", err)
	}

	msg = readMessage(t, conn)
	if !msg.Data.Snapshot.Severities.Has("High") || msg.Data.Snapshot.ActiveQuickRange != filter.QuickRangeNone {
		t.Fatalf("first change out of order: %+v", msg.Data.Snapshot)
	}
	msg = readMessage(t, conn)
	if msg.Data.Snapshot.ActiveQuickRange != filter.QuickRangeToday || msg.Data.ActiveFilters != 3 {
		t.Fatalf("second change: %+v", msg.Data)
	}
}

func TestWebSocket_UnknownSessionRejected(t *testing.T) {
	s, _ := newTestServices()
	srv := newStreamServer(s, 8, nil)
	defer srv.Close()

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	_, resp, err := dialer.Dial(streamURL(srv, "missing"), nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 response, got %+v", resp)
	}
}

func TestSnapshotFeed_OverflowClosesOnce(t *testing.T) {
	feed := newSnapshotFeed(2)

	first := filter.EmptySnapshot()
	first.Buildings = filter.NewValueSet("Building A")
	feed.push(first)
	feed.push(filter.EmptySnapshot())

	select {
	case <-feed.overflow:
		t.Fatalf("overflow signalled before the buffer was full")
	default:
	}

	feed.push(filter.EmptySnapshot())
	feed.push(filter.EmptySnapshot())

	select {
	case <-feed.overflow:
	default:
		t.Fatalf("expected overflow after exceeding the buffer")
	}
	if got := <-feed.snapshots; !got.Buildings.Has("Building A") {
		t.Fatalf("buffered snapshots out of order: %+v", got)
	}
}

// racingSessions applies changes right after the subscriber is registered,
// before the handler has written anything to the socket.
type racingSessions struct {
	*service.SessionService
}

func (r racingSessions) Subscribe(id string, fn filter.ChangeFunc) (service.Subscription, error) {
	sub, err := r.SessionService.Subscribe(id, fn)
	if err != nil {
		return sub, err
	}
	_, _ = r.SessionService.Toggle(id, filter.FacetBuilding, "A")
	_, _ = r.SessionService.Toggle(id, filter.FacetBuilding, "B")
	return sub, nil
}

func TestWebSocket_ChangesDuringSubscribeKeepOrder(t *testing.T) {
	s, _ := newTestServices()
	inner := s.Sessions.(*service.SessionService)
	s.Sessions = racingSessions{SessionService: inner}
	info := s.Open("incidents")

	conn, cleanup := dialFilterStream(t, s, info.ID, 8)
	defer cleanup()

	want := [][]string{{}, {"A"}, {"A", "B"}}
	for i, w := range want {
		got := readMessage(t, conn).Data.Snapshot.Buildings.Values()
		if len(got) != len(w) {
			t.Fatalf("message %d: buildings %v; want %v", i, got, w)
		}
		for j := range w {
			if got[j] != w[j] {
				t.Fatalf("message %d: buildings %v; want %v", i, got, w)
			}
		}
	}
}

func TestWebSocket_SessionCloseEndsStream(t *testing.T) {
	s, _ := newTestServices()
	info := s.Open("incidents")

	conn, cleanup := dialFilterStream(t, s, info.ID, 8)
	defer cleanup()
	readMessage(t, conn)

	if _, err := s.Toggle(info.ID, filter.FacetStatus, "Critical"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := s.Close(info.ID); err != nil {
		t.Fatalf("close: %v", err)
	}

	if msg := readMessage(t, conn); !msg.Data.Snapshot.Statuses.Has("Critical") {
		t.Fatalf("change before close was lost: %+v", msg)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wsMessage
	err := conn.ReadJSON(&msg)
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal close after session close, got %v (msg %+v)", err, msg)
	}
}

func TestWebSocket_OriginAllowList(t *testing.T) {
	s, _ := newTestServices()
	info := s.Open("incidents")
	srv := newStreamServer(s, 8, []string{"https://dashboard.example.org/"})
	defer srv.Close()

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}

	_, resp, err := dialer.Dial(streamURL(srv, info.ID), http.Header{"Origin": {"https://evil.example.com"}})
	if err == nil || resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign origin: err=%v resp=%+v; want 403", err, resp)
	}

	conn, _, err := dialer.Dial(streamURL(srv, info.ID), http.Header{"Origin": {"https://Dashboard.example.org"}})
	if err != nil {
		t.Fatalf("allowed origin rejected: %v", err)
	}
	defer conn.Close()
	if msg := readMessage(t, conn); msg.Type != wsTypeSnapshot {
		t.Fatalf("bad initial message: %+v", msg)
	}
}

func TestOriginAllowed(t *testing.T) {
	cases := []struct {
		name    string
		allowed []string
		origin  string
		host    string
		want    bool
	}{
		{"no origin header", []string{"https://a.example"}, "", "srv:8080", true},
		{"listed origin", []string{"https://a.example"}, "https://a.example", "srv:8080", true},
		{"unlisted origin", []string{"https://a.example"}, "https://b.example", "srv:8080", false},
		{"wildcard", []string{"*"}, "https://anything.example", "srv:8080", true},
		{"empty list same host", nil, "http://srv:8080", "srv:8080", true},
		{"empty list other host", nil, "http://other:8080", "srv:8080", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			up := newUpgrader(tc.allowed)
			req := httptest.NewRequest(http.MethodGet, "/ws/filters/x", nil)
			req.Host = tc.host
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if got := up.CheckOrigin(req); got != tc.want {
				t.Fatalf("CheckOrigin = %v; want %v", got, tc.want)
			}
		})
	}
}
