package server

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/benchrig/rigcheck/internal/gate"
	"github.com/benchrig/rigcheck/internal/harness"
)

const wsWriteTimeout = 5 * time.Second

const (
	eventSectionStarted   = "section_started"
	eventCheckCompleted   = "check_completed"
	eventSectionCompleted = "section_completed"
	eventRunCompleted     = "run_completed"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(u.Host), strings.TrimSpace(r.Host))
	},
}

// wsEvent is the message pushed to websocket clients as a run progresses.
type wsEvent struct {
	Type       string                 `json:"type"`
	Section    string                 `json:"section,omitempty"`
	Index      int                    `json:"index,omitempty"`
	Total      int                    `json:"total,omitempty"`
	Result     *harness.CheckResult   `json:"result,omitempty"`
	Report     *harness.SectionReport `json:"report,omitempty"`
	Summary    *harness.Summary       `json:"summary,omitempty"`
	Violations []gate.Violation       `json:"violations,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// Hub fans run events out to connected websocket clients.
type Hub struct {
	log *logrus.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newHub(log *logrus.Logger) *Hub {
	return &Hub{
		log:   log,
		conns: map[*websocket.Conn]struct{}{},
	}
}

// ServeConn registers the connection and blocks until the peer goes away.
// Clients only listen; inbound messages are drained to detect disconnects.
func (h *Hub) ServeConn(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast pushes the event to every client, dropping clients whose writes
// fail or stall past the write timeout.
func (h *Hub) Broadcast(event wsEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(event); err != nil {
			h.log.Debugf("dropping websocket client: %v", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// hubProgress adapts the hub to the runner's progress callbacks so every
// connected client sees checks as they complete.
type hubProgress struct {
	hub *Hub
}

func (p hubProgress) SectionStarted(sec *harness.Section, index, total int) error {
	p.hub.Broadcast(wsEvent{Type: eventSectionStarted, Section: sec.ID(), Index: index, Total: total})
	return nil
}

func (p hubProgress) CheckCompleted(sec *harness.Section, index, total int, res harness.CheckResult) error {
	p.hub.Broadcast(wsEvent{Type: eventCheckCompleted, Section: sec.ID(), Index: index, Total: total, Result: &res})
	return nil
}

func (p hubProgress) SectionCompleted(rep harness.SectionReport) error {
	p.hub.Broadcast(wsEvent{Type: eventSectionCompleted, Section: rep.SectionID, Report: &rep})
	return nil
}
