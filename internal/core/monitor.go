package core

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"SensorBridge/internal/model"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// ReadingEvent is what the monitor publishes for every delivered reading.
type ReadingEvent struct {
	model.Reading
	ReceivedAt time.Time `json:"received_at"`
}

// Monitor is a small local HTTP server that shows what the bridge is doing.
// It streams readings to websocket clients, serves the last reading and
// exposes the Prometheus counters.
type Monitor struct {
	Addr   string
	state  func() State
	router *mux.Router
	server *http.Server

	mu      sync.Mutex
	stopped bool
	clients map[*websocket.Conn]bool
	latest  *ReadingEvent
}

// NewMonitor constructs a Monitor listening on addr.
func NewMonitor(addr string, gatherer prometheus.Gatherer, state func() State) *Monitor {
	m := &Monitor{
		Addr:    addr,
		state:   state,
		clients: map[*websocket.Conn]bool{},
	}
	r := mux.NewRouter()
	r.HandleFunc("/ws", m.handleWS).Methods(http.MethodGet)
	r.HandleFunc("/api/latest", m.handleLatest).Methods(http.MethodGet)
	r.HandleFunc("/healthz", m.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	m.router = r
	return m
}

// Handler returns the monitor's router.
func (m *Monitor) Handler() http.Handler { return m.router }

// Start runs the HTTP server. This call blocks until the server stops or fails.
func (m *Monitor) Start() error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.server = &http.Server{Addr: m.Addr, Handler: m.router, ReadHeaderTimeout: 5 * time.Second}
	srv := m.server
	m.mu.Unlock()

	log.Printf("[monitor] listening on %s", m.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down and disconnects websocket clients.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.stopped = true
	srv := m.server
	for c := range m.clients {
		_ = c.Close()
		delete(m.clients, c)
	}
	m.mu.Unlock()

	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[monitor] shutdown error: %v", err)
	}
}

// Deliver records the reading as the latest one and broadcasts it.
func (m *Monitor) Deliver(_ context.Context, r model.Reading) error {
	ev := ReadingEvent{Reading: r, ReceivedAt: time.Now().UTC()}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = &ev
	for c := range m.clients {
		_ = c.SetWriteDeadline(time.Now().Add(time.Second))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Printf("[monitor] dropping websocket client %s: %v", c.RemoteAddr(), err)
			_ = c.Close()
			delete(m.clients, c)
		}
	}
	return nil
}

// handleWS upgrades HTTP to websocket and registers the client for broadcasts.
func (m *Monitor) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[monitor] ws upgrade err: %v", err)
		return
	}
	m.mu.Lock()
	m.clients[conn] = true
	m.mu.Unlock()

	go func() {
		defer func() {
			m.mu.Lock()
			delete(m.clients, conn)
			m.mu.Unlock()
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// handleLatest returns the last delivered reading.
func (m *Monitor) handleLatest(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	latest := m.latest
	m.mu.Unlock()
	if latest == nil {
		http.Error(w, "no reading yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(latest); err != nil {
		log.Printf("[monitor] warning: failed to write latest reading: %v", err)
	}
}

// handleHealth reports the bridge state.
func (m *Monitor) handleHealth(w http.ResponseWriter, r *http.Request) {
	state := StateIdle
	if m.state != nil {
		state = m.state()
	}
	w.Header().Set("Content-Type", "application/json")
	if state == StateFailed {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"state": state.String()})
}

// clientCount is used by tests to wait for websocket registration.
func (m *Monitor) clientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}
