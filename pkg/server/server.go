// Package server publishes the table state of a running chainview over
// HTTP and pushes hub events to websocket clients.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"chainview/pkg/models"
	"chainview/pkg/tableview"
	"chainview/pkg/viewstate"
	"chainview/pkg/watcher"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	watcher *watcher.Watcher
	logger  *log.Logger

	views   map[string]tableview.Summarizer
	viewsMu sync.RWMutex

	clients map[*websocket.Conn]bool
	mu      sync.Mutex
	mux     *http.ServeMux
}

// Status is the body of /api/status.
type Status struct {
	Head       *models.ChainHead `json:"head,omitempty"`
	FailedRPCs []string          `json:"failedRpcs,omitempty"`
	Message    string            `json:"message,omitempty"`
	IsError    bool              `json:"isError"`
	Views      []string          `json:"views"`
}

func NewServer(w *watcher.Watcher, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		watcher: w,
		logger:  logger,
		views:   make(map[string]tableview.Summarizer),
		clients: make(map[*websocket.Conn]bool),
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

// Register exposes a table under /api/views/{name}.
func (s *Server) Register(name string, v tableview.Summarizer) {
	s.viewsMu.Lock()
	defer s.viewsMu.Unlock()
	s.views[name] = v
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/views", s.handleViews)
	s.mux.HandleFunc("GET /api/views/{name}", s.handleView)
	s.mux.HandleFunc("/ws", s.handleWS)
}

// Handler returns the routes, for embedding or tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Start serves on addr until ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	go s.relay(s.watcher.Subscribe())

	srv := &http.Server{Addr: addr, Handler: s.mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("API server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve %s: %w", addr, err)
	}
	return nil
}

func (s *Server) summaries() map[string]tableview.Summary {
	s.viewsMu.RLock()
	defer s.viewsMu.RUnlock()
	out := make(map[string]tableview.Summary, len(s.views))
	for name, v := range s.views {
		out[name] = v.Summary()
	}
	return out
}

func (s *Server) status() Status {
	st := Status{}
	if head, ok := s.watcher.Head(); ok {
		st.Head = &head
	}
	st.FailedRPCs = s.watcher.FailedRPCs()
	st.Message, st.IsError = s.watcher.LastStatus()

	s.viewsMu.RLock()
	for name := range s.views {
		st.Views = append(st.Views, name)
	}
	s.viewsMu.RUnlock()
	sort.Strings(st.Views)
	return st
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.summaries())
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	s.viewsMu.RLock()
	v, ok := s.views[name]
	s.viewsMu.RUnlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown view " + name})
		return
	}
	writeJSON(w, http.StatusOK, v.Summary())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	s.mu.Lock()
	err = conn.WriteJSON(watcher.Event{Type: "initial", Data: map[string]any{
		"status": s.status(),
		"views":  s.summaries(),
	}})
	if err == nil {
		s.clients[conn] = true
	}
	s.mu.Unlock()
	if err != nil {
		return
	}

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// relay forwards hub events to websocket clients until sub is closed.
func (s *Server) relay(sub watcher.Subscriber) {
	for event := range sub {
		s.broadcast(s.expand(event))
	}
}

// expand replaces the key of a view change with that view's summary.
func (s *Server) expand(event watcher.Event) watcher.Event {
	key, ok := event.Data.(viewstate.Key)
	if event.Type != watcher.EventViewChanged || !ok {
		return event
	}
	s.viewsMu.RLock()
	defer s.viewsMu.RUnlock()
	for _, v := range s.views {
		if sum := v.Summary(); sum.Key == key {
			return watcher.Event{Type: event.Type, Data: sum}
		}
	}
	return event
}

func (s *Server) broadcast(event watcher.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for client := range s.clients {
		if err := client.WriteJSON(event); err != nil {
			_ = client.Close()
			delete(s.clients, client)
		}
	}
}
