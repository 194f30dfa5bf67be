// Package watch streams search progress and results to WebSocket clients.
package watch

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vktec/afkslime"
)

const (
	TypeProgress = "PROGRESS"
	TypeResult   = "RESULT"
)

type ProgressMsg struct {
	Type  string `json:"type"`
	Done  uint64 `json:"done"`
	Total uint64 `json:"total"`
}

type ResultMsg struct {
	Type   string          `json:"type"`
	Report afkslime.Report `json:"report"`
}

func NewProgressMsg(p *afkslime.Progress) ProgressMsg {
	return ProgressMsg{Type: TypeProgress, Done: p.Done(), Total: p.Total()}
}

func NewResultMsg(rep afkslime.Report) ResultMsg {
	return ResultMsg{Type: TypeResult, Report: rep}
}

// Server fans messages out to every connected client. New clients first
// receive the latest message so they can render the current state.
type Server struct {
	log *log.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[chan []byte]struct{}
	last    []byte
	closed  bool

	handlers sync.WaitGroup
}

func NewServer(logger *log.Logger) *Server {
	return &Server{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[chan []byte]struct{}),
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		out, ok := s.subscribe()
		if !ok {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "search finished"), time.Now().Add(time.Second))
			return
		}
		defer s.handlers.Done()
		defer s.unsubscribe(out)
		s.log.Printf("watch: client %s connected", r.RemoteAddr)

		// Reader goroutine, only to notice the client going away.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-gone:
				return
			case b, ok := <-out:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "search finished"), time.Now().Add(time.Second))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}
	}
}

// Publish sends v as JSON to all clients. Clients that fall behind miss messages.
func (s *Server) Publish(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.last = b
	for out := range s.clients {
		select {
		case out <- b:
		default:
		}
	}
	return nil
}

// Close disconnects all clients once their queued messages are written.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for out := range s.clients {
		close(out)
		delete(s.clients, out)
	}
}

// Wait blocks until every client handler has returned or timeout passes.
func (s *Server) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.handlers.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (s *Server) subscribe() (chan []byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false
	}
	out := make(chan []byte, 16)
	if s.last != nil {
		out <- s.last
	}
	s.clients[out] = struct{}{}
	s.handlers.Add(1)
	return out, true
}

func (s *Server) unsubscribe(out chan []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[out]; ok {
		delete(s.clients, out)
		close(out)
	}
}
