// Package relay serves a phone page over HTTP that streams the phone's
// orientation and motion sensors back over a websocket.
package relay

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tiltwater/tiltwater/adapter"
	"github.com/tiltwater/tiltwater/sensor"
)

//go:embed page.html
var page []byte

const writeTimeout = 2 * time.Second

// session is one connected phone.
type session struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (s *session) send(f frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(f)
}

// Server relays phone sensor events to subscribed listeners. It implements
// adapter.Source and adapter.PermissionRequester.
type Server struct {
	sensor.Hub

	log      *zap.Logger
	upgrader websocket.Upgrader

	mu        sync.Mutex
	sessions  map[string]*session
	requested bool
	answer    adapter.PermissionResponse
	answered  chan struct{}
}

func New(log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The page is served from this host, but phones on the LAN often
			// reach it by IP while the Origin carries a hostname.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		sessions: make(map[string]*session),
		answered: make(chan struct{}),
	}
}

// Handler serves the phone page at / and the event socket at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	})
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// ListenAndServe serves Handler on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("relay listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.closeSessions()
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Sessions reports the number of connected phones.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// RequestPermission asks every connected phone to prompt its user and waits
// for the first answer. Phones that connect later are asked on arrival. An
// expired ctx is reported as an error, which the adapter treats as a failed
// request.
func (s *Server) RequestPermission(ctx context.Context) (adapter.PermissionResponse, error) {
	select {
	case <-s.answered:
		return s.permission(), nil
	default:
	}
	s.mu.Lock()
	s.requested = true
	s.mu.Unlock()
	for _, sess := range s.snapshot() {
		if err := sess.send(frame{Type: framePermissionRequest}); err != nil {
			s.log.Debug("permission request not delivered", zap.String("session", sess.id), zap.Error(err))
		}
	}
	select {
	case <-s.answered:
		return s.permission(), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Server) permission() adapter.PermissionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answer
}

func (s *Server) resolve(answer adapter.PermissionResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.answered:
		return
	default:
	}
	s.answer = answer
	close(s.answered)
}

func (s *Server) snapshot() []*session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

func (s *Server) closeSessions() {
	for _, sess := range s.snapshot() {
		_ = sess.conn.Close()
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	sess := &session{id: uuid.NewString(), conn: conn}
	log := s.log.With(zap.String("session", sess.id), zap.String("remote", r.RemoteAddr))

	s.mu.Lock()
	s.sessions[sess.id] = sess
	ask := s.requested && s.answer == ""
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess.id)
		s.mu.Unlock()
		_ = conn.Close()
		log.Info("phone disconnected")
	}()
	log.Info("phone connected")

	if err := sess.send(frame{Type: frameHello, Session: sess.id}); err != nil {
		return
	}
	if ask {
		if err := sess.send(frame{Type: framePermissionRequest}); err != nil {
			return
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			log.Debug("malformed frame dropped", zap.Error(err))
			continue
		}
		s.dispatch(log, f)
	}
}

func (s *Server) dispatch(log *zap.Logger, f frame) {
	switch f.Type {
	case frameOrientation:
		s.PublishOrientation(f.orientation())
	case frameMotion:
		s.PublishMotion(f.motion())
	case framePermission:
		answer := adapter.PermissionResponse(f.State)
		log.Info("permission answered", zap.String("state", f.State))
		s.resolve(answer)
	default:
		log.Debug("unknown frame type", zap.String("type", f.Type))
	}
}
