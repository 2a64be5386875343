package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fcelec/cablesize/internal/circuit"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

type Server struct {
	addr     string
	upgrader websocket.Upgrader
	engine   *circuit.Engine
}

func NewServer(addr string, upgrader websocket.Upgrader, engine *circuit.Engine) *Server {
	return &Server{
		addr:     addr,
		upgrader: upgrader,
		engine:   engine,
	}
}

// serveWs handles websocket requests from the peer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	logger := log.WithField("remote", conn.RemoteAddr().String())
	logger.Info("client connected")

	hub := NewHub(conn, s.engine)
	finished := make(chan struct{})
	go hub.handleRequest()
	go hub.handleResponse(finished)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.WithError(err).Debug("read ended")
			}
			break
		}
		hub.requests <- data
	}
	close(hub.requests)
	// flush replies to requests already received
	<-finished
	logger.Info("client disconnected")
}

// Handler returns the HTTP handler serving the /ws endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	return mux
}

// Serve listens on the configured address until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.addr).Info("websocket server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
