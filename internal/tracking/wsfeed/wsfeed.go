// Package wsfeed receives tracking results over a WebSocket and stores them
// in a tracking bridge.
package wsfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/cartoonhead/internal/logger"
	"github.com/Faultbox/cartoonhead/internal/tracking"
)

// Path is the WebSocket endpoint.
const Path = "/ws"

// Message is one JSON message from the tracker. Any subset of fields may be
// present: names alone sets the vocabulary, weights and matrix update the
// values, mesh restricts them to one mesh.
type Message struct {
	Names   []string  `json:"names,omitempty"`
	Weights []float32 `json:"weights,omitempty"`
	Matrix  []float32 `json:"matrix,omitempty"`
	Mesh    *string   `json:"mesh,omitempty"`
}

// Apply stores m in b. A message with weights but no matrix keeps the
// previous pose.
func Apply(b *tracking.Bridge, m Message) error {
	if m.Matrix != nil && len(m.Matrix) != 16 {
		return fmt.Errorf("matrix has %d values, want 16", len(m.Matrix))
	}
	if m.Names != nil {
		b.SetNames(m.Names)
	}
	if m.Mesh != nil {
		b.SetMesh(*m.Mesh)
	}
	if m.Weights == nil && m.Matrix == nil {
		return nil
	}

	cur := b.Snapshot()
	weights := m.Weights
	if weights == nil {
		weights = cur.Weights
	}
	matrix := cur.Matrix
	if m.Matrix != nil {
		copy(matrix[:], m.Matrix)
	}
	b.SetValues(weights, matrix)
	return nil
}

// Server upgrades WebSocket connections and feeds their messages into a
// bridge.
type Server struct {
	bridge       *tracking.Bridge
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
}

// New creates a feed server for bridge.
func New(bridge *tracking.Bridge, writeTimeout time.Duration) *Server {
	return &Server{
		bridge: bridge,
		upgrader: websocket.Upgrader{
			// Trackers run locally or on a phone on the same network.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		writeTimeout: writeTimeout,
	}
}

// Handler returns the HTTP handler serving Path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, s.serveWS)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("tracking feed listening", zap.String("addr", addr), zap.String("path", Path))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("tracking feed: %w", err)
	}
	return nil
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	remote := r.RemoteAddr
	logger.Info("tracker connected", zap.String("remote", remote))

	ctx := r.Context()
	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(s.writeTimeout))
		conn.Close()
	}()

	for {
		typ, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("tracker read ended", zap.String("remote", remote), zap.Error(err))
			}
			logger.Info("tracker disconnected", zap.String("remote", remote))
			return
		}
		if typ != websocket.TextMessage {
			continue
		}

		if err := s.handle(data); err != nil {
			logger.Warn("bad tracking message", zap.String("remote", remote), zap.Error(err))
			_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if werr := conn.WriteMessage(websocket.TextMessage, []byte(`{"error":`+quote(err.Error())+`}`)); werr != nil {
				return
			}
		}
	}
}

// handle decodes one text message and applies it to the bridge.
func (s *Server) handle(data []byte) error {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decoding message: %w", err)
	}
	return Apply(s.bridge, m)
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
