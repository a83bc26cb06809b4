// Package server hosts the realtime surface of the growth simulation.
//
// It is transport-only: wire frames are translated into the round
// coordinator's two operations (join, submit) and the returned histories are
// relayed to every subscriber of the affected session. Gameplay state is
// owned by the session store.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/websocket"

	"github.com/louisbranch/growthlab/internal/econ"
	"github.com/louisbranch/growthlab/internal/platform/timeouts"
	"github.com/louisbranch/growthlab/internal/session"
)

const (
	maxFramePayloadBytes   = 16 * 1024
	maxFramesPerSecond     = 40
	maxDecodeErrorsPerConn = 3
)

const tracerName = "github.com/louisbranch/growthlab/internal/app/server"

// Config defines the inputs for the simulation transport boundary.
type Config struct {
	HTTPAddr          string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the simulation HTTP/WebSocket process.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
}

type wsFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type wsErrorEnvelope struct {
	Error wsError `json:"error"`
}

type wsError struct {
	Code      string                `json:"code"`
	Message   string                `json:"message"`
	Retryable bool                  `json:"retryable"`
	Details   []econ.FieldViolation `json:"details,omitempty"`
}

type joinPayload struct {
	SessionID string `json:"session_id"`
}

type joinedPayload struct {
	SessionID  string               `json:"session_id"`
	History    []econ.EconomicState `json:"history"`
	ServerTime string               `json:"server_time"`
}

type submitPayload struct {
	SavingRate     float64 `json:"saving_rate"`
	ExchangePolicy float64 `json:"exchange_policy"`
}

type historyPayload struct {
	SessionID string               `json:"session_id"`
	History   []econ.EconomicState `json:"history"`
}

type ackEnvelope struct {
	Result ackResult `json:"result"`
}

type ackResult struct {
	Status string `json:"status"`
	Year   int    `json:"year,omitempty"`
	Rounds int    `json:"rounds,omitempty"`
}

// NewHandler creates the simulation routes over the given coordinator.
func NewHandler(coordinator *session.Coordinator) http.Handler {
	hub := newSessionHub()
	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	wsHandler := websocket.Handler(func(conn *websocket.Conn) {
		handleWSConn(conn, hub, coordinator)
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		wsHandler.ServeHTTP(w, r)
	})

	return mux
}

func handleWSConn(conn *websocket.Conn, hub *sessionHub, coordinator *session.Coordinator) {
	defer func() {
		_ = conn.Close()
	}()

	decoder := json.NewDecoder(conn)
	client := newWSClient(newWSPeer(json.NewEncoder(conn)))
	defer func() {
		if room := client.currentRoom(); room != nil {
			room.leave(client.peer)
		}
	}()

	ctx := context.Background()
	if request := conn.Request(); request != nil {
		ctx = request.Context()
	}

	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame wsFrame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = writeWSError(client.peer, "", "INVALID_ARGUMENT", "invalid frame payload")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = writeWSError(client.peer, frame.RequestID, "INVALID_ARGUMENT", "payload too large")
			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			_ = writeWSError(client.peer, frame.RequestID, "RESOURCE_EXHAUSTED", "rate limit exceeded")
			return
		}

		switch frame.Type {
		case "sim.join":
			handleJoinFrame(client, hub, coordinator, frame)
		case "sim.submit":
			handleSubmitFrame(ctx, client, coordinator, frame)
		default:
			_ = writeWSError(client.peer, frame.RequestID, "INVALID_ARGUMENT", "unsupported frame type")
		}
	}
}

func handleJoinFrame(client *wsClient, hub *sessionHub, coordinator *session.Coordinator, frame wsFrame) {
	var payload joinPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(client.peer, frame.RequestID, "INVALID_ARGUMENT", "invalid join payload")
		return
	}

	sessionID := strings.TrimSpace(payload.SessionID)
	if sessionID == "" {
		_ = writeWSError(client.peer, frame.RequestID, "INVALID_ARGUMENT", "session_id is required")
		return
	}

	history, err := coordinator.Join(sessionID)
	if err != nil {
		writeCoordinatorError(client.peer, frame.RequestID, err)
		return
	}

	room := hub.room(sessionID)
	previous := client.setRoom(room)
	if previous != nil && previous != room {
		previous.leave(client.peer)
	}
	room.join(client.peer)

	_ = client.peer.writeFrame(wsFrame{
		Type:      "sim.joined",
		RequestID: frame.RequestID,
		Payload: mustJSON(joinedPayload{
			SessionID:  sessionID,
			History:    history,
			ServerTime: time.Now().UTC().Format(time.RFC3339),
		}),
	})
}

func handleSubmitFrame(ctx context.Context, client *wsClient, coordinator *session.Coordinator, frame wsFrame) {
	var payload submitPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(client.peer, frame.RequestID, "INVALID_ARGUMENT", "invalid submit payload")
		return
	}

	room := client.currentRoom()
	if room == nil {
		_ = writeWSError(client.peer, frame.RequestID, "FAILED_PRECONDITION", "must join a session before submitting")
		return
	}

	_, span := otel.Tracer(tracerName).Start(ctx, "sim.submit",
		trace.WithAttributes(attribute.String("session.id", room.sessionID)))
	defer span.End()

	history, err := coordinator.SubmitRound(room.sessionID, econ.Controls{
		SavingRate:     payload.SavingRate,
		ExchangePolicy: payload.ExchangePolicy,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "round rejected")
		writeCoordinatorError(client.peer, frame.RequestID, err)
		return
	}
	span.SetAttributes(attribute.Int("session.rounds", len(history)))

	latest := history[len(history)-1]
	_ = client.peer.writeFrame(wsFrame{
		Type:      "sim.ack",
		RequestID: frame.RequestID,
		Payload: mustJSON(ackEnvelope{
			Result: ackResult{
				Status: "ok",
				Year:   latest.Year,
				Rounds: len(history),
			},
		}),
	})

	// The append is already committed; a failed write to one subscriber
	// must not unwind it or starve the others.
	historyFrame := wsFrame{
		Type: "sim.history",
		Payload: mustJSON(historyPayload{
			SessionID: room.sessionID,
			History:   history,
		}),
	}
	for _, peer := range room.peers() {
		_ = peer.writeFrame(historyFrame)
	}
}

func writeCoordinatorError(peer *wsPeer, requestID string, err error) {
	code := "INTERNAL"
	retryable := false
	var details []econ.FieldViolation

	var serr *session.Error
	if errors.As(err, &serr) {
		code = string(serr.Code)
		retryable = serr.Code == session.CodeInvalidControls || serr.Code == session.CodeValidationFailed
	}
	var verr *econ.ValidationError
	if errors.As(err, &verr) {
		details = verr.Violations
	}

	_ = peer.writeFrame(wsFrame{
		Type:      "sim.error",
		RequestID: requestID,
		Payload: mustJSON(wsErrorEnvelope{
			Error: wsError{
				Code:      code,
				Message:   err.Error(),
				Retryable: retryable,
				Details:   details,
			},
		}),
	})
}

func writeWSError(peer *wsPeer, requestID string, code string, message string) error {
	return peer.writeFrame(wsFrame{
		Type:      "sim.error",
		RequestID: requestID,
		Payload: mustJSON(wsErrorEnvelope{
			Error: wsError{
				Code:      code,
				Message:   message,
				Retryable: false,
			},
		}),
	})
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("failed to marshal websocket frame payload: %v", err)
		return nil
	}
	return b
}

// NewServer builds a configured simulation server.
func NewServer(config Config, coordinator *session.Coordinator) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if coordinator == nil {
		return nil, errors.New("coordinator is required")
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           NewHandler(coordinator),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: config.ShutdownTimeout,
		httpServer:      httpServer,
	}, nil
}

// Run creates and serves a simulation server until the context ends.
//
// Operators can treat this as the lifecycle boundary for the real-time
// surface.
func Run(ctx context.Context, config Config, coordinator *session.Coordinator) error {
	server, err := NewServer(config, coordinator)
	if err != nil {
		return fmt.Errorf("init sim server: %w", err)
	}

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve sim: %w", err)
	}
	return nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("sim server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("sim server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
