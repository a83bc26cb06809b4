package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/websocket"

	"github.com/louisbranch/growthlab/internal/econ"
	"github.com/louisbranch/growthlab/internal/session"
)

type wsTestFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type wsTestAckPayload struct {
	Result struct {
		Status string `json:"status"`
		Year   int    `json:"year"`
		Rounds int    `json:"rounds"`
	} `json:"result"`
}

type wsTestHistoryPayload struct {
	SessionID string               `json:"session_id"`
	History   []econ.EconomicState `json:"history"`
}

func newTestCoordinator(t *testing.T) *session.Coordinator {
	t.Helper()
	params := econ.DefaultParams()
	table := econ.DefaultTable()
	initial, ok := econ.InitialState(params, table)
	if !ok {
		t.Fatal("initial state requires a non-empty exogenous table")
	}
	coordinator, err := session.NewCoordinator(session.NewMemoryStore(initial), table, params)
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	return coordinator
}

func dialWS(t *testing.T) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(NewHandler(newTestCoordinator(t)))
	t.Cleanup(srv.Close)
	return dialWSWithExistingServer(t, srv)
}

func dialWSWithExistingServer(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, err := websocket.Dial(wsURL, "", srv.URL)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func writeFrame(t *testing.T, conn *websocket.Conn, frame map[string]any) {
	t.Helper()
	if err := json.NewEncoder(conn).Encode(frame); err != nil {
		t.Fatalf("encode frame: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) wsTestFrame {
	t.Helper()
	_ = conn.SetDeadline(time.Now().Add(2 * time.Second))
	var got wsTestFrame
	if err := json.NewDecoder(conn).Decode(&got); err != nil {
		t.Fatalf("decode server frame: %v", err)
	}
	return got
}

func decodeAckPayload(t *testing.T, payload json.RawMessage) wsTestAckPayload {
	t.Helper()
	var ack wsTestAckPayload
	if err := json.Unmarshal(payload, &ack); err != nil {
		t.Fatalf("decode ack payload: %v", err)
	}
	return ack
}

func decodeHistoryPayload(t *testing.T, payload json.RawMessage) wsTestHistoryPayload {
	t.Helper()
	var history wsTestHistoryPayload
	if err := json.Unmarshal(payload, &history); err != nil {
		t.Fatalf("decode history payload: %v", err)
	}
	return history
}

func joinSession(t *testing.T, conn *websocket.Conn, sessionID string) {
	t.Helper()
	writeFrame(t, conn, map[string]any{
		"type":       "sim.join",
		"request_id": "req-join-1",
		"payload": map[string]any{
			"session_id": sessionID,
		},
	})
	got := readFrame(t, conn)
	if got.Type != "sim.joined" {
		t.Fatalf("frame type = %q, want %q", got.Type, "sim.joined")
	}
}

func TestWebSocketJoinReturnsJoinedFrame(t *testing.T) {
	conn := dialWS(t)

	writeFrame(t, conn, map[string]any{
		"type":       "sim.join",
		"request_id": "req-join-1",
		"payload": map[string]any{
			"session_id": "class-101",
		},
	})

	got := readFrame(t, conn)
	if got.Type != "sim.joined" {
		t.Fatalf("frame type = %q, want %q", got.Type, "sim.joined")
	}
	if got.RequestID != "req-join-1" {
		t.Fatalf("request id = %q, want %q", got.RequestID, "req-join-1")
	}
	history := decodeHistoryPayload(t, got.Payload)
	if history.SessionID != "class-101" {
		t.Fatalf("session id = %q, want %q", history.SessionID, "class-101")
	}
	if len(history.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(history.History))
	}
	if history.History[0].Year != 1980 {
		t.Fatalf("initial year = %d, want 1980", history.History[0].Year)
	}
}

func TestWebSocketJoinRequiresSessionID(t *testing.T) {
	conn := dialWS(t)

	writeFrame(t, conn, map[string]any{
		"type":       "sim.join",
		"request_id": "req-join-empty",
		"payload": map[string]any{
			"session_id": "   ",
		},
	})

	got := readFrame(t, conn)
	if got.Type != "sim.error" {
		t.Fatalf("frame type = %q, want %q", got.Type, "sim.error")
	}
	if !strings.Contains(string(got.Payload), "INVALID_ARGUMENT") {
		t.Fatalf("error payload = %s, expected INVALID_ARGUMENT code", string(got.Payload))
	}
}

func TestWebSocketUnknownTypeReturnsSimError(t *testing.T) {
	conn := dialWS(t)

	writeFrame(t, conn, map[string]any{
		"type":       "sim.unknown",
		"request_id": "req-bad-1",
		"payload":    map[string]any{},
	})

	got := readFrame(t, conn)
	if got.Type != "sim.error" {
		t.Fatalf("frame type = %q, want %q", got.Type, "sim.error")
	}
	if !strings.Contains(string(got.Payload), "INVALID_ARGUMENT") {
		t.Fatalf("error payload = %s, expected INVALID_ARGUMENT code", string(got.Payload))
	}
}

func TestWebSocketSubmitBeforeJoinRejected(t *testing.T) {
	conn := dialWS(t)

	writeFrame(t, conn, map[string]any{
		"type":       "sim.submit",
		"request_id": "req-submit-early",
		"payload": map[string]any{
			"saving_rate":     0.2,
			"exchange_policy": 1.0,
		},
	})

	got := readFrame(t, conn)
	if got.Type != "sim.error" {
		t.Fatalf("frame type = %q, want %q", got.Type, "sim.error")
	}
	if !strings.Contains(string(got.Payload), "FAILED_PRECONDITION") {
		t.Fatalf("error payload = %s, expected FAILED_PRECONDITION", string(got.Payload))
	}
}

func TestWebSocketSubmitAcksAndAdvancesYear(t *testing.T) {
	conn := dialWS(t)
	joinSession(t, conn, "class-101")

	writeFrame(t, conn, map[string]any{
		"type":       "sim.submit",
		"request_id": "req-submit-1",
		"payload": map[string]any{
			"saving_rate":     0.2,
			"exchange_policy": 1.0,
		},
	})

	ack := readFrame(t, conn)
	if ack.Type != "sim.ack" {
		t.Fatalf("frame type = %q, want %q", ack.Type, "sim.ack")
	}
	payload := decodeAckPayload(t, ack.Payload)
	if payload.Result.Status != "ok" {
		t.Fatalf("ack status = %q, want %q", payload.Result.Status, "ok")
	}
	if payload.Result.Year != 1985 {
		t.Fatalf("ack year = %d, want 1985", payload.Result.Year)
	}
	if payload.Result.Rounds != 2 {
		t.Fatalf("ack rounds = %d, want 2", payload.Result.Rounds)
	}

	history := readFrame(t, conn)
	if history.Type != "sim.history" {
		t.Fatalf("frame type = %q, want %q", history.Type, "sim.history")
	}
}

func TestWebSocketSubmitBroadcastsToSessionPeers(t *testing.T) {
	srv := httptest.NewServer(NewHandler(newTestCoordinator(t)))
	t.Cleanup(srv.Close)

	connA := dialWSWithExistingServer(t, srv)
	connB := dialWSWithExistingServer(t, srv)

	joinSession(t, connA, "class-101")
	joinSession(t, connB, "class-101")

	writeFrame(t, connA, map[string]any{
		"type":       "sim.submit",
		"request_id": "req-submit-1",
		"payload": map[string]any{
			"saving_rate":     0.3,
			"exchange_policy": 1.2,
		},
	})

	ack := readFrame(t, connA)
	if ack.Type != "sim.ack" {
		t.Fatalf("submitter frame type = %q, want %q", ack.Type, "sim.ack")
	}
	senderHistory := readFrame(t, connA)
	if senderHistory.Type != "sim.history" {
		t.Fatalf("submitter frame type = %q, want %q", senderHistory.Type, "sim.history")
	}

	receiverHistory := readFrame(t, connB)
	if receiverHistory.Type != "sim.history" {
		t.Fatalf("receiver frame type = %q, want %q", receiverHistory.Type, "sim.history")
	}

	sent := decodeHistoryPayload(t, senderHistory.Payload)
	received := decodeHistoryPayload(t, receiverHistory.Payload)
	if len(received.History) != 2 {
		t.Fatalf("receiver history length = %d, want 2", len(received.History))
	}
	if received.History[1] != sent.History[1] {
		t.Fatalf("receiver state = %+v, want %+v", received.History[1], sent.History[1])
	}
}

func TestWebSocketSubmitDoesNotReachOtherSessions(t *testing.T) {
	srv := httptest.NewServer(NewHandler(newTestCoordinator(t)))
	t.Cleanup(srv.Close)

	connA := dialWSWithExistingServer(t, srv)
	connB := dialWSWithExistingServer(t, srv)

	joinSession(t, connA, "class-101")
	joinSession(t, connB, "class-102")

	writeFrame(t, connA, map[string]any{
		"type":       "sim.submit",
		"request_id": "req-submit-1",
		"payload": map[string]any{
			"saving_rate":     0.2,
			"exchange_policy": 1.0,
		},
	})
	_ = readFrame(t, connA)
	_ = readFrame(t, connA)

	_ = connB.SetDeadline(time.Now().Add(300 * time.Millisecond))
	var stray wsTestFrame
	if err := json.NewDecoder(connB).Decode(&stray); err == nil {
		t.Fatalf("unexpected frame for other session: %+v", stray)
	}
}

func TestWebSocketSubmitInvalidControlsReturnsViolations(t *testing.T) {
	conn := dialWS(t)
	joinSession(t, conn, "class-101")

	writeFrame(t, conn, map[string]any{
		"type":       "sim.submit",
		"request_id": "req-submit-bad",
		"payload": map[string]any{
			"saving_rate":     1.4,
			"exchange_policy": 1.0,
		},
	})

	got := readFrame(t, conn)
	if got.Type != "sim.error" {
		t.Fatalf("frame type = %q, want %q", got.Type, "sim.error")
	}
	payload := string(got.Payload)
	if !strings.Contains(payload, "INVALID_CONTROLS") {
		t.Fatalf("error payload = %s, expected INVALID_CONTROLS code", payload)
	}
	if !strings.Contains(payload, "saving_rate") {
		t.Fatalf("error payload = %s, expected saving_rate violation", payload)
	}
	if !strings.Contains(payload, `"retryable":true`) {
		t.Fatalf("error payload = %s, expected retryable error", payload)
	}

	writeFrame(t, conn, map[string]any{
		"type":       "sim.submit",
		"request_id": "req-submit-ok",
		"payload": map[string]any{
			"saving_rate":     0.2,
			"exchange_policy": 1.0,
		},
	})
	ack := readFrame(t, conn)
	if ack.Type != "sim.ack" {
		t.Fatalf("frame type after rejection = %q, want %q", ack.Type, "sim.ack")
	}
	result := decodeAckPayload(t, ack.Payload)
	if result.Result.Rounds != 2 {
		t.Fatalf("rounds after rejection = %d, want 2", result.Result.Rounds)
	}
}

func TestWebSocketRejoinSwitchesRooms(t *testing.T) {
	srv := httptest.NewServer(NewHandler(newTestCoordinator(t)))
	t.Cleanup(srv.Close)

	conn := dialWSWithExistingServer(t, srv)
	other := dialWSWithExistingServer(t, srv)

	joinSession(t, conn, "class-101")
	joinSession(t, conn, "class-102")
	joinSession(t, other, "class-101")

	writeFrame(t, other, map[string]any{
		"type":       "sim.submit",
		"request_id": "req-submit-1",
		"payload": map[string]any{
			"saving_rate":     0.2,
			"exchange_policy": 1.0,
		},
	})
	_ = readFrame(t, other)
	_ = readFrame(t, other)

	_ = conn.SetDeadline(time.Now().Add(300 * time.Millisecond))
	var stray wsTestFrame
	if err := json.NewDecoder(conn).Decode(&stray); err == nil {
		t.Fatalf("unexpected frame after leaving session: %+v", stray)
	}
}

func TestWebSocketEndpointRejectsNonGet(t *testing.T) {
	srv := httptest.NewServer(NewHandler(newTestCoordinator(t)))
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/ws", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("post /ws: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}
