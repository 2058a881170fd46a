package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"enrollment-assessment/internal/app"
	"enrollment-assessment/internal/domain"
	"enrollment-assessment/internal/infra/memory"
	"github.com/gorilla/websocket"
)

const testEmbedScript = "https://forms.example.com/embed.js"

type capturingSubmitter struct {
	mu          sync.Mutex
	submissions []domain.Submission
}

func (c *capturingSubmitter) Submit(_ context.Context, submission domain.Submission) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submissions = append(c.submissions, submission)
	return nil
}

func (c *capturingSubmitter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.submissions)
}

func newTestServer(t *testing.T, submitter app.Submitter) *httptest.Server {
	t.Helper()
	service := app.NewAssessmentService(memory.NewSessionStore(), app.SessionConfig{
		Catalog:     domain.CanonicalCatalog(),
		Submitter:   submitter,
		Persistence: app.NewPersistence(memory.NewKVStore()),
		BookingURL:  "https://book.example.com/widget",
	})
	wsHandler := NewWSHandler(service, testEmbedScript)
	apiHandler := NewAPIHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("/api/catalog", apiHandler.ServeCatalog)
	mux.HandleFunc("/api/score", apiHandler.ServeScore)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketFullFlow(t *testing.T) {
	submitter := &capturingSubmitter{}
	server := newTestServer(t, submitter)
	conn := dial(t, server, "?visitorId=v1&path=/")

	_, state := readNext(conn, t, "state")
	if state["step"] != string(domain.StepWelcome) || state["visitorId"] != "v1" {
		t.Fatalf("unexpected initial state %+v", state)
	}

	send(t, conn, "start", nil)
	readState(conn, t, func(s map[string]any) bool { return s["step"] == string(domain.StepQuiz) })

	for i := 0; i < domain.CanonicalCatalog().Len(); i++ {
		send(t, conn, "answer", map[string]any{"option": 1})
	}
	readState(conn, t, func(s map[string]any) bool { return s["step"] == string(domain.StepLeadCapture) })

	send(t, conn, "lead", map[string]any{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
		"phone":     "+1 (555) 010-2000",
	})
	readState(conn, t, func(s map[string]any) bool {
		lead, _ := s["lead"].(map[string]any)
		return lead["firstName"] == "Ada"
	})

	send(t, conn, "submit", nil)
	nav := readType(conn, t, "navigate")
	if nav["path"] != "/results?first_name=Ada&last_name=Lovelace&email=ada%40example.com&phone=%2B15550102000" {
		t.Fatalf("unexpected navigate payload %+v", nav)
	}
	_, results := readNext(conn, t, "state")
	if results["step"] != string(domain.StepResults) {
		t.Fatalf("expected results state, got %+v", results)
	}
	calendar, _ := results["calendarUrl"].(string)
	if !strings.HasPrefix(calendar, "https://book.example.com/widget?first_name=Ada") {
		t.Fatalf("unexpected calendar url %q", calendar)
	}
	_, embed := readNext(conn, t, "embed")
	if embed["src"] != testEmbedScript {
		t.Fatalf("unexpected embed payload %+v", embed)
	}
	if submitter.count() != 1 {
		t.Fatalf("expected one submission, got %d", submitter.count())
	}
}

func TestWebSocketResultsDeepLinkRedirects(t *testing.T) {
	server := newTestServer(t, &capturingSubmitter{})
	conn := dial(t, server, "?visitorId=v2&path=/results")

	_, nav := readNext(conn, t, "navigate")
	if nav["path"] != "/" || nav["replace"] != true {
		t.Fatalf("expected replace navigation to /, got %+v", nav)
	}
	_, state := readNext(conn, t, "state")
	if state["step"] != string(domain.StepWelcome) {
		t.Fatalf("expected welcome step, got %+v", state)
	}
}

func TestWebSocketResultsMidQuizIsRejected(t *testing.T) {
	submitter := &capturingSubmitter{}
	server := newTestServer(t, submitter)
	conn := dial(t, server, "?visitorId=v4&path=/")
	readNext(conn, t, "state")

	send(t, conn, "start", nil)
	send(t, conn, "answer", map[string]any{"option": 0})
	readState(conn, t, func(s map[string]any) bool { return s["questionIndex"] == float64(1) })

	send(t, conn, "results", nil)
	nav := readType(conn, t, "navigate")
	if nav["path"] != "/" || nav["replace"] != true {
		t.Fatalf("expected replace navigation to /, got %+v", nav)
	}
	payload := readType(conn, t, "error")
	if payload["message"] != domain.ErrInvalidTransition.Error() {
		t.Fatalf("unexpected error payload %+v", payload)
	}

	send(t, conn, "previous", nil)
	state := readState(conn, t, func(s map[string]any) bool { return s["questionIndex"] == float64(0) })
	if state["step"] != string(domain.StepQuiz) {
		t.Fatalf("expected visitor still in the quiz, got %+v", state)
	}
	if submitter.count() != 0 {
		t.Fatalf("expected no submission, got %d", submitter.count())
	}
}

func TestWebSocketMintsVisitorID(t *testing.T) {
	server := newTestServer(t, &capturingSubmitter{})
	conn := dial(t, server, "")

	_, state := readNext(conn, t, "state")
	if id, _ := state["visitorId"].(string); id == "" {
		t.Fatalf("expected a minted visitor id, got %+v", state)
	}
}

func TestWebSocketRejectsInvalidTransition(t *testing.T) {
	server := newTestServer(t, &capturingSubmitter{})
	conn := dial(t, server, "?visitorId=v3")
	readNext(conn, t, "state")

	send(t, conn, "submit", nil)
	_, payload := readNext(conn, t, "error")
	if payload["message"] != domain.ErrInvalidTransition.Error() {
		t.Fatalf("unexpected error payload %+v", payload)
	}

	send(t, conn, "dance", nil)
	readNext(conn, t, "error")
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	msg := map[string]any{"type": typ}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readType(conn *websocket.Conn, t *testing.T, typ string) map[string]any {
	t.Helper()
	for i := 0; i < 64; i++ {
		got, payload := readNext(conn, t, "")
		if got == typ {
			return payload
		}
	}
	t.Fatalf("expected %s message was never received", typ)
	return nil
}

func readState(conn *websocket.Conn, t *testing.T, match func(map[string]any) bool) map[string]any {
	t.Helper()
	for i := 0; i < 64; i++ {
		typ, payload := readNext(conn, t, "")
		if typ == "state" && match(payload) {
			return payload
		}
	}
	t.Fatalf("expected state was never received")
	return nil
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
