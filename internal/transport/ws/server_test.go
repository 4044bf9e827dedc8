package ws

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agent-racer/botsched/internal/update"
)

func TestSecurityHeaders(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	securityHeaders(inner).ServeHTTP(rec, req)

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Content-Security-Policy": "default-src 'none'",
	}
	for header, expected := range want {
		if got := rec.Header().Get(header); got != expected {
			t.Errorf("header %s = %q, want %q", header, got, expected)
		}
	}
}

type recordingDispatcher struct {
	messages       []*update.Message
	editedMessages []*update.Message
	callbacks      []*update.CallbackQuery
	inlineQueries  []*update.InlineQuery
}

func (d *recordingDispatcher) HandleMessage(m *update.Message)             { d.messages = append(d.messages, m) }
func (d *recordingDispatcher) HandleEditedMessage(m *update.Message)       { d.editedMessages = append(d.editedMessages, m) }
func (d *recordingDispatcher) HandleCallbackQuery(q *update.CallbackQuery) { d.callbacks = append(d.callbacks, q) }
func (d *recordingDispatcher) HandleInlineQuery(q *update.InlineQuery)     { d.inlineQueries = append(d.inlineQueries, q) }

func postUpdate(t *testing.T, s *Server, env UpdateEnvelope) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/updates", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleUpdates(rec, req)
	return rec
}

func TestHandleUpdatesRoutesByKind(t *testing.T) {
	d := &recordingDispatcher{}
	s := NewServer(d, nil, nil, "")

	rec := postUpdate(t, s, UpdateEnvelope{Kind: "message", Message: &WireMessage{ID: 1, From: WireUser{ID: 42}, Text: "hi"}})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	if len(d.messages) != 1 || d.messages[0].From.ID != 42 {
		t.Fatalf("messages = %+v, want one message from user 42", d.messages)
	}

	postUpdate(t, s, UpdateEnvelope{Kind: "callback_query", CallbackQuery: &WireCallback{ID: "cb1", Data: "buy:1"}})
	if len(d.callbacks) != 1 || d.callbacks[0].Data != "buy:1" {
		t.Fatalf("callbacks = %+v, want one callback with data buy:1", d.callbacks)
	}

	postUpdate(t, s, UpdateEnvelope{Kind: "inline_query", InlineQuery: &WireInline{ID: "iq1", Query: "search"}})
	if len(d.inlineQueries) != 1 {
		t.Fatalf("inlineQueries = %+v, want one entry", d.inlineQueries)
	}
}

func TestHandleUpdatesUnknownKind(t *testing.T) {
	s := NewServer(&recordingDispatcher{}, nil, nil, "")
	rec := postUpdate(t, s, UpdateEnvelope{Kind: "shipping_query"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAuthorizeRejectsMissingToken(t *testing.T) {
	s := NewServer(&recordingDispatcher{}, nil, nil, "s3cr3t")

	req := httptest.NewRequest(http.MethodPost, "/updates", nil)
	if s.authorize(req) {
		t.Fatal("authorize should reject a request without a token")
	}

	req.Header.Set("Authorization", "Bearer s3cr3t")
	if !s.authorize(req) {
		t.Fatal("authorize should accept a matching bearer token")
	}
}

func TestCheckOriginAllowlist(t *testing.T) {
	s := NewServer(&recordingDispatcher{}, nil, []string{"https://example.com"}, "")

	allowed := httptest.NewRequest(http.MethodGet, "/diagnostics", nil)
	allowed.Header.Set("Origin", "https://example.com")
	if !s.checkOrigin(allowed) {
		t.Error("checkOrigin should allow an origin on the allowlist")
	}

	blocked := httptest.NewRequest(http.MethodGet, "/diagnostics", nil)
	blocked.Header.Set("Origin", "https://evil.example")
	if s.checkOrigin(blocked) {
		t.Error("checkOrigin should reject an origin off the allowlist")
	}

	// Loopback is only a fallback when no allowlist is configured.
	loopback := httptest.NewRequest(http.MethodGet, "/diagnostics", nil)
	loopback.Header.Set("Origin", "http://127.0.0.1:9000")
	if s.checkOrigin(loopback) {
		t.Error("checkOrigin should not fall back to loopback once an allowlist is set")
	}
}

func TestCheckOriginNoAllowlistFallsBackToSameHostOrLoopback(t *testing.T) {
	s := NewServer(&recordingDispatcher{}, nil, nil, "")

	sameHost := httptest.NewRequest(http.MethodGet, "/diagnostics", nil)
	sameHost.Host = "botsched.internal"
	sameHost.Header.Set("Origin", "https://botsched.internal")
	if !s.checkOrigin(sameHost) {
		t.Error("checkOrigin should allow an origin matching the request host")
	}

	loopback := httptest.NewRequest(http.MethodGet, "/diagnostics", nil)
	loopback.Header.Set("Origin", "http://localhost:5173")
	if !s.checkOrigin(loopback) {
		t.Error("checkOrigin should allow a loopback origin when no allowlist is configured")
	}

	other := httptest.NewRequest(http.MethodGet, "/diagnostics", nil)
	other.Header.Set("Origin", "https://not-this-host.example")
	if s.checkOrigin(other) {
		t.Error("checkOrigin should reject an unrelated origin when no allowlist is configured")
	}
}

func TestAuthorizeAcceptsTokenViaQueryAndHeader(t *testing.T) {
	s := NewServer(&recordingDispatcher{}, nil, nil, "s3cr3t")

	viaQuery := httptest.NewRequest(http.MethodPost, "/updates?token=s3cr3t", nil)
	if !s.authorize(viaQuery) {
		t.Error("authorize should accept a matching query token")
	}

	viaHeader := httptest.NewRequest(http.MethodPost, "/updates", nil)
	viaHeader.Header.Set("X-Botsched-Token", "s3cr3t")
	if !s.authorize(viaHeader) {
		t.Error("authorize should accept a matching X-Botsched-Token header")
	}

	wrong := httptest.NewRequest(http.MethodPost, "/updates?token=nope", nil)
	if s.authorize(wrong) {
		t.Error("authorize should reject a non-matching token")
	}
}
