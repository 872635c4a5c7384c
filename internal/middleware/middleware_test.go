package middleware

import (
	"context"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akolanti/DocsChat/internal/config"
	"github.com/akolanti/DocsChat/internal/domain/docModel"
	"github.com/akolanti/DocsChat/internal/handlers"
	"github.com/akolanti/DocsChat/internal/rag/ingest"
)

type MockRagService struct {
	Fragments []string
}

func (m *MockRagService) Ingest(ctx context.Context) (ingest.Result, error) {
	return ingest.Result{Status: ingest.StatusCompleted}, nil
}

func (m *MockRagService) Chat(ctx context.Context, turns []docModel.Message) (iter.Seq2[string, error], error) {
	return func(yield func(string, error) bool) {
		for _, f := range m.Fragments {
			if !yield(f, nil) {
				return
			}
		}
	}, nil
}

func TestWrap_InjectsTrace(t *testing.T) {
	var gotTrace string
	wrapped := Wrap(func(w http.ResponseWriter, r *http.Request) {
		gotTrace, _ = r.Context().Value(config.TRACE_ID_KEY).(string)
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	wrapped(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if gotTrace == "" {
		t.Error("no trace id injected into the request context")
	}
}

func TestWrap_KeepsCallerTrace(t *testing.T) {
	var gotTrace string
	wrapped := Wrap(func(w http.ResponseWriter, r *http.Request) {
		gotTrace, _ = r.Context().Value(config.TRACE_ID_KEY).(string)
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Trace-Id", "caller-trace")
	wrapped(httptest.NewRecorder(), req)

	if gotTrace != "caller-trace" {
		t.Errorf("got trace %q, want the caller's", gotTrace)
	}
}

// The metrics recorder sits between the handler and the real connection, so
// it must keep the stream flushable all the way through the wrapped chain.
func TestChatHandler_StreamsThroughMiddleware(t *testing.T) {
	handlers.InitHandlers(&MockRagService{Fragments: []string{"Hello", " world"}})
	defer handlers.InitHandlers(nil)

	body := `{"messages":[{"role":"user","content":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.7:40000"
	rec := httptest.NewRecorder()

	Wrap(handlers.ChatHandler)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("got Content-Type %q, want text/event-stream", got)
	}

	out := rec.Body.String()
	for _, want := range []string{`data: {"response":"Hello"}`, `data: {"response":" world"}`, "event: done"} {
		if !strings.Contains(out, want) {
			t.Errorf("stream missing %q, got:\n%s", want, out)
		}
	}
}

func TestIPRateLimiter_SeparatesClients(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)

	if !limiter.GetLimiter("10.0.0.1").Allow() {
		t.Fatal("first request should pass")
	}
	if limiter.GetLimiter("10.0.0.1").Allow() {
		t.Error("burst of 1 should block the second request")
	}
	if !limiter.GetLimiter("10.0.0.2").Allow() {
		t.Error("a different client must have its own budget")
	}
}

func init() {
	// handlers log inside the middleware chain
	handlers.InitHandlers(nil)
}
