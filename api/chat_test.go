package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/firebase/genkit/go/genkit"

	"github.com/zynfvr/sih2/internal/answer"
	"github.com/zynfvr/sih2/internal/extract"
	"github.com/zynfvr/sih2/internal/index"
	"github.com/zynfvr/sih2/internal/log"
	"github.com/zynfvr/sih2/internal/memory"
	"github.com/zynfvr/sih2/internal/session"
	"github.com/zynfvr/sih2/internal/testutil"
)

type stubResolver struct{}

func (stubResolver) Resolve(context.Context, string, extract.Entities) []string {
	return []string{"Database contains 3 unique floats."}
}

type stubRetriever struct{}

func (stubRetriever) Search(context.Context, string, int) ([]index.Result, error) {
	return nil, nil
}

type stubMemory struct{}

func (stubMemory) Search(context.Context, string, string, int) ([]memory.Entry, error) {
	return nil, nil
}

func (stubMemory) Append(context.Context, string, string, string) error { return nil }

// newTestServer builds a Server backed by the mock model.
func newTestServer(t *testing.T) (*Server, *testutil.MockLLM) {
	t.Helper()

	g := genkit.Init(context.Background())
	llm := testutil.NewMockLLM("mock answer")
	llm.RegisterModel(g)

	svc, err := answer.NewService(g, extract.NewKeyword(), stubResolver{}, stubRetriever{},
		stubMemory{}, session.NewTracker(), answer.Config{
			ModelName:    "mock/test-model",
			ModelTimeout: 5 * time.Second,
			RateLimit:    1000,
			RateBurst:    1000,
		}, log.NewNop())
	if err != nil {
		t.Fatalf("NewService() unexpected error: %v", err)
	}

	srv, err := NewServer(svc, nil, log.NewNop())
	if err != nil {
		t.Fatalf("NewServer() unexpected error: %v", err)
	}
	return srv, llm
}

func postChat(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestChatEndpoint(t *testing.T) {
	srv, llm := newTestServer(t)
	llm.AddResponse("2902746", "Float 2902746 is active.")
	h := srv.Handler()

	rec := postChat(t, h, `{"question":"where is float 2902746?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if resp.Answer != "Float 2902746 is active." {
		t.Errorf("answer = %q", resp.Answer)
	}
	if resp.SessionID == "" {
		t.Error("sessionId is empty, want generated ID")
	}
}

func TestChatEndpointKeepsSession(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := postChat(t, h, `{"sessionId":"abc-123","question":"how many floats?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if resp.SessionID != "abc-123" {
		t.Errorf("sessionId = %q, want abc-123", resp.SessionID)
	}
}

func TestChatEndpointBadRequests(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing question", `{}`},
		{"blank question", `{"question":"   "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postChat(t, h, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body: %s", rec.Code, rec.Body.String())
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if resp.Error == "" {
				t.Error("error field is empty")
			}
		})
	}
}

func TestChatEndpointGenerationFailure(t *testing.T) {
	srv, llm := newTestServer(t)
	llm.FailWith(errors.New("model exploded"))
	h := srv.Handler()

	rec := postChat(t, h, `{"question":"how many floats?"}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502; body: %s", rec.Code, rec.Body.String())
	}
}

func TestChatEndpointMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestClearSessionEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	if rec := postChat(t, h, `{"sessionId":"s1","question":"where is float 2902746?"}`); rec.Code != http.StatusOK {
		t.Fatalf("seed chat status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/s1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestChatEndpointBodyTooLarge(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	big := strings.Repeat("x", maxChatBodyBytes+1)
	rec := postChat(t, h, `{"question":"`+big+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for oversized body", rec.Code)
	}
}
