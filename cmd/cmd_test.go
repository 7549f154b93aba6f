package cmd

import (
	"bytes"
	"context"
	"errors"
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

func newTestService(t *testing.T) (*answer.Service, *testutil.MockLLM, *session.Tracker) {
	t.Helper()

	g := genkit.Init(context.Background())
	llm := testutil.NewMockLLM("mock answer")
	llm.RegisterModel(g)

	tracker := session.NewTracker()
	svc, err := answer.NewService(g, extract.NewKeyword(), stubResolver{}, stubRetriever{},
		stubMemory{}, tracker, answer.Config{
			ModelName:    "mock/test-model",
			ModelTimeout: 5 * time.Second,
			RateLimit:    1000,
			RateBurst:    1000,
		}, log.NewNop())
	if err != nil {
		t.Fatalf("NewService() unexpected error: %v", err)
	}
	return svc, llm, tracker
}

func TestChatLoopAnswersAndExits(t *testing.T) {
	svc, llm, _ := newTestService(t)
	llm.AddResponse("2902746", "It is in the Arabian Sea.")

	in := strings.NewReader("where is float 2902746?\nexit\n")
	var out bytes.Buffer

	if err := chatLoop(context.Background(), in, &out, svc, "s1"); err != nil {
		t.Fatalf("chatLoop() unexpected error: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "It is in the Arabian Sea.") {
		t.Errorf("output missing answer:\n%s", got)
	}
	if !strings.Contains(got, "Goodbye.") {
		t.Errorf("output missing farewell:\n%s", got)
	}
}

func TestChatLoopClear(t *testing.T) {
	svc, _, tracker := newTestService(t)

	in := strings.NewReader("where is float 2902746?\nclear\nquit\n")
	var out bytes.Buffer

	if err := chatLoop(context.Background(), in, &out, svc, "s1"); err != nil {
		t.Fatalf("chatLoop() unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Context cleared.") {
		t.Errorf("output missing clear confirmation:\n%s", out.String())
	}
	if got := tracker.Get("s1").Snapshot().FloatID; got != "" {
		t.Errorf("FloatID after clear = %q, want empty", got)
	}
}

func TestChatLoopSkipsBlankLines(t *testing.T) {
	svc, llm, _ := newTestService(t)

	in := strings.NewReader("\n   \nexit\n")
	var out bytes.Buffer

	if err := chatLoop(context.Background(), in, &out, svc, "s1"); err != nil {
		t.Fatalf("chatLoop() unexpected error: %v", err)
	}
	if len(llm.Calls()) != 0 {
		t.Errorf("model called %d times for blank input, want 0", len(llm.Calls()))
	}
}

func TestChatLoopEOF(t *testing.T) {
	svc, _, _ := newTestService(t)

	var out bytes.Buffer
	if err := chatLoop(context.Background(), strings.NewReader(""), &out, svc, "s1"); err != nil {
		t.Fatalf("chatLoop() on EOF unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Goodbye.") {
		t.Errorf("output missing farewell on EOF:\n%s", out.String())
	}
}

func TestChatLoopErrorKeepsGoing(t *testing.T) {
	svc, llm, _ := newTestService(t)
	llm.FailWith(errors.New("model exploded"))

	in := strings.NewReader("first question\nexit\n")
	var out bytes.Buffer

	if err := chatLoop(context.Background(), in, &out, svc, "s1"); err != nil {
		t.Fatalf("chatLoop() unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Error:") {
		t.Errorf("output missing error message:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Goodbye.") {
		t.Error("loop aborted instead of continuing after an error")
	}
}

func TestFormatAnswerError(t *testing.T) {
	if got := formatAnswerError(answer.ErrEmptyQuestion); got != "Please enter a question." {
		t.Errorf("formatAnswerError(ErrEmptyQuestion) = %q", got)
	}
	if got := formatAnswerError(answer.ErrGenerateTimeout); !strings.Contains(got, "too long") {
		t.Errorf("formatAnswerError(ErrGenerateTimeout) = %q", got)
	}
	if got := formatAnswerError(errors.New("boom")); !strings.Contains(got, "boom") {
		t.Errorf("formatAnswerError(generic) = %q", got)
	}
}

func TestValidateAddr(t *testing.T) {
	tests := []struct {
		addr    string
		wantErr bool
	}{
		{"127.0.0.1:8080", false},
		{"localhost:3400", false},
		{":8080", false},
		{"0.0.0.0:0", false},
		{"no-port", true},
		{"host:", true},
		{"host:notanumber", true},
		{"host:99999", true},
	}
	for _, tt := range tests {
		err := validateAddr(tt.addr)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateAddr(%q) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
		}
	}
}
