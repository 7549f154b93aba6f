package memory

import "testing"

func TestEntryPromptText(t *testing.T) {
	e := Entry{Question: "where is it?", Content: "In the Arabian Sea."}
	want := "Previous exchange (asked: where is it?): In the Arabian Sea."
	if got := e.PromptText(); got != want {
		t.Errorf("PromptText() = %q, want %q", got, want)
	}

	bare := Entry{Content: "Just an answer."}
	if got := bare.PromptText(); got != "Previous exchange: Just an answer." {
		t.Errorf("PromptText() without question = %q", got)
	}
}

func TestNewStoreValidation(t *testing.T) {
	if _, err := NewStore(nil, nil, nil); err == nil {
		t.Error("NewStore(nil, nil) expected error, got nil")
	}
}
