// Package session tracks short-term conversational context.
//
// A Context remembers the active float, region and parameter plus a bounded
// FIFO of recent questions, so follow-up questions like "what about it?"
// resolve against the last-known entities. Context lives in memory only and
// is never persisted across restarts.
package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/zynfvr/sih2/internal/extract"
)

// MaxRecentQuestions bounds the recent-question FIFO.
const MaxRecentQuestions = 5

// promptRecentQuestions is how many recent questions the prompt block shows.
const promptRecentQuestions = 3

// Context is the per-conversation session state.
//
// Matched entity fields are overwritten on update; unmatched fields keep
// their previous value. Stickiness is intentional: pronouns resolve to the
// last-known entity until the user names a new one.
//
// Context is safe for concurrent use.
type Context struct {
	mu        sync.RWMutex
	floatID   string
	region    string
	parameter string
	recent    []string // FIFO, oldest first, len <= MaxRecentQuestions
}

// NewContext creates an empty session context.
func NewContext() *Context {
	return &Context{}
}

// Update applies the entities extracted from a question and records the
// question in the recent FIFO, evicting the oldest entry past the bound.
// A non-match never clears a field.
func (c *Context) Update(ents extract.Entities, question string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ents.FloatID != "" {
		c.floatID = ents.FloatID
	}
	if ents.Region != "" {
		c.region = ents.Region
	}
	if ents.Parameter != "" {
		c.parameter = ents.Parameter
	}

	c.recent = append(c.recent, question)
	if len(c.recent) > MaxRecentQuestions {
		c.recent = c.recent[len(c.recent)-MaxRecentQuestions:]
	}
}

// Clear resets all fields and the recent-question FIFO.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.floatID = ""
	c.region = ""
	c.parameter = ""
	c.recent = nil
}

// Snapshot is an immutable copy of the context state.
type Snapshot struct {
	FloatID   string
	Region    string
	Parameter string
	Recent    []string
}

// Snapshot returns a copy of the current state.
func (c *Context) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	recent := make([]string, len(c.recent))
	copy(recent, c.recent)
	return Snapshot{
		FloatID:   c.floatID,
		Region:    c.region,
		Parameter: c.parameter,
		Recent:    recent,
	}
}

// PromptBlock renders the ACTIVE CONTEXT text injected into the prompt.
// Returns "" when the context is empty.
func (s Snapshot) PromptBlock() string {
	var parts []string

	if s.FloatID != "" {
		parts = append(parts, "ACTIVE CONTEXT: Currently discussing float "+s.FloatID)
	}
	if s.Parameter != "" {
		parts = append(parts, "FOCUS PARAMETER: "+s.Parameter)
	}
	if s.Region != "" {
		parts = append(parts, "REGION OF INTEREST: "+s.Region)
	}

	if len(s.Recent) > 1 {
		parts = append(parts, "RECENT CONVERSATION:")
		start := len(s.Recent) - promptRecentQuestions
		if start < 0 {
			start = 0
		}
		for i, q := range s.Recent[start:] {
			parts = append(parts, fmt.Sprintf("  %d. %s", i+1, q))
		}
	}

	return strings.Join(parts, "\n")
}
