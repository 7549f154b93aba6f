// Package prompt assembles the final model prompt.
//
// Compose is a pure function over its inputs; everything the model sees is
// decided here and nowhere else. Sections appear in a fixed order so the
// database facts always outrank retrieved text.
package prompt

import (
	"fmt"
	"strings"
)

// systemInstructions anchors the model's behavior for every question.
const systemInstructions = `You are an expert oceanographic data assistant for the Argo float program.

Rules:
- Answer using ONLY the DATABASE FACTS and RETRIEVED CONTEXT below.
- DATABASE FACTS are authoritative. When a retrieved document disagrees with a fact, trust the fact.
- If the provided information does not answer the question, say "I don't know based on the available data." Never invent float IDs, coordinates, dates, or measurements.
- Resolve pronouns like "it" or "that float" using the ACTIVE CONTEXT section.
- Be concise and specific. Quote exact numbers from the facts when available.`

// Compose builds the full prompt text for a single question.
//
// facts are grounded database sentences, docs are retrieved passages with
// memory hits already ordered before index hits, contextBlock is the active
// session context (may be empty).
func Compose(facts, docs []string, contextBlock, question string) string {
	var b strings.Builder

	b.WriteString(systemInstructions)
	b.WriteString("\n\n")

	b.WriteString("DATABASE FACTS:\n")
	if len(facts) == 0 {
		b.WriteString("(none)\n")
	}
	for _, f := range facts {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	b.WriteString("\n")

	b.WriteString("RETRIEVED CONTEXT:\n")
	if len(docs) == 0 {
		b.WriteString("(none)\n")
	}
	for _, d := range docs {
		fmt.Fprintf(&b, "- %s\n", d)
	}
	b.WriteString("\n")

	if contextBlock != "" {
		b.WriteString(contextBlock)
		b.WriteString("\n\n")
	}

	b.WriteString("Question: ")
	b.WriteString(question)

	return b.String()
}
