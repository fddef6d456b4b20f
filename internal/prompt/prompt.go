// Package prompt assembles the instruction prompt for the generation model.
package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/sheetsense/sheetsense/internal/models"
)

// Build produces the deterministic prompt sent to the generation model: the
// document summary (JSON "null" when absent), the retrieved fragments in rank
// order, the question, and an Answer: cue. summary may be nil; fragments may be
// empty — generation is still invoked with an empty context in that case.
//
// No truncation is applied here; callers own the generation model's input
// limit. TODO: guard combined prompt size once the runtime reports the
// generation model's context window.
func Build(summary *models.DocumentSummary, fragments []models.ContentFragment, question string) string {
	summaryText := "null"
	if summary != nil {
		summaryText = jsonEncode(summary.Content)
	}

	contents := make([]string, 0, len(fragments))
	for _, f := range fragments {
		contents = append(contents, f.Content)
	}

	return fmt.Sprintf(
		"Given the following Excel data summary: %s And these relevant rows: %s Question: %s Answer:",
		summaryText, jsonEncode(contents), question,
	)
}

// jsonEncode renders v as compact JSON. Marshaling strings and string slices
// cannot fail; the fallback exists for completeness.
func jsonEncode(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}

	return string(b)
}
