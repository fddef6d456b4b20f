package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetsense/sheetsense/internal/models"
)

func TestBuild(t *testing.T) {
	t.Run("contains summary, fragments in rank order, question, and answer cue", func(t *testing.T) {
		summary := &models.DocumentSummary{DocumentID: "doc1", Content: "Sales grew 10%"}
		fragments := []models.ContentFragment{
			{Content: "Q1 revenue: 100", DocumentID: "doc1", Score: 0.9},
			{Content: "Q2 revenue: 110", DocumentID: "doc1", Score: 0.8},
		}

		got := Build(summary, fragments, "What was Q1 revenue?")

		assert.Contains(t, got, "Sales grew 10%")
		assert.Contains(t, got, "Q1 revenue: 100")
		assert.Contains(t, got, "Q2 revenue: 110")
		assert.Contains(t, got, "Question: What was Q1 revenue?")
		assert.True(t, strings.HasSuffix(got, "Answer:"))

		// Rank order is preserved in the serialized context.
		assert.Less(t, strings.Index(got, "Q1 revenue"), strings.Index(got, "Q2 revenue"))
	})

	t.Run("nil summary renders null", func(t *testing.T) {
		got := Build(nil, nil, "anything?")

		assert.Contains(t, got, "summary: null")
		assert.Contains(t, got, "relevant rows: []")
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		fragments := []models.ContentFragment{{Content: "row", Score: 1}}

		first := Build(nil, fragments, "q")
		second := Build(nil, fragments, "q")

		require.Equal(t, first, second)
	})

	t.Run("fragment content is JSON-escaped", func(t *testing.T) {
		fragments := []models.ContentFragment{{Content: `{"region":"EMEA"}`, Score: 1}}

		got := Build(nil, fragments, "q")

		assert.Contains(t, got, `\"region\":\"EMEA\"`)
	})
}
