package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetsense/sheetsense/internal/models"
	"github.com/sheetsense/sheetsense/internal/ragerrors"
)

type mockQueryAnswerer struct {
	answerFunc func(ctx context.Context, documentID, question string) (models.QueryAnswer, error)
}

func (m *mockQueryAnswerer) Answer(ctx context.Context, documentID, question string) (models.QueryAnswer, error) {
	if m.answerFunc != nil {
		return m.answerFunc(ctx, documentID, question)
	}

	return models.QueryAnswer{}, nil
}

func TestQueryHandler_Answer(t *testing.T) {
	t.Run("returns answer envelope", func(t *testing.T) {
		handler := NewQueryHandler(&mockQueryAnswerer{
			answerFunc: func(_ context.Context, documentID, question string) (models.QueryAnswer, error) {
				assert.Equal(t, "doc1", documentID)
				assert.Equal(t, "What was Q1 revenue?", question)

				return models.QueryAnswer{
					Answer:     "Q1 revenue was 100.",
					Question:   question,
					DocumentID: documentID,
					RelevantRows: []models.ContentFragment{
						{Content: "Q1 revenue: 100", Score: 0.9},
					},
				}, nil
			},
		})

		body := `{"document_id":"doc1","question":"What was Q1 revenue?"}`
		req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Answer(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var got models.QueryAnswer
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Q1 revenue was 100.", got.Answer)
		assert.Equal(t, "doc1", got.DocumentID)
		assert.Len(t, got.RelevantRows, 1)
	})

	t.Run("relevantRows key is present even when empty", func(t *testing.T) {
		handler := NewQueryHandler(&mockQueryAnswerer{
			answerFunc: func(_ context.Context, documentID, question string) (models.QueryAnswer, error) {
				return models.QueryAnswer{
					Answer:       "no idea",
					Question:     question,
					DocumentID:   documentID,
					RelevantRows: []models.ContentFragment{},
				}, nil
			},
		})

		body := `{"document_id":"doc-missing","question":"anything?"}`
		req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Answer(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		require.Contains(t, raw, "relevantRows")
		assert.JSONEq(t, `[]`, string(raw["relevantRows"]))
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		handler := NewQueryHandler(&mockQueryAnswerer{})

		req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"document_id":`))
		rec := httptest.NewRecorder()

		handler.Answer(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"detail":"Invalid request body"}`, rec.Body.String())
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		handler := NewQueryHandler(&mockQueryAnswerer{})

		body := `{"document_id":"doc1","question":"q","extra":true}`
		req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Answer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		handler := NewQueryHandler(&mockQueryAnswerer{
			answerFunc: func(_ context.Context, _, _ string) (models.QueryAnswer, error) {
				return models.QueryAnswer{}, ragerrors.NewValidationError("document_id", "document_id must not be empty")
			},
		})

		body := `{"document_id":"","question":"q"}`
		req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Answer(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var errBody map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
		assert.Contains(t, errBody["detail"], "document_id must not be empty")
	})

	t.Run("pipeline failure maps to 500 with detail", func(t *testing.T) {
		handler := NewQueryHandler(&mockQueryAnswerer{
			answerFunc: func(_ context.Context, _, _ string) (models.QueryAnswer, error) {
				return models.QueryAnswer{}, ragerrors.NewModelUnavailableError("gen-model", "inference backend unreachable")
			},
		})

		body := `{"document_id":"doc1","question":"q"}`
		req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Answer(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var errBody map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
		assert.Contains(t, errBody["detail"], "inference backend unreachable")
	})
}
