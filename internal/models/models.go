// Package models defines the request-scoped data types exchanged between the
// HTTP layer, the retrieval stores, and the answer pipeline.
package models

// Query is a question about a previously ingested document.
type Query struct {
	DocumentID string `json:"document_id"` //nolint:tagliatelle // API contract
	Question   string `json:"question"`
}

// ContentFragment is one stored piece of document content (e.g. a spreadsheet row)
// returned by retrieval, with the store-computed ranking score normalized so that
// higher is better. DocumentID is the owning document.
type ContentFragment struct {
	Content    string  `json:"content"`
	DocumentID string  `json:"documentId,omitempty"` //nolint:tagliatelle // API contract
	Score      float64 `json:"score"`
}

// DocumentSummary describes a whole ingested document. Stores return nil when
// no summary was ingested for the document.
type DocumentSummary struct {
	DocumentID string `json:"documentId"` //nolint:tagliatelle // API contract
	Content    string `json:"content"`
}

// QueryAnswer is the response for POST /query. RelevantRows preserves the
// store's best-first ranking.
type QueryAnswer struct {
	Answer       string            `json:"answer"`
	Question     string            `json:"question"`
	DocumentID   string            `json:"document_id"`  //nolint:tagliatelle // API contract
	RelevantRows []ContentFragment `json:"relevantRows"` //nolint:tagliatelle // API contract
}

// HealthStatus is the body for GET /health when all dependencies are reachable.
type HealthStatus struct {
	Status string `json:"status"`
}
