package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sheetsense/sheetsense/internal/models"
	"github.com/sheetsense/sheetsense/internal/ragerrors"
)

const (
	mongoDocumentsCollection = "documents"
	mongoSummariesCollection = "summaries"
)

// MongoStore retrieves fragments from MongoDB. A document is stored as one
// record {_id, rows: [{content, embedding}]}; summaries live in their own
// collection keyed by document id.
//
// Stock MongoDB has no server-side vector dot-product operator, so ranking
// happens client-side: the adapter fetches the document's rows and sorts by
// dot product against the query vector. Acceptable for per-document corpora
// (spreadsheet rows); revisit if a single document grows past memory bounds.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to MongoDB and pings it.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, ragerrors.NewStoreUnavailableError("mongo",
			fmt.Sprintf("connect mongo: %v", err))
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, ragerrors.NewStoreUnavailableError("mongo",
			fmt.Sprintf("ping mongo: %v", err))
	}

	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

// mongoRow is one stored spreadsheet row inside a document record.
type mongoRow struct {
	Content   any       `bson:"content"`
	Embedding []float32 `bson:"embedding"`
}

type mongoDocument struct {
	ID   string     `bson:"_id"`
	Rows []mongoRow `bson:"rows"`
}

// TopK fetches the document's rows and ranks them client-side by dot product,
// descending, returning at most k fragments.
func (s *MongoStore) TopK(
	ctx context.Context, documentID string, queryVector []float32, k int,
) ([]models.ContentFragment, error) {
	var doc mongoDocument

	err := s.db.Collection(mongoDocumentsCollection).
		FindOne(ctx, bson.M{"_id": documentID}).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}

		return nil, ragerrors.NewStoreUnavailableError("mongo",
			fmt.Sprintf("find document: %v", err))
	}

	return rankRowsByDotProduct(documentID, doc.Rows, queryVector, k), nil
}

// GetSummary looks up the summaries collection by document id.
func (s *MongoStore) GetSummary(ctx context.Context, documentID string) (*models.DocumentSummary, error) {
	var result struct {
		Content any `bson:"content"`
	}

	err := s.db.Collection(mongoSummariesCollection).
		FindOne(ctx, bson.M{"_id": documentID}).
		Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}

		return nil, ragerrors.NewStoreUnavailableError("mongo",
			fmt.Sprintf("get summary: %v", err))
	}

	return &models.DocumentSummary{
		DocumentID: documentID,
		Content:    contentToString(result.Content),
	}, nil
}

// Ping verifies the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return ragerrors.NewStoreUnavailableError("mongo",
			fmt.Sprintf("ping: %v", err))
	}

	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}

	return nil
}

// rankRowsByDotProduct scores rows against queryVector, sorts descending, and
// keeps the top k. Rows with a different vector length score zero. Sorting is
// stable so equal scores preserve stored order.
func rankRowsByDotProduct(documentID string, rows []mongoRow, queryVector []float32, k int) []models.ContentFragment {
	if len(rows) == 0 || k <= 0 {
		return nil
	}

	fragments := make([]models.ContentFragment, 0, len(rows))
	for _, row := range rows {
		fragments = append(fragments, models.ContentFragment{
			Content:    contentToString(row.Content),
			DocumentID: documentID,
			Score:      dotProduct(row.Embedding, queryVector),
		})
	}

	sort.SliceStable(fragments, func(i, j int) bool {
		return fragments[i].Score > fragments[j].Score
	})

	if len(fragments) > k {
		fragments = fragments[:k]
	}

	return fragments
}

func dotProduct(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}

	return sum
}

// contentToString renders stored row content as text for prompting. Strings
// pass through; structured payloads are JSON-encoded.
func contentToString(content any) string {
	switch v := content.(type) {
	case nil:
		return ""
	case string:
		return v
	case bson.D:
		// Ordered documents JSON-encode as key/value pair arrays; flatten first.
		b, err := json.Marshal(v.Map())
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(b)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(b)
	}
}
