// Package mongo stores the reference collections as MongoDB documents keyed
// the same way the admin surface addresses them.
package mongo

import (
	"context"
	"fmt"
	"loanlocator/internal/infra/persistence/memory"
	"loanlocator/pkg/domain"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ domain.ReferenceStore = (*Store)(nil)

const (
	defaultURI      = "mongodb://localhost:27017"
	defaultDatabase = "loanlocator"
	insertChunkSize = 500
)

type loanDocument struct {
	ID        string    `bson:"_id"`
	Loan      int64     `bson:"loan"`
	Name      string    `bson:"name"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty"`
}

type rangeDocument struct {
	ID        string    `bson:"_id"`
	Start     int64     `bson:"start"`
	End       int64     `bson:"end"`
	Location  string    `bson:"location"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty"`
}

func toLoanDocument(l domain.LoanRecord) loanDocument {
	return loanDocument{ID: l.ID(), Loan: l.Loan, Name: l.Name, UpdatedAt: l.UpdatedAt}
}

func toRangeDocument(r domain.BoxRange) rangeDocument {
	return rangeDocument{ID: r.ID(), Start: r.Start, End: r.End, Location: r.Location, UpdatedAt: r.UpdatedAt}
}

func (d loanDocument) record() domain.LoanRecord {
	return domain.LoanRecord{Loan: d.Loan, Name: d.Name, UpdatedAt: d.UpdatedAt}
}

func (d rangeDocument) record() domain.BoxRange {
	return domain.BoxRange{Start: d.Start, End: d.End, Location: d.Location, UpdatedAt: d.UpdatedAt}
}

// Store talks to a MongoDB database holding the loans, ranges and metadata collections.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	mu     sync.Mutex
}

// NewStore connects to uri and verifies the deployment is reachable.
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		uri = defaultURI
	}
	if database == "" {
		database = defaultDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *Store) collection(entity domain.EntityType) *mongo.Collection {
	return s.db.Collection(string(entity))
}

// ListLoans returns all loan documents ordered by loan number.
func (s *Store) ListLoans(ctx context.Context) ([]domain.LoanRecord, error) {
	cursor, err := s.collection(domain.EntityLoan).Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "loan", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find loans: %w", err)
	}
	var docs []loanDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode loans: %w", err)
	}
	out := make([]domain.LoanRecord, len(docs))
	for i, d := range docs {
		out[i] = d.record()
	}
	return out, nil
}

// ListRanges returns all range documents ordered by start then end.
func (s *Store) ListRanges(ctx context.Context) ([]domain.BoxRange, error) {
	sort := bson.D{{Key: "start", Value: 1}, {Key: "end", Value: 1}}
	cursor, err := s.collection(domain.EntityRange).Find(ctx, bson.D{}, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("find ranges: %w", err)
	}
	var docs []rangeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode ranges: %w", err)
	}
	out := make([]domain.BoxRange, len(docs))
	for i, d := range docs {
		out[i] = d.record()
	}
	return out, nil
}

// Ping counts at most one document of the metadata collection.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.collection(domain.EntityMetadata).CountDocuments(ctx, bson.D{}, options.Count().SetLimit(1)); err != nil {
		return fmt.Errorf("probe metadata: %w", err)
	}
	return nil
}

// RunInTransaction loads the current documents, runs fn against an in-memory
// view and then applies the recorded writes in order. Writes already applied
// are not undone if a later one fails.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	loans, err := s.ListLoans(ctx)
	if err != nil {
		return err
	}
	ranges, err := s.ListRanges(ctx)
	if err != nil {
		return err
	}
	view := memory.NewStore()
	view.ImportState(memory.Snapshot{Loans: loans, Ranges: ranges})
	var rec recorder
	if err := view.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return fn(&recordingTx{Transaction: tx, rec: &rec})
	}); err != nil {
		return err
	}
	for _, w := range rec.writes {
		if err := s.apply(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) apply(ctx context.Context, w write) error {
	coll := s.collection(w.entity)
	switch w.kind {
	case writePut:
		_, err := coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: w.key}}, w.doc, options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("put %s %s: %w", w.entity, w.key, err)
		}
	case writeDelete:
		if _, err := coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: w.key}}); err != nil {
			return fmt.Errorf("delete %s %s: %w", w.entity, w.key, err)
		}
	case writeClear:
		if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
			return fmt.Errorf("clear %s: %w", w.entity, err)
		}
	case writeReplace:
		if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
			return fmt.Errorf("clear %s: %w", w.entity, err)
		}
		for _, batch := range chunk(w.docs, insertChunkSize) {
			if _, err := coll.InsertMany(ctx, batch); err != nil {
				return fmt.Errorf("insert %s: %w", w.entity, err)
			}
		}
	}
	return nil
}

func chunk(docs []any, size int) [][]any {
	if size <= 0 {
		size = insertChunkSize
	}
	var out [][]any
	for start := 0; start < len(docs); start += size {
		end := min(start+size, len(docs))
		out = append(out, docs[start:end])
	}
	return out
}
