package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/screengrabber/account-api/internal/core/domain"
	"github.com/screengrabber/account-api/internal/core/ports"
)

const collectionStatusChecks = "status_checks"

// StatusRepository implements ports.StatusRepository using MongoDB.
type StatusRepository struct {
	col *mongo.Collection
}

func NewStatusRepository(db *mongo.Database) *StatusRepository {
	return &StatusRepository{col: db.Collection(collectionStatusChecks)}
}

var _ ports.StatusRepository = (*StatusRepository)(nil)

type statusDoc struct {
	ID         string    `bson:"id"`
	ClientName string    `bson:"client_name"`
	Timestamp  time.Time `bson:"timestamp"`
}

type statusRecord struct {
	ID         string        `bson:"id"`
	ClientName string        `bson:"client_name"`
	Timestamp  bson.RawValue `bson:"timestamp"`
}

func (r *StatusRepository) Create(ctx context.Context, check *domain.StatusCheck) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := statusDoc{ID: check.ID, ClientName: check.ClientName, Timestamp: check.Timestamp.UTC()}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert status check: %w", err)
	}
	return nil
}

// List returns up to limit checks, newest first.
func (r *StatusRepository) List(ctx context.Context, limit int64) ([]*domain.StatusCheck, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find status checks: %w", err)
	}
	defer cursor.Close(ctx)

	var records []statusRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode status checks: %w", err)
	}

	checks := make([]*domain.StatusCheck, 0, len(records))
	for _, rec := range records {
		checks = append(checks, &domain.StatusCheck{
			ID:         rec.ID,
			ClientName: rec.ClientName,
			Timestamp:  decodeTime(rec.Timestamp),
		})
	}
	return checks, nil
}

func (r *StatusRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: -1}},
	})
	return err
}
