package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/screengrabber/account-api/internal/core/domain"
	"github.com/screengrabber/account-api/internal/core/ports"
)

const collectionLicenses = "licenses"

// LicenseRepository implements ports.LicenseRepository using MongoDB.
type LicenseRepository struct {
	col *mongo.Collection
}

func NewLicenseRepository(db *mongo.Database) *LicenseRepository {
	return &LicenseRepository{col: db.Collection(collectionLicenses)}
}

var _ ports.LicenseRepository = (*LicenseRepository)(nil)

type licenseDoc struct {
	Key       string    `bson:"key"`
	Active    bool      `bson:"active"`
	Note      string    `bson:"note,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

type licenseRecord struct {
	Key       string        `bson:"key"`
	Active    bool          `bson:"active"`
	Note      string        `bson:"note"`
	CreatedAt bson.RawValue `bson:"created_at"`
}

// FindActive returns the license with key if it is active.
func (r *LicenseRepository) FindActive(ctx context.Context, key string) (*domain.License, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rec licenseRecord
	if err := r.col.FindOne(ctx, bson.M{"key": key, "active": true}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLicenseNotFound
		}
		return nil, fmt.Errorf("find license: %w", err)
	}

	return &domain.License{
		Key:       rec.Key,
		Active:    rec.Active,
		Note:      rec.Note,
		CreatedAt: decodeTime(rec.CreatedAt),
	}, nil
}

func (r *LicenseRepository) Create(ctx context.Context, license *domain.License) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := licenseDoc{
		Key:       license.Key,
		Active:    license.Active,
		Note:      license.Note,
		CreatedAt: license.CreatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrLicenseExists
		}
		return fmt.Errorf("insert license: %w", err)
	}
	return nil
}

func (r *LicenseRepository) Deactivate(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"key": key}, bson.M{"$set": bson.M{"active": false}})
	if err != nil {
		return fmt.Errorf("deactivate license: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrLicenseNotFound
	}
	return nil
}

func (r *LicenseRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
