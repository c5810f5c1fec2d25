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

const collectionPasswordResets = "password_resets"

// ResetRepository implements ports.PasswordResetRepository using MongoDB.
type ResetRepository struct {
	col *mongo.Collection
}

func NewResetRepository(db *mongo.Database) *ResetRepository {
	return &ResetRepository{col: db.Collection(collectionPasswordResets)}
}

var _ ports.PasswordResetRepository = (*ResetRepository)(nil)

type resetDoc struct {
	Email     string    `bson:"email"`
	Token     string    `bson:"token"`
	ExpiresAt time.Time `bson:"expires_at"`
	Used      bool      `bson:"used"`
	CreatedAt time.Time `bson:"created_at"`
}

type resetRecord struct {
	Email     string        `bson:"email"`
	Token     string        `bson:"token"`
	ExpiresAt bson.RawValue `bson:"expires_at"`
	Used      bool          `bson:"used"`
	CreatedAt bson.RawValue `bson:"created_at"`
}

func (r resetRecord) toDomain() *domain.PasswordReset {
	return &domain.PasswordReset{
		Email:     r.Email,
		Token:     r.Token,
		ExpiresAt: decodeTime(r.ExpiresAt),
		Used:      r.Used,
		CreatedAt: decodeTime(r.CreatedAt),
	}
}

func (r *ResetRepository) Create(ctx context.Context, reset *domain.PasswordReset) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := resetDoc{
		Email:     reset.Email,
		Token:     reset.Token,
		ExpiresAt: reset.ExpiresAt.UTC(),
		Used:      reset.Used,
		CreatedAt: reset.CreatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert password reset: %w", err)
	}
	return nil
}

// Claim reserves token for one redemption by stamping claimed_at. A claim
// older than domain.ResetClaimLease counts as abandoned and can be taken over.
func (r *ResetRepository) Claim(ctx context.Context, token string, now time.Time) (*domain.PasswordReset, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var rec resetRecord
	err := r.col.FindOneAndUpdate(ctx,
		claimFilter(token, now),
		bson.M{"$set": bson.M{"claimed_at": now.UTC()}},
		opts,
	).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrResetTokenInvalid
		}
		return nil, fmt.Errorf("claim password reset: %w", err)
	}
	return rec.toDomain(), nil
}

// claimFilter matches an unused token that nobody holds or whose claim has
// lapsed.
func claimFilter(token string, now time.Time) bson.M {
	return bson.M{
		"token": token,
		"used":  false,
		"$or": bson.A{
			bson.M{"claimed_at": bson.M{"$exists": false}},
			bson.M{"claimed_at": bson.M{"$lte": now.UTC().Add(-domain.ResetClaimLease)}},
		},
	}
}

// Release clears the claim on a token that was not consumed.
func (r *ResetRepository) Release(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx,
		bson.M{"token": token, "used": false},
		bson.M{"$unset": bson.M{"claimed_at": ""}},
	)
	if err != nil {
		return fmt.Errorf("release password reset: %w", err)
	}
	return nil
}

// MarkUsed consumes token. A token already consumed yields
// domain.ErrResetTokenInvalid.
func (r *ResetRepository) MarkUsed(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"token": token, "used": false},
		bson.M{"$set": bson.M{"used": true, "used_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("mark password reset used: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrResetTokenInvalid
	}
	return nil
}

// EnsureIndexes creates the unique token index. Records are kept for audit,
// so the collection carries no TTL index.
func (r *ResetRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, resetIndexes())
	return err
}

func resetIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
}
