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

const collectionUsers = "users"

// emailCollation compares emails case-insensitively. Legacy documents keep the
// address as it was submitted, so lookups and the unique index both use it.
var emailCollation = &options.Collation{Locale: "en", Strength: 2}

// UserRepository implements ports.UserRepository using MongoDB.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

var _ ports.UserRepository = (*UserRepository)(nil)

// userDoc is the write shape. Field names match the existing collection.
type userDoc struct {
	ID           string    `bson:"id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password,omitempty"`
	Name         string    `bson:"name,omitempty"`
	Picture      string    `bson:"picture,omitempty"`
	AuthProvider string    `bson:"auth_provider"`
	FederatedID  string    `bson:"google_id,omitempty"`
	IsPro        bool      `bson:"is_pro"`
	LicenseKey   string    `bson:"license_key,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
}

// userRecord is the read shape; created_at may be a legacy string.
type userRecord struct {
	ID           string        `bson:"id"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password"`
	Name         string        `bson:"name"`
	Picture      string        `bson:"picture"`
	AuthProvider string        `bson:"auth_provider"`
	FederatedID  string        `bson:"google_id"`
	IsPro        bool          `bson:"is_pro"`
	LicenseKey   string        `bson:"license_key"`
	CreatedAt    bson.RawValue `bson:"created_at"`
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Name:         r.Name,
		Picture:      r.Picture,
		AuthProvider: parseProvider(r.AuthProvider),
		FederatedID:  r.FederatedID,
		IsPro:        r.IsPro,
		LicenseKey:   r.LicenseKey,
		CreatedAt:    decodeTime(r.CreatedAt),
	}
}

// Create inserts a new user. The unique email index turns a concurrent
// duplicate into domain.ErrUserExists.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := userDoc{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Name:         user.Name,
		Picture:      user.Picture,
		AuthProvider: string(user.AuthProvider),
		FederatedID:  user.FederatedID,
		IsPro:        user.IsPro,
		LicenseKey:   user.LicenseKey,
		CreatedAt:    user.CreatedAt.UTC(),
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, options.FindOne().SetCollation(emailCollation))
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rec userRecord
	if err := r.col.FindOne(ctx, filter, opts...).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	return r.updateByID(ctx, id, bson.M{"password": passwordHash})
}

func (r *UserRepository) LinkFederated(ctx context.Context, id string, profile ports.FederatedProfile) error {
	return r.updateByID(ctx, id, bson.M{
		"name":          profile.Name,
		"picture":       profile.Picture,
		"google_id":     profile.FederatedID,
		"auth_provider": string(domain.ProviderFederated),
	})
}

func (r *UserRepository) GrantPro(ctx context.Context, id, licenseKey string) error {
	return r.updateByID(ctx, id, bson.M{
		"is_pro":      true,
		"license_key": licenseKey,
	})
}

func (r *UserRepository) updateByID(ctx context.Context, id string, set bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email and id indexes. Creation fails while
// the collection holds addresses differing only in case.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, userIndexes())
	return err
}

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_ci").SetUnique(true).SetCollation(emailCollation),
		},
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
}
