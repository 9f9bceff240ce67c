package mongo

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/repository"
	"alcyxob/training-planner/internal/schema"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const profileCollectionName = schema.ProfilesTable

// mongoProfileRepository implements repository.ProfileRepository
type mongoProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoProfileRepository creates a new Profile repository backed by MongoDB.
func NewMongoProfileRepository(db *mongo.Database) repository.ProfileRepository {
	return &mongoProfileRepository{
		collection: collection(db, profileCollectionName),
	}
}

func liveProfileFilter(ownerID string) bson.M {
	return bson.M{"owner_id": ownerID, "deleted_at": nil}
}

// Create inserts a profile for an owner that has no live profile yet.
// The partial unique index on owner_id rejects a second live profile.
func (r *mongoProfileRepository) Create(ctx context.Context, in domain.ProfileInsert) (*domain.Profile, error) {
	now := time.Now().UTC()
	profile := &domain.Profile{
		ID:                 uuid.NewString(),
		OwnerID:            in.OwnerID,
		Age:                in.Age,
		HeightCM:           in.HeightCM,
		WeightKG:           in.WeightKG,
		Sex:                in.Sex,
		ExperienceLevel:    in.ExperienceLevel,
		PrimaryGoal:        in.PrimaryGoal,
		SessionLength:      in.SessionLength,
		AvailableEquipment: in.AvailableEquipment,
		Limitations:        in.Limitations,
		GenerationParams:   in.GenerationParams,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := schema.Profiles.ValidateInsert(in, map[string]any{"id": profile.ID, "created_at": now, "updated_at": now}); err != nil {
		return nil, err
	}

	if _, err := r.collection.InsertOne(ctx, profile); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return profile, nil
}

// GetByOwnerID retrieves the owner's live profile.
func (r *mongoProfileRepository) GetByOwnerID(ctx context.Context, ownerID string) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.collection.FindOne(ctx, liveProfileFilter(ownerID)).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// Update applies a partial update to the owner's live profile.
func (r *mongoProfileRepository) Update(ctx context.Context, ownerID string, upd domain.ProfileUpdate) (*domain.Profile, error) {
	cols, err := schema.Profiles.ValidateUpdate(upd)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return r.GetByOwnerID(ctx, ownerID)
	}
	cols["updated_at"] = time.Now().UTC()

	var profile domain.Profile
	err = r.collection.FindOneAndUpdate(ctx,
		liveProfileFilter(ownerID),
		bson.M{"$set": cols},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// SoftDelete marks the owner's live profile as deleted.
func (r *mongoProfileRepository) SoftDelete(ctx context.Context, ownerID string) error {
	now := time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx,
		liveProfileFilter(ownerID),
		bson.M{"$set": bson.M{"deleted_at": now, "updated_at": now}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureProfileIndexes creates necessary indexes for the profiles collection.
func EnsureProfileIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateMany(ctx, profileIndexModels())
	return err
}

func profileIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "deleted_at", Value: 1}},
			Options: options.Index(),
		},
		{
			// deleted_at is stored as an explicit null on live profiles
			Keys: bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("profile_owner_live_unique").
				SetPartialFilterExpression(bson.M{"deleted_at": bson.M{"$type": "null"}}),
		},
	}
}
