package mongo

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const planGenerationCollectionName = "plan_generations"

// mongoPlanGenerationRepository implements repository.PlanGenerationRepository
type mongoPlanGenerationRepository struct {
	collection *mongo.Collection
}

func NewMongoPlanGenerationRepository(db *mongo.Database) repository.PlanGenerationRepository {
	return &mongoPlanGenerationRepository{
		collection: collection(db, planGenerationCollectionName),
	}
}

func pendingFilter(ownerID string) bson.M {
	return bson.M{"owner_id": ownerID, "status": domain.GenerationPending}
}

// replaceAttempts bounds the delete-then-insert retries when concurrent
// generations for the same owner collide on the pending index.
const replaceAttempts = 3

// ReplacePending drops the owner's current pending draft and stores gen in its place.
// The partial unique index on owner_id keeps at most one pending draft; a request
// that loses the race deletes the winner's draft and retries, so the last one wins.
func (r *mongoPlanGenerationRepository) ReplacePending(ctx context.Context, gen *domain.PlanGeneration) error {
	if gen.ID == "" || gen.OwnerID == "" {
		return errors.New("plan generation requires id and owner id")
	}

	now := time.Now().UTC()
	gen.Status = domain.GenerationPending
	gen.CreatedAt = now
	gen.UpdatedAt = now

	var err error
	for attempt := 0; attempt < replaceAttempts; attempt++ {
		if _, err = r.collection.DeleteMany(ctx, pendingFilter(gen.OwnerID)); err != nil {
			return err
		}
		_, err = r.collection.InsertOne(ctx, gen)
		if !mongo.IsDuplicateKeyError(err) {
			return err
		}
	}
	return repository.ErrConflict
}

// GetPending retrieves the owner's pending draft.
func (r *mongoPlanGenerationRepository) GetPending(ctx context.Context, ownerID string) (*domain.PlanGeneration, error) {
	var gen domain.PlanGeneration
	err := r.collection.FindOne(ctx, pendingFilter(ownerID)).Decode(&gen)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &gen, nil
}

// Resolve moves the pending draft to its final status.
func (r *mongoPlanGenerationRepository) Resolve(ctx context.Context, ownerID string, status domain.GenerationStatus, reason *string) (*domain.PlanGeneration, error) {
	set := bson.M{"status": status, "updated_at": time.Now().UTC()}
	if reason != nil {
		set["reject_reason"] = *reason
	}

	var gen domain.PlanGeneration
	err := r.collection.FindOneAndUpdate(ctx,
		pendingFilter(ownerID),
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&gen)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &gen, nil
}

// EnsurePlanGenerationIndexes creates necessary indexes for drafts.
func EnsurePlanGenerationIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateMany(ctx, planGenerationIndexModels())
	return err
}

func planGenerationIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("plan_generation_owner_pending_unique").
				SetPartialFilterExpression(bson.M{"status": domain.GenerationPending}),
		},
	}
}
