// internal/repository/mongo/plan_repo.go
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

const (
	planCollectionName = schema.PlansTable
	// One document per owner: {_id: owner_id, active: <live plan count>}
	planCounterCollectionName = "plan_counters"
)

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

// NewMongoPlanRepository creates a new Plan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: collection(db, planCollectionName),
		counters:   db.Collection(planCounterCollectionName),
	}
}

// livePlanFilter matches the owner's plan that has not been soft-deleted.
// A nil deleted_at matches both null and missing fields.
func livePlanFilter(ownerID, id string) bson.M {
	return bson.M{"_id": id, "owner_id": ownerID, "deleted_at": nil}
}

// Create reserves a slot in the owner's plan counter and then inserts the plan.
// The conditional $inc on the counter is what makes the limit hold under concurrent creates.
func (r *mongoPlanRepository) Create(ctx context.Context, in domain.PlanInsert, maxActive int) (*domain.Plan, error) {
	now := time.Now().UTC()
	plan := &domain.Plan{
		ID:           uuid.NewString(),
		OwnerID:      in.OwnerID,
		Title:        in.Title,
		TrainingDays: in.TrainingDays,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := schema.Plans.ValidateInsert(in, map[string]any{"id": plan.ID, "created_at": now, "updated_at": now}); err != nil {
		return nil, err
	}

	if err := r.reserveSlot(ctx, in.OwnerID, maxActive); err != nil {
		return nil, err
	}
	if _, err := r.collection.InsertOne(ctx, plan); err != nil {
		if relErr := r.releaseSlot(ctx, in.OwnerID); relErr != nil {
			return nil, errors.Join(err, relErr)
		}
		return nil, err
	}
	return plan, nil
}

// reserveSlot increments the owner's counter if it is below maxActive.
func (r *mongoPlanRepository) reserveSlot(ctx context.Context, ownerID string, maxActive int) error {
	err := r.incrementBelow(ctx, ownerID, maxActive)
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	// Either the owner is at the limit or has no counter yet
	if err := r.seedCounter(ctx, ownerID); err != nil {
		return err
	}
	err = r.incrementBelow(ctx, ownerID, maxActive)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrLimitReached
	}
	return err
}

func (r *mongoPlanRepository) incrementBelow(ctx context.Context, ownerID string, maxActive int) error {
	return r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": ownerID, "active": bson.M{"$lt": maxActive}},
		bson.M{"$inc": bson.M{"active": 1}},
	).Err()
}

// seedCounter creates the owner's counter from the live plans already stored.
// An existing counter is left untouched.
func (r *mongoPlanRepository) seedCounter(ctx context.Context, ownerID string) error {
	live, err := r.collection.CountDocuments(ctx, bson.M{"owner_id": ownerID, "deleted_at": nil})
	if err != nil {
		return err
	}
	_, err = r.counters.UpdateOne(ctx,
		bson.M{"_id": ownerID},
		bson.M{"$setOnInsert": bson.M{"active": live}},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return nil // another request seeded it first
	}
	return err
}

func (r *mongoPlanRepository) releaseSlot(ctx context.Context, ownerID string) error {
	_, err := r.counters.UpdateOne(ctx,
		bson.M{"_id": ownerID, "active": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"active": -1}},
	)
	return err
}

// GetByID retrieves a single live plan of the owner.
func (r *mongoPlanRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Plan, error) {
	var plan domain.Plan
	err := r.collection.FindOne(ctx, livePlanFilter(ownerID, id)).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// List retrieves one page of the owner's live plans, newest first by the sort column.
func (r *mongoPlanRepository) List(ctx context.Context, ownerID string, opts domain.PlanListOptions) (repository.Page[domain.Plan], error) {
	filter := bson.M{"owner_id": ownerID, "deleted_at": nil}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return repository.Page[domain.Plan]{}, err
	}

	sortField := string(opts.Sort)
	if !opts.Sort.Valid() {
		sortField = string(domain.PlanSortCreatedAt)
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: sortField, Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(opts.Offset)).
		SetLimit(int64(opts.Limit))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return repository.Page[domain.Plan]{}, err
	}
	defer cursor.Close(ctx)

	plans := []domain.Plan{}
	if err = cursor.All(ctx, &plans); err != nil {
		return repository.Page[domain.Plan]{}, err
	}
	if err = cursor.Err(); err != nil {
		return repository.Page[domain.Plan]{}, err
	}
	return repository.Page[domain.Plan]{Items: plans, Total: total}, nil
}

// Update applies a partial update to a live plan and returns the result.
func (r *mongoPlanRepository) Update(ctx context.Context, ownerID, id string, upd domain.PlanUpdate) (*domain.Plan, error) {
	cols, err := schema.Plans.ValidateUpdate(upd)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return r.GetByID(ctx, ownerID, id)
	}
	cols["updated_at"] = time.Now().UTC()

	var plan domain.Plan
	err = r.collection.FindOneAndUpdate(ctx,
		livePlanFilter(ownerID, id),
		bson.M{"$set": cols},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// SoftDelete marks a live plan as deleted. The document is kept.
func (r *mongoPlanRepository) SoftDelete(ctx context.Context, ownerID, id string) error {
	now := time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx,
		livePlanFilter(ownerID, id),
		bson.M{"$set": bson.M{"deleted_at": now, "updated_at": now}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return r.releaseSlot(ctx, ownerID)
}

// EnsurePlanIndexes creates necessary indexes. Call during startup.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Listing pattern: an owner's live plans sorted by creation or update time
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "deleted_at", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "deleted_at", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
