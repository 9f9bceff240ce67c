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

const exerciseCollectionName = schema.ExercisesTable

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: collection(db, exerciseCollectionName),
	}
}

// Create inserts a new exercise into the library.
func (r *mongoExerciseRepository) Create(ctx context.Context, in domain.ExerciseInsert) (*domain.Exercise, error) {
	now := time.Now().UTC()
	exercise := &domain.Exercise{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := schema.Exercises.ValidateInsert(in, map[string]any{"id": exercise.ID, "created_at": now, "updated_at": now}); err != nil {
		return nil, err
	}

	if _, err := r.collection.InsertOne(ctx, exercise); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrConflict // slug already taken
		}
		return nil, err
	}
	return exercise, nil
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetBySlug retrieves an exercise by its slug.
func (r *mongoExerciseRepository) GetBySlug(ctx context.Context, slug string) (*domain.Exercise, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *mongoExerciseRepository) findOne(ctx context.Context, filter bson.M) (*domain.Exercise, error) {
	var exercise domain.Exercise
	err := r.collection.FindOne(ctx, filter).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// GetByIDs retrieves every exercise whose ID is in ids.
func (r *mongoExerciseRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Exercise, error) {
	if len(ids) == 0 {
		return []domain.Exercise{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

// ListAll retrieves the whole library sorted by name.
func (r *mongoExerciseRepository) ListAll(ctx context.Context) ([]domain.Exercise, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}))
}

// List retrieves one page of the library sorted by name.
func (r *mongoExerciseRepository) List(ctx context.Context, limit, offset int) (repository.Page[domain.Exercise], error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return repository.Page[domain.Exercise]{}, err
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	items, err := r.find(ctx, bson.M{}, findOptions)
	if err != nil {
		return repository.Page[domain.Exercise]{}, err
	}
	return repository.Page[domain.Exercise]{Items: items, Total: total}, nil
}

func (r *mongoExerciseRepository) find(ctx context.Context, filter bson.M, findOptions *options.FindOptions) ([]domain.Exercise, error) {
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	exercises := []domain.Exercise{}
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return exercises, nil
}

// Update applies a partial update and returns the updated exercise.
func (r *mongoExerciseRepository) Update(ctx context.Context, id string, upd domain.ExerciseUpdate) (*domain.Exercise, error) {
	cols, err := schema.Exercises.ValidateUpdate(upd)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return r.GetByID(ctx, id)
	}
	cols["updated_at"] = time.Now().UTC()

	var exercise domain.Exercise
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": cols},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return &exercise, nil
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateMany(ctx, exerciseIndexModels())
	return err
}

func exerciseIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("exercise_slug_unique"),
		},
		{
			// Library listings are ordered by name
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index(),
		},
	}
}
