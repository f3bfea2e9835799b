package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	availerrors "hostavail/internal/availability/errors"
	"hostavail/pkg/config"
	"hostavail/pkg/model"
)

type ScheduleRepository interface {
	FindByID(ctx context.Context, id string) (*model.Schedule, error)
	// FindDefaultByUser returns the user's default schedule, or nil when the user has none.
	FindDefaultByUser(ctx context.Context, userID string) (*model.Schedule, error)
}

type mongoScheduleRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoScheduleRepository(cfg *config.Config) ScheduleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoScheduleRepository{
		cfg:        cfg,
		collection: db.Collection(SchedulesCollection),
	}
}

func (r *mongoScheduleRepository) FindByID(ctx context.Context, id string) (*model.Schedule, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", availerrors.ErrInvalidID, id)
	}

	var sc model.Schedule
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&sc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", availerrors.ErrScheduleNotFound, id)
		}
		return nil, fmt.Errorf("failed to find schedule: %w", err)
	}

	return &sc, nil
}

func (r *mongoScheduleRepository) FindDefaultByUser(ctx context.Context, userID string) (*model.Schedule, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var sc model.Schedule
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "is_default": true}).Decode(&sc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find default schedule: %w", err)
	}

	return &sc, nil
}
