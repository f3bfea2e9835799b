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

type EventTypeRepository interface {
	FindByID(ctx context.Context, id string) (*model.EventType, error)
}

type mongoEventTypeRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoEventTypeRepository(cfg *config.Config) EventTypeRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEventTypeRepository{
		cfg:        cfg,
		collection: db.Collection(EventTypesCollection),
	}
}

func (r *mongoEventTypeRepository) FindByID(ctx context.Context, id string) (*model.EventType, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", availerrors.ErrInvalidID, id)
	}

	var et model.EventType
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&et)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", availerrors.ErrEventTypeNotFound, id)
		}
		return nil, fmt.Errorf("failed to find event type: %w", err)
	}

	return &et, nil
}
