package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"hostavail/pkg/config"
	"hostavail/pkg/model"
)

type OutOfOfficeRepository interface {
	FindByUser(ctx context.Context, userID string, from, to time.Time) ([]*model.OutOfOffice, error)
}

type mongoOutOfOfficeRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoOutOfOfficeRepository(cfg *config.Config) OutOfOfficeRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoOutOfOfficeRepository{
		cfg:        cfg,
		collection: db.Collection(OutOfOfficeCollection),
	}
}

func (r *mongoOutOfOfficeRepository) FindByUser(ctx context.Context, userID string, from, to time.Time) ([]*model.OutOfOffice, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"user_id":    userID,
		"start_time": bson.M{"$lt": to},
		"end_time":   bson.M{"$gt": from},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query out of office entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*model.OutOfOffice
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode out of office entries: %w", err)
	}
	return entries, nil
}
