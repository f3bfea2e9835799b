package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hostavail/pkg/config"
	"hostavail/pkg/model"
)

type BookingRepository interface {
	// FindBlockingByHost returns bookings hosted by hostID that overlap [from, to).
	FindBlockingByHost(ctx context.Context, hostID string, from, to time.Time) ([]*model.Booking, error)
	// FindBlockingByEventType returns bookings of the event type that overlap [from, to).
	FindBlockingByEventType(ctx context.Context, eventTypeID string, from, to time.Time) ([]*model.Booking, error)
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(BookingsCollection),
	}
}

func blockingOverlap(from, to time.Time) bson.M {
	return bson.M{
		"status":     bson.M{"$nin": []string{model.BookingStatusCancelled, model.BookingStatusRejected}},
		"start_time": bson.M{"$lt": to},
		"end_time":   bson.M{"$gt": from},
	}
}

func (r *mongoBookingRepository) FindBlockingByHost(ctx context.Context, hostID string, from, to time.Time) ([]*model.Booking, error) {
	filter := blockingOverlap(from, to)
	filter["host_ids"] = hostID
	return r.find(ctx, filter)
}

func (r *mongoBookingRepository) FindBlockingByEventType(ctx context.Context, eventTypeID string, from, to time.Time) ([]*model.Booking, error) {
	filter := blockingOverlap(from, to)
	filter["event_type_id"] = eventTypeID
	return r.find(ctx, filter)
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}
