package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "auth_events"

type MongoRepo struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{
		collection: db.Collection(collectionName),
		now:        time.Now,
	}
}

func (r *MongoRepo) Record(ctx context.Context, event *Event) error {
	if event.Created.IsZero() {
		event.Created = r.now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return errors.New("failed to convert inserted ID to ObjectID")
	}
	event.MongoID = oid
	event.ID = oid.Hex()

	return nil
}

// Recent returns the newest events first. Documents that fail to decode are
// skipped.
func (r *MongoRepo) Recent(ctx context.Context, limit int64) ([]*Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created", Value: -1}}).SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find audit events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []*Event{}
	for cursor.Next(ctx) {
		var event Event
		if err := cursor.Decode(&event); err != nil {
			continue
		}
		event.ID = event.MongoID.Hex()
		events = append(events, &event)
	}

	return events, cursor.Err()
}
