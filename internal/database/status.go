package repository

import (
	"EduPortal/entity"
	"context"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Status history lives inside the entity document, so the status change and
// its history entry are written by a single-document update.

func kindCollection(kind entity.EntityKind) (string, error) {
	switch kind {
	case entity.KindFranchisor:
		return franchisorsCollection, nil
	case entity.KindSchool:
		return schoolsCollection, nil
	}
	return "", fmt.Errorf("%w: unknown entity kind %q", entity.ErrValidation, kind)
}

func (m *MongoDB) EntityStatus(ctx context.Context, kind entity.EntityKind, id string) (entity.Status, error) {
	name, err := kindCollection(kind)
	if err != nil {
		return "", err
	}
	collection, err := m.collection(ctx, name)
	if err != nil {
		return "", err
	}

	var doc struct {
		Status entity.Status `bson:"status"`
	}
	opts := options.FindOne().SetProjection(bson.D{{"status", 1}})
	if err = collection.FindOne(ctx, bson.D{{"_id", id}}, opts).Decode(&doc); err != nil {
		return "", m.findError(err, fmt.Sprintf("%s %s", kind, id))
	}
	return doc.Status, nil
}

// ApplyTransition matches on the expected current status so a concurrent
// change makes the update miss instead of overwriting it.
func (m *MongoDB) ApplyTransition(ctx context.Context, entry entity.StatusHistoryEntry) error {
	name, err := kindCollection(entry.EntityKind)
	if err != nil {
		return err
	}
	collection, err := m.collection(ctx, name)
	if err != nil {
		return err
	}

	filter := bson.D{{"_id", entry.EntityID}, {"status", entry.FromStatus}}
	update := bson.D{
		{"$set", bson.D{
			{"status", entry.ToStatus},
			{"updated_at", entry.ChangedAt},
		}},
		{"$push", bson.D{{"status_history", entry}}},
	}
	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb apply transition: %w", err)
	}
	if result.MatchedCount == 1 {
		return nil
	}

	// Missed: either the entity is gone or its status moved on.
	if _, err = m.EntityStatus(ctx, entry.EntityKind, entry.EntityID); err != nil {
		return err
	}
	return fmt.Errorf("%s %s is no longer %s: %w", entry.EntityKind, entry.EntityID, entry.FromStatus, entity.ErrConflict)
}

// StatusHistory pages through the embedded history newest first.
func (m *MongoDB) StatusHistory(ctx context.Context, kind entity.EntityKind, id string, offset, limit int) ([]entity.StatusHistoryEntry, int, error) {
	if offset < 0 {
		return nil, 0, fmt.Errorf("%w: offset %d", entity.ErrValidation, offset)
	}
	// $slice takes a 32-bit position; no embedded history gets that long.
	offset = min(offset, math.MaxInt32)
	name, err := kindCollection(kind)
	if err != nil {
		return nil, 0, err
	}
	collection, err := m.collection(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	if limit < 1 {
		limit = 1
	}

	history := bson.D{{"$ifNull", bson.A{"$status_history", bson.A{}}}}
	pipeline := mongo.Pipeline{
		{{"$match", bson.D{{"_id", id}}}},
		{{"$project", bson.D{
			{"total", bson.D{{"$size", history}}},
			{"items", bson.D{{"$slice", bson.A{
				bson.D{{"$reverseArray", history}},
				offset,
				limit,
			}}}},
		}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("mongodb aggregate history: %w", err)
	}
	defer cursor.Close(ctx)

	var page []struct {
		Total int                         `bson:"total"`
		Items []entity.StatusHistoryEntry `bson:"items"`
	}
	if err = cursor.All(ctx, &page); err != nil {
		return nil, 0, fmt.Errorf("mongodb decode history: %w", err)
	}
	if len(page) == 0 {
		return nil, 0, fmt.Errorf("%s %s: %w", kind, id, entity.ErrNotFound)
	}
	return page[0].Items, page[0].Total, nil
}
