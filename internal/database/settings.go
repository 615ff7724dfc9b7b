package repository

import (
	"EduPortal/entity"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const settingsID = "global"

func (m *MongoDB) GetSettings(ctx context.Context) (*entity.SettingsRecord, error) {
	collection, err := m.collection(ctx, settingsCollection)
	if err != nil {
		return nil, err
	}

	var rec entity.SettingsRecord
	if err = collection.FindOne(ctx, bson.D{{"_id", settingsID}}).Decode(&rec); err != nil {
		return nil, m.findError(err, "system settings")
	}
	return &rec, nil
}

// SwapSettings is a compare-and-swap on the version field. Version 0 means no
// document yet; the upsert then races on the _id unique index.
func (m *MongoDB) SwapSettings(ctx context.Context, expected int64, next entity.SettingsRecord) (*entity.SettingsRecord, error) {
	collection, err := m.collection(ctx, settingsCollection)
	if err != nil {
		return nil, err
	}

	filter := bson.D{{"_id", settingsID}, {"version", expected}}
	update := bson.D{
		{"$set", bson.D{
			{"settings", next.Settings},
			{"updated_at", next.UpdatedAt},
			{"updated_by", next.UpdatedBy},
		}},
		{"$inc", bson.D{{"version", int64(1)}}},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetUpsert(expected == 0)

	var rec entity.SettingsRecord
	err = collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rec)
	switch {
	case err == nil:
		return &rec, nil
	case errors.Is(err, mongo.ErrNoDocuments), mongo.IsDuplicateKeyError(err):
		return nil, fmt.Errorf("settings version moved past %d: %w", expected, entity.ErrConflict)
	}
	return nil, fmt.Errorf("mongodb swap settings: %w", err)
}
