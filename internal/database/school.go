package repository

import (
	"EduPortal/entity"
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (m *MongoDB) GetSchool(ctx context.Context, id string) (*entity.School, error) {
	collection, err := m.collection(ctx, schoolsCollection)
	if err != nil {
		return nil, err
	}

	var school entity.School
	err = collection.FindOne(ctx, bson.D{{"_id", id}}).Decode(&school)
	if err != nil {
		return nil, m.findError(err, "school "+id)
	}
	return &school, nil
}

func (m *MongoDB) GetFranchisor(ctx context.Context, id string) (*entity.Franchisor, error) {
	collection, err := m.collection(ctx, franchisorsCollection)
	if err != nil {
		return nil, err
	}

	var franchisor entity.Franchisor
	err = collection.FindOne(ctx, bson.D{{"_id", id}}).Decode(&franchisor)
	if err != nil {
		return nil, m.findError(err, "franchisor "+id)
	}
	return &franchisor, nil
}

// ListSchools returns the existing schools among ids, ordered by id.
func (m *MongoDB) ListSchools(ctx context.Context, ids []string) ([]entity.School, error) {
	if len(ids) == 0 {
		return []entity.School{}, nil
	}
	collection, err := m.collection(ctx, schoolsCollection)
	if err != nil {
		return nil, err
	}

	filter := bson.D{{"_id", bson.D{{"$in", ids}}}}
	opts := options.Find().
		SetSort(bson.D{{"_id", 1}}).
		SetProjection(bson.D{{"status_history", 0}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find schools: %w", err)
	}
	defer cursor.Close(ctx)

	schools := make([]entity.School, 0, len(ids))
	if err = cursor.All(ctx, &schools); err != nil {
		return nil, fmt.Errorf("mongodb decode schools: %w", err)
	}
	return schools, nil
}

func (m *MongoDB) schoolIDs(ctx context.Context, filter bson.D) ([]string, error) {
	collection, err := m.collection(ctx, schoolsCollection)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{"_id", 1}}).
		SetProjection(bson.D{{"_id", 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find school ids: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID string `bson:"_id"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("mongodb decode school ids: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (m *MongoDB) SchoolIDsByFranchisor(ctx context.Context, franchisorID string) ([]string, error) {
	return m.schoolIDs(ctx, bson.D{{"franchisor_id", franchisorID}})
}

func (m *MongoDB) AllSchoolIDs(ctx context.Context) ([]string, error) {
	return m.schoolIDs(ctx, bson.D{})
}

// UpsertSchool creates a school or updates its descriptive fields. The status
// is only written on insert; later changes go through ApplyTransition.
func (m *MongoDB) UpsertSchool(ctx context.Context, school *entity.School) error {
	collection, err := m.collection(ctx, schoolsCollection)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	update := bson.D{
		{"$set", bson.D{
			{"franchisor_id", school.FranchisorID},
			{"name", school.Name},
			{"updated_at", now},
		}},
		{"$setOnInsert", bson.D{
			{"status", school.Status},
			{"created_at", now},
			{"status_history", bson.A{}},
		}},
	}
	_, err = collection.UpdateOne(ctx, bson.D{{"_id", school.ID}}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongodb upsert school: %w", err)
	}
	return nil
}

func (m *MongoDB) UpsertFranchisor(ctx context.Context, franchisor *entity.Franchisor) error {
	collection, err := m.collection(ctx, franchisorsCollection)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	update := bson.D{
		{"$set", bson.D{
			{"name", franchisor.Name},
			{"updated_at", now},
		}},
		{"$setOnInsert", bson.D{
			{"status", franchisor.Status},
			{"created_at", now},
			{"status_history", bson.A{}},
		}},
	}
	_, err = collection.UpdateOne(ctx, bson.D{{"_id", franchisor.ID}}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongodb upsert franchisor: %w", err)
	}
	return nil
}
