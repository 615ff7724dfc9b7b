package repository

import (
	"EduPortal/entity"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (m *MongoDB) memberships(ctx context.Context, userID string, portal entity.Portal) ([]entity.MembershipRecord, error) {
	collection, err := m.collection(ctx, membershipsCollection)
	if err != nil {
		return nil, err
	}

	filter := bson.D{{"user_id", userID}, {"portal", portal}}
	opts := options.Find().SetSort(bson.D{{"created_at", 1}, {"_id", 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find memberships: %w", err)
	}
	defer cursor.Close(ctx)

	var records []entity.MembershipRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("mongodb decode memberships: %w", err)
	}
	return records, nil
}

func (m *MongoDB) AdminMemberships(ctx context.Context, userID string) ([]entity.MembershipRecord, error) {
	return m.memberships(ctx, userID, entity.PortalAdmin)
}

func (m *MongoDB) FranchisorMemberships(ctx context.Context, userID string) ([]entity.MembershipRecord, error) {
	return m.memberships(ctx, userID, entity.PortalFranchisor)
}

func (m *MongoDB) SchoolMemberships(ctx context.Context, userID string) ([]entity.MembershipRecord, error) {
	return m.memberships(ctx, userID, entity.PortalSchool)
}

// UpsertMembership stores a membership record by id.
func (m *MongoDB) UpsertMembership(ctx context.Context, rec entity.MembershipRecord) error {
	collection, err := m.collection(ctx, membershipsCollection)
	if err != nil {
		return err
	}
	_, err = collection.ReplaceOne(ctx, bson.D{{"_id", rec.ID}}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongodb upsert membership: %w", err)
	}
	return nil
}
