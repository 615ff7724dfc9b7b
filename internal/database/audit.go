package repository

import (
	"EduPortal/entity"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (m *MongoDB) AppendAudit(ctx context.Context, ev entity.AuditEvent) error {
	collection, err := m.collection(ctx, auditCollection)
	if err != nil {
		return err
	}
	if _, err = collection.InsertOne(ctx, ev); err != nil {
		return fmt.Errorf("mongodb insert audit event: %w", err)
	}
	return nil
}

// RecentAudit returns up to limit events, newest first.
func (m *MongoDB) RecentAudit(ctx context.Context, limit int) ([]entity.AuditEvent, error) {
	collection, err := m.collection(ctx, auditCollection)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{"created_at", -1}}).
		SetLimit(int64(limit))
	cursor, err := collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find audit events: %w", err)
	}
	defer cursor.Close(ctx)

	events := make([]entity.AuditEvent, 0, limit)
	if err = cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("mongodb decode audit events: %w", err)
	}
	return events, nil
}
