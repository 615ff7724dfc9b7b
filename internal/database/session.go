package repository

import (
	"EduPortal/entity"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (m *MongoDB) CreateSession(ctx context.Context, session *entity.Session) error {
	collection, err := m.collection(ctx, sessionsCollection)
	if err != nil {
		return err
	}
	if _, err = collection.InsertOne(ctx, session); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("session token: %w", entity.ErrConflict)
		}
		return fmt.Errorf("mongodb insert session: %w", err)
	}
	return nil
}

func (m *MongoDB) GetSession(ctx context.Context, token string) (*entity.Session, error) {
	collection, err := m.collection(ctx, sessionsCollection)
	if err != nil {
		return nil, err
	}

	var session entity.Session
	if err = collection.FindOne(ctx, bson.D{{"_id", token}}).Decode(&session); err != nil {
		return nil, m.findError(err, "session")
	}
	return &session, nil
}

func (m *MongoDB) UpdateSessionSelection(ctx context.Context, token string, target entity.RedirectTarget) error {
	collection, err := m.collection(ctx, sessionsCollection)
	if err != nil {
		return err
	}

	update := bson.D{{"$set", bson.D{
		{"portal", target.Portal},
		{"franchisor_id", target.FranchisorID},
		{"school_id", target.SchoolID},
	}}}
	result, err := collection.UpdateOne(ctx, bson.D{{"_id", token}}, update)
	if err != nil {
		return fmt.Errorf("mongodb update session: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("session: %w", entity.ErrNotFound)
	}
	return nil
}

func (m *MongoDB) DeleteSession(ctx context.Context, token string) error {
	collection, err := m.collection(ctx, sessionsCollection)
	if err != nil {
		return err
	}
	if _, err = collection.DeleteOne(ctx, bson.D{{"_id", token}}); err != nil {
		return fmt.Errorf("mongodb delete session: %w", err)
	}
	return nil
}

func (m *MongoDB) GetLoginAttempts(ctx context.Context, email string) (*entity.LoginAttempts, error) {
	collection, err := m.collection(ctx, loginAttemptsCollection)
	if err != nil {
		return nil, err
	}

	var attempts entity.LoginAttempts
	err = collection.FindOne(ctx, bson.D{{"_id", email}}).Decode(&attempts)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb find login attempts: %w", err)
	}
	return &attempts, nil
}

// RecordLoginFailure increments the counter atomically and, when it reaches
// max, locks the email and restarts the count.
func (m *MongoDB) RecordLoginFailure(ctx context.Context, email string, max int, lockFor time.Duration, now time.Time) (*entity.LoginAttempts, error) {
	collection, err := m.collection(ctx, loginAttemptsCollection)
	if err != nil {
		return nil, err
	}

	var attempts entity.LoginAttempts
	err = collection.FindOneAndUpdate(ctx,
		bson.D{{"_id", email}},
		bson.D{{"$inc", bson.D{{"failures", 1}}}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&attempts)
	if err != nil {
		return nil, fmt.Errorf("mongodb count login failure: %w", err)
	}
	if attempts.Failures < max {
		return &attempts, nil
	}

	attempts.Failures = 0
	attempts.LockedUntil = now.Add(lockFor)
	_, err = collection.UpdateOne(ctx,
		bson.D{{"_id", email}},
		bson.D{{"$set", bson.D{{"failures", 0}, {"locked_until", attempts.LockedUntil}}}},
	)
	if err != nil {
		return nil, fmt.Errorf("mongodb lock account: %w", err)
	}
	return &attempts, nil
}

func (m *MongoDB) ResetLoginAttempts(ctx context.Context, email string) error {
	collection, err := m.collection(ctx, loginAttemptsCollection)
	if err != nil {
		return err
	}
	if _, err = collection.DeleteOne(ctx, bson.D{{"_id", email}}); err != nil {
		return fmt.Errorf("mongodb reset login attempts: %w", err)
	}
	return nil
}
