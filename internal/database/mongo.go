package repository

import (
	"EduPortal/entity"
	"EduPortal/internal/config"
	"EduPortal/internal/lib/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	membershipsCollection   = "memberships"
	franchisorsCollection   = "franchisors"
	schoolsCollection       = "schools"
	settingsCollection      = "system_settings"
	auditCollection         = "audit_events"
	sessionsCollection      = "sessions"
	loginAttemptsCollection = "login_attempts"
)

type MongoDB struct {
	clientOptions *options.ClientOptions
	database      string
	log           *slog.Logger

	mu     sync.Mutex
	client *mongo.Client
}

func NewMongoClient(conf *config.Config, logger *slog.Logger) (*MongoDB, error) {
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().
		ApplyURI(connectionUri).
		SetConnectTimeout(10 * time.Second)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
		log:           logger.With(sl.Module("mongodb")),
	}
	return client, nil
}

// connect returns the shared client, dialing on first use.
func (m *MongoDB) connect(ctx context.Context) (*mongo.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		return m.client, nil
	}
	connection, err := mongo.Connect(ctx, m.clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect error: %w", err)
	}
	m.client = connection
	return connection, nil
}

func (m *MongoDB) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	return connection.Database(m.database).Collection(name), nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil
	}
	err := m.client.Disconnect(ctx)
	m.client = nil
	return err
}

// findError maps a missing document onto entity.ErrNotFound.
func (m *MongoDB) findError(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", what, entity.ErrNotFound)
	}
	return fmt.Errorf("mongodb find %s: %w", what, err)
}

// EnsureIndexes creates the indexes the queries rely on. Sessions expire
// through a TTL index on expires_at.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		membershipsCollection: {
			{Keys: bson.D{{"user_id", 1}, {"portal", 1}, {"created_at", 1}}},
		},
		schoolsCollection: {
			{Keys: bson.D{{"franchisor_id", 1}}},
		},
		sessionsCollection: {
			{Keys: bson.D{{"expires_at", 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
		auditCollection: {
			{Keys: bson.D{{"created_at", -1}}},
		},
	}
	for name, models := range indexes {
		collection, err := m.collection(ctx, name)
		if err != nil {
			return err
		}
		if _, err = collection.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	m.log.Debug("indexes ensured")
	return nil
}
