package settings

import (
	"EduPortal/entity"
	"EduPortal/internal/lib/sl"
	"EduPortal/internal/lib/validate"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

type Repository interface {
	// GetSettings fails with entity.ErrNotFound before the first write.
	GetSettings(ctx context.Context) (*entity.SettingsRecord, error)
	// SwapSettings stores next as version expected+1 if the stored version
	// is still expected, and fails with entity.ErrConflict otherwise.
	SwapSettings(ctx context.Context, expected int64, next entity.SettingsRecord) (*entity.SettingsRecord, error)
}

type AuditEmitter interface {
	Emit(ctx context.Context, ev entity.AuditEvent)
}

// Guard serialises writes to the shared settings document with optimistic
// concurrency: every write names the version it was based on.
type Guard struct {
	repo  Repository
	audit AuditEmitter
	now   func() time.Time
	log   *slog.Logger
}

func NewGuard(repo Repository, audit AuditEmitter, log *slog.Logger) *Guard {
	return &Guard{
		repo:  repo,
		audit: audit,
		now:   func() time.Time { return time.Now().UTC() },
		log:   log.With(sl.Module("settings")),
	}
}

// Read returns the current settings. Before the first write it returns the
// defaults at version 0.
func (g *Guard) Read(ctx context.Context) (*entity.SettingsRecord, error) {
	rec, err := g.repo.GetSettings(ctx)
	if errors.Is(err, entity.ErrNotFound) {
		return &entity.SettingsRecord{Settings: entity.DefaultSettings()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return rec, nil
}

// Write applies patch on top of the version the caller read. A write based on
// any other version fails with entity.ErrConflict and changes nothing.
func (g *Guard) Write(ctx context.Context, patch map[string]any, expectedVersion int64, actorID string) (*entity.SettingsRecord, error) {
	if actorID == "" {
		return nil, fmt.Errorf("%w: actor is required", entity.ErrValidation)
	}
	if expectedVersion < 0 {
		return nil, fmt.Errorf("%w: version must not be negative", entity.ErrValidation)
	}

	current, err := g.Read(ctx)
	if err != nil {
		return nil, err
	}
	if current.Version != expectedVersion {
		return nil, fmt.Errorf("settings version is %d, expected %d: %w", current.Version, expectedVersion, entity.ErrConflict)
	}

	next, applied, err := applyPatch(current.Settings, patch)
	if err != nil {
		return nil, err
	}
	if err = validate.Struct(next); err != nil {
		return nil, err
	}

	rec, err := g.repo.SwapSettings(ctx, expectedVersion, entity.SettingsRecord{
		Settings:  next,
		UpdatedAt: g.now(),
		UpdatedBy: actorID,
	})
	if err != nil {
		if errors.Is(err, entity.ErrConflict) {
			g.log.With(
				slog.Int64("expected_version", expectedVersion),
				slog.String("actor_id", actorID),
			).Warn("settings write lost a race")
		}
		return nil, err
	}

	g.log.With(
		slog.Int64("version", rec.Version),
		slog.String("actor_id", actorID),
		slog.Any("fields", applied),
	).Info("settings updated")

	g.audit.Emit(ctx, entity.AuditEvent{
		Action:     entity.AuditSettingsUpdated,
		ActorID:    actorID,
		TargetKind: "system_settings",
		TargetID:   "global",
		Metadata: map[string]any{
			"fields":           applied,
			"previous_version": expectedVersion,
			"version":          rec.Version,
		},
		CreatedAt: rec.UpdatedAt,
	})

	return rec, nil
}
