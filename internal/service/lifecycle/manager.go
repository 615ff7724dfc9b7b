package lifecycle

import (
	"EduPortal/entity"
	"EduPortal/internal/lib/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Repository interface {
	EntityStatus(ctx context.Context, kind entity.EntityKind, id string) (entity.Status, error)
	// ApplyTransition atomically sets the status and appends the entry,
	// failing with entity.ErrConflict when the status is no longer
	// entry.FromStatus.
	ApplyTransition(ctx context.Context, entry entity.StatusHistoryEntry) error
	StatusHistory(ctx context.Context, kind entity.EntityKind, id string, offset, limit int) ([]entity.StatusHistoryEntry, int, error)
}

type AuditEmitter interface {
	Emit(ctx context.Context, ev entity.AuditEvent)
}

type TransitionRequest struct {
	Kind           entity.EntityKind
	ID             string
	Action         entity.Action
	ActorID        string
	ReasonCategory string
	ReasonDetails  string
}

type Manager struct {
	repo  Repository
	audit AuditEmitter
	now   func() time.Time
	log   *slog.Logger
}

func NewManager(repo Repository, audit AuditEmitter, log *slog.Logger) *Manager {
	return &Manager{
		repo:  repo,
		audit: audit,
		now:   func() time.Time { return time.Now().UTC() },
		log:   log.With(sl.Module("lifecycle")),
	}
}

// Transition applies one action. The status change and its history entry are
// stored together; a concurrent change between the read and the write makes
// the call fail with entity.ErrConflict and leaves nothing behind.
func (m *Manager) Transition(ctx context.Context, req TransitionRequest) (*entity.StatusHistoryEntry, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("%w: entity id is required", entity.ErrValidation)
	}
	if req.ActorID == "" {
		return nil, fmt.Errorf("%w: actor is required", entity.ErrValidation)
	}

	from, err := m.repo.EntityStatus(ctx, req.Kind, req.ID)
	if err != nil {
		return nil, err
	}

	to, ok := Next(req.Kind, req.Action, from)
	if !ok {
		return nil, fmt.Errorf("%s %s: %s from %s: %w", req.Kind, req.ID, req.Action, from, entity.ErrInvalidTransition)
	}

	entry := entity.StatusHistoryEntry{
		ID:             uuid.New().String(),
		EntityKind:     req.Kind,
		EntityID:       req.ID,
		FromStatus:     from,
		ToStatus:       to,
		ChangedAt:      m.now(),
		ActorID:        req.ActorID,
		ReasonCategory: req.ReasonCategory,
		ReasonDetails:  req.ReasonDetails,
	}
	if err = m.repo.ApplyTransition(ctx, entry); err != nil {
		if errors.Is(err, entity.ErrConflict) {
			m.log.With(
				slog.String("entity_kind", string(req.Kind)),
				slog.String("entity_id", req.ID),
				slog.String("action", string(req.Action)),
			).Warn("status changed concurrently")
		}
		return nil, err
	}

	m.log.With(
		slog.String("entity_kind", string(req.Kind)),
		slog.String("entity_id", req.ID),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		slog.String("actor_id", req.ActorID),
	).Info("status changed")

	action := entity.AuditSchoolStatusChanged
	if req.Kind == entity.KindFranchisor {
		action = entity.AuditFranchisorStatusChanged
	}
	m.audit.Emit(ctx, entity.AuditEvent{
		Action:     action,
		ActorID:    req.ActorID,
		TargetKind: string(req.Kind),
		TargetID:   req.ID,
		Metadata: map[string]any{
			"history_id":      entry.ID,
			"action":          string(req.Action),
			"from_status":     string(from),
			"to_status":       string(to),
			"reason_category": req.ReasonCategory,
			"reason_details":  req.ReasonDetails,
		},
		CreatedAt: entry.ChangedAt,
	})

	return &entry, nil
}

// History returns one page of status changes, newest first. Pages start at 1.
func (m *Manager) History(ctx context.Context, kind entity.EntityKind, id string, page, pageSize int) (*entity.HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	// Pages past any possible history read as empty instead of overflowing.
	offset := math.MaxInt
	if page-1 <= math.MaxInt/pageSize {
		offset = (page - 1) * pageSize
	}

	items, total, err := m.repo.StatusHistory(ctx, kind, id, offset, pageSize)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []entity.StatusHistoryEntry{}
	}
	return &entity.HistoryPage{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
