package core

import (
	"EduPortal/entity"
	"EduPortal/internal/lib/sl"
	"EduPortal/internal/service/access"
	"EduPortal/internal/service/auth"
	"EduPortal/internal/service/lifecycle"
	"EduPortal/internal/service/membership"
	"context"
	"log/slog"
)

type AuthService interface {
	Login(ctx context.Context, email, password, remote string) (*auth.LoginResult, error)
	AuthenticateByToken(ctx context.Context, token string) (*entity.Session, error)
	PostLoginOptions(ctx context.Context, session *entity.Session) (*access.Options, error)
	SelectAccess(ctx context.Context, session *entity.Session, sel access.Selection) (*entity.RedirectTarget, error)
	Logout(ctx context.Context, session *entity.Session) error
	Memberships(ctx context.Context, session *entity.Session) (*membership.Resolution, error)
}

type LifecycleService interface {
	Transition(ctx context.Context, req lifecycle.TransitionRequest) (*entity.StatusHistoryEntry, error)
	History(ctx context.Context, kind entity.EntityKind, id string, page, pageSize int) (*entity.HistoryPage, error)
}

type SettingsService interface {
	Read(ctx context.Context) (*entity.SettingsRecord, error)
	Write(ctx context.Context, patch map[string]any, expectedVersion int64, actorID string) (*entity.SettingsRecord, error)
}

type ScopeEvaluator interface {
	SchoolsInScope(ctx context.Context, m entity.Membership) ([]string, error)
}

type Directory interface {
	GetFranchisor(ctx context.Context, id string) (*entity.Franchisor, error)
	ListSchools(ctx context.Context, ids []string) ([]entity.School, error)
}

type AuditLog interface {
	RecentAudit(ctx context.Context, limit int) ([]entity.AuditEvent, error)
}

// Core joins the services behind the HTTP handlers and enforces who may call
// what. Memberships are re-derived on every call.
type Core struct {
	authService AuthService
	lifecycle   LifecycleService
	settings    SettingsService
	scope       ScopeEvaluator
	directory   Directory
	auditLog    AuditLog
	log         *slog.Logger
}

func New(log *slog.Logger) *Core {
	return &Core{
		log: log.With(sl.Module("core")),
	}
}

func (c *Core) SetAuthService(authService AuthService) {
	c.authService = authService
}

func (c *Core) SetLifecycle(lifecycle LifecycleService) {
	c.lifecycle = lifecycle
}

func (c *Core) SetSettings(settings SettingsService) {
	c.settings = settings
}

func (c *Core) SetScope(scope ScopeEvaluator, directory Directory) {
	c.scope = scope
	c.directory = directory
}

func (c *Core) SetAuditLog(auditLog AuditLog) {
	c.auditLog = auditLog
}

// requireAdmin fails with entity.ErrAccessDenied for anyone who is not an
// administrator right now.
func (c *Core) requireAdmin(ctx context.Context, session *entity.Session) error {
	if session == nil {
		return entity.ErrUnauthenticated
	}
	res, err := c.authService.Memberships(ctx, session)
	if err != nil {
		return err
	}
	if len(res.ByPortal(entity.PortalAdmin)) == 0 {
		c.log.With(slog.String("user_id", session.UserID)).Warn("admin operation refused")
		return entity.ErrAccessDenied
	}
	return nil
}
