package auth

import (
	"EduPortal/entity"
	"EduPortal/internal/lib/sl"
	"EduPortal/internal/service/access"
	"EduPortal/internal/service/membership"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Repository keeps sessions and failed login counters.
type Repository interface {
	CreateSession(ctx context.Context, session *entity.Session) error
	GetSession(ctx context.Context, token string) (*entity.Session, error)
	UpdateSessionSelection(ctx context.Context, token string, target entity.RedirectTarget) error
	DeleteSession(ctx context.Context, token string) error

	GetLoginAttempts(ctx context.Context, email string) (*entity.LoginAttempts, error)
	RecordLoginFailure(ctx context.Context, email string, max int, lockFor time.Duration, now time.Time) (*entity.LoginAttempts, error)
	ResetLoginAttempts(ctx context.Context, email string) error
}

type Gateway interface {
	Verify(ctx context.Context, email, password string) (*entity.Identity, error)
}

type Resolver interface {
	Resolve(ctx context.Context, identity *entity.Identity) (*membership.Resolution, error)
}

type Selector interface {
	Select(ctx context.Context, identity *entity.Identity, sel access.Selection) (*entity.RedirectTarget, error)
	Options(ctx context.Context, identity *entity.Identity) (*access.Options, error)
}

type SettingsReader interface {
	Read(ctx context.Context) (*entity.SettingsRecord, error)
}

type AuditEmitter interface {
	Emit(ctx context.Context, ev entity.AuditEvent)
}

// LoginResult is returned to a user who has at least one portal.
type LoginResult struct {
	Token           string                  `json:"token"`
	ExpiresAt       time.Time               `json:"expires_at"`
	Identity        *entity.Identity        `json:"user"`
	Memberships     []entity.MembershipView `json:"memberships"`
	DefaultRedirect *entity.RedirectTarget  `json:"default_redirect"`
}

type Service struct {
	repository Repository
	gateway    Gateway
	resolver   Resolver
	selector   Selector
	settings   SettingsReader
	audit      AuditEmitter
	now        func() time.Time
	log        *slog.Logger
}

func NewAuthService(logger *slog.Logger, gateway Gateway, resolver Resolver, selector Selector) *Service {
	return &Service{
		gateway:  gateway,
		resolver: resolver,
		selector: selector,
		now:      func() time.Time { return time.Now().UTC() },
		log:      logger.With(sl.Module("auth-service")),
	}
}

func (s *Service) SetRepository(repository Repository) {
	s.repository = repository
}

func (s *Service) SetSettings(settings SettingsReader) {
	s.settings = settings
}

func (s *Service) SetAuditEmitter(audit AuditEmitter) {
	s.audit = audit
}

func (s *Service) currentSettings(ctx context.Context) entity.SystemSettings {
	if s.settings == nil {
		return entity.DefaultSettings()
	}
	rec, err := s.settings.Read(ctx)
	if err != nil {
		s.log.Warn("settings unavailable, using defaults", sl.Err(err))
		return entity.DefaultSettings()
	}
	return rec.Settings
}

// Login verifies the credentials, resolves memberships and opens a session.
// A user without any portal gets entity.ErrNoPortalAccess and no session.
func (s *Service) Login(ctx context.Context, email, password, remote string) (*LoginResult, error) {
	email = entity.NormalizeEmail(email)
	now := s.now()
	settings := s.currentSettings(ctx)
	logger := s.log.With(sl.Secret("email", email), slog.String("remote", remote))

	attempts, err := s.repository.GetLoginAttempts(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("load login attempts: %w", err)
	}
	if attempts != nil && now.Before(attempts.LockedUntil) {
		logger.Warn("login refused, account locked")
		return nil, entity.ErrAccountLocked
	}

	identity, err := s.gateway.Verify(ctx, email, password)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidCredentials) {
			lockFor := time.Duration(settings.LockoutMinutes) * time.Minute
			a, rerr := s.repository.RecordLoginFailure(ctx, email, settings.MaxLoginAttempts, lockFor, now)
			if rerr != nil {
				logger.Error("failed to record login failure", sl.Err(rerr))
			} else if now.Before(a.LockedUntil) {
				logger.With(slog.Time("locked_until", a.LockedUntil)).Warn("account locked after failed logins")
			}
		}
		return nil, err
	}

	if err = s.repository.ResetLoginAttempts(ctx, email); err != nil {
		logger.Warn("failed to reset login attempts", sl.Err(err))
	}

	resolution, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("resolve memberships: %w", err)
	}
	if !resolution.HasAccess() {
		logger.With(slog.String("user_id", identity.ID)).Info("login without portal access")
		return nil, entity.ErrNoPortalAccess
	}

	session := &entity.Session{
		Token:       uuid.New().String(),
		UserID:      identity.ID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Duration(settings.SessionExpiryMinutes) * time.Minute),
	}
	if err = s.repository.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if s.audit != nil {
		s.audit.Emit(ctx, entity.AuditEvent{
			Action:     entity.AuditLogin,
			ActorID:    identity.ID,
			TargetKind: "user",
			TargetID:   identity.ID,
			Metadata: map[string]any{
				"remote":  remote,
				"portals": len(resolution.Memberships),
			},
			CreatedAt: now,
		})
	}

	return &LoginResult{
		Token:           session.Token,
		ExpiresAt:       session.ExpiresAt,
		Identity:        identity,
		Memberships:     resolution.Views(),
		DefaultRedirect: resolution.DefaultRedirect,
	}, nil
}

// AuthenticateByToken returns the live session behind a bearer token.
func (s *Service) AuthenticateByToken(ctx context.Context, token string) (*entity.Session, error) {
	if token == "" {
		return nil, entity.ErrUnauthenticated
	}
	session, err := s.repository.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, entity.ErrUnauthenticated
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session.Expired(s.now()) {
		_ = s.repository.DeleteSession(ctx, token)
		return nil, entity.ErrUnauthenticated
	}
	return session, nil
}

func (s *Service) PostLoginOptions(ctx context.Context, session *entity.Session) (*access.Options, error) {
	return s.selector.Options(ctx, session.Identity())
}

// SelectAccess validates the choice and remembers it on the session.
func (s *Service) SelectAccess(ctx context.Context, session *entity.Session, sel access.Selection) (*entity.RedirectTarget, error) {
	target, err := s.selector.Select(ctx, session.Identity(), sel)
	if err != nil {
		return nil, err
	}
	if err = s.repository.UpdateSessionSelection(ctx, session.Token, *target); err != nil {
		return nil, fmt.Errorf("store selection: %w", err)
	}
	s.log.With(
		slog.String("user_id", session.UserID),
		slog.String("portal", string(target.Portal)),
		slog.String("franchisor_id", target.FranchisorID),
		slog.String("school_id", target.SchoolID),
	).Debug("access selected")
	return target, nil
}

func (s *Service) Logout(ctx context.Context, session *entity.Session) error {
	return s.repository.DeleteSession(ctx, session.Token)
}

// Memberships re-derives the memberships of a signed-in user.
func (s *Service) Memberships(ctx context.Context, session *entity.Session) (*membership.Resolution, error) {
	return s.resolver.Resolve(ctx, session.Identity())
}
