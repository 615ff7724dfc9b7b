package access

import (
	"EduPortal/entity"
	"EduPortal/internal/lib/sl"
	"EduPortal/internal/service/membership"
	"context"
	"errors"
	"fmt"
	"log/slog"
)

type Resolver interface {
	Resolve(ctx context.Context, identity *entity.Identity) (*membership.Resolution, error)
}

type ScopeEvaluator interface {
	SchoolsInScope(ctx context.Context, m entity.Membership) ([]string, error)
}

// Directory reads franchisors and schools with their current status.
type Directory interface {
	GetFranchisor(ctx context.Context, id string) (*entity.Franchisor, error)
	GetSchool(ctx context.Context, id string) (*entity.School, error)
	ListSchools(ctx context.Context, ids []string) ([]entity.School, error)
}

// Selection is the portal and context the user asked to enter.
type Selection struct {
	Portal   entity.Portal
	Context  string
	ReturnTo string
}

type Selector struct {
	resolver Resolver
	scope    ScopeEvaluator
	dir      Directory
	log      *slog.Logger
}

func NewSelector(resolver Resolver, scope ScopeEvaluator, dir Directory, log *slog.Logger) *Selector {
	return &Selector{
		resolver: resolver,
		scope:    scope,
		dir:      dir,
		log:      log.With(sl.Module("access.selector")),
	}
}

// Select validates the requested portal and context against memberships
// derived now, not against anything the client sent back.
func (s *Selector) Select(ctx context.Context, identity *entity.Identity, sel Selection) (*entity.RedirectTarget, error) {
	res, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !res.HasAccess() {
		return nil, entity.ErrNoPortalAccess
	}

	candidates := res.ByPortal(sel.Portal)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no %s membership: %w", sel.Portal, entity.ErrAccessDenied)
	}

	var target entity.RedirectTarget
	switch sel.Portal {
	case entity.PortalAdmin:
		target = entity.RedirectFor(candidates[0])
	case entity.PortalFranchisor:
		target, err = s.selectFranchisor(ctx, candidates, sel.Context)
	case entity.PortalSchool:
		target, err = s.selectSchool(ctx, candidates, sel.Context)
	default:
		err = fmt.Errorf("%w: portal %q", entity.ErrValidation, sel.Portal)
	}
	if err != nil {
		return nil, err
	}

	target.Path = sel.Portal.DefaultPath()
	if sel.ReturnTo != "" {
		if path, ok := SafeReturnTo(sel.ReturnTo); ok {
			target.Path = path
		} else {
			s.log.With(
				slog.String("user_id", identity.ID),
				slog.String("return_to", sel.ReturnTo),
			).Warn("return path rejected")
		}
	}
	return &target, nil
}

func (s *Selector) selectSchool(ctx context.Context, candidates []entity.Membership, schoolID string) (entity.RedirectTarget, error) {
	var chosen entity.Membership
	if schoolID == "" {
		if len(candidates) > 1 {
			return entity.RedirectTarget{}, fmt.Errorf("school context required: %w", entity.ErrAccessDenied)
		}
		chosen = candidates[0]
	} else {
		for _, m := range candidates {
			if m.ContextID() == schoolID {
				chosen = m
				break
			}
		}
		if chosen == nil {
			return entity.RedirectTarget{}, fmt.Errorf("school %s: %w", schoolID, entity.ErrAccessDenied)
		}
	}

	school, err := s.dir.GetSchool(ctx, chosen.ContextID())
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return entity.RedirectTarget{}, fmt.Errorf("school %s: %w", chosen.ContextID(), entity.ErrAccessDenied)
		}
		return entity.RedirectTarget{}, fmt.Errorf("load school: %w", err)
	}
	if school.IsSuspended() {
		return entity.RedirectTarget{}, fmt.Errorf("school %s: %w", school.ID, entity.ErrEntitySuspended)
	}
	return entity.RedirectFor(chosen), nil
}

// selectFranchisor accepts either a franchisor id or the id of a school that
// is in the live scope of exactly one franchisor membership.
func (s *Selector) selectFranchisor(ctx context.Context, candidates []entity.Membership, contextID string) (entity.RedirectTarget, error) {
	var chosen entity.Membership
	var schoolID string

	switch {
	case contextID == "":
		if len(candidates) > 1 {
			return entity.RedirectTarget{}, fmt.Errorf("franchisor context required: %w", entity.ErrAccessDenied)
		}
		chosen = candidates[0]

	default:
		for _, m := range candidates {
			if m.ContextID() == contextID {
				chosen = m
				break
			}
		}
		if chosen == nil {
			var matches []entity.Membership
			for _, m := range candidates {
				ids, err := s.scope.SchoolsInScope(ctx, m)
				if err != nil {
					return entity.RedirectTarget{}, fmt.Errorf("evaluate scope: %w", err)
				}
				if contains(ids, contextID) {
					matches = append(matches, m)
				}
			}
			if len(matches) != 1 {
				return entity.RedirectTarget{}, fmt.Errorf("context %s: %w", contextID, entity.ErrAccessDenied)
			}
			chosen = matches[0]
			schoolID = contextID
		}
	}

	franchisor, err := s.dir.GetFranchisor(ctx, chosen.ContextID())
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return entity.RedirectTarget{}, fmt.Errorf("franchisor %s: %w", chosen.ContextID(), entity.ErrAccessDenied)
	case err != nil:
		return entity.RedirectTarget{}, fmt.Errorf("load franchisor: %w", err)
	case franchisor.IsSuspended():
		return entity.RedirectTarget{}, fmt.Errorf("franchisor %s: %w", franchisor.ID, entity.ErrEntitySuspended)
	}

	target := entity.RedirectFor(chosen)
	target.SchoolID = schoolID
	return target, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
