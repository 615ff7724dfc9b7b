package membership

import (
	"EduPortal/entity"
	"EduPortal/internal/config"
	"EduPortal/internal/lib/sl"
	"context"
	"fmt"
	"log/slog"
)

// Repository loads persisted memberships of one user, one portal at a time.
type Repository interface {
	AdminMemberships(ctx context.Context, userID string) ([]entity.MembershipRecord, error)
	FranchisorMemberships(ctx context.Context, userID string) ([]entity.MembershipRecord, error)
	SchoolMemberships(ctx context.Context, userID string) ([]entity.MembershipRecord, error)
}

// Resolution is the set of portals an identity may enter. A nil
// DefaultRedirect means the identity has no portal access at all.
type Resolution struct {
	Memberships     []entity.Membership
	DefaultRedirect *entity.RedirectTarget
}

func (r *Resolution) HasAccess() bool {
	return r != nil && len(r.Memberships) > 0
}

// ByPortal returns the memberships of one portal in resolution order.
func (r *Resolution) ByPortal(portal entity.Portal) []entity.Membership {
	if r == nil {
		return nil
	}
	var out []entity.Membership
	for _, m := range r.Memberships {
		if m.Portal() == portal {
			out = append(out, m)
		}
	}
	return out
}

// Views returns the wire form of every membership.
func (r *Resolution) Views() []entity.MembershipView {
	views := make([]entity.MembershipView, 0, len(r.Memberships))
	for _, m := range r.Memberships {
		views = append(views, entity.ViewOf(m))
	}
	return views
}

type Resolver struct {
	repo Repository
	mode config.BackendMode
	log  *slog.Logger
}

func NewResolver(mode config.BackendMode, repo Repository, log *slog.Logger) *Resolver {
	return &Resolver{
		repo: repo,
		mode: mode,
		log:  log.With(sl.Module("membership.resolver"), slog.String("backend", string(mode))),
	}
}

// Resolve loads every membership of the identity in entity.PortalPrecedence
// order and picks the first one as the default landing target. A failure to
// load any portal fails the whole resolution: no partial grants are returned.
func (r *Resolver) Resolve(ctx context.Context, identity *entity.Identity) (*Resolution, error) {
	empty := &Resolution{Memberships: []entity.Membership{}}
	if identity == nil || identity.ID == "" {
		return empty, nil
	}

	res := &Resolution{Memberships: []entity.Membership{}}
	seen := make(map[string]bool)

	for _, portal := range entity.PortalPrecedence {
		records, err := r.load(ctx, portal, identity.ID)
		if err != nil {
			return empty, fmt.Errorf("load %s memberships: %w", portal, err)
		}

		for _, rec := range records {
			if rec.UserID != identity.ID || rec.Portal != portal {
				r.log.With(
					slog.String("membership_id", rec.ID),
					slog.String("user_id", identity.ID),
				).Warn("membership record does not match query, skipped")
				continue
			}
			m, err := rec.ToMembership()
			if err != nil {
				r.log.With(
					slog.String("membership_id", rec.ID),
					sl.Err(err),
				).Warn("membership rejected")
				continue
			}
			key := string(m.Portal()) + ":" + m.ContextID()
			if seen[key] {
				continue
			}
			seen[key] = true
			res.Memberships = append(res.Memberships, m)
		}
	}

	if len(res.Memberships) > 0 {
		target := entity.RedirectFor(res.Memberships[0])
		res.DefaultRedirect = &target
	}

	return res, nil
}

func (r *Resolver) load(ctx context.Context, portal entity.Portal, userID string) ([]entity.MembershipRecord, error) {
	switch portal {
	case entity.PortalAdmin:
		return r.repo.AdminMemberships(ctx, userID)
	case entity.PortalFranchisor:
		return r.repo.FranchisorMemberships(ctx, userID)
	case entity.PortalSchool:
		return r.repo.SchoolMemberships(ctx, userID)
	}
	return nil, fmt.Errorf("unknown portal %q", portal)
}
