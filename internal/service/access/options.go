package access

import (
	"EduPortal/entity"
	"context"
	"errors"
	"fmt"
	"log/slog"
)

type SchoolOption struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Status entity.Status `json:"status"`
}

type ContextOption struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Status    entity.Status    `json:"status"`
	Role      string           `json:"role,omitempty"`
	ScopeKind entity.ScopeKind `json:"scope_kind,omitempty"`
	Schools   []SchoolOption   `json:"schools,omitempty"`
	// Selectable is false for contexts the user cannot enter right now.
	Selectable bool `json:"selectable"`
}

type PortalOption struct {
	Portal   entity.Portal   `json:"portal"`
	Contexts []ContextOption `json:"contexts,omitempty"`
}

// Options lists every portal and context the identity may choose after login.
type Options struct {
	Portals         []PortalOption         `json:"portals"`
	DefaultRedirect *entity.RedirectTarget `json:"default_redirect,omitempty"`
}

func (s *Selector) Options(ctx context.Context, identity *entity.Identity) (*Options, error) {
	res, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !res.HasAccess() {
		return nil, entity.ErrNoPortalAccess
	}

	opts := &Options{Portals: []PortalOption{}, DefaultRedirect: res.DefaultRedirect}
	for _, portal := range entity.PortalPrecedence {
		memberships := res.ByPortal(portal)
		if len(memberships) == 0 {
			continue
		}
		option := PortalOption{Portal: portal}
		for _, m := range memberships {
			c, ok, err := s.contextOption(ctx, m)
			if err != nil {
				return nil, err
			}
			if ok {
				option.Contexts = append(option.Contexts, c)
			}
		}
		opts.Portals = append(opts.Portals, option)
	}
	return opts, nil
}

// contextOption describes one membership. Memberships pointing at entities
// that no longer exist are left out.
func (s *Selector) contextOption(ctx context.Context, m entity.Membership) (ContextOption, bool, error) {
	switch v := m.(type) {
	case entity.FranchisorMembership:
		f, err := s.dir.GetFranchisor(ctx, v.FranchisorID)
		if errors.Is(err, entity.ErrNotFound) {
			s.log.With(slog.String("franchisor_id", v.FranchisorID)).Warn("membership points at missing franchisor")
			return ContextOption{}, false, nil
		}
		if err != nil {
			return ContextOption{}, false, fmt.Errorf("load franchisor: %w", err)
		}
		ids, err := s.scope.SchoolsInScope(ctx, v)
		if err != nil {
			return ContextOption{}, false, fmt.Errorf("evaluate scope: %w", err)
		}
		schools, err := s.dir.ListSchools(ctx, ids)
		if err != nil {
			return ContextOption{}, false, fmt.Errorf("list schools: %w", err)
		}
		c := ContextOption{
			ID:         f.ID,
			Name:       f.Name,
			Status:     f.Status,
			Role:       string(v.Role),
			ScopeKind:  v.Scope.Kind,
			Schools:    make([]SchoolOption, 0, len(schools)),
			Selectable: !f.IsSuspended(),
		}
		for _, school := range schools {
			c.Schools = append(c.Schools, SchoolOption{ID: school.ID, Name: school.Name, Status: school.Status})
		}
		return c, true, nil

	case entity.SchoolMembership:
		school, err := s.dir.GetSchool(ctx, v.SchoolID)
		if errors.Is(err, entity.ErrNotFound) {
			s.log.With(slog.String("school_id", v.SchoolID)).Warn("membership points at missing school")
			return ContextOption{}, false, nil
		}
		if err != nil {
			return ContextOption{}, false, fmt.Errorf("load school: %w", err)
		}
		return ContextOption{
			ID:         school.ID,
			Name:       school.Name,
			Status:     school.Status,
			Role:       string(v.Role),
			Selectable: !school.IsSuspended(),
		}, true, nil
	}
	return ContextOption{}, false, nil
}
