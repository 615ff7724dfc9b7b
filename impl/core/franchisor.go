package core

import (
	"EduPortal/entity"
	"context"
	"errors"
	"fmt"
	"sort"
)

// franchisorScope returns the school ids the user may see under one
// franchisor. Administrators see all of its schools.
func (c *Core) franchisorScope(ctx context.Context, session *entity.Session, franchisorID string) ([]string, error) {
	res, err := c.authService.Memberships(ctx, session)
	if err != nil {
		return nil, err
	}

	var grant entity.Membership
	for _, m := range res.ByPortal(entity.PortalFranchisor) {
		if m.ContextID() == franchisorID {
			grant = m
			break
		}
	}
	if grant == nil {
		if len(res.ByPortal(entity.PortalAdmin)) == 0 {
			return nil, fmt.Errorf("franchisor %s: %w", franchisorID, entity.ErrAccessDenied)
		}
		grant = entity.FranchisorMembership{FranchisorID: franchisorID, Scope: entity.AllSchools()}
	}

	franchisor, err := c.directory.GetFranchisor(ctx, franchisorID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, fmt.Errorf("franchisor %s: %w", franchisorID, entity.ErrAccessDenied)
		}
		return nil, err
	}
	if franchisor.IsSuspended() && len(res.ByPortal(entity.PortalAdmin)) == 0 {
		return nil, fmt.Errorf("franchisor %s: %w", franchisorID, entity.ErrEntitySuspended)
	}

	return c.scope.SchoolsInScope(ctx, grant)
}

// FranchisorSchools lists the schools of a franchisor that are in the
// caller's scope.
func (c *Core) FranchisorSchools(ctx context.Context, session *entity.Session, franchisorID string) ([]entity.School, error) {
	ids, err := c.franchisorScope(ctx, session, franchisorID)
	if err != nil {
		return nil, err
	}
	schools, err := c.directory.ListSchools(ctx, ids)
	if err != nil {
		return nil, err
	}
	// A SCHOOL_LIST may name schools that moved to another franchisor.
	out := make([]entity.School, 0, len(schools))
	for _, s := range schools {
		if s.FranchisorID == franchisorID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (c *Core) FranchisorSchool(ctx context.Context, session *entity.Session, franchisorID, schoolID string) (*entity.School, error) {
	ids, err := c.franchisorScope(ctx, session, franchisorID)
	if err != nil {
		return nil, err
	}
	i := sort.SearchStrings(ids, schoolID)
	if i == len(ids) || ids[i] != schoolID {
		return nil, fmt.Errorf("school %s: %w", schoolID, entity.ErrAccessDenied)
	}
	schools, err := c.directory.ListSchools(ctx, []string{schoolID})
	if err != nil {
		return nil, err
	}
	if len(schools) == 0 || schools[0].FranchisorID != franchisorID {
		return nil, fmt.Errorf("school %s: %w", schoolID, entity.ErrNotFound)
	}
	return &schools[0], nil
}
