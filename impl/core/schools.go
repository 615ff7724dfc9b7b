package core

import (
	"EduPortal/entity"
	"context"
	"fmt"
)

// AdminSchools lists every school, optionally only those in one status.
func (c *Core) AdminSchools(ctx context.Context, session *entity.Session, status string) ([]entity.School, error) {
	if err := c.requireAdmin(ctx, session); err != nil {
		return nil, err
	}

	var want entity.Status
	if status != "all" {
		for _, st := range entity.Statuses {
			if string(st) == status {
				want = st
			}
		}
		if want == "" {
			return nil, fmt.Errorf("%w: unknown status %q", entity.ErrValidation, status)
		}
	}

	ids, err := c.scope.SchoolsInScope(ctx, entity.AdminMembership{})
	if err != nil {
		return nil, err
	}
	schools, err := c.directory.ListSchools(ctx, ids)
	if err != nil {
		return nil, err
	}
	if want == "" {
		return schools, nil
	}

	out := make([]entity.School, 0, len(schools))
	for _, s := range schools {
		if s.Status == want {
			out = append(out, s)
		}
	}
	return out, nil
}
