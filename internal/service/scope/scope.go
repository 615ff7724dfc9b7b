package scope

import (
	"EduPortal/entity"
	"context"
	"fmt"
	"sort"
)

// Directory lists the schools that exist right now.
type Directory interface {
	SchoolIDsByFranchisor(ctx context.Context, franchisorID string) ([]string, error)
	AllSchoolIDs(ctx context.Context) ([]string, error)
}

// Evaluator computes the schools a membership may operate on. Results are
// never cached: ALL_SCHOOLS follows the franchisor's current school set.
type Evaluator struct {
	dir Directory
}

func NewEvaluator(dir Directory) *Evaluator {
	return &Evaluator{dir: dir}
}

// SchoolsInScope returns the sorted, deduplicated school ids of the membership.
func (e *Evaluator) SchoolsInScope(ctx context.Context, m entity.Membership) ([]string, error) {
	switch v := m.(type) {
	case entity.AdminMembership:
		ids, err := e.dir.AllSchoolIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("list all schools: %w", err)
		}
		return normalize(ids), nil

	case entity.FranchisorMembership:
		switch v.Scope.Kind {
		case entity.ScopeAllSchools:
			ids, err := e.dir.SchoolIDsByFranchisor(ctx, v.FranchisorID)
			if err != nil {
				return nil, fmt.Errorf("list schools of franchisor %s: %w", v.FranchisorID, err)
			}
			return normalize(ids), nil
		case entity.ScopeSchoolList:
			live, err := e.dir.SchoolIDsByFranchisor(ctx, v.FranchisorID)
			if err != nil {
				return nil, fmt.Errorf("list schools of franchisor %s: %w", v.FranchisorID, err)
			}
			// Listed schools that left the franchisor drop out.
			live = normalize(live)
			var ids []string
			for _, id := range v.Scope.SchoolIDs {
				i := sort.SearchStrings(live, id)
				if i < len(live) && live[i] == id {
					ids = append(ids, id)
				}
			}
			return normalize(ids), nil
		}
		return nil, fmt.Errorf("%w: scope %q", entity.ErrValidation, v.Scope.Kind)

	case entity.SchoolMembership:
		return []string{v.SchoolID}, nil
	}
	return nil, fmt.Errorf("%w: unsupported membership %T", entity.ErrValidation, m)
}

func (e *Evaluator) InScope(ctx context.Context, m entity.Membership, schoolID string) (bool, error) {
	if schoolID == "" {
		return false, nil
	}
	ids, err := e.SchoolsInScope(ctx, m)
	if err != nil {
		return false, err
	}
	i := sort.SearchStrings(ids, schoolID)
	return i < len(ids) && ids[i] == schoolID, nil
}

func normalize(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
