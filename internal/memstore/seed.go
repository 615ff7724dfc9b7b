package memstore

import (
	"EduPortal/entity"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ilyakaznacheev/cleanenv"
)

// Seed is the fixture file loaded into the local backend at startup.
type Seed struct {
	Franchisors []struct {
		ID     string `yaml:"id"`
		Name   string `yaml:"name"`
		Status string `yaml:"status"`
	} `yaml:"franchisors"`
	Schools []struct {
		ID           string `yaml:"id"`
		FranchisorID string `yaml:"franchisor_id"`
		Name         string `yaml:"name"`
		Status       string `yaml:"status"`
	} `yaml:"schools"`
	Memberships []struct {
		UserID       string   `yaml:"user_id"`
		Portal       string   `yaml:"portal"`
		FranchisorID string   `yaml:"franchisor_id"`
		SchoolID     string   `yaml:"school_id"`
		Role         string   `yaml:"role"`
		ScopeKind    string   `yaml:"scope"`
		SchoolIDs    []string `yaml:"school_ids"`
	} `yaml:"memberships"`
}

func LoadSeed(path string) (*Seed, error) {
	var seed Seed
	if err := cleanenv.ReadConfig(path, &seed); err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	return &seed, nil
}

// Writer receives seeded entities. Both the in-memory store and the MongoDB
// repository implement it.
type Writer interface {
	UpsertFranchisor(ctx context.Context, franchisor *entity.Franchisor) error
	UpsertSchool(ctx context.Context, school *entity.School) error
	UpsertMembership(ctx context.Context, rec entity.MembershipRecord) error
}

// ApplyTo loads the fixtures into w. Statuses are taken as given; an empty
// status falls back to the creation default of the entity. Membership ids are
// derived from their content so applying the same seed twice is a no-op.
func (seed *Seed) ApplyTo(ctx context.Context, w Writer) error {
	for _, f := range seed.Franchisors {
		franchisor := entity.NewFranchisor(f.ID, f.Name)
		if f.Status != "" {
			st, err := parseStatus(f.Status)
			if err != nil {
				return fmt.Errorf("franchisor %s: %w", f.ID, err)
			}
			franchisor.Status = st
		}
		if err := w.UpsertFranchisor(ctx, franchisor); err != nil {
			return fmt.Errorf("franchisor %s: %w", f.ID, err)
		}
	}

	for _, sc := range seed.Schools {
		school := entity.NewSchool(sc.ID, sc.FranchisorID, sc.Name)
		if sc.Status != "" {
			st, err := parseStatus(sc.Status)
			if err != nil {
				return fmt.Errorf("school %s: %w", sc.ID, err)
			}
			school.Status = st
		}
		if err := w.UpsertSchool(ctx, school); err != nil {
			return fmt.Errorf("school %s: %w", sc.ID, err)
		}
	}

	now := time.Now().UTC()
	for _, m := range seed.Memberships {
		key := strings.Join([]string{m.UserID, m.Portal, m.FranchisorID, m.SchoolID}, "|")
		rec := entity.MembershipRecord{
			ID:           uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String(),
			UserID:       m.UserID,
			Portal:       entity.Portal(m.Portal),
			FranchisorID: m.FranchisorID,
			SchoolID:     m.SchoolID,
			Role:         m.Role,
			CreatedAt:    now,
		}
		if m.ScopeKind != "" {
			rec.Scope = &entity.Scope{Kind: entity.ScopeKind(m.ScopeKind), SchoolIDs: m.SchoolIDs}
		}
		if err := w.UpsertMembership(ctx, rec); err != nil {
			return fmt.Errorf("membership of %s: %w", m.UserID, err)
		}
	}
	return nil
}

func (s *Store) Apply(seed *Seed) error {
	return seed.ApplyTo(context.Background(), s)
}

func parseStatus(s string) (entity.Status, error) {
	for _, st := range entity.Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", entity.ErrValidation, s)
}
