// Package memstore keeps all portal state in process memory. It backs the
// local backend mode and the tests.
package memstore

import (
	"EduPortal/entity"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type Store struct {
	mu sync.RWMutex

	memberships []entity.MembershipRecord
	franchisors map[string]*entity.Franchisor
	schools     map[string]*entity.School
	history     map[string][]entity.StatusHistoryEntry
	settings    *entity.SettingsRecord
	audit       []entity.AuditEvent
	sessions    map[string]*entity.Session
	attempts    map[string]*entity.LoginAttempts
	accounts    map[string]*entity.Account
}

func New() *Store {
	return &Store{
		franchisors: make(map[string]*entity.Franchisor),
		schools:     make(map[string]*entity.School),
		history:     make(map[string][]entity.StatusHistoryEntry),
		sessions:    make(map[string]*entity.Session),
		attempts:    make(map[string]*entity.LoginAttempts),
		accounts:    make(map[string]*entity.Account),
	}
}

func historyKey(kind entity.EntityKind, id string) string {
	return string(kind) + "/" + id
}

// memberships

func (s *Store) AddMembership(rec entity.MembershipRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendMembershipLocked(rec)
}

func (s *Store) appendMembershipLocked(rec entity.MembershipRecord) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.memberships = append(s.memberships, rec)
}

// UpsertMembership replaces the record with the same id or appends it.
func (s *Store) UpsertMembership(_ context.Context, rec entity.MembershipRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.memberships {
		if s.memberships[i].ID == rec.ID {
			s.memberships[i] = rec
			return nil
		}
	}
	s.appendMembershipLocked(rec)
	return nil
}

func (s *Store) membershipsOf(userID string, portal entity.Portal) []entity.MembershipRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.MembershipRecord
	for _, rec := range s.memberships {
		if rec.UserID == userID && rec.Portal == portal {
			if rec.Scope != nil {
				scope := *rec.Scope
				scope.SchoolIDs = append([]string(nil), scope.SchoolIDs...)
				rec.Scope = &scope
			}
			out = append(out, rec)
		}
	}
	return out
}

func (s *Store) AdminMemberships(_ context.Context, userID string) ([]entity.MembershipRecord, error) {
	return s.membershipsOf(userID, entity.PortalAdmin), nil
}

func (s *Store) FranchisorMemberships(_ context.Context, userID string) ([]entity.MembershipRecord, error) {
	return s.membershipsOf(userID, entity.PortalFranchisor), nil
}

func (s *Store) SchoolMemberships(_ context.Context, userID string) ([]entity.MembershipRecord, error) {
	return s.membershipsOf(userID, entity.PortalSchool), nil
}

// organisations

func (s *Store) SaveFranchisor(f entity.Franchisor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.franchisors[f.ID] = &f
}

func (s *Store) SaveSchool(school entity.School) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schools[school.ID] = &school
}

// UpsertFranchisor keeps the stored status of an existing franchisor.
func (s *Store) UpsertFranchisor(_ context.Context, f *entity.Franchisor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := *f
	if cur, ok := s.franchisors[f.ID]; ok {
		next.Status = cur.Status
		next.CreatedAt = cur.CreatedAt
	}
	s.franchisors[f.ID] = &next
	return nil
}

// UpsertSchool keeps the stored status of an existing school.
func (s *Store) UpsertSchool(_ context.Context, school *entity.School) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := *school
	if cur, ok := s.schools[school.ID]; ok {
		next.Status = cur.Status
		next.CreatedAt = cur.CreatedAt
	}
	s.schools[school.ID] = &next
	return nil
}

func (s *Store) GetFranchisor(_ context.Context, id string) (*entity.Franchisor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.franchisors[id]
	if !ok {
		return nil, fmt.Errorf("franchisor %s: %w", id, entity.ErrNotFound)
	}
	out := *f
	return &out, nil
}

func (s *Store) GetSchool(_ context.Context, id string) (*entity.School, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	school, ok := s.schools[id]
	if !ok {
		return nil, fmt.Errorf("school %s: %w", id, entity.ErrNotFound)
	}
	out := *school
	return &out, nil
}

// ListSchools returns the existing schools among ids, ordered by id.
func (s *Store) ListSchools(_ context.Context, ids []string) ([]entity.School, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.School, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if school, ok := s.schools[id]; ok {
			out = append(out, *school)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SchoolIDsByFranchisor(_ context.Context, franchisorID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, school := range s.schools {
		if school.FranchisorID == franchisorID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) AllSchoolIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.schools))
	for id := range s.schools {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// status lifecycle

func (s *Store) EntityStatus(_ context.Context, kind entity.EntityKind, id string) (entity.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusLocked(kind, id)
}

func (s *Store) statusLocked(kind entity.EntityKind, id string) (entity.Status, error) {
	switch kind {
	case entity.KindFranchisor:
		if f, ok := s.franchisors[id]; ok {
			return f.Status, nil
		}
	case entity.KindSchool:
		if school, ok := s.schools[id]; ok {
			return school.Status, nil
		}
	}
	return "", fmt.Errorf("%s %s: %w", kind, id, entity.ErrNotFound)
}

// ApplyTransition sets the status to entry.ToStatus and appends entry to the
// history in one step, provided the status still equals entry.FromStatus.
func (s *Store) ApplyTransition(_ context.Context, entry entity.StatusHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.statusLocked(entry.EntityKind, entry.EntityID)
	if err != nil {
		return err
	}
	if current != entry.FromStatus {
		return fmt.Errorf("%s %s is %s, expected %s: %w",
			entry.EntityKind, entry.EntityID, current, entry.FromStatus, entity.ErrConflict)
	}

	switch entry.EntityKind {
	case entity.KindFranchisor:
		f := s.franchisors[entry.EntityID]
		f.Status = entry.ToStatus
		f.UpdatedAt = entry.ChangedAt
	case entity.KindSchool:
		school := s.schools[entry.EntityID]
		school.Status = entry.ToStatus
		school.UpdatedAt = entry.ChangedAt
	}
	key := historyKey(entry.EntityKind, entry.EntityID)
	s.history[key] = append(s.history[key], entry)
	return nil
}

// StatusHistory returns entries newest first, skipping offset and returning at
// most limit of them, along with the total count.
func (s *Store) StatusHistory(_ context.Context, kind entity.EntityKind, id string, offset, limit int) ([]entity.StatusHistoryEntry, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.statusLocked(kind, id); err != nil {
		return nil, 0, err
	}
	if offset < 0 || limit < 0 {
		return nil, 0, fmt.Errorf("%w: offset %d, limit %d", entity.ErrValidation, offset, limit)
	}
	all := s.history[historyKey(kind, id)]
	total := len(all)
	items := make([]entity.StatusHistoryEntry, 0, min(limit, total))
	if offset >= total {
		return items, total, nil
	}
	for i := total - 1 - offset; i >= 0 && len(items) < limit; i-- {
		items = append(items, all[i])
	}
	return items, total, nil
}

// settings

func (s *Store) GetSettings(_ context.Context) (*entity.SettingsRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return nil, fmt.Errorf("system settings: %w", entity.ErrNotFound)
	}
	out := *s.settings
	return &out, nil
}

// SwapSettings stores next with version expected+1 if the stored version is
// still expected. A missing record counts as version 0.
func (s *Store) SwapSettings(_ context.Context, expected int64, next entity.SettingsRecord) (*entity.SettingsRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	if s.settings != nil {
		current = s.settings.Version
	}
	if current != expected {
		return nil, fmt.Errorf("settings version is %d, expected %d: %w", current, expected, entity.ErrConflict)
	}
	next.Version = expected + 1
	s.settings = &next
	out := next
	return &out, nil
}

// audit

func (s *Store) AppendAudit(_ context.Context, ev entity.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, ev)
	return nil
}

// RecentAudit returns up to limit events, newest first.
func (s *Store) RecentAudit(_ context.Context, limit int) ([]entity.AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.AuditEvent, 0, limit)
	for i := len(s.audit) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.audit[i])
	}
	return out, nil
}

// sessions

func (s *Store) CreateSession(_ context.Context, session *entity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.Token]; ok {
		return fmt.Errorf("session token: %w", entity.ErrConflict)
	}
	stored := *session
	s.sessions[session.Token] = &stored
	return nil
}

func (s *Store) GetSession(_ context.Context, token string) (*entity.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, fmt.Errorf("session: %w", entity.ErrNotFound)
	}
	out := *session
	return &out, nil
}

func (s *Store) UpdateSessionSelection(_ context.Context, token string, target entity.RedirectTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return fmt.Errorf("session: %w", entity.ErrNotFound)
	}
	session.Portal = target.Portal
	session.FranchisorID = target.FranchisorID
	session.SchoolID = target.SchoolID
	return nil
}

func (s *Store) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// login attempts

func (s *Store) GetLoginAttempts(_ context.Context, email string) (*entity.LoginAttempts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attempts[email]
	if !ok {
		return nil, nil
	}
	out := *a
	return &out, nil
}

// RecordLoginFailure counts one failure and locks the email for lockFor once
// max consecutive failures are reached. The counter restarts after a lock.
func (s *Store) RecordLoginFailure(_ context.Context, email string, max int, lockFor time.Duration, now time.Time) (*entity.LoginAttempts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[email]
	if !ok {
		a = &entity.LoginAttempts{Email: email}
		s.attempts[email] = a
	}
	a.Failures++
	if a.Failures >= max {
		a.Failures = 0
		a.LockedUntil = now.Add(lockFor)
	}
	out := *a
	return &out, nil
}

func (s *Store) ResetLoginAttempts(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, email)
	return nil
}

// accounts

func (s *Store) SaveAccount(account entity.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account.Email = entity.NormalizeEmail(account.Email)
	s.accounts[account.Email] = &account
}

func (s *Store) GetAccountByEmail(_ context.Context, email string) (*entity.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[entity.NormalizeEmail(email)]
	if !ok {
		return nil, fmt.Errorf("account: %w", entity.ErrNotFound)
	}
	out := *a
	return &out, nil
}
