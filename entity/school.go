package entity

import "time"

// School is operated by a franchisor. Its status is changed only by the
// lifecycle manager.
type School struct {
	ID           string    `json:"id" bson:"_id"`
	FranchisorID string    `json:"franchisor_id" bson:"franchisor_id"`
	Name         string    `json:"name" bson:"name"`
	Status       Status    `json:"status" bson:"status"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// NewSchool creates a school. Schools do not go through approval, so the
// initial status is ativo unless the creation payload says otherwise.
func NewSchool(id, franchisorID, name string) *School {
	now := time.Now().UTC()
	return &School{
		ID:           id,
		FranchisorID: franchisorID,
		Name:         name,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *School) IsSuspended() bool {
	return s.Status == StatusSuspended
}

type Franchisor struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Status    Status    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// NewFranchisor creates a franchisor awaiting approval.
func NewFranchisor(id, name string) *Franchisor {
	now := time.Now().UTC()
	return &Franchisor{
		ID:        id,
		Name:      name,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (f *Franchisor) IsSuspended() bool {
	return f.Status == StatusSuspended
}
