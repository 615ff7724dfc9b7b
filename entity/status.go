package entity

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending   Status = "pendente"
	StatusActive    Status = "ativo"
	StatusSuspended Status = "suspenso"
)

var Statuses = [...]Status{StatusPending, StatusActive, StatusSuspended}

type Action string

const (
	ActionApprove    Action = "APPROVE"
	ActionSuspend    Action = "SUSPEND"
	ActionReactivate Action = "REACTIVATE"
)

var Actions = [...]Action{ActionApprove, ActionSuspend, ActionReactivate}

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionApprove, ActionSuspend, ActionReactivate:
		return a, nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrValidation, s)
}

// EntityKind names the kind of entity governed by the status lifecycle.
type EntityKind string

const (
	KindFranchisor EntityKind = "franchisor"
	KindSchool     EntityKind = "school"
)

// ParseEntityKind accepts the singular kind or the plural used in URLs.
func ParseEntityKind(s string) (EntityKind, error) {
	switch s {
	case "franchisor", "franchisors":
		return KindFranchisor, nil
	case "school", "schools":
		return KindSchool, nil
	}
	return "", fmt.Errorf("%w: unknown entity kind %q", ErrValidation, s)
}

// StatusHistoryEntry is an immutable record of one status change.
type StatusHistoryEntry struct {
	ID             string     `json:"id" bson:"id"`
	EntityKind     EntityKind `json:"entity_kind" bson:"entity_kind"`
	EntityID       string     `json:"entity_id" bson:"entity_id"`
	FromStatus     Status     `json:"from_status" bson:"from_status"`
	ToStatus       Status     `json:"to_status" bson:"to_status"`
	ChangedAt      time.Time  `json:"changed_at" bson:"changed_at"`
	ActorID        string     `json:"actor_id" bson:"actor_id"`
	ReasonCategory string     `json:"reason_category,omitempty" bson:"reason_category,omitempty"`
	ReasonDetails  string     `json:"reason_details,omitempty" bson:"reason_details,omitempty"`
}

type HistoryPage struct {
	Items    []StatusHistoryEntry `json:"items"`
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
}
