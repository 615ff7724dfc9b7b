package entity

import "time"

const (
	AuditFranchisorStatusChanged = "FRANCHISOR_STATUS_CHANGED"
	AuditSchoolStatusChanged     = "SCHOOL_STATUS_CHANGED"
	AuditSettingsUpdated         = "SYSTEM_SETTINGS_UPDATED"
	AuditLogin                   = "AUTH_LOGIN"
)

// AuditEvent is an append-only record of an administrative action.
type AuditEvent struct {
	ID         string         `json:"id" bson:"_id"`
	Action     string         `json:"action" bson:"action"`
	ActorID    string         `json:"actor_id" bson:"actor_id"`
	TargetKind string         `json:"target_kind,omitempty" bson:"target_kind,omitempty"`
	TargetID   string         `json:"target_id,omitempty" bson:"target_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
}
