package entity

import "time"

// SystemSettings is the platform-wide configuration shared by all
// administrators.
type SystemSettings struct {
	MaxLoginAttempts     int    `json:"max_login_attempts" bson:"max_login_attempts" validate:"gt=0"`
	LockoutMinutes       int    `json:"lockout_minutes" bson:"lockout_minutes" validate:"gt=0"`
	SessionExpiryMinutes int    `json:"session_expiry_minutes" bson:"session_expiry_minutes" validate:"gt=0"`
	MaintenanceMode      bool   `json:"maintenance_mode" bson:"maintenance_mode"`
	SupportEmail         string `json:"support_email" bson:"support_email" validate:"omitempty,email"`
	PlatformName         string `json:"platform_name" bson:"platform_name" validate:"max=120"`
}

func DefaultSettings() SystemSettings {
	return SystemSettings{
		MaxLoginAttempts:     5,
		LockoutMinutes:       15,
		SessionExpiryMinutes: 480,
		PlatformName:         "EduPortal",
	}
}

// SettingsRecord is the singleton settings document. Version grows by one on
// every accepted write.
type SettingsRecord struct {
	Settings  SystemSettings `json:"settings" bson:"settings"`
	Version   int64          `json:"version" bson:"version"`
	UpdatedAt time.Time      `json:"updated_at" bson:"updated_at"`
	UpdatedBy string         `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
}
