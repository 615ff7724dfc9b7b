package settings

import (
	"EduPortal/entity"
	"context"
)

type Core interface {
	GetSettings(ctx context.Context, session *entity.Session) (*entity.SettingsRecord, error)
	UpdateSettings(ctx context.Context, session *entity.Session, patch map[string]any, expectedVersion int64) (*entity.SettingsRecord, error)
}
