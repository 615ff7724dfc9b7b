package core

import (
	"EduPortal/entity"
	"context"
)

func (c *Core) GetSettings(ctx context.Context, session *entity.Session) (*entity.SettingsRecord, error) {
	if err := c.requireAdmin(ctx, session); err != nil {
		return nil, err
	}
	return c.settings.Read(ctx)
}

func (c *Core) UpdateSettings(ctx context.Context, session *entity.Session, patch map[string]any, expectedVersion int64) (*entity.SettingsRecord, error) {
	if err := c.requireAdmin(ctx, session); err != nil {
		return nil, err
	}
	return c.settings.Write(ctx, patch, expectedVersion, session.UserID)
}
