package core

import (
	"EduPortal/entity"
	"context"
)

const maxAuditPage = 200

func (c *Core) RecentAudit(ctx context.Context, session *entity.Session, limit int) ([]entity.AuditEvent, error) {
	if err := c.requireAdmin(ctx, session); err != nil {
		return nil, err
	}
	if limit < 1 || limit > maxAuditPage {
		limit = 50
	}
	return c.auditLog.RecentAudit(ctx, limit)
}
