package audit

import (
	"EduPortal/entity"
	"EduPortal/internal/ws"
	"context"
)

type Core interface {
	ws.Authenticator
	RecentAudit(ctx context.Context, session *entity.Session, limit int) ([]entity.AuditEvent, error)
}
