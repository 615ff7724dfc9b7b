package status

import (
	"EduPortal/entity"
	"context"
)

type Core interface {
	TransitionStatus(ctx context.Context, session *entity.Session, kind entity.EntityKind, id string, req *entity.TransitionRequest) (*entity.StatusHistoryEntry, error)
	StatusHistory(ctx context.Context, session *entity.Session, kind entity.EntityKind, id string, page, pageSize int) (*entity.HistoryPage, error)
}
