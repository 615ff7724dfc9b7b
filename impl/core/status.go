package core

import (
	"EduPortal/entity"
	"EduPortal/internal/service/lifecycle"
	"context"
)

func (c *Core) TransitionStatus(ctx context.Context, session *entity.Session, kind entity.EntityKind, id string, req *entity.TransitionRequest) (*entity.StatusHistoryEntry, error) {
	if err := c.requireAdmin(ctx, session); err != nil {
		return nil, err
	}
	action, err := entity.ParseAction(req.Action)
	if err != nil {
		return nil, err
	}
	return c.lifecycle.Transition(ctx, lifecycle.TransitionRequest{
		Kind:           kind,
		ID:             id,
		Action:         action,
		ActorID:        session.UserID,
		ReasonCategory: req.ReasonCategory,
		ReasonDetails:  req.ReasonDetails,
	})
}

func (c *Core) StatusHistory(ctx context.Context, session *entity.Session, kind entity.EntityKind, id string, page, pageSize int) (*entity.HistoryPage, error) {
	if err := c.requireAdmin(ctx, session); err != nil {
		return nil, err
	}
	return c.lifecycle.History(ctx, kind, id, page, pageSize)
}
