package auth

import (
	"EduPortal/entity"
	"EduPortal/internal/service/access"
	"EduPortal/internal/service/auth"
	"context"
)

type Core interface {
	Login(ctx context.Context, req *entity.LoginRequest, remote string) (*auth.LoginResult, error)
	PostLoginOptions(ctx context.Context, session *entity.Session) (*access.Options, error)
	SelectAccess(ctx context.Context, session *entity.Session, req *entity.SelectAccessRequest) (*entity.RedirectTarget, error)
	Logout(ctx context.Context, session *entity.Session) error
}
