package core

import (
	"EduPortal/entity"
	"EduPortal/internal/service/access"
	"EduPortal/internal/service/auth"
	"context"
)

func (c *Core) Login(ctx context.Context, req *entity.LoginRequest, remote string) (*auth.LoginResult, error) {
	return c.authService.Login(ctx, req.Email, req.Password, remote)
}

func (c *Core) AuthenticateByToken(ctx context.Context, token string) (*entity.Session, error) {
	return c.authService.AuthenticateByToken(ctx, token)
}

func (c *Core) PostLoginOptions(ctx context.Context, session *entity.Session) (*access.Options, error) {
	return c.authService.PostLoginOptions(ctx, session)
}

func (c *Core) SelectAccess(ctx context.Context, session *entity.Session, req *entity.SelectAccessRequest) (*entity.RedirectTarget, error) {
	portal, err := entity.ParsePortal(req.Portal)
	if err != nil {
		return nil, err
	}
	return c.authService.SelectAccess(ctx, session, access.Selection{
		Portal:   portal,
		Context:  req.Context,
		ReturnTo: req.ReturnTo,
	})
}

func (c *Core) Logout(ctx context.Context, session *entity.Session) error {
	return c.authService.Logout(ctx, session)
}

// AuthenticateAdmin admits a bearer token to admin-only streams.
func (c *Core) AuthenticateAdmin(ctx context.Context, token string) (string, error) {
	session, err := c.authService.AuthenticateByToken(ctx, token)
	if err != nil {
		return "", err
	}
	if err = c.requireAdmin(ctx, session); err != nil {
		return "", err
	}
	return session.UserID, nil
}
