package identity

import (
	"EduPortal/entity"
	"EduPortal/internal/lib/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"
)

type LocalGateway struct {
	accounts AccountStore
	hasher   *Hasher
	// dummy is verified for unknown emails so both paths cost the same.
	dummy string
	log   *slog.Logger
}

func NewLocalGateway(accounts AccountStore, hasher *Hasher, log *slog.Logger) *LocalGateway {
	dummy, _ := hasher.Hash("not-a-real-password")
	return &LocalGateway{
		accounts: accounts,
		hasher:   hasher,
		dummy:    dummy,
		log:      log.With(sl.Module("identity.local")),
	}
}

func (g *LocalGateway) Verify(ctx context.Context, email, password string) (*entity.Identity, error) {
	account, err := g.accounts.GetAccountByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			_, _ = g.hasher.Verify(password, g.dummy)
			return nil, entity.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load account: %w", err)
	}

	ok, err := g.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		g.log.With(slog.String("user_id", account.ID), sl.Err(err)).Error("stored hash unreadable")
		return nil, entity.ErrInvalidCredentials
	}
	if !ok {
		return nil, entity.ErrInvalidCredentials
	}
	if account.Disabled {
		return nil, entity.ErrAccountDisabled
	}
	return account.Identity(), nil
}
