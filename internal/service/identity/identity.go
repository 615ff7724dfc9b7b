// Package identity verifies credentials and returns the verified identity.
// Two gateways exist: a local one backed by seeded accounts and a hosted one
// that talks to an OAuth2 identity provider.
package identity

import (
	"EduPortal/entity"
	"EduPortal/internal/config"
	"context"
	"fmt"
	"log/slog"
)

// Gateway fails with entity.ErrInvalidCredentials or entity.ErrAccountDisabled
// for rejected logins. Any other error means the provider could not answer.
type Gateway interface {
	Verify(ctx context.Context, email, password string) (*entity.Identity, error)
}

type AccountStore interface {
	GetAccountByEmail(ctx context.Context, email string) (*entity.Account, error)
}

// New builds the gateway for the configured backend mode.
func New(mode config.BackendMode, conf *config.Config, accounts AccountStore, log *slog.Logger) (Gateway, error) {
	switch mode {
	case config.BackendLocal:
		if accounts == nil {
			return nil, fmt.Errorf("local identity gateway needs an account store")
		}
		return NewLocalGateway(accounts, NewHasher(), log), nil
	case config.BackendHosted:
		return NewRemoteGateway(RemoteOptions{
			TokenURL:     conf.Identity.TokenURL,
			UserInfoURL:  conf.Identity.UserInfoURL,
			ClientID:     conf.Identity.ClientID,
			ClientSecret: conf.Identity.ClientSecret,
			Scopes:       conf.Identity.Scopes,
		}, log), nil
	}
	return nil, fmt.Errorf("unknown backend mode %q", mode)
}
