package identity

import (
	"EduPortal/entity"
	"EduPortal/internal/lib/sl"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
)

type RemoteOptions struct {
	TokenURL     string
	UserInfoURL  string
	ClientID     string
	ClientSecret string
	Scopes       []string
	// HTTPClient overrides the client used for both calls.
	HTTPClient *http.Client
}

// RemoteGateway verifies credentials with the resource owner password grant
// and reads the identity from the provider's userinfo endpoint.
type RemoteGateway struct {
	oauth       *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
	log         *slog.Logger
}

func NewRemoteGateway(opts RemoteOptions, log *slog.Logger) *RemoteGateway {
	return &RemoteGateway{
		oauth: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Scopes:       opts.Scopes,
			Endpoint: oauth2.Endpoint{
				TokenURL:  opts.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: opts.UserInfoURL,
		httpClient:  opts.HTTPClient,
		log:         log.With(sl.Module("identity.remote")),
	}
}

type userInfo struct {
	Sub         string `json:"sub"`
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

func (g *RemoteGateway) Verify(ctx context.Context, email, password string) (*entity.Identity, error) {
	if g.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
	}

	token, err := g.oauth.PasswordCredentialsToken(ctx, entity.NormalizeEmail(email), password)
	if err != nil {
		return nil, g.classify(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	resp, err := g.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return nil, entity.ErrAccountDisabled
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo: status %d: %s", resp.StatusCode, body)
	}

	var info userInfo
	if err = json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}

	identity := &entity.Identity{
		ID:          info.Sub,
		Email:       entity.NormalizeEmail(info.Email),
		DisplayName: info.Name,
	}
	if identity.ID == "" {
		identity.ID = info.ID
	}
	if identity.DisplayName == "" {
		identity.DisplayName = info.DisplayName
	}
	if identity.Email == "" {
		identity.Email = entity.NormalizeEmail(email)
	}
	if identity.ID == "" {
		return nil, fmt.Errorf("userinfo: no subject")
	}
	return identity, nil
}

// classify maps token endpoint rejections onto the login errors. Transport
// and server failures stay distinct so they are not reported as bad passwords.
func (g *RemoteGateway) classify(err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) || re.Response == nil {
		return fmt.Errorf("token request: %w", err)
	}

	switch re.ErrorCode {
	case "user_disabled", "account_disabled", "user_banned":
		return entity.ErrAccountDisabled
	}
	switch re.Response.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized:
		return entity.ErrInvalidCredentials
	case http.StatusForbidden:
		return entity.ErrAccountDisabled
	}
	g.log.With(
		slog.Int("status", re.Response.StatusCode),
		slog.String("error_code", re.ErrorCode),
	).Error("identity provider failed")
	return fmt.Errorf("token request: status %d", re.Response.StatusCode)
}
