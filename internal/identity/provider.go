package identity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"resty.dev/v3"

	"openfeed/internal/core"
)

const (
	userPath = "/auth/v1/user"

	cacheSize = 4096
	cacheTTL  = time.Minute
)

// Provider verifies bearer tokens against the external identity service.
// Session issuance, cookies and credential handling all live on that side;
// we only resolve a token to a user and cache the answer briefly.
type Provider struct {
	Logger  *slog.Logger
	Secrets *core.Config

	client *resty.Client
	cache  *lru.LRU[string, core.User]
}

func (p *Provider) Init(_ context.Context) error {
	p.Logger = p.Logger.With("component", "identity.Provider")

	p.client = resty.NewWithTransportSettings(&resty.TransportSettings{
		DialerTimeout:         2 * time.Second,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   2 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
	})
	p.client.SetBaseURL(p.Secrets.AUTH_URL)
	p.client.SetHeader("apikey", p.Secrets.AUTH_ANON_KEY)

	p.cache = lru.NewLRU[string, core.User](cacheSize, nil, cacheTTL)

	return nil
}

func (p *Provider) Shutdown(_ context.Context) error {
	return p.client.Close()
}

type userResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
}

// UserFromToken resolves a bearer token to a verified identity. Unknown or
// expired tokens map to ErrUnauthorized; provider outages do too, since an
// unverifiable caller is an unauthenticated caller.
func (p *Provider) UserFromToken(ctx context.Context, token string) (core.User, error) {
	if token == "" {
		return core.User{}, core.ErrUnauthorized
	}

	if user, ok := p.cache.Get(token); ok {
		return user, nil
	}

	res, err := p.client.R().
		WithContext(ctx).
		SetAuthToken(token).
		SetResult(&userResponse{}).
		Get(userPath)
	if err != nil {
		return core.User{}, fmt.Errorf("%w: %w", core.ErrUnauthorized, err)
	}
	if res.IsError() {
		return core.User{}, fmt.Errorf("%w: identity provider returned status %d", core.ErrUnauthorized, res.StatusCode())
	}

	payload := res.Result().(*userResponse)
	if payload.ID == "" {
		return core.User{}, fmt.Errorf("%w: identity provider returned no user id", core.ErrUnauthorized)
	}

	user := core.User{
		ID:       payload.ID,
		Email:    payload.Email,
		FullName: payload.UserMetadata.FullName,
	}
	p.cache.Add(token, user)

	return user, nil
}
