// Package session logs in as the canonical user of each role and remembers the result for the
// rest of the run.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront-qa/api-contract-tests/client"
	"github.com/storefront-qa/api-contract-tests/fixtures"
	"github.com/storefront-qa/api-contract-tests/servicedef"
)

// ErrUnknownRole is returned by SessionFor in strict mode for a role that has no canonical user.
var ErrUnknownRole = errors.New("unknown role")

// Session is an authenticated identity. It is never refreshed.
type Session struct {
	User     servicedef.User
	Token    string
	IssuedAt time.Time
}

// Authenticated reports whether the login produced a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Provider caches one Session per role. It is safe for concurrent use; concurrent callers asking
// for the same role wait for a single login.
type Provider struct {
	client      *client.Client
	auth        *AuthClient
	strictRoles bool
	logger      zerolog.Logger
	now         func() time.Time
	sessions    map[servicedef.Role]Session
	lock        sync.Mutex
}

type Option func(*Provider)

// WithStrictRoles makes SessionFor return ErrUnknownRole for unknown roles instead of an empty
// session.
func WithStrictRoles(strict bool) Option {
	return func(p *Provider) { p.strictRoles = strict }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// WithClock replaces time.Now for the IssuedAt timestamp.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

func NewProvider(c *client.Client, opts ...Option) *Provider {
	p := &Provider{
		client:   c,
		auth:     NewAuthClient(c),
		logger:   zerolog.Nop(),
		now:      time.Now,
		sessions: make(map[servicedef.Role]Session),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// SessionFor returns the session of role, logging in on first use. For the regular user role,
// the user is registered with the admin session first if the service does not know it yet.
//
// A failed login still produces a cached session, with whatever token the service returned.
// Transport errors are returned and nothing is cached.
func (p *Provider) SessionFor(ctx context.Context, role servicedef.Role) (Session, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.sessionFor(ctx, role)
}

// Sessions returns a copy of the cached sessions.
func (p *Provider) Sessions() map[servicedef.Role]Session {
	p.lock.Lock()
	defer p.lock.Unlock()
	ret := make(map[servicedef.Role]Session, len(p.sessions))
	for role, s := range p.sessions {
		ret[role] = s
	}
	return ret
}

func (p *Provider) sessionFor(ctx context.Context, role servicedef.Role) (Session, error) {
	if s, ok := p.sessions[role]; ok {
		return s, nil
	}

	user, ok := fixtures.UserForRole(role)
	if !role.Valid() || !ok {
		if p.strictRoles {
			return Session{}, fmt.Errorf("%w %q", ErrUnknownRole, role)
		}
		p.logger.Warn().Str("role", string(role)).Msg("Unknown role, using an unauthenticated session")
		return Session{}, nil
	}

	if role == servicedef.RoleUser {
		if err := p.ensureRegistered(ctx, user); err != nil {
			return Session{}, err
		}
	}

	token, resp, err := p.auth.Login(ctx, user, nil)
	if err != nil {
		return Session{}, fmt.Errorf("login as %s: %w", role, err)
	}
	event := p.logger.Info()
	if token == "" {
		event = p.logger.Warn()
	}
	event.Str("role", string(role)).Int("status", resp.StatusCode).Bool("authenticated", token != "").Msg("Logged in")

	s := Session{User: user, Token: token, IssuedAt: p.now()}
	p.sessions[role] = s
	return s, nil
}

func (p *Provider) ensureRegistered(ctx context.Context, user servicedef.User) error {
	admin, err := p.sessionFor(ctx, servicedef.RoleAdmin)
	if err != nil {
		return err
	}

	resp, err := p.client.NewRequest(servicedef.UserPath, nil).
		WithToken(admin.Token).
		WithQuery("username", user.Username).
		Get(ctx, "")
	if err != nil {
		return fmt.Errorf("looking up user %q: %w", user.Username, err)
	}
	var existing []servicedef.User
	if err := resp.DecodeJSON(&existing); err != nil {
		p.logger.Warn().Err(err).Str("username", user.Username).Msg("Could not read user lookup, not registering")
		return nil
	}
	if len(existing) > 0 {
		return nil
	}

	resp, err = p.client.NewRequest(servicedef.UserPath, nil).
		WithToken(admin.Token).
		WithJSONBody(user).
		Post(ctx, servicedef.RegisterPath)
	if err != nil {
		return fmt.Errorf("registering user %q: %w", user.Username, err)
	}
	p.logger.Info().Str("username", user.Username).Int("status", resp.StatusCode).Msg("Registered user")
	return nil
}
