package session

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/rs/zerolog"

	"github.com/storefront-qa/api-contract-tests/client"
	"github.com/storefront-qa/api-contract-tests/fixtures"
	"github.com/storefront-qa/api-contract-tests/framework"
	"github.com/storefront-qa/api-contract-tests/mockservice"
	"github.com/storefront-qa/api-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withService(t *testing.T, action func(*mockservice.Service, *client.Client)) {
	service := mockservice.New(mockservice.Options{})
	httphelpers.WithServer(service, func(server *httptest.Server) {
		action(service, client.New(server.URL))
	})
}

func TestAdminSessionIsCached(t *testing.T) {
	withService(t, func(service *mockservice.Service, c *client.Client) {
		issued := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		p := NewProvider(c, WithClock(func() time.Time { return issued }))

		s1, err := p.SessionFor(context.Background(), servicedef.RoleAdmin)
		require.NoError(t, err)
		s2, err := p.SessionFor(context.Background(), servicedef.RoleAdmin)
		require.NoError(t, err)

		assert.True(t, s1.Authenticated())
		assert.Equal(t, s1.Token, s2.Token)
		assert.Equal(t, "admin", s1.User.Username)
		assert.Equal(t, issued, s1.IssuedAt)
		assert.Equal(t, 1, service.LoginCount("admin"))
	})
}

func TestRegularUserIsRegisteredOnce(t *testing.T) {
	withService(t, func(service *mockservice.Service, c *client.Client) {
		p := NewProvider(c)
		s, err := p.SessionFor(context.Background(), servicedef.RoleUser)
		require.NoError(t, err)
		assert.True(t, s.Authenticated())
		assert.Equal(t, servicedef.RoleUser, s.User.Role)

		var usernames []string
		for _, u := range service.Users() {
			usernames = append(usernames, u.Username)
		}
		assert.ElementsMatch(t, []string{"admin", "user"}, usernames)

		_, err = p.SessionFor(context.Background(), servicedef.RoleUser)
		require.NoError(t, err)
		assert.Equal(t, 1, service.LoginCount("user"))
		assert.Equal(t, 1, service.LoginCount("admin"))
		assert.Len(t, p.Sessions(), 2)
	})
}

func TestExistingRegularUserIsNotRegisteredAgain(t *testing.T) {
	withService(t, func(service *mockservice.Service, c *client.Client) {
		_, err := NewProvider(c).SessionFor(context.Background(), servicedef.RoleUser)
		require.NoError(t, err)

		// a second run against the same service
		s, err := NewProvider(c).SessionFor(context.Background(), servicedef.RoleUser)
		require.NoError(t, err)
		assert.True(t, s.Authenticated())
		assert.Len(t, service.Users(), 2)
	})
}

func TestUnknownRoleFailSoft(t *testing.T) {
	withService(t, func(service *mockservice.Service, c *client.Client) {
		var buf bytes.Buffer
		p := NewProvider(c, WithLogger(zerolog.New(&buf)))
		s, err := p.SessionFor(context.Background(), "guest")
		require.NoError(t, err)
		assert.False(t, s.Authenticated())
		assert.Equal(t, servicedef.User{}, s.User)
		assert.Contains(t, buf.String(), `"role":"guest"`)
		assert.Empty(t, p.Sessions())
	})
}

func TestUnknownRoleStrict(t *testing.T) {
	p := NewProvider(client.New("http://localhost"), WithStrictRoles(true))
	_, err := p.SessionFor(context.Background(), "guest")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownRole))
}

func TestFailedLoginIsCachedAsUnauthenticated(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(
		httphelpers.HandlerWithResponse(400, nil, []byte(`{"code":400,"reason":"Bad Request"}`)))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		p := NewProvider(client.New(server.URL))
		s, err := p.SessionFor(context.Background(), servicedef.RoleAdmin)
		require.NoError(t, err)
		assert.False(t, s.Authenticated())

		_, err = p.SessionFor(context.Background(), servicedef.RoleAdmin)
		require.NoError(t, err)
		assert.Len(t, requestsCh, 1)
	})
}

func TestTransportErrorIsNotCached(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	url := server.URL
	server.Close()

	p := NewProvider(client.New(url))
	_, err := p.SessionFor(context.Background(), servicedef.RoleAdmin)
	require.Error(t, err)
	assert.Empty(t, p.Sessions())
}

func TestConcurrentCallersShareOneLogin(t *testing.T) {
	withService(t, func(service *mockservice.Service, c *client.Client) {
		p := NewProvider(c)
		var wg sync.WaitGroup
		tokens := make([]string, 8)
		for i := range tokens {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				s, err := p.SessionFor(context.Background(), servicedef.RoleAdmin)
				if err == nil {
					tokens[i] = s.Token
				}
			}(i)
		}
		wg.Wait()
		for _, tok := range tokens {
			assert.Equal(t, tokens[0], tok)
		}
		assert.Equal(t, 1, service.LoginCount("admin"))
	})
}

func TestLogin(t *testing.T) {
	withService(t, func(service *mockservice.Service, c *client.Client) {
		auth := NewAuthClient(c)

		token, resp, err := auth.Login(context.Background(), fixtures.AdminUser(), nil)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, 200, resp.StatusCode)

		token, resp, err = auth.Login(context.Background(), fixtures.WrongPasswordUser(), nil)
		require.NoError(t, err)
		assert.Empty(t, token)
		assert.Equal(t, 400, resp.StatusCode)
	})
}

func TestLoginLogsUnreadableTokenResponse(t *testing.T) {
	handler := httphelpers.HandlerWithResponse(200, nil, []byte(`{"jwt":`))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		var logger framework.CapturingLogger
		token, resp, err := NewAuthClient(client.New(server.URL)).Login(context.Background(), fixtures.AdminUser(), &logger)
		require.NoError(t, err)
		assert.Empty(t, token)
		assert.Equal(t, 200, resp.StatusCode)

		output := logger.Output()
		require.Len(t, output, 3)
		assert.Contains(t, output[2].Message, `Could not read token of "admin"`)
		assert.Contains(t, output[2].Message, "malformed JSON")
	})
}
