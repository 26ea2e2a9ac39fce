// Package lifecycle removes test data from the service so that each test group starts from a
// known state.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/storefront-qa/api-contract-tests/client"
	"github.com/storefront-qa/api-contract-tests/framework"
	"github.com/storefront-qa/api-contract-tests/servicedef"
	"github.com/storefront-qa/api-contract-tests/session"
)

// Manager lists and deletes entities with the admin session.
type Manager struct {
	client             *client.Client
	sessions           *session.Provider
	protectedUsernames map[string]bool
	logger             zerolog.Logger
	debug              framework.Logger
}

// NewManager creates a Manager. Users whose username is in protectedUsernames are never
// deleted.
func NewManager(c *client.Client, sessions *session.Provider, protectedUsernames []string, logger zerolog.Logger) *Manager {
	protected := make(map[string]bool, len(protectedUsernames))
	for _, u := range protectedUsernames {
		protected[u] = true
	}
	return &Manager{
		client:             c,
		sessions:           sessions,
		protectedUsernames: protected,
		logger:             logger,
	}
}

// WithDebugLogger returns a copy of the Manager that writes its requests and responses to debug,
// typically the logger of the current test.
func (m *Manager) WithDebugLogger(debug framework.Logger) *Manager {
	m1 := *m
	m1.debug = debug
	return &m1
}

// ResetProducts deletes every product and returns how many were deleted.
func (m *Manager) ResetProducts(ctx context.Context) (int, error) {
	var products []servicedef.Product
	token, err := m.list(ctx, servicedef.ProductPath, &products)
	if err != nil {
		return 0, err
	}
	var ids []ldvalue.OptionalInt
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return m.deleteAll(ctx, servicedef.ProductPath, token, ids)
}

// ResetUsers deletes every user except the protected ones and returns how many were deleted.
func (m *Manager) ResetUsers(ctx context.Context) (int, error) {
	var users []servicedef.User
	token, err := m.list(ctx, servicedef.UserPath, &users)
	if err != nil {
		return 0, err
	}
	var ids []ldvalue.OptionalInt
	for _, u := range users {
		if !m.protectedUsernames[u.Username] {
			ids = append(ids, u.ID)
		}
	}
	return m.deleteAll(ctx, servicedef.UserPath, token, ids)
}

// SeedProduct creates a product with the admin session and returns it with its assigned id.
func (m *Manager) SeedProduct(ctx context.Context, product servicedef.Product) (servicedef.Product, error) {
	admin, err := m.sessions.SessionFor(ctx, servicedef.RoleAdmin)
	if err != nil {
		return servicedef.Product{}, err
	}
	resp, err := m.client.NewRequest(servicedef.ProductPath, m.debug).
		WithToken(admin.Token).
		WithJSONBody(product).
		Post(ctx, "")
	if err != nil {
		return servicedef.Product{}, err
	}
	var created servicedef.Product
	if err := resp.DecodeJSON(&created); err != nil {
		return servicedef.Product{}, fmt.Errorf("creating product: %w", err)
	}
	if !created.ID.IsDefined() {
		return servicedef.Product{}, fmt.Errorf("created product has no id: %s", resp)
	}
	product.ID = created.ID
	return product, nil
}

func (m *Manager) list(ctx context.Context, basePath string, target interface{}) (string, error) {
	admin, err := m.sessions.SessionFor(ctx, servicedef.RoleAdmin)
	if err != nil {
		return "", err
	}
	resp, err := m.client.NewRequest(basePath, m.debug).WithToken(admin.Token).Get(ctx, "")
	if err != nil {
		return "", err
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("listing %s: %s", basePath, resp)
	}
	if err := resp.DecodeJSON(target); err != nil {
		return "", fmt.Errorf("listing %s: %w", basePath, err)
	}
	return admin.Token, nil
}

// deleteAll deletes every listed entity. Entities listed without an id cannot be deleted and
// are reported in the returned error.
func (m *Manager) deleteAll(ctx context.Context, basePath, token string, ids []ldvalue.OptionalInt) (int, error) {
	var errs []error
	deleted := 0
	for _, optID := range ids {
		if !optID.IsDefined() {
			errs = append(errs, fmt.Errorf("listing %s returned an entity without an id", basePath))
			continue
		}
		id := optID.IntValue()
		resp, err := m.client.NewRequest(basePath, m.debug).WithToken(token).Delete(ctx, strconv.Itoa(id))
		switch {
		case err != nil:
			errs = append(errs, err)
		case resp.StatusCode >= 300:
			errs = append(errs, fmt.Errorf("deleting %s/%d: %s", basePath, id, resp))
		default:
			deleted++
		}
	}
	m.logger.Info().Str("resource", basePath).Int("deleted", deleted).Int("failed", len(errs)).Msg("Reset test data")
	return deleted, errors.Join(errs...)
}
