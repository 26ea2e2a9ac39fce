package session

import (
	"context"

	"github.com/storefront-qa/api-contract-tests/client"
	"github.com/storefront-qa/api-contract-tests/framework"
	"github.com/storefront-qa/api-contract-tests/servicedef"
)

// AuthClient performs the login handshake with the token endpoint.
type AuthClient struct {
	client *client.Client
}

func NewAuthClient(c *client.Client) *AuthClient {
	return &AuthClient{client: c}
}

// Login exchanges the user's credentials for a bearer token. A rejected login is not an error:
// the token is whatever the response carried, usually empty, and the response is returned so
// that the caller can check it. An error means that no response was received at all.
func (a *AuthClient) Login(ctx context.Context, user servicedef.User, logger framework.Logger) (string, *client.Response, error) {
	req := a.client.NewRequest(servicedef.TokenPath, logger).
		WithJSONBody(servicedef.CredentialsOf(user))
	resp, err := req.Post(ctx, "")
	if err != nil {
		return "", nil, err
	}
	var tr servicedef.TokenResponse
	if len(resp.Body) > 0 {
		if err := resp.DecodeJSON(&tr); err != nil {
			req.Logger().Printf("Could not read token of %q: %s", user.Username, err)
		}
	}
	return tr.JWT, resp, nil
}
