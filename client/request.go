package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/storefront-qa/api-contract-tests/framework"
)

// Request is a single request under construction. The With methods modify the request and
// return it so that calls can be chained; a Request must not be shared between tests.
type Request struct {
	client   *Client
	basePath string
	header   http.Header
	query    url.Values
	body     []byte
	bodyErr  error
	logger   framework.Logger
}

// WithToken authenticates the request with a bearer token. An empty token leaves the request
// unauthenticated.
func (r *Request) WithToken(token string) *Request {
	if token == "" {
		r.header.Del("Authorization")
		return r
	}
	return r.WithAuthorization("Bearer " + token)
}

// WithAuthorization sets the Authorization header verbatim.
func (r *Request) WithAuthorization(value string) *Request {
	r.header.Set("Authorization", value)
	return r
}

func (r *Request) WithHeader(name, value string) *Request {
	r.header.Set(name, value)
	return r
}

// WithJSONBody sets the request body to the JSON encoding of v. An encoding error is returned
// when the request is sent.
func (r *Request) WithJSONBody(v interface{}) *Request {
	r.body, r.bodyErr = json.Marshal(v)
	return r
}

func (r *Request) WithQuery(name, value string) *Request {
	if r.query == nil {
		r.query = make(url.Values)
	}
	r.query.Add(name, value)
	return r
}

// Logger returns the logger that the request and its response are written to.
func (r *Request) Logger() framework.Logger {
	return r.logger
}

func (r *Request) Get(ctx context.Context, subpath string) (*Response, error) {
	return r.Do(ctx, http.MethodGet, subpath)
}

func (r *Request) Post(ctx context.Context, subpath string) (*Response, error) {
	return r.Do(ctx, http.MethodPost, subpath)
}

func (r *Request) Delete(ctx context.Context, subpath string) (*Response, error) {
	return r.Do(ctx, http.MethodDelete, subpath)
}

// Do sends the request to basePath+subpath and reads the whole response. Any HTTP status is
// a successful result; only transport failures are returned as errors.
func (r *Request) Do(ctx context.Context, method, subpath string) (*Response, error) {
	if r.bodyErr != nil {
		return nil, fmt.Errorf("encoding request body: %w", r.bodyErr)
	}
	target := r.client.baseURL + joinPath(r.basePath, subpath)
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header = r.header.Clone()

	if err := r.client.wait(ctx); err != nil {
		return nil, err
	}

	if len(r.body) > 0 {
		r.logger.Printf(">>> %s %s %s", method, target, r.body)
	} else {
		r.logger.Printf(">>> %s %s", method, target)
	}
	resp, err := r.client.httpClient.Do(req)
	if err != nil {
		r.logger.Printf("<<< error: %s", err)
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body of %s %s: %w", method, target, err)
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		Method:     method,
		URL:        target,
	}
	r.logger.Printf("<<< %s", result)
	return result, nil
}

func joinPath(basePath, subpath string) string {
	switch {
	case subpath == "":
		return basePath
	case strings.HasPrefix(subpath, "/"):
		return basePath + subpath
	default:
		return basePath + "/" + subpath
	}
}
