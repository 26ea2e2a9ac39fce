package framework

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHarnessAcceptsAnyNonServerErrorStatus(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(404))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		var out bytes.Buffer
		h, err := NewTestHarness(context.Background(), server.URL+"/", nil, time.Second, nil, &out)
		require.NoError(t, err)
		assert.Equal(t, server.URL, h.ServiceBaseURL())
		assert.Contains(t, out.String(), "Connecting to service at "+server.URL)
		assert.Len(t, requestsCh, 1)
	})
}

func TestHarnessTimesOutOnServerErrors(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(503), func(server *httptest.Server) {
		_, err := NewTestHarness(context.Background(), server.URL, nil, time.Millisecond*250, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status code 503")
	})
}

func TestHarnessStopsWhenContextIsCancelled(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(500), func(server *httptest.Server) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewTestHarness(ctx, server.URL, nil, time.Minute, nil, nil)
		require.Error(t, err)
	})
}

func TestHarnessUsesDefaultHTTPClientWithoutTimeout(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(200), func(server *httptest.Server) {
		h, err := NewTestHarness(context.Background(), server.URL, nil, time.Second, nil, nil)
		require.NoError(t, err)
		assert.Same(t, http.DefaultClient, h.HTTPClient())
		assert.Zero(t, h.HTTPClient().Timeout)
	})
}
