package framework

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const statusPollInterval = time.Millisecond * 100

// TestHarness holds the run-wide facts about the service under test.
type TestHarness struct {
	serviceBaseURL string
	httpClient     *http.Client
	logger         Logger
}

// NewTestHarness creates a TestHarness instance, and verifies that the service under test is
// responding by polling its base URL until it returns any HTTP response. The service has no
// status resource, so a 401 or 404 counts as "up"; only connection-level failures and 5xx
// statuses are retried.
func NewTestHarness(
	ctx context.Context,
	serviceBaseURL string,
	httpClient *http.Client,
	statusQueryTimeout time.Duration,
	debugLogger Logger,
	startupOutput io.Writer,
) (*TestHarness, error) {
	if debugLogger == nil {
		debugLogger = NullLogger()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if startupOutput == nil {
		startupOutput = io.Discard
	}

	h := &TestHarness{
		serviceBaseURL: strings.TrimSuffix(serviceBaseURL, "/"),
		httpClient:     httpClient,
		logger:         debugLogger,
	}
	if err := h.awaitService(ctx, statusQueryTimeout, startupOutput); err != nil {
		return nil, err
	}
	return h, nil
}

// ServiceBaseURL returns the base URL of the service under test, without a trailing slash.
func (h *TestHarness) ServiceBaseURL() string {
	return h.serviceBaseURL
}

// HTTPClient returns the client that all requests to the service should go through.
func (h *TestHarness) HTTPClient() *http.Client {
	return h.httpClient
}

// Logger returns the run-wide debug logger.
func (h *TestHarness) Logger() Logger {
	return h.logger
}

func (h *TestHarness) awaitService(ctx context.Context, timeout time.Duration, output io.Writer) error {
	fmt.Fprintf(output, "Connecting to service at %s", h.serviceBaseURL)
	defer fmt.Fprintln(output)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		status, err := h.probe(ctx)
		if err == nil && status < 500 {
			h.logger.Printf("Service answered status query with HTTP %d", status)
			return nil
		}
		if err == nil {
			err = fmt.Errorf("service returned status code %d", status)
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("timed out, result of last query was: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(statusPollInterval):
		}
	}
}

func (h *TestHarness) probe(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.serviceBaseURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}
