package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/storefront-qa/api-contract-tests/apitests"
	"github.com/storefront-qa/api-contract-tests/client"
	"github.com/storefront-qa/api-contract-tests/config"
	"github.com/storefront-qa/api-contract-tests/framework"
	"github.com/storefront-qa/api-contract-tests/lifecycle"
	"github.com/storefront-qa/api-contract-tests/logging"
	"github.com/storefront-qa/api-contract-tests/session"
	"github.com/storefront-qa/api-contract-tests/verify"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args))
}

func run(ctx context.Context, args []string) int {
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err)
		return 1
	}

	var params commandParams
	if !params.Read(args, cfg) {
		return 1
	}

	logLevel := cfg.LogLevel
	if params.debugAll {
		logLevel = "debug"
	}
	logger := logging.New(logging.Options{Level: logLevel, Pretty: cfg.LogPretty})

	var mainDebugLogger framework.Logger = framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = &logger
	}

	harness, err := framework.NewTestHarness(
		ctx,
		cfg.ServiceURL,
		http.DefaultClient,
		cfg.StatusQueryTimeout,
		mainDebugLogger,
		os.Stdout,
	)
	if err != nil {
		logger.Error().Err(err).Str("url", cfg.ServiceURL).Msg("Service under test is not available")
		return 1
	}

	schemas, err := verify.LoadSchemas(cfg.StrictSchemas)
	if err != nil {
		logger.Error().Err(err).Msg("Could not load response schemas")
		return 1
	}

	c := client.New(
		harness.ServiceBaseURL(),
		client.WithHTTPClient(harness.HTTPClient()),
		client.WithRateLimit(cfg.RequestsPerSecond),
		client.WithLogger(harness.Logger()),
	)
	sessions := session.NewProvider(c,
		session.WithStrictRoles(cfg.StrictRoles),
		session.WithLogger(logger),
	)
	env := &apitests.Environment{
		Context:   ctx,
		Client:    c,
		Sessions:  sessions,
		Lifecycle: lifecycle.NewManager(c, sessions, cfg.ProtectedUsernames, logger),
		Schemas:   schemas,
	}

	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, params.filters)

	logger.Info().
		Str("url", cfg.ServiceURL).
		Bool("strictRoles", cfg.StrictRoles).
		Bool("strictSchemas", cfg.StrictSchemas).
		Float64("rps", cfg.RequestsPerSecond).
		Msg("Running test suite")

	testLogger := &ConsoleTestLogger{
		Out:                  os.Stdout,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results := apitests.RunTestSuite(env, params.filters.AsFilter, testLogger)

	fmt.Println()
	framework.PrintResults(os.Stdout, results)
	if !results.OK() {
		fmt.Println()
		fmt.Println("To rerun the failed tests:")
		fmt.Println("  " + params.rerunCommand(args[0], results.Failures))
		return 1
	}
	return 0
}
