package main

import (
	"testing"

	"github.com/storefront-qa/api-contract-tests/config"
	"github.com/storefront-qa/api-contract-tests/framework"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagsOverrideConfig(t *testing.T) {
	cfg := &config.Config{ServiceURL: "http://localhost:80", StatusQueryTimeout: 1}
	var p commandParams
	ok := p.Read([]string{"harness", "-url", "http://svc:8080", "-strict-roles", "-rps", "2.5", "-run", "product"}, cfg)
	require.True(t, ok)

	assert.Equal(t, "http://svc:8080", cfg.ServiceURL)
	assert.True(t, cfg.StrictRoles)
	assert.False(t, cfg.StrictSchemas)
	assert.Equal(t, 2.5, cfg.RequestsPerSecond)
	assert.True(t, p.filters.MustMatch.IsDefined())
}

func TestConfigValuesAreFlagDefaults(t *testing.T) {
	cfg := &config.Config{ServiceURL: "http://svc", StrictSchemas: true, StatusQueryTimeout: 1}
	var p commandParams
	require.True(t, p.Read([]string{"harness"}, cfg))
	assert.Equal(t, "http://svc", p.serviceURL)
	assert.True(t, p.strictSchemas)
}

func TestRerunCommand(t *testing.T) {
	p := commandParams{serviceURL: "http://svc:8080", strictSchemas: true}
	failures := []framework.TestResult{
		{TestID: framework.TestID{Path: []string{"product", "create valid", "as user: price=25.5"}}},
	}
	assert.Equal(t,
		`./harness -url http://svc:8080 -strict-schemas -debug -run '^product$/^create valid$/^as user: price=25\.5$'`,
		p.rerunCommand("./harness", failures))
}

func TestExactTestPatternSelectsOnlyThatTest(t *testing.T) {
	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set(exactTestPattern(framework.TestID{Path: []string{"product", "delete"}})))

	assert.True(t, filters.AsFilter(framework.TestID{Path: []string{"product"}}))
	assert.True(t, filters.AsFilter(framework.TestID{Path: []string{"product", "delete", "as guest"}}))
	assert.False(t, filters.AsFilter(framework.TestID{Path: []string{"product", "delete non-existent"}}))
	assert.False(t, filters.AsFilter(framework.TestID{Path: []string{"user"}}))
}

func TestExactTestPatternHandlesSlashInName(t *testing.T) {
	id := framework.TestID{Path: []string{"product", "create valid", `as user: description="1/2 inch cable"`}}
	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set(exactTestPattern(id)))

	assert.True(t, filters.AsFilter(framework.TestID{Path: []string{"product"}}))
	assert.True(t, filters.AsFilter(framework.TestID{Path: []string{"product", "create valid"}}))
	assert.True(t, filters.AsFilter(id))
	assert.False(t, filters.AsFilter(framework.TestID{Path: []string{"product", "create valid", "as admin"}}))
}
