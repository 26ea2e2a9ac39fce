package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/storefront-qa/api-contract-tests/config"
	"github.com/storefront-qa/api-contract-tests/framework"

	"github.com/alessio/shellescape"
)

// commandParams are the command-line flags. Their defaults come from the environment
// configuration, so a flag always wins over the corresponding variable.
type commandParams struct {
	serviceURL        string
	filters           framework.RegexFilters
	debug             bool
	debugAll          bool
	strictRoles       bool
	strictSchemas     bool
	requestsPerSecond float64
}

func (c *commandParams) Read(args []string, cfg *config.Config) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.serviceURL, "url", cfg.ServiceURL, "base URL of the service under test")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	fs.BoolVar(&c.strictRoles, "strict-roles", cfg.StrictRoles, "skip scenarios whose role has no canonical user")
	fs.BoolVar(&c.strictSchemas, "strict-schemas", cfg.StrictSchemas, "stop a test at the first schema mismatch")
	fs.Float64Var(&c.requestsPerSecond, "rps", cfg.RequestsPerSecond, "maximum requests per second, 0 for unlimited")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}

	cfg.ServiceURL = c.serviceURL
	cfg.StrictRoles = c.strictRoles
	cfg.StrictSchemas = c.strictSchemas
	cfg.RequestsPerSecond = c.requestsPerSecond
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	return true
}

// rerunCommand returns a command line that runs only the given failed tests, with the same
// settings as this run.
func (c *commandParams) rerunCommand(program string, failures []framework.TestResult) string {
	var b commandBuilder
	b.add(program, "-url", c.serviceURL)
	if c.strictRoles {
		b.add("-strict-roles")
	}
	if c.strictSchemas {
		b.add("-strict-schemas")
	}
	if c.requestsPerSecond > 0 {
		b.add("-rps", strconv.FormatFloat(c.requestsPerSecond, 'f', -1, 64))
	}
	b.add("-debug")
	for _, f := range failures {
		b.add("-run", exactTestPattern(f.TestID))
	}
	return b.String()
}

// exactTestPattern builds a -run pattern that matches id and its subtests only. The -run
// parser splits patterns into levels at every slash, so a slash inside a test name is matched
// with "." instead.
func exactTestPattern(id framework.TestID) string {
	parts := make([]string, 0, len(id.Path))
	for _, name := range id.Path {
		quoted := strings.ReplaceAll(regexp.QuoteMeta(name), "/", ".")
		parts = append(parts, "^"+quoted+"$")
	}
	return strings.Join(parts, "/")
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
