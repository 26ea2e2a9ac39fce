package framework

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

// RegexFilters holds the -run and -skip criteria.
//
// MustMatch works like the -run flag of "go test": each pattern is split on slashes and each
// element must match the test name at the same depth, so "product/delete" selects the group
// "product" and then only the subtests of it whose names match "delete". MustNotMatch is
// applied to the whole slash-separated test ID.
type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

func (r RegexFilters) AsFilter(id TestID) bool {
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyMatchByLevel(id.Path)) &&
		!r.MustNotMatch.AnyMatch(id.String())
}

type RegexList struct {
	sources  []string
	patterns []*regexp.Regexp
	levels   [][]*regexp.Regexp
}

func (r RegexList) String() string {
	var ss []string
	for _, p := range r.sources {
		ss = append(ss, `"`+p+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (r *RegexList) Set(value string) error {
	rx, err := regexp.Compile(value)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	var level []*regexp.Regexp
	for _, part := range strings.Split(value, "/") {
		lrx, err := regexp.Compile(part)
		if err != nil {
			return fmt.Errorf("invalid regex element %q: %w", part, err)
		}
		level = append(level, lrx)
	}
	r.sources = append(r.sources, value)
	r.patterns = append(r.patterns, rx)
	r.levels = append(r.levels, level)
	return nil
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

func (r RegexList) AnyMatch(s string) bool {
	for _, p := range r.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// AnyMatchByLevel reports whether any pattern matches the path element by element. Elements
// deeper than the pattern are unconstrained.
func (r RegexList) AnyMatchByLevel(path []string) bool {
	for _, level := range r.levels {
		matched := true
		for i, name := range path {
			if i >= len(level) {
				break
			}
			if !level[i].MatchString(name) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

// PrintFilterDescription writes a human-readable summary of the -run and -skip criteria.
func PrintFilterDescription(out io.Writer, filters RegexFilters) {
	if !filters.MustMatch.IsDefined() && !filters.MustNotMatch.IsDefined() {
		return
	}
	fmt.Fprintln(out, "Some tests will be skipped based on the filter criteria for this test run:")
	if filters.MustMatch.IsDefined() {
		fmt.Fprintf(out, "  skip any not matching %s\n", filters.MustMatch)
	}
	if filters.MustNotMatch.IsDefined() {
		fmt.Fprintf(out, "  skip any matching %s\n", filters.MustNotMatch)
	}
	fmt.Fprintln(out)
}
