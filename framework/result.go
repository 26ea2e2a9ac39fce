package framework

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Counts returns the number of tests that passed, failed, and were skipped. Tests excluded by
// filters are not counted.
func (r Results) Counts() (passed, failed, skipped int) {
	failedIDs := make(map[string]bool, len(r.Failures))
	for _, f := range r.Failures {
		failedIDs[f.TestID.String()] = true
	}
	for _, t := range r.Tests {
		switch {
		case failedIDs[t.TestID.String()]:
			failed++
		case t.Skipped:
			skipped++
		default:
			passed++
		}
	}
	return
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// PrintResults writes the end-of-run summary: the counts, and a table of the failed tests
// with the first error of each.
func PrintResults(out io.Writer, results Results) {
	passed, failed, skipped := results.Counts()
	fmt.Fprintf(out, "Ran %d tests: %d passed, %d failed, %d skipped\n", passed+failed+skipped, passed, failed, skipped)
	if results.OK() {
		fmt.Fprintln(out, "All tests passed")
		return
	}

	table := tablewriter.NewTable(out,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
	)
	var rows [][]string
	for _, f := range results.Failures {
		rows = append(rows, []string{f.TestID.String(), firstErrorLine(f.Errors)})
	}
	table.Header([]string{"Failed test", "First error"})
	_ = table.Bulk(rows)
	_ = table.Render()
}

func firstErrorLine(errs []error) string {
	if len(errs) == 0 {
		return ""
	}
	lines := strings.Split(errs[0].Error(), "\n")
	// testify failures are a labeled block; the "Error:" line is the useful one
	for _, line := range lines {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "Error:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return ""
}
