package framework

// TestLogger receives progress notifications while the test suite runs.
type TestLogger interface {
	// TestStarted is called before a test's filter check, so it is also called for tests that
	// will be skipped.
	TestStarted(id TestID)
	// TestError is called for every failure as soon as it is reported.
	TestError(id TestID, err error)
	// TestFinished is called when a test that was not skipped returns; debugOutput holds
	// whatever the test logged to its debug logger.
	TestFinished(id TestID, failed bool, debugOutput CapturedOutput)
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                        {}
func (n nullTestLogger) TestError(TestID, error)                   {}
func (n nullTestLogger) TestFinished(TestID, bool, CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                {}
