// Package framework contains the low-level implementation of test harness infrastructure
// that is not specific to the API being tested.
//
// The general model is:
//
// 1. The test harness drives a remote service over HTTP. TestHarness only knows the service's
// base URL and waits at startup until the service is answering requests at all.
//
// 2. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier, to accumulate
// success/failure results, to capture debug output, and to defer cleanup work.
//
// 3. Test results are reported as they happen through a TestLogger, and summarized at the
// end of the run.
//
// The domain-specific code that knows what is being tested is responsible for building the
// requests, keeping track of sessions and test data, and providing a domain-specific test API
// on top of the test context.
package framework
