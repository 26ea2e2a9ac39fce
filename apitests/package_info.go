// Package apitests contains the API contract tests themselves and their supporting API.
//
// Test harness infrastructure that is not specific to the User/Product service, such as the
// test context, filters and results, is in the lower-level framework package. Requests,
// sessions, assertions and test data handling are in the client, session, verify and
// lifecycle packages.
package apitests
