// Package client builds and sends JSON requests to the service under test.
//
// A Client carries the settings of the run (base URL, HTTP client, pacing). Each test creates
// its own Request with NewRequest, adds a token, query parameters or a body, and sends it with
// one of the verb methods. Responses are read completely so that validators can inspect the
// status, headers and body as often as they like.
package client
