// Package testutil provides shared test infrastructure: a mock platform
// API server with request capture and canned envelope replies.
//
// This package is only imported from _test.go files.
package testutil
