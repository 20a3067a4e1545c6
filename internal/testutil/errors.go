// Package testutil provides shared test helpers for gitbatch.
//
// It holds mock errors and fixtures for tests that need a real git
// repository. It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
var (
	// ErrMockGitFailed simulates a failing git command.
	ErrMockGitFailed = errors.New("git command failed")

	// ErrMockPushFailed simulates a push that the remote rejected.
	ErrMockPushFailed = errors.New("push failed")
)
