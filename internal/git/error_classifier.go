// Package git provides Git operations for gitbatch.
// This file contains error classification by stderr patterns.
package git

import "strings"

// PatternMatcher checks if a string contains any of a list of patterns.
// Matching is case-insensitive.
type PatternMatcher struct {
	patterns []string
}

// NewPatternMatcher creates a PatternMatcher. Patterns must be lowercase.
func NewPatternMatcher(patterns ...string) *PatternMatcher {
	return &PatternMatcher{patterns: patterns}
}

// Matches returns true if the input string contains any of the patterns.
func (m *PatternMatcher) Matches(s string) bool {
	lower := strings.ToLower(s)
	for _, pattern := range m.patterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

//nolint:gochecknoglobals // Package-level immutable pattern matchers
var (
	authPatterns = NewPatternMatcher(
		"authentication failed",
		"could not read username",
		"could not read password",
		"permission denied",
		"invalid username or password",
		"access denied",
		"authentication required",
		"bad credentials",
		"invalid token",
		"token expired",
	)

	networkPatterns = NewPatternMatcher(
		"could not resolve host",
		"connection refused",
		"connection reset",
		"network is unreachable",
		"connection timed out",
		"operation timed out",
		"unable to access",
		"no route to host",
		"failed to connect",
		"the remote end hung up unexpectedly",
		"timeout",
	)

	nonFastForwardPatterns = NewPatternMatcher(
		"non-fast-forward",
		"failed to push some refs",
		"updates were rejected",
		"fetch first",
		"tip of your current branch is behind",
	)

	lockFilePatterns = NewPatternMatcher(
		"index.lock",
		".lock': file exists",
		"another git process seems to be running",
		"unable to create '",
	)
)

// MatchesAuthError checks if the error string indicates an authentication error.
func MatchesAuthError(errStr string) bool {
	return authPatterns.Matches(errStr)
}

// MatchesNetworkError checks if the error string indicates a network error.
func MatchesNetworkError(errStr string) bool {
	return networkPatterns.Matches(errStr)
}

// MatchesNonFastForwardError checks if the error string indicates a rejected push.
func MatchesNonFastForwardError(errStr string) bool {
	return nonFastForwardPatterns.Matches(errStr)
}

// MatchesLockFileError checks if the error string indicates that another git
// process holds a repository lock file.
func MatchesLockFileError(errStr string) bool {
	return lockFilePatterns.Matches(errStr)
}
