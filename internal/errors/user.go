package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing text.
// A slice rather than a map because lookup goes through errors.Is, and the
// first match wins, so more specific sentinels come first.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Batching
	// ===================
	{
		err: ErrBatchCommitFailed,
		info: ErrorInfo{
			Message: "A batch failed. Earlier batches were committed and were not rolled back.",
			Action:  "Inspect 'git log' and 'git status', fix the cause, then run 'gitbatch commit' again for the remaining files.",
		},
	},
	{
		err: ErrNoChanges,
		info: ErrorInfo{
			Message: "Nothing to commit.",
			Action:  "",
		},
	},
	{
		err: ErrStageFailed,
		info: ErrorInfo{
			Message: "Files could not be staged.",
			Action:  "Check that the listed paths still exist and are not ignored.",
		},
	},
	{
		err: ErrLockHeld,
		info: ErrorInfo{
			Message: "Another gitbatch process is working on this repository.",
			Action:  "Wait for it to finish, or remove .git/gitbatch.lock if no process is running.",
		},
	},
	{
		err: ErrMessageGeneration,
		info: ErrorInfo{
			Message: "The commit message generator failed.",
			Action:  "Pass a message with -m or check the 'message.command' setting.",
		},
	},

	// ===================
	// Git Operations
	// ===================
	{
		err: ErrPushAuthFailed,
		info: ErrorInfo{
			Message: "Git push failed due to authentication error.",
			Action:  "Check your SSH keys or credential helper for the remote.",
		},
	},
	{
		err: ErrPushNetworkFailed,
		info: ErrorInfo{
			Message: "Git push failed due to network error.",
			Action:  "Check your connection; committed batches can be pushed later with 'git push'.",
		},
	},
	{
		err: ErrNotGitRepo,
		info: ErrorInfo{
			Message: "The specified path is not a git repository.",
			Action:  "Run gitbatch inside a repository or pass --repo.",
		},
	},
	{
		err: ErrGitOperation,
		info: ErrorInfo{
			Message: "Git operation failed. Check your repository state.",
			Action:  "Run 'git status' and resolve any conflicts or lock files.",
		},
	},

	// ===================
	// Configuration
	// ===================
	{
		err: ErrConfigNil,
		info: ErrorInfo{
			Message: "Configuration is not loaded.",
			Action:  "Ensure .gitbatch.yaml is valid YAML.",
		},
	},
	{
		err: ErrConfigInvalidBatch,
		info: ErrorInfo{
			Message: "Invalid batch configuration.",
			Action:  "Check the 'batch' section of your config file.",
		},
	},
	{
		err: ErrConfigInvalidGit,
		info: ErrorInfo{
			Message: "Invalid git configuration.",
			Action:  "Check the 'git' section of your config file.",
		},
	},
	{
		err: ErrConfigInvalidMessage,
		info: ErrorInfo{
			Message: "Invalid message configuration.",
			Action:  "Check the 'message' section of your config file.",
		},
	},
	{
		err: ErrConfigInvalidWatch,
		info: ErrorInfo{
			Message: "Invalid watch configuration.",
			Action:  "Check the 'watch' section of your config file.",
		},
	},
	{
		err: ErrInvalidSize,
		info: ErrorInfo{
			Message: "Invalid size value.",
			Action:  "Use values like '10MB', '512KiB' or a plain byte count.",
		},
	},
	{
		err: ErrValueOutOfRange,
		info: ErrorInfo{
			Message: "Value is outside the allowed range.",
			Action:  "Check the documentation for valid value ranges.",
		},
	},
	{
		err: ErrEmptyValue,
		info: ErrorInfo{
			Message: "A required value was not provided.",
			Action:  "Provide the required value and try again.",
		},
	},

	// ===================
	// User Interaction
	// ===================
	{
		err: ErrOperationCanceled,
		info: ErrorInfo{
			Message: "Operation was canceled.",
			Action:  "",
		},
	},
	{
		err: ErrNonInteractiveMode,
		info: ErrorInfo{
			Message: "This operation requires confirmation in non-interactive mode.",
			Action:  "Use --yes to skip confirmation.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Unknown output format.",
			Action:  "Use one of: text, json, yaml, toml.",
		},
	},
}

// getErrorInfo looks up the ErrorInfo for a given error.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
