package errors

import "fmt"

// BatchError reports the first batch that failed during a batched commit.
// Batches before Index were committed and stay committed; batches after it
// were never attempted.
type BatchError struct {
	// Index is the 1-based position of the failed batch.
	Index int
	// Total is the number of planned batches.
	Total int
	// Completed is the number of batches committed before the failure.
	Completed int
	// Phase names the step that failed ("staging", "committing", "pushing").
	Phase string
	// Err is the underlying collaborator error.
	Err error
}

// Error implements error.
func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d/%d failed while %s (%d completed): %v",
		e.Index, e.Total, e.Phase, e.Completed, e.Err)
}

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (e *BatchError) Unwrap() error {
	return e.Err
}

// Is reports ErrBatchCommitFailed for every BatchError.
func (e *BatchError) Is(target error) bool {
	return target == ErrBatchCommitFailed
}
