package errors

import "fmt"

// Wrap annotates err with msg and keeps the chain intact for errors.Is.
// A nil err yields nil, so it can be used inline on return statements:
//
//	return errors.Wrap(runner.Commit(ctx, msg), "commit batch")
//
// Wrap only at package boundaries; wrapping at every call level produces
// unreadable messages.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a formatted message.
//
//	return errors.Wrapf(err, "stage %d files", len(paths))
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
