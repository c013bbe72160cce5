package cleaner

import "errors"

// ErrPermissionDenied marks removals the OS rejected for lack of
// privileges.
var ErrPermissionDenied = errors.New("permission denied")

// CleanError records one directory child that was held back by policy
// or failed to delete. The wrapped error carries the cause and matches
// the safety sentinels via errors.Is.
type CleanError struct {
	Path string
	Err  error
}

func (e CleanError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e CleanError) Unwrap() error {
	return e.Err
}
