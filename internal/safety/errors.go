package safety

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification and validation failures. Callers
// match them with errors.Is; the typed errors below carry the details.
var (
	// ErrPathNotFound means the path does not exist on disk.
	ErrPathNotFound = errors.New("path not found")

	// ErrProtectedPath means the path classifies as Danger. No policy
	// setting makes it deletable.
	ErrProtectedPath = errors.New("protected path")

	// ErrSafetyViolation means the path's level exceeds what the
	// caller's cleanup level permits.
	ErrSafetyViolation = errors.New("safety level mismatch")

	// ErrProcessRunning is advisory: a running process appears to be
	// using the path. Callers decide whether to treat it as blocking.
	ErrProcessRunning = errors.New("running process detected")

	// ErrCloudSyncInProgress is advisory: the path is inside a cloud
	// sync directory that has not finished syncing.
	ErrCloudSyncInProgress = errors.New("cloud sync in progress")
)

// ProtectedPathError reports an attempt to act on a Danger-classified path.
type ProtectedPathError struct {
	Path   string
	Reason string
}

func (e *ProtectedPathError) Error() string {
	return fmt.Sprintf("protected path: %s - %s", e.Path, e.Reason)
}

func (e *ProtectedPathError) Is(target error) bool {
	return target == ErrProtectedPath
}

// LevelMismatchError reports a classification that exceeds the caller's
// cleanup policy.
type LevelMismatchError struct {
	Path    string
	Level   Level
	Allowed Level
}

func (e *LevelMismatchError) Error() string {
	return fmt.Sprintf("safety level %s required for %s, but cleanup level only allows %s",
		e.Level, e.Path, e.Allowed)
}

func (e *LevelMismatchError) Is(target error) bool {
	return target == ErrSafetyViolation
}
