package application

import (
	"errors"
	"fmt"
	"strings"

	"deckvault/internal/domain"
)

// Sentinel errors for common conditions
var (
	ErrNotFound           = errors.New("not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrPageNotFound       = errors.New("page not found")
	ErrInvalidProjectName = errors.New("invalid project name")
	ErrInvalidKey         = errors.New("invalid asset key")
	ErrSyncUnavailable    = errors.New("remote storage unavailable")
	ErrInconsistent       = errors.New("local and remote state inconsistent")
	ErrReferenceConflict  = errors.New("asset is still referenced")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ReferenceConflictError is returned when a caller attempts to delete
// an asset whose computed reference set is nonempty. Deleting such an
// asset would violate the deletion invariant, so the operation is
// refused.
type ReferenceConflictError struct {
	Kind  domain.AssetKind
	Key   string
	Pages []string
}

func (e *ReferenceConflictError) Error() string {
	return fmt.Sprintf("cannot delete %s/%s: still referenced by pages %s",
		e.Kind, e.Key, strings.Join(e.Pages, ", "))
}

func (e *ReferenceConflictError) Is(target error) bool {
	return target == ErrReferenceConflict
}

// SyncError wraps a remote-tier failure that did not prevent the
// local operation from completing. Callers surface it as a degraded-
// mode warning, never as a failed edit.
type SyncError struct {
	Op  string
	Key string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func (e *SyncError) Is(target error) bool {
	return target == ErrSyncUnavailable
}
