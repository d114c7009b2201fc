package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrSnapshotUnavailable signals that no contract snapshot could be fetched.
	ErrSnapshotUnavailable = errors.New("snapshot unavailable")
	// ErrUnsupportedFormat signals an unknown export format.
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrEmptyName signals a saved search without a name.
	ErrEmptyName = errors.New("name is required")
)
