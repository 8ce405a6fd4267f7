package types

import "errors"

var (
	// Lock errors
	ErrLockConflict     = errors.New("file is locked by another holder")
	ErrPermissionDenied = errors.New("file is locked by another holder, permission denied")

	// File errors
	ErrNotFound      = errors.New("file not found")
	ErrInvalidName   = errors.New("invalid file name")
	ErrInvalidOffset = errors.New("invalid read offset")
	ErrChunkTooLarge = errors.New("chunk larger than server limit")

	// Session errors
	ErrUnauthenticated = errors.New("invalid or missing auth key")
	ErrTransport       = errors.New("transport failure")
)
