package store

import "errors"

// ErrMalformedBody is returned when a body is not valid JSON text.
// Capture attempts with invalid JSON must be rejected before storage.
var ErrMalformedBody = errors.New("store: body is not valid JSON")

// ErrUnknownDigest is returned when a capture references a blob digest
// that has not been stored.
var ErrUnknownDigest = errors.New("store: blob digest not found")

// ErrInvalidStatus is returned when an HTTP status code is outside 100-599.
var ErrInvalidStatus = errors.New("store: status code out of range")
