package domain

import "errors"

// ErrKeyNotFound is returned when a key cannot be found in a key-value store.
var ErrKeyNotFound = errors.New("key not found")

// ErrAuthFailed is returned when the authentication endpoint rejects a request.
var ErrAuthFailed = errors.New("authentication failed")

// ErrNotAuthenticated is returned when an operation requires a session but none is held.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrStorage marks failures of the durable session storage, as opposed to the backend.
var ErrStorage = errors.New("session storage failed")

// ErrMalformedSession is returned when a persisted session payload cannot be decoded.
var ErrMalformedSession = errors.New("malformed session payload")
