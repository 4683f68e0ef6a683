package domain

import "errors"

// ErrStoreClosed is reported by operations that need a live store after teardown.
var ErrStoreClosed = errors.New("store closed")

// ErrPanic wraps a panic recovered from a caller-supplied asynchronous body.
var ErrPanic = errors.New("async body panicked")

// ErrContextClosed is reported when work is handed to a closed execution context.
var ErrContextClosed = errors.New("execution context closed")
