package lock

import "errors"

// ErrAlreadyLocked is returned by Acquire when another live lock already
// holds the seat.
var ErrAlreadyLocked = errors.New("lock: seat already locked")

// ErrInvalidLock is returned by Extend when the caller's lock_id/user_id no
// longer matches the current lease, or the lease has expired. The caller
// must not assume the lock is still alive after this error.
var ErrInvalidLock = errors.New("lock: invalid or expired lock")

// ErrNotOwned is returned by Release when the caller does not hold the
// current lease on the seat.
var ErrNotOwned = errors.New("lock: seat not owned by caller")

// ErrTransient wraps registry-side failures (timeouts, connection errors).
// The core never retries internally; callers may.
var ErrTransient = errors.New("lock: transient registry error")
