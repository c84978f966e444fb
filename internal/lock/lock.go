// Package lock serializes mutating operations per doctor.
package lock

import "context"

// Locker acquires an exclusive lock for key. The returned function releases it
// and must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
