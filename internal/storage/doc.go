// Package storage provides persistence for doorlock state.
//
// The BBolt database uses two buckets:
//   - meta: schema version and created/modified timestamps
//   - state: lock keys (unlock flag, lockout deadline, attempt count)
//
// Values are stored as plain strings. Absence of a key means the value
// was never set or has been reset.
//
// Memory offers the same Get/Set/Remove surface for tests and ephemeral
// runs. BBolt provides ACID transactions, file locking, and corruption
// detection.
package storage
