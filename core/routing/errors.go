package routing

import "errors"

var (
	// Lookup errors
	ErrIndexNotFound = errors.New("index not found")
	ErrShardNotFound = errors.New("shard not found")

	// Snapshot construction errors
	ErrIllegalTransition = errors.New("illegal state transition")
	ErrMultiplePrimaries = errors.New("more than one primary copy")
	ErrInvalidLayout     = errors.New("invalid index layout")

	// Router errors
	ErrNoSnapshot    = errors.New("no routing snapshot")
	ErrStaleSnapshot = errors.New("snapshot version is not newer than current")
	ErrNilSnapshot   = errors.New("nil routing snapshot")
)
