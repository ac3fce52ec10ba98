package stmtcache

import "fmt"

type constError string

const (
	// ErrInvalidCapacity may be returned from [New].
	ErrInvalidCapacity = constError("invalid capacity")
	// ErrInvalidKey may be returned from [NewKey],
	// and is the panic value of the typed key constructors
	// when given empty SQL text, and of [Cache.Put]
	// when given the zero [Key].
	ErrInvalidKey = constError("invalid key")
)

func (errStr constError) Error() string { return string(errStr) }

func minCapacityError(capacity int) error {
	return fmt.Errorf(
		"%w: must be >=%d but %d was requested",
		ErrInvalidCapacity, MinimumCapacity, capacity)
}

func invalidKeyError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidKey, reason)
}

func emptySQLError() error {
	return invalidKeyError("sql text must not be empty")
}

func zeroKeyError() error {
	return invalidKeyError("the zero Key cannot be cached")
}
