package membus

import (
	"errors"
	"fmt"
)

// ErrImageSizeOutOfRange is wrapped into the error LoadBIOS/LoadCartridge
// return when the supplied image doesn't fit its region, letting cmd/goba
// distinguish it (exit code 2) from other load failures (exit code 1).
var ErrImageSizeOutOfRange = errors.New("image size out of range")

// MapErrorKind distinguishes the two bus fault kinds from SPEC_FULL.md §7.
type MapErrorKind int

const (
	OutOfBounds MapErrorKind = iota
	MapNotFound
)

// MapError is returned by every width-typed bus operation when an access
// cannot be routed or falls outside its resolved region's backing slice.
// Per §7, this is an ordinary, expected error a running ROM can provoke;
// callers substitute a safe value and log rather than panicking.
type MapError struct {
	Kind    MapErrorKind
	Address uint32
	Index   int
}

func (e *MapError) Error() string {
	switch e.Kind {
	case OutOfBounds:
		return fmt.Sprintf("membus: address 0x%08X out of bounds (index %d)", e.Address, e.Index)
	case MapNotFound:
		return fmt.Sprintf("membus: no mapping for address 0x%08X", e.Address)
	default:
		return fmt.Sprintf("membus: unknown fault at 0x%08X", e.Address)
	}
}
