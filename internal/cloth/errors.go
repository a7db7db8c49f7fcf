package cloth

import "errors"

var (
	// ErrInvalidGrid indicates grid dimensions that would produce no points.
	ErrInvalidGrid = errors.New("cloth: invalid grid dimensions")

	// ErrInvalidParameter indicates a mass, stiffness or damping value out of range.
	ErrInvalidParameter = errors.New("cloth: parameter out of valid bounds")

	// ErrInvalidCollider indicates a collider with a non-positive extent or radius.
	ErrInvalidCollider = errors.New("cloth: invalid collider geometry")

	// ErrDegenerateSpring indicates a spring whose endpoints coincide at construction.
	ErrDegenerateSpring = errors.New("cloth: degenerate spring")
)
