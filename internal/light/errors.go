package light

import "errors"

var (
	// ErrLightNotFound is returned when a light ID does not exist.
	ErrLightNotFound = errors.New("light: not found")

	// ErrUnknownRoom is returned when a light is assigned to a room that
	// does not exist. It wraps database.ErrForeignKeyViolation.
	ErrUnknownRoom = errors.New("light: unknown room")

	// ErrInvalidName is returned when a light name is empty or too long.
	ErrInvalidName = errors.New("light: invalid name")
)
