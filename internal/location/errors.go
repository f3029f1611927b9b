package location

import "errors"

var (
	// ErrLocationNotFound is returned when a location ID does not exist.
	ErrLocationNotFound = errors.New("location: location not found")

	// ErrRoomNotFound is returned when a room ID does not exist.
	ErrRoomNotFound = errors.New("location: room not found")

	// ErrUnknownLocation is returned when a room names a location that does
	// not exist.
	ErrUnknownLocation = errors.New("location: unknown location")

	// ErrInvalidName is returned when a name is empty or too long.
	ErrInvalidName = errors.New("location: invalid name")
)
