package light

import (
	"fmt"
	"strings"
	"time"
)

const maxNameLength = 100

// Light is a stored light joined with its room, if any.
type Light struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	State     State     `json:"state"`
	Room      *RoomRef  `json:"room"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoomRef identifies the room a light belongs to.
type RoomRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// State is the light's on/off flag and optional RGB colour.
// A nil Colour means the light has no colour set.
type State struct {
	On     bool      `json:"on"`
	Colour *[3]uint8 `json:"colour"`
}

// Patch is a partial update of a light. A nil Name leaves the name alone.
type Patch struct {
	Name *string
	Room RoomPatch
}

// ValidateName checks if a light name is valid.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}
