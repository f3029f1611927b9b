package light

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type roomOp uint8

const (
	roomUnchanged roomOp = iota
	roomClear
	roomSet
)

// RoomPatch says what to do with a light's room during an update.
// The zero value leaves the room unchanged.
type RoomPatch struct {
	op     roomOp
	roomID string
}

// KeepRoom leaves the light's room as it is.
func KeepRoom() RoomPatch { return RoomPatch{} }

// ClearRoom removes the light from its room.
func ClearRoom() RoomPatch { return RoomPatch{op: roomClear} }

// SetRoom moves the light to roomID.
func SetRoom(roomID string) RoomPatch { return RoomPatch{op: roomSet, roomID: roomID} }

// IsUnchanged reports whether the patch leaves the room alone.
func (p RoomPatch) IsUnchanged() bool { return p.op == roomUnchanged }

// IsClear reports whether the patch removes the light from its room.
func (p RoomPatch) IsClear() bool { return p.op == roomClear }

// RoomID returns the target room and true when the patch sets a room.
func (p RoomPatch) RoomID() (string, bool) {
	return p.roomID, p.op == roomSet
}

func (p RoomPatch) String() string {
	switch p.op {
	case roomClear:
		return "clear"
	case roomSet:
		return "set(" + p.roomID + ")"
	default:
		return "unchanged"
	}
}

// UnmarshalJSON decodes null as ClearRoom and a string as SetRoom.
// encoding/json does not call it for an absent member, so a struct field
// of this type stays KeepRoom when the member is missing.
func (p *RoomPatch) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = ClearRoom()
		return nil
	}

	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("room_id must be a string or null: %w", err)
	}
	*p = SetRoom(id)
	return nil
}
