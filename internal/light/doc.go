// Package light manages light records, their on/off and colour state, and
// their optional assignment to a room.
//
// A light belongs to at most one room. Room changes arrive as a RoomPatch,
// which distinguishes "leave the room alone", "remove the light from its
// room" and "move the light to this room". The JSON form follows the same
// split: an absent room_id member leaves the room alone, null clears it and
// a string sets it.
//
// Every write that touches more than one table runs in a single transaction.
package light
