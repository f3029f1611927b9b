// Package location provides the location and room hierarchy.
//
// A Location (a house, a flat) contains Rooms. Lights are attached to rooms
// by the light package; deleting a room or location cascades to its rooms
// and light associations in the store.
//
// # Thread Safety
//
// SQLiteRepository is safe for concurrent use from multiple goroutines.
package location
