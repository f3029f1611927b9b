package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/homehub-core/internal/infrastructure/database"
)

// Repository defines the interface for location persistence operations.
type Repository interface {
	CreateLocation(ctx context.Context, name string) (*Location, error)
	GetLocation(ctx context.Context, id string) (*Location, error)
	ListLocations(ctx context.Context) ([]Location, error)

	CreateRoom(ctx context.Context, locationID, name string) (*Room, error)
	GetRoom(ctx context.Context, id string) (*Room, error)
	// ListRooms returns every room, or only those in locationID when it is non-empty.
	ListRooms(ctx context.Context, locationID string) ([]Room, error)
	UpdateRoom(ctx context.Context, id, name string) (*Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed location repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateLocation inserts a new location.
func (r *SQLiteRepository) CreateLocation(ctx context.Context, name string) (*Location, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	ts := now()
	loc := &Location{ID: uuid.NewString(), Name: name, CreatedAt: ts, UpdatedAt: ts}

	const query = `INSERT INTO locations (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, loc.ID, loc.Name, formatTime(ts), formatTime(ts))
	if err != nil {
		return nil, fmt.Errorf("inserting location: %w", err)
	}
	return loc, nil
}

// GetLocation returns a single location by ID.
func (r *SQLiteRepository) GetLocation(ctx context.Context, id string) (*Location, error) {
	const query = `SELECT id, name, created_at, updated_at FROM locations WHERE id = ?`

	var loc Location
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&loc.ID, &loc.Name, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("scanning location: %w", err)
	}
	loc.CreatedAt = parseTime(createdAt)
	loc.UpdatedAt = parseTime(updatedAt)
	return &loc, nil
}

// ListLocations returns all locations ordered by name.
func (r *SQLiteRepository) ListLocations(ctx context.Context) ([]Location, error) {
	const query = `SELECT id, name, created_at, updated_at FROM locations ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer rows.Close()

	locations := []Location{}
	for rows.Next() {
		var loc Location
		var createdAt, updatedAt string
		if err := rows.Scan(&loc.ID, &loc.Name, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning location row: %w", err)
		}
		loc.CreatedAt = parseTime(createdAt)
		loc.UpdatedAt = parseTime(updatedAt)
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating location rows: %w", err)
	}
	return locations, nil
}

// CreateRoom inserts a new room in locationID.
// Returns ErrUnknownLocation if the location does not exist.
func (r *SQLiteRepository) CreateRoom(ctx context.Context, locationID, name string) (*Room, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	ts := now()
	room := &Room{ID: uuid.NewString(), LocationID: locationID, Name: name, CreatedAt: ts, UpdatedAt: ts}

	const query = `INSERT INTO rooms (id, location_id, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, room.ID, room.LocationID, room.Name, formatTime(ts), formatTime(ts))
	if err != nil {
		classified := database.Classify(err)
		if errors.Is(classified, database.ErrForeignKeyViolation) {
			return nil, fmt.Errorf("%w %q: %w", ErrUnknownLocation, locationID, classified)
		}
		return nil, fmt.Errorf("inserting room: %w", classified)
	}
	return room, nil
}

const selectRoom = `SELECT id, location_id, name, created_at, updated_at FROM rooms`

// GetRoom returns a single room by ID.
func (r *SQLiteRepository) GetRoom(ctx context.Context, id string) (*Room, error) {
	room, err := scanRoom(r.db.QueryRowContext(ctx, selectRoom+" WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("scanning room: %w", err)
	}
	return room, nil
}

// ListRooms returns rooms ordered by name, optionally filtered by location.
func (r *SQLiteRepository) ListRooms(ctx context.Context, locationID string) ([]Room, error) {
	query := selectRoom
	var args []any
	if locationID != "" {
		query += " WHERE location_id = ?"
		args = append(args, locationID)
	}
	query += " ORDER BY name, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	rooms := []Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning room row: %w", err)
		}
		rooms = append(rooms, *room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating room rows: %w", err)
	}
	return rooms, nil
}

// UpdateRoom renames a room and returns the updated record.
func (r *SQLiteRepository) UpdateRoom(ctx context.Context, id, name string) (*Room, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	const query = `UPDATE rooms SET name = ?, updated_at = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, name, formatTime(now()), id)
	if err != nil {
		return nil, fmt.Errorf("updating room %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return nil, ErrRoomNotFound
	}
	return r.GetRoom(ctx, id)
}

// DeleteRoom removes a single room by ID. Its light associations cascade.
// Returns ErrRoomNotFound if the room does not exist.
func (r *SQLiteRepository) DeleteRoom(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting room %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRoom(s scanner) (*Room, error) {
	var rm Room
	var createdAt, updatedAt string
	if err := s.Scan(&rm.ID, &rm.LocationID, &rm.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	rm.CreatedAt = parseTime(createdAt)
	rm.UpdatedAt = parseTime(updatedAt)
	return &rm, nil
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// parseTime parses an RFC 3339 timestamp written by this package.
// Zero time is returned if parsing fails.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
