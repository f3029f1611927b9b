package light

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/homehub-core/internal/infrastructure/database"
)

// Repository defines the interface for light persistence operations.
type Repository interface {
	Create(ctx context.Context, name string, roomID *string) (*Light, error)
	Get(ctx context.Context, id string) (*Light, error)
	List(ctx context.Context) ([]Light, error)
	ListByRoom(ctx context.Context, roomID string) ([]Light, error)
	Update(ctx context.Context, id string, patch Patch) (*Light, error)
	SetState(ctx context.Context, id string, state State) (*Light, error)
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed light repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectLight = `SELECT l.id, l.name, l.state, l.created_at, l.updated_at, r.id, r.name
	FROM lights l
	LEFT JOIN room_lights rl ON rl.light_id = l.id
	LEFT JOIN rooms r ON r.id = rl.room_id`

// Create inserts a light, switched off with no colour, and assigns it to
// roomID when non-nil. Both happen in one transaction, so an unknown room
// leaves no light behind.
func (r *SQLiteRepository) Create(ctx context.Context, name string, roomID *string) (*Light, error) {
	id := uuid.NewString()
	stamp := timestamp()

	stateJSON, err := json.Marshal(State{})
	if err != nil {
		return nil, fmt.Errorf("encoding state: %w", err)
	}

	var created *Light
	err = database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		const insert = `INSERT INTO lights (id, name, state, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, insert, id, name, string(stateJSON), stamp, stamp); err != nil {
			return fmt.Errorf("inserting light: %w", database.Classify(err))
		}

		if roomID != nil {
			if err := assignRoom(ctx, tx, id, *roomID); err != nil {
				return err
			}
		}

		var err error
		created, err = getLight(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get returns a single light by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Light, error) {
	return getLight(ctx, r.db, id)
}

// List returns all lights ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Light, error) {
	return r.queryLights(ctx, selectLight+" ORDER BY l.name, l.id")
}

// ListByRoom returns the lights assigned to roomID ordered by name.
func (r *SQLiteRepository) ListByRoom(ctx context.Context, roomID string) ([]Light, error) {
	return r.queryLights(ctx, selectLight+" WHERE rl.room_id = ? ORDER BY l.name, l.id", roomID)
}

// Update applies patch to the light in one transaction and returns the
// result joined with its room.
//
// The room association is only touched when the patch asks for it. Moving
// a light deletes its previous association before inserting the new one.
// If the new room does not exist the error wraps ErrUnknownRoom and nothing
// is changed, the name included.
func (r *SQLiteRepository) Update(ctx context.Context, id string, patch Patch) (*Light, error) {
	var updated *Light
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		const query = `UPDATE lights SET name = COALESCE(?, name), updated_at = ? WHERE id = ?`
		result, err := tx.ExecContext(ctx, query, nullStr(patch.Name), timestamp(), id)
		if err != nil {
			return fmt.Errorf("updating light %s: %w", id, err)
		}
		n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
		if n == 0 {
			return ErrLightNotFound
		}

		if !patch.Room.IsUnchanged() {
			if _, err := tx.ExecContext(ctx, `DELETE FROM room_lights WHERE light_id = ?`, id); err != nil {
				return fmt.Errorf("clearing room of light %s: %w", id, err)
			}
		}
		if roomID, ok := patch.Room.RoomID(); ok {
			if err := assignRoom(ctx, tx, id, roomID); err != nil {
				return err
			}
		}

		updated, err = getLight(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetState replaces the light's state document.
func (r *SQLiteRepository) SetState(ctx context.Context, id string, state State) (*Light, error) {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encoding state: %w", err)
	}

	const query = `UPDATE lights SET state = ?, updated_at = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, string(stateJSON), timestamp(), id)
	if err != nil {
		return nil, fmt.Errorf("updating state of light %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return nil, ErrLightNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes a light. Its room association cascades.
// Returns ErrLightNotFound if the light does not exist.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM lights WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting light %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrLightNotFound
	}
	return nil
}

// assignRoom links lightID to roomID. The light must not already have a room.
func assignRoom(ctx context.Context, tx *sql.Tx, lightID, roomID string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO room_lights (room_id, light_id) VALUES (?, ?)`, roomID, lightID)
	if err == nil {
		return nil
	}

	classified := database.Classify(err)
	if errors.Is(classified, database.ErrForeignKeyViolation) {
		return fmt.Errorf("%w %q: %w", ErrUnknownRoom, roomID, classified)
	}
	return fmt.Errorf("assigning light %s to room %s: %w", lightID, roomID, classified)
}

func (r *SQLiteRepository) queryLights(ctx context.Context, query string, args ...any) ([]Light, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying lights: %w", err)
	}
	defer rows.Close()

	lights := []Light{}
	for rows.Next() {
		l, err := scanLight(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning light row: %w", err)
		}
		lights = append(lights, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating light rows: %w", err)
	}
	return lights, nil
}

func getLight(ctx context.Context, q queryer, id string) (*Light, error) {
	l, err := scanLight(q.QueryRowContext(ctx, selectLight+" WHERE l.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLightNotFound
		}
		return nil, fmt.Errorf("scanning light: %w", err)
	}
	return l, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanLight(s scanner) (*Light, error) {
	var l Light
	var stateJSON, createdAt, updatedAt string
	var roomID, roomName sql.NullString

	if err := s.Scan(&l.ID, &l.Name, &stateJSON, &createdAt, &updatedAt, &roomID, &roomName); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(stateJSON), &l.State); err != nil {
		return nil, fmt.Errorf("decoding state of light %s: %w", l.ID, err)
	}
	if roomID.Valid {
		l.Room = &RoomRef{ID: roomID.String, Name: roomName.String}
	}
	l.CreatedAt = parseTime(createdAt)
	l.UpdatedAt = parseTime(updatedAt)
	return &l, nil
}

// nullStr converts a *string to a sql.NullString for nullable parameters.
func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
