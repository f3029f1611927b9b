package light

import (
	"errors"
	"sync"
	"testing"
)

type recordedState struct {
	lightID, roomID string
	on              bool
	colour          *[3]uint8
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []recordedState
}

func (f *fakeRecorder) RecordLightState(lightID, roomID string, on bool, colour *[3]uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, recordedState{lightID, roomID, on, colour})
}

func TestService_SetStateRecords(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewService(NewSQLiteRepository(setupTestDB(t)), WithStateRecorder(rec))

	l, err := svc.Create(t.Context(), "Lamp", strPtr("room-b"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.SetState(t.Context(), l.ID, State{On: true}); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}

	if len(rec.records) != 1 {
		t.Fatalf("recorder got %d records, want 1", len(rec.records))
	}
	got := rec.records[0]
	if got.lightID != l.ID || got.roomID != "room-b" || !got.on || got.colour != nil {
		t.Errorf("record = %+v", got)
	}
}

func TestService_SetStateFailureNotRecorded(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewService(NewSQLiteRepository(setupTestDB(t)), WithStateRecorder(rec))

	if _, err := svc.SetState(t.Context(), "missing", State{On: true}); !errors.Is(err, ErrLightNotFound) {
		t.Errorf("SetState() error = %v, want ErrLightNotFound", err)
	}
	if len(rec.records) != 0 {
		t.Errorf("recorder got %d records, want 0", len(rec.records))
	}
}

func TestService_RejectsInvalidNames(t *testing.T) {
	svc := NewService(NewSQLiteRepository(setupTestDB(t)))

	if _, err := svc.Create(t.Context(), "  ", nil); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Create(blank) error = %v, want ErrInvalidName", err)
	}

	l, err := svc.Create(t.Context(), "Lamp", nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Update(t.Context(), l.ID, Patch{Name: strPtr("")}); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Update(empty name) error = %v, want ErrInvalidName", err)
	}
}
