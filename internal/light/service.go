package light

import (
	"context"

	"github.com/nerrad567/homehub-core/internal/infrastructure/logging"
)

// StateRecorder receives every successful state change, for example to
// keep a time-series history. Implementations must not block for long.
type StateRecorder interface {
	RecordLightState(lightID, roomID string, on bool, colour *[3]uint8)
}

// Service is the light API used by the HTTP layer. It checks names before
// they reach the store and passes state changes to an optional recorder.
type Service struct {
	repo     Repository
	recorder StateRecorder
	logger   *logging.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithStateRecorder sets the recorder told about state changes.
func WithStateRecorder(rec StateRecorder) ServiceOption {
	return func(s *Service) { s.recorder = rec }
}

// WithLogger sets the service logger.
func WithLogger(logger *logging.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a Service over repo.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, logger: logging.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "light")
	return s
}

// Create adds a light, optionally assigned to roomID.
func (s *Service) Create(ctx context.Context, name string, roomID *string) (*Light, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	l, err := s.repo.Create(ctx, name, roomID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("light created", "light_id", l.ID)
	return l, nil
}

// Get returns a light by ID.
func (s *Service) Get(ctx context.Context, id string) (*Light, error) {
	return s.repo.Get(ctx, id)
}

// List returns every light.
func (s *Service) List(ctx context.Context) ([]Light, error) {
	return s.repo.List(ctx)
}

// ListByRoom returns the lights in roomID.
func (s *Service) ListByRoom(ctx context.Context, roomID string) ([]Light, error) {
	return s.repo.ListByRoom(ctx, roomID)
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (*Light, error) {
	if patch.Name != nil {
		if err := ValidateName(*patch.Name); err != nil {
			return nil, err
		}
	}
	l, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("light updated", "light_id", id, "room", patch.Room.String())
	return l, nil
}

// SetState replaces a light's state and reports it to the recorder.
func (s *Service) SetState(ctx context.Context, id string, state State) (*Light, error) {
	l, err := s.repo.SetState(ctx, id, state)
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		var roomID string
		if l.Room != nil {
			roomID = l.Room.ID
		}
		s.recorder.RecordLightState(l.ID, roomID, l.State.On, l.State.Colour)
	}
	return l, nil
}

// Delete removes a light.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("light deleted", "light_id", id)
	return nil
}
