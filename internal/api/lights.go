package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homehub-core/internal/audit"
	"github.com/nerrad567/homehub-core/internal/light"
)

type createLightRequest struct {
	Name   string  `json:"name" validate:"required,max=100"`
	RoomID *string `json:"room_id" validate:"omitempty,min=1"`
}

// updateLightRequest distinguishes an absent room_id (keep), null (clear)
// and a string (move) through light.RoomPatch.
type updateLightRequest struct {
	Name   *string         `json:"name" validate:"omitempty,min=1,max=100"`
	RoomID light.RoomPatch `json:"room_id" validate:"-"`
}

type setLightStateRequest struct {
	On     *bool     `json:"on" validate:"required"`
	Colour *[3]uint8 `json:"colour"`
}

type lightListResponse struct {
	Lights []light.Light `json:"lights"`
	Count  int           `json:"count"`
}

// handleListLights returns every light.
func (s *Server) handleListLights(w http.ResponseWriter, r *http.Request) {
	lights, err := s.lights.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lightListResponse{Lights: lights, Count: len(lights)})
}

// handleCreateLight creates a light, optionally in a room.
func (s *Server) handleCreateLight(w http.ResponseWriter, r *http.Request) {
	var req createLightRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	l, err := s.lights.Create(r.Context(), req.Name, req.RoomID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	details := map[string]any{"name": l.Name}
	if l.Room != nil {
		details["room_id"] = l.Room.ID
	}
	s.recordAudit(r, audit.Entry{
		Action:     audit.ActionCreate,
		EntityType: audit.EntityLight,
		EntityID:   l.ID,
		Details:    details,
	})
	writeJSON(w, http.StatusCreated, l)
}

// handleGetLight returns a single light with its room.
func (s *Server) handleGetLight(w http.ResponseWriter, r *http.Request) {
	l, err := s.lights.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// handleUpdateLight applies a partial update to a light.
func (s *Server) handleUpdateLight(w http.ResponseWriter, r *http.Request) {
	var req updateLightRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	l, err := s.lights.Update(r.Context(), chi.URLParam(r, "id"), light.Patch{
		Name: req.Name,
		Room: req.RoomID,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	details := map[string]any{"room": req.RoomID.String()}
	if req.Name != nil {
		details["name"] = *req.Name
	}
	s.recordAudit(r, audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: audit.EntityLight,
		EntityID:   l.ID,
		Details:    details,
	})
	writeJSON(w, http.StatusOK, l)
}

// handleDeleteLight deletes a light.
func (s *Server) handleDeleteLight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.lights.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.recordAudit(r, audit.Entry{Action: audit.ActionDelete, EntityType: audit.EntityLight, EntityID: id})
	w.WriteHeader(http.StatusNoContent)
}

// handleSetLightState replaces a light's state.
func (s *Server) handleSetLightState(w http.ResponseWriter, r *http.Request) {
	var req setLightStateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	l, err := s.lights.SetState(r.Context(), chi.URLParam(r, "id"), light.State{
		On:     *req.On,
		Colour: req.Colour,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.recordAudit(r, audit.Entry{
		Action:     audit.ActionSetState,
		EntityType: audit.EntityLight,
		EntityID:   l.ID,
		Details:    map[string]any{"on": l.State.On, "colour": l.State.Colour},
	})
	writeJSON(w, http.StatusOK, l)
}
