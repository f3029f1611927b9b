package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homehub-core/internal/audit"
	"github.com/nerrad567/homehub-core/internal/location"
)

type createLocationRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type createRoomRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	LocationID string `json:"location_id" validate:"required"`
}

type updateRoomRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type locationListResponse struct {
	Locations []location.Location `json:"locations"`
	Count     int                 `json:"count"`
}

type roomListResponse struct {
	Rooms []location.Room `json:"rooms"`
	Count int             `json:"count"`
}

// handleListLocations returns all locations.
func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := s.locations.ListLocations(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, locationListResponse{Locations: locs, Count: len(locs)})
}

// handleCreateLocation creates a location.
func (s *Server) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	var req createLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	loc, err := s.locations.CreateLocation(r.Context(), req.Name)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.recordAudit(r, audit.Entry{
		Action:     audit.ActionCreate,
		EntityType: audit.EntityLocation,
		EntityID:   loc.ID,
		Details:    map[string]any{"name": loc.Name},
	})
	writeJSON(w, http.StatusCreated, loc)
}

// handleGetLocation returns a single location.
func (s *Server) handleGetLocation(w http.ResponseWriter, r *http.Request) {
	loc, err := s.locations.GetLocation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

// handleListRooms returns all rooms, or those in ?location_id= when given.
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.locations.ListRooms(r.Context(), r.URL.Query().Get("location_id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roomListResponse{Rooms: rooms, Count: len(rooms)})
}

// handleCreateRoom creates a room in an existing location.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	room, err := s.locations.CreateRoom(r.Context(), req.LocationID, req.Name)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.recordAudit(r, audit.Entry{
		Action:     audit.ActionCreate,
		EntityType: audit.EntityRoom,
		EntityID:   room.ID,
		Details:    map[string]any{"name": room.Name, "location_id": room.LocationID},
	})
	writeJSON(w, http.StatusCreated, room)
}

// handleGetRoom returns a single room.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.locations.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// handleUpdateRoom renames a room.
func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	var req updateRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	room, err := s.locations.UpdateRoom(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.recordAudit(r, audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: audit.EntityRoom,
		EntityID:   room.ID,
		Details:    map[string]any{"name": room.Name},
	})
	writeJSON(w, http.StatusOK, room)
}

// handleDeleteRoom deletes a room. Its lights stay but lose their room.
func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.locations.DeleteRoom(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.recordAudit(r, audit.Entry{Action: audit.ActionDelete, EntityType: audit.EntityRoom, EntityID: id})
	w.WriteHeader(http.StatusNoContent)
}

// handleListRoomLights returns the lights in a room. Unknown rooms are 404.
func (s *Server) handleListRoomLights(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	if _, err := s.locations.GetRoom(r.Context(), roomID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	lights, err := s.lights.ListByRoom(r.Context(), roomID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lightListResponse{Lights: lights, Count: len(lights)})
}
