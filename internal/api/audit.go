package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/nerrad567/homehub-core/internal/audit"
)

// recordAudit stores an entry for a change that has already been committed.
// The acting user is taken from the request when entry.UserID is empty.
// A failed write is logged and never reaches the client.
func (s *Server) recordAudit(r *http.Request, entry audit.Entry) {
	if s.audit == nil {
		return
	}
	if entry.UserID == "" {
		if user, ok := userFromContext(r.Context()); ok {
			entry.UserID = user.ID
		}
	}

	// The change is done; a client hanging up now must not lose the record.
	ctx := context.WithoutCancel(r.Context())
	if err := s.audit.Record(ctx, &entry); err != nil {
		s.logger.Error("audit log write failed",
			"action", entry.Action,
			"entity_type", entry.EntityType,
			"entity_id", entry.EntityID,
			"error", err,
		)
	}
}

// handleListAudit returns audit entries, newest first.
//
// Query parameters:
//   - action, entity_type, entity_id, user_id: exact-match filters
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "audit trail is not enabled")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
		UserID:     q.Get("user_id"),
	}

	var err error
	if v := q.Get("limit"); v != "" {
		if filter.Limit, err = strconv.Atoi(v); err != nil {
			s.writeServiceError(w, r, invalid("limit: must be an integer"))
			return
		}
	}
	if v := q.Get("offset"); v != "" {
		if filter.Offset, err = strconv.Atoi(v); err != nil {
			s.writeServiceError(w, r, invalid("offset: must be an integer"))
			return
		}
	}

	page, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
