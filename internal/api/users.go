package api

import "net/http"

// handleGetUser returns the profile of the authenticated account.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user.Profile()})
}
