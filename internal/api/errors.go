package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/homehub-core/internal/auth"
	"github.com/nerrad567/homehub-core/internal/infrastructure/database"
	"github.com/nerrad567/homehub-core/internal/light"
	"github.com/nerrad567/homehub-core/internal/location"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest           = "bad_request"
	ErrCodeNotFound             = "not_found"
	ErrCodeUnauthorized         = "unauthorised"
	ErrCodeConflict             = "conflict"
	ErrCodeReferentialIntegrity = "referential_integrity"
	ErrCodeInternal             = "internal_error"
	ErrCodeValidation           = "validation_error"
	ErrCodeMethodNotAllow       = "method_not_allowed"
)

// errorKind is the closed set of failure classes a handler can report.
type errorKind int

const (
	kindInternal errorKind = iota
	kindBadRequest
	kindValidation
	kindNotFound
	kindUnauthorized
	kindConflict
	kindReferentialIntegrity
)

func (k errorKind) status() int {
	switch k {
	case kindBadRequest, kindValidation:
		return http.StatusBadRequest
	case kindNotFound:
		return http.StatusNotFound
	case kindUnauthorized:
		return http.StatusUnauthorized
	case kindConflict:
		return http.StatusConflict
	case kindReferentialIntegrity:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (k errorKind) code() string {
	switch k {
	case kindBadRequest:
		return ErrCodeBadRequest
	case kindValidation:
		return ErrCodeValidation
	case kindNotFound:
		return ErrCodeNotFound
	case kindUnauthorized:
		return ErrCodeUnauthorized
	case kindConflict:
		return ErrCodeConflict
	case kindReferentialIntegrity:
		return ErrCodeReferentialIntegrity
	default:
		return ErrCodeInternal
	}
}

// requestError is a failure caused by the shape of the request itself.
type requestError struct {
	kind    errorKind
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(message string) error {
	return &requestError{kind: kindBadRequest, message: message}
}

func invalid(message string) error {
	return &requestError{kind: kindValidation, message: message}
}

// classify maps err onto an errorKind and the message safe to show the
// caller. It is the only place domain errors are given HTTP meaning.
func classify(err error) (errorKind, string) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.kind, reqErr.message

	case errors.Is(err, light.ErrInvalidName), errors.Is(err, location.ErrInvalidName):
		return kindValidation, "name: must be between 1 and 100 characters"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return kindUnauthorized, "invalid credentials"

	case errors.Is(err, auth.ErrUserAlreadyExists):
		return kindConflict, "email already registered"

	case errors.Is(err, light.ErrUnknownRoom):
		return kindReferentialIntegrity, "room does not exist"
	case errors.Is(err, location.ErrUnknownLocation):
		return kindReferentialIntegrity, "location does not exist"
	case errors.Is(err, database.ErrForeignKeyViolation):
		return kindReferentialIntegrity, "referenced record does not exist"

	case errors.Is(err, database.ErrUniqueViolation):
		return kindConflict, "conflicting update, retry the request"

	case errors.Is(err, light.ErrLightNotFound):
		return kindNotFound, "light not found"
	case errors.Is(err, location.ErrRoomNotFound):
		return kindNotFound, "room not found"
	case errors.Is(err, location.ErrLocationNotFound):
		return kindNotFound, "location not found"

	default:
		return kindInternal, "internal server error"
	}
}

// writeServiceError classifies err and writes the matching response.
// Internal errors are logged with the full chain; the caller only sees a
// generic message.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind, message := classify(err)

	if kind == kindInternal {
		s.logger.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
	} else {
		s.logger.Debug("request rejected",
			"error", err,
			"code", kind.code(),
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
	}

	writeError(w, kind.status(), kind.code(), message)
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeUnauthorized writes the single 401 body used by the auth guard.
func writeUnauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorised")
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
}
