package http

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/askaway/backend/internal/core/domain"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("failed to encode response")
	}
}

// writeError maps domain errors onto status codes. Unclassified errors are
// logged and surface as a bare 500 so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidVotableID), errors.Is(err, domain.ErrInvalidCursor):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrVotableNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.WithError(err).Error("request failed")
		http.Error(w, domain.ErrInternal.Error(), http.StatusInternalServerError)
	}
}

func userIDFrom(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(UserIDKey).(string)
	return userID, ok && userID != ""
}
