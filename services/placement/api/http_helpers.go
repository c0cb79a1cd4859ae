package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"placementd/services/placement"
)

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	respondJSON(w, status, map[string]any{"error": err.Error()})
}

// respondEngineError maps engine errors onto HTTP statuses in one place so
// handler bodies stay uniform.
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, placement.ErrNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, placement.ErrUnauthorized):
		respondError(w, http.StatusForbidden, err)
	case errors.Is(err, placement.ErrJobInactive):
		respondError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, placement.ErrInsufficientTokens),
		errors.Is(err, placement.ErrJobQuotaFull),
		errors.Is(err, placement.ErrAlreadyApplied),
		errors.Is(err, placement.ErrAlreadyInvited),
		errors.Is(err, placement.ErrQuotaExceeded),
		errors.Is(err, placement.ErrNoSlotAvailable),
		errors.Is(err, placement.ErrInviteQuotaFull),
		errors.Is(err, placement.ErrAlreadyProcessed):
		respondError(w, http.StatusConflict, err)
	default:
		respondError(w, http.StatusInternalServerError, err)
	}
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New(name + " must be a valid UUID")
	}
	return id, nil
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}
