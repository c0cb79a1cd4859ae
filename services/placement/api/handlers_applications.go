package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"placementd/services/placement"
)

func (a *API) handleApply(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID uuid.UUID `json:"student_id"`
		JobID     uuid.UUID `json:"job_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.StudentID == uuid.Nil {
		respondError(w, http.StatusBadRequest, errors.New("student_id is required"))
		return
	}
	if req.JobID == uuid.Nil {
		respondError(w, http.StatusBadRequest, errors.New("job_id is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	result, err := a.engine.Apply(ctx, req.StudentID, req.JobID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

func (a *API) handleDecide(w http.ResponseWriter, r *http.Request) {
	applicationID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		CompanyID uuid.UUID `json:"company_id"`
		Decision  string    `json:"decision"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.CompanyID == uuid.Nil {
		respondError(w, http.StatusBadRequest, errors.New("company_id is required"))
		return
	}

	decision := placement.Decision(strings.ToUpper(strings.TrimSpace(req.Decision)))
	switch decision {
	case placement.DecisionAccepted, placement.DecisionRejected, placement.DecisionCancelled:
	default:
		respondError(w, http.StatusBadRequest,
			errors.New("decision must be ACCEPTED, REJECTED, or CANCELLED"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.engine.Decide(ctx, applicationID, req.CompanyID, decision); err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (a *API) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	applicationID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		StudentID uuid.UUID `json:"student_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.StudentID == uuid.Nil {
		respondError(w, http.StatusBadRequest, errors.New("student_id is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.engine.Withdraw(ctx, applicationID, req.StudentID); err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
