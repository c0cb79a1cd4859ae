package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
)

func (a *API) handleInvite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyID uuid.UUID `json:"company_id"`
		StudentID uuid.UUID `json:"student_id"`
		JobID     uuid.UUID `json:"job_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.CompanyID == uuid.Nil || req.StudentID == uuid.Nil || req.JobID == uuid.Nil {
		respondError(w, http.StatusBadRequest,
			errors.New("company_id, student_id, and job_id are required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	invitation, err := a.engine.Invite(ctx, req.CompanyID, req.StudentID, req.JobID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"invitation": invitation})
}

func (a *API) handleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	a.decideInvitation(w, r, true)
}

func (a *API) handleRejectInvitation(w http.ResponseWriter, r *http.Request) {
	a.decideInvitation(w, r, false)
}

func (a *API) decideInvitation(w http.ResponseWriter, r *http.Request, accept bool) {
	invitationID, err := pathUUID(r, "id")
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

	if accept {
		err = a.engine.AcceptInvitation(ctx, invitationID, req.StudentID)
	} else {
		err = a.engine.RejectInvitation(ctx, invitationID, req.StudentID)
	}
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
