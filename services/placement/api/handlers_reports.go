package api

import (
	"net/http"
)

func (a *API) handleStudentApplications(w http.ResponseWriter, r *http.Request) {
	studentID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	apps, err := a.engine.StudentApplications(ctx, studentID)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"applications": apps})
}

func (a *API) handleStudentInvitations(w http.ResponseWriter, r *http.Request) {
	studentID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	invitations, err := a.engine.StudentInvitations(ctx, studentID)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"invitations": invitations})
}

func (a *API) handleStudentInterviews(w http.ResponseWriter, r *http.Request) {
	studentID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	interviews, err := a.engine.StudentInterviews(ctx, studentID)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"interviews": interviews})
}

func (a *API) handleStudentTokens(w http.ResponseWriter, r *http.Request) {
	studentID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	balances, err := a.engine.StudentBalances(ctx, studentID)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	history, err := a.engine.TokenHistory(ctx, studentID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"balances": balances,
		"history":  history,
	})
}

func (a *API) handleCompanySchedule(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	schedule, err := a.engine.CompanySchedule(ctx, companyID)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"schedule": schedule})
}

func (a *API) handleCompanyQuota(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	usage, err := a.engine.CompanyQuotaUsage(ctx, companyID)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"usage": usage})
}
