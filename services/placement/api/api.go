package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"placementd/services/placement"
)

// API wires the placement engine into HTTP handlers. Authentication and
// session handling belong to an upstream gateway; handlers trust the ids in
// the request payload.
type API struct {
	engine *placement.Engine
}

// New initialises the API layer.
func New(engine *placement.Engine) (*API, error) {
	if engine == nil {
		return nil, errors.New("engine is required")
	}
	return &API{engine: engine}, nil
}

// Routes constructs the chi router containing all API endpoints.
func (a *API) Routes() (http.Handler, error) {
	if a == nil {
		return nil, errors.New("nil api")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/applications", a.handleApply)
		r.Post("/applications/{id}/decision", a.handleDecide)
		r.Post("/applications/{id}/withdraw", a.handleWithdraw)

		r.Post("/invitations", a.handleInvite)
		r.Post("/invitations/{id}/accept", a.handleAcceptInvitation)
		r.Post("/invitations/{id}/reject", a.handleRejectInvitation)

		r.Get("/students/{id}/applications", a.handleStudentApplications)
		r.Get("/students/{id}/invitations", a.handleStudentInvitations)
		r.Get("/students/{id}/interviews", a.handleStudentInterviews)
		r.Get("/students/{id}/tokens", a.handleStudentTokens)

		r.Get("/companies/{id}/schedule", a.handleCompanySchedule)
		r.Get("/companies/{id}/quota", a.handleCompanyQuota)
	})

	return r, nil
}
