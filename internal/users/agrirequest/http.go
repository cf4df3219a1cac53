// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package agrirequest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agroviatech/portal/internal/platform/ctxutil"
	"github.com/agroviatech/portal/internal/platform/middleware"
	requestutil "github.com/agroviatech/portal/internal/platform/request"
	"github.com/agroviatech/portal/internal/platform/respond"
	"github.com/agroviatech/portal/internal/platform/sec"
	"github.com/agroviatech/portal/internal/users/auth"
	"github.com/agroviatech/portal/pkg/pagination"
)

// Handler exposes the request workflow over HTTP.
type Handler struct {
	service  *Service
	promoter *AutoPromoter
	registry *auth.SessionRegistry
}

// NewHandler constructs a new [Handler]. The registry is used to reconcile
// the caller's session after an approval that happened while they were away.
func NewHandler(service *Service, promoter *AutoPromoter, registry *auth.SessionRegistry) *Handler {
	return &Handler{service: service, promoter: promoter, registry: registry}
}

// Routes returns a [chi.Router] with the request endpoints.
//
// # Endpoints
//   - GET  /options        : Form option lists.
//   - POST /               : Files a request (signed in).
//   - GET  /me             : Latest request of the caller (signed in).
//   - GET  /               : Lists requests (ADMIN).
//   - GET  /stats          : Counts per status (ADMIN).
//   - POST /{id}/approve   : Approves a pending request (ADMIN).
//   - POST /{id}/reject    : Rejects a pending request (ADMIN).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/options", handler.options)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", handler.create)
		r.Get("/me", handler.mine)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleAdmin))
		r.Get("/", handler.list)
		r.Get("/stats", handler.stats)
		r.Post("/{id}/approve", handler.approve)
		r.Post("/{id}/reject", handler.reject)
	})

	return router
}

type optionsResponse struct {
	Experience  []string `json:"experience"`
	CultureType []string `json:"culture_type"`
}

type mineResponse struct {
	Summary
	Promoted bool `json:"promoted"`
}

func (handler *Handler) options(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, optionsResponse{
		Experience:  ExperienceOptions,
		CultureType: CultureTypeOptions,
	})
}

/*
Create files a request for the caller.

POST /api/v1/agriculteur-requests

Response:
  - 201: Request
  - 400: Validation failure
  - 401: Not signed in
  - 409: REQUEST_ALREADY_PENDING or REQUEST_ALREADY_APPROVED
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.CreateRequest(request.Context(), userID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

// mine returns the caller's summary and applies a pending promotion to their
// cookie session.
func (handler *Handler) mine(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	latest, err := handler.service.LoadUserRequest(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	response := mineResponse{Summary: Summarize(latest)}
	if sessionID := ctxutil.GetSessionID(request.Context()); sessionID != "" && handler.promoter != nil {
		manager := handler.registry.Get(request.Context(), sessionID)
		response.Promoted = handler.promoter.Reconcile(request.Context(), manager, latest)
	}

	respond.OK(writer, response)
}

// list answers GET /?status=&user_id=&page=&limit=.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	filter := ListFilter{
		Status: Status(request.URL.Query().Get(FieldStatus)),
		UserID: request.URL.Query().Get("user_id"),
	}

	requests, total, err := handler.service.LoadAllRequests(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, requests, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.service.Stats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stats)
}

func (handler *Handler) approve(writer http.ResponseWriter, request *http.Request) {
	approved, err := handler.service.ApproveRequest(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, approved)
}

func (handler *Handler) reject(writer http.ResponseWriter, request *http.Request) {
	rejected, err := handler.service.RejectRequest(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, rejected)
}
