// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agroviatech/portal/internal/platform/apperr"
	"github.com/agroviatech/portal/internal/platform/ctxutil"
	"github.com/agroviatech/portal/internal/platform/middleware"
	requestutil "github.com/agroviatech/portal/internal/platform/request"
	"github.com/agroviatech/portal/internal/platform/respond"
	"github.com/agroviatech/portal/internal/platform/sec"
	"github.com/agroviatech/portal/internal/users/session"
	"github.com/agroviatech/portal/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements the authentication HTTP endpoints.
//
// # Scope
//
// Each request is bound to the [Manager] of its client session (cookie
// issued by [middleware.SessionCookie]). The handler is a thin transport
// layer: status codes, JSON and the session binding.
type Handler struct {
	registry  *SessionRegistry
	directory UserDirectory
	tokens    TokenIssuer
	backend   session.Backend
}

// NewHandler constructs a new [Handler].
func NewHandler(registry *SessionRegistry, directory UserDirectory, tokens TokenIssuer, backend session.Backend) *Handler {
	return &Handler{
		registry:  registry,
		directory: directory,
		tokens:    tokens,
		backend:   backend,
	}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST  /register          : Creates an account and signs it in.
//   - POST  /login             : Signs in with email and password.
//   - POST  /logout            : Ends the session.
//   - GET   /state             : Current session state.
//   - PATCH /profile           : Updates the signed-in profile.
//   - GET   /profile/current   : Persisted profile or the anonymous visitor.
//   - GET   /access?path=      : Route permission check.
//   - GET   /users             : Lists accounts (ADMIN).
//   - PATCH /users/{id}/role   : Changes a user's role (ADMIN).
//   - PATCH /users/{id}/status : Enables or disables an account (ADMIN).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Get("/state", handler.state)
	router.Patch("/profile", handler.updateProfile)
	router.Get("/profile/current", handler.currentProfile)
	router.Get("/access", handler.access)
	router.Patch("/users/{id}/role", handler.changeUserRole)
	router.Patch("/users/{id}/status", handler.setUserStatus)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleAdmin))
		r.Get("/users", handler.listUsers)
	})

	return router
}

// # Request Payloads

type changeRoleRequest struct {
	Role sec.UserRole `json:"role"`
}

type changeStatusRequest struct {
	EstActif *bool `json:"est_actif"`
}

type accessResponse struct {
	Path    string       `json:"path"`
	Allowed bool         `json:"allowed"`
	Role    sec.UserRole `json:"role,omitempty"`
	Landing string       `json:"landing"`
	Routes  []string     `json:"routes"`
}

/*
Register handles the creation of a new account.

POST /api/v1/auth/register

Response:
  - 201: AuthResponse
  - 400: Validation failure
  - 409: EMAIL_ALREADY_USED or OPERATION_IN_PROGRESS
  - 422: ROLE_NOT_ALLOWED
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input RegisterInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	manager, err := handler.manager(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	response, err := manager.Register(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.rotate(writer, request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, response)
}

/*
Login authenticates a user and binds the session.

POST /api/v1/auth/login

The session cookie is replaced by a new identifier on success.

Response:
  - 200: AuthResponse (welcome message and landing route)
  - 401: INVALID_CREDENTIALS
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input LoginInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	manager, err := handler.manager(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	response, err := manager.Login(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.rotate(writer, request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, response)
}

// logout always answers 204.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	manager, err := handler.manager(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	manager.Logout(request.Context())
	respond.NoContent(writer)
}

func (handler *Handler) state(writer http.ResponseWriter, request *http.Request) {
	manager, err := handler.manager(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, manager.Validate(request.Context()))
}

/*
UpdateProfile merges the given fields into the signed-in profile.

PATCH /api/v1/auth/profile

Response:
  - 200: User
  - 401: NOT_AUTHENTICATED
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	var input ProfileUpdate
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	manager, err := handler.manager(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := manager.UpdateProfile(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

func (handler *Handler) currentProfile(writer http.ResponseWriter, request *http.Request) {
	sessionID, err := requestutil.RequiredSessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := CurrentProfile(request.Context(), handler.backend.Scope(sessionID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// access answers whether the session may open ?path= and lists the route
// prefixes of its role. Anonymous sessions are only allowed on public routes.
func (handler *Handler) access(writer http.ResponseWriter, request *http.Request) {
	path := request.URL.Query().Get(FieldPath)
	if path == "" {
		respond.Error(writer, request, apperr.ValidationError("Données invalides", apperr.FieldError{Field: FieldPath, Message: "Ce champ est obligatoire"}))
		return
	}

	role, authenticated := handler.ResolveRole(request)
	response := accessResponse{Path: path, Landing: sec.LoginRoute, Routes: []string{}}
	if authenticated {
		response.Role = role
		response.Allowed = sec.CanAccessRoute(role, path)
		response.Landing = sec.LandingRoute(role)
		response.Routes = sec.AllowedRoutes(role)
	}
	if sec.IsPublicRoute(path) {
		response.Allowed = true
	}

	respond.OK(writer, response)
}

/*
ChangeUserRole sets another account's role.

PATCH /api/v1/auth/users/{id}/role

Response:
  - 200: User
  - 403: FORBIDDEN (caller is not ADMIN)
  - 404: USER_NOT_FOUND
*/
func (handler *Handler) changeUserRole(writer http.ResponseWriter, request *http.Request) {
	var input changeRoleRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	manager, err := handler.manager(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := manager.ChangeUserRole(request.Context(), requestutil.ID(request, "id"), input.Role)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
SetUserStatus enables or disables an account. A disabled account's sessions
end on their next request.

PATCH /api/v1/auth/users/{id}/status

Response:
  - 204: Status changed
  - 400: est_actif missing
  - 403: FORBIDDEN
  - 404: USER_NOT_FOUND
*/
func (handler *Handler) setUserStatus(writer http.ResponseWriter, request *http.Request) {
	var input changeStatusRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.EstActif == nil {
		respond.Error(writer, request, apperr.ValidationError("Données invalides", apperr.FieldError{Field: FieldEstActif, Message: "Ce champ est obligatoire"}))
		return
	}

	manager, err := handler.manager(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := manager.SetUserActive(request.Context(), requestutil.ID(request, "id"), *input.EstActif); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.directory.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

// # Session Binding

func (handler *Handler) manager(request *http.Request) (*Manager, error) {
	sessionID, err := requestutil.RequiredSessionID(request)
	if err != nil {
		return nil, err
	}
	return handler.registry.Get(request.Context(), sessionID), nil
}

// rotate moves the signed-in session under a new identifier and sends it to
// the client.
func (handler *Handler) rotate(writer http.ResponseWriter, request *http.Request) error {
	sessionID, err := requestutil.RequiredSessionID(request)
	if err != nil {
		return err
	}

	rotated, err := handler.registry.Rotate(request.Context(), sessionID)
	if err != nil {
		return err
	}

	middleware.SetSessionCookie(writer, request, rotated)
	return nil
}

// Identify injects the claims of the session's signed-in user when the
// request did not already authenticate with a Bearer token. The session is
// validated against the directory first.
func (handler *Handler) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) != nil {
			next.ServeHTTP(writer, request)
			return
		}

		manager, err := handler.manager(request)
		if err != nil {
			next.ServeHTTP(writer, request)
			return
		}

		state := manager.Validate(request.Context())
		if !state.IsAuthenticated {
			next.ServeHTTP(writer, request)
			return
		}

		claims, err := handler.tokens.VerifyToken(state.Token)
		if err != nil {
			next.ServeHTTP(writer, request)
			return
		}

		next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthUser(request.Context(), claims)))
	})
}

// ResolveRole implements [middleware.RoleResolver].
func (handler *Handler) ResolveRole(request *http.Request) (sec.UserRole, bool) {
	if claims := ctxutil.GetAuthUser(request.Context()); claims != nil {
		return sec.UserRole(claims.Role), true
	}

	manager, err := handler.manager(request)
	if err != nil {
		return "", false
	}

	state := manager.Validate(request.Context())
	if !state.IsAuthenticated {
		return "", false
	}
	return state.User.Role, true
}

// # Account Status

// AccountStatus adapts a [UserDirectory] to [middleware.AccountChecker].
type AccountStatus struct {
	directory UserDirectory
}

// NewAccountStatus wraps directory.
func NewAccountStatus(directory UserDirectory) *AccountStatus {
	return &AccountStatus{directory: directory}
}

// CurrentRole returns the directory role of userID and whether the account
// exists and is active.
func (status *AccountStatus) CurrentRole(ctx context.Context, userID string) (sec.UserRole, bool, error) {
	user, err := status.directory.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return user.Role, user.EstActif, nil
}
