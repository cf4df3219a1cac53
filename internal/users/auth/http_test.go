// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroviatech/portal/internal/platform/constants"
	"github.com/agroviatech/portal/internal/platform/middleware"
	"github.com/agroviatech/portal/internal/users/auth"
)

// httpClient drives the auth routes while carrying the session cookie.
type httpClient struct {
	t      *testing.T
	router http.Handler
	cookie *http.Cookie
}

func newHTTPClient(t *testing.T, f *fixture) *httpClient {
	t.Helper()

	registry := auth.NewSessionRegistry(f.dependencies, f.backend, time.Hour)
	handler := auth.NewHandler(registry, f.directory, f.tokens, f.backend)

	router := chi.NewRouter()
	router.Use(middleware.SessionCookie(false))
	router.Use(middleware.Authenticate(f.tokens, auth.NewAccountStatus(f.directory)))
	router.Use(handler.Identify)
	router.Mount("/api/v1/auth", handler.Routes())

	return &httpClient{t: t, router: router}
}

// sibling returns a client of the same router with its own cookie jar.
func (client *httpClient) sibling() *httpClient {
	return &httpClient{t: client.t, router: client.router}
}

func (client *httpClient) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	client.t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		request.Header.Set(headers[i], headers[i+1])
	}
	if client.cookie != nil {
		request.AddCookie(client.cookie)
	}

	recorder := httptest.NewRecorder()
	client.router.ServeHTTP(recorder, request)

	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == constants.SessionCookieName {
			client.cookie = cookie
		}
	}
	return recorder
}

func decodeData(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, target))
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	envelope := struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope.Code, envelope.Error
}

/*
TestHTTP_RegisterStateLogout walks a cookie session through registration,
state polling and logout.
*/
func TestHTTP_RegisterStateLogout(t *testing.T) {
	f := newFixture(t)
	client := newHTTPClient(t, f)

	recorder := client.do(http.MethodPost, "/api/v1/auth/register",
		`{"nom":"Ba","prenom":"Awa","email":"awa@test.com","password":"secret1","role":"VISITEUR"}`)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	require.NotNil(t, client.cookie)
	assert.True(t, client.cookie.HttpOnly)

	var response auth.AuthResponse
	decodeData(t, recorder, &response)
	assert.Equal(t, "/visitor/dashboard", response.RedirectTo)
	assert.NotContains(t, recorder.Body.String(), "passwordhash")

	recorder = client.do(http.MethodGet, "/api/v1/auth/state", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	var state auth.State
	decodeData(t, recorder, &state)
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, "awa@test.com", state.User.Email)

	recorder = client.do(http.MethodPost, "/api/v1/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = client.do(http.MethodGet, "/api/v1/auth/state", "")
	decodeData(t, recorder, &state)
	assert.False(t, state.IsAuthenticated)
}

/*
TestHTTP_LoginErrors maps domain errors to status codes.
*/
func TestHTTP_LoginErrors(t *testing.T) {
	f := newFixture(t)
	client := newHTTPClient(t, f)

	recorder := client.do(http.MethodPost, "/api/v1/auth/login", `{"email":"admin@agroviatech.com","password":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	code, message := decodeError(t, recorder)
	assert.Equal(t, "INVALID_CREDENTIALS", code)
	assert.Equal(t, "Email ou mot de passe incorrect", message)

	recorder = client.do(http.MethodPost, "/api/v1/auth/login", `{not json`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = client.do(http.MethodPost, "/api/v1/auth/register",
		`{"nom":"X","prenom":"Y","email":"admin@agroviatech.com","password":"secret1","role":"VISITEUR"}`)
	assert.Equal(t, http.StatusConflict, recorder.Code)
	code, _ = decodeError(t, recorder)
	assert.Equal(t, "EMAIL_ALREADY_USED", code)
}

/*
TestHTTP_AdminEndpoints checks that listing users and changing roles require
an ADMIN session.
*/
func TestHTTP_AdminEndpoints(t *testing.T) {
	f := newFixture(t)
	client := newHTTPClient(t, f)

	recorder := client.do(http.MethodGet, "/api/v1/auth/users", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	client.do(http.MethodPost, "/api/v1/auth/login", `{"email":"moussa.sow@agroviatech.com","password":"admin123"}`)
	recorder = client.do(http.MethodGet, "/api/v1/auth/users", "")
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = client.do(http.MethodPatch, "/api/v1/auth/users/5/role", `{"role":"AGRICULTEUR"}`)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	client.do(http.MethodPost, "/api/v1/auth/logout", "")
	client.do(http.MethodPost, "/api/v1/auth/login", `{"email":"admin@agroviatech.com","password":"admin123"}`)

	recorder = client.do(http.MethodGet, "/api/v1/auth/users?page=1&limit=2", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"total":5`)

	recorder = client.do(http.MethodPatch, "/api/v1/auth/users/5/role", `{"role":"AGRICULTEUR"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	var user auth.User
	decodeData(t, recorder, &user)
	assert.Equal(t, "AGRICULTEUR", string(user.Role))

	recorder = client.do(http.MethodPatch, "/api/v1/auth/users/404/role", `{"role":"AGRICULTEUR"}`)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

/*
TestHTTP_BearerToken authenticates API clients without a cookie session.
*/
func TestHTTP_BearerToken(t *testing.T) {
	f := newFixture(t)
	client := newHTTPClient(t, f)

	token, _, err := f.tokens.Issue("1", "admin@agroviatech.com", "ADMIN")
	require.NoError(t, err)

	recorder := client.do(http.MethodGet, "/api/v1/auth/users", "", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = client.do(http.MethodGet, "/api/v1/auth/users", "", "Authorization", "Bearer forged")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	ghost, _, err := f.tokens.Issue("999", "ghost@agroviatech.com", "ADMIN")
	require.NoError(t, err)
	recorder = client.do(http.MethodGet, "/api/v1/auth/users", "", "Authorization", "Bearer "+ghost)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestHTTP_Access answers route permission checks.
*/
func TestHTTP_Access(t *testing.T) {
	f := newFixture(t)
	client := newHTTPClient(t, f)

	type access struct {
		Allowed bool     `json:"allowed"`
		Landing string   `json:"landing"`
		Routes  []string `json:"routes"`
	}

	var result access
	decodeData(t, client.do(http.MethodGet, "/api/v1/auth/access?path=/visitor/dashboard", ""), &result)
	assert.False(t, result.Allowed)
	assert.Equal(t, "/login", result.Landing)

	decodeData(t, client.do(http.MethodGet, "/api/v1/auth/access?path=/register", ""), &result)
	assert.True(t, result.Allowed)
	assert.Empty(t, result.Routes)

	client.do(http.MethodPost, "/api/v1/auth/login", `{"email":"ibrahim.ba@agroviatech.com","password":"admin123"}`)
	decodeData(t, client.do(http.MethodGet, "/api/v1/auth/access?path=/agriculteur/harvests/2024", ""), &result)
	assert.True(t, result.Allowed)
	assert.Equal(t, "/agriculteur/dashboard", result.Landing)
	assert.Contains(t, result.Routes, "/agriculteur")
	assert.NotContains(t, result.Routes, "/admin")

	decodeData(t, client.do(http.MethodGet, "/api/v1/auth/access?path=/admin/users", ""), &result)
	assert.False(t, result.Allowed)

	assert.Equal(t, http.StatusBadRequest, client.do(http.MethodGet, "/api/v1/auth/access", "").Code)
}

/*
TestHTTP_CurrentProfile returns the visitor default before login.
*/
func TestHTTP_CurrentProfile(t *testing.T) {
	f := newFixture(t)
	client := newHTTPClient(t, f)

	var user auth.User
	decodeData(t, client.do(http.MethodGet, "/api/v1/auth/profile/current", ""), &user)
	assert.Equal(t, "visitor-demo", user.ID)

	client.do(http.MethodPost, "/api/v1/auth/login", `{"email":"aminata.diop@agroviatech.com","password":"admin123"}`)
	decodeData(t, client.do(http.MethodGet, "/api/v1/auth/profile/current", ""), &user)
	assert.Equal(t, "4", user.ID)

	recorder := client.do(http.MethodPatch, "/api/v1/auth/profile", `{"region":"Kolda"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	decodeData(t, client.do(http.MethodGet, "/api/v1/auth/profile/current", ""), &user)
	assert.Equal(t, "Kolda", user.Region)
}

/*
TestHTTP_LoginRotatesSession replaces a session identifier chosen before
sign-in, so a client still holding it stays anonymous.
*/
func TestHTTP_LoginRotatesSession(t *testing.T) {
	f := newFixture(t)
	planter := newHTTPClient(t, f)

	planter.do(http.MethodGet, "/api/v1/auth/state", "")
	require.NotNil(t, planter.cookie)
	planted := *planter.cookie

	victim := planter.sibling()
	victim.cookie = &planted
	recorder := victim.do(http.MethodPost, "/api/v1/auth/login", `{"email":"aminata.diop@agroviatech.com","password":"admin123"}`)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.NotEqual(t, planted.Value, victim.cookie.Value)

	var state auth.State
	decodeData(t, victim.do(http.MethodGet, "/api/v1/auth/state", ""), &state)
	assert.True(t, state.IsAuthenticated)

	decodeData(t, planter.do(http.MethodGet, "/api/v1/auth/state", ""), &state)
	assert.False(t, state.IsAuthenticated)

	var user auth.User
	decodeData(t, planter.do(http.MethodGet, "/api/v1/auth/profile/current", ""), &user)
	assert.Equal(t, auth.DefaultVisitor.ID, user.ID)

	registered := planter.sibling()
	registered.cookie = &planted
	recorder = registered.do(http.MethodPost, "/api/v1/auth/register",
		`{"nom":"Ba","prenom":"Awa","email":"awa@test.com","password":"secret1","role":"VISITEUR"}`)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	assert.NotEqual(t, planted.Value, registered.cookie.Value)
}

/*
TestHTTP_DemotedAdminLosesAccess checks that an ADMIN demoted from another
session loses the admin endpoints on the next request, with a cookie session
or a bearer token issued before the demotion.
*/
func TestHTTP_DemotedAdminLosesAccess(t *testing.T) {
	f := newFixture(t)
	admin := newHTTPClient(t, f)
	admin.do(http.MethodPost, "/api/v1/auth/login", `{"email":"admin@agroviatech.com","password":"admin123"}`)

	recorder := admin.do(http.MethodPatch, "/api/v1/auth/users/3/role", `{"role":"ADMIN"}`)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	deputy := admin.sibling()
	deputy.do(http.MethodPost, "/api/v1/auth/login", `{"email":"ibrahim.ba@agroviatech.com","password":"admin123"}`)
	require.Equal(t, http.StatusOK, deputy.do(http.MethodGet, "/api/v1/auth/users", "").Code)

	stale, _, err := f.tokens.Issue("3", "ibrahim.ba@agroviatech.com", "ADMIN")
	require.NoError(t, err)

	recorder = admin.do(http.MethodPatch, "/api/v1/auth/users/3/role", `{"role":"VISITEUR"}`)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	assert.Equal(t, http.StatusForbidden, deputy.do(http.MethodGet, "/api/v1/auth/users", "").Code)
	assert.Equal(t, http.StatusForbidden, deputy.do(http.MethodPatch, "/api/v1/auth/users/3/role", `{"role":"ADMIN"}`).Code)
	assert.Equal(t, http.StatusForbidden, deputy.do(http.MethodPatch, "/api/v1/auth/users/5/role", `{"role":"AGRICULTEUR"}`).Code)

	bearer := admin.sibling()
	recorder = bearer.do(http.MethodGet, "/api/v1/auth/users", "", "Authorization", "Bearer "+stale)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	stored, err := f.directory.FindByID(t.Context(), "3")
	require.NoError(t, err)
	assert.Equal(t, "VISITEUR", string(stored.Role))
}

/*
TestHTTP_SetUserStatus disables an account from an admin session and ends the
disabled user's sessions.
*/
func TestHTTP_SetUserStatus(t *testing.T) {
	f := newFixture(t)
	admin := newHTTPClient(t, f)
	admin.do(http.MethodPost, "/api/v1/auth/login", `{"email":"admin@agroviatech.com","password":"admin123"}`)

	farmer := admin.sibling()
	farmer.do(http.MethodPost, "/api/v1/auth/login", `{"email":"moussa.sow@agroviatech.com","password":"admin123"}`)
	assert.Equal(t, http.StatusForbidden, farmer.do(http.MethodPatch, "/api/v1/auth/users/4/status", `{"est_actif":false}`).Code)

	assert.Equal(t, http.StatusBadRequest, admin.do(http.MethodPatch, "/api/v1/auth/users/2/status", `{}`).Code)

	recorder := admin.do(http.MethodPatch, "/api/v1/auth/users/2/status", `{"est_actif":false}`)
	require.Equal(t, http.StatusNoContent, recorder.Code, recorder.Body.String())

	var state auth.State
	decodeData(t, farmer.do(http.MethodGet, "/api/v1/auth/state", ""), &state)
	assert.False(t, state.IsAuthenticated)

	recorder = farmer.do(http.MethodPatch, "/api/v1/auth/profile", `{"region":"Matam"}`)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	assert.Equal(t, http.StatusNotFound, admin.do(http.MethodPatch, "/api/v1/auth/users/404/status", `{"est_actif":true}`).Code)
}
