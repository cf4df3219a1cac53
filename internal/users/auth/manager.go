// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/agroviatech/portal/internal/platform/apperr"
	"github.com/agroviatech/portal/internal/platform/constants"
	"github.com/agroviatech/portal/internal/platform/events"
	"github.com/agroviatech/portal/internal/platform/metrics"
	"github.com/agroviatech/portal/internal/platform/sec"
	"github.com/agroviatech/portal/internal/users/session"
)

// # Contracts & Types

// TokenIssuer issues and verifies session tokens. [*sec.TokenService]
// satisfies it.
type TokenIssuer interface {
	Issue(userID, email, role string) (string, time.Time, error)
	VerifyToken(token string) (*sec.AuthClaims, error)
}

// Phase is the coarse state of a [Manager].
type Phase string

const (
	PhaseUnauthenticated Phase = "unauthenticated"
	PhaseLoading         Phase = "loading"
	PhaseAuthenticated   Phase = "authenticated"
	PhaseError           Phase = "error"
)

// State is a point-in-time copy of a Manager's observable state.
type State struct {
	User            *User      `json:"user"`
	Token           string     `json:"token,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	IsLoading       bool       `json:"is_loading"`
	IsAuthenticated bool       `json:"is_authenticated"`
	Error           string     `json:"error,omitempty"`
	RedirectTo      string     `json:"redirect_to,omitempty"`
	Phase           Phase      `json:"phase"`
}

// Dependencies groups the collaborators of a [Manager].
type Dependencies struct {
	Directory UserDirectory
	Verifier  *CredentialVerifier
	Hasher    sec.PasswordHasher
	Tokens    TokenIssuer
	Publisher events.Publisher
	Logger    *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// unexpectedErrorMessage is stored in the error state for non-domain failures.
const unexpectedErrorMessage = "Une erreur inattendue s'est produite"

/*
Manager is the authentication state machine of one client session.

# Concurrency

Operations are serialized: opMu is held for the duration of an operation and a
second operation started while one is in flight fails fast with
[ErrOperationInProgress]. Logout, Init and UpdateRole wait for the in-flight
operation instead of failing. mu guards the observable fields and the store
binding, and is never held while calling the directory, the store or
observers.
*/
type Manager struct {
	directory UserDirectory
	verifier  *CredentialVerifier
	hasher    sec.PasswordHasher
	tokens    TokenIssuer
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
	store     session.Store

	opMu sync.Mutex

	mu         sync.RWMutex
	user       *User
	token      string
	expiresAt  time.Time
	loading    bool
	errMessage string
	redirectTo string

	observersMu  sync.Mutex
	observers    map[int]func(State)
	nextObserver int
}

// NewManager binds a Manager to the persisted slots of one client session.
// Call [Manager.Init] before serving requests.
func NewManager(dependencies Dependencies, store session.Store) *Manager {
	now := dependencies.Now
	if now == nil {
		now = time.Now
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		directory: dependencies.Directory,
		verifier:  dependencies.Verifier,
		hasher:    dependencies.Hasher,
		tokens:    dependencies.Tokens,
		publisher: dependencies.Publisher,
		logger:    logger,
		now:       now,
		store:     store,
		observers: make(map[int]func(State)),
	}
}

// # Startup

/*
Init restores the session from the persisted token.

Description: The token is verified and the user looked up in the directory.
Any failure removes both persisted keys and leaves the manager
unauthenticated; nothing is surfaced to the caller. When the directory role
differs from the role in the token a fresh token is issued.
*/
func (manager *Manager) Init(ctx context.Context) {
	manager.opMu.Lock()
	defer manager.opMu.Unlock()

	token, err := manager.slots().Get(ctx, constants.StorageKeyToken)
	if err != nil {
		if !errors.Is(err, session.ErrKeyNotFound) {
			manager.logger.WarnContext(ctx, "auth_session_restore_read_failed", slog.Any("error", err))
		}
		return
	}

	claims, err := manager.tokens.VerifyToken(token)
	if err != nil {
		manager.logger.DebugContext(ctx, "auth_session_restore_invalid_token", slog.Any("error", err))
		manager.clearPersisted(ctx)
		return
	}

	user, err := manager.directory.FindByID(ctx, claims.UserID)
	if err != nil || !user.EstActif {
		manager.logger.DebugContext(ctx, "auth_session_restore_unknown_user", slog.String("user_id", claims.UserID))
		manager.clearPersisted(ctx)
		return
	}

	expiresAt := claims.ExpiresAt.Time
	if string(user.Role) != claims.Role {
		token, expiresAt, err = manager.tokens.Issue(user.ID, user.Email, string(user.Role))
		if err != nil {
			manager.clearPersisted(ctx)
			return
		}
	}

	if err := manager.persist(ctx, user, token); err != nil {
		manager.logger.WarnContext(ctx, "auth_session_restore_persist_failed", slog.Any("error", err))
		manager.clearPersisted(ctx)
		return
	}

	manager.mu.Lock()
	manager.user = user
	manager.token = token
	manager.expiresAt = expiresAt
	manager.mu.Unlock()

	manager.notify()
}

// # Authentication Flow

// LoginInput holds the credentials of a login attempt.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by successful login and registration.
type AuthResponse struct {
	User       *User     `json:"user"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	Message    string    `json:"message"`
	RedirectTo string    `json:"redirect_to"`
}

/*
Login authenticates the user and establishes the session.

Parameters:
  - ctx: context.Context
  - input: LoginInput

Returns:
  - *AuthResponse: Welcome payload with the landing route
  - error: ErrInvalidCredentials, ErrOperationInProgress or internal failures
*/
func (manager *Manager) Login(ctx context.Context, input LoginInput) (response *AuthResponse, err error) {
	if err := manager.begin("login"); err != nil {
		return nil, err
	}
	defer func() { manager.end(ctx, "login", err) }()

	user, err := manager.verifier.Verify(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	loginAt := manager.now()
	if err := manager.directory.TouchLogin(ctx, user.ID, loginAt); err != nil {
		manager.logger.WarnContext(ctx, "auth_touch_login_failed", slog.String("user_id", user.ID), slog.Any("error", err))
	} else {
		user.DernierLogin = &loginAt
	}

	response, err = manager.establish(ctx, user)
	if err != nil {
		return nil, err
	}
	response.Message = fmt.Sprintf("Bienvenue %s !", user.FullName())

	manager.logger.InfoContext(ctx, "auth_login_succeeded",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return response, nil
}

// RegisterInput holds the self-registration form.
type RegisterInput struct {
	Nom       string       `json:"nom"`
	Prenom    string       `json:"prenom"`
	Email     string       `json:"email"`
	Password  string       `json:"password"`
	Telephone string       `json:"telephone,omitempty"`
	Adresse   string       `json:"adresse,omitempty"`
	Region    string       `json:"region,omitempty"`
	Role      sec.UserRole `json:"role"`
}

/*
Register creates an active account and signs it in.

Description: ADMIN cannot be chosen here; an empty role defaults to
VISITEUR. Email uniqueness is enforced by the directory.

Returns:
  - *AuthResponse: Welcome payload with the landing route
  - error: validation errors, ErrRoleNotAllowed, ErrEmailAlreadyUsed
*/
func (manager *Manager) Register(ctx context.Context, input RegisterInput) (response *AuthResponse, err error) {
	if err := manager.begin("register"); err != nil {
		return nil, err
	}
	defer func() { manager.end(ctx, "register", err) }()

	if input.Role == "" {
		input.Role = sec.RoleVisiteur
	}
	if err := validateRegistration(input); err != nil {
		return nil, err
	}
	if !input.Role.SelfRegistrable() {
		return nil, ErrRoleNotAllowed
	}

	passwordHash, err := manager.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_register_hash_failed: %w", err)
	}

	createdAt := manager.now()
	user := &User{
		ID:           newUserID(),
		Nom:          normalizeName(input.Nom),
		Prenom:       normalizeName(input.Prenom),
		Email:        NormalizeEmail(input.Email),
		PasswordHash: passwordHash,
		Role:         input.Role,
		Telephone:    input.Telephone,
		Adresse:      input.Adresse,
		Region:       input.Region,
		EstActif:     true,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}

	if err := manager.directory.Create(ctx, user); err != nil {
		return nil, err
	}

	events.Emit(ctx, manager.publisher, constants.TopicUserEvents, events.TypeUserRegistered, user.ID, events.AggregateUser, user)

	response, err = manager.establish(ctx, user)
	if err != nil {
		return nil, err
	}
	response.Message = fmt.Sprintf("Compte créé avec succès ! Bienvenue %s !", user.FullName())

	manager.logger.InfoContext(ctx, "auth_register_succeeded",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return response, nil
}

// Logout clears the persisted keys and resets the state. It never fails and
// may be called any number of times.
func (manager *Manager) Logout(ctx context.Context) {
	manager.opMu.Lock()
	defer manager.opMu.Unlock()

	manager.clearPersisted(ctx)

	manager.mu.Lock()
	wasAuthenticated := manager.user != nil
	manager.resetLocked()
	manager.errMessage = ""
	manager.mu.Unlock()

	metrics.AuthOperations.WithLabelValues("logout", metrics.OutcomeSuccess).Inc()
	if wasAuthenticated {
		manager.logger.InfoContext(ctx, "auth_logout")
	}
	manager.notify()
}

// # Profile & Roles

// ProfileUpdate carries the profile fields to change; nil fields are kept.
type ProfileUpdate struct {
	Nom       *string `json:"nom,omitempty"`
	Prenom    *string `json:"prenom,omitempty"`
	Telephone *string `json:"telephone,omitempty"`
	Adresse   *string `json:"adresse,omitempty"`
	Region    *string `json:"region,omitempty"`
}

/*
UpdateProfile merges the given fields into the signed-in user's record.

Description: The fields are merged into the directory record, not the cached
copy. A session whose account was deactivated fails with ErrNotAuthenticated.

Returns:
  - *User: The updated profile
  - error: ErrNotAuthenticated, validation errors or directory failures
*/
func (manager *Manager) UpdateProfile(ctx context.Context, update ProfileUpdate) (updated *User, err error) {
	if err := manager.begin("update_profile"); err != nil {
		return nil, err
	}
	defer func() { manager.end(ctx, "update_profile", err) }()

	if err := validateProfileUpdate(update); err != nil {
		return nil, err
	}

	stored, token, err := manager.refresh(ctx)
	if err != nil {
		return nil, err
	}

	merged := stored.Clone()
	mergeProfile(merged, update)

	if err := manager.directory.Update(ctx, merged, manager.now()); err != nil {
		return nil, err
	}

	if err := manager.persist(ctx, merged, token); err != nil {
		return nil, err
	}

	manager.mu.Lock()
	manager.user = merged.Clone()
	manager.mu.Unlock()

	return merged, nil
}

/*
ChangeUserRole sets the role of any user. Only an active ADMIN, as recorded
in the directory at call time, may call it.

Parameters:
  - ctx: context.Context
  - userID: string (Target account, not necessarily the caller)
  - role: sec.UserRole

Returns:
  - *User: The updated target
  - error: ErrForbidden, ErrUserNotFound or validation errors
*/
func (manager *Manager) ChangeUserRole(ctx context.Context, userID string, role sec.UserRole) (updated *User, err error) {
	if err := manager.begin("change_user_role"); err != nil {
		return nil, err
	}
	defer func() { manager.end(ctx, "change_user_role", err) }()

	caller, err := manager.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	if !role.Valid() {
		return nil, apperr.ValidationError("Données invalides", apperr.FieldError{Field: FieldRole, Message: "Rôle inconnu"})
	}

	updated, err = manager.directory.UpdateRole(ctx, userID, role, manager.now())
	if err != nil {
		return nil, err
	}

	if updated.ID == caller.ID {
		if err := manager.reissue(ctx, updated); err != nil {
			return nil, err
		}
	}

	metrics.RoleChanges.WithLabelValues(string(role), "admin").Inc()
	events.Emit(ctx, manager.publisher, constants.TopicUserEvents, events.TypeUserRoleChanged, updated.ID, events.AggregateUser, roleChange{
		UserID:    updated.ID,
		Role:      role,
		ChangedBy: caller.ID,
	})

	manager.logger.InfoContext(ctx, "auth_role_changed",
		slog.String("user_id", updated.ID),
		slog.String("role", string(role)),
		slog.String("changed_by", caller.ID),
	)
	return updated, nil
}

// roleChange is the payload of user.role_changed events.
type roleChange struct {
	UserID    string       `json:"user_id"`
	Role      sec.UserRole `json:"role"`
	ChangedBy string       `json:"changed_by"`
}

/*
SetUserActive enables or disables another account. Only an active ADMIN may
call it, and an admin cannot disable their own account.

Returns:
  - error: ErrForbidden, ErrUserNotFound
*/
func (manager *Manager) SetUserActive(ctx context.Context, userID string, active bool) (err error) {
	if err := manager.begin("set_user_active"); err != nil {
		return err
	}
	defer func() { manager.end(ctx, "set_user_active", err) }()

	caller, err := manager.requireAdmin(ctx)
	if err != nil {
		return err
	}
	if userID == caller.ID && !active {
		return ErrForbidden
	}

	if err := manager.directory.SetActive(ctx, userID, active, manager.now()); err != nil {
		return err
	}

	manager.logger.InfoContext(ctx, "auth_account_status_changed",
		slog.String("user_id", userID),
		slog.Bool("active", active),
		slog.String("changed_by", caller.ID),
	)
	return nil
}

/*
UpdateRole changes the signed-in user's own role and points the redirect
intent at the new role's landing route.

Description: Used by the farmer promotion flow. It waits for an in-flight
operation rather than failing, and never grants ADMIN. When another session
of the same user already wrote the role, only this session's token and
redirect are refreshed and no event is emitted.
*/
func (manager *Manager) UpdateRole(ctx context.Context, role sec.UserRole) (err error) {
	manager.opMu.Lock()
	defer manager.opMu.Unlock()
	defer func() {
		metrics.AuthOperations.WithLabelValues("update_role", metrics.Outcome(err)).Inc()
	}()

	if role == sec.RoleAdmin || !role.Valid() {
		return ErrRoleNotAllowed
	}

	stored, _, err := manager.refresh(ctx)
	if err != nil {
		return err
	}

	changed := stored.Role != role
	if changed {
		updated, err := manager.directory.UpdateRole(ctx, stored.ID, role, manager.now())
		if err != nil {
			return err
		}
		if err := manager.reissue(ctx, updated); err != nil {
			return err
		}
	}

	manager.mu.Lock()
	manager.redirectTo = sec.LandingRoute(role)
	manager.mu.Unlock()

	if changed {
		events.Emit(ctx, manager.publisher, constants.TopicUserEvents, events.TypeUserRoleChanged, stored.ID, events.AggregateUser, roleChange{
			UserID:    stored.ID,
			Role:      role,
			ChangedBy: stored.ID,
		})
	}

	manager.notify()
	return nil
}

// # Queries

// State returns the current state. An expired token tears the session down
// first, so callers never observe an authenticated state past expiry.
func (manager *Manager) State(ctx context.Context) State {
	manager.mu.RLock()
	token := manager.token
	manager.mu.RUnlock()

	if token != "" {
		if _, err := manager.tokens.VerifyToken(token); err != nil {
			manager.teardown(ctx, token)
		}
	}

	return manager.Snapshot()
}

/*
Validate re-checks the session against the directory.

Description: Tears the session down when the token is no longer valid or the
user vanished or was deactivated. When the directory role changed (an admin
used ChangeUserRole) the cached user is refreshed and a new token issued.
*/
func (manager *Manager) Validate(ctx context.Context) State {
	state := manager.State(ctx)
	if !state.IsAuthenticated {
		return state
	}

	if !manager.opMu.TryLock() {
		return state
	}
	defer manager.opMu.Unlock()

	if _, _, err := manager.refresh(ctx); err != nil && !errors.Is(err, ErrNotAuthenticated) {
		manager.logger.WarnContext(ctx, "auth_validate_failed", slog.Any("error", err))
	}

	return manager.Snapshot()
}

// Snapshot returns the current state without any validation.
func (manager *Manager) Snapshot() State {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.snapshotLocked()
}

// CanAccessRoute reports whether the signed-in user may open path. It is
// false while unauthenticated.
func (manager *Manager) CanAccessRoute(path string) bool {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	if manager.user == nil {
		return false
	}
	return sec.CanAccessRoute(manager.user.Role, path)
}

// UserID returns the signed-in user's id, or "".
func (manager *Manager) UserID() string {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	if manager.user == nil {
		return ""
	}
	return manager.user.ID
}

// Role returns the signed-in user's role, or "" when unauthenticated.
func (manager *Manager) Role() sec.UserRole {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	if manager.user == nil {
		return ""
	}
	return manager.user.Role
}

// ClearRedirect drops the redirect intent once the caller navigated.
func (manager *Manager) ClearRedirect() {
	manager.mu.Lock()
	manager.redirectTo = ""
	manager.mu.Unlock()
	manager.notify()
}

// Subscribe registers fn to receive every state change. The returned function
// removes the subscription.
func (manager *Manager) Subscribe(fn func(State)) (cancel func()) {
	manager.observersMu.Lock()
	id := manager.nextObserver
	manager.nextObserver++
	manager.observers[id] = fn
	manager.observersMu.Unlock()

	return func() {
		manager.observersMu.Lock()
		delete(manager.observers, id)
		manager.observersMu.Unlock()
	}
}

// # Internal State Transitions

func (manager *Manager) begin(operation string) error {
	if !manager.opMu.TryLock() {
		metrics.AuthOperations.WithLabelValues(operation, metrics.OutcomeFailure).Inc()
		return ErrOperationInProgress
	}

	manager.mu.Lock()
	manager.loading = true
	manager.errMessage = ""
	manager.mu.Unlock()

	manager.notify()
	return nil
}

func (manager *Manager) end(ctx context.Context, operation string, err error) {
	manager.mu.Lock()
	manager.loading = false
	if err != nil {
		manager.errMessage = errorMessage(err)
	}
	manager.mu.Unlock()

	manager.opMu.Unlock()

	metrics.AuthOperations.WithLabelValues(operation, metrics.Outcome(err)).Inc()
	if err != nil {
		manager.logger.InfoContext(ctx, "auth_operation_failed",
			slog.String("operation", operation),
			slog.Any("error", err),
		)
	}
	manager.notify()
}

// establish issues a token for user, persists it and commits the
// authenticated state.
func (manager *Manager) establish(ctx context.Context, user *User) (*AuthResponse, error) {
	token, expiresAt, err := manager.tokens.Issue(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("auth_issue_token_failed: %w", err)
	}

	if err := manager.persist(ctx, user, token); err != nil {
		return nil, err
	}

	redirectTo := sec.LandingRoute(user.Role)

	manager.mu.Lock()
	manager.user = user.Clone()
	manager.token = token
	manager.expiresAt = expiresAt
	manager.redirectTo = redirectTo
	manager.mu.Unlock()

	return &AuthResponse{
		User:       user.Clone(),
		Token:      token,
		ExpiresAt:  expiresAt,
		RedirectTo: redirectTo,
	}, nil
}

// reissue replaces the cached user and token after a role change.
func (manager *Manager) reissue(ctx context.Context, user *User) error {
	token, expiresAt, err := manager.tokens.Issue(user.ID, user.Email, string(user.Role))
	if err != nil {
		return fmt.Errorf("auth_issue_token_failed: %w", err)
	}

	if err := manager.persist(ctx, user, token); err != nil {
		return err
	}

	manager.mu.Lock()
	manager.user = user.Clone()
	manager.token = token
	manager.expiresAt = expiresAt
	manager.mu.Unlock()
	return nil
}

/*
refresh reloads the signed-in user from the directory.

Description: An expired token, or an account that vanished or was
deactivated, tears the session down and yields ErrNotAuthenticated. A role
that changed in the directory is adopted and a new token issued. Callers hold
opMu.

Returns:
  - *User: The directory record
  - string: The session token, reissued when the role drifted
  - error: ErrNotAuthenticated or directory failures
*/
func (manager *Manager) refresh(ctx context.Context) (*User, string, error) {
	current, token := manager.current()
	if current == nil {
		return nil, "", ErrNotAuthenticated
	}

	if _, err := manager.tokens.VerifyToken(token); err != nil {
		manager.teardown(ctx, token)
		return nil, "", ErrNotAuthenticated
	}

	stored, err := manager.directory.FindByID(ctx, current.ID)
	switch {
	case errors.Is(err, ErrUserNotFound) || (err == nil && !stored.EstActif):
		manager.teardown(ctx, token)
		return nil, "", ErrNotAuthenticated
	case err != nil:
		return nil, "", err
	}

	if stored.Role != current.Role {
		if err := manager.reissue(ctx, stored); err != nil {
			return nil, "", err
		}
		_, token = manager.current()
	}
	return stored, token, nil
}

// requireAdmin returns the refreshed caller when it is an active ADMIN.
func (manager *Manager) requireAdmin(ctx context.Context) (*User, error) {
	caller, _, err := manager.refresh(ctx)
	if errors.Is(err, ErrNotAuthenticated) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	if caller.Role != sec.RoleAdmin {
		return nil, ErrForbidden
	}
	return caller, nil
}

// teardown resets the session if it still holds token.
func (manager *Manager) teardown(ctx context.Context, token string) {
	manager.mu.Lock()
	if manager.token != token {
		manager.mu.Unlock()
		return
	}
	manager.resetLocked()
	manager.mu.Unlock()

	manager.clearPersisted(ctx)
	manager.logger.InfoContext(ctx, "auth_session_torn_down")
	manager.notify()
}

func (manager *Manager) persist(ctx context.Context, user *User, token string) error {
	return writeSlots(ctx, manager.slots(), user, token)
}

func (manager *Manager) clearPersisted(ctx context.Context) {
	if err := manager.slots().Delete(ctx, constants.StorageKeyToken, constants.StorageKeyProfile); err != nil {
		manager.logger.WarnContext(ctx, "auth_session_clear_failed", slog.Any("error", err))
	}
}

/*
rebind moves the persisted session to store and clears the previous slots.
It waits for an in-flight operation.
*/
func (manager *Manager) rebind(ctx context.Context, store session.Store) error {
	manager.opMu.Lock()
	defer manager.opMu.Unlock()

	manager.clearPersisted(ctx)

	manager.mu.Lock()
	manager.store = store
	manager.mu.Unlock()

	current, token := manager.current()
	if current == nil {
		return nil
	}
	return writeSlots(ctx, store, current, token)
}

func (manager *Manager) slots() session.Store {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.store
}

func writeSlots(ctx context.Context, store session.Store, user *User, token string) error {
	profile, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("auth_persist_profile_encode_failed: %w", err)
	}

	if err := store.Set(ctx, constants.StorageKeyToken, token); err != nil {
		return fmt.Errorf("auth_persist_token_failed: %w", err)
	}
	if err := store.Set(ctx, constants.StorageKeyProfile, string(profile)); err != nil {
		return fmt.Errorf("auth_persist_profile_failed: %w", err)
	}
	return nil
}

func (manager *Manager) current() (*User, string) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.user.Clone(), manager.token
}

func (manager *Manager) resetLocked() {
	manager.user = nil
	manager.token = ""
	manager.expiresAt = time.Time{}
	manager.redirectTo = ""
}

func (manager *Manager) snapshotLocked() State {
	state := State{
		User:            manager.user.Clone(),
		Token:           manager.token,
		IsLoading:       manager.loading,
		IsAuthenticated: manager.user != nil && manager.token != "",
		Error:           manager.errMessage,
		RedirectTo:      manager.redirectTo,
	}
	if !manager.expiresAt.IsZero() {
		expiresAt := manager.expiresAt
		state.ExpiresAt = &expiresAt
	}

	switch {
	case state.IsLoading:
		state.Phase = PhaseLoading
	case state.IsAuthenticated:
		state.Phase = PhaseAuthenticated
	case state.Error != "":
		state.Phase = PhaseError
	default:
		state.Phase = PhaseUnauthenticated
	}
	return state
}

func (manager *Manager) notify() {
	manager.observersMu.Lock()
	if len(manager.observers) == 0 {
		manager.observersMu.Unlock()
		return
	}
	observers := make([]func(State), 0, len(manager.observers))
	for _, observer := range manager.observers {
		observers = append(observers, observer)
	}
	manager.observersMu.Unlock()

	state := manager.Snapshot()
	for _, observer := range observers {
		observer(state)
	}
}

func errorMessage(err error) string {
	var appError *apperr.AppError
	if errors.As(err, &appError) && appError.HTTPStatus < 500 {
		return appError.Message
	}
	return unexpectedErrorMessage
}
