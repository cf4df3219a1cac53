// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package agrirequest

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/agroviatech/portal/internal/platform/constants"
	"github.com/agroviatech/portal/internal/platform/events"
	"github.com/agroviatech/portal/internal/platform/metrics"
	"github.com/agroviatech/portal/internal/platform/validate"
	"github.com/agroviatech/portal/internal/users/auth"
	"github.com/agroviatech/portal/pkg/pagination"
	"github.com/agroviatech/portal/pkg/uuid"
)

// # Definitions & Constructors

// CreateInput is the request form submitted by a visitor.
type CreateInput struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Location      string `json:"location"`
	Phone         string `json:"phone"`
	Experience    string `json:"experience"`
	CultureType   string `json:"culture_type"`
	Justification string `json:"justification"`
}

// Listener observes status transitions. Listeners run synchronously after
// the transition is stored.
type Listener func(ctx context.Context, transition Transition)

// Service runs the request workflow on top of a [Store].
type Service struct {
	store     Store
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time

	listenersMu  sync.RWMutex
	listeners    map[int]Listener
	nextListener int
}

// NewService creates a workflow service. A nil publisher or logger falls back
// to the log publisher and the default logger.
func NewService(store Store, publisher events.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = events.NewLogPublisher(logger)
	}

	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		listeners: make(map[int]Listener),
	}
}

// WithClock replaces the time source. Intended for tests.
func (service *Service) WithClock(now func() time.Time) *Service {
	service.now = now
	return service
}

// Subscribe registers listener for every transition and returns a function
// removing it.
func (service *Service) Subscribe(listener Listener) (cancel func()) {
	service.listenersMu.Lock()
	id := service.nextListener
	service.nextListener++
	service.listeners[id] = listener
	service.listenersMu.Unlock()

	return func() {
		service.listenersMu.Lock()
		delete(service.listeners, id)
		service.listenersMu.Unlock()
	}
}

// # Commands

/*
CreateRequest files a new pending request for userID.

Description: Refused while the user's latest request is pending or approved.
The store re-checks the pending rule atomically, so two concurrent
submissions leave exactly one pending request.

Parameters:
  - ctx: context.Context
  - userID: string (Signed-in requester)
  - input: CreateInput

Returns:
  - *Request: The stored pending request
  - error: ErrNotAuthenticated, validation errors, ErrRequestAlreadyPending or ErrRequestAlreadyApproved
*/
func (service *Service) CreateRequest(ctx context.Context, userID string, input CreateInput) (*Request, error) {
	if userID == "" {
		return nil, auth.ErrNotAuthenticated
	}

	input = trimInput(input)
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	latest, err := service.store.LatestForUser(ctx, userID)
	switch {
	case err == nil && latest.Status == StatusPending:
		return nil, ErrRequestAlreadyPending
	case err == nil && latest.Status == StatusApproved:
		return nil, ErrRequestAlreadyApproved
	case err != nil && !errors.Is(err, ErrRequestNotFound):
		return nil, err
	}

	now := service.now()
	request := &Request{
		ID:            uuid.New(),
		UserID:        userID,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Location:      input.Location,
		Phone:         input.Phone,
		Experience:    input.Experience,
		CultureType:   input.CultureType,
		Justification: input.Justification,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := service.store.Create(ctx, request); err != nil {
		return nil, err
	}

	metrics.AgriRequestTransitions.WithLabelValues(string(StatusPending)).Inc()
	events.Emit(ctx, service.publisher, constants.TopicRequestEvents, events.TypeAgriRequestCreated, request.ID, events.AggregateAgriRequest, request)

	service.logger.InfoContext(ctx, "agri_request_created",
		slog.String("request_id", request.ID),
		slog.String("user_id", userID),
	)
	return request, nil
}

// ApproveRequest moves a pending request to approved.
func (service *Service) ApproveRequest(ctx context.Context, id string) (*Request, error) {
	return service.resolve(ctx, id, StatusApproved, events.TypeAgriRequestApproved)
}

// RejectRequest moves a pending request to rejected.
func (service *Service) RejectRequest(ctx context.Context, id string) (*Request, error) {
	return service.resolve(ctx, id, StatusRejected, events.TypeAgriRequestRejected)
}

func (service *Service) resolve(ctx context.Context, id string, to Status, eventType string) (*Request, error) {
	request, err := service.store.Transition(ctx, id, StatusPending, to, service.now())
	if err != nil {
		service.logger.InfoContext(ctx, "agri_request_transition_refused",
			slog.String("request_id", id),
			slog.String("to", string(to)),
			slog.Any("error", err),
		)
		return nil, err
	}

	metrics.AgriRequestTransitions.WithLabelValues(string(to)).Inc()
	events.Emit(ctx, service.publisher, constants.TopicRequestEvents, eventType, request.ID, events.AggregateAgriRequest, request)

	service.logger.InfoContext(ctx, "agri_request_resolved",
		slog.String("request_id", request.ID),
		slog.String("user_id", request.UserID),
		slog.String("status", string(to)),
	)

	service.notify(ctx, Transition{Request: request.Clone(), From: StatusPending, To: to})
	return request, nil
}

// # Queries

// LoadUserRequest returns the latest request of userID, or nil when the user
// never filed one.
func (service *Service) LoadUserRequest(ctx context.Context, userID string) (*Request, error) {
	request, err := service.store.LatestForUser(ctx, userID)
	if errors.Is(err, ErrRequestNotFound) {
		return nil, nil
	}
	return request, err
}

// LoadAllRequests lists requests for administrators, newest first.
func (service *Service) LoadAllRequests(ctx context.Context, filter ListFilter, params pagination.Params) ([]*Request, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, validate.RequiredError(FieldStatus, "Statut inconnu")
	}
	return service.store.List(ctx, filter, params)
}

// Stats counts requests per status.
func (service *Service) Stats(ctx context.Context) (Stats, error) {
	counts, err := service.store.CountByStatus(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Pending:  counts[StatusPending],
		Approved: counts[StatusApproved],
		Rejected: counts[StatusRejected],
	}
	stats.Total = stats.Pending + stats.Approved + stats.Rejected
	return stats, nil
}

// # Helpers

func (service *Service) notify(ctx context.Context, transition Transition) {
	service.listenersMu.RLock()
	listeners := make([]Listener, 0, len(service.listeners))
	for _, listener := range service.listeners {
		listeners = append(listeners, listener)
	}
	service.listenersMu.RUnlock()

	for _, listener := range listeners {
		listener(ctx, transition)
	}
}

func trimInput(input CreateInput) CreateInput {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Location = strings.TrimSpace(input.Location)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Experience = strings.TrimSpace(input.Experience)
	input.CultureType = strings.TrimSpace(input.CultureType)
	input.Justification = strings.TrimSpace(input.Justification)
	return input
}

func validateCreate(input CreateInput) error {
	validator := &validate.Validator{}
	validator.Required(FieldFirstName, input.FirstName).
		MaxLen(FieldFirstName, input.FirstName, auth.NameMaxLength).
		Required(FieldLastName, input.LastName).
		MaxLen(FieldLastName, input.LastName, auth.NameMaxLength).
		Required(FieldLocation, input.Location).
		Required(FieldPhone, input.Phone).
		Phone(FieldPhone, input.Phone).
		MaxLen(FieldJustification, input.Justification, JustificationMaxLength)

	if input.Experience != "" {
		validator.OneOf(FieldExperience, input.Experience, ExperienceOptions...)
	}
	if input.CultureType != "" {
		validator.OneOf(FieldCultureType, input.CultureType, CultureTypeOptions...)
	}

	return validator.Err()
}
