// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package agrirequest

import (
	"context"
	"log/slog"
	"sync"

	"github.com/agroviatech/portal/internal/platform/metrics"
	"github.com/agroviatech/portal/internal/platform/sec"
	"github.com/agroviatech/portal/internal/users/auth"
)

// triggerAutoPromotion labels role changes made by the promoter.
const triggerAutoPromotion = "auto_promotion"

// RoleSession is the part of a session manager the promoter drives.
type RoleSession interface {
	UserID() string
	Role() sec.UserRole
	UpdateRole(ctx context.Context, role sec.UserRole) error
}

// SessionLocator returns the live sessions signed in as userID.
type SessionLocator func(userID string) []RoleSession

// RegistrySessions adapts a [auth.SessionRegistry] to [SessionLocator].
func RegistrySessions(registry *auth.SessionRegistry) SessionLocator {
	return func(userID string) []RoleSession {
		managers := registry.ForUser(userID)
		sessions := make([]RoleSession, len(managers))
		for i, manager := range managers {
			sessions[i] = manager
		}
		return sessions
	}
}

/*
AutoPromoter turns an approved request into a VISITEUR → AGRICULTEUR role
change, performed through the requester's session managers.

# Rules

  - Only sessions still signed in as the requester with role VISITEUR are promoted.
  - A request id promotes at most once per process. The id is reserved for
    the length of an attempt, so an approval and a concurrent reconcile of the
    same request cannot both promote, and later visits by a demoted user leave
    the role alone.
  - Users offline at approval time are promoted by [AutoPromoter.Reconcile]
    the next time their session looks at the request.
*/
type AutoPromoter struct {
	sessions SessionLocator
	logger   *slog.Logger

	mu       sync.Mutex
	promoted map[string]struct{}
}

// NewAutoPromoter creates a promoter. Register it with [Service.Subscribe]
// using [AutoPromoter.OnTransition].
func NewAutoPromoter(sessions SessionLocator, logger *slog.Logger) *AutoPromoter {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoPromoter{
		sessions: sessions,
		logger:   logger,
		promoted: make(map[string]struct{}),
	}
}

// OnTransition is a [Listener] reacting to approvals.
func (promoter *AutoPromoter) OnTransition(ctx context.Context, transition Transition) {
	if transition.To != StatusApproved || transition.Request == nil {
		return
	}

	request := transition.Request
	if !promoter.reserve(request.ID) {
		return
	}

	promoted := false
	for _, session := range promoter.sessions(request.UserID) {
		if promoter.promote(ctx, session, request) {
			promoted = true
		}
	}

	if !promoted {
		promoter.release(request.ID)
		promoter.logger.InfoContext(ctx, "agri_promotion_deferred",
			slog.String("request_id", request.ID),
			slog.String("user_id", request.UserID),
		)
	}
}

/*
Reconcile promotes session when request is its user's approved request and the
promotion has not happened yet.

Returns:
  - bool: true when the role was changed
*/
func (promoter *AutoPromoter) Reconcile(ctx context.Context, session RoleSession, request *Request) bool {
	if request == nil || request.Status != StatusApproved || !promoter.reserve(request.ID) {
		return false
	}

	if !promoter.promote(ctx, session, request) {
		promoter.release(request.ID)
		return false
	}
	return true
}

func (promoter *AutoPromoter) promote(ctx context.Context, session RoleSession, request *Request) bool {
	if session.UserID() != request.UserID || session.Role() != sec.RoleVisiteur {
		return false
	}

	if err := session.UpdateRole(ctx, sec.RoleAgriculteur); err != nil {
		promoter.logger.WarnContext(ctx, "agri_promotion_failed",
			slog.String("request_id", request.ID),
			slog.String("user_id", request.UserID),
			slog.Any("error", err),
		)
		return false
	}

	metrics.RoleChanges.WithLabelValues(string(sec.RoleAgriculteur), triggerAutoPromotion).Inc()
	promoter.logger.InfoContext(ctx, "agri_promotion_applied",
		slog.String("request_id", request.ID),
		slog.String("user_id", request.UserID),
	)
	return true
}

// reserve claims requestID for one promotion attempt. It is false when the
// request was already promoted or an attempt is in flight.
func (promoter *AutoPromoter) reserve(requestID string) bool {
	promoter.mu.Lock()
	defer promoter.mu.Unlock()

	if _, ok := promoter.promoted[requestID]; ok {
		return false
	}
	promoter.promoted[requestID] = struct{}{}
	return true
}

// release gives requestID back after an attempt that promoted nothing.
func (promoter *AutoPromoter) release(requestID string) {
	promoter.mu.Lock()
	delete(promoter.promoted, requestID)
	promoter.mu.Unlock()
}
