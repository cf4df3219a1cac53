// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

/*
Package agrirequest implements the visitor → farmer upgrade workflow.

A visitor files a request describing their farm; an administrator approves or
rejects it. Approval does not touch the user directory directly: the
[AutoPromoter] asks the requester's session managers to change role.

# Lifecycle

	pending ──approve──▶ approved (terminal)
	   │
	   └────reject────▶ rejected (terminal, a new request may be filed)

At most one request per user is pending at any time.
*/
package agrirequest

import (
	"net/http"
	"time"

	"github.com/agroviatech/portal/internal/platform/apperr"
)

// # Domain Entities

// Status is the lifecycle position of a [Request].
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Request is a visitor's application to become a farmer.
type Request struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Location      string    `json:"location"`
	Phone         string    `json:"phone"`
	Experience    string    `json:"experience"`
	CultureType   string    `json:"culture_type"`
	Justification string    `json:"justification"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Clone returns a copy of the request.
func (request *Request) Clone() *Request {
	if request == nil {
		return nil
	}
	clone := *request
	return &clone
}

// Transition describes a status change observed by listeners.
type Transition struct {
	Request *Request `json:"request"`
	From    Status   `json:"from"`
	To      Status   `json:"to"`
}

// Stats counts requests per status.
type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// ListFilter narrows [Service.LoadAllRequests]. Zero fields match everything.
type ListFilter struct {
	Status Status
	UserID string
}

// # Form Options

// ExperienceOptions are the accepted years-of-experience categories.
var ExperienceOptions = []string{
	"Moins d'1 an",
	"1-3 ans",
	"3-5 ans",
	"5-10 ans",
	"Plus de 10 ans",
}

// CultureTypeOptions are the accepted production types.
var CultureTypeOptions = []string{
	"Céréales (maïs, mil, sorgho)",
	"Légumineuses (arachide, niébé)",
	"Maraîchage (tomates, oignons, carottes)",
	"Fruits (mangues, agrumes, bananes)",
	"Cultures industrielles (coton, canne à sucre)",
	"Élevage (bovins, ovins, volailles)",
	"Autre",
}

// # Field Identifiers

const (
	FieldFirstName     = "first_name"
	FieldLastName      = "last_name"
	FieldLocation      = "location"
	FieldPhone         = "phone"
	FieldExperience    = "experience"
	FieldCultureType   = "culture_type"
	FieldJustification = "justification"
	FieldStatus        = "status"
)

// JustificationMaxLength bounds the free-text justification.
const JustificationMaxLength = 2000

// # Domain Errors

var (
	// ErrRequestAlreadyPending is returned when the user already has a pending request.
	ErrRequestAlreadyPending = apperr.New(http.StatusConflict, "REQUEST_ALREADY_PENDING", "Vous avez déjà une demande en cours de validation")

	// ErrRequestAlreadyApproved is returned when the user's latest request was approved.
	ErrRequestAlreadyApproved = apperr.New(http.StatusConflict, "REQUEST_ALREADY_APPROVED", "Votre demande a déjà été approuvée")

	// ErrRequestNotFound is returned when no request matches the id.
	ErrRequestNotFound = apperr.New(http.StatusNotFound, "REQUEST_NOT_FOUND", "Demande non trouvée")

	// ErrInvalidTransition is returned when approving or rejecting a request that is no longer pending.
	ErrInvalidTransition = apperr.New(http.StatusConflict, "INVALID_TRANSITION", "Cette demande a déjà été traitée")
)
