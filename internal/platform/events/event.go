// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

/*
Package events publishes domain events (account registration, role changes,
farmer request transitions) to downstream consumers.

# Architecture

Domain services depend on the [Publisher] interface only. Production wiring
uses [KafkaPublisher]; deployments without brokers fall back to
[LogPublisher], which records the same envelope in the structured log.
Publishing is best effort: a failed publish is logged by the caller and never
rolls back the domain operation that produced it.
*/
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/agroviatech/portal/pkg/uuid"
)

// # Event Types

const (
	TypeUserRegistered      = "user.registered"
	TypeUserRoleChanged     = "user.role_changed"
	TypeAgriRequestCreated  = "agri_request.created"
	TypeAgriRequestApproved = "agri_request.approved"
	TypeAgriRequestRejected = "agri_request.rejected"
)

// # Aggregates

const (
	AggregateUser        = "user"
	AggregateAgriRequest = "agriculteur_request"
)

const (
	sourcePortal           = "agrovia-portal"
	currentEnvelopeVersion = 1
)

// Event is the envelope written to every topic.
type Event struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Version       int             `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent builds an envelope with a fresh id and the current UTC time.
func NewEvent(eventType, aggregateID, aggregateType string, data any) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		EventID:       uuid.New(),
		EventType:     eventType,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		Version:       currentEnvelopeVersion,
		Timestamp:     time.Now().UTC(),
		Source:        sourcePortal,
		Data:          payload,
	}, nil
}

// WithCorrelationID sets the correlation id, usually the HTTP request id.
func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

// Marshal serializes the event to JSON bytes.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalData decodes the payload into target.
func (e *Event) UnmarshalData(target any) error {
	return json.Unmarshal(e.Data, target)
}

// Publisher sends events to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
}
