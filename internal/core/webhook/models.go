package webhook

import (
	"time"

	"github.com/google/uuid"

	"github.com/beaconcdp/beacon/internal/core/filter"
)

// Event types published by the application.
const (
	EventContactCreated   = "contact.created"
	EventContactUpdated   = "contact.updated"
	EventCampaignSent     = "campaign.sent"
	EventMessageDelivered = "message.delivered"
	EventMessageFailed    = "message.failed"
)

// KnownEventTypes lists every event a subscription may register for.
var KnownEventTypes = []string{
	EventContactCreated,
	EventContactUpdated,
	EventCampaignSent,
	EventMessageDelivered,
	EventMessageFailed,
}

// Subscription is an outbound webhook endpoint. Conditions, when set, are
// evaluated against the event payload and gate delivery.
type Subscription struct {
	ID          uuid.UUID      `json:"id"`
	WorkspaceID uuid.UUID      `json:"workspace_id"`
	Name        string         `json:"name"`
	URL         string         `json:"url"`
	Secret      string         `json:"-"`
	EventTypes  []string       `json:"event_types"`
	Conditions  []filter.Group `json:"conditions,omitempty"`
	Active      bool           `json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Event is the envelope POSTed to subscribers.
type Event struct {
	ID          uuid.UUID      `json:"id"`
	Type        string         `json:"type"`
	WorkspaceID uuid.UUID      `json:"workspace_id"`
	Timestamp   time.Time      `json:"timestamp"`
	Data        map[string]any `json:"data"`
}

type CreateSubscriptionRequest struct {
	Name       string         `json:"name" binding:"required"`
	URL        string         `json:"url" binding:"required"`
	EventTypes []string       `json:"event_types" binding:"required"`
	Conditions []filter.Group `json:"conditions"`
}

type UpdateSubscriptionRequest struct {
	Name       *string        `json:"name"`
	URL        *string        `json:"url"`
	EventTypes []string       `json:"event_types"`
	Conditions []filter.Group `json:"conditions"`
	Active     *bool          `json:"active"`
}

type CreateSubscriptionResponse struct {
	Subscription *Subscription `json:"subscription"`
	Secret       string        `json:"secret"` // shown once at creation
}

type ListSubscriptionsResponse struct {
	Subscriptions []*Subscription `json:"subscriptions"`
	Total         int             `json:"total"`
}
