package campaign

import (
	"time"

	"github.com/google/uuid"

	"github.com/beaconcdp/beacon/internal/core/filter"
)

type Status string

const (
	StatusDraft   Status = "draft"
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

type Campaign struct {
	ID          uuid.UUID  `json:"id"`
	WorkspaceID uuid.UUID  `json:"workspace_id"`
	SegmentID   uuid.UUID  `json:"segment_id"`
	Name        string     `json:"name"`
	Body        string     `json:"body"`
	FromNumber  string     `json:"from_number"`
	Status      Status     `json:"status"`
	SentCount   int        `json:"sent_count"`
	FailedCount int        `json:"failed_count"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Message is one delivery attempt to one contact, tracked against the
// vendor's message SID so status callbacks can be applied.
type Message struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	CampaignID  uuid.UUID `json:"campaign_id"`
	ContactID   uuid.UUID `json:"contact_id"`
	To          string    `json:"to"`
	Body        string    `json:"body"`
	Status      string    `json:"status"` // queued, sent, delivered, failed, skipped
	ProviderSID string    `json:"provider_sid,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateCampaignRequest struct {
	Name       string `json:"name" binding:"required"`
	Body       string `json:"body" binding:"required"`
	SegmentID  string `json:"segment_id" binding:"required"`
	FromNumber string `json:"from_number"`
}

type UpdateCampaignRequest struct {
	Name       *string `json:"name"`
	Body       *string `json:"body"`
	SegmentID  *string `json:"segment_id"`
	FromNumber *string `json:"from_number"`
}

type SendResult struct {
	Campaign *Campaign `json:"campaign"`
	Queued   int       `json:"queued"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
}

type ListCampaignsResponse struct {
	Campaigns []*Campaign `json:"campaigns"`
	Total     int         `json:"total"`
}

type MessageLogRequest struct {
	Filters []filter.Group `json:"filters"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

type MessageLogResponse struct {
	Messages []*Message `json:"messages"`
	Total    int        `json:"total"`
}

// MessageLogFields describes the filterable columns of the message log.
var MessageLogFields = filter.Registry{
	{Key: "to", Label: "To", Type: filter.FieldTypeString},
	{Key: "body", Label: "Body", Type: filter.FieldTypeString},
	{Key: "status", Label: "Status", Type: filter.FieldTypeEnum, Options: []filter.FieldOption{
		{Value: "queued", Label: "Queued"},
		{Value: "sent", Label: "Sent"},
		{Value: "delivered", Label: "Delivered"},
		{Value: "failed", Label: "Failed"},
		{Value: "skipped", Label: "Skipped"},
	}},
	{Key: "error", Label: "Error", Type: filter.FieldTypeString},
	{Key: "created_at", Label: "Created", Type: filter.FieldTypeDate},
}

// Record flattens a message for the filter engine.
func (m *Message) Record() filter.Record {
	return filter.Record{
		"to":         m.To,
		"body":       m.Body,
		"status":     m.Status,
		"error":      m.Error,
		"created_at": m.CreatedAt,
	}
}
