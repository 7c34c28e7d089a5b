package campaign

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beaconcdp/beacon/internal/core/contact"
	"github.com/beaconcdp/beacon/internal/core/filter"
	"github.com/beaconcdp/beacon/internal/messaging"
)

var (
	ErrNotFound      = errors.New("campaign not found")
	ErrWrongTenant   = errors.New("campaign belongs to a different workspace")
	ErrNotDraft      = errors.New("only draft campaigns can be modified")
	ErrAlreadySent   = errors.New("campaign has already been sent")
	ErrNoFromNumber  = errors.New("campaign has no sending number configured")
	ErrEmptyAudience = errors.New("segment resolved to no contacts")
)

// Sender is the slice of the messaging client campaign sending needs.
type Sender interface {
	SendMessage(ctx context.Context, to, from, body string) (*messaging.Message, error)
}

// AudienceResolver resolves a segment to its current contacts.
type AudienceResolver interface {
	Evaluate(ctx context.Context, workspaceID, segmentID uuid.UUID) ([]*contact.Contact, error)
}

// EventSink receives domain events for outbound webhook delivery.
type EventSink interface {
	Publish(ctx context.Context, workspaceID uuid.UUID, eventType string, payload map[string]any)
}

type Service struct {
	repo        *Repository
	segments    AudienceResolver
	sender      Sender
	events      EventSink
	defaultFrom string
}

func NewService(repo *Repository, segments AudienceResolver, sender Sender, events EventSink, defaultFrom string) *Service {
	return &Service{
		repo:        repo,
		segments:    segments,
		sender:      sender,
		events:      events,
		defaultFrom: defaultFrom,
	}
}

func (s *Service) Create(ctx context.Context, workspaceID uuid.UUID, req *CreateCampaignRequest) (*Campaign, error) {
	segmentID, err := uuid.Parse(req.SegmentID)
	if err != nil {
		return nil, fmt.Errorf("invalid segment id: %w", err)
	}

	c := &Campaign{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		SegmentID:   segmentID,
		Name:        req.Name,
		Body:        req.Body,
		FromNumber:  req.FromNumber,
		Status:      StatusDraft,
	}
	if c.FromNumber == "" {
		c.FromNumber = s.defaultFrom
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, workspaceID, id uuid.UUID) (*Campaign, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	if c.WorkspaceID != workspaceID {
		return nil, ErrWrongTenant
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, workspaceID uuid.UUID) (*ListCampaignsResponse, error) {
	campaigns, err := s.repo.List(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if campaigns == nil {
		campaigns = []*Campaign{}
	}
	return &ListCampaignsResponse{Campaigns: campaigns, Total: len(campaigns)}, nil
}

func (s *Service) Update(ctx context.Context, workspaceID, id uuid.UUID, req *UpdateCampaignRequest) (*Campaign, error) {
	c, err := s.Get(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusDraft {
		return nil, ErrNotDraft
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Body != nil {
		c.Body = *req.Body
	}
	if req.FromNumber != nil {
		c.FromNumber = *req.FromNumber
	}
	if req.SegmentID != nil {
		segmentID, err := uuid.Parse(*req.SegmentID)
		if err != nil {
			return nil, fmt.Errorf("invalid segment id: %w", err)
		}
		c.SegmentID = segmentID
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	c, err := s.Get(ctx, workspaceID, id)
	if err != nil {
		return err
	}
	if c.Status != StatusDraft {
		return ErrNotDraft
	}
	return s.repo.Delete(ctx, id)
}

// Send resolves the campaign's audience and submits one message per
// reachable, subscribed contact. Unsubscribed contacts and contacts
// without a phone number are recorded as skipped.
func (s *Service) Send(ctx context.Context, workspaceID, id uuid.UUID) (*SendResult, error) {
	c, err := s.Get(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusDraft {
		return nil, ErrAlreadySent
	}
	if c.FromNumber == "" {
		return nil, ErrNoFromNumber
	}

	audience, err := s.segments.Evaluate(ctx, workspaceID, c.SegmentID)
	if err != nil {
		return nil, err
	}
	if len(audience) == 0 {
		return nil, ErrEmptyAudience
	}

	c.Status = StatusSending
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	result := &SendResult{Campaign: c}
	for _, recipient := range audience {
		m := &Message{
			ID:          uuid.New(),
			WorkspaceID: workspaceID,
			CampaignID:  c.ID,
			ContactID:   recipient.ID,
			To:          recipient.Phone,
			Body:        renderBody(c.Body, recipient),
		}

		if recipient.Phone == "" || !recipient.Subscribed {
			m.Status = "skipped"
			if recipient.Phone == "" {
				m.Error = "no phone number"
			} else {
				m.Error = "contact unsubscribed"
			}
			result.Skipped++
			s.repo.CreateMessage(ctx, m)
			continue
		}

		sent, err := s.sender.SendMessage(ctx, recipient.Phone, c.FromNumber, m.Body)
		if err != nil {
			m.Status = "failed"
			m.Error = err.Error()
			result.Failed++
			c.FailedCount++
		} else {
			m.Status = sent.Status
			if m.Status == "" {
				m.Status = "queued"
			}
			m.ProviderSID = sent.SID
			result.Queued++
			c.SentCount++
		}
		if err := s.repo.CreateMessage(ctx, m); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	c.SentAt = &now
	if result.Queued == 0 && result.Failed > 0 {
		c.Status = StatusFailed
	} else {
		c.Status = StatusSent
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(ctx, workspaceID, "campaign.sent", map[string]any{
			"campaign_id": c.ID.String(),
			"name":        c.Name,
			"queued":      result.Queued,
			"skipped":     result.Skipped,
			"failed":      result.Failed,
		})
	}

	return result, nil
}

// renderBody substitutes contact fields into the campaign template.
// Supported tokens: {{first_name}}, {{last_name}}, {{phone}}, {{email}},
// and {{<attribute key>}} for custom attributes.
func renderBody(body string, c *contact.Contact) string {
	rendered := strings.NewReplacer(
		"{{first_name}}", c.FirstName,
		"{{last_name}}", c.LastName,
		"{{phone}}", c.Phone,
		"{{email}}", c.Email,
	).Replace(body)

	for key, value := range c.Attributes {
		token := "{{" + key + "}}"
		if strings.Contains(rendered, token) {
			rendered = strings.ReplaceAll(rendered, token, fmt.Sprint(value))
		}
	}
	return rendered
}

// Messages returns a campaign's message log, filtered in memory with the
// caller's expression.
func (s *Service) Messages(ctx context.Context, workspaceID, campaignID uuid.UUID, req *MessageLogRequest) (*MessageLogResponse, error) {
	if _, err := s.Get(ctx, workspaceID, campaignID); err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 || limit > 1000 {
		limit = 200
	}

	messages, err := s.repo.ListMessages(ctx, campaignID, limit, req.Offset)
	if err != nil {
		return nil, err
	}

	if len(req.Filters) > 0 {
		matched := make([]*Message, 0, len(messages))
		for _, m := range messages {
			if filter.Evaluate(req.Filters, m.Record(), MessageLogFields) {
				matched = append(matched, m)
			}
		}
		messages = matched
	}
	if messages == nil {
		messages = []*Message{}
	}

	return &MessageLogResponse{Messages: messages, Total: len(messages)}, nil
}

// ApplyStatusCallback updates a message from a vendor status callback and
// publishes the matching webhook event.
func (s *Service) ApplyStatusCallback(ctx context.Context, providerSID, status, errMsg string) error {
	m, err := s.repo.GetMessageByProviderSID(ctx, providerSID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrNotFound
	}

	if err := s.repo.UpdateMessageStatus(ctx, m.ID, status, errMsg); err != nil {
		return err
	}

	if s.events != nil {
		eventType := "message." + status
		s.events.Publish(ctx, m.WorkspaceID, eventType, map[string]any{
			"message_id":   m.ID.String(),
			"campaign_id":  m.CampaignID.String(),
			"contact_id":   m.ContactID.String(),
			"to":           m.To,
			"status":       status,
			"error":        errMsg,
			"provider_sid": providerSID,
		})
	}
	return nil
}
