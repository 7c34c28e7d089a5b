package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/beaconcdp/beacon/internal/core/filter"
)

var (
	ErrNotFound     = errors.New("webhook subscription not found")
	ErrWrongTenant  = errors.New("webhook subscription belongs to a different workspace")
	ErrInvalidURL   = errors.New("webhook url must be an absolute http(s) url")
	ErrUnknownEvent = errors.New("unknown event type")
)

// SignatureHeader carries the hex-encoded HMAC-SHA256 of the request body,
// keyed with the subscription secret.
const SignatureHeader = "X-Beacon-Signature"

type Service struct {
	repo       *Repository
	httpClient *http.Client
}

func NewService(repo *Repository) *Service {
	return &Service{
		repo:       repo,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *Service) Create(ctx context.Context, workspaceID uuid.UUID, req *CreateSubscriptionRequest) (*CreateSubscriptionResponse, error) {
	if err := validateURL(req.URL); err != nil {
		return nil, err
	}
	if err := validateEventTypes(req.EventTypes); err != nil {
		return nil, err
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, err
	}

	sub := &Subscription{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        req.Name,
		URL:         req.URL,
		Secret:      secret,
		EventTypes:  req.EventTypes,
		Conditions:  req.Conditions,
		Active:      true,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	return &CreateSubscriptionResponse{Subscription: sub, Secret: secret}, nil
}

func (s *Service) Get(ctx context.Context, workspaceID, id uuid.UUID) (*Subscription, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	if sub.WorkspaceID != workspaceID {
		return nil, ErrWrongTenant
	}
	return sub, nil
}

func (s *Service) List(ctx context.Context, workspaceID uuid.UUID) (*ListSubscriptionsResponse, error) {
	subs, err := s.repo.List(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []*Subscription{}
	}
	return &ListSubscriptionsResponse{Subscriptions: subs, Total: len(subs)}, nil
}

func (s *Service) Update(ctx context.Context, workspaceID, id uuid.UUID, req *UpdateSubscriptionRequest) (*Subscription, error) {
	sub, err := s.Get(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		sub.Name = *req.Name
	}
	if req.URL != nil {
		if err := validateURL(*req.URL); err != nil {
			return nil, err
		}
		sub.URL = *req.URL
	}
	if req.EventTypes != nil {
		if err := validateEventTypes(req.EventTypes); err != nil {
			return nil, err
		}
		sub.EventTypes = req.EventTypes
	}
	if req.Conditions != nil {
		sub.Conditions = req.Conditions
	}
	if req.Active != nil {
		sub.Active = *req.Active
	}

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	if _, err := s.Get(ctx, workspaceID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Publish fans an event out to every matching subscription. Delivery is
// fire-and-forget: failures are logged, never surfaced to the caller.
func (s *Service) Publish(ctx context.Context, workspaceID uuid.UUID, eventType string, payload map[string]any) {
	subs, err := s.repo.ListActiveForEvent(ctx, workspaceID, eventType)
	if err != nil {
		log.Printf("webhook: listing subscriptions for %s: %v", eventType, err)
		return
	}
	if len(subs) == 0 {
		return
	}

	event := &Event{
		ID:          uuid.New(),
		Type:        eventType,
		WorkspaceID: workspaceID,
		Timestamp:   time.Now().UTC(),
		Data:        payload,
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("webhook: marshaling event %s: %v", eventType, err)
		return
	}

	for _, sub := range subs {
		// Conditions run against the event payload; no registry, so
		// condition value types decide the comparison.
		if !filter.Evaluate(sub.Conditions, filter.Record(payload), nil) {
			continue
		}
		go s.deliver(sub, body)
	}
}

func (s *Service) deliver(sub *Subscription, body []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.URL, bytes.NewReader(body))
	if err != nil {
		log.Printf("webhook: building request for %s: %v", sub.URL, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, Sign(sub.Secret, body))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("webhook: delivering to %s: %v", sub.URL, err)
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		log.Printf("webhook: %s responded %d", sub.URL, resp.StatusCode)
	}
}

// Sign computes the hex HMAC-SHA256 of body under the given secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches body under secret.
func VerifySignature(secret string, body []byte, signature string) bool {
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}

func generateSecret() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return "whsec_" + hex.EncodeToString(raw), nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

func validateEventTypes(types []string) error {
	for _, t := range types {
		known := false
		for _, k := range KnownEventTypes {
			if t == k {
				known = true
				break
			}
		}
		if !known {
			return ErrUnknownEvent
		}
	}
	return nil
}
