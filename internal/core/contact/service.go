package contact

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/beaconcdp/beacon/internal/core/filter"
	"github.com/beaconcdp/beacon/internal/core/validation"
)

var (
	ErrNotFound        = errors.New("contact not found")
	ErrAlreadyExists   = errors.New("contact with this phone already exists")
	ErrAttributeExists = errors.New("attribute with this key already exists")
	ErrNoIdentifier    = errors.New("contact requires a phone or email")
)

// EventSink receives domain events for outbound webhook delivery.
type EventSink interface {
	Publish(ctx context.Context, workspaceID uuid.UUID, eventType string, payload map[string]any)
}

type Service struct {
	repo      *Repository
	validator *validation.Validator
	events    EventSink
}

func NewService(repo *Repository, validator *validation.Validator, events EventSink) *Service {
	return &Service{repo: repo, validator: validator, events: events}
}

func (s *Service) publish(ctx context.Context, c *Contact, eventType string) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, c.WorkspaceID, eventType, map[string]any(c.Record()))
}

func (s *Service) Create(ctx context.Context, workspaceID uuid.UUID, req *CreateContactRequest) (*Contact, error) {
	if req.Phone == "" && req.Email == "" {
		return nil, ErrNoIdentifier
	}

	if req.Phone != "" {
		existing, err := s.repo.GetByPhone(ctx, workspaceID, req.Phone)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrAlreadyExists
		}
	}

	if err := s.validateAttributes(ctx, workspaceID, req.Attributes, false); err != nil {
		return nil, err
	}

	subscribed := true
	if req.Subscribed != nil {
		subscribed = *req.Subscribed
	}

	attributes := req.Attributes
	if attributes == nil {
		attributes = map[string]interface{}{}
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	c := &Contact{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Phone:       req.Phone,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Attributes:  attributes,
		Tags:        tags,
		Subscribed:  subscribed,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.publish(ctx, c, "contact.created")
	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Contact, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *Service) GetByPhone(ctx context.Context, workspaceID uuid.UUID, phone string) (*Contact, error) {
	c, err := s.repo.GetByPhone(ctx, workspaceID, phone)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, workspaceID uuid.UUID, limit, offset int) (*ListContactsResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	contacts, total, err := s.repo.List(ctx, workspaceID, limit, offset)
	if err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []*Contact{}
	}

	return &ListContactsResponse{
		Contacts: contacts,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

func (s *Service) Search(ctx context.Context, workspaceID uuid.UUID, req *SearchRequest) (*ListContactsResponse, error) {
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 50
	}

	contacts, total, err := s.repo.Search(ctx, workspaceID, req)
	if err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []*Contact{}
	}

	return &ListContactsResponse{
		Contacts: contacts,
		Total:    total,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}, nil
}

// Filter fetches the workspace's contacts and applies a filter expression
// in memory with the workspace's field registry.
func (s *Service) Filter(ctx context.Context, workspaceID uuid.UUID, groups []filter.Group) ([]*Contact, error) {
	contacts, err := s.repo.ListAll(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	registry, err := s.Registry(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	matched := make([]*Contact, 0, len(contacts))
	for _, c := range contacts {
		if filter.Evaluate(groups, c.Record(), registry) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

// Registry returns the filterable fields for a workspace: built-ins plus
// its custom attribute definitions.
func (s *Service) Registry(ctx context.Context, workspaceID uuid.UUID) (filter.Registry, error) {
	defs, err := s.repo.ListAttributes(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return FieldRegistry(defs), nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateContactRequest) (*Contact, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}

	if req.Attributes != nil {
		// Merge existing attributes with the update
		for k, v := range req.Attributes {
			c.Attributes[k] = v
		}
		if err := s.validateAttributes(ctx, c.WorkspaceID, c.Attributes, true); err != nil {
			return nil, err
		}
	}

	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	if req.FirstName != nil {
		c.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		c.LastName = *req.LastName
	}
	if req.Tags != nil {
		c.Tags = req.Tags
	}
	if req.Subscribed != nil {
		c.Subscribed = *req.Subscribed
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.publish(ctx, c, "contact.updated")
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validateAttributes(ctx context.Context, workspaceID uuid.UUID, attributes map[string]interface{}, partial bool) error {
	defs, err := s.repo.ListAttributes(ctx, workspaceID)
	if err != nil {
		return err
	}

	schema := AttributeSchema(defs)
	if partial {
		return s.validator.ValidatePartial(attributes, schema)
	}
	return s.validator.Validate(attributes, schema)
}

// Attribute definitions
func (s *Service) CreateAttribute(ctx context.Context, workspaceID uuid.UUID, req *CreateAttributeRequest) (*AttributeDefinition, error) {
	existing, err := s.repo.GetAttributeByKey(ctx, workspaceID, req.Key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAttributeExists
	}

	def := &AttributeDefinition{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Key:         req.Key,
		Label:       req.Label,
		Type:        req.Type,
		Options:     req.Options,
		Required:    req.Required,
	}
	if err := s.repo.CreateAttribute(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

func (s *Service) ListAttributes(ctx context.Context, workspaceID uuid.UUID) ([]*AttributeDefinition, error) {
	return s.repo.ListAttributes(ctx, workspaceID)
}

func (s *Service) DeleteAttribute(ctx context.Context, workspaceID uuid.UUID, key string) error {
	def, err := s.repo.GetAttributeByKey(ctx, workspaceID, key)
	if err != nil {
		return err
	}
	if def == nil {
		return ErrNotFound
	}
	return s.repo.DeleteAttribute(ctx, workspaceID, key)
}
