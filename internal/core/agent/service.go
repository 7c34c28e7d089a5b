package agent

import (
	"context"
	"errors"
	"regexp"

	"github.com/google/uuid"

	"github.com/beaconcdp/beacon/internal/core/validation"
)

var (
	ErrNotFound      = errors.New("agent not found")
	ErrAlreadyExists = errors.New("agent already exists")
	ErrWrongTenant   = errors.New("agent belongs to a different workspace")
	ErrInvalidSlug   = errors.New("slug must be lowercase letters, digits and hyphens")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type Service struct {
	repo      *Repository
	validator *validation.Validator
}

func NewService(repo *Repository, validator *validation.Validator) *Service {
	return &Service{repo: repo, validator: validator}
}

func (s *Service) Create(ctx context.Context, workspaceID uuid.UUID, req *CreateAgentRequest) (*Agent, error) {
	if !slugPattern.MatchString(req.Slug) {
		return nil, ErrInvalidSlug
	}

	existing, err := s.repo.GetBySlug(ctx, workspaceID, req.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	if err := s.validator.Validate(req.Settings, req.SettingsSchema); err != nil {
		return nil, err
	}

	a := &Agent{
		ID:             uuid.New(),
		WorkspaceID:    workspaceID,
		Slug:           req.Slug,
		Name:           req.Name,
		Description:    req.Description,
		Model:          req.Model,
		SystemPrompt:   req.SystemPrompt,
		Temperature:    req.Temperature,
		Tools:          req.Tools,
		Settings:       req.Settings,
		SettingsSchema: req.SettingsSchema,
		Enabled:        true,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, workspaceID, id uuid.UUID) (*Agent, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	if a.WorkspaceID != workspaceID {
		return nil, ErrWrongTenant
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, workspaceID uuid.UUID) (*ListAgentsResponse, error) {
	agents, err := s.repo.List(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if agents == nil {
		agents = []*Agent{}
	}
	return &ListAgentsResponse{Agents: agents, Total: len(agents)}, nil
}

func (s *Service) Update(ctx context.Context, workspaceID, id uuid.UUID, req *UpdateAgentRequest) (*Agent, error) {
	a, err := s.Get(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.Model != nil {
		a.Model = *req.Model
	}
	if req.SystemPrompt != nil {
		a.SystemPrompt = *req.SystemPrompt
	}
	if req.Temperature != nil {
		a.Temperature = *req.Temperature
	}
	if req.Tools != nil {
		a.Tools = req.Tools
	}
	if req.SettingsSchema != nil {
		a.SettingsSchema = req.SettingsSchema
	}
	if req.Settings != nil {
		// New settings must satisfy whichever schema will be in effect.
		if err := s.validator.Validate(req.Settings, a.SettingsSchema); err != nil {
			return nil, err
		}
		a.Settings = req.Settings
	} else if req.SettingsSchema != nil {
		if err := s.validator.Validate(a.Settings, a.SettingsSchema); err != nil {
			return nil, err
		}
	}
	if req.Enabled != nil {
		a.Enabled = *req.Enabled
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	if _, err := s.Get(ctx, workspaceID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
