package segment

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/beaconcdp/beacon/internal/core/contact"
	"github.com/beaconcdp/beacon/internal/core/filter"
)

var (
	ErrNotFound     = errors.New("segment not found")
	ErrNotStatic    = errors.New("membership is only managed on static lists")
	ErrNotDynamic   = errors.New("segment has no filter definition")
	ErrWrongTenant  = errors.New("segment belongs to a different workspace")
	ErrInvalidKind  = errors.New("kind must be static or dynamic")
	ErrBadCondition = errors.New("definition contains an operator invalid for its field type")
)

// ContactSource is the slice of the contact service the segment engine
// needs: resolving members and running filter expressions.
type ContactSource interface {
	Get(ctx context.Context, id uuid.UUID) (*contact.Contact, error)
	Filter(ctx context.Context, workspaceID uuid.UUID, groups []filter.Group) ([]*contact.Contact, error)
	Registry(ctx context.Context, workspaceID uuid.UUID) (filter.Registry, error)
}

type Service struct {
	repo     *Repository
	contacts ContactSource
}

func NewService(repo *Repository, contacts ContactSource) *Service {
	return &Service{repo: repo, contacts: contacts}
}

func (s *Service) Create(ctx context.Context, workspaceID uuid.UUID, req *CreateSegmentRequest) (*Segment, error) {
	if req.Kind != KindStatic && req.Kind != KindDynamic {
		return nil, ErrInvalidKind
	}

	if err := s.checkDefinition(ctx, workspaceID, req.Definition); err != nil {
		return nil, err
	}

	seg := &Segment{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        req.Name,
		Description: req.Description,
		Kind:        req.Kind,
		Definition:  req.Definition,
	}
	if err := s.repo.Create(ctx, seg); err != nil {
		return nil, err
	}
	return seg, nil
}

// checkDefinition rejects operators that are illegal for their field's
// type up front, so a saved segment cannot silently match nothing. The
// evaluator itself would still fail closed at evaluation time.
func (s *Service) checkDefinition(ctx context.Context, workspaceID uuid.UUID, groups []filter.Group) error {
	if len(groups) == 0 {
		return nil
	}

	registry, err := s.contacts.Registry(ctx, workspaceID)
	if err != nil {
		return err
	}

	for _, g := range groups {
		for _, cond := range g.Conditions {
			if cond.Field == "" || cond.Operator == "" {
				continue
			}
			fieldType := filter.FieldTypeString
			if def, ok := registry.Lookup(cond.Field); ok {
				fieldType = def.Type
			} else if cond.ValueType != "" {
				fieldType = cond.ValueType
			}
			if !filter.ValidOperator(fieldType, cond.Operator) {
				return ErrBadCondition
			}
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, workspaceID, id uuid.UUID) (*Segment, error) {
	seg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if seg == nil {
		return nil, ErrNotFound
	}
	if seg.WorkspaceID != workspaceID {
		return nil, ErrWrongTenant
	}
	return seg, nil
}

func (s *Service) List(ctx context.Context, workspaceID uuid.UUID) (*ListSegmentsResponse, error) {
	segments, err := s.repo.List(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if segments == nil {
		segments = []*Segment{}
	}
	return &ListSegmentsResponse{Segments: segments, Total: len(segments)}, nil
}

func (s *Service) Update(ctx context.Context, workspaceID, id uuid.UUID, req *UpdateSegmentRequest) (*Segment, error) {
	seg, err := s.Get(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		seg.Name = *req.Name
	}
	if req.Description != nil {
		seg.Description = *req.Description
	}
	if req.Definition != nil {
		if err := s.checkDefinition(ctx, workspaceID, req.Definition); err != nil {
			return nil, err
		}
		seg.Definition = req.Definition
	}

	if err := s.repo.Update(ctx, seg); err != nil {
		return nil, err
	}
	return seg, nil
}

func (s *Service) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	if _, err := s.Get(ctx, workspaceID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Membership management for static lists
func (s *Service) AddMember(ctx context.Context, workspaceID, segmentID, contactID uuid.UUID) error {
	seg, err := s.Get(ctx, workspaceID, segmentID)
	if err != nil {
		return err
	}
	if seg.Kind != KindStatic {
		return ErrNotStatic
	}
	return s.repo.AddMember(ctx, segmentID, contactID)
}

func (s *Service) RemoveMember(ctx context.Context, workspaceID, segmentID, contactID uuid.UUID) error {
	seg, err := s.Get(ctx, workspaceID, segmentID)
	if err != nil {
		return err
	}
	if seg.Kind != KindStatic {
		return ErrNotStatic
	}
	return s.repo.RemoveMember(ctx, segmentID, contactID)
}

// Evaluate resolves a segment to its current contacts: stored membership
// for static lists, a fresh filter-engine pass for dynamic segments.
func (s *Service) Evaluate(ctx context.Context, workspaceID, segmentID uuid.UUID) ([]*contact.Contact, error) {
	seg, err := s.Get(ctx, workspaceID, segmentID)
	if err != nil {
		return nil, err
	}

	if seg.Kind == KindStatic {
		ids, err := s.repo.ListMemberIDs(ctx, segmentID)
		if err != nil {
			return nil, err
		}
		contacts := make([]*contact.Contact, 0, len(ids))
		for _, id := range ids {
			c, err := s.contacts.Get(ctx, id)
			if err != nil {
				if errors.Is(err, contact.ErrNotFound) {
					continue
				}
				return nil, err
			}
			contacts = append(contacts, c)
		}
		return contacts, nil
	}

	return s.contacts.Filter(ctx, workspaceID, seg.Definition)
}

// Preview evaluates an unsaved filter expression against the workspace's
// contacts, capped at limit.
func (s *Service) Preview(ctx context.Context, workspaceID uuid.UUID, req *PreviewRequest) ([]*contact.Contact, int, error) {
	if err := s.checkDefinition(ctx, workspaceID, req.Definition); err != nil {
		return nil, 0, err
	}

	matched, err := s.contacts.Filter(ctx, workspaceID, req.Definition)
	if err != nil {
		return nil, 0, err
	}

	total := len(matched)
	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}
