package segment

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/beaconcdp/beacon/internal/core/contact"
	"github.com/beaconcdp/beacon/internal/core/filter"
)

type fakeContactSource struct {
	registry filter.Registry
	contacts []*contact.Contact
}

func (f *fakeContactSource) Get(ctx context.Context, id uuid.UUID) (*contact.Contact, error) {
	for _, c := range f.contacts {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, contact.ErrNotFound
}

func (f *fakeContactSource) Filter(ctx context.Context, workspaceID uuid.UUID, groups []filter.Group) ([]*contact.Contact, error) {
	var matched []*contact.Contact
	for _, c := range f.contacts {
		if filter.Evaluate(groups, c.Record(), f.registry) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

func (f *fakeContactSource) Registry(ctx context.Context, workspaceID uuid.UUID) (filter.Registry, error) {
	return f.registry, nil
}

func newTestService(contacts *fakeContactSource) *Service {
	return &Service{repo: nil, contacts: contacts}
}

func TestCheckDefinitionValidOperators(t *testing.T) {
	source := &fakeContactSource{registry: contact.BuiltinFields}
	s := newTestService(source)

	definition := []filter.Group{{
		Conditions: []filter.Condition{
			{Field: "first_name", Operator: filter.OpContains, Value: "a"},
			{Field: "subscribed", Operator: filter.OpIsTrue},
		},
	}}

	if err := s.checkDefinition(context.Background(), uuid.New(), definition); err != nil {
		t.Errorf("valid definition rejected: %v", err)
	}
}

func TestCheckDefinitionRejectsBadOperator(t *testing.T) {
	source := &fakeContactSource{registry: contact.BuiltinFields}
	s := newTestService(source)

	// greater_than is a number operator, first_name is a string field.
	definition := []filter.Group{{
		Conditions: []filter.Condition{
			{Field: "first_name", Operator: filter.OpGreaterThan, Value: "a"},
		},
	}}

	err := s.checkDefinition(context.Background(), uuid.New(), definition)
	if !errors.Is(err, ErrBadCondition) {
		t.Errorf("expected ErrBadCondition, got %v", err)
	}
}

func TestCheckDefinitionSkipsBlankConditions(t *testing.T) {
	source := &fakeContactSource{registry: contact.BuiltinFields}
	s := newTestService(source)

	definition := []filter.Group{{
		Conditions: []filter.Condition{
			{Field: "", Operator: filter.OpEquals},
			{Field: "first_name", Operator: ""},
		},
	}}

	if err := s.checkDefinition(context.Background(), uuid.New(), definition); err != nil {
		t.Errorf("blank conditions should be skipped: %v", err)
	}
}

func TestCheckDefinitionUnknownFieldFallsBackToValueType(t *testing.T) {
	source := &fakeContactSource{registry: contact.BuiltinFields}
	s := newTestService(source)

	definition := []filter.Group{{
		Conditions: []filter.Condition{
			{Field: "loyalty_points", Operator: filter.OpGreaterThan, Value: 100, ValueType: filter.FieldTypeNumber},
		},
	}}

	if err := s.checkDefinition(context.Background(), uuid.New(), definition); err != nil {
		t.Errorf("number operator with number value type should pass: %v", err)
	}
}

func TestCheckDefinitionEmptyDefinition(t *testing.T) {
	s := newTestService(&fakeContactSource{})
	if err := s.checkDefinition(context.Background(), uuid.New(), nil); err != nil {
		t.Errorf("empty definition should be valid: %v", err)
	}
}
