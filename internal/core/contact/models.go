package contact

import (
	"time"

	"github.com/google/uuid"

	"github.com/beaconcdp/beacon/internal/core/filter"
)

type Contact struct {
	ID          uuid.UUID              `json:"id"`
	WorkspaceID uuid.UUID              `json:"workspace_id"`
	Phone       string                 `json:"phone,omitempty"`
	Email       string                 `json:"email,omitempty"`
	FirstName   string                 `json:"first_name,omitempty"`
	LastName    string                 `json:"last_name,omitempty"`
	Attributes  map[string]interface{} `json:"attributes"`
	Tags        []string               `json:"tags"`
	Subscribed  bool                   `json:"subscribed"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// AttributeDefinition is a workspace-defined custom contact attribute. It
// drives both attribute validation and the filter field registry.
type AttributeDefinition struct {
	ID          uuid.UUID            `json:"id"`
	WorkspaceID uuid.UUID            `json:"workspace_id"`
	Key         string               `json:"key"`
	Label       string               `json:"label"`
	Type        filter.FieldType     `json:"type"`
	Options     []filter.FieldOption `json:"options,omitempty"`
	Required    bool                 `json:"required"`
	CreatedAt   time.Time            `json:"created_at"`
}

type CreateContactRequest struct {
	Phone      string                 `json:"phone"`
	Email      string                 `json:"email"`
	FirstName  string                 `json:"first_name"`
	LastName   string                 `json:"last_name"`
	Attributes map[string]interface{} `json:"attributes"`
	Tags       []string               `json:"tags"`
	Subscribed *bool                  `json:"subscribed"`
}

type UpdateContactRequest struct {
	Phone      *string                `json:"phone"`
	Email      *string                `json:"email"`
	FirstName  *string                `json:"first_name"`
	LastName   *string                `json:"last_name"`
	Attributes map[string]interface{} `json:"attributes"`
	Tags       []string               `json:"tags"`
	Subscribed *bool                  `json:"subscribed"`
}

type CreateAttributeRequest struct {
	Key      string               `json:"key" binding:"required"`
	Label    string               `json:"label" binding:"required"`
	Type     filter.FieldType     `json:"type" binding:"required"`
	Options  []filter.FieldOption `json:"options"`
	Required bool                 `json:"required"`
}

// SearchFilter is one server-side predicate pushed down to SQL over the
// attributes column.
type SearchFilter struct {
	Property string      `json:"property"`
	Operator string      `json:"operator"` // eq, neq, gt, lt, gte, lte, contains, exists, in
	Value    interface{} `json:"value"`
}

type SearchRequest struct {
	Filters  []SearchFilter `json:"filters"`
	OrderBy  string         `json:"order_by"`
	OrderDir string         `json:"order_dir"` // asc, desc
	Limit    int            `json:"limit"`
	Offset   int            `json:"offset"`
}

type ListContactsResponse struct {
	Contacts []*Contact `json:"contacts"`
	Total    int        `json:"total"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// BuiltinFields are the contact fields every workspace can filter on,
// before any custom attribute definitions.
var BuiltinFields = filter.Registry{
	{Key: "phone", Label: "Phone", Type: filter.FieldTypeString},
	{Key: "email", Label: "Email", Type: filter.FieldTypeString},
	{Key: "first_name", Label: "First Name", Type: filter.FieldTypeString},
	{Key: "last_name", Label: "Last Name", Type: filter.FieldTypeString},
	{Key: "tags", Label: "Tags", Type: filter.FieldTypeArray},
	{Key: "subscribed", Label: "Subscribed", Type: filter.FieldTypeBoolean},
	{Key: "created_at", Label: "Created", Type: filter.FieldTypeDate},
	{Key: "updated_at", Label: "Updated", Type: filter.FieldTypeDate},
}

// FieldRegistry merges the built-in contact fields with a workspace's
// custom attribute definitions.
func FieldRegistry(defs []*AttributeDefinition) filter.Registry {
	registry := make(filter.Registry, 0, len(BuiltinFields)+len(defs))
	registry = append(registry, BuiltinFields...)
	for _, def := range defs {
		registry = append(registry, filter.FieldDefinition{
			Key:        def.Key,
			Label:      def.Label,
			Type:       def.Type,
			Options:    def.Options,
			Validation: &filter.FieldValidation{Required: def.Required},
		})
	}
	return registry
}

// Record flattens a contact into the shape the filter engine evaluates:
// built-in fields at the top level with custom attributes merged in.
// Built-ins win on key collisions.
func (c *Contact) Record() filter.Record {
	rec := filter.Record{}
	for k, v := range c.Attributes {
		rec[k] = v
	}
	rec["phone"] = c.Phone
	rec["email"] = c.Email
	rec["first_name"] = c.FirstName
	rec["last_name"] = c.LastName
	rec["tags"] = c.Tags
	rec["subscribed"] = c.Subscribed
	rec["created_at"] = c.CreatedAt
	rec["updated_at"] = c.UpdatedAt
	return rec
}

// AttributeSchema builds the JSON schema used to validate custom
// attribute payloads from the workspace's attribute definitions.
func AttributeSchema(defs []*AttributeDefinition) map[string]interface{} {
	if len(defs) == 0 {
		return nil
	}

	properties := make(map[string]interface{}, len(defs))
	var required []interface{}
	for _, def := range defs {
		properties[def.Key] = schemaProperty(def)
		if def.Required {
			required = append(required, def.Key)
		}
	}

	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func schemaProperty(def *AttributeDefinition) map[string]interface{} {
	switch def.Type {
	case filter.FieldTypeNumber:
		return map[string]interface{}{"type": "number"}
	case filter.FieldTypeBoolean:
		return map[string]interface{}{"type": "boolean"}
	case filter.FieldTypeArray:
		return map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		}
	case filter.FieldTypeEnum:
		values := make([]interface{}, 0, len(def.Options))
		for _, opt := range def.Options {
			values = append(values, opt.Value)
		}
		return map[string]interface{}{"type": "string", "enum": values}
	case filter.FieldTypeDate:
		return map[string]interface{}{"type": "string"}
	default:
		return map[string]interface{}{"type": "string"}
	}
}
