package agent

import (
	"time"

	"github.com/google/uuid"
)

// Agent is a configured automation assistant scoped to a workspace. The
// settings schema is a JSON Schema document that constrains Settings.
type Agent struct {
	ID             uuid.UUID      `json:"id"`
	WorkspaceID    uuid.UUID      `json:"workspace_id"`
	Slug           string         `json:"slug"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Model          string         `json:"model"`
	SystemPrompt   string         `json:"system_prompt,omitempty"`
	Temperature    float64        `json:"temperature"`
	Tools          []string       `json:"tools"`
	Settings       map[string]any `json:"settings,omitempty"`
	SettingsSchema map[string]any `json:"settings_schema,omitempty"`
	Enabled        bool           `json:"enabled"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type CreateAgentRequest struct {
	Slug           string         `json:"slug" binding:"required"`
	Name           string         `json:"name" binding:"required"`
	Description    string         `json:"description"`
	Model          string         `json:"model" binding:"required"`
	SystemPrompt   string         `json:"system_prompt"`
	Temperature    float64        `json:"temperature"`
	Tools          []string       `json:"tools"`
	Settings       map[string]any `json:"settings"`
	SettingsSchema map[string]any `json:"settings_schema"`
}

type UpdateAgentRequest struct {
	Name           *string        `json:"name"`
	Description    *string        `json:"description"`
	Model          *string        `json:"model"`
	SystemPrompt   *string        `json:"system_prompt"`
	Temperature    *float64       `json:"temperature"`
	Tools          []string       `json:"tools"`
	Settings       map[string]any `json:"settings"`
	SettingsSchema map[string]any `json:"settings_schema"`
	Enabled        *bool          `json:"enabled"`
}

type ListAgentsResponse struct {
	Agents []*Agent `json:"agents"`
	Total  int      `json:"total"`
}
