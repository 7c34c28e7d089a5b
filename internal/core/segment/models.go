package segment

import (
	"time"

	"github.com/google/uuid"

	"github.com/beaconcdp/beacon/internal/core/filter"
)

// Kind distinguishes static lists (explicit membership) from dynamic
// segments (a stored filter expression evaluated on demand).
type Kind string

const (
	KindStatic  Kind = "static"
	KindDynamic Kind = "dynamic"
)

type Segment struct {
	ID          uuid.UUID      `json:"id"`
	WorkspaceID uuid.UUID      `json:"workspace_id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Kind        Kind           `json:"kind"`
	Definition  []filter.Group `json:"definition,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type Member struct {
	SegmentID uuid.UUID `json:"segment_id"`
	ContactID uuid.UUID `json:"contact_id"`
	AddedAt   time.Time `json:"added_at"`
}

type CreateSegmentRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Kind        Kind           `json:"kind" binding:"required"`
	Definition  []filter.Group `json:"definition"`
}

type UpdateSegmentRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Definition  []filter.Group `json:"definition"`
}

type PreviewRequest struct {
	Definition []filter.Group `json:"definition" binding:"required"`
	Limit      int            `json:"limit"`
}

type ListSegmentsResponse struct {
	Segments []*Segment `json:"segments"`
	Total    int        `json:"total"`
}
