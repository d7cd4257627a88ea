package domain

import "time"

// ResourceKind classifies study resources.
type ResourceKind string

const (
	ResourceKindLecture ResourceKind = "LECTURE"
	ResourceKindPaper   ResourceKind = "PAPER"
	ResourceKindTool    ResourceKind = "TOOL"
	ResourceKindLink    ResourceKind = "LINK"
)

// Resource is a study material: a lecture recording, paper, tool or link.
type Resource struct {
	ID          int64
	Title       string
	Description string
	Kind        ResourceKind
	URL         string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
