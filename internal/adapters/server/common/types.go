// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrForbidden reports a caller that may not perform the operation.
var ErrForbidden = errors.New("forbidden")

// ErrUnavailable reports a transport whose backing service is not configured.
var ErrUnavailable = errors.New("service unavailable")

// Project is the wire shape of one project record.
type Project struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Image     string    `json:"image"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListProjectsRequest captures one page query.
type ListProjectsRequest struct {
	UserID     string
	StartIndex int
}

// ListProjectsResponse carries one page of projects.
type ListProjectsResponse struct {
	Projects []Project `json:"projects"`
}

// DeleteProjectRequest identifies one project to delete on behalf of a user.
type DeleteProjectRequest struct {
	ProjectID string
	UserID    string
}

// CreateProjectRequest captures input for one new project.
type CreateProjectRequest struct {
	UserID   string `json:"userId"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
	Image    string `json:"image,omitempty"`
	Content  string `json:"content,omitempty"`
}

// ProjectService captures the project operations exposed by transports.
type ProjectService interface {
	ListProjects(context.Context, ListProjectsRequest) (ListProjectsResponse, error)
	DeleteProject(context.Context, DeleteProjectRequest) error
	CreateProject(context.Context, CreateProjectRequest) (Project, error)
}
