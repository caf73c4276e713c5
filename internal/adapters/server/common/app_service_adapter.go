package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hylla/portdash/internal/app"
	"github.com/hylla/portdash/internal/domain"
)

// AppServiceAdapter maps transport contracts onto app.Service project APIs.
type AppServiceAdapter struct {
	service *app.Service
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service}
}

// ListProjects returns one page of the requested user's projects.
func (a *AppServiceAdapter) ListProjects(ctx context.Context, in ListProjectsRequest) (ListProjectsResponse, error) {
	if a == nil || a.service == nil {
		return ListProjectsResponse{}, fmt.Errorf("app service adapter is not configured: %w", ErrUnavailable)
	}
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return ListProjectsResponse{}, fmt.Errorf("userId is required: %w", ErrInvalidRequest)
	}
	projects, err := a.service.ListProjects(ctx, userID, in.StartIndex)
	if err != nil {
		return ListProjectsResponse{}, mapAppError("list projects", err)
	}
	out := ListProjectsResponse{Projects: make([]Project, 0, len(projects))}
	for _, p := range projects {
		out.Projects = append(out.Projects, mapDomainProject(p))
	}
	return out, nil
}

// DeleteProject deletes one project owned by the requesting user.
func (a *AppServiceAdapter) DeleteProject(ctx context.Context, in DeleteProjectRequest) error {
	if a == nil || a.service == nil {
		return fmt.Errorf("app service adapter is not configured: %w", ErrUnavailable)
	}
	if err := a.service.DeleteProject(ctx, in.ProjectID, in.UserID); err != nil {
		return mapAppError("delete project", err)
	}
	return nil
}

// CreateProject creates one project owned by the requesting user.
func (a *AppServiceAdapter) CreateProject(ctx context.Context, in CreateProjectRequest) (Project, error) {
	if a == nil || a.service == nil {
		return Project{}, fmt.Errorf("app service adapter is not configured: %w", ErrUnavailable)
	}
	project, err := a.service.CreateProject(ctx, app.CreateProjectInput{
		OwnerID:  in.UserID,
		Title:    in.Title,
		Category: in.Category,
		Image:    in.Image,
		Content:  in.Content,
	})
	if err != nil {
		return Project{}, mapAppError("create project", err)
	}
	return mapDomainProject(project), nil
}

// mapDomainProject converts one domain project into its wire shape.
func mapDomainProject(p domain.Project) Project {
	return Project{
		ID:        p.ID,
		UserID:    p.OwnerID,
		Slug:      p.Slug,
		Title:     p.Title,
		Category:  p.Category,
		Image:     p.Image,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// mapAppError maps app and domain errors onto transport error classes.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, app.ErrForbidden):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrForbidden, err))
	case errors.Is(err, app.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidOwnerID),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidImage):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
