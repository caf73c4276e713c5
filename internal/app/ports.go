package app

import (
	"context"

	"github.com/hylla/portdash/internal/domain"
)

// Repository represents project persistence used by this package.
type Repository interface {
	CreateProject(context.Context, domain.Project) error
	UpdateProject(context.Context, domain.Project) error
	GetProject(context.Context, string) (domain.Project, error)
	ListProjectsByOwner(ctx context.Context, ownerID string, offset, limit int) ([]domain.Project, error)
	DeleteProject(context.Context, string) error
}
