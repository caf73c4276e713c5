package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hylla/portdash/internal/domain"
)

// DefaultPageSize is the number of projects returned per list call.
const DefaultPageSize = 9

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	AdminUserIDs []string
	PageSize     int
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service owns project listing, creation, and deletion rules.
type Service struct {
	repo     Repository
	idGen    IDGenerator
	clock    Clock
	admins   map[string]struct{}
	pageSize int
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = uuid.NewString
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	admins := make(map[string]struct{}, len(cfg.AdminUserIDs))
	for _, id := range cfg.AdminUserIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		admins[id] = struct{}{}
	}
	return &Service{
		repo:     repo,
		idGen:    idGen,
		clock:    clock,
		admins:   admins,
		pageSize: cfg.PageSize,
	}
}

// PageSize returns the configured page size.
func (s *Service) PageSize() int {
	return s.pageSize
}

// IsAdmin reports whether userID may mutate projects. With no admin list configured every user may.
func (s *Service) IsAdmin(userID string) bool {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false
	}
	if len(s.admins) == 0 {
		return true
	}
	_, ok := s.admins[userID]
	return ok
}

// ListProjects returns one page of userID's projects, newest update first.
func (s *Service) ListProjects(ctx context.Context, userID string, startIndex int) ([]domain.Project, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("userId is required: %w", ErrInvalidInput)
	}
	if startIndex < 0 {
		return nil, fmt.Errorf("startIndex must be >= 0: %w", ErrInvalidInput)
	}
	projects, err := s.repo.ListProjectsByOwner(ctx, userID, startIndex, s.pageSize)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return projects, nil
}

// CreateProjectInput holds input values for create project operations.
type CreateProjectInput struct {
	OwnerID  string
	Title    string
	Category string
	Image    string
	Content  string
}

// CreateProject creates one project owned by in.OwnerID.
func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (domain.Project, error) {
	if !s.IsAdmin(in.OwnerID) {
		return domain.Project{}, fmt.Errorf("you are not allowed to create a project: %w", ErrForbidden)
	}
	project, err := domain.NewProject(domain.ProjectInput{
		ID:       s.idGen(),
		OwnerID:  in.OwnerID,
		Title:    in.Title,
		Category: in.Category,
		Image:    in.Image,
		Content:  in.Content,
	}, s.clock())
	if err != nil {
		return domain.Project{}, errors.Join(ErrInvalidInput, err)
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// DeleteProject removes projectID when it belongs to userID.
func (s *Service) DeleteProject(ctx context.Context, projectID, userID string) error {
	projectID = strings.TrimSpace(projectID)
	userID = strings.TrimSpace(userID)
	if projectID == "" || userID == "" {
		return fmt.Errorf("projectId and userId are required: %w", ErrInvalidInput)
	}
	if !s.IsAdmin(userID) {
		return fmt.Errorf("you are not allowed to delete this project: %w", ErrForbidden)
	}
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if !project.OwnedBy(userID) {
		return fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}
	return s.repo.DeleteProject(ctx, projectID)
}
