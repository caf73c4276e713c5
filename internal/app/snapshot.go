package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hylla/portdash/internal/domain"
)

// SnapshotVersion identifies the snapshot wire format.
const SnapshotVersion = "portdash.snapshot.v1"

// Snapshot is a portable export of one owner's projects.
type Snapshot struct {
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	OwnerID    string            `json:"owner_id"`
	Projects   []SnapshotProject `json:"projects"`
}

// SnapshotProject represents one project row in a snapshot.
type SnapshotProject struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Image     string    `json:"image"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExportSnapshot captures every project owned by ownerID.
func (s *Service) ExportSnapshot(ctx context.Context, ownerID string) (Snapshot, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Snapshot{}, fmt.Errorf("ownerId is required: %w", ErrInvalidInput)
	}
	projects, err := s.repo.ListProjectsByOwner(ctx, ownerID, 0, 0)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		OwnerID:    ownerID,
		Projects:   make([]SnapshotProject, 0, len(projects)),
	}
	for _, project := range projects {
		snap.Projects = append(snap.Projects, snapshotProjectFromDomain(project))
	}
	snap.sort()
	return snap, nil
}

// ImportSnapshot upserts every snapshot project. Existing rows with the same id are overwritten.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) (int, error) {
	if err := snap.Validate(); err != nil {
		return 0, errors.Join(ErrInvalidInput, err)
	}
	snap.sort()

	for i, project := range snap.Projects {
		if !s.IsAdmin(project.OwnerID) {
			return i, fmt.Errorf("import project %q for %q: %w", project.ID, project.OwnerID, ErrForbidden)
		}
		if err := s.upsertProject(ctx, project.toDomain()); err != nil {
			return i, fmt.Errorf("import project %q: %w", project.ID, err)
		}
	}
	return len(snap.Projects), nil
}

// Validate checks the version and every project row.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %q", s.Version)
	}

	projectIDs := map[string]struct{}{}
	for i, p := range s.Projects {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("projects[%d].id is required", i)
		}
		if strings.TrimSpace(p.Title) == "" {
			return fmt.Errorf("projects[%d].title is required", i)
		}
		if strings.TrimSpace(p.OwnerID) == "" {
			if strings.TrimSpace(s.OwnerID) == "" {
				return fmt.Errorf("projects[%d].owner_id is required", i)
			}
			s.Projects[i].OwnerID = strings.TrimSpace(s.OwnerID)
		}
		if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
			return fmt.Errorf("projects[%d] timestamps are required", i)
		}
		if _, exists := projectIDs[p.ID]; exists {
			return fmt.Errorf("duplicate project id: %q", p.ID)
		}
		projectIDs[p.ID] = struct{}{}
	}
	return nil
}

// upsertProject updates p when it exists and creates it otherwise.
func (s *Service) upsertProject(ctx context.Context, p domain.Project) error {
	if _, err := s.repo.GetProject(ctx, p.ID); err == nil {
		return s.repo.UpdateProject(ctx, p)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.repo.CreateProject(ctx, p)
}

// sort orders projects newest update first, matching list order.
func (s *Snapshot) sort() {
	sort.SliceStable(s.Projects, func(i, j int) bool {
		a, b := s.Projects[i], s.Projects[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
}

// snapshotProjectFromDomain converts a stored project.
func snapshotProjectFromDomain(p domain.Project) SnapshotProject {
	return SnapshotProject{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Slug:      p.Slug,
		Title:     p.Title,
		Category:  p.Category,
		Image:     p.Image,
		Content:   p.Content,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
}

// toDomain converts a snapshot row, filling the slug and defaults the way creation does.
func (p SnapshotProject) toDomain() domain.Project {
	title := strings.TrimSpace(p.Title)
	slug := strings.TrimSpace(p.Slug)
	if slug == "" {
		slug = domain.Slugify(title)
	}
	category := strings.ToLower(strings.TrimSpace(p.Category))
	if category == "" {
		category = domain.DefaultCategory
	}
	image := strings.TrimSpace(p.Image)
	if image == "" {
		image = domain.DefaultImage
	}
	return domain.Project{
		ID:        strings.TrimSpace(p.ID),
		OwnerID:   strings.TrimSpace(p.OwnerID),
		Slug:      slug,
		Title:     title,
		Category:  category,
		Image:     image,
		Content:   strings.TrimSpace(p.Content),
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
}
