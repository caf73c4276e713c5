package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/hylla/portdash/internal/app"
	"github.com/hylla/portdash/internal/domain"
)

func newProject(t *testing.T, id, owner string, updated time.Time) domain.Project {
	t.Helper()
	p, err := domain.NewProject(domain.ProjectInput{
		ID:       id,
		OwnerID:  owner,
		Title:    "Project " + id,
		Category: "web",
		Image:    "https://img.example/" + id + ".png",
		Content:  "## " + id,
	}, updated)
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	return p
}

func TestRepository_ProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	repo, err := Open(filepath.Join(t.TempDir(), "nested", "portdash.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	now := time.Date(2026, 2, 21, 12, 0, 0, 123, time.UTC)
	project := newProject(t, "p1", "u1", now)
	if err := repo.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	loaded, err := repo.GetProject(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if loaded.Title != "Project p1" || loaded.OwnerID != "u1" || loaded.Slug != "project-p1" {
		t.Fatalf("unexpected project %#v", loaded)
	}
	if loaded.Content != "## p1" || loaded.Category != "web" {
		t.Fatalf("unexpected project body %#v", loaded)
	}
	if !loaded.UpdatedAt.Equal(now) {
		t.Fatalf("expected updated_at %v, got %v", now, loaded.UpdatedAt)
	}

	loaded.Title = "Renamed"
	loaded.Slug = domain.Slugify(loaded.Title)
	loaded.UpdatedAt = now.Add(time.Hour)
	if err := repo.UpdateProject(ctx, loaded); err != nil {
		t.Fatalf("UpdateProject() error = %v", err)
	}
	updated, err := repo.GetProject(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProject() after update error = %v", err)
	}
	if updated.Title != "Renamed" || updated.Slug != "renamed" || !updated.UpdatedAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected updated project %#v", updated)
	}
	missing := newProject(t, "ghost", "u1", now)
	if err := repo.UpdateProject(ctx, missing); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing project, got %v", err)
	}

	if err := repo.DeleteProject(ctx, "p1"); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}
	if _, err := repo.GetProject(ctx, "p1"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteProject(ctx, "p1"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRepository_ListProjectsByOwnerPaging(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 12 {
		// Mixed sub-second precision must still sort chronologically.
		updated := base.Add(time.Duration(i)*time.Hour + time.Duration(i%3)*time.Millisecond)
		if err := repo.CreateProject(ctx, newProject(t, fmt.Sprintf("p%02d", i), "u1", updated)); err != nil {
			t.Fatalf("CreateProject(%d) error = %v", i, err)
		}
	}
	if err := repo.CreateProject(ctx, newProject(t, "other", "u2", base.Add(100*time.Hour))); err != nil {
		t.Fatalf("CreateProject(other) error = %v", err)
	}
	// Ties on updated_at fall back to id order.
	if err := repo.CreateProject(ctx, newProject(t, "tie-a", "u3", base)); err != nil {
		t.Fatalf("CreateProject(tie-a) error = %v", err)
	}
	if err := repo.CreateProject(ctx, newProject(t, "tie-b", "u3", base)); err != nil {
		t.Fatalf("CreateProject(tie-b) error = %v", err)
	}

	first, err := repo.ListProjectsByOwner(ctx, "u1", 0, 9)
	if err != nil {
		t.Fatalf("ListProjectsByOwner() error = %v", err)
	}
	if len(first) != 9 {
		t.Fatalf("expected 9 projects, got %d", len(first))
	}
	if first[0].ID != "p11" || first[8].ID != "p03" {
		t.Fatalf("unexpected order %q..%q", first[0].ID, first[8].ID)
	}

	second, err := repo.ListProjectsByOwner(ctx, "u1", 9, 9)
	if err != nil {
		t.Fatalf("ListProjectsByOwner(offset=9) error = %v", err)
	}
	if len(second) != 3 || second[2].ID != "p00" {
		t.Fatalf("unexpected second page %#v", second)
	}

	none, err := repo.ListProjectsByOwner(ctx, "nobody", 0, 9)
	if err != nil {
		t.Fatalf("ListProjectsByOwner(nobody) error = %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", none)
	}

	ties, err := repo.ListProjectsByOwner(ctx, "u3", 0, 0)
	if err != nil {
		t.Fatalf("ListProjectsByOwner(u3) error = %v", err)
	}
	if len(ties) != 2 || ties[0].ID != "tie-a" || ties[1].ID != "tie-b" {
		t.Fatalf("unexpected tie order %#v", ties)
	}
}

func TestRepository_ServiceIntegration(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	svc := app.NewService(repo, nil, nil, app.ServiceConfig{})
	created, err := svc.CreateProject(ctx, app.CreateProjectInput{OwnerID: "u1", Title: "Portfolio"})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	page, err := svc.ListProjects(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(page) != 1 || page[0].ID != created.ID {
		t.Fatalf("unexpected page %#v", page)
	}
	if err := svc.DeleteProject(ctx, created.ID, "u2"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
	}
	if err := svc.DeleteProject(ctx, created.ID, "u1"); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}
}
