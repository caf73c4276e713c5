package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hylla/portdash/internal/adapters/server/common"
	"github.com/hylla/portdash/internal/adapters/storage/sqlite"
	"github.com/hylla/portdash/internal/app"
)

// recordingLogger captures request log messages.
type recordingLogger struct {
	lines []string
}

// Info records one message.
func (l *recordingLogger) Info(msg any, _ ...any) {
	l.lines = append(l.lines, msg.(string))
}

// newProjects builds a project service over a fresh in-memory repository.
func newProjects(t *testing.T) common.ProjectService {
	t.Helper()
	repo, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return common.NewAppServiceAdapter(app.NewService(repo, nil, nil, app.ServiceConfig{}))
}

func TestNewHandlerRequiresProjects(t *testing.T) {
	if _, _, err := NewHandler(Config{}, Dependencies{}); err == nil {
		t.Fatal("NewHandler() error = nil, want missing dependency error")
	}
}

func TestNewHandlerRejectsEndpointCollision(t *testing.T) {
	_, _, err := NewHandler(Config{MCPEndpoint: "/api/mcp"}, Dependencies{Projects: newProjects(t)})
	if err == nil {
		t.Fatal("NewHandler() error = nil, want collision error")
	}
}

func TestNewHandlerDefaults(t *testing.T) {
	_, cfg, err := NewHandler(Config{MCPEndpoint: "tools/"}, Dependencies{Projects: newProjects(t)})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	if cfg.HTTPBind != defaultBindAddress || cfg.MCPEndpoint != "/tools" || cfg.ServerName != "portdash" {
		t.Fatalf("unexpected normalized config %#v", cfg)
	}
}

func TestHandlerRoutesHealthAndAPI(t *testing.T) {
	logger := &recordingLogger{}
	projects := newProjects(t)
	if _, err := projects.CreateProject(context.Background(), common.CreateProjectRequest{UserID: "u1", Title: "Portfolio"}); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	handler, _, err := NewHandler(Config{}, Dependencies{Projects: projects, Logger: logger})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/project/getprojects?userId=u1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("getprojects status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"title":"Portfolio"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if len(logger.lines) != 3 {
		t.Fatalf("expected 3 request log lines, got %d", len(logger.lines))
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, Config{HTTPBind: "127.0.0.1:0"}, Dependencies{Projects: newProjects(t)})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}
