package dashboard

import (
	"context"
	"strings"

	"github.com/hylla/portdash/internal/domain"
)

// Actor is the current session identity as reported by the session provider.
type Actor struct {
	ID           string
	IsAuthorized bool
}

// normalized trims the actor identifier.
func (a Actor) normalized() Actor {
	a.ID = strings.TrimSpace(a.ID)
	return a
}

// ActorProvider exposes the current session actor read-only.
type ActorProvider interface {
	CurrentActor() Actor
}

// StaticActor is an ActorProvider that always reports one fixed actor.
type StaticActor Actor

// CurrentActor returns the fixed actor.
func (s StaticActor) CurrentActor() Actor {
	return Actor(s)
}

// ProjectClient is the remote project service used by the dashboard.
type ProjectClient interface {
	GetProjects(ctx context.Context, userID string, startIndex int) ([]domain.Project, error)
	DeleteProject(ctx context.Context, projectID, userID string) error
}

// Logger is the structured logging surface used by dashboard components.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

// nopLogger discards all log events.
type nopLogger struct{}

func (nopLogger) Debug(any, ...any) {}
func (nopLogger) Info(any, ...any)  {}
func (nopLogger) Warn(any, ...any)  {}
func (nopLogger) Error(any, ...any) {}
