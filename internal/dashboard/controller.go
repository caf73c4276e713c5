package dashboard

import (
	"context"
	"sync"

	"github.com/hylla/portdash/internal/domain"
)

// Controller drives a ProjectList synchronously against a ProjectClient.
// Remote calls run outside the lock; results are applied under it.
type Controller struct {
	mu     sync.Mutex
	list   *ProjectList
	client ProjectClient
	logger Logger
}

// Snapshot is a point-in-time copy of the list state.
type Snapshot struct {
	Actor           Actor
	Visible         bool
	Projects        []domain.Project
	HasMore         bool
	Loading         bool
	DeleteState     DeleteState
	PendingDeletion string
	LastFailure     error
}

// NewController constructs a controller over a fresh list.
func NewController(client ProjectClient, logger Logger) *Controller {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Controller{
		list:   NewProjectList(),
		client: client,
		logger: logger,
	}
}

// SetActor mounts the list for actor and performs the initial load when the actor changed.
func (c *Controller) SetActor(ctx context.Context, actor Actor) Outcome {
	c.mu.Lock()
	req, ok := c.list.SetActor(actor)
	visible := c.list.Visible()
	c.mu.Unlock()
	if !ok {
		if !visible {
			c.logger.Debug("project list hidden for unauthorized actor", "actor_id", actor.ID)
		}
		return OutcomeApplied
	}
	return c.load(ctx, req)
}

// Reload remounts the list for the current actor and performs the initial load.
func (c *Controller) Reload(ctx context.Context) Outcome {
	c.mu.Lock()
	req, ok := c.list.Reload()
	c.mu.Unlock()
	if !ok {
		return OutcomeApplied
	}
	return c.load(ctx, req)
}

// LoadMore fetches and appends the next page. It reports false when no request was issued.
func (c *Controller) LoadMore(ctx context.Context) (Outcome, bool) {
	c.mu.Lock()
	req, ok := c.list.BeginLoadMore()
	c.mu.Unlock()
	if !ok {
		return OutcomeApplied, false
	}
	return c.load(ctx, req), true
}

// RequestDelete stages id for deletion.
func (c *Controller) RequestDelete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.RequestDelete(id)
}

// Cancel clears a staged deletion.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.Cancel()
}

// ConfirmDelete issues the staged delete. It reports false when nothing was staged.
func (c *Controller) ConfirmDelete(ctx context.Context) (Outcome, bool) {
	c.mu.Lock()
	req, ok := c.list.BeginConfirmDelete()
	c.mu.Unlock()
	if !ok {
		return OutcomeApplied, false
	}
	return c.remove(ctx, req), true
}

// Snapshot returns a copy of the current list state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	pending, _ := c.list.PendingDeletion()
	return Snapshot{
		Actor:           c.list.Actor(),
		Visible:         c.list.Visible(),
		Projects:        c.list.Projects(),
		HasMore:         c.list.HasMore(),
		Loading:         c.list.Loading(),
		DeleteState:     c.list.DeleteState(),
		PendingDeletion: pending,
		LastFailure:     c.list.LastFailure(),
	}
}

// load performs req and applies its result.
func (c *Controller) load(ctx context.Context, req LoadRequest) Outcome {
	page, err := FetchPage(ctx, c.client, req)

	c.mu.Lock()
	before := c.list.Len()
	outcome := c.list.ApplyLoad(req, page, err)
	after := c.list.Len()
	hasMore := c.list.HasMore()
	c.mu.Unlock()

	LogLoadOutcome(c.logger, req, outcome, len(page), after-before, hasMore, err)
	return outcome
}

// remove performs req and applies its result.
func (c *Controller) remove(ctx context.Context, req DeleteRequest) Outcome {
	err := ExecuteDelete(ctx, c.client, req)

	c.mu.Lock()
	outcome := c.list.ApplyDelete(req, err)
	c.mu.Unlock()

	LogDeleteOutcome(c.logger, req, outcome, err)
	return outcome
}

// FetchPage performs the remote list call described by req.
func FetchPage(ctx context.Context, client ProjectClient, req LoadRequest) ([]domain.Project, error) {
	if client == nil {
		return nil, &RemoteError{Op: "get projects", Message: "project client is not configured"}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return client.GetProjects(ctx, req.ActorID, req.StartIndex)
}

// ExecuteDelete performs the remote delete described by req.
func ExecuteDelete(ctx context.Context, client ProjectClient, req DeleteRequest) error {
	if client == nil {
		return &RemoteError{Op: "delete project", Message: "project client is not configured"}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return client.DeleteProject(ctx, req.ProjectID, req.ActorID)
}

// LogLoadOutcome records the result of one page load.
func LogLoadOutcome(logger Logger, req LoadRequest, outcome Outcome, returned, added int, hasMore bool, err error) {
	if logger == nil {
		return
	}
	switch outcome {
	case OutcomeStale:
		logger.Debug("discarded stale project page", "actor_id", req.ActorID, "generation", req.Generation, "kind", req.Kind, "start_index", req.StartIndex)
	case OutcomeFailed:
		logger.Error("project page load failed", "actor_id", req.ActorID, "kind", req.Kind, "start_index", req.StartIndex, "err", err)
	default:
		if skipped := returned - added; skipped > 0 {
			logger.Warn("skipped duplicate projects in page", "actor_id", req.ActorID, "start_index", req.StartIndex, "skipped", skipped)
		}
		logger.Debug("project page loaded", "actor_id", req.ActorID, "kind", req.Kind, "start_index", req.StartIndex, "returned", returned, "has_more", hasMore)
	}
}

// LogDeleteOutcome records the result of one confirmed delete.
func LogDeleteOutcome(logger Logger, req DeleteRequest, outcome Outcome, err error) {
	if logger == nil {
		return
	}
	switch outcome {
	case OutcomeStale:
		logger.Debug("discarded stale delete result", "actor_id", req.ActorID, "project_id", req.ProjectID, "generation", req.Generation)
	case OutcomeFailed:
		logger.Error("project delete failed", "actor_id", req.ActorID, "project_id", req.ProjectID, "err", err)
	default:
		logger.Info("project deleted", "actor_id", req.ActorID, "project_id", req.ProjectID)
	}
}
