// Package dashboard holds the client-side project list: paged loading, staged deletion, and actor gating.
package dashboard

import (
	"slices"
	"strings"

	"github.com/hylla/portdash/internal/domain"
)

// PageSize is the number of projects requested per page.
const PageSize = 9

// LoadKind identifies whether a load replaces or extends the list.
type LoadKind int

// LoadInitial and LoadMore are the two load kinds.
const (
	LoadInitial LoadKind = iota
	LoadMore
)

// String returns the log-friendly load kind name.
func (k LoadKind) String() string {
	switch k {
	case LoadInitial:
		return "initial"
	case LoadMore:
		return "more"
	default:
		return "unknown"
	}
}

// LoadRequest describes one page fetch issued for a mount generation.
type LoadRequest struct {
	Generation uint64
	ActorID    string
	StartIndex int
	Kind       LoadKind
}

// DeleteRequest describes one confirmed remote delete issued for a mount generation.
type DeleteRequest struct {
	Generation uint64
	ActorID    string
	ProjectID  string
}

// Outcome reports what happened when a remote result was applied.
type Outcome int

// Apply outcomes.
const (
	OutcomeApplied Outcome = iota
	OutcomeFailed
	OutcomeStale
)

// String returns the log-friendly outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeFailed:
		return "failed"
	case OutcomeStale:
		return "stale"
	default:
		return "unknown"
	}
}

// DeleteState is the delete coordinator state.
type DeleteState int

// Delete coordinator states.
const (
	DeleteIdle DeleteState = iota
	DeleteStaged
	DeleteInFlight
)

// String returns the log-friendly delete state name.
func (s DeleteState) String() string {
	switch s {
	case DeleteIdle:
		return "idle"
	case DeleteStaged:
		return "staged"
	case DeleteInFlight:
		return "in_flight"
	default:
		return "unknown"
	}
}

// ProjectList is the in-memory project sequence for one actor mount.
// It is not safe for concurrent use; one event loop owns it.
type ProjectList struct {
	actor      Actor
	mounted    bool
	generation uint64

	projects []domain.Project
	hasMore  bool
	loading  bool

	deleteState   DeleteState
	pendingDelete string

	lastFailure error
}

// NewProjectList constructs an unmounted, empty list.
func NewProjectList() *ProjectList {
	return &ProjectList{hasMore: true}
}

// SetActor applies the session actor. A change of actor identifier or authorization
// remounts the list and, for an authorized actor, returns the initial page request.
func (l *ProjectList) SetActor(actor Actor) (LoadRequest, bool) {
	actor = actor.normalized()
	if l.mounted && actor == l.actor {
		return LoadRequest{}, false
	}
	l.actor = actor
	return l.remount()
}

// Reload remounts the list for the current actor and returns a fresh initial page request.
func (l *ProjectList) Reload() (LoadRequest, bool) {
	return l.remount()
}

// remount discards list state and starts a new generation.
func (l *ProjectList) remount() (LoadRequest, bool) {
	l.mounted = true
	l.generation++
	l.projects = nil
	l.hasMore = true
	l.loading = false
	l.deleteState = DeleteIdle
	l.pendingDelete = ""
	l.lastFailure = nil
	if !l.Visible() {
		return LoadRequest{}, false
	}
	l.loading = true
	return LoadRequest{
		Generation: l.generation,
		ActorID:    l.actor.ID,
		StartIndex: 0,
		Kind:       LoadInitial,
	}, true
}

// BeginLoadMore returns the next page request when more pages may exist and no load is pending.
func (l *ProjectList) BeginLoadMore() (LoadRequest, bool) {
	if !l.Visible() || !l.hasMore || l.loading {
		return LoadRequest{}, false
	}
	l.loading = true
	return LoadRequest{
		Generation: l.generation,
		ActorID:    l.actor.ID,
		StartIndex: len(l.projects),
		Kind:       LoadMore,
	}, true
}

// ApplyLoad applies the result of req. Failures leave the list and HasMore untouched.
func (l *ProjectList) ApplyLoad(req LoadRequest, page []domain.Project, err error) Outcome {
	if !l.current(req.Generation, req.ActorID) {
		return OutcomeStale
	}
	l.loading = false
	if err != nil {
		l.lastFailure = asRemoteError("get projects", err)
		return OutcomeFailed
	}
	l.lastFailure = nil
	if req.Kind == LoadInitial {
		l.projects = nil
	}
	l.projects = appendUnique(l.projects, page)
	l.hasMore = len(page) >= PageSize
	return OutcomeApplied
}

// RequestDelete stages id for deletion and shows the confirmation surface.
func (l *ProjectList) RequestDelete(id string) bool {
	id = strings.TrimSpace(id)
	if !l.Visible() || id == "" || l.deleteState != DeleteIdle {
		return false
	}
	l.pendingDelete = id
	l.deleteState = DeleteStaged
	return true
}

// Cancel hides the confirmation surface and clears the staged id. It is a no-op unless staged.
func (l *ProjectList) Cancel() bool {
	if l.deleteState != DeleteStaged {
		return false
	}
	l.pendingDelete = ""
	l.deleteState = DeleteIdle
	return true
}

// BeginConfirmDelete hides the confirmation surface and returns the remote delete to issue.
func (l *ProjectList) BeginConfirmDelete() (DeleteRequest, bool) {
	if l.deleteState != DeleteStaged || !l.Visible() {
		return DeleteRequest{}, false
	}
	l.deleteState = DeleteInFlight
	return DeleteRequest{
		Generation: l.generation,
		ActorID:    l.actor.ID,
		ProjectID:  l.pendingDelete,
	}, true
}

// ApplyDelete applies the result of req. Success removes the matching project; failure leaves the list untouched.
func (l *ProjectList) ApplyDelete(req DeleteRequest, err error) Outcome {
	if !l.current(req.Generation, req.ActorID) {
		return OutcomeStale
	}
	if l.deleteState == DeleteInFlight && l.pendingDelete == req.ProjectID {
		l.pendingDelete = ""
		l.deleteState = DeleteIdle
	}
	if err != nil {
		l.lastFailure = asRemoteError("delete project", err)
		return OutcomeFailed
	}
	l.lastFailure = nil
	if idx := l.indexOf(req.ProjectID); idx >= 0 {
		l.projects = slices.Delete(l.projects, idx, idx+1)
	}
	return OutcomeApplied
}

// current reports whether a response tagged with generation and actorID belongs to this mount.
func (l *ProjectList) current(generation uint64, actorID string) bool {
	return l.mounted && generation == l.generation && actorID == l.actor.ID
}

// indexOf returns the position of id in the list or -1.
func (l *ProjectList) indexOf(id string) int {
	return slices.IndexFunc(l.projects, func(p domain.Project) bool {
		return p.ID == id
	})
}

// Actor returns the actor the list is mounted for.
func (l *ProjectList) Actor() Actor {
	return l.actor
}

// Generation returns the current mount generation.
func (l *ProjectList) Generation() uint64 {
	return l.generation
}

// Visible reports whether the list surface and its controls are shown.
func (l *ProjectList) Visible() bool {
	return l.actor.IsAuthorized && l.actor.ID != ""
}

// CanCreate reports whether the create affordance is shown.
func (l *ProjectList) CanCreate() bool {
	return l.Visible()
}

// Projects returns a copy of the loaded projects in page order.
func (l *ProjectList) Projects() []domain.Project {
	if !l.Visible() {
		return nil
	}
	return slices.Clone(l.projects)
}

// Project returns the project at idx.
func (l *ProjectList) Project(idx int) (domain.Project, bool) {
	if !l.Visible() || idx < 0 || idx >= len(l.projects) {
		return domain.Project{}, false
	}
	return l.projects[idx], true
}

// Len returns the number of loaded projects.
func (l *ProjectList) Len() int {
	if !l.Visible() {
		return 0
	}
	return len(l.projects)
}

// HasMore reports whether another page may exist.
func (l *ProjectList) HasMore() bool {
	return l.hasMore
}

// Loading reports whether a page fetch is outstanding.
func (l *ProjectList) Loading() bool {
	return l.loading
}

// DeleteState returns the delete coordinator state.
func (l *ProjectList) DeleteState() DeleteState {
	return l.deleteState
}

// PendingDeletion returns the staged project id, if any.
func (l *ProjectList) PendingDeletion() (string, bool) {
	return l.pendingDelete, l.pendingDelete != ""
}

// ConfirmVisible reports whether the delete confirmation surface is shown.
func (l *ProjectList) ConfirmVisible() bool {
	return l.deleteState == DeleteStaged
}

// LastFailure returns the most recent remote failure for this mount, cleared by the next success.
func (l *ProjectList) LastFailure() error {
	return l.lastFailure
}

// appendUnique appends page to dst skipping ids already present.
func appendUnique(dst, page []domain.Project) []domain.Project {
	seen := make(map[string]struct{}, len(dst)+len(page))
	for _, p := range dst {
		seen[p.ID] = struct{}{}
	}
	for _, p := range page {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		dst = append(dst, p)
	}
	return dst
}
