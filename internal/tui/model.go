// Package tui renders the project dashboard as a Bubble Tea program.
package tui

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"net/url"
	"path"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	charmLog "github.com/charmbracelet/log"
	"github.com/hylla/portdash/internal/dashboard"
	"github.com/hylla/portdash/internal/domain"
)

// Confirmation and empty-state copy.
const (
	confirmDeletePrompt = "Are you sure you want to delete this project?"
	confirmDeleteYes    = "Yes, I'm sure"
	confirmDeleteNo     = "No, cancel"
	emptyListNotice     = "You have no projects yet!"
	showMoreLabel       = "Show more"
	signedOutNotice     = "Sign in as an admin to manage projects."
)

// dateUpdatedLayout formats the Date updated column.
const dateUpdatedLayout = "1/2/2006"

// inputMode represents the active overlay.
type inputMode int

// modeNone and modeProjectInfo are the non-confirmation overlays.
const (
	modeNone inputMode = iota
	modeProjectInfo
)

// pageLoadedMsg carries one page fetch result back to the event loop.
type pageLoadedMsg struct {
	req  dashboard.LoadRequest
	page []domain.Project
	err  error
}

// deleteDoneMsg carries one remote delete result back to the event loop.
type deleteDoneMsg struct {
	req dashboard.DeleteRequest
	err error
}

// navigatedMsg carries the result of a create/edit handoff.
type navigatedMsg struct {
	target string
	err    error
}

// Model is the dashboard program state. The project list is owned by the Update loop.
type Model struct {
	client    dashboard.ProjectClient
	actors    dashboard.ActorProvider
	navigator dashboard.Navigator
	logger    dashboard.Logger

	list     *dashboard.ProjectList
	keys     keyMap
	help     help.Model
	markdown *markdownRenderer

	mode     inputMode
	selected int
	infoID   string
	status   string

	width  int
	height int
	ready  bool
}

// NewModel constructs a dashboard over client for the actor reported by actors.
func NewModel(client dashboard.ProjectClient, actors dashboard.ActorProvider, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		client:   client,
		actors:   actors,
		logger:   charmLog.New(io.Discard),
		list:     dashboard.NewProjectList(),
		keys:     newKeyMap(),
		help:     h,
		markdown: &markdownRenderer{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init mounts the list for the current actor and issues the initial load.
func (m Model) Init() tea.Cmd {
	req, ok := m.list.SetActor(m.currentActor())
	if !ok {
		return nil
	}
	return m.fetchPage(req)
}

// Update applies one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case pageLoadedMsg:
		before := m.list.Len()
		outcome := m.list.ApplyLoad(msg.req, msg.page, msg.err)
		dashboard.LogLoadOutcome(m.logger, msg.req, outcome, len(msg.page), m.list.Len()-before, m.list.HasMore(), msg.err)
		switch outcome {
		case dashboard.OutcomeFailed:
			m.status = "load failed: " + m.list.LastFailure().Error()
		case dashboard.OutcomeApplied:
			m.status = fmt.Sprintf("%d projects loaded", m.list.Len())
		}
		m.clampSelection()
		return m, nil

	case deleteDoneMsg:
		outcome := m.list.ApplyDelete(msg.req, msg.err)
		dashboard.LogDeleteOutcome(m.logger, msg.req, outcome, msg.err)
		switch outcome {
		case dashboard.OutcomeFailed:
			m.status = "delete failed: " + m.list.LastFailure().Error()
		case dashboard.OutcomeApplied:
			m.status = "project deleted"
		}
		m.clampSelection()
		return m, nil

	case navigatedMsg:
		switch {
		case msg.err != nil && msg.target != "":
			m.status = "open " + msg.target + " (clipboard unavailable)"
			m.logger.Warn("navigation clipboard copy failed", "target", msg.target, "err", msg.err)
		case msg.err != nil:
			m.status = "navigation failed: " + msg.err.Error()
		default:
			m.status = "copied " + msg.target
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.list.ConfirmVisible() {
			return m.handleConfirmKey(msg)
		}
		if m.mode == modeProjectInfo {
			return m.handleInfoKey(msg)
		}
		return m.handleNormalModeKey(msg)

	default:
		return m, nil
	}
}

// handleNormalModeKey handles keys while no overlay is open.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.reload):
		req, ok := m.list.Reload()
		m.selected = 0
		if !ok {
			return m, nil
		}
		m.status = "reloading..."
		return m, m.fetchPage(req)
	case key.Matches(msg, m.keys.reloadActor):
		actor := m.currentActor()
		generation := m.list.Generation()
		req, ok := m.list.SetActor(actor)
		if m.list.Generation() == generation {
			m.status = "identity unchanged"
			return m, nil
		}
		m.selected = 0
		m.mode = modeNone
		m.infoID = ""
		m.logger.Info("dashboard actor changed", "actor_id", actor.ID, "authorized", actor.IsAuthorized)
		if !ok {
			m.status = "signed out"
			return m, nil
		}
		m.status = "loading projects for " + actor.ID
		return m, m.fetchPage(req)
	}

	if !m.list.Visible() {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.moveDown):
		m.selected = clamp(m.selected+1, 0, m.list.Len()-1)
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		m.selected = clamp(m.selected-1, 0, m.list.Len()-1)
		return m, nil
	case key.Matches(msg, m.keys.showMore):
		req, ok := m.list.BeginLoadMore()
		if !ok {
			return m, nil
		}
		m.status = "loading more..."
		return m, m.fetchPage(req)
	case key.Matches(msg, m.keys.newProject):
		return m, m.navigate(dashboard.CreateProjectPath)
	case key.Matches(msg, m.keys.editProject):
		project, ok := m.list.Project(m.selected)
		if !ok {
			return m, nil
		}
		return m, m.navigate(dashboard.EditProjectPath(project.ID))
	case key.Matches(msg, m.keys.projectInfo):
		project, ok := m.list.Project(m.selected)
		if !ok {
			return m, nil
		}
		m.mode = modeProjectInfo
		m.infoID = project.ID
		return m, nil
	case key.Matches(msg, m.keys.deleteItem):
		project, ok := m.list.Project(m.selected)
		if !ok {
			return m, nil
		}
		m.list.RequestDelete(project.ID)
		return m, nil
	default:
		return m, nil
	}
}

// handleConfirmKey handles keys while the delete confirmation is open.
func (m Model) handleConfirmKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.confirm):
		req, ok := m.list.BeginConfirmDelete()
		if !ok {
			return m, nil
		}
		m.status = "deleting..."
		return m, m.deleteProject(req)
	case key.Matches(msg, m.keys.cancel):
		m.list.Cancel()
		return m, nil
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	default:
		return m, nil
	}
}

// handleInfoKey handles keys while the project info overlay is open.
func (m Model) handleInfoKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case msg.String() == "esc", key.Matches(msg, m.keys.projectInfo), key.Matches(msg, m.keys.quit):
		m.mode = modeNone
		m.infoID = ""
		return m, nil
	default:
		return m, nil
	}
}

// fetchPage runs req off the event loop.
func (m Model) fetchPage(req dashboard.LoadRequest) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		page, err := dashboard.FetchPage(context.Background(), client, req)
		return pageLoadedMsg{req: req, page: page, err: err}
	}
}

// deleteProject runs req off the event loop.
func (m Model) deleteProject(req dashboard.DeleteRequest) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return deleteDoneMsg{req: req, err: dashboard.ExecuteDelete(context.Background(), client, req)}
	}
}

// navigate hands routePath to the configured navigator.
func (m Model) navigate(routePath string) tea.Cmd {
	nav := m.navigator
	return func() tea.Msg {
		if nav == nil {
			return navigatedMsg{target: routePath, err: fmt.Errorf("no navigator configured")}
		}
		target, err := nav.Navigate(routePath)
		return navigatedMsg{target: target, err: err}
	}
}

// currentActor reads the session actor, treating a missing provider as signed out.
func (m Model) currentActor() dashboard.Actor {
	if m.actors == nil {
		return dashboard.Actor{}
	}
	return m.actors.CurrentActor()
}

// clampSelection keeps the cursor inside the loaded list.
func (m *Model) clampSelection() {
	m.selected = clamp(m.selected, 0, m.list.Len()-1)
	if m.mode == modeProjectInfo {
		if _, ok := m.infoProject(); !ok {
			m.mode = modeNone
			m.infoID = ""
		}
	}
}

// infoProject returns the project shown in the info overlay.
func (m Model) infoProject() (domain.Project, bool) {
	for _, p := range m.list.Projects() {
		if p.ID == m.infoID {
			return p, true
		}
	}
	return domain.Project{}, false
}

// View renders the dashboard on the alternate screen.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render composes the full frame as text.
func (m Model) render() string {
	if !m.ready {
		return "loading..."
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	actor := m.list.Actor()
	header := titleStyle.Render("portdash")
	if actor.ID != "" {
		header += lipgloss.NewStyle().Foreground(muted).Render("  " + actor.ID)
	}
	sections := []string{header, ""}
	sections = append(sections, m.renderBody(accent, muted)...)
	if strings.TrimSpace(m.status) != "" {
		sections = append(sections, "", statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	var bindings help.KeyMap = m.keys
	if m.list.ConfirmVisible() {
		bindings = confirmKeys{keys: m.keys}
	}
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(bindings))
	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	fullContent := content + "\n" + helpLine

	if overlay := m.renderOverlay(accent, muted, m.width-8); overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}
	return fullContent
}

// renderBody renders the notice, table, and show-more line.
func (m Model) renderBody(accent, muted color.Color) []string {
	hint := lipgloss.NewStyle().Foreground(muted)
	if !m.list.Visible() {
		return []string{signedOutNotice, hint.Render("Run `portdash login <user-id> --admin`, then press R.")}
	}

	projects := m.list.Projects()
	if len(projects) == 0 {
		if m.list.Loading() {
			return []string{hint.Render("loading...")}
		}
		return []string{emptyListNotice, hint.Render("Press n to create a project.")}
	}

	lines := []string{m.renderTable(projects, accent)}
	switch {
	case m.list.Loading():
		lines = append(lines, hint.Render("loading..."))
	case m.list.HasMore():
		lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(accent).Render(showMoreLabel)+hint.Render(" (m)"))
	}
	return lines
}

// renderTable renders the project table with the cursor row highlighted.
func (m Model) renderTable(projects []domain.Project, accent color.Color) string {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			p.UpdatedAt.Local().Format(dateUpdatedLayout),
			truncate(imageLabel(p.Image), 24),
			truncate(p.Title, 40),
			truncate(p.Category, 16),
		})
	}
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	selectedStyle := cellStyle.Foreground(lipgloss.Color("212")).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(accent)).
		Headers("Date updated", "Image", "Title", "Category").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == m.selected:
				return selectedStyle
			default:
				return cellStyle
			}
		})
	return t.String()
}

// renderOverlay renders the confirmation or info modal, if one is open.
func (m Model) renderOverlay(accent, muted color.Color, maxWidth int) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	hint := lipgloss.NewStyle().Foreground(muted)

	if m.list.ConfirmVisible() {
		if maxWidth > 0 {
			boxStyle = boxStyle.Width(clamp(maxWidth, 24, 56))
		}
		yes := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")).Render(confirmDeleteYes)
		lines := []string{
			confirmDeletePrompt,
			"",
			yes + hint.Render(" (y)") + "   " + confirmDeleteNo + hint.Render(" (n)"),
		}
		return boxStyle.Render(strings.Join(lines, "\n"))
	}

	if m.mode == modeProjectInfo {
		project, ok := m.infoProject()
		if !ok {
			return ""
		}
		width := 76
		if maxWidth > 0 {
			width = clamp(maxWidth, 24, 76)
			boxStyle = boxStyle.Width(width)
		}
		body := m.markdown.render(projectMarkdown(project), width-4)
		return boxStyle.Render(body + "\n" + hint.Render("esc close"))
	}
	return ""
}

// projectMarkdown builds the info document for one project.
func projectMarkdown(p domain.Project) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	fmt.Fprintf(&b, "*%s* · updated %s · `%s`\n\n", p.Category, p.UpdatedAt.Local().Format(dateUpdatedLayout), p.Slug)
	if p.Image != "" {
		fmt.Fprintf(&b, "![cover](%s)\n\n", p.Image)
	}
	if content := strings.TrimSpace(p.Content); content != "" {
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String()
}

// imageLabel shortens an image URL to its file name.
func imageLabel(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Path == "" {
		return raw
	}
	base := path.Base(u.Path)
	if base == "/" || base == "." {
		return u.Host
	}
	return base
}

// clamp bounds v to [minV, maxV], preferring minV when the range is empty.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines pads or truncates content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay above base on a width x height canvas.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	overlayLayer := lipgloss.NewLayer(centered).X(0).Y(0).Z(10)
	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
