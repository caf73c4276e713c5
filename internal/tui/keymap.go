package tui

import "charm.land/bubbles/v2/key"

// keyMap holds the dashboard key bindings.
type keyMap struct {
	quit        key.Binding
	reload      key.Binding
	reloadActor key.Binding
	toggleHelp  key.Binding
	moveUp      key.Binding
	moveDown    key.Binding
	showMore    key.Binding
	newProject  key.Binding
	editProject key.Binding
	projectInfo key.Binding
	deleteItem  key.Binding
	confirm     key.Binding
	cancel      key.Binding
}

// newKeyMap constructs the default bindings.
func newKeyMap() keyMap {
	return keyMap{
		quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		reloadActor: key.NewBinding(key.WithKeys("R", "shift+r"), key.WithHelp("R", "re-read identity")),
		toggleHelp:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveUp:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		moveDown:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		showMore:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "show more")),
		newProject:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new project")),
		editProject: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit project")),
		projectInfo: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "project info")),
		deleteItem:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		confirm:     key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y/enter", "yes, I'm sure")),
		cancel:      key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "no, cancel")),
	}
}

// ShortHelp returns the compact help row.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.moveDown, k.moveUp, k.showMore, k.newProject, k.deleteItem, k.toggleHelp, k.quit}
}

// FullHelp returns grouped help rows.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveDown, k.moveUp, k.showMore, k.projectInfo},
		{k.newProject, k.editProject, k.deleteItem},
		{k.reload, k.reloadActor, k.toggleHelp, k.quit},
	}
}

// confirmKeys is the help shown while the delete confirmation is open.
type confirmKeys struct {
	keys keyMap
}

// ShortHelp returns the confirmation bindings.
func (c confirmKeys) ShortHelp() []key.Binding {
	return []key.Binding{c.keys.confirm, c.keys.cancel}
}

// FullHelp returns the confirmation bindings as one row.
func (c confirmKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{c.ShortHelp()}
}
