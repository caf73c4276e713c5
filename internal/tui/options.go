package tui

import (
	"strings"

	"github.com/hylla/portdash/internal/dashboard"
)

type Option func(*Model)

func WithNavigator(nav dashboard.Navigator) Option {
	return func(m *Model) {
		m.navigator = nav
	}
}

func WithLogger(logger dashboard.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMarkdownStyle selects the glamour standard style for the project info overlay.
func WithMarkdownStyle(style string) Option {
	return func(m *Model) {
		m.markdown.style = strings.TrimSpace(style)
	}
}
