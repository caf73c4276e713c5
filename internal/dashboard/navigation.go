package dashboard

import (
	"errors"
	"net/url"
	"strings"

	"github.com/atotto/clipboard"
)

// CreateProjectPath is the navigation target for the create affordance.
const CreateProjectPath = "/create-project"

// EditProjectPath returns the navigation target for editing projectID.
func EditProjectPath(projectID string) string {
	return "/update-project/" + projectID
}

// Navigator hands a route off to whatever presents create/edit views.
type Navigator interface {
	Navigate(path string) (string, error)
}

// ClipboardNavigator resolves routes against a web base URL and copies the result to the clipboard.
type ClipboardNavigator struct {
	BaseURL string
	write   func(string) error
}

// NewClipboardNavigator constructs a navigator for baseURL backed by the system clipboard.
func NewClipboardNavigator(baseURL string) *ClipboardNavigator {
	return &ClipboardNavigator{
		BaseURL: strings.TrimSpace(baseURL),
		write:   clipboard.WriteAll,
	}
}

// Navigate resolves path and copies it to the clipboard. The resolved target is returned even when copying fails.
func (n *ClipboardNavigator) Navigate(path string) (string, error) {
	if n == nil {
		return "", errors.New("navigator is not configured")
	}
	target := ResolveRoute(n.BaseURL, path)
	if n.write == nil {
		return target, errors.New("clipboard unavailable")
	}
	if err := n.write(target); err != nil {
		return target, err
	}
	return target, nil
}

// ResolveRoute joins path onto baseURL. It returns path unchanged when baseURL is empty or invalid.
func ResolveRoute(baseURL, path string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return path
	}
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" {
		return path
	}
	return strings.TrimRight(base.String(), "/") + "/" + strings.TrimLeft(path, "/")
}
