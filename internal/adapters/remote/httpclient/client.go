// Package httpclient implements the dashboard project client over the project REST API.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hylla/portdash/internal/dashboard"
	"github.com/hylla/portdash/internal/domain"
)

// DefaultTimeout bounds one remote call when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// maxResponseBodyBytes limits decoded response payload size.
const maxResponseBodyBytes int64 = 4 << 20

// Client calls the project REST API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout. A client passed through WithHTTPClient is copied, not modified.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// New constructs a client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("base url is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	c := &Client{
		baseURL: parsed,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.timeout > 0 && c.http.Timeout != c.timeout {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c, nil
}

// projectRecord is the wire shape of one project.
type projectRecord struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId,omitempty"`
	Slug      string    `json:"slug,omitempty"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Image     string    `json:"image"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// listResponse is the body of a successful list call.
type listResponse struct {
	Projects []projectRecord `json:"projects"`
}

// failureBody captures the message of a failed call in flat or enveloped form.
type failureBody struct {
	Message string `json:"message"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GetProjects fetches one page of userID's projects. startIndex is omitted when zero.
func (c *Client) GetProjects(ctx context.Context, userID string, startIndex int) ([]domain.Project, error) {
	const op = "get projects"
	query := url.Values{}
	query.Set("userId", userID)
	if startIndex > 0 {
		query.Set("startIndex", strconv.Itoa(startIndex))
	}
	endpoint := c.endpoint("api", "project", "getprojects")
	endpoint.RawQuery = query.Encode()

	var out listResponse
	if err := c.do(ctx, op, http.MethodGet, endpoint, &out); err != nil {
		return nil, err
	}
	projects := make([]domain.Project, 0, len(out.Projects))
	for _, rec := range out.Projects {
		projects = append(projects, rec.toDomain(userID))
	}
	return projects, nil
}

// DeleteProject removes projectID on behalf of userID.
func (c *Client) DeleteProject(ctx context.Context, projectID, userID string) error {
	const op = "delete project"
	endpoint := c.endpoint("api", "project", "deleteproject", projectID, userID)
	return c.do(ctx, op, http.MethodDelete, endpoint, nil)
}

// endpoint joins escaped path segments onto the base URL.
func (c *Client) endpoint(segments ...string) *url.URL {
	u := *c.baseURL
	escaped := make([]string, 0, len(segments))
	for _, seg := range segments {
		escaped = append(escaped, url.PathEscape(seg))
	}
	u.Path = c.baseURL.Path + "/" + strings.Join(segments, "/")
	u.RawPath = c.baseURL.EscapedPath() + "/" + strings.Join(escaped, "/")
	return &u
}

// do performs one request and decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, op, method string, endpoint *url.URL, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), nil)
	if err != nil {
		return &dashboard.RemoteError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &dashboard.RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return &dashboard.RemoteError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &dashboard.RemoteError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    failureMessage(body, resp.Status),
		}
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &dashboard.RemoteError{Op: op, StatusCode: resp.StatusCode, Message: "decode response", Err: err}
	}
	return nil
}

// failureMessage extracts the server message from a failed response body.
func failureMessage(body []byte, status string) string {
	var parsed failureBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if msg := strings.TrimSpace(parsed.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(parsed.Error.Message); msg != "" {
			return msg
		}
	}
	return status
}

// toDomain maps one wire record into a project, defaulting the owner to the requesting user.
func (r projectRecord) toDomain(userID string) domain.Project {
	owner := strings.TrimSpace(r.UserID)
	if owner == "" {
		owner = userID
	}
	return domain.Project{
		ID:        r.ID,
		OwnerID:   owner,
		Slug:      r.Slug,
		Title:     r.Title,
		Category:  r.Category,
		Image:     r.Image,
		Content:   r.Content,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}
