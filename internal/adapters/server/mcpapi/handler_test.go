package mcpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/hylla/portdash/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
)

// stubProjectService provides deterministic project responses for MCP tool tests.
type stubProjectService struct {
	page       common.ListProjectsResponse
	created    common.Project
	listErr    error
	deleteErr  error
	createErr  error
	lastList   common.ListProjectsRequest
	lastDelete common.DeleteProjectRequest
	lastCreate common.CreateProjectRequest
}

// ListProjects records the request and returns the configured page.
func (s *stubProjectService) ListProjects(_ context.Context, req common.ListProjectsRequest) (common.ListProjectsResponse, error) {
	s.lastList = req
	if s.listErr != nil {
		return common.ListProjectsResponse{}, s.listErr
	}
	return s.page, nil
}

// DeleteProject records the request and returns the configured error.
func (s *stubProjectService) DeleteProject(_ context.Context, req common.DeleteProjectRequest) error {
	s.lastDelete = req
	return s.deleteErr
}

// CreateProject records the request and returns the configured project.
func (s *stubProjectService) CreateProject(_ context.Context, req common.CreateProjectRequest) (common.Project, error) {
	s.lastCreate = req
	if s.createErr != nil {
		return common.Project{}, s.createErr
	}
	return s.created, nil
}

// jsonRPCResponse models minimal JSON-RPC response fields used in MCP adapter tests.
type jsonRPCResponse struct {
	ID     float64        `json:"id"`
	Result map[string]any `json:"result"`
}

// callToolRequest constructs one deterministic tools/call JSON-RPC request payload.
func callToolRequest(id int, toolName string, arguments map[string]any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      toolName,
			"arguments": arguments,
		},
	}
}

// toolResultText decodes the first text entry from one tool-call result payload.
func toolResultText(t *testing.T, result map[string]any) string {
	t.Helper()

	contentRaw, ok := result["content"].([]any)
	if !ok || len(contentRaw) == 0 {
		t.Fatalf("content missing in tool result: %#v", result)
	}
	first, ok := contentRaw[0].(map[string]any)
	if !ok {
		t.Fatalf("first content entry has unexpected type: %#v", contentRaw[0])
	}
	text, ok := first["text"].(string)
	if !ok {
		t.Fatalf("content text missing in tool result: %#v", first)
	}
	return text
}

// toolResultStructured decodes structuredContent as one map for stable assertions.
func toolResultStructured(t *testing.T, result map[string]any) map[string]any {
	t.Helper()
	structured, ok := result["structuredContent"].(map[string]any)
	if !ok {
		t.Fatalf("structuredContent missing in tool result: %#v", result)
	}
	return structured
}

// postJSONRPC sends one JSON-RPC payload and decodes the response body.
func postJSONRPC(t *testing.T, client *http.Client, url string, payload any) (*http.Response, jsonRPCResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	var decoded jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := resp.Body.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return resp, decoded
}

// initializeRequest builds a deterministic MCP initialize request payload.
func initializeRequest() map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
			"clientInfo": map[string]any{
				"name":    "portdash-test",
				"version": "1.0.0",
			},
		},
	}
}

// newTestServer starts one MCP handler over svc and performs the initialize handshake.
func newTestServer(t *testing.T, svc common.ProjectService) *httptest.Server {
	t.Helper()
	handler, err := NewHandler(Config{}, svc)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	return server
}

// TestNewHandlerRequiresService verifies the project service dependency is enforced.
func TestNewHandlerRequiresService(t *testing.T) {
	if _, err := NewHandler(Config{}, nil); err == nil {
		t.Fatal("NewHandler(nil) error = nil, want error")
	}
}

// TestHandlerUsesStatelessTransport verifies MCP transport does not issue session ids.
func TestHandlerUsesStatelessTransport(t *testing.T) {
	handler, err := NewHandler(Config{}, &stubProjectService{})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	server := httptest.NewServer(handler)
	defer server.Close()

	resp, decoded := postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if decoded.ID != 1 {
		t.Fatalf("id = %v, want 1", decoded.ID)
	}
	if got := resp.Header.Get("Mcp-Session-Id"); got != "" {
		t.Fatalf("Mcp-Session-Id header = %q, want empty (stateless transport)", got)
	}
}

// TestHandlerRegistersProjectTools verifies tool discovery lists every project tool.
func TestHandlerRegistersProjectTools(t *testing.T) {
	server := newTestServer(t, &stubProjectService{})
	_, toolsResp := postJSONRPC(t, server.Client(), server.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/list",
	})

	toolsRaw, ok := toolsResp.Result["tools"].([]any)
	if !ok {
		t.Fatalf("tools list payload missing tools: %#v", toolsResp.Result)
	}
	toolNames := make([]string, 0, len(toolsRaw))
	for _, toolRaw := range toolsRaw {
		toolMap, ok := toolRaw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := toolMap["name"].(string)
		toolNames = append(toolNames, name)
	}
	for _, required := range []string{ToolListProjects, ToolDeleteProject, ToolCreateProject} {
		if !slices.Contains(toolNames, required) {
			t.Fatalf("tool list missing %s: %#v", required, toolNames)
		}
	}
}

// TestHandlerListProjectsTool verifies argument mapping and JSON output.
func TestHandlerListProjectsTool(t *testing.T) {
	svc := &stubProjectService{
		page: common.ListProjectsResponse{Projects: []common.Project{{ID: "p1", UserID: "u1", Title: "Portfolio"}}},
	}
	server := newTestServer(t, svc)
	_, resp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(3, ToolListProjects, map[string]any{
		"user_id":     "u1",
		"start_index": 9,
	}))
	if svc.lastList.UserID != "u1" || svc.lastList.StartIndex != 9 {
		t.Fatalf("unexpected request %#v", svc.lastList)
	}
	structured := toolResultStructured(t, resp.Result)
	projects, ok := structured["projects"].([]any)
	if !ok || len(projects) != 1 {
		t.Fatalf("unexpected projects %#v", structured)
	}
	first, _ := projects[0].(map[string]any)
	if first["_id"] != "p1" {
		t.Fatalf("_id = %v, want p1", first["_id"])
	}
}

// TestHandlerDeleteProjectTool verifies delete arguments and error mapping.
func TestHandlerDeleteProjectTool(t *testing.T) {
	svc := &stubProjectService{}
	server := newTestServer(t, svc)
	_, resp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(4, ToolDeleteProject, map[string]any{
		"project_id": "p7",
		"user_id":    "u1",
	}))
	if svc.lastDelete.ProjectID != "p7" || svc.lastDelete.UserID != "u1" {
		t.Fatalf("unexpected request %#v", svc.lastDelete)
	}
	if isErr, _ := resp.Result["isError"].(bool); isErr {
		t.Fatalf("unexpected tool error %#v", resp.Result)
	}

	svc.deleteErr = errors.Join(common.ErrForbidden, errors.New("nope"))
	_, resp = postJSONRPC(t, server.Client(), server.URL, callToolRequest(5, ToolDeleteProject, map[string]any{
		"project_id": "p7",
		"user_id":    "u2",
	}))
	if isErr, _ := resp.Result["isError"].(bool); !isErr {
		t.Fatalf("expected tool error, got %#v", resp.Result)
	}
	if text := toolResultText(t, resp.Result); !strings.HasPrefix(text, "forbidden:") {
		t.Fatalf("error text = %q, want forbidden prefix", text)
	}
}

// TestHandlerCreateProjectToolRequiresTitle verifies required argument validation.
func TestHandlerCreateProjectToolRequiresTitle(t *testing.T) {
	svc := &stubProjectService{created: common.Project{ID: "p-new"}}
	server := newTestServer(t, svc)
	_, resp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(6, ToolCreateProject, map[string]any{
		"user_id": "u1",
	}))
	if isErr, _ := resp.Result["isError"].(bool); !isErr {
		t.Fatalf("expected tool error, got %#v", resp.Result)
	}

	_, resp = postJSONRPC(t, server.Client(), server.URL, callToolRequest(7, ToolCreateProject, map[string]any{
		"user_id":  "u1",
		"title":    "New",
		"category": "cli",
	}))
	if svc.lastCreate.Title != "New" || svc.lastCreate.Category != "cli" {
		t.Fatalf("unexpected request %#v", svc.lastCreate)
	}
	if got := toolResultStructured(t, resp.Result)["_id"]; got != "p-new" {
		t.Fatalf("_id = %v, want p-new", got)
	}
}

// TestToolResultFromError verifies error class prefixes.
func TestToolResultFromError(t *testing.T) {
	cases := map[string]error{
		"invalid_request:": errors.Join(common.ErrInvalidRequest, errors.New("x")),
		"not_found:":       errors.Join(common.ErrNotFound, errors.New("x")),
		"not_implemented:": common.ErrUnavailable,
		"internal_error:":  errors.New("boom"),
	}
	for prefix, err := range cases {
		result := toolResultFromError(err)
		if !result.IsError {
			t.Fatalf("%s: IsError = false", prefix)
		}
		text, ok := result.Content[0].(mcp.TextContent)
		if !ok || !strings.HasPrefix(text.Text, prefix) {
			t.Fatalf("content = %#v, want prefix %q", result.Content[0], prefix)
		}
	}
}
