// Package httpapi provides the REST HTTP adapter for the project service.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/hylla/portdash/internal/adapters/server/common"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// Route paths served by the handler.
const (
	PathGetProjects   = "/api/project/getprojects"
	PathDeleteProject = "/api/project/deleteproject/{projectId}/{userId}"
	PathCreateProject = "/api/project/create"
)

// Handler serves the project REST routes.
type Handler struct {
	projects common.ProjectService
	router   *mux.Router
}

// APIError represents one structured API failure response.
// The body is flat so clients can read `message` at the top level.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// MessageResponse carries one human-readable success message.
type MessageResponse struct {
	Message string `json:"message"`
}

// NewHandler constructs one HTTP API adapter over a project service.
func NewHandler(projects common.ProjectService) *Handler {
	h := &Handler{projects: projects}
	r := mux.NewRouter()
	r.HandleFunc(PathGetProjects, h.handleGetProjects).Methods(http.MethodGet)
	r.HandleFunc(PathDeleteProject, h.handleDeleteProject).Methods(http.MethodDelete)
	r.HandleFunc(PathCreateProject, h.handleCreateProject).Methods(http.MethodPost)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, APIError{
			Code:    "method_not_allowed",
			Message: "method not allowed",
		})
	})
	h.router = r
	return h
}

// ServeHTTP routes one API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// handleGetProjects serves GET `/api/project/getprojects?userId=&startIndex=`.
func (h *Handler) handleGetProjects(w http.ResponseWriter, r *http.Request) {
	if h.projects == nil {
		writeErrorFrom(w, common.ErrUnavailable)
		return
	}
	query := r.URL.Query()
	req := common.ListProjectsRequest{
		UserID: strings.TrimSpace(query.Get("userId")),
	}
	if req.UserID == "" {
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: "userId is required",
		})
		return
	}
	if raw := strings.TrimSpace(query.Get("startIndex")); raw != "" {
		start, err := strconv.Atoi(raw)
		if err != nil || start < 0 {
			writeJSONError(w, http.StatusBadRequest, APIError{
				Code:    "invalid_request",
				Message: "startIndex must be a non-negative integer",
				Context: map[string]any{"startIndex": raw},
			})
			return
		}
		req.StartIndex = start
	}
	page, err := h.projects.ListProjects(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleDeleteProject serves DELETE `/api/project/deleteproject/{projectId}/{userId}`.
func (h *Handler) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if h.projects == nil {
		writeErrorFrom(w, common.ErrUnavailable)
		return
	}
	vars := mux.Vars(r)
	req := common.DeleteProjectRequest{
		ProjectID: strings.TrimSpace(vars["projectId"]),
		UserID:    strings.TrimSpace(vars["userId"]),
	}
	if err := h.projects.DeleteProject(r.Context(), req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "The project has been deleted"})
}

// handleCreateProject serves POST `/api/project/create`.
func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	if h.projects == nil {
		writeErrorFrom(w, common.ErrUnavailable)
		return
	}
	var req common.CreateProjectRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	project, err := h.projects.CreateProject(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "Project not found",
		})
	case errors.Is(err, common.ErrForbidden):
		writeJSONError(w, http.StatusForbidden, APIError{
			Code:    "forbidden",
			Message: "You are not allowed to perform this action",
			Hint:    "Add the user to server.admin_user_ids.",
		})
	case errors.Is(err, common.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrUnavailable):
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "project service is not configured",
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeJSONError writes one structured error body.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, apiErr)
}

// writeJSON writes one JSON response body.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"code":"encode_error","message":"%s"}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
