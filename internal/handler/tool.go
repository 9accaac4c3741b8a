package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/sandbox-tools/internal/apperror"
	"github.com/sakif/sandbox-tools/internal/auth"
	"github.com/sakif/sandbox-tools/internal/service"
	"github.com/sakif/sandbox-tools/internal/tool"
)

// maxInvokeBody leaves room for JSON escaping of a maximum-size input.
const maxInvokeBody = 2*service.MaxInputLength + 4096

// ToolHandler serves tool discovery, invocation and history.
type ToolHandler struct {
	service *service.ToolService
	logger  *slog.Logger
}

func NewToolHandler(svc *service.ToolService, logger *slog.Logger) *ToolHandler {
	return &ToolHandler{
		service: svc,
		logger:  logger,
	}
}

// ToolResponse describes one tool for discovery.
type ToolResponse struct {
	tool.Descriptor
	Schema map[string]any `json:"schema"`
}

// InvokeResponse is the body of a successful tool call.
type InvokeResponse struct {
	Tool   string `json:"tool"`
	Output string `json:"output"`
}

// HandleList returns every registered tool.
//
// HTTP: GET /api/tools
func (h *ToolHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	descs := h.service.Tools()
	out := make([]ToolResponse, 0, len(descs))
	for _, d := range descs {
		out = append(out, ToolResponse{Descriptor: d, Schema: d.Schema()})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleInvoke runs a tool. The body is the tool's parameter object, e.g.
// {"cmd": "echo hi"} for bash or {"code": "print(1)"} for python.
//
// HTTP: POST /api/tools/{name}
func (h *ToolHandler) HandleInvoke(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var params map[string]any
	if err := decodeJSON(w, r, maxInvokeBody, &params); err != nil {
		h.logger.Warn("invalid tool invocation body", slog.String("tool", name), slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	caller, _ := auth.ClientIDFromContext(r.Context())

	output, err := h.service.Invoke(r.Context(), caller, name, params)
	if err != nil {
		if !errors.Is(err, apperror.ErrToolExecution) {
			h.logger.Warn("tool invocation rejected", slog.String("tool", name), slog.String("error", err.Error()))
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, InvokeResponse{Tool: name, Output: output})
}

// HandleListInvocations returns recorded tool calls, newest first.
//
// HTTP: GET /api/invocations?tool=bash&limit=20&offset=0
func (h *ToolHandler) HandleListInvocations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := intParam(q.Get("limit"), "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	offset, err := intParam(q.Get("offset"), "offset")
	if err != nil {
		writeError(w, err)
		return
	}

	invocations, err := h.service.ListInvocations(r.Context(), q.Get("tool"), limit, offset)
	if err != nil {
		h.logger.Error("failed to list invocations", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, invocations)
}

// HandleGetInvocation returns a single recorded call.
//
// HTTP: GET /api/invocations/{id}
func (h *ToolHandler) HandleGetInvocation(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.GetInvocation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func intParam(raw, field string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed(field, field+" must be an integer")
	}
	return n, nil
}
