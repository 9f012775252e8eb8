package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"

	"github.com/hpungsan/rolo/internal/config"
	"github.com/hpungsan/rolo/internal/contact"
	"github.com/hpungsan/rolo/internal/errors"
	"github.com/hpungsan/rolo/internal/ops"
	"github.com/hpungsan/rolo/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	st  *store.Store
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(st *store.Store, cfg *config.Config) *Handlers {
	return &Handlers{st: st, cfg: cfg}
}

// Request types for each tool

// CreateRequest represents the arguments for contact_create.
type CreateRequest struct {
	Name       string           `json:"name,omitempty"`
	Methods    []contact.Method `json:"methods,omitempty"`
	Note       string           `json:"note,omitempty"`
	Avatar     *string          `json:"avatar,omitempty"`
	Bookmarked bool             `json:"bookmarked,omitempty"`
}

// GetRequest represents the arguments for contact_get.
type GetRequest struct {
	ID            string `json:"id"`
	IncludeAvatar bool   `json:"include_avatar,omitempty"`
}

// UpdateRequest represents the arguments for contact_update.
type UpdateRequest struct {
	ID         string            `json:"id"`
	Name       *string           `json:"name,omitempty"`
	Methods    *[]contact.Method `json:"methods,omitempty"`
	Note       *string           `json:"note,omitempty"`
	Avatar     *string           `json:"avatar,omitempty"`
	Bookmarked *bool             `json:"bookmarked,omitempty"`
}

// IDRequest represents the arguments for contact_delete and contact_bookmark.
type IDRequest struct {
	ID string `json:"id"`
}

// SearchRequest represents the arguments for contact_search.
type SearchRequest struct {
	Term  string `json:"term,omitempty"`
	Scope string `json:"scope,omitempty"`
}

// ExportRequest represents the arguments for contact_export.
type ExportRequest struct {
	Path   string `json:"path,omitempty"`
	Format string `json:"format,omitempty"`
}

// ImportRequest represents the arguments for contact_import.
type ImportRequest struct {
	Path string `json:"path"`
}

// Handler implementations

// HandleCreate handles the contact_create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Create(ctx, h.st, ops.CreateInput{
		Name:       input.Name,
		Avatar:     input.Avatar,
		Methods:    input.Methods,
		Note:       input.Note,
		Bookmarked: input.Bookmarked,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGet handles the contact_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Get(ctx, h.st, ops.GetInput{ID: input.ID, IncludeAvatar: input.IncludeAvatar})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleUpdate handles the contact_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Update(ctx, h.st, ops.UpdateInput{
		ID:         input.ID,
		Name:       input.Name,
		Avatar:     input.Avatar,
		Methods:    input.Methods,
		Note:       input.Note,
		Bookmarked: input.Bookmarked,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the contact_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.st, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleBookmark handles the contact_bookmark tool call.
func (h *Handlers) HandleBookmark(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ToggleBookmark(ctx, h.st, ops.BookmarkInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSearch handles the contact_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Search(ctx, h.st, ops.SearchInput{Term: input.Term, Scope: input.Scope})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the contact_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.st, h.cfg, ops.ExportInput{Path: input.Path, Format: input.Format})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleImport handles the contact_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.st, h.cfg, ops.ImportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult converts err into an IsError tool result.
// INTERNAL errors never carry details, which may hold paths or SQL errors.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if rErr, ok := errors.As(err); ok {
		errorObj := map[string]any{
			"code":    rErr.Code,
			"message": rErr.Message,
			"status":  rErr.Status,
		}
		if rErr.Code != errors.ErrInternal && len(rErr.Details) > 0 {
			errorObj["details"] = rErr.Details
		}
		if rErr.Code == errors.ErrInternal || rErr.Code == errors.ErrStorageUnavailable {
			log.Error().Err(err).Msg("tool call failed")
		}
		payload = map[string]any{"error": errorObj}
	} else {
		log.Error().Err(err).Msg("tool call failed")
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
