package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/avelius/halo/internal/config"
	"github.com/avelius/halo/internal/errors"
	"github.com/avelius/halo/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// Request types for each tool

// AddRequest represents the arguments for bubble_add.
type AddRequest struct {
	Type        string  `json:"type"`
	Content     string  `json:"content,omitempty"`
	Message     string  `json:"message,omitempty"`
	Severity    string  `json:"severity,omitempty"`
	Category    string  `json:"category,omitempty"`
	ActionLabel string  `json:"action_label,omitempty"`
	PatternID   string  `json:"pattern_id,omitempty"`
	SessionName string  `json:"session_name,omitempty"`
	X           float64 `json:"x,omitempty"`
	Y           float64 `json:"y,omitempty"`
}

// RemoveRequest represents the arguments for bubble_remove.
type RemoveRequest struct {
	ID string `json:"id"`
}

// ListRequest represents the arguments for bubble_list.
type ListRequest struct {
	Type string `json:"type,omitempty"`
	All  bool   `json:"all,omitempty"`
}

// MoveRequest represents the arguments for bubble_move.
type MoveRequest struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// MinimizeRequest represents the arguments for bubble_minimize.
type MinimizeRequest struct {
	ID string `json:"id"`
}

// ClearRequest represents the arguments for bubble_clear.
type ClearRequest struct {
	Type string `json:"type,omitempty"`
}

// InteractRequest represents the arguments for bubble_interact.
type InteractRequest struct {
	ID         string `json:"id"`
	Collecting *bool  `json:"collecting,omitempty"`
}

// KeyboardRequest represents the arguments for keyboard_set.
type KeyboardRequest struct {
	Visible bool `json:"visible"`
}

// IngestRequest represents the arguments for content_ingest.
type IngestRequest struct {
	Content      string `json:"content"`
	Source       string `json:"source,omitempty"`
	CreateBubble bool   `json:"create_bubble,omitempty"`
}

// ClassifyRequest represents the arguments for content_classify.
type ClassifyRequest struct {
	Content string `json:"content"`
}

// ExportRequest represents the arguments for accumulator_export.
type ExportRequest struct {
	ID    string `json:"id"`
	Reset bool   `json:"reset,omitempty"`
}

// Handler implementations

// HandleAdd handles the bubble_add tool call.
func (h *Handlers) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Add(ctx, h.db, h.cfg, ops.AddInput{
		Type:        input.Type,
		Content:     input.Content,
		Message:     input.Message,
		Severity:    input.Severity,
		Category:    input.Category,
		ActionLabel: input.ActionLabel,
		PatternID:   input.PatternID,
		SessionName: input.SessionName,
		X:           int(input.X),
		Y:           int(input.Y),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRemove handles the bubble_remove tool call.
func (h *Handlers) HandleRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RemoveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Remove(ctx, h.db, ops.RemoveInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the bubble_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{Type: input.Type, All: input.All})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMove handles the bubble_move tool call.
func (h *Handlers) HandleMove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MoveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Move(ctx, h.db, ops.MoveInput{
		ID: input.ID,
		X:  int(input.X),
		Y:  int(input.Y),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMinimize handles the bubble_minimize tool call.
func (h *Handlers) HandleMinimize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MinimizeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Minimize(ctx, h.db, ops.MinimizeInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleClear handles the bubble_clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ClearRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Clear(ctx, h.db, ops.ClearInput{Type: input.Type})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleInteract handles the bubble_interact tool call.
func (h *Handlers) HandleInteract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[InteractRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Interact(ctx, h.db, ops.InteractInput{
		ID:         input.ID,
		Collecting: input.Collecting,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleKeyboard handles the keyboard_set tool call.
func (h *Handlers) HandleKeyboard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[KeyboardRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Keyboard(ctx, h.db, ops.KeyboardInput{Visible: input.Visible})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleIngest handles the content_ingest tool call.
func (h *Handlers) HandleIngest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IngestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Ingest(ctx, h.db, h.cfg, ops.IngestInput{
		Content:      input.Content,
		Source:       input.Source,
		CreateBubble: input.CreateBubble,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleClassify handles the content_classify tool call.
func (h *Handlers) HandleClassify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ClassifyRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Classify(h.cfg, ops.ClassifyInput{Content: input.Content})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the accumulator_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, ops.ExportInput{ID: input.ID, Reset: input.Reset})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if haloErr, ok := err.(*errors.HaloError); ok {
		errorObj := map[string]any{
			"code":    haloErr.Code,
			"message": haloErr.Message,
			"status":  haloErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if haloErr.Code != errors.ErrInternal && haloErr.Details != nil {
			errorObj["details"] = haloErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
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
