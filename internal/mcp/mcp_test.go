package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/avelius/halo/internal/config"
	"github.com/avelius/halo/internal/db"
)

// testSetup creates a temporary database and config for testing.
func testSetup(t *testing.T) (*sql.DB, *config.Config) {
	t.Helper()

	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.BaseDir = tmpDir
	return database, cfg
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestHandleAdd(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name: "add text paste",
			args: map[string]any{
				"type":    "text_paste",
				"content": "https://go.dev",
				"x":       10,
				"y":       20,
			},
			wantError: false,
		},
		{
			name:      "add without type",
			args:      map[string]any{"content": "x"},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "add unknown type",
			args:      map[string]any{"type": "hologram"},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name: "add accumulator from builtin pattern",
			args: map[string]any{
				"type":       "accumulator",
				"pattern_id": "emails",
			},
			wantError: false,
		},
		{
			name: "add accumulator with unknown pattern",
			args: map[string]any{
				"type":       "accumulator",
				"pattern_id": "nope",
			},
			wantError: true,
			errorCode: "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleAdd(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
			} else if result.IsError {
				t.Errorf("expected success, got error: %v", extractErrorMessage(result))
			}
		})
	}
}

func TestHandleAdd_CapacityReached(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()

	first, err := h.HandleAdd(ctx, makeRequest(map[string]any{"type": "toolbelt"}))
	if err != nil || first.IsError {
		t.Fatalf("setup add failed: %v %v", err, extractErrorMessage(first))
	}

	second, err := h.HandleAdd(ctx, makeRequest(map[string]any{"type": "toolbelt"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !second.IsError {
		t.Fatal("expected error result past the cap")
	}
	assertErrorCode(t, second, "CAPACITY_REACHED")
}

func TestHandleListAndRemove(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()

	addResult, err := h.HandleAdd(ctx, makeRequest(map[string]any{
		"type":    "pinned",
		"content": "note",
	}))
	if err != nil || addResult.IsError {
		t.Fatalf("setup add failed: %v %v", err, extractErrorMessage(addResult))
	}

	var addOut struct {
		Bubble struct {
			ID string `json:"id"`
		} `json:"bubble"`
	}
	if err := json.Unmarshal([]byte(resultText(t, addResult)), &addOut); err != nil {
		t.Fatalf("failed to unmarshal add result: %v", err)
	}
	if addOut.Bubble.ID == "" {
		t.Fatal("no bubble id in add result")
	}

	listResult, err := h.HandleList(ctx, makeRequest(map[string]any{"all": true}))
	if err != nil || listResult.IsError {
		t.Fatalf("list failed: %v %v", err, extractErrorMessage(listResult))
	}
	var listOut struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal([]byte(resultText(t, listResult)), &listOut); err != nil {
		t.Fatalf("failed to unmarshal list result: %v", err)
	}
	if listOut.Total != 1 {
		t.Errorf("total = %d, want 1", listOut.Total)
	}

	removeResult, err := h.HandleRemove(ctx, makeRequest(map[string]any{"id": addOut.Bubble.ID}))
	if err != nil || removeResult.IsError {
		t.Fatalf("remove failed: %v %v", err, extractErrorMessage(removeResult))
	}

	missing, err := h.HandleRemove(ctx, makeRequest(map[string]any{"id": addOut.Bubble.ID}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !missing.IsError {
		t.Fatal("expected NOT_FOUND for removed bubble")
	}
	assertErrorCode(t, missing, "NOT_FOUND")
}

func TestHandleIngestAndExport(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()

	addResult, err := h.HandleAdd(ctx, makeRequest(map[string]any{
		"type":       "accumulator",
		"pattern_id": "emails",
	}))
	if err != nil || addResult.IsError {
		t.Fatalf("setup add failed: %v %v", err, extractErrorMessage(addResult))
	}
	var addOut struct {
		Bubble struct {
			ID string `json:"id"`
		} `json:"bubble"`
	}
	if err := json.Unmarshal([]byte(resultText(t, addResult)), &addOut); err != nil {
		t.Fatalf("failed to unmarshal add result: %v", err)
	}

	ingestResult, err := h.HandleIngest(ctx, makeRequest(map[string]any{
		"content": "ada@calc.io",
		"source":  "clipboard",
	}))
	if err != nil || ingestResult.IsError {
		t.Fatalf("ingest failed: %v %v", err, extractErrorMessage(ingestResult))
	}
	var ingestOut struct {
		Category    string `json:"category"`
		Accumulated int    `json:"accumulated"`
	}
	if err := json.Unmarshal([]byte(resultText(t, ingestResult)), &ingestOut); err != nil {
		t.Fatalf("failed to unmarshal ingest result: %v", err)
	}
	if ingestOut.Category != "email" {
		t.Errorf("category = %s, want email", ingestOut.Category)
	}
	if ingestOut.Accumulated != 1 {
		t.Errorf("accumulated = %d, want 1", ingestOut.Accumulated)
	}

	exportResult, err := h.HandleExport(ctx, makeRequest(map[string]any{"id": addOut.Bubble.ID}))
	if err != nil || exportResult.IsError {
		t.Fatalf("export failed: %v %v", err, extractErrorMessage(exportResult))
	}
	var exportOut struct {
		Items    int    `json:"items"`
		Exported string `json:"exported"`
	}
	if err := json.Unmarshal([]byte(resultText(t, exportResult)), &exportOut); err != nil {
		t.Fatalf("failed to unmarshal export result: %v", err)
	}
	if exportOut.Items != 1 || exportOut.Exported != "ada@calc.io" {
		t.Errorf("export = %+v", exportOut)
	}
}

func TestHandleKeyboard(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()

	result, err := h.HandleKeyboard(ctx, makeRequest(map[string]any{"visible": true}))
	if err != nil || result.IsError {
		t.Fatalf("keyboard failed: %v %v", err, extractErrorMessage(result))
	}
	var out struct {
		KeyboardVisible bool `json:"keyboard_visible"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatalf("failed to unmarshal result: %v", err)
	}
	if !out.KeyboardVisible {
		t.Error("keyboard_visible = false, want true")
	}
}

func TestHandleClassify(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()

	result, err := h.HandleClassify(ctx, makeRequest(map[string]any{"content": "+1 555 123 4567"}))
	if err != nil || result.IsError {
		t.Fatalf("classify failed: %v %v", err, extractErrorMessage(result))
	}
	var out struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatalf("failed to unmarshal result: %v", err)
	}
	if out.Category != "phone" {
		t.Errorf("category = %s, want phone", out.Category)
	}
}

func TestToolRegistry(t *testing.T) {
	names := AllToolNames()
	if len(names) != len(toolRegistry) {
		t.Errorf("AllToolNames() = %d names, want %d", len(names), len(toolRegistry))
	}

	unknown := ValidateDisabledTools([]string{"bubble_add", "made_up_tool"})
	if len(unknown) != 1 || unknown[0] != "made_up_tool" {
		t.Errorf("unknown = %v, want [made_up_tool]", unknown)
	}
}

func TestNewServer_SkipsDisabledTools(t *testing.T) {
	database, cfg := testSetup(t)
	cfg.DisabledTools = []string{"bubble_clear"}

	s := NewServer(database, cfg, "test")
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
}

// Test helpers

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is not TextContent: %T", result.Content[0])
	}
	return text.Text
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	var payload map[string]any
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Errorf("failed to unmarshal error payload: %v", err)
		return
	}
	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}
	code, ok := errorObj["code"].(string)
	if !ok {
		t.Errorf("no code in error object")
		return
	}
	if code != expectedCode {
		t.Errorf("error code = %s, want %s", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return "<no content>"
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}
	return text.Text
}
