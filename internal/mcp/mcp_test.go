package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/rolo/internal/config"
	"github.com/hpungsan/rolo/internal/db"
	"github.com/hpungsan/rolo/internal/errors"
	"github.com/hpungsan/rolo/internal/store"
)

// testSetup opens a seeded store over a temporary database.
func testSetup(t *testing.T) (*store.Store, *config.Config) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true // Allow temp dirs in tests

	st, err := store.Open(context.Background(), db.KV{DB: database}, store.OptionsFromConfig(cfg))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return st, cfg
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

type handlerFunc func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func call(t *testing.T, fn handlerFunc, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := fn(context.Background(), makeRequest(args))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return result
}

func firstID(t *testing.T, h *Handlers) string {
	t.Helper()
	out := parseOutput(t, call(t, h.HandleSearch, map[string]any{}))
	items := out["items"].([]any)
	return items[0].(map[string]any)["id"].(string)
}

func TestHandleCreate(t *testing.T) {
	st, cfg := testSetup(t)
	h := NewHandlers(st, cfg)

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name: "create with methods",
			args: map[string]any{
				"name": "王五",
				"methods": []any{
					map[string]any{"type": "phone", "value": "13700137000"},
					map[string]any{"type": "email", "value": ""},
				},
				"note": "邻居",
			},
		},
		{
			name: "create empty contact",
			args: map[string]any{},
		},
		{
			name:      "create with bad avatar",
			args:      map[string]any{"name": "x", "avatar": "not a data uri"},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "create with malformed methods",
			args:      map[string]any{"methods": "phone=1"},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := call(t, h.HandleCreate, tt.args)
			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				assertErrorCode(t, result, tt.errorCode)
				return
			}
			out := parseOutput(t, result)
			if out["id"] == "" {
				t.Error("id not returned")
			}
		})
	}

	out := parseOutput(t, call(t, h.HandleSearch, map[string]any{"term": "王五"}))
	items := out["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	methods := items[0].(map[string]any)["methods"].([]any)
	if len(methods) != 1 {
		t.Errorf("methods = %v, want empty value dropped", methods)
	}
}

func TestHandleGet(t *testing.T) {
	st, cfg := testSetup(t)
	h := NewHandlers(st, cfg)
	id := firstID(t, h)

	out := parseOutput(t, call(t, h.HandleGet, map[string]any{"id": id}))
	if out["name"] != "张三" || out["bookmarked"] != true {
		t.Errorf("output = %v", out)
	}

	assertErrorCode(t, call(t, h.HandleGet, map[string]any{"id": "01NOPE"}), "NOT_FOUND")
	assertErrorCode(t, call(t, h.HandleGet, map[string]any{}), "INVALID_REQUEST")
}

func TestHandleUpdate(t *testing.T) {
	st, cfg := testSetup(t)
	h := NewHandlers(st, cfg)
	id := firstID(t, h)

	out := parseOutput(t, call(t, h.HandleUpdate, map[string]any{
		"id":         id,
		"note":       "老同学",
		"bookmarked": false,
	}))
	if out["note"] != "老同学" || out["bookmarked"] != false || out["name"] != "张三" {
		t.Errorf("output = %v", out)
	}
	if out["id"] != id {
		t.Error("id changed")
	}

	assertErrorCode(t, call(t, h.HandleUpdate, map[string]any{"id": id}), "INVALID_REQUEST")
	assertErrorCode(t, call(t, h.HandleUpdate, map[string]any{"id": "01NOPE", "name": "x"}), "NOT_FOUND")
}

func TestHandleDelete(t *testing.T) {
	st, cfg := testSetup(t)
	h := NewHandlers(st, cfg)
	id := firstID(t, h)

	out := parseOutput(t, call(t, h.HandleDelete, map[string]any{"id": id}))
	if out["deleted"] != true {
		t.Errorf("output = %v", out)
	}

	out = parseOutput(t, call(t, h.HandleDelete, map[string]any{"id": id}))
	if out["deleted"] != false {
		t.Error("second delete reported deleted=true")
	}
}

func TestHandleBookmark(t *testing.T) {
	st, cfg := testSetup(t)
	h := NewHandlers(st, cfg)
	id := firstID(t, h)

	out := parseOutput(t, call(t, h.HandleBookmark, map[string]any{"id": id}))
	if out["found"] != true || out["bookmarked"] != false {
		t.Errorf("output = %v", out)
	}

	out = parseOutput(t, call(t, h.HandleBookmark, map[string]any{"id": "01NOPE"}))
	if out["found"] != false {
		t.Errorf("output = %v", out)
	}
}

func TestHandleSearch(t *testing.T) {
	st, cfg := testSetup(t)
	h := NewHandlers(st, cfg)

	tests := []struct {
		name      string
		args      map[string]any
		wantCount int
		errorCode string
	}{
		{"all", map[string]any{}, 2, ""},
		{"bookmarked", map[string]any{"scope": "bookmarked"}, 1, ""},
		{"by phone", map[string]any{"term": "139"}, 1, ""},
		{"no match", map[string]any{"term": "nobody"}, 0, ""},
		{"bad scope", map[string]any{"scope": "recent"}, 0, "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := call(t, h.HandleSearch, tt.args)
			if tt.errorCode != "" {
				assertErrorCode(t, result, tt.errorCode)
				return
			}
			out := parseOutput(t, result)
			if got := len(out["items"].([]any)); got != tt.wantCount {
				t.Errorf("items = %d, want %d", got, tt.wantCount)
			}
		})
	}
}

func TestHandleExportImport(t *testing.T) {
	st, cfg := testSetup(t)
	h := NewHandlers(st, cfg)
	path := filepath.Join(t.TempDir(), "contacts.xlsx")

	out := parseOutput(t, call(t, h.HandleExport, map[string]any{"path": path}))
	if out["count"] != float64(2) {
		t.Errorf("count = %v, want 2", out["count"])
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("export file missing: %v", err)
	}

	out = parseOutput(t, call(t, h.HandleImport, map[string]any{"path": path}))
	if out["imported"] != float64(2) || out["total"] != float64(4) {
		t.Errorf("import output = %v", out)
	}

	garbage := filepath.Join(t.TempDir(), "garbage.xlsx")
	if err := os.WriteFile(garbage, []byte("not a workbook"), 0600); err != nil {
		t.Fatal(err)
	}
	result := call(t, h.HandleImport, map[string]any{"path": garbage})
	assertErrorCode(t, result, "DECODE_FAILURE")
	if st.Len() != 4 {
		t.Errorf("Len() = %d after failed import, want 4", st.Len())
	}

	assertErrorCode(t, call(t, h.HandleImport, map[string]any{}), "INVALID_REQUEST")
	assertErrorCode(t, call(t, h.HandleExport, map[string]any{"path": path, "format": "csv"}), "INVALID_REQUEST")
}

func TestServerRegistration(t *testing.T) {
	st, cfg := testSetup(t)

	s := NewServer(st, cfg, "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{
		"contact_create",
		"contact_get",
		"contact_update",
		"contact_delete",
		"contact_bookmark",
		"contact_search",
		"contact_export",
		"contact_import",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}
	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	st, cfg := testSetup(t)

	cfg.DisabledTools = []string{"contact_delete", "contact_import", "contact_import"}
	s := NewServer(st, cfg, "test")
	tools := s.ListTools()

	if len(tools) != 6 {
		t.Errorf("registered tool count = %d, want 6", len(tools))
	}
	for _, name := range []string{"contact_delete", "contact_import"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}
	if _, ok := tools["contact_search"]; !ok {
		t.Error("contact_search should be registered")
	}
}

func TestServerRegistration_DisabledType(t *testing.T) {
	st, cfg := testSetup(t)

	cfg.DisabledTypes = []string{"contact"}
	s := NewServer(st, cfg, "test")
	if tools := s.ListTools(); len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0", len(tools))
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{"all valid", []string{"contact_delete", "contact_import"}, 0},
		{"one unknown", []string{"contact_delete", "contact_merge"}, 1},
		{"all unknown", []string{"foo", "bar", "baz"}, 3},
		{"empty list", []string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unknown := ValidateDisabledTools(tt.input)
			if len(unknown) != tt.wantLen {
				t.Errorf("ValidateDisabledTools() returned %d unknown, want %d", len(unknown), tt.wantLen)
			}
		})
	}
}

func TestValidateDisabledTypes(t *testing.T) {
	if unknown := ValidateDisabledTypes([]string{"contact", "group"}); len(unknown) != 1 || unknown[0] != "group" {
		t.Errorf("ValidateDisabledTypes() = %v", unknown)
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	if len(names) != 8 {
		t.Errorf("AllToolNames() returned %d names, want 8", len(names))
	}
	if unknown := ValidateDisabledTools(names); len(unknown) != 0 {
		t.Errorf("AllToolNames() returned invalid names: %v", unknown)
	}
	for _, name := range names {
		if GetTypeForTool(name) != "contact" {
			t.Errorf("GetTypeForTool(%q) = %q", name, GetTypeForTool(name))
		}
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
}

func TestErrorResult_WrappedError(t *testing.T) {
	r := errorResult(fmt.Errorf("import: %w", errors.NewDecodeFailure(fmt.Errorf("zip: not a valid zip file"))))
	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrDecodeFailure) {
		t.Errorf("code=%v, want %v", errObj["code"], errors.ErrDecodeFailure)
	}
	if errObj["message"] != errors.DecodeFailureMessage {
		t.Errorf("message=%v", errObj["message"])
	}
}

func TestErrorResult_PlainError(t *testing.T) {
	errObj := errorObject(t, errorResult(fmt.Errorf("boom")))
	if errObj["code"] != string(errors.ErrInternal) || errObj["message"] != "an internal error occurred" {
		t.Errorf("error = %v", errObj)
	}
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	errObj := errorObject(t, errorResult(errors.NewNotFound("abc")))
	if errObj["code"] != string(errors.ErrNotFound) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrNotFound)
	}
	if _, ok := errObj["details"]; !ok {
		t.Fatal("expected non-INTERNAL errors to include details when present")
	}
}

// Helper functions

func errorObject(t *testing.T, r *mcp.CallToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	return payload["error"].(map[string]any)
}

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if !result.IsError {
		t.Errorf("expected error result with code %q, got success", expectedCode)
		return
	}
	if len(result.Content) == 0 {
		t.Errorf("no content in error result")
		return
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Errorf("content is not TextContent")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Errorf("failed to unmarshal error payload: %v", err)
		return
	}
	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}
	if code, _ := errorObj["code"].(string); code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}
	return text.Text
}

func TestGetTypeForTool(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"contact_create", "contact"},
		{"contact_bulk_update", "contact"},
		{"contact", ""},
		{"_create", ""},
	}
	for _, tt := range tests {
		if got := GetTypeForTool(tt.name); got != tt.want {
			t.Errorf("GetTypeForTool(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
