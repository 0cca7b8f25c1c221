package main

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/memory-cloud/devfeed/internal/config"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/feed"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/loader"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/models"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/normalize"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/server"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/storage"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/store"
)

// connect serves srv over an in-memory transport and returns a client session.
func connect(t *testing.T, srv *mcp.Server) *mcp.ClientSession {
	t.Helper()

	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	if _, err := srv.Connect(ctx, serverTransport, nil); err != nil {
		t.Fatalf("server connect: %v", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func openArchive(t *testing.T) *storage.Archive {
	t.Helper()
	archive, err := storage.OpenArchive(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { archive.Close() })
	return archive
}

func newNormalizer(t *testing.T, cfg *config.Config) *normalize.Normalizer {
	t.Helper()
	n, err := normalize.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

// setupIntegration creates a real MCP server that loads updates from its own
// archive and returns a connected client session.
func setupIntegration(t *testing.T) *mcp.ClientSession {
	t.Helper()

	cfg := config.DefaultConfig()
	archive := openArchive(t)
	builder := &feed.Builder{Archive: archive, DefaultProject: cfg.Defaults.ProjectName}
	st := store.New(builder, newNormalizer(t, cfg))

	return connect(t, server.New(st, archive, cfg.Defaults.ProjectName))
}

// callTool is a helper that calls a tool and returns the text content.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if len(result.Content) == 0 {
		t.Fatalf("CallTool(%s): empty content", name)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent, got %T", name, result.Content[0])
	}
	if result.IsError {
		t.Fatalf("CallTool(%s) returned error: %s", name, tc.Text)
	}
	return tc.Text
}

// callToolExpectError calls a tool and expects an error response (IsError=true).
func callToolExpectError(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): protocol error: %v", name, err)
	}
	if !result.IsError {
		tc := result.Content[0].(*mcp.TextContent)
		t.Fatalf("CallTool(%s): expected error but got success: %s", name, tc.Text)
	}
	tc := result.Content[0].(*mcp.TextContent)
	return tc.Text
}

func decode(t *testing.T, text string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
}

func ids(updates []models.NormalizedProject) []string {
	out := []string{}
	for _, u := range updates {
		out = append(out, u.ID)
	}
	return out
}

var loginChat = []map[string]any{
	{"role": "user", "content": "Please add a login endpoint to app.py"},
	{"role": "assistant", "content": "I added the login handler to the service.\n```python\ndef login(request):\n    return authenticate(request)\n```"},
}

var roundingChat = []map[string]any{
	{"role": "user", "content": "Fix the rounding error in invoices"},
	{"role": "assistant", "content": "Fixed the rounding bug in the invoice total calculation."},
}

func TestIntegration_ListTools(t *testing.T) {
	session := setupIntegration(t)

	result, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}

	expectedTools := []string{
		"load_updates", "filter_updates", "get_filtered_updates", "list_projects",
		"select_update", "get_selected_update", "clear_selection",
		"save_chat_history", "list_chat_logs", "search_chat_logs", "delete_chat_logs",
	}

	toolNames := make(map[string]bool)
	for _, tool := range result.Tools {
		toolNames[tool.Name] = true
	}

	for _, name := range expectedTools {
		if !toolNames[name] {
			t.Errorf("Missing tool: %s", name)
		}
	}

	if len(result.Tools) != len(expectedTools) {
		t.Errorf("Expected %d tools, got %d", len(expectedTools), len(result.Tools))
	}
}

func TestIntegration_FullWorkflow(t *testing.T) {
	session := setupIntegration(t)

	// Nothing loaded yet
	text := callTool(t, session, "get_selected_update", nil)
	if !strings.Contains(text, "No update is currently selected") {
		t.Errorf("Expected no selection, got: %s", text)
	}

	// Step 1: archive two conversations
	text = callTool(t, session, "save_chat_history", map[string]any{
		"messages":     loginChat,
		"project_name": "portal",
	})
	var login models.ChatLog
	decode(t, text, &login)
	if !strings.HasPrefix(login.ConversationID, "conversation_") {
		t.Errorf("Expected generated conversation id, got %q", login.ConversationID)
	}
	if login.Tag != "function added" {
		t.Errorf("Tag = %q, want %q", login.Tag, "function added")
	}

	callTool(t, session, "save_chat_history", map[string]any{
		"messages":        roundingChat,
		"conversation_id": "fix-1",
		"project_name":    "ledger",
	})

	text = callTool(t, session, "list_chat_logs", map[string]any{"project": "ledger"})
	var logs []models.ChatLog
	decode(t, text, &logs)
	if len(logs) != 1 || logs[0].ConversationID != "fix-1" {
		t.Errorf("list_chat_logs(ledger) = %+v", logs)
	}

	// Step 2: load the archive into the store
	text = callTool(t, session, "load_updates", nil)
	var loaded struct {
		Updates  int                  `json:"updates"`
		Projects []models.ProjectInfo `json:"projects"`
	}
	decode(t, text, &loaded)
	if loaded.Updates != 2 || len(loaded.Projects) != 2 {
		t.Fatalf("load_updates = %s", text)
	}

	text = callTool(t, session, "list_projects", nil)
	var roster []models.ProjectInfo
	decode(t, text, &roster)
	if len(roster) != 2 || roster[0].Status != "Active" {
		t.Errorf("list_projects = %+v", roster)
	}

	// Step 3: omitted filters default to all, then filter by type and by query
	text = callTool(t, session, "filter_updates", map[string]any{})
	var filtered []models.NormalizedProject
	decode(t, text, &filtered)
	if len(filtered) != 2 {
		t.Errorf("filter with omitted project/type = %v, want both updates", ids(filtered))
	}

	text = callTool(t, session, "filter_updates", map[string]any{"type": models.TypeSecurity})
	filtered = nil
	decode(t, text, &filtered)
	if got := ids(filtered); len(got) != 1 || got[0] != "fix-1" {
		t.Errorf("filter by Security Update = %v", got)
	}
	if len(filtered) == 1 && len(filtered[0].BugFixes) == 0 {
		t.Errorf("Expected bug fix statements, got none")
	}

	text = callTool(t, session, "filter_updates", map[string]any{"query": "APP.PY", "project": "all", "type": "all"})
	filtered = nil
	decode(t, text, &filtered)
	if len(filtered) != 1 || filtered[0].ID != login.ConversationID {
		t.Fatalf("filter by query = %v", ids(filtered))
	}
	if filtered[0].Type != models.TypeFeature {
		t.Errorf("Type = %q, want %q", filtered[0].Type, models.TypeFeature)
	}
	if filtered[0].AfterCode == nil || !strings.Contains(*filtered[0].AfterCode, "def login") {
		t.Errorf("Expected after_code from the fenced block, got %v", filtered[0].AfterCode)
	}

	text = callTool(t, session, "get_filtered_updates", nil)
	var view []models.NormalizedProject
	decode(t, text, &view)
	if len(view) != 1 || view[0].ID != login.ConversationID {
		t.Errorf("get_filtered_updates = %v", ids(view))
	}

	// Step 4: select, then reload clears the selection
	callTool(t, session, "select_update", map[string]any{"id": "fix-1"})
	text = callTool(t, session, "get_selected_update", nil)
	var selected models.NormalizedProject
	decode(t, text, &selected)
	if selected.ID != "fix-1" || selected.ProjectName != "ledger" {
		t.Errorf("get_selected_update = %+v", selected)
	}

	callTool(t, session, "load_updates", nil)
	text = callTool(t, session, "get_selected_update", nil)
	if !strings.Contains(text, "No update is currently selected") {
		t.Errorf("Expected reload to clear the selection, got: %s", text)
	}

	// Step 5: search and delete
	text = callTool(t, session, "search_chat_logs", map[string]any{"query": "ledger"})
	logs = nil
	decode(t, text, &logs)
	if len(logs) != 1 || logs[0].ConversationID != "fix-1" {
		t.Errorf("search_chat_logs = %+v", logs)
	}

	text = callTool(t, session, "delete_chat_logs", map[string]any{"conversation_ids": []string{"fix-1"}})
	if !strings.Contains(text, "Deleted 1 chat logs") {
		t.Errorf("delete_chat_logs = %s", text)
	}
	text = callTool(t, session, "load_updates", nil)
	decode(t, text, &loaded)
	if loaded.Updates != 1 {
		t.Errorf("Expected 1 update after delete, got %d", loaded.Updates)
	}
}

func TestIntegration_ErrorCases(t *testing.T) {
	session := setupIntegration(t)

	text := callToolExpectError(t, session, "save_chat_history", map[string]any{"messages": []any{}})
	if !strings.Contains(text, "At least one message") {
		t.Errorf("save_chat_history without messages: %s", text)
	}

	callToolExpectError(t, session, "select_update", map[string]any{"id": ""})

	text = callToolExpectError(t, session, "select_update", map[string]any{"id": "missing"})
	if !strings.Contains(text, "not found") {
		t.Errorf("select_update(missing): %s", text)
	}

	text = callToolExpectError(t, session, "filter_updates", map[string]any{"type": "Bogus"})
	if !strings.Contains(text, "Bogus") {
		t.Errorf("filter_updates(Bogus): %s", text)
	}

	callToolExpectError(t, session, "search_chat_logs", map[string]any{"query": ""})
}

func TestIntegration_LoadFailureKeepsSnapshot(t *testing.T) {
	cfg := config.DefaultConfig()
	archive := openArchive(t)

	ts := httptest.NewServer(feed.NewServer(&feed.Builder{Archive: archive}, 0).Handler())
	endpoint := ts.URL + "/api/projects"

	st := store.New(loader.NewHTTP(endpoint, 5*time.Second), newNormalizer(t, cfg))
	session := connect(t, server.New(st, archive, cfg.Defaults.ProjectName))

	callTool(t, session, "save_chat_history", map[string]any{
		"messages":        roundingChat,
		"conversation_id": "fix-1",
	})

	text := callTool(t, session, "load_updates", nil)
	if !strings.Contains(text, `"updates": 1`) {
		t.Fatalf("load_updates over HTTP = %s", text)
	}

	text = callTool(t, session, "list_projects", nil)
	if !strings.Contains(text, cfg.Defaults.ProjectName) {
		t.Errorf("Expected default project in roster, got: %s", text)
	}

	// Feed goes away; the loaded updates survive the failed reload
	ts.Close()
	text = callToolExpectError(t, session, "load_updates", nil)
	if !strings.Contains(text, "Failed to load updates") {
		t.Errorf("load_updates with feed down: %s", text)
	}

	text = callTool(t, session, "get_filtered_updates", nil)
	var view []models.NormalizedProject
	decode(t, text, &view)
	if len(view) != 1 || view[0].ID != "fix-1" {
		t.Errorf("Expected snapshot to survive, got %v", ids(view))
	}
}
