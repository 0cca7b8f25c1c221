package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/memory-cloud/devfeed/internal/storage"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/store"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/tools"
)

// New creates a fully configured MCP server with all tools registered.
func New(st *store.Store, archive *storage.Archive, defaultProject string) *mcp.Server {
	ut := &tools.UpdateTools{Store: st}
	ct := &tools.ChatLogTools{Archive: archive, DefaultProject: defaultProject}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "devfeed",
		Version: "0.1.0",
	}, nil)

	// Project update tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "load_updates",
		Description: "Fetch and normalize the projects document, replacing the loaded updates and clearing the selection",
	}, ut.LoadUpdates)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "filter_updates",
		Description: "Filter the loaded updates by text query, project name and update type; the result becomes the current view",
	}, ut.FilterUpdates)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_filtered_updates",
		Description: "Get the current filtered view of updates",
	}, ut.GetFilteredUpdates)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_projects",
		Description: "List the project roster with update counts",
	}, ut.ListProjects)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "select_update",
		Description: "Select one loaded update by id",
	}, ut.SelectUpdate)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_selected_update",
		Description: "Get the currently selected update",
	}, ut.GetSelectedUpdate)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "clear_selection",
		Description: "Clear the current update selection",
	}, ut.ClearSelection)

	// Chat-log archive tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "save_chat_history",
		Description: "Analyze a conversation and archive it as a project update record",
	}, ct.SaveChatHistory)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_chat_logs",
		Description: "List archived conversations, newest first, optionally for one project",
	}, ct.ListChatLogs)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_chat_logs",
		Description: "Search archived conversations using FTS5 full-text search",
	}, ct.SearchChatLogs)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_chat_logs",
		Description: "Soft-delete archived conversations by id",
	}, ct.DeleteChatLogs)

	return srv
}
