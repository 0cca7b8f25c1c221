package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/memory-cloud/devfeed/internal/chatlog"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/models"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/storage"
)

// ChatLogTools holds references needed by the chat-log archive tool handlers.
type ChatLogTools struct {
	Archive *storage.Archive

	// DefaultProject names conversations saved without a project.
	DefaultProject string

	// Now stamps saved conversations. Nil uses time.Now.
	Now func() time.Time
}

// --- Input types ---

type SaveChatHistoryInput struct {
	Messages       []models.Message `json:"messages" jsonschema:"Conversation messages in order"`
	ConversationID string           `json:"conversation_id,omitempty" jsonschema:"Conversation id; generated when omitted"`
	ProjectName    string           `json:"project_name,omitempty" jsonschema:"Project the conversation belongs to"`
}

type ListChatLogsInput struct {
	Project string `json:"project,omitempty" jsonschema:"Only list conversations of this project (default all)"`
}

type SearchChatLogsInput struct {
	Query string `json:"query" jsonschema:"Search query (supports FTS5 syntax: AND, OR, NOT, prefix*)"`
}

type DeleteChatLogsInput struct {
	ConversationIDs []string `json:"conversation_ids" jsonschema:"Conversation ids to delete"`
}

// --- Handlers ---

func (t *ChatLogTools) SaveChatHistory(_ context.Context, _ *mcp.CallToolRequest, input SaveChatHistoryInput) (*mcp.CallToolResult, any, error) {
	if len(input.Messages) == 0 {
		return toolError("At least one message is required"), nil, nil
	}

	project := input.ProjectName
	if project == "" {
		project = t.DefaultProject
	}
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}

	rec := chatlog.Record(input.Messages, input.ConversationID, project, now())
	saved, err := t.Archive.Save(rec)
	if err != nil {
		return toolError("Failed to save chat history: %v", err), nil, nil
	}

	return toolJSON(saved)
}

func (t *ChatLogTools) ListChatLogs(_ context.Context, _ *mcp.CallToolRequest, input ListChatLogsInput) (*mcp.CallToolResult, any, error) {
	logs, err := t.Archive.List(input.Project)
	if err != nil {
		return toolError("Failed to list chat logs: %v", err), nil, nil
	}
	if logs == nil {
		logs = []models.ChatLog{}
	}

	return toolJSON(logs)
}

func (t *ChatLogTools) SearchChatLogs(_ context.Context, _ *mcp.CallToolRequest, input SearchChatLogsInput) (*mcp.CallToolResult, any, error) {
	if input.Query == "" {
		return toolError("Search query is required"), nil, nil
	}

	logs, err := t.Archive.Search(input.Query)
	if err != nil {
		return toolError("Search failed: %v", err), nil, nil
	}
	if logs == nil {
		logs = []models.ChatLog{}
	}

	return toolJSON(logs)
}

func (t *ChatLogTools) DeleteChatLogs(_ context.Context, _ *mcp.CallToolRequest, input DeleteChatLogsInput) (*mcp.CallToolResult, any, error) {
	count, err := t.Archive.Delete(input.ConversationIDs)
	if err != nil {
		return toolError("Failed to delete chat logs: %v", err), nil, nil
	}

	return toolText(fmt.Sprintf("Deleted %d chat logs.", count)), nil, nil
}
