package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/memory-cloud/devfeed/internal/filter"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/loader"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/models"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/store"
)

// UpdateTools holds references needed by the project update tool handlers.
type UpdateTools struct {
	Store *store.Store
}

// --- Input types ---

type FilterUpdatesInput struct {
	Query   string `json:"query,omitempty" jsonschema:"Case-insensitive text matched against title, summary, project name and tags"`
	Project string `json:"project,omitempty" jsonschema:"Exact project name, or all (default all)"`
	Type    string `json:"type,omitempty" jsonschema:"Exact update type (Feature Development, Security Update, Discussion, Other), or all (default all)"`
}

type SelectUpdateInput struct {
	ID string `json:"id" jsonschema:"Id of the update to select"`
}

// LoadResult summarizes a completed load.
type LoadResult struct {
	Updates  int                  `json:"updates"`
	Projects []models.ProjectInfo `json:"projects"`
}

// --- Handlers ---

func (t *UpdateTools) LoadUpdates(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	ds, err := t.Store.Load(ctx)
	switch {
	case errors.Is(err, loader.ErrDecode):
		return toolError("Project data is not valid JSON: %v", err), nil, nil
	case err != nil:
		return toolError("Failed to load updates: %v", err), nil, nil
	}

	return toolJSON(LoadResult{Updates: len(ds.ProjectSummaries), Projects: ds.Projects})
}

func (t *UpdateTools) FilterUpdates(_ context.Context, _ *mcp.CallToolRequest, input FilterUpdatesInput) (*mcp.CallToolResult, any, error) {
	project := orAll(input.Project)
	typ := orAll(input.Type)
	if typ != filter.All && !models.IsProjectType(typ) {
		return toolError("Unknown update type %q", typ), nil, nil
	}

	return toolJSON(t.Store.FilterProjects(input.Query, project, typ))
}

func (t *UpdateTools) GetFilteredUpdates(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	return toolJSON(t.Store.FilteredProjects())
}

func (t *UpdateTools) ListProjects(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	return toolJSON(t.Store.AllProjects())
}

func (t *UpdateTools) SelectUpdate(_ context.Context, _ *mcp.CallToolRequest, input SelectUpdateInput) (*mcp.CallToolResult, any, error) {
	if input.ID == "" {
		return toolError("Update id is required"), nil, nil
	}

	p, err := t.Store.SelectByID(input.ID)
	if err != nil {
		return toolError("Failed to select update: %v", err), nil, nil
	}

	return toolJSON(p)
}

func (t *UpdateTools) GetSelectedUpdate(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	p, ok := t.Store.Selected()
	if !ok {
		return toolText("No update is currently selected. Use select_update to choose one."), nil, nil
	}

	return toolJSON(p)
}

func (t *UpdateTools) ClearSelection(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	t.Store.ClearSelection()
	return toolText(fmt.Sprintf("Selection cleared. %d updates loaded.", len(t.Store.Updates()))), nil, nil
}

// orAll defaults an omitted categorical filter to the wildcard.
func orAll(v string) string {
	if v == "" {
		return filter.All
	}
	return v
}
