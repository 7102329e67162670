package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterReadTools adds all read-only vault tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, inv Invoker) {
	s.AddTool(listTasksTool(), listTasksHandler(inv))
	s.AddTool(getTaskTool(), getTaskHandler(inv))
	s.AddTool(dashboardTool(), dashboardHandler(inv))
	s.AddTool(listProjectsTool(), listProjectsHandler(inv))
	s.AddTool(listPeopleTool(), listPeopleHandler(inv))
	s.AddTool(listPacksTool(), listPacksHandler(inv))
	s.AddTool(getContextTool(), getContextHandler(inv))
	s.AddTool(fileGetTool(), fileGetHandler(inv))
}

// --- list_tasks ---

func listTasksTool() mcp.Tool {
	return mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks. The default view excludes completed and someday tasks."),
		mcp.WithString("status",
			mcp.Description("Filter by status: inbox, next, waiting, scheduled, someday, completed, or the views today and overdue"),
		),
		mcp.WithString("project",
			mcp.Description("Keep only tasks whose project contains this text"),
		),
		mcp.WithBoolean("include_completed",
			mcp.Description("Include completed tasks in the default view"),
		),
	)
}

func listTasksHandler(inv Invoker) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := map[string]any{}
		if status := req.GetString("status", ""); status != "" {
			params["status"] = status
		}
		if project := req.GetString("project", ""); project != "" {
			params["project"] = project
		}
		if req.GetBool("include_completed", false) {
			params["include_completed"] = true
		}
		return invoke(inv, "list_tasks", params)
	}
}

// --- get_task ---

func getTaskTool() mcp.Tool {
	return mcp.NewTool("get_task",
		mcp.WithDescription("Get one task by its 4-character ID."),
		mcp.WithString("id",
			mcp.Description("Task ID (e.g. 7KQM)"),
			mcp.Required(),
		),
	)
}

func getTaskHandler(inv Invoker) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetString("id", "")
		if id == "" {
			return toolError(fmt.Errorf("id is required"))
		}
		return invoke(inv, "get_task", map[string]any{"id": id})
	}
}

// --- get_dashboard ---

func dashboardTool() mcp.Tool {
	return mcp.NewTool("get_dashboard",
		mcp.WithDescription("Render the dashboard: overdue, due today, due this week, blocked, and waiting tasks."),
	)
}

func dashboardHandler(inv Invoker) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := inv.Invoke("get_dashboard", nil)
		if err != nil {
			return toolError(err)
		}
		var payload struct {
			Markdown string `json:"markdown"`
		}
		if err := json.Unmarshal(result, &payload); err == nil && payload.Markdown != "" {
			return mcp.NewToolResultText(payload.Markdown), nil
		}
		return mcp.NewToolResultText(string(result)), nil
	}
}

// --- list_projects ---

func listProjectsTool() mcp.Tool {
	return mcp.NewTool("list_projects",
		mcp.WithDescription("List projects."),
		mcp.WithString("status",
			mcp.Description("Filter by status: active, on-hold, completed, archived"),
		),
	)
}

func listProjectsHandler(inv Invoker) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := map[string]any{}
		if status := req.GetString("status", ""); status != "" {
			params["status"] = status
		}
		if project := req.GetString("project", ""); project != "" {
			params["project"] = project
		}
		return invoke(inv, "list_projects", params)
	}
}

// --- list_people ---

func listPeopleTool() mcp.Tool {
	return mcp.NewTool("list_people",
		mcp.WithDescription("List people."),
	)
}

func listPeopleHandler(inv Invoker) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return invoke(inv, "list_people", nil)
	}
}

// --- list_context_packs ---

func listPacksTool() mcp.Tool {
	return mcp.NewTool("list_context_packs",
		mcp.WithDescription("List context packs, optionally filtered by category."),
		mcp.WithString("category",
			mcp.Description("Filter by category: domain, system, operating"),
		),
	)
}

func listPacksHandler(inv Invoker) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := map[string]any{}
		if category := req.GetString("category", ""); category != "" {
			params["category"] = category
		}
		return invoke(inv, "list_context_packs", params)
	}
}

// --- get_context ---

func getContextTool() mcp.Tool {
	return mcp.NewTool("get_context",
		mcp.WithDescription("Read the full content of a context pack."),
		mcp.WithString("pack",
			mcp.Description("Pack ID (filename stem, e.g. payment-flows)"),
			mcp.Required(),
		),
	)
}

func getContextHandler(inv Invoker) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pack := req.GetString("pack", "")
		if pack == "" {
			return toolError(fmt.Errorf("pack is required"))
		}
		result, err := inv.Invoke("get_context", map[string]any{"pack": pack})
		if err != nil {
			return toolError(err)
		}
		var payload struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(result, &payload); err == nil && payload.Content != "" {
			return mcp.NewToolResultText(payload.Content), nil
		}
		return mcp.NewToolResultText(string(result)), nil
	}
}

// --- file_get ---

func fileGetTool() mcp.Tool {
	return mcp.NewTool("file_get",
		mcp.WithDescription("Read a vault file by task ID, title, or relative path."),
		mcp.WithString("query",
			mcp.Description("Task ID, title substring, or vault-relative path"),
			mcp.Required(),
		),
	)
}

func fileGetHandler(inv Invoker) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return toolError(fmt.Errorf("query is required"))
		}
		result, err := inv.Invoke("file_get", map[string]any{"query": query})
		if err != nil {
			return toolError(err)
		}
		var payload struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(result, &payload); err == nil {
			return mcp.NewToolResultText(payload.Content), nil
		}
		return mcp.NewToolResultText(string(result)), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

// invoke runs the method and returns its result as pretty JSON text.
func invoke(inv Invoker, method string, params any) (*mcp.CallToolResult, error) {
	result, err := inv.Invoke(method, params)
	if err != nil {
		return toolError(err)
	}
	var pretty any
	if err := json.Unmarshal(result, &pretty); err != nil {
		return mcp.NewToolResultText(string(result)), nil
	}
	text, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		return mcp.NewToolResultText(string(result)), nil
	}
	return mcp.NewToolResultText(string(text)), nil
}
