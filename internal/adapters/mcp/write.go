package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterWriteTools adds all mutating vault tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, inv Invoker) {
	s.AddTool(addTaskTool(), addTaskHandler(inv))
	s.AddTool(completeTaskTool(), transitionHandler(inv, "complete_task"))
	s.AddTool(startTaskTool(), transitionHandler(inv, "start_task"))
	s.AddTool(deferTaskTool(), transitionHandler(inv, "defer_task"))
	s.AddTool(archiveTaskTool(), transitionHandler(inv, "archive_task"))
	s.AddTool(delegateTaskTool(), delegateTaskHandler(inv))
	s.AddTool(createProjectTool(), createProjectHandler(inv))
	s.AddTool(createPersonTool(), createPersonHandler(inv))
	s.AddTool(createPackTool(), createPackHandler(inv))
	s.AddTool(addToPackTool(), addToPackHandler(inv))
	s.AddTool(addFileToPackTool(), addFileToPackHandler(inv))
	s.AddTool(fileSetTool(), fileSetHandler(inv))
}

// --- add_task ---

func addTaskTool() mcp.Tool {
	return mcp.NewTool("add_task",
		mcp.WithDescription("Create a task. New tasks land in the inbox unless a status is given."),
		mcp.WithString("title",
			mcp.Description("Task title"),
			mcp.Required(),
		),
		mcp.WithString("due",
			mcp.Description("Due date: YYYY-MM-DD, today, tomorrow, or +Nd"),
		),
		mcp.WithString("project",
			mcp.Description("Project wikilink or name"),
		),
		mcp.WithString("status",
			mcp.Description("Initial status (default inbox)"),
		),
	)
}

func addTaskHandler(inv Invoker) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title := req.GetString("title", "")
		if title == "" {
			return toolError(fmt.Errorf("title is required"))
		}
		params := map[string]any{"title": title}
		for _, key := range []string{"due", "project", "status"} {
			if v := req.GetString(key, ""); v != "" {
				params[key] = v
			}
		}
		return invoke(inv, "add_task", params)
	}
}

// --- status transitions ---

func completeTaskTool() mcp.Tool {
	return mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a task completed and archive it under Completed/<year>/<month>."),
		queryArg(),
	)
}

func startTaskTool() mcp.Tool {
	return mcp.NewTool("start_task",
		mcp.WithDescription("Move a task to Next."),
		queryArg(),
	)
}

func deferTaskTool() mcp.Tool {
	return mcp.NewTool("defer_task",
		mcp.WithDescription("Defer a task to Someday."),
		queryArg(),
	)
}

func archiveTaskTool() mcp.Tool {
	return mcp.NewTool("archive_task",
		mcp.WithDescription("Move a task into the Archive tree, keeping its status."),
		queryArg(),
	)
}

func queryArg() mcp.ToolOption {
	return mcp.WithString("query",
		mcp.Description("Task ID or title substring"),
		mcp.Required(),
	)
}

func transitionHandler(inv Invoker, method string) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return toolError(fmt.Errorf("query is required"))
		}
		return invoke(inv, method, map[string]any{"query": query})
	}
}

// --- delegate_task ---

func delegateTaskTool() mcp.Tool {
	return mcp.NewTool("delegate_task",
		mcp.WithDescription("Move a task to Waiting, recording who it waits on."),
		queryArg(),
		mcp.WithString("to",
			mcp.Description("Person the task now waits on"),
		),
	)
}

func delegateTaskHandler(inv Invoker) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return toolError(fmt.Errorf("query is required"))
		}
		params := map[string]any{"query": query}
		if to := req.GetString("to", ""); to != "" {
			params["to"] = to
		}
		return invoke(inv, "delegate_task", params)
	}
}

// --- create_project ---

func createProjectTool() mcp.Tool {
	return mcp.NewTool("create_project",
		mcp.WithDescription("Create a project note."),
		mcp.WithString("name",
			mcp.Description("Project name"),
			mcp.Required(),
		),
		mcp.WithString("status",
			mcp.Description("Project status (default active)"),
		),
		mcp.WithString("team",
			mcp.Description("Owning team"),
		),
	)
}

func createProjectHandler(inv Invoker) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := req.GetString("name", "")
		if name == "" {
			return toolError(fmt.Errorf("name is required"))
		}
		params := map[string]any{"name": name}
		for _, key := range []string{"status", "team"} {
			if v := req.GetString(key, ""); v != "" {
				params[key] = v
			}
		}
		return invoke(inv, "create_project", params)
	}
}

// --- create_person ---

func createPersonTool() mcp.Tool {
	return mcp.NewTool("create_person",
		mcp.WithDescription("Create a person note."),
		mcp.WithString("name",
			mcp.Description("Person's name"),
			mcp.Required(),
		),
		mcp.WithString("team", mcp.Description("Team")),
		mcp.WithString("role", mcp.Description("Role")),
		mcp.WithString("email", mcp.Description("Email address")),
	)
}

func createPersonHandler(inv Invoker) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := req.GetString("name", "")
		if name == "" {
			return toolError(fmt.Errorf("name is required"))
		}
		params := map[string]any{"name": name}
		for _, key := range []string{"team", "role", "email"} {
			if v := req.GetString(key, ""); v != "" {
				params[key] = v
			}
		}
		return invoke(inv, "create_person", params)
	}
}

// --- create_context_pack ---

func createPackTool() mcp.Tool {
	return mcp.NewTool("create_context_pack",
		mcp.WithDescription("Create a context pack in a category folder."),
		mcp.WithString("title",
			mcp.Description("Pack title"),
			mcp.Required(),
		),
		mcp.WithString("category",
			mcp.Description("Category: domain, system, or operating"),
			mcp.Required(),
		),
		mcp.WithString("content", mcp.Description("Initial markdown content")),
		mcp.WithString("description", mcp.Description("One-line description")),
	)
}

func createPackHandler(inv Invoker) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title := req.GetString("title", "")
		category := req.GetString("category", "")
		if title == "" || category == "" {
			return toolError(fmt.Errorf("title and category are required"))
		}
		params := map[string]any{"title": title, "category": category}
		for _, key := range []string{"content", "description"} {
			if v := req.GetString(key, ""); v != "" {
				params[key] = v
			}
		}
		return invoke(inv, "create_context_pack", params)
	}
}

// --- add_to_context_pack ---

func addToPackTool() mcp.Tool {
	return mcp.NewTool("add_to_context_pack",
		mcp.WithDescription("Append content to a context pack, optionally under a named section."),
		mcp.WithString("pack",
			mcp.Description("Pack ID"),
			mcp.Required(),
		),
		mcp.WithString("content",
			mcp.Description("Markdown content to append"),
			mcp.Required(),
		),
		mcp.WithString("section", mcp.Description("Section heading to append under")),
	)
}

func addToPackHandler(inv Invoker) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pack := req.GetString("pack", "")
		content := req.GetString("content", "")
		if pack == "" || content == "" {
			return toolError(fmt.Errorf("pack and content are required"))
		}
		params := map[string]any{"pack": pack, "content": content}
		if section := req.GetString("section", ""); section != "" {
			params["section"] = section
		}
		return invoke(inv, "add_to_context_pack", params)
	}
}

// --- add_file_to_context_pack ---

func addFileToPackTool() mcp.Tool {
	return mcp.NewTool("add_file_to_context_pack",
		mcp.WithDescription("Copy a vault file's content into a context pack under a Source heading."),
		mcp.WithString("pack",
			mcp.Description("Pack ID"),
			mcp.Required(),
		),
		mcp.WithString("file",
			mcp.Description("Vault-relative path of the file to pull in"),
			mcp.Required(),
		),
		mcp.WithString("section", mcp.Description("Section heading to append under")),
	)
}

func addFileToPackHandler(inv Invoker) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pack := req.GetString("pack", "")
		file := req.GetString("file", "")
		if pack == "" || file == "" {
			return toolError(fmt.Errorf("pack and file are required"))
		}
		params := map[string]any{"pack": pack, "file": file}
		if section := req.GetString("section", ""); section != "" {
			params["section"] = section
		}
		return invoke(inv, "add_file_to_context_pack", params)
	}
}

// --- file_set ---

func fileSetTool() mcp.Tool {
	return mcp.NewTool("file_set",
		mcp.WithDescription("Overwrite a vault file. The previous content is backed up to <path>.bak."),
		mcp.WithString("query",
			mcp.Description("Task ID, title substring, or vault-relative path"),
			mcp.Required(),
		),
		mcp.WithString("content",
			mcp.Description("New file content"),
			mcp.Required(),
		),
	)
}

func fileSetHandler(inv Invoker) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return toolError(fmt.Errorf("query is required"))
		}
		params := map[string]any{"query": query, "content": req.GetString("content", "")}
		return invoke(inv, "file_set", params)
	}
}
