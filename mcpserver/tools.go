package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/adamgrzybowski/google-task-mcp/tasks"
)

func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("tasklists_list",
		mcp.WithDescription("List all task lists in the account"),
	), s.handleTaskListsList)

	s.mcpServer.AddTool(mcp.NewTool("tasks_list",
		mcp.WithDescription("List tasks in a task list"),
		mcp.WithString("tasklist_id", mcp.Description("Task list ID, defaults to the primary list")),
	), s.handleTasksList)

	s.mcpServer.AddTool(mcp.NewTool("tasks_create",
		mcp.WithDescription("Create a task in a task list"),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithString("tasklist_id", mcp.Description("Task list ID, defaults to the primary list")),
		mcp.WithString("notes", mcp.Description("Free-form notes")),
		mcp.WithString("due", mcp.Description("Due date, RFC 3339 timestamp")),
	), s.handleTasksCreate)

	s.mcpServer.AddTool(mcp.NewTool("tasks_update",
		mcp.WithDescription("Update an existing task; only provided fields change"),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
		mcp.WithString("tasklist_id", mcp.Description("Task list ID, defaults to the primary list")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("notes", mcp.Description("New notes")),
		mcp.WithString("status", mcp.Description("Task status, needsAction or completed")),
		mcp.WithString("due", mcp.Description("New due date, RFC 3339 timestamp")),
	), s.handleTasksUpdate)

	s.mcpServer.AddTool(mcp.NewTool("tasks_delete",
		mcp.WithDescription("Delete a task from a task list"),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
		mcp.WithString("tasklist_id", mcp.Description("Task list ID, defaults to the primary list")),
	), s.handleTasksDelete)
}

func (s *MCPServer) handleTaskListsList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.resolveSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	lists, err := session.Tasks.ListTaskLists(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list task lists: %v", err)), nil
	}
	return jsonResult(lists)
}

func (s *MCPServer) handleTasksList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.resolveSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	listID := request.GetString("tasklist_id", tasks.DefaultListID)
	items, err := session.Tasks.ListTasks(ctx, listID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list tasks: %v", err)), nil
	}
	return jsonResult(items)
}

func (s *MCPServer) handleTasksCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.resolveSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title argument is required"), nil
	}

	task := &tasks.Task{
		Title: title,
		Notes: request.GetString("notes", ""),
		Due:   request.GetString("due", ""),
	}

	listID := request.GetString("tasklist_id", tasks.DefaultListID)
	created, err := session.Tasks.CreateTask(ctx, listID, task)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create task: %v", err)), nil
	}
	return jsonResult(created)
}

func (s *MCPServer) handleTasksUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.resolveSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError("task_id argument is required"), nil
	}

	task := &tasks.Task{
		Title:  request.GetString("title", ""),
		Notes:  request.GetString("notes", ""),
		Status: request.GetString("status", ""),
		Due:    request.GetString("due", ""),
	}

	listID := request.GetString("tasklist_id", tasks.DefaultListID)
	updated, err := session.Tasks.UpdateTask(ctx, listID, taskID, task)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update task: %v", err)), nil
	}
	return jsonResult(updated)
}

func (s *MCPServer) handleTasksDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.resolveSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError("task_id argument is required"), nil
	}

	listID := request.GetString("tasklist_id", tasks.DefaultListID)
	if err := session.Tasks.DeleteTask(ctx, listID, taskID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete task: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task %s deleted", taskID)), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
