// Package tasks is the narrow capability interface over the downstream
// task-management API. The proxy treats it as an external collaborator: tool
// handlers validate parameters and pass through, nothing more.
package tasks

import "context"

// DefaultListID addresses the account's primary task list.
const DefaultListID = "@default"

// TaskList is one of the account's task lists.
type TaskList struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Task is a single task, identified by an opaque ID within its list.
type Task struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title"`
	Notes  string `json:"notes,omitempty"`
	Status string `json:"status,omitempty"`
	Due    string `json:"due,omitempty"`
}

// Service is the minimum surface a session's downstream client exposes.
type Service interface {
	ListTaskLists(ctx context.Context) ([]*TaskList, error)
	ListTasks(ctx context.Context, listID string) ([]*Task, error)
	CreateTask(ctx context.Context, listID string, task *Task) (*Task, error)
	UpdateTask(ctx context.Context, listID, taskID string, task *Task) (*Task, error)
	DeleteTask(ctx context.Context, listID, taskID string) error
}
