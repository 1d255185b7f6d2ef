package tasks

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	gtasks "google.golang.org/api/tasks/v1"
	"google.golang.org/api/option"
)

// GoogleService implements Service against the Google Tasks API. A service
// instance is owned by exactly one session; its credential behavior is
// whatever the supplied token source does (self-refreshing or static).
type GoogleService struct {
	api *gtasks.Service
}

// NewGoogleService builds a Tasks client from an oauth2 token source.
func NewGoogleService(ctx context.Context, source oauth2.TokenSource) (*GoogleService, error) {
	api, err := gtasks.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &GoogleService{api: api}, nil
}

func (g *GoogleService) ListTaskLists(ctx context.Context) ([]*TaskList, error) {
	resp, err := g.api.Tasklists.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list task lists: %w", err)
	}

	lists := make([]*TaskList, 0, len(resp.Items))
	for _, item := range resp.Items {
		lists = append(lists, &TaskList{ID: item.Id, Title: item.Title})
	}
	return lists, nil
}

func (g *GoogleService) ListTasks(ctx context.Context, listID string) ([]*Task, error) {
	if listID == "" {
		listID = DefaultListID
	}

	resp, err := g.api.Tasks.List(listID).ShowCompleted(true).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	items := make([]*Task, 0, len(resp.Items))
	for _, item := range resp.Items {
		items = append(items, fromGoogleTask(item))
	}
	return items, nil
}

func (g *GoogleService) CreateTask(ctx context.Context, listID string, task *Task) (*Task, error) {
	if listID == "" {
		listID = DefaultListID
	}

	created, err := g.api.Tasks.Insert(listID, toGoogleTask(task)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return fromGoogleTask(created), nil
}

func (g *GoogleService) UpdateTask(ctx context.Context, listID, taskID string, task *Task) (*Task, error) {
	if listID == "" {
		listID = DefaultListID
	}

	updated, err := g.api.Tasks.Patch(listID, taskID, toGoogleTask(task)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return fromGoogleTask(updated), nil
}

func (g *GoogleService) DeleteTask(ctx context.Context, listID, taskID string) error {
	if listID == "" {
		listID = DefaultListID
	}

	if err := g.api.Tasks.Delete(listID, taskID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func fromGoogleTask(t *gtasks.Task) *Task {
	return &Task{
		ID:     t.Id,
		Title:  t.Title,
		Notes:  t.Notes,
		Status: t.Status,
		Due:    t.Due,
	}
}

func toGoogleTask(t *Task) *gtasks.Task {
	return &gtasks.Task{
		Title:  t.Title,
		Notes:  t.Notes,
		Status: t.Status,
		Due:    t.Due,
	}
}

var _ Service = (*GoogleService)(nil)
