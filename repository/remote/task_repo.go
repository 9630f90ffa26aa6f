package remote

import (
	"context"

	"github.com/vsgo/appcore/domain"
	"github.com/vsgo/appcore/internal/gateway"
	"github.com/vsgo/appcore/repository"
)

const tasksCollection = "tasks"

type taskRepository struct {
	gw *gateway.Gateway
}

// NewTaskRepository returns the remote-store implementation of
// TaskRepository, bound to the tasks collection.
func NewTaskRepository(gw *gateway.Gateway) repository.TaskRepository {
	return &taskRepository{gw: gw}
}

func (r *taskRepository) List(ctx context.Context) ([]domain.Task, error) {
	docs, err := r.gw.List(ctx, tasksCollection)
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, taskFromDocument(doc))
	}
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (string, error) {
	return r.gw.Create(ctx, tasksCollection, map[string]interface{}{
		"title":       task.Title,
		"description": task.Description,
		"date":        task.Date.Formatted(),
		"completed":   task.Completed,
	})
}

func (r *taskRepository) Update(ctx context.Context, id string, patch repository.TaskPatch) error {
	fields := make(map[string]interface{})
	if patch.Title != nil {
		fields["title"] = *patch.Title
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Date != nil {
		fields["date"] = patch.Date.Formatted()
	}
	if patch.Completed != nil {
		fields["completed"] = *patch.Completed
	}
	return r.gw.Update(ctx, tasksCollection, id, fields)
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	return r.gw.Delete(ctx, tasksCollection, id)
}

func taskFromDocument(doc gateway.Document) domain.Task {
	return domain.Task{
		ID:          doc.ID,
		UserID:      stringField(doc.Fields, "userId"),
		Title:       stringField(doc.Fields, "title"),
		Description: stringField(doc.Fields, "description"),
		Date:        domain.FromRaw(doc.Fields["date"]).Canonical(),
		Completed:   boolField(doc.Fields, "completed"),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}
