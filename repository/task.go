package repository

import (
	"context"

	"github.com/vsgo/appcore/domain"
)

// TaskPatch is a partial update; nil fields are left untouched
// remotely.
type TaskPatch struct {
	Title       *string
	Description *string
	Date        *domain.DateValue
	Completed   *bool
}

type TaskRepository interface {
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (string, error)
	Update(ctx context.Context, id string, patch TaskPatch) error
	Delete(ctx context.Context, id string) error
}
