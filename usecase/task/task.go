package task

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/vsgo/appcore/domain"
	"github.com/vsgo/appcore/repository"
	"github.com/vsgo/appcore/usecase"
)

const (
	maxTitleLength       = 100
	maxDescriptionLength = 500
)

// CreateInput carries the raw form values for a new task.
type CreateInput struct {
	Title       string
	Description string
	Date        string
}

type UseCase struct {
	tasks        repository.TaskRepository
	connectivity usecase.ConnectivityChecker
	logger       *zap.Logger
}

func New(tasks repository.TaskRepository, connectivity usecase.ConnectivityChecker, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:        tasks,
		connectivity: connectivity,
		logger:       logger,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return uc.tasks.List(ctx)
}

func (uc *UseCase) CreateTask(ctx context.Context, input CreateInput) (string, error) {
	if err := uc.checkConnection(); err != nil {
		return "", err
	}
	if err := validateCreate(input); err != nil {
		return "", err
	}

	id, err := uc.tasks.Create(ctx, &domain.Task{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Date:        domain.NewFormattedDate(input.Date).Canonical(),
	})
	if err != nil {
		uc.logger.Error("task create failed", zap.Error(err))
		return "", err
	}
	return id, nil
}

func (uc *UseCase) UpdateTask(ctx context.Context, id string, patch repository.TaskPatch) error {
	if err := uc.checkConnection(); err != nil {
		return err
	}
	if err := validatePatch(patch); err != nil {
		return err
	}
	return uc.tasks.Update(ctx, id, patch)
}

func (uc *UseCase) DeleteTask(ctx context.Context, id string) error {
	if err := uc.checkConnection(); err != nil {
		return err
	}
	return uc.tasks.Delete(ctx, id)
}

// MarkCompleted appends the completion marker to the description and
// sets the completed flag via a partial update. The marker is what the
// list screen actually reads; the flag is kept for the stored shape.
func (uc *UseCase) MarkCompleted(ctx context.Context, task domain.Task) error {
	if err := uc.checkConnection(); err != nil {
		return err
	}

	description := task.Description + domain.CompletionMarker
	completed := true
	return uc.tasks.Update(ctx, task.ID, repository.TaskPatch{
		Description: &description,
		Completed:   &completed,
	})
}

func (uc *UseCase) checkConnection() error {
	if uc.connectivity != nil && !uc.connectivity.IsConnected() {
		return domain.ErrNoConnection
	}
	return nil
}

func validateCreate(input CreateInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return domain.NewError(domain.ErrCodeValidation, "judul tidak boleh kosong")
	}
	if len(title) > maxTitleLength {
		return domain.NewError(domain.ErrCodeValidation, "judul maksimal 100 karakter")
	}
	if len(input.Description) > maxDescriptionLength {
		return domain.NewError(domain.ErrCodeValidation, "deskripsi maksimal 500 karakter")
	}
	if input.Date != "" {
		if _, ok := domain.NewFormattedDate(input.Date).Instant(); !ok {
			return domain.NewError(domain.ErrCodeValidation, "format tanggal tidak valid")
		}
	}
	return nil
}

func validatePatch(patch repository.TaskPatch) error {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return domain.NewError(domain.ErrCodeValidation, "judul tidak boleh kosong")
		}
		if len(title) > maxTitleLength {
			return domain.NewError(domain.ErrCodeValidation, "judul maksimal 100 karakter")
		}
	}
	if patch.Description != nil && len(*patch.Description) > maxDescriptionLength {
		return domain.NewError(domain.ErrCodeValidation, "deskripsi maksimal 500 karakter")
	}
	return nil
}
