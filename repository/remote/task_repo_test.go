package remote_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsgo/appcore/domain"
	"github.com/vsgo/appcore/internal/gateway"
	"github.com/vsgo/appcore/internal/testutil"
	"github.com/vsgo/appcore/repository"
	"github.com/vsgo/appcore/repository/remote"
)

func newTaskRepo(t *testing.T) (repository.TaskRepository, *testutil.MemStore, *testutil.Clock) {
	t.Helper()
	store := testutil.NewMemStore()
	clock := testutil.NewClock(time.Date(2024, 5, 21, 10, 0, 0, 0, time.UTC))
	ident := &domain.Identity{UID: "user-1", Token: "token-1", ExpiresAt: time.Now().Add(time.Hour)}
	gw := gateway.NewWithClock(store, testutil.StaticSessions{Ident: ident}, nil, clock.Now)
	return remote.NewTaskRepository(gw), store, clock
}

func TestTaskRoundTrip(t *testing.T) {
	repo, _, _ := newTaskRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, &domain.Task{
		Title:       "belanja mingguan",
		Description: "beli sayur dan buah",
		Date:        domain.NewFormattedDate("21/05/2024"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	tasks, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	got := tasks[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "belanja mingguan", got.Title)
	assert.Equal(t, "beli sayur dan buah", got.Description)
	assert.Equal(t, "21/05/2024", got.Date.Formatted())
	assert.Equal(t, "user-1", got.UserID)
	assert.False(t, got.Completed)
	assert.True(t, got.CreatedAt.Equal(got.UpdatedAt), "createdAt and updatedAt must match at creation")

	instant, ok := got.Date.Instant()
	require.True(t, ok, "date must resolve to a canonical instant at the repository boundary")
	assert.Equal(t, time.Date(2024, 5, 21, 0, 0, 0, 0, time.UTC), instant)
}

func TestTaskUpdateMonotonicity(t *testing.T) {
	repo, _, clock := newTaskRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, &domain.Task{Title: "awal", Description: "tetap"})
	require.NoError(t, err)

	before, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, before, 1)

	clock.Advance(2 * time.Minute)
	title := "judul baru"
	require.NoError(t, repo.Update(ctx, id, repository.TaskPatch{Title: &title}))

	after, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, after, 1)

	assert.Equal(t, "judul baru", after[0].Title)
	assert.Equal(t, "tetap", after[0].Description, "fields outside the patch stay unchanged")
	assert.True(t, after[0].UpdatedAt.After(before[0].UpdatedAt))
	assert.True(t, after[0].CreatedAt.Equal(before[0].CreatedAt), "createdAt is immutable")
}

func TestTaskDeleteDisappearsFromList(t *testing.T) {
	repo, _, clock := newTaskRepo(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, &domain.Task{Title: "satu"})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := repo.Create(ctx, &domain.Task{Title: "dua"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, first))

	tasks, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, second, tasks[0].ID)

	err = repo.Delete(ctx, first)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeStorage))
}

func TestTaskListKeepsLegacyDateText(t *testing.T) {
	repo, store, _ := newTaskRepo(t)
	ctx := context.Background()

	// Legacy rows carried raw millisecond numbers in the date field.
	_, err := store.Add(ctx, "tasks", map[string]interface{}{
		"title": "lama",
		"date":  float64(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).UnixMilli()),
	}, "")
	require.NoError(t, err)

	tasks, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	instant, ok := tasks[0].Date.Instant()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), instant)
	assert.Equal(t, "02/01/2024", tasks[0].Date.Formatted())
}
