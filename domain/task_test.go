package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vsgo/appcore/domain"
)

func TestTaskIsCompleted(t *testing.T) {
	tests := []struct {
		name string
		task domain.Task
		want bool
	}{
		{
			name: "plain open task",
			task: domain.Task{Title: "belanja mingguan", Description: "beli sayur"},
			want: false,
		},
		{
			name: "marker appended to description",
			task: domain.Task{Title: "belanja", Description: "beli sayur" + domain.CompletionMarker},
			want: true,
		},
		{
			name: "selesai in title",
			task: domain.Task{Title: "laporan SELESAI dikirim"},
			want: true,
		},
		{
			name: "done in description",
			task: domain.Task{Title: "deploy", Description: "already Done yesterday"},
			want: true,
		},
		{
			name: "complete as substring",
			task: domain.Task{Title: "completed migration"},
			want: true,
		},
		{
			name: "completed flag alone does not count",
			task: domain.Task{Title: "belanja", Completed: true},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.IsCompleted())
		})
	}
}

func TestTaskIsCompletedNilReceiver(t *testing.T) {
	var task *domain.Task
	assert.False(t, task.IsCompleted())
}
