package domain

import (
	"strings"
	"time"
)

// CompletionMarker is appended to a task's description when the user
// marks it done from the list screen.
const CompletionMarker = " [SELESAI]"

// completionWords are the free-text markers the screens look for when
// deciding whether a task is done.
var completionWords = []string{"selesai", "done", "complete"}

// Task represents a user-owned activity item.
type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        DateValue `json:"date"`
	// Completed is persisted on every write but the read path keys off
	// the text markers instead; see IsCompleted.
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCompleted reports whether the task reads as done. Detection is a
// substring match over title and description, not the Completed flag.
func (t *Task) IsCompleted() bool {
	if t == nil {
		return false
	}
	title := strings.ToLower(t.Title)
	desc := strings.ToLower(t.Description)
	for _, word := range completionWords {
		if strings.Contains(title, word) || strings.Contains(desc, word) {
			return true
		}
	}
	return false
}
