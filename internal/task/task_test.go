package task

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTask() *Task {
	return &Task{
		ID:       "ch-abc123",
		Title:    "Implement parser",
		TaskType: TypeTask,
		Priority: PriorityMedium,
		Status:   StatusOpen,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr string
	}{
		{"valid", func(t *Task) {}, ""},
		{"empty title", func(t *Task) { t.Title = "" }, "title"},
		{"priority too high", func(t *Task) { t.Priority = 5 }, "priority"},
		{"priority negative", func(t *Task) { t.Priority = -1 }, "priority"},
		{"priority critical ok", func(t *Task) { t.Priority = 0 }, ""},
		{"priority backlog ok", func(t *Task) { t.Priority = 4 }, ""},
		{"unknown type", func(t *Task) { t.TaskType = "feature" }, "task_type"},
		{"unknown status", func(t *Task) { t.Status = "paused" }, "status"},
		{"negative points", func(t *Task) { p := -1; t.StoryPoints = &p }, "story_points"},
		{"zero points ok", func(t *Task) { p := 0; t.StoryPoints = &p }, ""},
		{"negative estimate", func(t *Task) { m := -5; t.EstimatedMinutes = &m }, "estimated_minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := validTask()
			tt.mutate(tk)
			err := tk.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantErr, verr.Field)
		})
	}
}

func TestEnums(t *testing.T) {
	for _, s := range []string{StatusOpen, StatusInProgress, StatusBlocked, StatusReview, StatusDone, StatusCancelled} {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus("paused"))

	for _, ty := range []string{TypeTask, TypeEpic, TypeBug, TypeSpike, TypeChore} {
		assert.True(t, ValidType(ty), ty)
	}
	assert.False(t, ValidType("feature"))

	assert.True(t, ValidEvent(EventPreClose))
	assert.True(t, ValidEvent(EventPostCreate))
	assert.False(t, ValidEvent("post-close"))
}

func TestClosed(t *testing.T) {
	assert.True(t, Closed(StatusDone))
	assert.True(t, Closed(StatusCancelled))
	assert.False(t, Closed(StatusOpen))
	assert.False(t, Closed(StatusBlocked))
}

func TestNewID(t *testing.T) {
	id, err := NewID("ch")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^ch-[0-9a-f]{6}$`), id)

	id, err = NewID("")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^ch-[0-9a-f]{6}$`), id)

	id, err = NewID("proj")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^proj-[0-9a-f]{6}$`), id)
}

func TestNewIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id, err := NewID("ch")
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate ID %s", id)
		seen[id] = true
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "invalid priority: must be between 0 and 4",
		(&ValidationError{Field: "priority", Reason: "must be between 0 and 4"}).Error())
	assert.Equal(t, "task ch-abc123 not found",
		(&NotFoundError{Kind: "task", ID: "ch-abc123"}).Error())
	assert.Equal(t, "edge exists", (&ConflictError{Detail: "edge exists"}).Error())
}
