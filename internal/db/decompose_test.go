package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chisel-dev/chisel/internal/task"
)

func TestDecomposeTask(t *testing.T) {
	store := testStore(t)

	parent, err := store.CreateTask(CreateParams{Title: "Build feature"})
	require.NoError(t, err)

	children, err := store.DecomposeTask(parent.ID,
		[]string{"design", "implement", "test"}, []int{2, 3, 2}, task.PriorityMedium, "ch")
	require.NoError(t, err)
	require.Len(t, children, 3)

	for i, want := range []int{2, 3, 2} {
		require.NotNil(t, children[i].StoryPoints)
		assert.Equal(t, want, *children[i].StoryPoints)
		require.NotNil(t, children[i].ParentID)
		assert.Equal(t, parent.ID, *children[i].ParentID)
		assert.Equal(t, task.StatusOpen, children[i].Status)
	}
	assert.Equal(t, "design", children[0].Title)
	assert.Equal(t, "implement", children[1].Title)
	assert.Equal(t, "test", children[2].Title)

	promoted, err := store.GetTask(parent.ID)
	require.NoError(t, err)
	assert.Equal(t, task.TypeEpic, promoted.TaskType)
	assert.False(t, promoted.UpdatedAt.Before(parent.UpdatedAt))

	stored, err := store.Children(parent.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestDecomposeTaskWithoutPoints(t *testing.T) {
	store := testStore(t)

	parent, err := store.CreateTask(CreateParams{Title: "p"})
	require.NoError(t, err)

	children, err := store.DecomposeTask(parent.ID, []string{"a", "b"}, nil, task.PriorityMedium, "ch")
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Nil(t, children[0].StoryPoints)
	assert.Nil(t, children[1].StoryPoints)
}

func TestDecomposeTaskPointsMismatch(t *testing.T) {
	store := testStore(t)

	parent, err := store.CreateTask(CreateParams{Title: "p"})
	require.NoError(t, err)

	var verr *task.ValidationError
	_, err = store.DecomposeTask(parent.ID, []string{"a", "b"}, []int{1}, task.PriorityMedium, "ch")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "points", verr.Field)
}

func TestDecomposeTaskParentNotFound(t *testing.T) {
	store := testStore(t)

	var nfe *task.NotFoundError
	_, err := store.DecomposeTask("ch-nope", []string{"a"}, nil, task.PriorityMedium, "ch")
	require.ErrorAs(t, err, &nfe)
}

func TestDecomposeTaskAllOrNothing(t *testing.T) {
	store := testStore(t)

	parent, err := store.CreateTask(CreateParams{Title: "p"})
	require.NoError(t, err)

	// The third title fails validation; no children may survive.
	var verr *task.ValidationError
	_, err = store.DecomposeTask(parent.ID, []string{"a", "b", ""}, nil, task.PriorityMedium, "ch")
	require.ErrorAs(t, err, &verr)

	children, err := store.Children(parent.ID)
	require.NoError(t, err)
	assert.Empty(t, children)

	// Parent was not promoted either.
	got, err := store.GetTask(parent.ID)
	require.NoError(t, err)
	assert.Equal(t, task.TypeTask, got.TaskType)
}
