package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chisel-dev/chisel/internal/task"
)

func TestAddHook(t *testing.T) {
	store := testStore(t)

	h, err := store.AddHook(task.EventPreClose, "go test ./...")
	require.NoError(t, err)
	assert.NotZero(t, h.ID)
	assert.Equal(t, task.EventPreClose, h.Event)
	assert.Equal(t, "go test ./...", h.Command)
	assert.True(t, h.Enabled)
}

func TestAddHookValidation(t *testing.T) {
	store := testStore(t)

	var verr *task.ValidationError
	_, err := store.AddHook("post-close", "true")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "event", verr.Field)

	_, err = store.AddHook(task.EventPreClose, "")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "command", verr.Field)
}

func TestHooksFiltering(t *testing.T) {
	store := testStore(t)

	pre, err := store.AddHook(task.EventPreClose, "true")
	require.NoError(t, err)
	post, err := store.AddHook(task.EventPostCreate, "true")
	require.NoError(t, err)
	disabled, err := store.AddHook(task.EventPreClose, "false")
	require.NoError(t, err)
	require.NoError(t, store.SetHookEnabled(disabled.ID, false))

	// Event filter returns only enabled hooks for that event.
	preHooks, err := store.Hooks(task.EventPreClose)
	require.NoError(t, err)
	require.Len(t, preHooks, 1)
	assert.Equal(t, pre.ID, preHooks[0].ID)

	postHooks, err := store.Hooks(task.EventPostCreate)
	require.NoError(t, err)
	require.Len(t, postHooks, 1)
	assert.Equal(t, post.ID, postHooks[0].ID)

	// Unfiltered listing includes the disabled hook.
	all, err := store.Hooks("")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRemoveHook(t *testing.T) {
	store := testStore(t)

	h, err := store.AddHook(task.EventPreClose, "true")
	require.NoError(t, err)
	require.NoError(t, store.RemoveHook(h.ID))

	var nfe *task.NotFoundError
	err = store.RemoveHook(h.ID)
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "hook", nfe.Kind)
}

func TestSetHookEnabledNotFound(t *testing.T) {
	store := testStore(t)

	var nfe *task.NotFoundError
	err := store.SetHookEnabled(99, true)
	require.ErrorAs(t, err, &nfe)
}
