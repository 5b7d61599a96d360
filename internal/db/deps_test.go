package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chisel-dev/chisel/internal/task"
)

func TestAddDependency(t *testing.T) {
	store := testStore(t)

	a, err := store.CreateTask(CreateParams{Title: "a"})
	require.NoError(t, err)
	b, err := store.CreateTask(CreateParams{Title: "b"})
	require.NoError(t, err)

	dep, err := store.AddDependency(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, dep.TaskID)
	assert.Equal(t, b.ID, dep.DependsOnID)
	assert.Equal(t, task.DepBlocks, dep.DepType)
	assert.NotZero(t, dep.ID)
}

func TestAddDependencyRejectsSelf(t *testing.T) {
	store := testStore(t)

	a, err := store.CreateTask(CreateParams{Title: "a"})
	require.NoError(t, err)

	var verr *task.ValidationError
	_, err = store.AddDependency(a.ID, a.ID)
	require.ErrorAs(t, err, &verr)
}

func TestAddDependencyMissingEndpoint(t *testing.T) {
	store := testStore(t)

	a, err := store.CreateTask(CreateParams{Title: "a"})
	require.NoError(t, err)

	var nfe *task.NotFoundError
	_, err = store.AddDependency(a.ID, "ch-nope")
	require.ErrorAs(t, err, &nfe)

	_, err = store.AddDependency("ch-nope", a.ID)
	require.ErrorAs(t, err, &nfe)
}

func TestAddDependencyDuplicate(t *testing.T) {
	store := testStore(t)

	a, err := store.CreateTask(CreateParams{Title: "a"})
	require.NoError(t, err)
	b, err := store.CreateTask(CreateParams{Title: "b"})
	require.NoError(t, err)

	_, err = store.AddDependency(a.ID, b.ID)
	require.NoError(t, err)

	var cerr *task.ConflictError
	_, err = store.AddDependency(a.ID, b.ID)
	require.ErrorAs(t, err, &cerr)
}

func TestAddDependencyRejectsCycle(t *testing.T) {
	store := testStore(t)

	a, err := store.CreateTask(CreateParams{Title: "a"})
	require.NoError(t, err)
	b, err := store.CreateTask(CreateParams{Title: "b"})
	require.NoError(t, err)
	c, err := store.CreateTask(CreateParams{Title: "c"})
	require.NoError(t, err)

	// b blocked by a, then a blocked by b closes a 2-cycle.
	_, err = store.AddDependency(b.ID, a.ID)
	require.NoError(t, err)

	var verr *task.ValidationError
	_, err = store.AddDependency(a.ID, b.ID)
	require.ErrorAs(t, err, &verr)

	// Longer chain: c blocked by b, a blocked by c would close a 3-cycle.
	_, err = store.AddDependency(c.ID, b.ID)
	require.NoError(t, err)
	_, err = store.AddDependency(a.ID, c.ID)
	require.ErrorAs(t, err, &verr)

	// Readiness still works after rejected attempts.
	ready, err := store.ReadyTasks(0)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, taskIDs(ready))
}

func TestRemoveDependencyRoundTrip(t *testing.T) {
	store := testStore(t)

	a, err := store.CreateTask(CreateParams{Title: "a"})
	require.NoError(t, err)
	b, err := store.CreateTask(CreateParams{Title: "b"})
	require.NoError(t, err)

	before, err := store.ReadyTasks(0)
	require.NoError(t, err)

	_, err = store.AddDependency(a.ID, b.ID)
	require.NoError(t, err)
	require.NoError(t, store.RemoveDependency(a.ID, b.ID))

	// Adding then removing an edge restores the prior readiness.
	after, err := store.ReadyTasks(0)
	require.NoError(t, err)
	assert.Equal(t, taskIDs(before), taskIDs(after))
}

func TestRemoveDependencyNotFound(t *testing.T) {
	store := testStore(t)

	a, err := store.CreateTask(CreateParams{Title: "a"})
	require.NoError(t, err)
	b, err := store.CreateTask(CreateParams{Title: "b"})
	require.NoError(t, err)

	var nfe *task.NotFoundError
	err = store.RemoveDependency(a.ID, b.ID)
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "dependency", nfe.Kind)
}

func TestDependencyListing(t *testing.T) {
	store := testStore(t)

	a, err := store.CreateTask(CreateParams{Title: "a"})
	require.NoError(t, err)
	b, err := store.CreateTask(CreateParams{Title: "b"})
	require.NoError(t, err)
	c, err := store.CreateTask(CreateParams{Title: "c"})
	require.NoError(t, err)

	// a is blocked by b; c is blocked by a.
	_, err = store.AddDependency(a.ID, b.ID)
	require.NoError(t, err)
	_, err = store.AddDependency(c.ID, a.ID)
	require.NoError(t, err)

	blockedBy, err := store.Dependencies(a.ID)
	require.NoError(t, err)
	require.Len(t, blockedBy, 1)
	assert.Equal(t, b.ID, blockedBy[0].DependsOnID)

	blocks, err := store.Dependents(a.ID)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, c.ID, blocks[0].TaskID)
}
