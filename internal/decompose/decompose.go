// Package decompose breaks tasks into child tasks and reports on the
// resulting hierarchy.
package decompose

import (
	"github.com/chisel-dev/chisel/internal/db"
	"github.com/chisel-dev/chisel/internal/task"
)

// Result is the outcome of a decomposition: the promoted parent and
// the created children in input order.
type Result struct {
	Parent   *task.Task  `json:"parent"`
	Subtasks []task.Task `json:"subtasks"`
}

// Decompose creates one child per title under parentID and promotes
// the parent to an epic. points may be nil; otherwise it must be the
// same length as titles. The operation is all-or-nothing.
func Decompose(store *db.DB, parentID string, titles []string, points []int, childPriority int, idPrefix string) (*Result, error) {
	children, err := store.DecomposeTask(parentID, titles, points, childPriority, idPrefix)
	if err != nil {
		return nil, err
	}

	parent, err := store.GetTask(parentID)
	if err != nil {
		return nil, err
	}

	return &Result{Parent: parent, Subtasks: children}, nil
}

// TreeNode is a task with its descendant forest.
type TreeNode struct {
	Task     task.Task   `json:"task"`
	Children []*TreeNode `json:"children"`
}

// Tree returns the task and its full descendant hierarchy. Parent
// links only ever point at pre-existing tasks, so the traversal
// terminates.
func Tree(store *db.DB, taskID string) (*TreeNode, error) {
	root, err := store.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	return buildNode(store, *root)
}

func buildNode(store *db.DB, t task.Task) (*TreeNode, error) {
	children, err := store.Children(t.ID)
	if err != nil {
		return nil, err
	}

	node := &TreeNode{Task: t, Children: []*TreeNode{}}
	for _, child := range children {
		childNode, err := buildNode(store, child)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}

	return node, nil
}

// Progress summarizes completion of a parent's direct children.
type Progress struct {
	ParentID        string  `json:"parent_id"`
	Total           int     `json:"total"`
	Open            int     `json:"open"`
	InProgress      int     `json:"in_progress"`
	Blocked         int     `json:"blocked"`
	Review          int     `json:"review"`
	Done            int     `json:"done"`
	Cancelled       int     `json:"cancelled"`
	ProgressPercent float64 `json:"progress_percent"`
	TotalPoints     int     `json:"total_points"`
	CompletedPoints int     `json:"completed_points"`
}

// SubtaskProgress computes status counts and story-point totals for a
// parent's direct children. Cancelled children are excluded from the
// completion percentage.
func SubtaskProgress(store *db.DB, parentID string) (*Progress, error) {
	if _, err := store.GetTask(parentID); err != nil {
		return nil, err
	}

	children, err := store.Children(parentID)
	if err != nil {
		return nil, err
	}

	p := &Progress{ParentID: parentID, Total: len(children)}
	for _, child := range children {
		switch child.Status {
		case task.StatusOpen:
			p.Open++
		case task.StatusInProgress:
			p.InProgress++
		case task.StatusBlocked:
			p.Blocked++
		case task.StatusReview:
			p.Review++
		case task.StatusDone:
			p.Done++
		case task.StatusCancelled:
			p.Cancelled++
		}

		if child.StoryPoints != nil {
			p.TotalPoints += *child.StoryPoints
			if child.Status == task.StatusDone {
				p.CompletedPoints += *child.StoryPoints
			}
		}
	}

	countable := p.Total - p.Cancelled
	if countable > 0 {
		p.ProgressPercent = float64(p.Done) / float64(countable) * 100
	}

	return p, nil
}

// PropagateStatus rolls a child's status change up the hierarchy:
// when all children of a parent are resolved the parent is marked
// done, and when any child is in progress an open parent moves to
// in_progress. Walks upward recursively.
func PropagateStatus(store *db.DB, taskID string) error {
	t, err := store.GetTask(taskID)
	if err != nil || t.ParentID == nil {
		return err
	}

	parentID := *t.ParentID
	children, err := store.Children(parentID)
	if err != nil {
		return err
	}
	if len(children) == 0 {
		return nil
	}

	allDone := true
	anyInProgress := false
	for _, child := range children {
		if !task.Closed(child.Status) {
			allDone = false
		}
		if child.Status == task.StatusInProgress {
			anyInProgress = true
		}
	}

	parent, err := store.GetTask(parentID)
	if err != nil {
		return err
	}

	switch {
	case allDone:
		done := task.StatusDone
		if _, err := store.UpdateTask(parentID, db.UpdateParams{Status: &done}); err != nil {
			return err
		}
	case anyInProgress && parent.Status == task.StatusOpen:
		inProgress := task.StatusInProgress
		if _, err := store.UpdateTask(parentID, db.UpdateParams{Status: &inProgress}); err != nil {
			return err
		}
	}

	return PropagateStatus(store, parentID)
}
