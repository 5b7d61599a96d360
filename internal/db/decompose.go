package db

import (
	"fmt"
	"time"

	"github.com/chisel-dev/chisel/internal/task"
)

// DecomposeTask creates one child per title under the parent and
// promotes the parent to an epic, all in a single transaction. If any
// child fails validation, nothing is written.
func (db *DB) DecomposeTask(parentID string, titles []string, points []int, childPriority int, idPrefix string) ([]task.Task, error) {
	if points != nil && len(points) != len(titles) {
		return nil, &task.ValidationError{Field: "points", Reason: "number of points must match number of subtasks"}
	}
	if len(titles) == 0 {
		return nil, &task.ValidationError{Field: "subtasks", Reason: "at least one subtask title is required"}
	}

	if _, err := db.GetTask(parentID); err != nil {
		return nil, err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	children := make([]task.Task, 0, len(titles))
	for i, title := range titles {
		id, err := task.NewID(idPrefix)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		child := task.Task{
			ID:                 id,
			Title:              title,
			TaskType:           task.TypeTask,
			Priority:           childPriority,
			Status:             task.StatusOpen,
			ParentID:           &parentID,
			AcceptanceCriteria: []string{},
			Labels:             []string{},
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if points != nil {
			p := points[i]
			child.StoryPoints = &p
		}

		if err := child.Validate(); err != nil {
			return nil, err
		}
		if err := db.insertTask(tx, &child); err != nil {
			return nil, err
		}

		children = append(children, child)
	}

	_, err = tx.Exec(
		`UPDATE tasks SET task_type = ?, updated_at = ? WHERE id = ?`,
		task.TypeEpic, time.Now().UTC(), parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("promoting parent to epic: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing decomposition: %w", err)
	}

	return children, nil
}
