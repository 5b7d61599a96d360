package db

import (
	"fmt"
	"time"

	"github.com/chisel-dev/chisel/internal/task"
)

// AddDependency records that taskID is blocked by dependsOnID.
// Self-dependencies, duplicate edges, and edges that would close a
// cycle are rejected.
func (db *DB) AddDependency(taskID, dependsOnID string) (*task.Dependency, error) {
	if taskID == dependsOnID {
		return nil, &task.ValidationError{Field: "depends_on_id", Reason: "task cannot depend on itself"}
	}
	if _, err := db.GetTask(taskID); err != nil {
		return nil, err
	}
	if _, err := db.GetTask(dependsOnID); err != nil {
		return nil, err
	}

	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM dependencies WHERE task_id = ? AND depends_on_id = ? AND dep_type = ?`,
		taskID, dependsOnID, task.DepBlocks,
	).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("checking existing dependency: %w", err)
	}
	if count > 0 {
		return nil, &task.ConflictError{Detail: fmt.Sprintf("dependency %s blocked by %s already exists", taskID, dependsOnID)}
	}

	cyclic, err := db.wouldCycle(taskID, dependsOnID)
	if err != nil {
		return nil, err
	}
	if cyclic {
		return nil, &task.ValidationError{
			Field:  "depends_on_id",
			Reason: fmt.Sprintf("dependency would create a cycle: %s already blocks %s", taskID, dependsOnID),
		}
	}

	now := time.Now().UTC()
	res, err := db.conn.Exec(
		`INSERT INTO dependencies (task_id, depends_on_id, dep_type, created_at) VALUES (?, ?, ?, ?)`,
		taskID, dependsOnID, task.DepBlocks, now,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting dependency: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert ID: %w", err)
	}

	return &task.Dependency{
		ID:          id,
		TaskID:      taskID,
		DependsOnID: dependsOnID,
		DepType:     task.DepBlocks,
		CreatedAt:   now,
	}, nil
}

// wouldCycle reports whether adding the edge taskID -> dependsOnID
// would make dependsOnID transitively depend on taskID. Depth-first
// walk over the blocked-by edges starting from the proposed blocker.
func (db *DB) wouldCycle(taskID, dependsOnID string) (bool, error) {
	blockers, err := db.blockerMap()
	if err != nil {
		return false, err
	}

	visited := map[string]bool{}
	stack := []string{dependsOnID}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == taskID {
			return true, nil
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		stack = append(stack, blockers[cur]...)
	}

	return false, nil
}

// blockerMap loads all blocking edges as task -> blockers adjacency.
func (db *DB) blockerMap() (map[string][]string, error) {
	rows, err := db.conn.Query(`SELECT task_id, depends_on_id FROM dependencies WHERE dep_type = ?`, task.DepBlocks)
	if err != nil {
		return nil, fmt.Errorf("querying dependencies: %w", err)
	}
	defer rows.Close()

	blockers := map[string][]string{}
	for rows.Next() {
		var from, to string
		if err := rows.Scan(&from, &to); err != nil {
			return nil, fmt.Errorf("scanning dependency: %w", err)
		}
		blockers[from] = append(blockers[from], to)
	}

	return blockers, rows.Err()
}

// RemoveDependency deletes the blocking edge taskID -> dependsOnID.
func (db *DB) RemoveDependency(taskID, dependsOnID string) error {
	res, err := db.conn.Exec(
		`DELETE FROM dependencies WHERE task_id = ? AND depends_on_id = ?`,
		taskID, dependsOnID,
	)
	if err != nil {
		return fmt.Errorf("deleting dependency: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}
	if n == 0 {
		return &task.NotFoundError{Kind: "dependency", ID: fmt.Sprintf("%s blocked by %s", taskID, dependsOnID)}
	}
	return nil
}

// Dependencies returns the edges where taskID is the blocked side.
func (db *DB) Dependencies(taskID string) ([]task.Dependency, error) {
	return db.queryDeps(`SELECT id, task_id, depends_on_id, dep_type, created_at FROM dependencies WHERE task_id = ? ORDER BY id`, taskID)
}

// Dependents returns the edges where taskID is the blocker.
func (db *DB) Dependents(taskID string) ([]task.Dependency, error) {
	return db.queryDeps(`SELECT id, task_id, depends_on_id, dep_type, created_at FROM dependencies WHERE depends_on_id = ? ORDER BY id`, taskID)
}

func (db *DB) queryDeps(query string, args ...any) ([]task.Dependency, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying dependencies: %w", err)
	}
	defer rows.Close()

	deps := []task.Dependency{}
	for rows.Next() {
		var d task.Dependency
		if err := rows.Scan(&d.ID, &d.TaskID, &d.DependsOnID, &d.DepType, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning dependency: %w", err)
		}
		deps = append(deps, d)
	}

	return deps, rows.Err()
}
