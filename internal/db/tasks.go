package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chisel-dev/chisel/internal/task"
)

const taskColumns = `id, title, description, task_type, priority,
	story_points, estimated_minutes, status, parent_id,
	acceptance_criteria, quality_score, assignee, labels,
	created_at, updated_at, due_at, defer_until`

// CreateParams carries the fields accepted when creating a task.
// Zero-value Priority means the medium default; use a pointer to set
// an explicit level including critical (0).
type CreateParams struct {
	Title              string
	Description        string
	TaskType           string
	Priority           *int
	StoryPoints        *int
	EstimatedMinutes   *int
	ParentID           *string
	AcceptanceCriteria []string
	Assignee           *string
	Labels             []string
	DueAt              *time.Time
	DeferUntil         *time.Time
	IDPrefix           string
}

// CreateTask inserts a new open task and returns it.
func (db *DB) CreateTask(p CreateParams) (*task.Task, error) {
	id, err := task.NewID(p.IDPrefix)
	if err != nil {
		return nil, err
	}

	priority := task.PriorityMedium
	if p.Priority != nil {
		priority = *p.Priority
	}
	taskType := p.TaskType
	if taskType == "" {
		taskType = task.TypeTask
	}

	now := time.Now().UTC()
	t := &task.Task{
		ID:                 id,
		Title:              p.Title,
		Description:        p.Description,
		TaskType:           taskType,
		Priority:           priority,
		StoryPoints:        p.StoryPoints,
		EstimatedMinutes:   p.EstimatedMinutes,
		Status:             task.StatusOpen,
		ParentID:           p.ParentID,
		AcceptanceCriteria: emptyIfNil(p.AcceptanceCriteria),
		Assignee:           p.Assignee,
		Labels:             emptyIfNil(p.Labels),
		CreatedAt:          now,
		UpdatedAt:          now,
		DueAt:              p.DueAt,
		DeferUntil:         p.DeferUntil,
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	if t.ParentID != nil {
		if _, err := db.GetTask(*t.ParentID); err != nil {
			return nil, &task.ValidationError{Field: "parent_id", Reason: fmt.Sprintf("task %s does not exist", *t.ParentID)}
		}
	}

	if err := db.insertTask(db.conn, t); err != nil {
		return nil, err
	}

	return t, nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (db *DB) insertTask(conn execer, t *task.Task) error {
	_, err := conn.Exec(
		`INSERT INTO tasks (`+taskColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.Title,
		t.Description,
		t.TaskType,
		t.Priority,
		nullInt(t.StoryPoints),
		nullInt(t.EstimatedMinutes),
		t.Status,
		nullStr(t.ParentID),
		marshalStrings(t.AcceptanceCriteria),
		nullFloat(t.QualityScore),
		nullStr(t.Assignee),
		marshalStrings(t.Labels),
		t.CreatedAt,
		t.UpdatedAt,
		nullTime(t.DueAt),
		nullTime(t.DeferUntil),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

// GetTask retrieves a single task by ID.
func (db *DB) GetTask(id string) (*task.Task, error) {
	row := db.conn.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, &task.NotFoundError{Kind: "task", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return t, nil
}

// UpdateParams carries a partial update; nil fields are left unchanged.
type UpdateParams struct {
	Title              *string
	Description        *string
	TaskType           *string
	Priority           *int
	StoryPoints        *int
	EstimatedMinutes   *int
	Status             *string
	ParentID           *string
	AcceptanceCriteria []string
	QualityScore       *float64
	Assignee           *string
	Labels             []string
	DueAt              *time.Time
	DeferUntil         *time.Time
}

// UpdateTask merges the provided fields into an existing task,
// re-validates the result, and bumps updated_at.
func (db *DB) UpdateTask(id string, p UpdateParams) (*task.Task, error) {
	t, err := db.GetTask(id)
	if err != nil {
		return nil, err
	}

	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.TaskType != nil {
		t.TaskType = *p.TaskType
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.StoryPoints != nil {
		t.StoryPoints = p.StoryPoints
	}
	if p.EstimatedMinutes != nil {
		t.EstimatedMinutes = p.EstimatedMinutes
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.ParentID != nil {
		t.ParentID = p.ParentID
	}
	if p.AcceptanceCriteria != nil {
		t.AcceptanceCriteria = p.AcceptanceCriteria
	}
	if p.QualityScore != nil {
		t.QualityScore = p.QualityScore
	}
	if p.Assignee != nil {
		t.Assignee = p.Assignee
	}
	if p.Labels != nil {
		t.Labels = p.Labels
	}
	if p.DueAt != nil {
		t.DueAt = p.DueAt
	}
	if p.DeferUntil != nil {
		t.DeferUntil = p.DeferUntil
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	if p.ParentID != nil {
		if err := db.checkParent(id, *p.ParentID); err != nil {
			return nil, err
		}
	}

	t.UpdatedAt = time.Now().UTC()

	_, err = db.conn.Exec(
		`UPDATE tasks SET
			title = ?, description = ?, task_type = ?, priority = ?,
			story_points = ?, estimated_minutes = ?, status = ?, parent_id = ?,
			acceptance_criteria = ?, quality_score = ?, assignee = ?, labels = ?,
			updated_at = ?, due_at = ?, defer_until = ?
		 WHERE id = ?`,
		t.Title,
		t.Description,
		t.TaskType,
		t.Priority,
		nullInt(t.StoryPoints),
		nullInt(t.EstimatedMinutes),
		t.Status,
		nullStr(t.ParentID),
		marshalStrings(t.AcceptanceCriteria),
		nullFloat(t.QualityScore),
		nullStr(t.Assignee),
		marshalStrings(t.Labels),
		t.UpdatedAt,
		nullTime(t.DueAt),
		nullTime(t.DeferUntil),
		t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}

	return t, nil
}

// checkParent validates that a new parent exists and that assigning it
// does not make the task its own ancestor.
func (db *DB) checkParent(id, parentID string) error {
	if parentID == id {
		return &task.ValidationError{Field: "parent_id", Reason: "task cannot be its own parent"}
	}
	if _, err := db.GetTask(parentID); err != nil {
		return &task.ValidationError{Field: "parent_id", Reason: fmt.Sprintf("task %s does not exist", parentID)}
	}

	// Walk up the ancestor chain from the proposed parent.
	seen := map[string]bool{}
	cur := parentID
	for {
		if seen[cur] {
			return nil // pre-existing loop; don't make it worse, don't spin
		}
		seen[cur] = true

		var next sql.NullString
		err := db.conn.QueryRow(`SELECT parent_id FROM tasks WHERE id = ?`, cur).Scan(&next)
		if err == sql.ErrNoRows || err == nil && !next.Valid {
			return nil
		}
		if err != nil {
			return fmt.Errorf("walking ancestors: %w", err)
		}
		if next.String == id {
			return &task.ValidationError{Field: "parent_id", Reason: "task cannot be its own ancestor"}
		}
		cur = next.String
	}
}

// ListFilters narrows ListTasks results. Zero values mean no filter;
// Priority is a pointer because 0 is a valid level.
type ListFilters struct {
	Status   string
	Priority *int
	TaskType string
	ParentID string
	Assignee string
	Labels   []string
	Limit    int
}

// ListTasks returns tasks matching the filters, ordered by priority
// then creation time.
func (db *DB) ListTasks(f ListFilters) ([]task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	var params []any

	if f.Status != "" {
		query += " AND status = ?"
		params = append(params, f.Status)
	}
	if f.Priority != nil {
		query += " AND priority = ?"
		params = append(params, *f.Priority)
	}
	if f.TaskType != "" {
		query += " AND task_type = ?"
		params = append(params, f.TaskType)
	}
	if f.ParentID != "" {
		query += " AND parent_id = ?"
		params = append(params, f.ParentID)
	}
	if f.Assignee != "" {
		query += " AND assignee = ?"
		params = append(params, f.Assignee)
	}
	for i, label := range f.Labels {
		if i == 0 {
			query += " AND ("
		} else {
			query += " OR "
		}
		query += "labels LIKE ?"
		params = append(params, `%"`+label+`"%`)
	}
	if len(f.Labels) > 0 {
		query += ")"
	}

	query += " ORDER BY priority ASC, created_at ASC, rowid ASC"

	if f.Limit > 0 {
		query += " LIMIT ?"
		params = append(params, f.Limit)
	}

	return db.queryTasks(query, params...)
}

// ReadyTasks returns open tasks with no unresolved blocker, ordered by
// priority then creation time. A blocker that no longer exists counts
// as resolved. limit <= 0 means unlimited.
func (db *DB) ReadyTasks(limit int) ([]task.Task, error) {
	query := `
		SELECT ` + taskColumns + ` FROM tasks t
		WHERE t.status = 'open'
		  AND (t.defer_until IS NULL OR t.defer_until <= ?)
		  AND NOT EXISTS (
		      SELECT 1 FROM dependencies d
		      JOIN tasks blocker ON d.depends_on_id = blocker.id
		      WHERE d.task_id = t.id
		        AND d.dep_type = 'blocks'
		        AND blocker.status NOT IN ('done', 'cancelled')
		  )
		ORDER BY t.priority ASC, t.created_at ASC, t.rowid ASC`
	params := []any{time.Now().UTC()}

	if limit > 0 {
		query += " LIMIT ?"
		params = append(params, limit)
	}

	return db.queryTasks(query, params...)
}

// BlockerRef identifies an unresolved blocker of a task.
type BlockerRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// BlockedTask is a task annotated with its unresolved blockers.
type BlockedTask struct {
	task.Task
	BlockedBy []BlockerRef `json:"blocked_by"`
}

// BlockedTasks returns every task with at least one unresolved
// blocking edge, whatever its own status.
func (db *DB) BlockedTasks() ([]BlockedTask, error) {
	tasks, err := db.queryTasks(`
		SELECT DISTINCT ` + taskColumns + ` FROM tasks t
		WHERE EXISTS (
		    SELECT 1 FROM dependencies d
		    JOIN tasks blocker ON d.depends_on_id = blocker.id
		    WHERE d.task_id = t.id
		      AND d.dep_type = 'blocks'
		      AND blocker.status NOT IN ('done', 'cancelled')
		)
		ORDER BY t.priority ASC, t.created_at ASC, t.rowid ASC`)
	if err != nil {
		return nil, err
	}

	blocked := make([]BlockedTask, 0, len(tasks))
	for _, t := range tasks {
		rows, err := db.conn.Query(`
			SELECT blocker.id, blocker.title, blocker.status
			FROM dependencies d
			JOIN tasks blocker ON d.depends_on_id = blocker.id
			WHERE d.task_id = ?
			  AND d.dep_type = 'blocks'
			  AND blocker.status NOT IN ('done', 'cancelled')
			ORDER BY blocker.id`, t.ID)
		if err != nil {
			return nil, fmt.Errorf("querying blockers: %w", err)
		}

		bt := BlockedTask{Task: t, BlockedBy: []BlockerRef{}}
		for rows.Next() {
			var ref BlockerRef
			if err := rows.Scan(&ref.ID, &ref.Title, &ref.Status); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning blocker: %w", err)
			}
			bt.BlockedBy = append(bt.BlockedBy, ref)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		blocked = append(blocked, bt)
	}

	return blocked, nil
}

// Children returns the direct children of a parent task.
func (db *DB) Children(parentID string) ([]task.Task, error) {
	return db.ListTasks(ListFilters{ParentID: parentID})
}

func (db *DB) queryTasks(query string, params ...any) ([]task.Task, error) {
	rows, err := db.conn.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, *t)
	}

	return tasks, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*task.Task, error) {
	var (
		t           task.Task
		points      sql.NullInt64
		minutes     sql.NullInt64
		parentID    sql.NullString
		criteria    string
		quality     sql.NullFloat64
		assignee    sql.NullString
		labels      string
		dueAt       sql.NullTime
		deferUntil  sql.NullTime
		description sql.NullString
	)

	err := row.Scan(
		&t.ID, &t.Title, &description, &t.TaskType, &t.Priority,
		&points, &minutes, &t.Status, &parentID,
		&criteria, &quality, &assignee, &labels,
		&t.CreatedAt, &t.UpdatedAt, &dueAt, &deferUntil,
	)
	if err != nil {
		return nil, err
	}

	t.Description = description.String
	if points.Valid {
		v := int(points.Int64)
		t.StoryPoints = &v
	}
	if minutes.Valid {
		v := int(minutes.Int64)
		t.EstimatedMinutes = &v
	}
	if parentID.Valid {
		t.ParentID = &parentID.String
	}
	if quality.Valid {
		t.QualityScore = &quality.Float64
	}
	if assignee.Valid {
		t.Assignee = &assignee.String
	}
	if dueAt.Valid {
		v := dueAt.Time
		t.DueAt = &v
	}
	if deferUntil.Valid {
		v := deferUntil.Time
		t.DeferUntil = &v
	}
	t.AcceptanceCriteria = unmarshalStrings(criteria)
	t.Labels = unmarshalStrings(labels)

	return &t, nil
}

func marshalStrings(values []string) string {
	if values == nil {
		values = []string{}
	}
	data, _ := json.Marshal(values)
	return string(data)
}

func unmarshalStrings(data string) []string {
	values := []string{}
	if data != "" {
		_ = json.Unmarshal([]byte(data), &values)
	}
	return values
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
