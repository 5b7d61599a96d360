package task

import (
	"time"
)

// TaskStatus values a task can hold.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusBlocked    = "blocked"
	StatusReview     = "review"
	StatusDone       = "done"
	StatusCancelled  = "cancelled"
)

// TaskType values.
const (
	TypeTask  = "task"
	TypeEpic  = "epic"
	TypeBug   = "bug"
	TypeSpike = "spike"
	TypeChore = "chore"
)

// Priority levels. 0 is most urgent.
const (
	PriorityCritical = 0 // drop everything
	PriorityHigh     = 1 // do today
	PriorityMedium   = 2 // this week (default)
	PriorityLow      = 3 // when time permits
	PriorityBacklog  = 4 // someday
)

// Dependency type. Only blocking edges are modeled.
const DepBlocks = "blocks"

// Hook events.
const (
	EventPreClose   = "pre-close"
	EventPostCreate = "post-create"
)

var validStatuses = map[string]bool{
	StatusOpen:       true,
	StatusInProgress: true,
	StatusBlocked:    true,
	StatusReview:     true,
	StatusDone:       true,
	StatusCancelled:  true,
}

var validTypes = map[string]bool{
	TypeTask:  true,
	TypeEpic:  true,
	TypeBug:   true,
	TypeSpike: true,
	TypeChore: true,
}

var validEvents = map[string]bool{
	EventPreClose:   true,
	EventPostCreate: true,
}

// ValidStatus reports whether s is a known task status.
func ValidStatus(s string) bool { return validStatuses[s] }

// ValidType reports whether s is a known task type.
func ValidType(s string) bool { return validTypes[s] }

// ValidPriority reports whether p is within the 0-4 range.
func ValidPriority(p int) bool { return p >= PriorityCritical && p <= PriorityBacklog }

// ValidEvent reports whether s is a known hook event.
func ValidEvent(s string) bool { return validEvents[s] }

// Closed reports whether a status counts as resolved for blocking
// purposes.
func Closed(status string) bool {
	return status == StatusDone || status == StatusCancelled
}

// Task is a unit of work tracked by the system.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	TaskType string `json:"task_type"`
	Priority int    `json:"priority"`

	StoryPoints      *int `json:"story_points"`
	EstimatedMinutes *int `json:"estimated_minutes"`

	Status string `json:"status"`

	ParentID *string `json:"parent_id"`

	AcceptanceCriteria []string `json:"acceptance_criteria"`
	QualityScore       *float64 `json:"quality_score"`

	Assignee   *string    `json:"assignee"`
	Labels     []string   `json:"labels"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DueAt      *time.Time `json:"due_at"`
	DeferUntil *time.Time `json:"defer_until"`
}

// Dependency is a directed blocking edge: TaskID is blocked by
// DependsOnID.
type Dependency struct {
	ID          int64     `json:"id"`
	TaskID      string    `json:"task_id"`
	DependsOnID string    `json:"depends_on_id"`
	DepType     string    `json:"dep_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// Hook is a shell command bound to a lifecycle event.
type Hook struct {
	ID      int64  `json:"id"`
	Event   string `json:"event"`
	Command string `json:"command"`
	Enabled bool   `json:"enabled"`
}

// Validate checks the invariants that hold for every stored task.
// Parent existence and ancestry are checked by the store, which can
// see other rows.
func (t *Task) Validate() error {
	if t.Title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if !ValidPriority(t.Priority) {
		return &ValidationError{Field: "priority", Reason: "must be between 0 and 4"}
	}
	if !ValidType(t.TaskType) {
		return &ValidationError{Field: "task_type", Reason: "unknown type " + t.TaskType}
	}
	if !ValidStatus(t.Status) {
		return &ValidationError{Field: "status", Reason: "unknown status " + t.Status}
	}
	if t.StoryPoints != nil && *t.StoryPoints < 0 {
		return &ValidationError{Field: "story_points", Reason: "must not be negative"}
	}
	if t.EstimatedMinutes != nil && *t.EstimatedMinutes < 0 {
		return &ValidationError{Field: "estimated_minutes", Reason: "must not be negative"}
	}
	return nil
}
