package db

import (
	"fmt"
	"strconv"

	"github.com/chisel-dev/chisel/internal/task"
)

// AddHook registers a new enabled hook for a lifecycle event.
func (db *DB) AddHook(event, command string) (*task.Hook, error) {
	if !task.ValidEvent(event) {
		return nil, &task.ValidationError{Field: "event", Reason: "must be pre-close or post-create"}
	}
	if command == "" {
		return nil, &task.ValidationError{Field: "command", Reason: "must not be empty"}
	}

	res, err := db.conn.Exec(`INSERT INTO hooks (event, command, enabled) VALUES (?, ?, 1)`, event, command)
	if err != nil {
		return nil, fmt.Errorf("inserting hook: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert ID: %w", err)
	}

	return &task.Hook{ID: id, Event: event, Command: command, Enabled: true}, nil
}

// RemoveHook deletes a hook by ID.
func (db *DB) RemoveHook(hookID int64) error {
	res, err := db.conn.Exec(`DELETE FROM hooks WHERE id = ?`, hookID)
	if err != nil {
		return fmt.Errorf("deleting hook: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}
	if n == 0 {
		return &task.NotFoundError{Kind: "hook", ID: strconv.FormatInt(hookID, 10)}
	}
	return nil
}

// Hooks lists hooks. With an event it returns only the enabled hooks
// for that event, in registration order; with an empty event it
// returns every hook including disabled ones.
func (db *DB) Hooks(event string) ([]task.Hook, error) {
	var query string
	var args []any
	if event != "" {
		query = `SELECT id, event, command, enabled FROM hooks WHERE event = ? AND enabled = 1 ORDER BY id`
		args = append(args, event)
	} else {
		query = `SELECT id, event, command, enabled FROM hooks ORDER BY id`
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying hooks: %w", err)
	}
	defer rows.Close()

	hooks := []task.Hook{}
	for rows.Next() {
		var h task.Hook
		if err := rows.Scan(&h.ID, &h.Event, &h.Command, &h.Enabled); err != nil {
			return nil, fmt.Errorf("scanning hook: %w", err)
		}
		hooks = append(hooks, h)
	}

	return hooks, rows.Err()
}

// SetHookEnabled toggles a hook without removing it.
func (db *DB) SetHookEnabled(hookID int64, enabled bool) error {
	res, err := db.conn.Exec(`UPDATE hooks SET enabled = ? WHERE id = ?`, enabled, hookID)
	if err != nil {
		return fmt.Errorf("updating hook: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated rows: %w", err)
	}
	if n == 0 {
		return &task.NotFoundError{Kind: "hook", ID: strconv.FormatInt(hookID, 10)}
	}
	return nil
}
