// Package hooks executes the shell commands registered for task
// lifecycle events and gates task closure on their success.
package hooks

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chisel-dev/chisel/internal/db"
	"github.com/chisel-dev/chisel/internal/task"
)

// TaskIDEnv is the environment variable carrying the task identity
// into hook commands.
const TaskIDEnv = "CHISEL_TASK_ID"

// Result records one hook command execution.
type Result struct {
	HookID     int64   `json:"hook_id"`
	Event      string  `json:"event"`
	Command    string  `json:"command"`
	Success    bool    `json:"success"`
	ReturnCode int     `json:"return_code"`
	Stdout     string  `json:"stdout"`
	Stderr     string  `json:"stderr"`
	Duration   float64 `json:"duration_seconds"`
}

// HookFailure reports that one or more gating hooks failed. It carries
// every result so the caller can show which command failed.
type HookFailure struct {
	TaskID  string
	Event   string
	Results []Result
}

func (e *HookFailure) Error() string {
	failed := 0
	for _, r := range e.Results {
		if !r.Success {
			failed++
		}
	}
	return fmt.Sprintf("%d %s hook(s) failed for task %s", failed, e.Event, e.TaskID)
}

// RunAll executes every enabled hook registered for the event, in
// registration order. A failing hook does not stop later hooks.
func RunAll(store *db.DB, event, taskID, workDir string) ([]Result, error) {
	registered, err := store.Hooks(event)
	if err != nil {
		return nil, err
	}

	results := []Result{}
	for _, h := range registered {
		if !h.Enabled {
			continue
		}
		r := runCommand(h.Command, taskID, workDir)
		r.HookID = h.ID
		r.Event = h.Event
		results = append(results, r)
	}

	return results, nil
}

// runCommand executes one hook command through the shell. There is
// deliberately no timeout; an unbounded hook blocks the invocation
// until killed externally.
func runCommand(command, taskID, workDir string) Result {
	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = workDir
	cmd.Env = os.Environ()
	if taskID != "" {
		cmd.Env = append(cmd.Env, TaskIDEnv+"="+taskID)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start).Seconds()

	result := Result{
		Command:  command,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: elapsed,
	}

	switch e := err.(type) {
	case nil:
		result.Success = true
	case *exec.ExitError:
		result.ReturnCode = e.ExitCode()
	default:
		result.ReturnCode = -1
		result.Stderr = err.Error()
	}

	return result
}

func allPassed(results []Result) bool {
	for _, r := range results {
		if !r.Success {
			return false
		}
	}
	return true
}

// Close runs the pre-close hooks for a task and, only if all pass,
// transitions it to done. The reason is appended to the task's
// description as closing metadata. On hook failure the returned error
// is a *HookFailure carrying every result and the task is untouched.
func Close(store *db.DB, taskID, reason, workDir string) (*task.Task, []Result, error) {
	existing, err := store.GetTask(taskID)
	if err != nil {
		return nil, nil, err
	}

	results, err := RunAll(store, task.EventPreClose, taskID, workDir)
	if err != nil {
		return nil, nil, err
	}
	if !allPassed(results) {
		return nil, results, &HookFailure{TaskID: taskID, Event: task.EventPreClose, Results: results}
	}

	description := existing.Description
	if reason != "" {
		if description != "" {
			description = description + "\n\nClosed: " + reason
		} else {
			description = "Closed: " + reason
		}
	}

	done := task.StatusDone
	updated, err := store.UpdateTask(taskID, db.UpdateParams{Status: &done, Description: &description})
	if err != nil {
		return nil, results, err
	}

	return updated, results, nil
}

// Validation is the read-only result of running pre-close hooks
// without closing the task.
type Validation struct {
	TaskID       string   `json:"task_id"`
	Valid        bool     `json:"valid"`
	QualityScore *float64 `json:"quality_score"`
	Results      []Result `json:"hook_results"`
}

// Validate runs the pre-close hooks for a task without mutating its
// status. The pass ratio is recorded on the task as its quality score.
func Validate(store *db.DB, taskID, workDir string) (*Validation, error) {
	if _, err := store.GetTask(taskID); err != nil {
		return nil, err
	}

	results, err := RunAll(store, task.EventPreClose, taskID, workDir)
	if err != nil {
		return nil, err
	}

	v := &Validation{TaskID: taskID, Valid: allPassed(results), Results: results}

	if len(results) > 0 {
		passed := 0
		for _, r := range results {
			if r.Success {
				passed++
			}
		}
		score := float64(passed) / float64(len(results))
		v.QualityScore = &score
		if _, err := store.UpdateTask(taskID, db.UpdateParams{QualityScore: &score}); err != nil {
			return nil, err
		}
	}

	return v, nil
}
