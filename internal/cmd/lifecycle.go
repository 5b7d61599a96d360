package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chisel-dev/chisel/internal/db"
	"github.com/chisel-dev/chisel/internal/decompose"
	"github.com/chisel-dev/chisel/internal/hooks"
	"github.com/chisel-dev/chisel/internal/task"
)

var closeCmd = &cobra.Command{
	Use:   "close <task-id>",
	Short: "Close a task (mark as done)",
	Args:  cobra.ExactArgs(1),
	RunE:  runClose,
}

var reopenCmd = &cobra.Command{
	Use:   "reopen <task-id>",
	Short: "Reopen a closed or cancelled task",
	Args:  cobra.ExactArgs(1),
	RunE:  runReopen,
}

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "Show tasks ready to work on (no blockers)",
	RunE:  runReady,
}

var blockedCmd = &cobra.Command{
	Use:   "blocked",
	Short: "Show tasks that are blocked",
	RunE:  runBlocked,
}

var validateCmd = &cobra.Command{
	Use:   "validate <task-id>",
	Short: "Run validation hooks for a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	closeCmd.Flags().String("reason", "", "Reason for closing")
	jsonFlag(closeCmd)
	jsonFlag(reopenCmd)
	readyCmd.Flags().Int("limit", 5, "Maximum number of results")
	jsonFlag(readyCmd)
	jsonFlag(blockedCmd)
	jsonFlag(validateCmd)

	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(reopenCmd)
	rootCmd.AddCommand(readyCmd)
	rootCmd.AddCommand(blockedCmd)
	rootCmd.AddCommand(validateCmd)
}

func runClose(cmd *cobra.Command, args []string) error {
	proj, store, err := openProject(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	defer store.Close()

	reason, _ := cmd.Flags().GetString("reason")
	closed, results, err := hooks.Close(store, args[0], reason, proj.Root)
	if err != nil {
		var hf *hooks.HookFailure
		if errors.As(err, &hf) {
			if asJSON(cmd) {
				printJSON(map[string]any{
					"error":        "Pre-close hooks failed",
					"hook_results": hf.Results,
				})
			} else {
				fmt.Fprintln(os.Stderr, "Error: Pre-close hooks failed")
				for _, r := range hf.Results {
					if !r.Success {
						fmt.Fprintf(os.Stderr, "  [exit %d] %s\n", r.ReturnCode, r.Command)
					}
				}
			}
			return err
		}
		return fail(cmd, err)
	}

	// Roll completion up the hierarchy.
	if err := decompose.PropagateStatus(store, closed.ID); err != nil {
		return fail(cmd, err)
	}

	if asJSON(cmd) {
		printJSON(map[string]any{
			"task":         closed,
			"message":      fmt.Sprintf("Closed task %s", closed.ID),
			"hook_results": results,
		})
	} else {
		fmt.Printf("Closed task %s\n", closed.ID)
	}
	return nil
}

func runReopen(cmd *cobra.Command, args []string) error {
	_, store, err := openProject(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	defer store.Close()

	existing, err := store.GetTask(args[0])
	if err != nil {
		return fail(cmd, err)
	}
	if !task.Closed(existing.Status) {
		return fail(cmd, fmt.Errorf("task %s is not closed or cancelled", existing.ID))
	}

	open := task.StatusOpen
	reopened, err := store.UpdateTask(existing.ID, db.UpdateParams{Status: &open})
	if err != nil {
		return fail(cmd, err)
	}

	if asJSON(cmd) {
		printJSON(map[string]any{
			"task":    reopened,
			"message": fmt.Sprintf("Reopened task %s", reopened.ID),
		})
	} else {
		fmt.Printf("Reopened task %s\n", reopened.ID)
	}
	return nil
}

func runReady(cmd *cobra.Command, args []string) error {
	_, store, err := openProject(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	tasks, err := store.ReadyTasks(limit)
	if err != nil {
		return fail(cmd, err)
	}

	if asJSON(cmd) {
		printJSON(map[string]any{"tasks": tasks})
	} else {
		printTaskList(tasks)
	}
	return nil
}

func runBlocked(cmd *cobra.Command, args []string) error {
	_, store, err := openProject(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	defer store.Close()

	blocked, err := store.BlockedTasks()
	if err != nil {
		return fail(cmd, err)
	}

	if asJSON(cmd) {
		printJSON(map[string]any{"tasks": blocked})
		return nil
	}

	if len(blocked) == 0 {
		fmt.Println("No blocked tasks.")
		return nil
	}
	for _, bt := range blocked {
		fmt.Printf("%s %s: %s\n", formatStatus(bt.Status), bt.ID, bt.Title)
		for _, blocker := range bt.BlockedBy {
			fmt.Printf("    blocked by %s (%s): %s\n", blocker.ID, blocker.Status, truncate(blocker.Title, 40))
		}
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	proj, store, err := openProject(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	defer store.Close()

	validation, err := hooks.Validate(store, args[0], proj.Root)
	if err != nil {
		return fail(cmd, err)
	}

	if asJSON(cmd) {
		printJSON(validation)
	} else {
		if validation.Valid {
			fmt.Printf("Task %s passed %d hook(s)\n", validation.TaskID, len(validation.Results))
		} else {
			fmt.Printf("Task %s failed validation:\n", validation.TaskID)
			for _, r := range validation.Results {
				if !r.Success {
					fmt.Printf("  [exit %d] %s\n", r.ReturnCode, r.Command)
				}
			}
		}
	}

	if !validation.Valid {
		return errors.New("validation failed")
	}
	return nil
}
