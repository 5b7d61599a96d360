package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage task dependencies",
}

var depAddCmd = &cobra.Command{
	Use:   "add <task-id>",
	Short: "Add a dependency (task is blocked by another task)",
	Args:  cobra.ExactArgs(1),
	RunE:  runDepAdd,
}

var depRemoveCmd = &cobra.Command{
	Use:   "remove <task-id> <blocked-by>",
	Short: "Remove a dependency",
	Args:  cobra.ExactArgs(2),
	RunE:  runDepRemove,
}

var depListCmd = &cobra.Command{
	Use:   "list <task-id>",
	Short: "List dependencies for a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runDepList,
}

func init() {
	depAddCmd.Flags().String("blocked-by", "", "Task ID that blocks this task")
	_ = depAddCmd.MarkFlagRequired("blocked-by")
	jsonFlag(depAddCmd)
	jsonFlag(depRemoveCmd)
	jsonFlag(depListCmd)

	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depRemoveCmd)
	depCmd.AddCommand(depListCmd)
	rootCmd.AddCommand(depCmd)
}

func runDepAdd(cmd *cobra.Command, args []string) error {
	_, store, err := openProject(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	defer store.Close()

	blockedBy, _ := cmd.Flags().GetString("blocked-by")
	dep, err := store.AddDependency(args[0], blockedBy)
	if err != nil {
		return fail(cmd, err)
	}

	if asJSON(cmd) {
		printJSON(map[string]any{
			"dependency": dep,
			"message":    fmt.Sprintf("Added dependency: %s blocked by %s", dep.TaskID, dep.DependsOnID),
		})
	} else {
		fmt.Printf("Added dependency: %s blocked by %s\n", dep.TaskID, dep.DependsOnID)
	}
	return nil
}

func runDepRemove(cmd *cobra.Command, args []string) error {
	_, store, err := openProject(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	defer store.Close()

	if err := store.RemoveDependency(args[0], args[1]); err != nil {
		return fail(cmd, err)
	}

	if asJSON(cmd) {
		printJSON(map[string]any{
			"message": fmt.Sprintf("Removed dependency: %s no longer blocked by %s", args[0], args[1]),
		})
	} else {
		fmt.Printf("Removed dependency: %s no longer blocked by %s\n", args[0], args[1])
	}
	return nil
}

func runDepList(cmd *cobra.Command, args []string) error {
	_, store, err := openProject(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	defer store.Close()

	taskID := args[0]
	if _, err := store.GetTask(taskID); err != nil {
		return fail(cmd, err)
	}

	blockedBy, err := store.Dependencies(taskID)
	if err != nil {
		return fail(cmd, err)
	}
	blocks, err := store.Dependents(taskID)
	if err != nil {
		return fail(cmd, err)
	}

	if asJSON(cmd) {
		printJSON(map[string]any{
			"task_id":    taskID,
			"blocked_by": blockedBy,
			"blocks":     blocks,
		})
		return nil
	}

	if len(blockedBy) == 0 && len(blocks) == 0 {
		fmt.Printf("%s has no dependencies.\n", taskID)
		return nil
	}
	for _, d := range blockedBy {
		fmt.Printf("%s is blocked by %s\n", d.TaskID, d.DependsOnID)
	}
	for _, d := range blocks {
		fmt.Printf("%s blocks %s\n", d.DependsOnID, d.TaskID)
	}
	return nil
}
