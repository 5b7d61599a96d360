package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chisel-dev/chisel/internal/decompose"
	"github.com/chisel-dev/chisel/internal/task"
)

var decomposeCmd = &cobra.Command{
	Use:   "decompose <task-id> <subtask>...",
	Short: "Break down a task into subtasks",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runDecompose,
}

var treeCmd = &cobra.Command{
	Use:   "tree <task-id>",
	Short: "Show task hierarchy tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runTree,
}

var progressCmd = &cobra.Command{
	Use:   "progress <task-id>",
	Short: "Show subtask completion for a parent task",
	Args:  cobra.ExactArgs(1),
	RunE:  runProgress,
}

func init() {
	decomposeCmd.Flags().String("points", "", "Comma-separated story points for each subtask")
	jsonFlag(decomposeCmd)
	jsonFlag(treeCmd)
	jsonFlag(progressCmd)

	rootCmd.AddCommand(decomposeCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(progressCmd)
}

func runDecompose(cmd *cobra.Command, args []string) error {
	proj, store, err := openProject(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	defer store.Close()

	parentID := args[0]
	titles := args[1:]

	var points []int
	if pointsStr, _ := cmd.Flags().GetString("points"); pointsStr != "" {
		for _, part := range strings.Split(pointsStr, ",") {
			p, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return fail(cmd, &task.ValidationError{Field: "points", Reason: "invalid points format"})
			}
			points = append(points, p)
		}
	}

	result, err := decompose.Decompose(store, parentID, titles, points,
		proj.Config.Project.DefaultPriority, proj.Config.Project.IDPrefix)
	if err != nil {
		return fail(cmd, err)
	}

	if asJSON(cmd) {
		printJSON(map[string]any{
			"parent":   result.Parent,
			"subtasks": result.Subtasks,
			"message":  fmt.Sprintf("Created %d subtasks under %s", len(result.Subtasks), parentID),
		})
	} else {
		fmt.Printf("Created %d subtasks under %s\n", len(result.Subtasks), parentID)
		for _, sub := range result.Subtasks {
			fmt.Printf("  %s %s: %s\n", formatStatus(sub.Status), sub.ID, sub.Title)
		}
	}
	return nil
}

func runTree(cmd *cobra.Command, args []string) error {
	_, store, err := openProject(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	defer store.Close()

	tree, err := decompose.Tree(store, args[0])
	if err != nil {
		return fail(cmd, err)
	}

	if asJSON(cmd) {
		printJSON(map[string]any{"tree": tree})
	} else {
		printTree(tree, 0)
	}
	return nil
}

func runProgress(cmd *cobra.Command, args []string) error {
	_, store, err := openProject(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	defer store.Close()

	progress, err := decompose.SubtaskProgress(store, args[0])
	if err != nil {
		return fail(cmd, err)
	}

	if asJSON(cmd) {
		printJSON(progress)
	} else {
		fmt.Printf("%s: %d/%d done (%.1f%%)\n", progress.ParentID,
			progress.Done, progress.Total, progress.ProgressPercent)
		if progress.TotalPoints > 0 {
			fmt.Printf("Points: %d/%d completed\n", progress.CompletedPoints, progress.TotalPoints)
		}
	}
	return nil
}
