package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chisel-dev/chisel/internal/db"
	"github.com/chisel-dev/chisel/internal/hooks"
	"github.com/chisel-dev/chisel/internal/task"
)

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new task",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks with optional filters",
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show detailed information about a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var updateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Update a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdate,
}

func init() {
	createCmd.Flags().StringP("type", "t", "task", "Task type (task, epic, bug, spike, chore)")
	createCmd.Flags().IntP("priority", "p", 2, "Priority (0=critical, 1=high, 2=medium, 3=low, 4=backlog)")
	createCmd.Flags().StringP("description", "d", "", "Task description")
	createCmd.Flags().String("parent", "", "Parent task ID")
	createCmd.Flags().Int("points", 0, "Story points")
	createCmd.Flags().Int("estimate", 0, "Time estimate in minutes")
	createCmd.Flags().String("assignee", "", "Task assignee")
	createCmd.Flags().String("labels", "", "Comma-separated labels")
	createCmd.Flags().StringArray("criteria", nil, "Acceptance criteria (can be repeated)")
	jsonFlag(createCmd)

	listCmd.Flags().String("status", "", "Filter by status")
	listCmd.Flags().Int("priority", 0, "Filter by priority")
	listCmd.Flags().String("type", "", "Filter by task type")
	listCmd.Flags().String("parent", "", "Filter by parent task ID")
	listCmd.Flags().String("assignee", "", "Filter by assignee")
	listCmd.Flags().String("labels", "", "Filter by labels (comma-separated)")
	listCmd.Flags().Int("limit", 0, "Maximum number of results")
	jsonFlag(listCmd)

	updateCmd.Flags().String("title", "", "New title")
	updateCmd.Flags().StringP("description", "d", "", "New description")
	updateCmd.Flags().String("type", "", "New task type")
	updateCmd.Flags().IntP("priority", "p", 0, "New priority")
	updateCmd.Flags().StringP("status", "s", "", "New status")
	updateCmd.Flags().String("parent", "", "New parent task ID")
	updateCmd.Flags().Int("points", 0, "Story points")
	updateCmd.Flags().Int("estimate", 0, "Time estimate in minutes")
	updateCmd.Flags().String("assignee", "", "Task assignee")
	updateCmd.Flags().String("labels", "", "Comma-separated labels (replaces existing)")
	jsonFlag(updateCmd)

	jsonFlag(showCmd)

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(updateCmd)
}

func parseLabels(s string) []string {
	if s == "" {
		return nil
	}
	var labels []string
	for _, label := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			labels = append(labels, trimmed)
		}
	}
	return labels
}

func runCreate(cmd *cobra.Command, args []string) error {
	proj, store, err := openProject(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	defer store.Close()

	params := db.CreateParams{
		Title:    args[0],
		IDPrefix: proj.Config.Project.IDPrefix,
	}
	params.TaskType, _ = cmd.Flags().GetString("type")
	params.Description, _ = cmd.Flags().GetString("description")

	priority := proj.Config.Project.DefaultPriority
	if cmd.Flags().Changed("priority") {
		priority, _ = cmd.Flags().GetInt("priority")
	}
	params.Priority = &priority

	if cmd.Flags().Changed("parent") {
		v, _ := cmd.Flags().GetString("parent")
		params.ParentID = &v
	}
	if cmd.Flags().Changed("points") {
		v, _ := cmd.Flags().GetInt("points")
		params.StoryPoints = &v
	}
	if cmd.Flags().Changed("estimate") {
		v, _ := cmd.Flags().GetInt("estimate")
		params.EstimatedMinutes = &v
	}
	if cmd.Flags().Changed("assignee") {
		v, _ := cmd.Flags().GetString("assignee")
		params.Assignee = &v
	}
	labelsStr, _ := cmd.Flags().GetString("labels")
	params.Labels = parseLabels(labelsStr)
	params.AcceptanceCriteria, _ = cmd.Flags().GetStringArray("criteria")

	created, err := store.CreateTask(params)
	if err != nil {
		return fail(cmd, err)
	}

	// post-create hooks are informational; a failure never rolls the
	// task back.
	hookResults, err := hooks.RunAll(store, task.EventPostCreate, created.ID, proj.Root)
	if err != nil {
		return fail(cmd, err)
	}

	if asJSON(cmd) {
		result := map[string]any{
			"task":    created,
			"message": fmt.Sprintf("Created task %s", created.ID),
		}
		if len(hookResults) > 0 {
			result["hook_results"] = hookResults
		}
		printJSON(result)
	} else {
		printTask(created)
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	_, store, err := openProject(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	defer store.Close()

	var filters db.ListFilters
	filters.Status, _ = cmd.Flags().GetString("status")
	filters.TaskType, _ = cmd.Flags().GetString("type")
	filters.ParentID, _ = cmd.Flags().GetString("parent")
	filters.Assignee, _ = cmd.Flags().GetString("assignee")
	filters.Limit, _ = cmd.Flags().GetInt("limit")
	if cmd.Flags().Changed("priority") {
		v, _ := cmd.Flags().GetInt("priority")
		filters.Priority = &v
	}
	labelsStr, _ := cmd.Flags().GetString("labels")
	filters.Labels = parseLabels(labelsStr)

	tasks, err := store.ListTasks(filters)
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

func runShow(cmd *cobra.Command, args []string) error {
	_, store, err := openProject(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	defer store.Close()

	taskID := args[0]
	t, err := store.GetTask(taskID)
	if err != nil {
		return fail(cmd, err)
	}

	dependencies, err := store.Dependencies(taskID)
	if err != nil {
		return fail(cmd, err)
	}
	dependents, err := store.Dependents(taskID)
	if err != nil {
		return fail(cmd, err)
	}
	children := []task.Task{}
	if t.TaskType == task.TypeEpic {
		children, err = store.Children(taskID)
		if err != nil {
			return fail(cmd, err)
		}
	}

	if asJSON(cmd) {
		printJSON(map[string]any{
			"task":         t,
			"dependencies": dependencies,
			"dependents":   dependents,
			"children":     children,
		})
		return nil
	}

	printTask(t)

	if len(dependencies) > 0 {
		fmt.Println("   Blocked by:")
		for _, dep := range dependencies {
			title := "Unknown"
			if blocker, err := store.GetTask(dep.DependsOnID); err == nil {
				title = blocker.Title
			}
			fmt.Printf("     - %s: %s\n", dep.DependsOnID, truncate(title, 40))
		}
	}
	if len(dependents) > 0 {
		fmt.Println("   Blocks:")
		for _, dep := range dependents {
			title := "Unknown"
			if dependent, err := store.GetTask(dep.TaskID); err == nil {
				title = dependent.Title
			}
			fmt.Printf("     - %s: %s\n", dep.TaskID, truncate(title, 40))
		}
	}
	if len(children) > 0 {
		fmt.Println("   Subtasks:")
		for _, child := range children {
			fmt.Printf("     %s %s: %s\n", formatStatus(child.Status), child.ID, truncate(child.Title, 40))
		}
	}
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	_, store, err := openProject(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	defer store.Close()

	var params db.UpdateParams
	if cmd.Flags().Changed("title") {
		v, _ := cmd.Flags().GetString("title")
		params.Title = &v
	}
	if cmd.Flags().Changed("description") {
		v, _ := cmd.Flags().GetString("description")
		params.Description = &v
	}
	if cmd.Flags().Changed("type") {
		v, _ := cmd.Flags().GetString("type")
		params.TaskType = &v
	}
	if cmd.Flags().Changed("priority") {
		v, _ := cmd.Flags().GetInt("priority")
		params.Priority = &v
	}
	if cmd.Flags().Changed("status") {
		v, _ := cmd.Flags().GetString("status")
		params.Status = &v
	}
	if cmd.Flags().Changed("parent") {
		v, _ := cmd.Flags().GetString("parent")
		params.ParentID = &v
	}
	if cmd.Flags().Changed("points") {
		v, _ := cmd.Flags().GetInt("points")
		params.StoryPoints = &v
	}
	if cmd.Flags().Changed("estimate") {
		v, _ := cmd.Flags().GetInt("estimate")
		params.EstimatedMinutes = &v
	}
	if cmd.Flags().Changed("assignee") {
		v, _ := cmd.Flags().GetString("assignee")
		params.Assignee = &v
	}
	if cmd.Flags().Changed("labels") {
		labelsStr, _ := cmd.Flags().GetString("labels")
		labels := parseLabels(labelsStr)
		if labels == nil {
			labels = []string{}
		}
		params.Labels = labels
	}

	updated, err := store.UpdateTask(args[0], params)
	if err != nil {
		return fail(cmd, err)
	}

	if asJSON(cmd) {
		printJSON(map[string]any{
			"task":    updated,
			"message": fmt.Sprintf("Updated task %s", updated.ID),
		})
	} else {
		printTask(updated)
	}
	return nil
}
