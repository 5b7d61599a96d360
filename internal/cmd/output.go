package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chisel-dev/chisel/internal/decompose"
	"github.com/chisel-dev/chisel/internal/task"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	statusStyles = map[string]lipgloss.Style{
		task.StatusOpen:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		task.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		task.StatusBlocked:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		task.StatusReview:     lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
		task.StatusDone:       lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
		task.StatusCancelled:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
)

func printJSON(data any) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Printf("{\"error\": %q}\n", err.Error())
		return
	}
	fmt.Println(string(out))
}

func formatStatus(status string) string {
	icons := map[string]string{
		task.StatusOpen:       "[ ]",
		task.StatusInProgress: "[>]",
		task.StatusBlocked:    "[!]",
		task.StatusReview:     "[?]",
		task.StatusDone:       "[x]",
		task.StatusCancelled:  "[-]",
	}
	icon, ok := icons[status]
	if !ok {
		icon = "[" + status + "]"
	}
	if style, ok := statusStyles[status]; ok {
		return style.Render(icon)
	}
	return icon
}

func formatPriority(priority int) string {
	names := map[int]string{
		task.PriorityCritical: "P0 (critical)",
		task.PriorityHigh:     "P1 (high)",
		task.PriorityMedium:   "P2 (medium)",
		task.PriorityLow:      "P3 (low)",
		task.PriorityBacklog:  "P4 (backlog)",
	}
	if name, ok := names[priority]; ok {
		return name
	}
	return fmt.Sprintf("P%d", priority)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func printTask(t *task.Task) {
	fmt.Printf("\n%s %s: %s\n", formatStatus(t.Status), headerStyle.Render(t.ID), t.Title)
	fmt.Printf("   Type: %s  Priority: %s\n", t.TaskType, formatPriority(t.Priority))

	if t.Description != "" {
		fmt.Printf("   Description: %s\n", truncate(t.Description, 60))
	}
	if t.ParentID != nil {
		fmt.Printf("   Parent: %s\n", *t.ParentID)
	}
	if t.StoryPoints != nil {
		fmt.Printf("   Story Points: %d\n", *t.StoryPoints)
	}
	if t.Assignee != nil {
		fmt.Printf("   Assignee: %s\n", *t.Assignee)
	}
	if len(t.Labels) > 0 {
		fmt.Printf("   Labels: %s\n", strings.Join(t.Labels, ", "))
	}
	if len(t.AcceptanceCriteria) > 0 {
		fmt.Println("   Acceptance Criteria:")
		for i, criterion := range t.AcceptanceCriteria {
			fmt.Printf("     %d. %s\n", i+1, criterion)
		}
	}

	fmt.Printf("   %s\n", dimStyle.Render("Created: "+t.CreatedAt.Format("2006-01-02 15:04:05")))
	if t.DueAt != nil {
		fmt.Printf("   Due: %s\n", t.DueAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Println()
}

func printTaskList(tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return
	}

	fmt.Printf("\n%s\n", headerStyle.Render(fmt.Sprintf("%-12s %-12s %-8s %-40s", "ID", "Status", "Pri", "Title")))
	fmt.Println(strings.Repeat("-", 76))

	for _, t := range tasks {
		status := t.Status
		if len(status) > 10 {
			status = status[:10]
		}
		fmt.Printf("%-12s %-12s P%-6d %-40s\n", t.ID, status, t.Priority, truncate(t.Title, 40))
	}

	fmt.Printf("\nTotal: %d task(s)\n", len(tasks))
}

func printTree(node *decompose.TreeNode, level int) {
	indent := strings.Repeat("  ", level)
	prefix := ""
	if level > 0 {
		prefix = "└─ "
	}
	fmt.Printf("%s%s%s %s: %s\n", indent, prefix, formatStatus(node.Task.Status), node.Task.ID, node.Task.Title)

	for _, child := range node.Children {
		printTree(child, level+1)
	}
}
