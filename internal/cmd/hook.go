package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chisel-dev/chisel/internal/hooks"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage quality hooks",
}

var hookSetCmd = &cobra.Command{
	Use:   "set <event> <command>",
	Short: "Add a hook for an event (pre-close, post-create)",
	Args:  cobra.ExactArgs(2),
	RunE:  runHookSet,
}

var hookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured hooks",
	RunE:  runHookList,
}

var hookRemoveCmd = &cobra.Command{
	Use:   "remove <hook-id>",
	Short: "Remove a hook by ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runHookRemove,
}

var hookTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List ready-made hook command templates",
	RunE:  runHookTemplates,
}

func init() {
	jsonFlag(hookSetCmd)
	hookListCmd.Flags().String("event", "", "Filter by event")
	jsonFlag(hookListCmd)
	jsonFlag(hookRemoveCmd)
	jsonFlag(hookTemplatesCmd)

	hookCmd.AddCommand(hookSetCmd)
	hookCmd.AddCommand(hookListCmd)
	hookCmd.AddCommand(hookRemoveCmd)
	hookCmd.AddCommand(hookTemplatesCmd)
	rootCmd.AddCommand(hookCmd)
}

func runHookSet(cmd *cobra.Command, args []string) error {
	_, store, err := openProject(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	defer store.Close()

	event, command := args[0], args[1]
	// A bare template name expands to its command.
	if tmpl := hooks.Template(command); tmpl != "" {
		command = tmpl
	}

	h, err := store.AddHook(event, command)
	if err != nil {
		return fail(cmd, err)
	}

	if asJSON(cmd) {
		printJSON(map[string]any{
			"hook":    h,
			"message": fmt.Sprintf("Added hook for %s: %s", h.Event, h.Command),
		})
	} else {
		fmt.Printf("Added hook for %s: %s\n", h.Event, h.Command)
	}
	return nil
}

func runHookList(cmd *cobra.Command, args []string) error {
	_, store, err := openProject(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	defer store.Close()

	event, _ := cmd.Flags().GetString("event")
	registered, err := store.Hooks(event)
	if err != nil {
		return fail(cmd, err)
	}

	if asJSON(cmd) {
		printJSON(map[string]any{"hooks": registered})
		return nil
	}

	if len(registered) == 0 {
		fmt.Println("No hooks configured.")
		return nil
	}

	fmt.Printf("\n%-6s %-15s %-10s %-40s\n", "ID", "Event", "Enabled", "Command")
	fmt.Println(strings.Repeat("-", 75))
	for _, h := range registered {
		enabled := "Yes"
		if !h.Enabled {
			enabled = "No"
		}
		fmt.Printf("%-6d %-15s %-10s %-40s\n", h.ID, h.Event, enabled, truncate(h.Command, 40))
	}
	return nil
}

func runHookRemove(cmd *cobra.Command, args []string) error {
	_, store, err := openProject(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	defer store.Close()

	hookID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fail(cmd, fmt.Errorf("invalid hook ID %q", args[0]))
	}

	if err := store.RemoveHook(hookID); err != nil {
		return fail(cmd, err)
	}

	if asJSON(cmd) {
		printJSON(map[string]any{"message": fmt.Sprintf("Removed hook %d", hookID)})
	} else {
		fmt.Printf("Removed hook %d\n", hookID)
	}
	return nil
}

func runHookTemplates(cmd *cobra.Command, args []string) error {
	if asJSON(cmd) {
		printJSON(map[string]any{"templates": hooks.Templates()})
		return nil
	}

	all := hooks.Templates()
	for _, name := range hooks.TemplateNames() {
		fmt.Printf("%-14s %s\n", name, all[name])
	}
	return nil
}
