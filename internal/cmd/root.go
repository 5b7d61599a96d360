// Package cmd implements the chisel command surface. Commands parse
// flags, call into the store and engines, and serialize results as
// text or JSON.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chisel-dev/chisel/internal/db"
	"github.com/chisel-dev/chisel/internal/project"
)

var rootCmd = &cobra.Command{
	Use:   "chisel",
	Short: "Lightweight agent task manager",
	Long: `Chisel is a local, file-backed task tracker for AI coding agents.
Tasks, dependencies, and quality hooks live in a per-project SQLite
database under .chisel/.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Any failure has already been printed
// by the failing command; callers only need the exit code.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("project", "", "project path override")
}

// openProject resolves the current project and opens its database.
func openProject(cmd *cobra.Command) (*project.Project, *db.DB, error) {
	override, _ := cmd.Flags().GetString("project")
	proj, err := project.Discover(override)
	if err != nil {
		return nil, nil, err
	}
	if proj == nil {
		return nil, nil, errors.New("not in a chisel project. Run 'chisel init' first")
	}

	store, err := db.Open(proj.DBPath())
	if err != nil {
		return nil, nil, err
	}

	return proj, store, nil
}

// jsonFlag registers the --json output switch on a command.
func jsonFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Output as JSON")
}

func asJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

// fail prints the error in the requested format and returns it so the
// process exits non-zero.
func fail(cmd *cobra.Command, err error) error {
	if asJSON(cmd) {
		printJSON(map[string]any{"error": err.Error()})
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
