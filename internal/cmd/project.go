package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chisel-dev/chisel/internal/config"
	"github.com/chisel-dev/chisel/internal/db"
	"github.com/chisel-dev/chisel/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new chisel project in the current directory",
	RunE:  runInit,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show current project information",
	RunE:  runInfo,
}

func init() {
	jsonFlag(initCmd)
	jsonFlag(infoCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(infoCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root, _ := cmd.Flags().GetString("project")
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fail(cmd, fmt.Errorf("getting working directory: %w", err))
		}
		root = cwd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return fail(cmd, fmt.Errorf("resolving project path: %w", err))
	}

	chiselDir := filepath.Join(abs, project.Dir)
	if _, err := os.Stat(chiselDir); err == nil {
		return fail(cmd, errors.New("project already initialized"))
	}

	dbPath := filepath.Join(chiselDir, project.DBFile)
	if err := db.Initialize(dbPath); err != nil {
		return fail(cmd, err)
	}

	cfg := config.Default(filepath.Base(abs))
	if err := cfg.SaveTo(filepath.Join(chiselDir, project.ConfigFile)); err != nil {
		return fail(cmd, err)
	}

	if asJSON(cmd) {
		printJSON(map[string]any{
			"message":      fmt.Sprintf("Initialized chisel project in %s", abs),
			"project_root": abs,
			"database":     dbPath,
		})
	} else {
		fmt.Printf("Initialized chisel project in %s\n", abs)
	}
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	override, _ := cmd.Flags().GetString("project")
	proj, err := project.Discover(override)
	if err != nil {
		return fail(cmd, err)
	}
	if proj == nil {
		return fail(cmd, errors.New("not in a chisel project"))
	}

	if asJSON(cmd) {
		printJSON(map[string]any{
			"project_root": proj.Root,
			"database":     proj.DBPath(),
			"config":       proj.Config,
		})
	} else {
		fmt.Printf("Project root: %s\n", proj.Root)
		fmt.Printf("Database:     %s\n", proj.DBPath())
		fmt.Printf("Name:         %s\n", proj.Config.Project.Name)
		fmt.Printf("ID prefix:    %s\n", proj.Config.Project.IDPrefix)
		fmt.Printf("Default pri:  %d\n", proj.Config.Project.DefaultPriority)
	}
	return nil
}
