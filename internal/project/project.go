// Package project locates and describes a chisel project on disk. A
// project root is any directory containing a .chisel/ directory with a
// database inside it.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chisel-dev/chisel/internal/config"
)

// Dir is the hidden directory holding project state.
const Dir = ".chisel"

// DBFile is the database file name inside Dir.
const DBFile = "chisel.db"

// ConfigFile is the optional config file name inside Dir.
const ConfigFile = "config.toml"

// Project is an explicitly constructed handle on a project root,
// passed to operations instead of ambient global state.
type Project struct {
	Root   string
	Config *config.Config
}

// DBPath returns the path of the project database.
func (p *Project) DBPath() string {
	return filepath.Join(p.Root, Dir, DBFile)
}

// ConfigPath returns the path of the project config file.
func (p *Project) ConfigPath() string {
	return filepath.Join(p.Root, Dir, ConfigFile)
}

// FindRoot walks up from start looking for the nearest directory that
// contains .chisel/chisel.db. Returns "" when none is found.
func FindRoot(start string) (string, error) {
	current, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving start path: %w", err)
	}

	for {
		dbPath := filepath.Join(current, Dir, DBFile)
		if info, err := os.Stat(dbPath); err == nil && !info.IsDir() {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", nil
		}
		current = parent
	}
}

// Discover resolves a project from an explicit path override or, when
// the override is empty, by walking up from the working directory.
// Returns nil when no project is found.
func Discover(override string) (*Project, error) {
	var root string
	if override != "" {
		dbPath := filepath.Join(override, Dir, DBFile)
		if _, err := os.Stat(dbPath); err != nil {
			return nil, nil
		}
		abs, err := filepath.Abs(override)
		if err != nil {
			return nil, fmt.Errorf("resolving project path: %w", err)
		}
		root = abs
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		root, err = FindRoot(cwd)
		if err != nil {
			return nil, err
		}
		if root == "" {
			return nil, nil
		}
	}

	cfg, err := config.LoadFrom(filepath.Join(root, Dir, ConfigFile))
	if err != nil {
		return nil, err
	}

	return &Project{Root: root, Config: cfg}, nil
}
