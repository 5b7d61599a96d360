package hooks

import "sort"

// templates are ready-made hook commands for common quality gates.
var templates = map[string]string{
	"pytest":       "pytest tests/ -q",
	"pytest-cov":   "pytest tests/ --cov --cov-fail-under=80",
	"ruff":         "ruff check .",
	"ruff-fix":     "ruff check --fix .",
	"mypy":         "mypy src/",
	"black":        "black --check .",
	"isort":        "isort --check-only .",
	"eslint":       "eslint .",
	"prettier":     "prettier --check .",
	"cargo-test":   "cargo test",
	"cargo-clippy": "cargo clippy -- -D warnings",
	"go-test":      "go test ./...",
	"go-vet":       "go vet ./...",
}

// Template returns the command for a named template, or "" if the
// name is unknown.
func Template(name string) string {
	return templates[name]
}

// TemplateNames returns the available template names, sorted.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Templates returns a copy of the template table.
func Templates() map[string]string {
	out := make(map[string]string, len(templates))
	for k, v := range templates {
		out[k] = v
	}
	return out
}
