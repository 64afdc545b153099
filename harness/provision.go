package harness

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CanonicalSpecName is the filename the primary specification is always
// materialized under inside a project, regardless of which template it was
// sourced from. The agent reads this name; the --spec flag only selects the
// template.
const CanonicalSpecName = "app_spec.txt"

// TemplateLibrary is a read-only directory of named specification and
// context documents.
type TemplateLibrary struct {
	dir string
}

// NewTemplateLibrary returns a library rooted at dir.
func NewTemplateLibrary(dir string) *TemplateLibrary {
	return &TemplateLibrary{dir: dir}
}

// Dir returns the library root.
func (l *TemplateLibrary) Dir() string { return l.dir }

// Read returns the content of the named template, or a not-found error if
// the template does not exist in the library.
func (l *TemplateLibrary) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		return nil, fmt.Errorf("template %q not found in %s: %w", name, l.dir, err)
	}
	return data, nil
}

// Provisioner materializes the spec bundle into a project directory.
// Provisioning is idempotent: files already present in the project are never
// overwritten, so a resumed run cannot clobber a spec the agent has already
// started working against, even if --spec changed between runs.
type Provisioner struct {
	Library *TemplateLibrary

	// Notices receives a line for each file actually copied. Skipped files
	// are silent, so operators can tell a fresh start from a resume at a
	// glance. May be nil.
	Notices io.Writer
}

// Provision creates the project directory and copies the spec (under the
// canonical name) and each extra file (under its own name) from the template
// library, skipping any destination that already exists. A missing template
// is a fatal not-found error; it aborts before any session is started.
func (p *Provisioner) Provision(projectDir, specFile string, extraFiles []string) error {
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return fmt.Errorf("create project directory: %w", err)
	}

	if err := p.copyIfAbsent(specFile, filepath.Join(projectDir, CanonicalSpecName),
		fmt.Sprintf("Copied %s to project directory as %s", specFile, CanonicalSpecName)); err != nil {
		return err
	}

	for _, extra := range extraFiles {
		if err := p.copyIfAbsent(extra, filepath.Join(projectDir, extra),
			fmt.Sprintf("Copied %s to project directory", extra)); err != nil {
			return err
		}
	}
	return nil
}

// copyIfAbsent implements the per-file state machine: absent -> copy,
// present -> skip. Copies are whole-file, so no partial-write recovery is
// needed.
func (p *Provisioner) copyIfAbsent(templateName, dest, notice string) error {
	if _, err := os.Stat(dest); err == nil {
		return nil
	}
	data, err := p.Library.Read(templateName)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if p.Notices != nil {
		fmt.Fprintln(p.Notices, notice)
	}
	return nil
}
