package probe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrNoDevices indicates that a device glob matched nothing.
var ErrNoDevices = errors.New("no matching device nodes")

// Prober inspects host device interfaces (sysfs, devfs, procfs) through a
// configurable root so suites can run against the live system while tests
// point it at a fixture tree.
type Prober struct {
	root string
}

// New creates a prober rooted at root. An empty root means "/".
func New(root string) *Prober {
	if root == "" {
		root = "/"
	}
	return &Prober{root: root}
}

// Root returns the prober's filesystem root.
func (p *Prober) Root() string { return p.root }

// Path joins parts under the prober's root.
func (p *Prober) Path(parts ...string) string {
	return filepath.Join(append([]string{p.root}, parts...)...)
}

// Exists reports whether the path exists.
func (p *Prober) Exists(parts ...string) bool {
	_, err := os.Stat(p.Path(parts...))
	return err == nil
}

// IsDir reports whether the path exists and is a directory.
func (p *Prober) IsDir(parts ...string) bool {
	info, err := os.Stat(p.Path(parts...))
	return err == nil && info.IsDir()
}

// ReadTrimmed reads the file and returns its contents with surrounding
// whitespace removed. Sysfs attributes are newline-terminated single values.
func (p *Prober) ReadTrimmed(parts ...string) (string, error) {
	path := p.Path(parts...)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// ReadInt reads the file and parses its trimmed contents as a decimal integer.
func (p *Prober) ReadInt(parts ...string) (int, error) {
	s, err := p.ReadTrimmed(parts...)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse %q as int: %w", s, err)
	}
	return n, nil
}

// Glob returns paths matching pattern under the root, sorted. The returned
// paths are relative to the root so they can be fed back into ReadTrimmed
// and friends.
func (p *Prober) Glob(pattern string) ([]string, error) {
	full := filepath.Join(p.root, pattern)
	matches, err := filepath.Glob(full)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", full, err)
	}
	rels := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(p.root, m)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", full, err)
		}
		rels = append(rels, rel)
	}
	sort.Strings(rels)
	return rels, nil
}

// Devices returns the base names of nodes matching pattern, sorted. When the
// pattern matches nothing the error is ErrNoDevices so callers can
// distinguish absence from a bad pattern.
func (p *Prober) Devices(pattern string) ([]string, error) {
	matches, err := p.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%q: %w", pattern, ErrNoDevices)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	return names, nil
}

// CanOpen reports whether the node can be opened for reading. Device nodes
// often exist but reject access when the backing driver is absent.
func (p *Prober) CanOpen(parts ...string) error {
	path := p.Path(parts...)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	return f.Close()
}

// Subdirs returns the sorted names of directories directly under dir.
func (p *Prober) Subdirs(dir string) ([]string, error) {
	path := p.Path(dir)
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", path, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
