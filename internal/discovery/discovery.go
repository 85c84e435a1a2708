// Package discovery builds the unit.Group/Script tree by scanning the
// filesystem (spec §6), generalizing the teacher's single-file
// internal/projectintegration/engine/discovery/discovery.go (which resolves
// exactly one graph file via a precedence chain) into a recursive tree
// build — the genuinely new part this repo adds on top of that shape.
package discovery

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"github.com/pjsaksa/swd/internal/unit"
)

// scriptPattern matches regular files that become Scripts; groupPattern is
// the same numeric-alphanumeric-prefix rule without the extension, matching
// directories that become Groups (spec §6).
var (
	scriptPattern = regexp.MustCompile(`^[0-9]([0-9][a-z]?)?-[a-zA-Z][a-zA-Z0-9_-]*\.swd$`)
	groupPattern  = regexp.MustCompile(`^[0-9]([0-9][a-z]?)?-[a-zA-Z][a-zA-Z0-9_-]*$`)
)

// Scan builds the tree rooted at root, recursing into every matching
// subdirectory. Dotfiles are skipped; non-matching entries are silently
// ignored, per spec §6.
func Scan(fsys afero.Fs, root string) (*unit.Group, error) {
	g := unit.NewRoot("")
	if err := scanInto(fsys, root, g); err != nil {
		return nil, err
	}
	return g, nil
}

func scanInto(fsys afero.Fs, dirPath string, parent *unit.Group) error {
	entries, err := afero.ReadDir(fsys, dirPath)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", dirPath, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		full := filepath.Join(dirPath, name)

		if entry.IsDir() {
			if !groupPattern.MatchString(name) {
				continue
			}
			child := unit.NewGroup(name, parent)
			if err := parent.Add(child); err != nil {
				return fmt.Errorf("%s: %w", full, err)
			}
			if err := scanInto(fsys, full, child); err != nil {
				return err
			}
			continue
		}

		if !scriptPattern.MatchString(name) {
			continue
		}
		if entry.Mode()&0o100 == 0 {
			continue
		}

		scriptName := strings.TrimSuffix(name, unit.ScriptFileExt)
		script := unit.NewScript(scriptName, parent)
		if err := parent.Add(script); err != nil {
			return fmt.Errorf("%s: %w", full, err)
		}
	}

	return nil
}
