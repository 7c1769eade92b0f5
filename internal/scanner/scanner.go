// Package scanner implements the desktop-entry discovery pipeline: it walks
// the prioritized application directories, parses candidate files, applies
// the visibility and launchability filters, and groups the survivors into
// an immutable Result.
package scanner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Boo15mario/access-launcher/internal/scanner/desktop"
	"github.com/Boo15mario/access-launcher/internal/scanner/execcheck"
)

// Scanner runs full scans over a prioritized directory list. It owns the
// reusable parse buffer, so a Scanner must not be used concurrently; one
// scan runs at a time by design.
type Scanner struct {
	buf []byte
}

// NewScanner creates a scanner with a fresh parse buffer.
func NewScanner() *Scanner {
	return &Scanner{buf: desktop.NewBuffer()}
}

// Scan traverses dirs in priority order (most authoritative first) and
// builds a fresh Result. desktops holds the current desktop-environment
// identifiers used to evaluate OnlyShowIn/NotShowIn.
//
// Files sharing an identifier with any earlier-seen file are shadowed:
// the identifier is claimed before the file is opened, so a claim made by
// an unparsable or filtered-out file still masks every lower-priority
// duplicate.
func (s *Scanner) Scan(dirs []string, desktops []string) *Result {
	seen := make(map[string]struct{})
	var entries []*desktop.Entry

	for _, dir := range dirs {
		s.walk(dir, func(path, id string) {
			if _, ok := seen[id]; ok {
				return
			}
			seen[id] = struct{}{}

			entry, err := desktop.ParseFile(path, id, s.buf)
			if err != nil {
				// Unreadable or malformed; the id stays claimed
				return
			}
			if !visible(entry, desktops) {
				return
			}
			if !execcheck.Validate(entry.Exec, entry.TryExec) {
				return
			}
			entries = append(entries, entry)
		})
	}

	// The one and only sort: everything downstream appends in this order.
	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	return newResult(entries)
}

// walk visits candidate files under dir, invoking fn once per .desktop
// file in lexical per-directory order. Missing or unreadable directories
// are silently skipped.
func (s *Scanner) walk(dir string, fn func(path, id string)) {
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".desktop") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		fn(path, entryID(rel))
		return nil
	})
}

// entryID derives the identifier from a path relative to its applications
// directory: separators collapse to '-' and the suffix is stripped, so
// "kde/editor.desktop" and "kde-editor.desktop" name the same application.
func entryID(rel string) string {
	id := strings.TrimSuffix(rel, ".desktop")
	return strings.ReplaceAll(id, string(filepath.Separator), "-")
}

// visible applies the cheap boolean rules, cheapest first, before any
// filesystem-touching validation.
func visible(entry *desktop.Entry, desktops []string) bool {
	if entry.Hidden {
		return false
	}
	if entry.NoDisplay {
		return false
	}
	if entry.NotShowIn.ContainsAny(desktops) {
		return false
	}
	if !entry.OnlyShowIn.Empty() && !entry.OnlyShowIn.ContainsAny(desktops) {
		return false
	}
	return true
}
