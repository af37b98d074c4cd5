// Package workspace implements the before/after directory-tree snapshotter:
// a best-effort walk that records each surviving file's size and
// modification time, and a diff that turns two snapshots into a set of
// created/modified/deleted file changes.
package workspace

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/streamforge/agentcore/model"
)

// FileStat is the (size, mtime_ns) pair recorded for one file at snapshot
// time.
type FileStat struct {
	Size         int64
	ModTimeNanos int64
}

// Snapshot maps a path relative to the scanned root to its FileStat.
// Snapshots are disposable: callers take one before a run and one after,
// diff them, and discard both.
type Snapshot map[string]FileStat

// excludeDirs is the fixed set of directory names skipped outright,
// regardless of nesting depth.
var excludeDirs = map[string]struct{}{
	".git": {}, "node_modules": {}, "__pycache__": {}, ".venv": {}, "venv": {},
	"target": {}, "dist": {}, "Build": {}, "DerivedData": {}, "Pods": {},
	".gradle": {}, ".idea": {}, ".vs": {}, ".vscode": {}, "coverage": {},
	".mypy_cache": {}, ".pytest_cache": {}, ".dart_tool": {}, ".pub-cache": {},
	"obj": {}, "generated": {}, ".nyc_output": {}, "attachments": {}, ".build": {},
}

// hiddenAllowlist names the dot-directories that are NOT skipped by the
// leading-dot rule below, even though their name starts with ".".
var hiddenAllowlist = map[string]struct{}{
	".github": {},
}

// excludeFiles is the fixed filename blacklist.
var excludeFiles = map[string]struct{}{
	".DS_Store": {}, "Thumbs.db": {}, "desktop.ini": {}, "firebase-debug.log": {},
}

// Take walks root recursively and returns a Snapshot of every surviving
// regular file. Unreadable entries are silently skipped (best-effort); a
// missing root yields an empty, non-error Snapshot.
func Take(root string) Snapshot {
	snap := make(Snapshot)
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return snap
	}

	ignore := loadGitignore(root)

	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // best-effort: skip unreadable entries, keep walking
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			name := d.Name()
			if isExcludedDir(name) {
				return filepath.SkipDir
			}
			return nil
		}

		if isExcludedFile(filepath.Base(rel)) {
			return nil
		}
		if hasExcludedAncestor(rel) {
			return nil
		}
		if ignore != nil && ignore.match(rel, false) {
			return nil
		}

		fi, statErr := d.Info()
		if statErr != nil {
			return nil
		}
		snap[rel] = FileStat{Size: fi.Size(), ModTimeNanos: fi.ModTime().UnixNano()}
		return nil
	})

	return snap
}

// isExcludedDir reports whether a directory name is in the fixed exclusion
// set, or is a dot-directory not on the hidden allowlist.
func isExcludedDir(name string) bool {
	if _, ok := excludeDirs[name]; ok {
		return true
	}
	if strings.HasPrefix(name, ".") {
		_, allowed := hiddenAllowlist[name]
		return !allowed
	}
	return false
}

func isExcludedFile(name string) bool {
	_, ok := excludeFiles[name]
	return ok
}

// hasExcludedAncestor re-checks the dot-prefix rule against every path
// segment above the file, covering entries reached through a directory
// WalkDir already decided not to skip outright. The file's own name is not
// checked, so a dotfile such as the root's .gitignore is kept.
func hasExcludedAncestor(rel string) bool {
	parts := strings.Split(rel, "/")
	for _, part := range parts[:len(parts)-1] {
		if isExcludedDir(part) {
			return true
		}
	}
	return false
}

// Diff computes the set of file changes between a before- and
// after-snapshot. The result is a function of the two snapshots only
// ordering is unspecified.
func Diff(before, after Snapshot) []model.FileChange {
	changes := make([]model.FileChange, 0, len(before)+len(after))
	for path, stat := range after {
		prev, existed := before[path]
		switch {
		case !existed:
			changes = append(changes, model.FileChange{Path: path, Change: model.ChangeCreated, Size: stat.Size})
		case prev != stat:
			changes = append(changes, model.FileChange{Path: path, Change: model.ChangeModified, Size: stat.Size})
		}
	}
	for path := range before {
		if _, stillExists := after[path]; !stillExists {
			changes = append(changes, model.FileChange{Path: path, Change: model.ChangeDeleted, Size: 0})
		}
	}
	return changes
}
