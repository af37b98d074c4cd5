package workspace

import (
	"os"
	"strings"

	"github.com/gobwas/glob"
)

// gitignoreRule is one compiled, non-comment line of a .gitignore file.
type gitignoreRule struct {
	pattern  glob.Glob
	negate   bool
	anchored bool
	dirOnly  bool
}

// gitignoreSpec is the compiled form of a root .gitignore, applied as an
// additional exclusion layer on top of the fixed exclude sets. Rules are
// evaluated in file order; the last matching rule wins,
// matching git's own precedence.
type gitignoreSpec struct {
	rules []gitignoreRule
}

// loadGitignore compiles root's top-level .gitignore, if any. A missing
// file yields a nil spec (no additional filtering).
func loadGitignore(root string) *gitignoreSpec {
	data, err := os.ReadFile(root + string(os.PathSeparator) + ".gitignore")
	if err != nil {
		return nil
	}

	spec := &gitignoreSpec{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		negate := strings.HasPrefix(trimmed, "!")
		if negate {
			trimmed = trimmed[1:]
		}

		dirOnly := strings.HasSuffix(trimmed, "/")
		trimmed = strings.TrimSuffix(trimmed, "/")
		if trimmed == "" {
			continue
		}

		anchored := strings.Contains(trimmed, "/")
		trimmed = strings.TrimPrefix(trimmed, "/")
		if trimmed == "" {
			continue
		}

		g, err := glob.Compile(trimmed, '/')
		if err != nil {
			continue
		}
		spec.rules = append(spec.rules, gitignoreRule{
			pattern:  g,
			negate:   negate,
			anchored: anchored,
			dirOnly:  dirOnly,
		})
	}
	if len(spec.rules) == 0 {
		return nil
	}
	return spec
}

// match reports whether rel (slash-separated, relative to the .gitignore's
// root) is excluded. isDir is unused by the snapshotter today (only files
// are recorded) but kept so dirOnly rules can be evaluated against
// ancestor directories below.
func (s *gitignoreSpec) match(rel string, isDir bool) bool {
	excluded := false
	for _, rule := range s.rules {
		if rule.matches(rel, isDir) {
			excluded = !rule.negate
		}
	}
	return excluded
}

func (r gitignoreRule) matches(rel string, isDir bool) bool {
	if r.dirOnly {
		// A directory-only rule only ever excludes paths nested under a
		// matching ancestor directory, never the file itself by full-path
		// match (a file can't equal a directory pattern).
		return r.matchesAncestorDir(rel)
	}
	if r.anchored {
		return r.pattern.Match(rel)
	}
	// Unanchored: match the full path or any path suffix starting right
	// after a "/", so "*.log" matches both "debug.log" and "build/debug.log".
	if r.pattern.Match(rel) {
		return true
	}
	for i := 0; i < len(rel); i++ {
		if rel[i] == '/' && r.pattern.Match(rel[i+1:]) {
			return true
		}
	}
	return false
}

func (r gitignoreRule) matchesAncestorDir(rel string) bool {
	parts := strings.Split(rel, "/")
	for i := 0; i < len(parts)-1; i++ {
		dir := parts[i]
		if r.anchored {
			candidate := strings.Join(parts[:i+1], "/")
			if r.pattern.Match(candidate) {
				return true
			}
			continue
		}
		if r.pattern.Match(dir) {
			return true
		}
	}
	return false
}
