package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamforge/agentcore/model"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func paths(snap Snapshot) []string {
	out := make([]string, 0, len(snap))
	for p := range snap {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func TestTakeSkipsFixedExcludeDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "node_modules/pkg/index.js", "module.exports = {}")
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main")
	writeFile(t, root, "dist/bundle.js", "console.log(1)")

	snap := Take(root)
	assert.Equal(t, []string{"main.go"}, paths(snap))
}

func TestTakeSkipsFixedExcludeFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, ".DS_Store", "junk")
	writeFile(t, root, "Thumbs.db", "junk")

	snap := Take(root)
	assert.Equal(t, []string{"main.go"}, paths(snap))
}

func TestTakeHonorsHiddenAllowlist(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".github/workflows/ci.yml", "name: ci")
	writeFile(t, root, ".hidden/secret.txt", "nope")

	snap := Take(root)
	assert.Equal(t, []string{".github/workflows/ci.yml"}, paths(snap))
}

func TestTakeOnMissingRootIsEmpty(t *testing.T) {
	snap := Take(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Empty(t, snap)
}

// TestTakeAppliesGitignore exercises a workspace
// containing main.py, debug.log, and build/out.js with a root .gitignore of
// "*.log\nbuild/": of those three files only main.py is snapshotted (the
// .gitignore itself is a regular file and is kept too).
func TestTakeAppliesGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "print(1)")
	writeFile(t, root, "debug.log", "trace")
	writeFile(t, root, "build/out.js", "built")
	writeFile(t, root, ".gitignore", "*.log\nbuild/\n")

	snap := Take(root)
	assert.Equal(t, []string{".gitignore", "main.py"}, paths(snap))
}

func TestTakeGitignoreNegation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "logs/app.log", "a")
	writeFile(t, root, "logs/keep.log", "b")
	writeFile(t, root, ".gitignore", "*.log\n!logs/keep.log\n")

	snap := Take(root)
	assert.Equal(t, []string{".gitignore", "logs/keep.log"}, paths(snap))
}

func TestDiffCreatedModifiedDeleted(t *testing.T) {
	before := Snapshot{
		"a.txt": {Size: 10, ModTimeNanos: 1},
		"b.txt": {Size: 20, ModTimeNanos: 2},
	}
	after := Snapshot{
		"a.txt": {Size: 10, ModTimeNanos: 1},
		"b.txt": {Size: 99, ModTimeNanos: 3},
		"c.txt": {Size: 5, ModTimeNanos: 4},
	}

	changes := Diff(before, after)
	byPath := make(map[string]model.FileChange, len(changes))
	for _, c := range changes {
		byPath[c.Path] = c
	}

	require.Contains(t, byPath, "b.txt")
	assert.Equal(t, model.ChangeModified, byPath["b.txt"].Change)
	require.Contains(t, byPath, "c.txt")
	assert.Equal(t, model.ChangeCreated, byPath["c.txt"].Change)
	assert.NotContains(t, byPath, "a.txt")
}

func TestDiffDeleted(t *testing.T) {
	before := Snapshot{"gone.txt": {Size: 1, ModTimeNanos: 1}}
	after := Snapshot{}

	changes := Diff(before, after)
	require.Len(t, changes, 1)
	assert.Equal(t, model.ChangeDeleted, changes[0].Change)
	assert.Equal(t, "gone.txt", changes[0].Path)
}

// TestDiffIsPureFunctionOfInputs checks the property that diff
// depends only on the two snapshots given: diffing a snapshot against
// itself always yields no changes, regardless of its contents.
func TestDiffIsPureFunctionOfInputs(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("diffing a snapshot against itself yields no changes", prop.ForAll(
		func(names []string, sizes []int64) bool {
			n := len(names)
			if len(sizes) < n {
				n = len(sizes)
			}
			snap := make(Snapshot, n)
			for i := 0; i < n; i++ {
				snap[names[i]] = FileStat{Size: sizes[i], ModTimeNanos: int64(i)}
			}
			return len(Diff(snap, snap)) == 0
		},
		gen.SliceOf(gen.Identifier()),
		gen.SliceOf(gen.Int64Range(0, 1<<20)),
	))

	properties.TestingRun(t)
}
