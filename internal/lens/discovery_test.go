package lens

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Discovery:
// - Include patterns select matching files at the root and in subdirectories
// - Ignore patterns exclude files and prune whole directories
// - The .pysiglens directory is always excluded
// - Files over the size cap are skipped
// - Invalid patterns fail construction
// - Matches agrees with the walk for relative paths

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func relFiles(t *testing.T, root string, files []string) []string {
	t.Helper()
	var rels []string
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		rels = append(rels, filepath.ToSlash(rel))
	}
	return rels
}

func TestDiscovery_Files(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "main.py", "def main(): pass\n")
	writeFile(t, root, "pkg/util.py", "def util(): pass\n")
	writeFile(t, root, "pkg/__pycache__/util.cpython-312.pyc", "binary")
	writeFile(t, root, "__pycache__/main.cpython-312.pyc", "binary")
	writeFile(t, root, ".venv/lib/site.py", "def site(): pass\n")
	writeFile(t, root, ".pysiglens/config.yml", "enabled: true\n")
	writeFile(t, root, "notes.txt", "not python")
	writeFile(t, root, "big.py", strings.Repeat("# padding\n", 100))

	d, err := NewDiscovery(root,
		[]string{"**/*.py"},
		[]string{".git/**", "__pycache__/**", "**/__pycache__/**", ".venv/**", "**/.venv/**"},
		0)
	require.NoError(t, err)

	files, err := d.Files()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"big.py", "main.py", "pkg/util.py"}, relFiles(t, root, files))
}

func TestDiscovery_SizeCap(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "small.py", "def f(): pass\n")
	writeFile(t, root, "large.py", strings.Repeat("# padding\n", 1000))

	d, err := NewDiscovery(root, []string{"**/*.py"}, nil, 100)
	require.NoError(t, err)

	files, err := d.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"small.py"}, relFiles(t, root, files))
}

func TestDiscovery_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := NewDiscovery(t.TempDir(), []string{"[bad"}, nil, 0)
	assert.Error(t, err)

	_, err = NewDiscovery(t.TempDir(), []string{"**/*.py"}, []string{"[bad"}, 0)
	assert.Error(t, err)
}

func TestDiscovery_Matches(t *testing.T) {
	t.Parallel()

	d, err := NewDiscovery(t.TempDir(),
		[]string{"**/*.py"},
		[]string{"**/__pycache__/**"},
		0)
	require.NoError(t, err)

	assert.True(t, d.Matches("main.py"), "root files match **/ patterns")
	assert.True(t, d.Matches("pkg/nested/mod.py"))
	assert.False(t, d.Matches("pkg/__pycache__/mod.py"))
	assert.False(t, d.Matches("README.md"))
	assert.False(t, d.Matches(".pysiglens/config.yml"))
}
