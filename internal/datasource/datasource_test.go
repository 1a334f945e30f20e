package datasource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/appseeds/api"
)

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
}

func TestDirectory_Missing(t *testing.T) {
	_, err := Directory(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrInvalidConfiguration)
}

func TestDirectory_File(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.yml")
	require.NoError(t, os.WriteFile(f, []byte("a: 1\n"), 0o644))
	_, err := Directory(f)
	assert.ErrorIs(t, err, api.ErrInvalidConfiguration)
}

func TestSource_Datasets(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "level_1/level_2/level_3", "test_data_set", "other/level_2")

	src, err := Directory(root)
	require.NoError(t, err)

	names, err := src.Datasets()
	require.NoError(t, err)
	assert.Equal(t, []string{"level_1", "level_2", "level_3", "other", "test_data_set"}, names)
}

func TestSource_WalkDirsOrder(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "b/inner", "a")

	src, err := Directory(root)
	require.NoError(t, err)

	var seen []string
	require.NoError(t, src.WalkDirs(func(dir string) error {
		seen = append(seen, filepath.ToSlash(dir))
		return nil
	}))
	assert.Equal(t, []string{"a", "b", "b/inner"}, seen)
}

func TestSource_Files(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "set/sub")
	for _, f := range []string{"set/people.yml", "set/_config.yml", "set/companies.yml"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, f), []byte{}, 0o644))
	}

	src, err := Directory(root)
	require.NoError(t, err)

	files, err := src.Files("set")
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "set/_config.yml", filepath.ToSlash(files[0]))
	assert.Equal(t, "set/companies.yml", filepath.ToSlash(files[1]))
}

func TestPackage(t *testing.T) {
	base := t.TempDir()
	mkdirs(t, base, filepath.Join("my_seeds", "seeds", "demo"))

	src, err := Package("my_seeds", filepath.Join(base, "missing"), base)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "my_seeds", "seeds"), src.Root)

	_, err = Package("other_seeds", base)
	assert.ErrorIs(t, err, api.ErrInvalidConfiguration)
}
