package cfgpatch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const favoriteContent = "[General]\r\n" +
	"\"LayerMode\"=\"int:1\"\r\n" +
	"\"AOConfigfile\"=\"string:\"\"\r\n" +
	"\"Scale\"=\"double:100\"\r\n" +
	"tail-without-newline"

func writeFavorite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.nth")
	require.NoError(t, os.WriteFile(path, []byte(favoriteContent), 0o600))
	return path
}

func TestPatchRevertRoundTripIsByteExact(t *testing.T) {
	path := writeFavorite(t)

	original, err := Patch(path, `C:\cfg\layers.cfg`)
	require.NoError(t, err)
	assert.Equal(t, "\"AOConfigfile\"=\"string:\"\"", original)

	patched, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(patched), MarkerLine(`C:\cfg\layers.cfg`)+"\r\n")
	assert.Contains(t, string(patched), "\"Scale\"=\"double:100\"\r\n")

	require.NoError(t, Revert(path, original))
	reverted, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, favoriteContent, string(reverted))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestPatchWithoutMarkerLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.nth")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\n"), 0o644))

	_, err := Patch(path, "x")
	require.ErrorIs(t, err, ErrMarkerNotFound)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(data))
}

func TestPatchMissingFile(t *testing.T) {
	_, err := Patch(filepath.Join(t.TempDir(), "missing.nth"), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPatcherKeepsFirstOriginal(t *testing.T) {
	path := writeFavorite(t)
	p := NewPatcher()

	require.NoError(t, p.Acquire(path, "first.cfg"))
	require.NoError(t, p.Acquire(path, "second.cfg"))
	assert.Equal(t, []string{path}, p.Paths())

	patched, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(patched), MarkerLine("second.cfg"))

	require.NoError(t, p.ReleaseAll())
	reverted, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, favoriteContent, string(reverted))

	require.NoError(t, p.ReleaseAll())
	assert.Empty(t, p.Paths())
}

func TestPatcherAcquireRequiresTarget(t *testing.T) {
	p := NewPatcher()
	require.Error(t, p.Acquire("", "cfg"))
	assert.Empty(t, p.Paths())
}

func TestPatcherReleaseAllReportsFailures(t *testing.T) {
	path := writeFavorite(t)
	p := NewPatcher()
	require.NoError(t, p.Acquire(path, "cfg"))
	require.NoError(t, os.Remove(path))

	err := p.ReleaseAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, p.Paths())
}
