package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFlagSetConsume(t *testing.T) {
	var f Flag
	assert.False(t, f.Consume())

	f.Set()
	assert.True(t, f.Consume())
	assert.False(t, f.Consume(), "consume clears the flag")
}

func waitForFlag(t *testing.T, f *Flag) bool {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if f.Consume() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestWatcherFlagsPRDWrite(t *testing.T) {
	dir := t.TempDir()
	prdPath := filepath.Join(dir, "prd.json")
	require.NoError(t, os.WriteFile(prdPath, []byte("{}"), 0o644))

	var flag Flag
	w, err := Start(prdPath, &flag)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(prdPath, []byte(`{"x":1}`), 0o644))
	assert.True(t, waitForFlag(t, &flag), "write to prd.json should set the flag")
}

func TestWatcherFlagsAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	prdPath := filepath.Join(dir, "prd.json")
	require.NoError(t, os.WriteFile(prdPath, []byte("{}"), 0o644))

	var flag Flag
	w, err := Start(prdPath, &flag)
	require.NoError(t, err)
	defer w.Close()

	// Editors commonly write a temp file and rename it over the target.
	tmp := filepath.Join(dir, "prd.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"x":2}`), 0o644))
	require.NoError(t, os.Rename(tmp, prdPath))

	assert.True(t, waitForFlag(t, &flag), "rename onto prd.json should set the flag")
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	prdPath := filepath.Join(dir, "prd.json")
	require.NoError(t, os.WriteFile(prdPath, []byte("{}"), 0o644))

	var flag Flag
	w, err := Start(prdPath, &flag)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.False(t, flag.Consume(), "unrelated sibling writes should not set the flag")
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prd.json")
	assert.False(t, Exists(path))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	assert.True(t, Exists(path))
}
