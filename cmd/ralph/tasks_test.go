package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTask(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, "tasks", name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prd.json"), []byte(content), 0o644))
}

const taskPRD = `{"schemaVersion":"2.2","project":"p","taskDir":"t","type":"feature",
 "description":"A sample task","userStories":[
   {"id":"US-001","title":"a","description":"","acceptanceCriteria":[],"priority":1,"passes":true,"notes":""},
   {"id":"US-002","title":"b","description":"","acceptanceCriteria":[],"priority":2,"passes":false,"notes":""}]}`

func TestFindActiveTasks(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)

	writeTask(t, root, "beta", taskPRD)
	writeTask(t, root, "alpha", taskPRD)
	writeTask(t, root, "archived", taskPRD)
	// Directory without a prd.json is not a task.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "tasks", "empty"), 0o755))

	tasks := findActiveTasks()
	assert.Equal(t, []string{
		filepath.Join("tasks", "alpha"),
		filepath.Join("tasks", "beta"),
	}, tasks)
}

func TestFindActiveTasksNoTasksDir(t *testing.T) {
	t.Chdir(t.TempDir())
	assert.Empty(t, findActiveTasks())
}

func TestSelectTask(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)
	writeTask(t, root, "alpha", taskPRD)
	writeTask(t, root, "beta", taskPRD)

	var out strings.Builder
	task, err := selectTask(strings.NewReader("2\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("tasks", "beta"), task)
	assert.Contains(t, out.String(), "[1/2] (feature)")
	assert.Contains(t, out.String(), "A sample task")
}

func TestSelectTaskInvalidInput(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)
	writeTask(t, root, "alpha", taskPRD)

	var out strings.Builder
	_, err := selectTask(strings.NewReader("7\n"), &out)
	assert.Error(t, err)

	_, err = selectTask(strings.NewReader("not a number\n"), &out)
	assert.Error(t, err)
}

func TestNudgeRotationThreshold(t *testing.T) {
	dir := t.TempDir()

	// No progress file: keep current without prompting.
	var out strings.Builder
	assert.Equal(t, 300, nudgeRotationThreshold(strings.NewReader(""), &out, dir, 300))
	assert.Empty(t, out.String())

	// Small file: no prompt either.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "progress.txt"), []byte("a\nb\n"), 0o644))
	assert.Equal(t, 300, nudgeRotationThreshold(strings.NewReader(""), &out, dir, 300))
	assert.Empty(t, out.String())

	// Large file: prompt, accept a new value.
	big := strings.Repeat("line\n", 200)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "progress.txt"), []byte(big), 0o644))
	assert.Equal(t, 500, nudgeRotationThreshold(strings.NewReader("500\n"), &out, dir, 300))
	assert.Contains(t, out.String(), "200 lines")

	// Empty input keeps the current threshold.
	assert.Equal(t, 300, nudgeRotationThreshold(strings.NewReader("\n"), &out, dir, 300))
}
