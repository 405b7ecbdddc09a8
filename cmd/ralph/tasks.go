package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rilesc555/ralph-claude/internal/prd"
	"github.com/rilesc555/ralph-claude/internal/progress"
)

// findActiveTasks lists ./tasks subdirectories that contain a prd.json,
// skipping the archived directory.
func findActiveTasks() []string {
	entries, err := os.ReadDir("tasks")
	if err != nil {
		return nil
	}

	var tasks []string
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "archived" {
			continue
		}
		dir := filepath.Join("tasks", e.Name())
		if _, err := os.Stat(filepath.Join(dir, prd.FileName)); err == nil {
			tasks = append(tasks, dir)
		}
	}
	sort.Strings(tasks)
	return tasks
}

// selectTask prompts the user to pick from the active tasks.
func selectTask(in io.Reader, out io.Writer) (string, error) {
	tasks := findActiveTasks()
	if len(tasks) == 0 {
		return "", fmt.Errorf("no task directory given and no tasks/*/%s found", prd.FileName)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Active tasks:")
	fmt.Fprintln(out)
	for i, task := range tasks {
		desc, completed, total, prdType := taskInfo(task)
		fmt.Fprintf(out, "  %d) %-35s [%d/%d] (%s)\n", i+1, task, completed, total, prdType)
		if desc != "" {
			fmt.Fprintf(out, "     %s\n", desc)
		}
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Select task [1-%d]: ", len(tasks))

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read selection: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 || n > len(tasks) {
		return "", fmt.Errorf("invalid selection %q", strings.TrimSpace(line))
	}

	fmt.Fprintf(out, "\nSelected: %s\n\n", tasks[n-1])
	return tasks[n-1], nil
}

// taskInfo summarizes a task directory for the selection list.
func taskInfo(taskDir string) (desc string, completed, total int, prdType string) {
	doc, err := prd.Load(filepath.Join(taskDir, prd.FileName))
	if err != nil {
		return "unable to parse " + prd.FileName, 0, 0, "unknown"
	}
	desc = doc.Description
	if len(desc) > 50 {
		desc = desc[:50]
	}
	return desc, doc.CompletedCount(), len(doc.UserStories), doc.Type
}

// nudgeRotationThreshold offers a chance to adjust the rotation threshold
// when the live progress log is already large. Empty input keeps current.
func nudgeRotationThreshold(in io.Reader, out io.Writer, taskDir string, current int) int {
	data, err := os.ReadFile(filepath.Join(taskDir, progress.LiveFileName))
	if err != nil {
		return current
	}
	lines := strings.Count(string(data), "\n")
	if lines < current/2 {
		return current
	}

	fmt.Fprintf(out, "\nProgress file has %d lines (rotation threshold: %d)\n", lines, current)
	fmt.Fprintf(out, "Rotation threshold [%d]: ", current)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return current
	}
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return current
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 1 {
		fmt.Fprintf(out, "Invalid number. Using %d.\n", current)
		return current
	}
	return n
}
