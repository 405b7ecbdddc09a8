// Package prompt builds the instruction text handed to the agent at the
// start of every iteration.
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed prompt.md
var embeddedPrompt string

// FindContent locates the prompt template, preferring a project-local
// override, then the user's global config, then the embedded default.
// The returned source is the path the content came from, or "" for the
// embedded fallback.
func FindContent() (content string, source string) {
	local := filepath.Join("ralph", "prompt.md")
	if data, err := os.ReadFile(local); err == nil {
		return string(data), local
	}

	if home, err := os.UserHomeDir(); err == nil {
		global := filepath.Join(home, ".config", "ralph", "prompt.md")
		if data, err := os.ReadFile(global); err == nil {
			return string(data), global
		}
	}

	return embeddedPrompt, ""
}

// Build assembles the full iteration prompt: a header pointing the agent at
// the task directory, PRD file and progress file, followed by the template.
func Build(taskDir string) string {
	content, _ := FindContent()
	return BuildWith(taskDir, content)
}

// BuildWith is Build with an explicit template, for callers that already
// resolved the content.
func BuildWith(taskDir, content string) string {
	return fmt.Sprintf(
		"# Ralph Agent Instructions\n\n"+
			"Task Directory: %s\n"+
			"PRD File: %s\n"+
			"Progress File: %s\n\n%s",
		taskDir,
		filepath.Join(taskDir, "prd.json"),
		filepath.Join(taskDir, "progress.txt"),
		content,
	)
}
