// Package progress bounds the append-only progress log. When the live file
// crosses a line threshold it is archived (shifting older archives up and
// dropping the oldest) and a fresh live file is written that keeps only the
// durable sections: the header block and the Codebase Patterns section.
package progress

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LiveFileName is the append-only log the agent writes between iterations.
const LiveFileName = "progress.txt"

// RotationConfig controls when rotation triggers and how many archives are
// kept. Immutable per run.
type RotationConfig struct {
	// Threshold is the line count at which the live file is rotated.
	Threshold int
	// MaxArchives is the number of progress-N.txt files retained.
	MaxArchives int
}

// DefaultRotationConfig matches the documented progress-log defaults.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{Threshold: 300, MaxArchives: 5}
}

// RotationOutcome discriminates RotationResult.
type RotationOutcome int

const (
	// RotationNotNeeded means the file is absent or below threshold.
	RotationNotNeeded RotationOutcome = iota
	// RotationDone means the file was archived and rewritten.
	RotationDone
	// RotationError means rotation failed; Err carries the reason.
	RotationError
)

// RotationResult reports what one rotation check did.
type RotationResult struct {
	Outcome       RotationOutcome
	OriginalLines int
	ArchivePath   string
	Err           error
}

// CheckAndRotate inspects dir/progress.txt and rotates it if it has reached
// the configured threshold. The live file is only replaced after the archive
// rename has succeeded, so a failure never leaves it truncated.
func CheckAndRotate(dir string, cfg RotationConfig) RotationResult {
	livePath := filepath.Join(dir, LiveFileName)

	content, err := os.ReadFile(livePath)
	if err != nil {
		if os.IsNotExist(err) {
			return RotationResult{Outcome: RotationNotNeeded}
		}
		return RotationResult{Outcome: RotationError, Err: fmt.Errorf("read %s: %w", LiveFileName, err)}
	}

	lineCount := countLines(string(content))
	if lineCount < cfg.Threshold {
		return RotationResult{Outcome: RotationNotNeeded}
	}

	archivePath, err := shiftArchives(dir, cfg.MaxArchives)
	if err != nil {
		return RotationResult{Outcome: RotationError, Err: fmt.Errorf("rotate archives: %w", err)}
	}

	preserved := extractPreserved(string(content))
	if err := os.WriteFile(livePath, []byte(preserved), 0o644); err != nil {
		return RotationResult{Outcome: RotationError, Err: fmt.Errorf("write new %s: %w", LiveFileName, err)}
	}

	return RotationResult{
		Outcome:       RotationDone,
		OriginalLines: lineCount,
		ArchivePath:   archivePath,
	}
}

func archiveName(i int) string {
	return fmt.Sprintf("progress-%d.txt", i)
}

// shiftArchives deletes the oldest archive, shifts the remaining ones up by
// one, and renames the live file to archive 1. Returns the archive path the
// live file moved to.
func shiftArchives(dir string, maxArchives int) (string, error) {
	oldest := filepath.Join(dir, archiveName(maxArchives))
	if _, err := os.Stat(oldest); err == nil {
		if err := os.Remove(oldest); err != nil {
			return "", err
		}
	}

	for i := maxArchives - 1; i >= 1; i-- {
		current := filepath.Join(dir, archiveName(i))
		if _, err := os.Stat(current); err != nil {
			continue
		}
		if err := os.Rename(current, filepath.Join(dir, archiveName(i+1))); err != nil {
			return "", err
		}
	}

	archivePath := filepath.Join(dir, archiveName(1))
	if err := os.Rename(filepath.Join(dir, LiveFileName), archivePath); err != nil {
		return "", err
	}
	return archivePath, nil
}

// extractPreserved keeps the header (everything through the first line that
// is exactly "---") and the Codebase Patterns section (from a line starting
// with "## Codebase Patterns" through the next "---", or a placeholder when
// absent). Dated entries are dropped; they live on in the archive.
func extractPreserved(content string) string {
	var b strings.Builder
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")

	i := 0
	for ; i < len(lines); i++ {
		b.WriteString(lines[i])
		b.WriteByte('\n')
		if lines[i] == "---" {
			i++
			break
		}
	}

	found := false
	for j := i; j < len(lines); j++ {
		if !strings.HasPrefix(lines[j], "## Codebase Patterns") {
			continue
		}
		found = true
		b.WriteByte('\n')
		for k := j; k < len(lines); k++ {
			b.WriteString(lines[k])
			b.WriteByte('\n')
			if lines[k] == "---" {
				break
			}
		}
		break
	}
	if !found {
		b.WriteString("\n## Codebase Patterns\n\n---\n")
	}

	// Trailing blank line so new entries append cleanly.
	b.WriteByte('\n')
	return b.String()
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	return len(strings.Split(strings.TrimSuffix(content, "\n"), "\n"))
}
