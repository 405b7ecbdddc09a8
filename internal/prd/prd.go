// Package prd loads and queries the prd.json task document: the project
// description, branch settings and the ordered list of user stories whose
// pass/fail flags drive iteration completion.
package prd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the task document inside a task directory.
const FileName = "prd.json"

// AcceptanceCriterion supports both the v1 schema (a plain string, treated
// as not passing) and the v2 schema (an object with description and passes).
type AcceptanceCriterion struct {
	Description string
	Passes      bool
}

// UnmarshalJSON accepts either a JSON string or an object form.
func (c *AcceptanceCriterion) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Description = s
		c.Passes = false
		return nil
	}

	var obj struct {
		Description string `json:"description"`
		Passes      bool   `json:"passes"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("acceptance criterion must be a string or object: %w", err)
	}
	c.Description = obj.Description
	c.Passes = obj.Passes
	return nil
}

// MarshalJSON always emits the v2 object form.
func (c AcceptanceCriterion) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Description string `json:"description"`
		Passes      bool   `json:"passes"`
	}{c.Description, c.Passes})
}

// UserStory is one work item with pass/fail state and sub-criteria.
type UserStory struct {
	ID                 string                `json:"id"`
	Title              string                `json:"title"`
	Description        string                `json:"description"`
	AcceptanceCriteria []AcceptanceCriterion `json:"acceptanceCriteria"`
	Priority           int                   `json:"priority"`
	Passes             bool                  `json:"passes"`
	Notes              string                `json:"notes"`
}

// Document is the parsed prd.json.
type Document struct {
	SchemaVersion string      `json:"schemaVersion"`
	Project       string      `json:"project"`
	TaskDir       string      `json:"taskDir"`
	BranchName    *string     `json:"branchName"`
	MergeTarget   *string     `json:"mergeTarget"`
	AutoMerge     bool        `json:"autoMerge"`
	PauseOnStop   bool        `json:"pauseBetweenStories"`
	Type          string      `json:"type"`
	Description   string      `json:"description"`
	UserStories   []UserStory `json:"userStories"`
}

// Load reads and parses a prd.json file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if doc.SchemaVersion == "" {
		doc.SchemaVersion = "1.0"
	}
	return &doc, nil
}

// CompletedCount returns how many stories pass.
func (d *Document) CompletedCount() int {
	n := 0
	for _, s := range d.UserStories {
		if s.Passes {
			n++
		}
	}
	return n
}

// AllStoriesPass reports whether every story passes. An empty story list is
// never "complete".
func (d *Document) AllStoriesPass() bool {
	if len(d.UserStories) == 0 {
		return false
	}
	for _, s := range d.UserStories {
		if !s.Passes {
			return false
		}
	}
	return true
}

// CurrentStory returns the failing story with the lowest priority number,
// or nil when everything passes.
func (d *Document) CurrentStory() *UserStory {
	var current *UserStory
	for i := range d.UserStories {
		s := &d.UserStories[i]
		if s.Passes {
			continue
		}
		if current == nil || s.Priority < current.Priority {
			current = s
		}
	}
	return current
}

// CriteriaProgress returns per-criterion completion as a percentage, which
// is more granular than story-level tracking.
func (d *Document) CriteriaProgress() float64 {
	total, passed := 0, 0
	for _, s := range d.UserStories {
		for _, c := range s.AcceptanceCriteria {
			total++
			if c.Passes {
				passed++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(passed) / float64(total) * 100
}
