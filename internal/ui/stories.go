package ui

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rilesc555/ralph-claude/internal/prd"
)

// StorySortMode orders the sidebar story list.
type StorySortMode int

const (
	// SortByPriority orders by the priority field, lowest first.
	SortByPriority StorySortMode = iota
	// SortByID orders by the numeric part of the story id (US-018 -> 18).
	SortByID
)

// Toggle flips between the two sort modes.
func (m StorySortMode) Toggle() StorySortMode {
	if m == SortByPriority {
		return SortByID
	}
	return SortByPriority
}

// Label names the mode for the footer.
func (m StorySortMode) Label() string {
	if m == SortByPriority {
		return "Priority"
	}
	return "ID"
}

// SortStories returns a sorted copy of stories; the input is not modified.
func SortStories(stories []prd.UserStory, mode StorySortMode) []prd.UserStory {
	out := make([]prd.UserStory, len(stories))
	copy(out, stories)
	switch mode {
	case SortByID:
		sort.SliceStable(out, func(i, j int) bool {
			return storyNumber(out[i].ID) < storyNumber(out[j].ID)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority < out[j].Priority
		})
	}
	return out
}

// storyNumber extracts the trailing number from ids like "US-018". Ids
// without one sort first.
func storyNumber(id string) int {
	if i := strings.LastIndexByte(id, '-'); i >= 0 {
		id = id[i+1:]
	}
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0
	}
	return n
}
