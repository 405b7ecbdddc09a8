package term

import (
	"strings"
)

// MaxActivities is the number of recent activities retained for display.
const MaxActivities = 10

// ActivityKind classifies an agent action recognized in terminal output.
type ActivityKind string

const (
	ActivityRead       ActivityKind = "Read"
	ActivityEdit       ActivityKind = "Edit"
	ActivityWrite      ActivityKind = "Write"
	ActivityShell      ActivityKind = "Bash"
	ActivitySearch     ActivityKind = "Grep"
	ActivityGlob       ActivityKind = "Glob"
	ActivityTodoUpdate ActivityKind = "TodoWrite"
)

// Activity is one recognized agent action. Equality on (Kind, Target) is
// what de-duplication uses.
type Activity struct {
	Kind   ActivityKind
	Target string
}

// maxTargetLen caps the extracted target so a single noisy line cannot blow
// up the activity list display.
const maxTargetLen = 100

// activityPattern maps an activity kind to the trigger substrings that
// announce it in agent output. Order matters: the first trigger that matches
// in a line wins and the rest of the table is skipped for that line.
type activityPattern struct {
	kind     ActivityKind
	triggers []string
}

var activityPatterns = []activityPattern{
	{ActivityRead, []string{"reading ", "read file", "read("}},
	{ActivityEdit, []string{"editing ", "edit file", "edit("}},
	{ActivityWrite, []string{"writing ", "write file", "write("}},
	{ActivityShell, []string{"running ", "$ ", "bash(", "executing "}},
	{ActivitySearch, []string{"searching ", "grep(", "grep for"}},
	{ActivityGlob, []string{"finding files", "glob(", "globbing"}},
	{ActivityTodoUpdate, []string{"updating todos", "todowrite(", "adding todo"}},
}

// ParseActivities scans text line by line for tool-call patterns and returns
// the activities found, de-duplicated by (kind, target). It is a pure
// function: identical input always yields identical output, and at most one
// activity is emitted per line.
func ParseActivities(text string) []Activity {
	var activities []Activity

	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)

	patterns:
		for _, p := range activityPatterns {
			for _, trigger := range p.triggers {
				pos := strings.Index(lower, trigger)
				if pos < 0 {
					continue
				}
				target := extractTarget(line, pos+len(trigger))
				if target != "" {
					a := Activity{Kind: p.kind, Target: target}
					if !containsActivity(activities, a) {
						activities = append(activities, a)
					}
				}
				break patterns
			}
		}
	}

	return activities
}

// extractTarget takes the text following a trigger match, trims surrounding
// quotes and whitespace, cuts at the first line break and caps the length.
// start is a byte offset into the lowercased line; because lowercasing ASCII
// trigger text never changes byte lengths of the runes involved, slicing the
// original line at a rune boundary is ensured by re-checking validity.
func extractTarget(line string, start int) string {
	if start > len(line) {
		return ""
	}
	// Back off to a rune boundary if lowercasing shifted widths (e.g. İ).
	for start < len(line) && start > 0 && !utf8RuneStart(line[start]) {
		start++
	}
	after := line[start:]
	after = strings.TrimSpace(after)
	after = strings.Trim(after, "\"'`")
	if i := strings.IndexAny(after, "\r\n"); i >= 0 {
		after = after[:i]
	}
	runes := []rune(after)
	if len(runes) > maxTargetLen {
		runes = runes[:maxTargetLen]
	}
	return string(runes)
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func containsActivity(list []Activity, a Activity) bool {
	for _, existing := range list {
		if existing == a {
			return true
		}
	}
	return false
}

// Format renders the activity for display, truncating the target from the
// left when it exceeds maxWidth so the filename tail stays visible.
func (a Activity) Format(maxWidth int) string {
	prefix := string(a.Kind) + ": "
	available := maxWidth - len(prefix)
	if available < 0 {
		available = 0
	}
	runes := []rune(a.Target)
	if len(runes) <= available {
		return prefix + a.Target
	}
	keep := available - 3
	if keep < 0 {
		keep = 0
	}
	return prefix + "..." + string(runes[len(runes)-keep:])
}
