package term

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActivitiesBasic(t *testing.T) {
	text := "Reading src/main.go\nEditing src/lib.go"
	got := ParseActivities(text)

	want := []Activity{
		{Kind: ActivityRead, Target: "src/main.go"},
		{Kind: ActivityEdit, Target: "src/lib.go"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseActivities mismatch (-want +got):\n%s", diff)
	}
}

func TestParseActivitiesFirstTriggerWins(t *testing.T) {
	// The line matches both a Read trigger and a Shell trigger; only the
	// first in table order may emit.
	got := ParseActivities("reading config while running tests")
	require.Len(t, got, 1)
	assert.Equal(t, ActivityRead, got[0].Kind)
}

func TestParseActivitiesOnePerLine(t *testing.T) {
	got := ParseActivities("Bash(go test ./...)\nGrep(TODO)")
	require.Len(t, got, 2)
	assert.Equal(t, ActivityShell, got[0].Kind)
	assert.Equal(t, "go test ./...)", got[0].Target)
	assert.Equal(t, ActivitySearch, got[1].Kind)
}

func TestParseActivitiesDeduplicates(t *testing.T) {
	got := ParseActivities("Reading file.go\nReading file.go")
	assert.Len(t, got, 1)
}

func TestParseActivitiesTrimsQuotesAndCaps(t *testing.T) {
	got := ParseActivities(`Writing "docs/notes.md"`)
	require.Len(t, got, 1)
	assert.Equal(t, "docs/notes.md", got[0].Target)

	long := "Reading " + repeat('x', 300)
	got = ParseActivities(long)
	require.Len(t, got, 1)
	assert.Len(t, []rune(got[0].Target), 100)
}

func TestParseActivitiesEmptyTargetSkipped(t *testing.T) {
	assert.Empty(t, ParseActivities("reading "))
}

func TestParseActivitiesPure(t *testing.T) {
	text := "Reading a.go\nrunning go vet\nglob(**/*.go)"
	first := ParseActivities(text)
	second := ParseActivities(text)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("ParseActivities not deterministic (-first +second):\n%s", diff)
	}
}

func TestActivityFormatTruncation(t *testing.T) {
	a := Activity{Kind: ActivityRead, Target: "very/long/path/to/some/file.go"}
	formatted := a.Format(20)
	assert.LessOrEqual(t, len(formatted), 23)
	assert.Contains(t, formatted, "Read: ")
	assert.Contains(t, formatted, "...")
}

func repeat(r rune, n int) string {
	runes := make([]rune, n)
	for i := range runes {
		runes[i] = r
	}
	return string(runes)
}
