// Package term owns the shared terminal-emulation state for one agent
// subprocess: what the agent recently wrote, whether it is still alive, and
// the heuristic signals and activities extracted from that output. A single
// State value is shared between the PTY reader goroutine and the control
// loop and is safe for concurrent use.
package term

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/hinshun/vt10x"
)

const (
	// maxRecentOutput caps the retained raw output buffer.
	maxRecentOutput = 10 * 1024
	// trimTarget is where the front of the buffer is cut back to (at the
	// nearest rune boundary) once the cap is exceeded.
	trimTarget = 8 * 1024
)

// State is the single source of truth for "what did the agent just output"
// and "is it still alive". All methods hold the internal mutex for the
// duration of a single buffer or flag operation; no file or terminal I/O
// happens under the lock.
type State struct {
	mu sync.Mutex

	vt      vt10x.Terminal
	rows    int
	cols    int
	signals Signals

	childExited  bool
	recentOutput strings.Builder

	activities []Activity
	// scanOffset marks how much of recentOutput has already been through
	// the activity extractor. Invariant: scanOffset <= recentOutput.Len().
	scanOffset int
}

// NewState creates terminal state with an emulator sized to rows x cols.
func NewState(rows, cols int, signals Signals) *State {
	return &State{
		vt:      vt10x.New(vt10x.WithSize(cols, rows)),
		rows:    rows,
		cols:    cols,
		signals: signals,
	}
}

// Feed processes one chunk of raw PTY output: the bytes go through the
// terminal emulator and are appended to the retained output buffer under a
// single lock acquisition so the two views cannot interleave.
func (s *State) Feed(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.vt.Write(data)
	s.appendOutputLocked(data)
}

// AppendOutput appends raw bytes to the retained output buffer without
// feeding the emulator. Invalid UTF-8 chunks are skipped rather than
// decoded lossily, matching the completion-marker matching semantics.
func (s *State) AppendOutput(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendOutputLocked(data)
}

func (s *State) appendOutputLocked(data []byte) {
	if !utf8.Valid(data) {
		return
	}
	s.recentOutput.WriteString(string(data))
	if s.recentOutput.Len() <= maxRecentOutput {
		return
	}
	kept := s.recentOutput.String()
	start := len(kept) - trimTarget
	// Advance to the next rune boundary so the buffer never begins
	// mid-character.
	for start < len(kept) && !utf8.RuneStart(kept[start]) {
		start++
	}
	trimmed := kept[start:]
	s.recentOutput.Reset()
	s.recentOutput.WriteString(trimmed)
	s.scanOffset -= start
	if s.scanOffset < 0 {
		s.scanOffset = 0
	}
}

// RecentOutput returns a copy of the retained raw output.
func (s *State) RecentOutput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recentOutput.String()
}

// ClearRecentOutput empties the buffer, the activity list and the scan
// offset. Called at the start of every iteration so stale signals cannot
// leak across restarts.
func (s *State) ClearRecentOutput() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recentOutput.Reset()
	s.activities = nil
	s.scanOffset = 0
}

// Reset clears all state and replaces the emulator with a fresh instance
// sized to rows x cols, so a new iteration never sees the previous
// iteration's screen.
func (s *State) Reset(rows, cols int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vt = vt10x.New(vt10x.WithSize(cols, rows))
	s.rows = rows
	s.cols = cols
	s.childExited = false
	s.recentOutput.Reset()
	s.activities = nil
	s.scanOffset = 0
}

// Resize resizes the terminal emulator. The caller is responsible for
// keeping the PTY device in sync.
func (s *State) Resize(rows, cols int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
	s.cols = cols
	s.vt.Resize(cols, rows)
}

// MarkExited records that the child process closed its side of the PTY.
func (s *State) MarkExited() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.childExited = true
}

// ChildExited reports whether the reader observed EOF or a read error.
func (s *State) ChildExited() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.childExited
}

// HasCompletionSignal reports whether the retained output contains the
// literal completion marker.
func (s *State) HasCompletionSignal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signals.HasCompletion(s.recentOutput.String())
}

// HasStopHookSignal reports whether a stop-hook phrase is present in the
// raw buffer or on the rendered screen.
func (s *State) HasStopHookSignal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signals.HasStopHook(s.recentOutput.String(), s.screenRowsLocked())
}

// ScreenRows returns the rendered terminal screen as one string per row,
// with trailing whitespace removed.
func (s *State) ScreenRows() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screenRowsLocked()
}

func (s *State) screenRowsLocked() []string {
	rows := strings.Split(s.vt.String(), "\n")
	for i, row := range rows {
		rows[i] = strings.TrimRight(row, " \t")
	}
	// The emulator's String() ends each row with a newline; drop the empty
	// trailing element that produces.
	if n := len(rows); n > 0 && rows[n-1] == "" {
		rows = rows[:n-1]
	}
	return rows
}

// Size returns the emulator dimensions.
func (s *State) Size() (rows, cols int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows, s.cols
}

// UpdateActivities runs the activity extractor over the not-yet-scanned
// suffix of the output buffer, merges new entries (skipping duplicates
// already present), trims to the most recent MaxActivities and advances the
// scan offset. Safe to call every UI tick; it is a no-op when no new bytes
// arrived.
func (s *State) UpdateActivities() {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := s.recentOutput.String()
	if len(buf) <= s.scanOffset {
		return
	}
	if s.scanOffset > len(buf) {
		// Offset outlived a trim; rescan from the start.
		s.scanOffset = 0
	}
	for s.scanOffset < len(buf) && !utf8.RuneStart(buf[s.scanOffset]) {
		s.scanOffset++
	}

	for _, a := range ParseActivities(buf[s.scanOffset:]) {
		if !containsActivity(s.activities, a) {
			s.activities = append(s.activities, a)
		}
	}
	if excess := len(s.activities) - MaxActivities; excess > 0 {
		s.activities = s.activities[excess:]
	}
	s.scanOffset = len(buf)
}

// Activities returns the tracked activities, newest first.
func (s *State) Activities() []Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Activity, len(s.activities))
	for i, a := range s.activities {
		out[len(s.activities)-1-i] = a
	}
	return out
}
