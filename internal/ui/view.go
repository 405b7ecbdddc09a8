// Package ui renders the ralph screen: header, story sidebar, recent
// activities, the agent's terminal pane and the key footer.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/rilesc555/ralph-claude/internal/prd"
	"github.com/rilesc555/ralph-claude/internal/term"
)

// InputMode says which panel owns the keyboard.
type InputMode int

const (
	// ModeRalph keeps keys for navigation (default).
	ModeRalph InputMode = iota
	// ModeClaude forwards keys to the agent's terminal.
	ModeClaude
)

func (m InputMode) String() string {
	if m == ModeClaude {
		return "Claude"
	}
	return "Ralph"
}

// Snapshot is everything the renderer needs for one frame, sampled by the
// engine so rendering stays a pure function of its input.
type Snapshot struct {
	Width  int
	Height int

	SessionID        string
	StateLabel       string
	Iteration        int
	MaxIterations    int
	SessionElapsed   time.Duration
	IterationElapsed time.Duration
	SpinnerView      string

	Doc           *prd.Document
	SortMode      StorySortMode
	SelectedIndex int
	ShowDetail    bool

	Activities []term.Activity
	ScreenRows []string

	InputMode      InputMode
	DelayRemaining time.Duration
	StopReason     string
	Err            error
}

// UI holds the stateful pieces of rendering: styles, the markdown renderer
// for story details and the criteria progress bar.
type UI struct {
	theme Theme
	md    *glamour.TermRenderer
	bar   progress.Model
}

// New builds a UI sized for the given detail-pane width.
func New(detailWidth int) *UI {
	if detailWidth < 20 {
		detailWidth = 20
	}
	md, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(detailWidth),
	)
	bar := progress.New(progress.WithDefaultGradient())
	bar.ShowPercentage = true
	return &UI{theme: DefaultTheme(), md: md, bar: bar}
}

// Render draws the full frame.
func (u *UI) Render(s Snapshot) string {
	if s.Width < 20 || s.Height < 8 {
		return "terminal too small"
	}

	header := u.renderHeader(s)
	footer := u.renderFooter(s)
	bodyHeight := s.Height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	sidebarWidth := s.Width * 30 / 100
	if sidebarWidth < 24 {
		sidebarWidth = 24
	}
	mainWidth := s.Width - sidebarWidth

	sidebar := u.renderSidebar(s, sidebarWidth-2, bodyHeight-2)
	var main string
	if s.ShowDetail {
		main = u.renderStoryDetail(s, mainWidth-2, bodyHeight-2)
	} else {
		main = u.renderTerminal(s, mainWidth-2, bodyHeight-2)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		u.theme.Sidebar.Width(sidebarWidth-2).Height(bodyHeight-2).Render(sidebar),
		u.theme.Terminal.Width(mainWidth-2).Height(bodyHeight-2).Render(main),
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (u *UI) renderHeader(s Snapshot) string {
	state := s.StateLabel
	switch s.StateLabel {
	case "Running":
		state = u.theme.StateRunning.Render(s.SpinnerView + " Running")
	case "Completed":
		state = u.theme.StateDone.Render("Completed")
	default:
		state = u.theme.StateWaiting.Render(s.StateLabel)
	}
	if s.DelayRemaining > 0 {
		state += u.theme.Footer.Render(fmt.Sprintf(" (next in %ds)", int(s.DelayRemaining.Seconds())+1))
	}

	left := fmt.Sprintf("%s  iter %d/%d  %s",
		u.theme.HeaderAccent.Render("ralph "+s.SessionID),
		s.Iteration, s.MaxIterations,
		state,
	)
	right := fmt.Sprintf("iter %s  session %s",
		FormatDuration(s.IterationElapsed),
		FormatDuration(s.SessionElapsed),
	)

	gap := s.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return u.theme.Header.Width(s.Width).Render(left + strings.Repeat(" ", gap) + right)
}

func (u *UI) renderSidebar(s Snapshot, width, height int) string {
	if s.Doc == nil {
		return u.theme.StoryPending.Render("no prd.json loaded")
	}

	var b strings.Builder
	total := len(s.Doc.UserStories)
	fmt.Fprintf(&b, "Stories %d/%d  [%s]\n", s.Doc.CompletedCount(), total, s.SortMode.Label())
	b.WriteString(u.bar.ViewAs(s.Doc.CriteriaProgress()/100) + "\n\n")

	stories := SortStories(s.Doc.UserStories, s.SortMode)
	current := s.Doc.CurrentStory()
	for i, story := range stories {
		var style lipgloss.Style
		glyph := "[ ]"
		switch {
		case story.Passes:
			style, glyph = u.theme.StoryDone, "[x]"
		case current != nil && story.ID == current.ID:
			style, glyph = u.theme.StoryActive, "[>]"
		default:
			style = u.theme.StoryPending
		}
		line := style.Render(fmt.Sprintf("%s %s %s", glyph, story.ID, Truncate(story.Title, width-12)))
		if i == s.SelectedIndex {
			line = u.theme.Selected.Render(line)
		}
		b.WriteString(line + "\n")
	}

	if len(s.Activities) > 0 {
		b.WriteString("\n" + u.theme.ActivityKind.Render("Recent") + "\n")
		max := height - total - 6
		for i, a := range s.Activities {
			if i >= max && max > 0 {
				break
			}
			b.WriteString(u.theme.Activity.Render(Truncate(a.Format(width), width)) + "\n")
		}
	}
	return b.String()
}

func (u *UI) renderStoryDetail(s Snapshot, width, height int) string {
	stories := SortStories(s.Doc.UserStories, s.SortMode)
	if s.SelectedIndex < 0 || s.SelectedIndex >= len(stories) {
		return "no story selected"
	}
	story := stories[s.SelectedIndex]

	var md strings.Builder
	fmt.Fprintf(&md, "# %s: %s\n\n", story.ID, story.Title)
	fmt.Fprintf(&md, "Priority %d\n\n", story.Priority)
	if story.Description != "" {
		md.WriteString(story.Description + "\n\n")
	}
	md.WriteString("## Acceptance Criteria\n\n")
	for _, c := range story.AcceptanceCriteria {
		mark := " "
		if c.Passes {
			mark = "x"
		}
		fmt.Fprintf(&md, "- [%s] %s\n", mark, c.Description)
	}
	if story.Notes != "" {
		md.WriteString("\n## Notes\n\n" + story.Notes + "\n")
	}

	out, err := u.md.Render(md.String())
	if err != nil {
		return md.String()
	}
	return clampLines(out, height)
}

func (u *UI) renderTerminal(s Snapshot, width, height int) string {
	rows := s.ScreenRows
	if len(rows) > height {
		rows = rows[len(rows)-height:]
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = Truncate(row, width)
	}
	return strings.Join(lines, "\n")
}

func (u *UI) renderFooter(s Snapshot) string {
	if s.Err != nil {
		return u.theme.Error.Render("error: " + s.Err.Error())
	}
	if s.StopReason != "" {
		return u.theme.Footer.Render(s.StopReason + "  ") + u.theme.FooterKey.Render("q") + u.theme.Footer.Render(" quit")
	}

	key := u.theme.FooterKey.Render
	dim := u.theme.Footer.Render
	var parts []string
	if s.InputMode == ModeClaude {
		parts = []string{
			dim("mode ") + key("Claude") + dim(" (keys go to agent)"),
			key("ctrl+]") + dim(" back to ralph"),
		}
	} else {
		parts = []string{
			dim("mode ") + key("Ralph"),
			key("tab") + dim(" agent input"),
			key("↑/↓") + dim(" select"),
			key("enter") + dim(" detail"),
			key("s") + dim(" sort: "+s.SortMode.Label()),
			key("q") + dim(" quit"),
		}
	}
	return u.theme.Footer.Render(strings.Join(parts, dim("  •  ")))
}

func clampLines(s string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}
