package pty

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rilesc555/ralph-claude/internal/config"
	"github.com/rilesc555/ralph-claude/internal/term"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// shellConfig runs sh -c <script>; the prompt argument lands in $0 and is
// ignored by the script.
func shellConfig(t *testing.T, script string) *config.Config {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cfg := config.DefaultConfig()
	cfg.Agent.Command = "sh"
	cfg.Agent.Args = []string{"-c", script}
	cfg.Terminal.Rows = 24
	cfg.Terminal.Cols = 80
	return cfg
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestSpawnFeedsOutputAndMarksExit(t *testing.T) {
	cfg := shellConfig(t, "printf 'hello from agent'")
	state := term.NewState(24, 80, term.DefaultSignals())

	s, err := Spawn(cfg, "prompt text", 1, state)
	require.NoError(t, err)
	defer s.Teardown()

	require.True(t, waitFor(t, 5*time.Second, state.ChildExited), "child should exit")
	assert.Contains(t, state.RecentOutput(), "hello from agent")
}

func TestSpawnForcesColorEnvironment(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	cfg := shellConfig(t, `printf 'TERM=%s FORCE=%s CT=%s NC=%s' "$TERM" "$FORCE_COLOR" "$COLORTERM" "${NO_COLOR-unset}"`)
	state := term.NewState(24, 80, term.DefaultSignals())

	s, err := Spawn(cfg, "p", 1, state)
	require.NoError(t, err)
	defer s.Teardown()

	require.True(t, waitFor(t, 5*time.Second, state.ChildExited))
	out := state.RecentOutput()
	assert.Contains(t, out, "TERM=xterm-256color")
	assert.Contains(t, out, "FORCE=1")
	assert.Contains(t, out, "CT=truecolor")
	assert.Contains(t, out, "NC=unset")
}

func TestSpawnResetsStateBetweenIterations(t *testing.T) {
	cfg := shellConfig(t, "printf 'second run'")
	state := term.NewState(24, 80, term.DefaultSignals())
	state.AppendOutput([]byte("leftover from iteration one"))
	state.MarkExited()

	s, err := Spawn(cfg, "p", 2, state)
	require.NoError(t, err)
	defer s.Teardown()

	require.True(t, waitFor(t, 5*time.Second, state.ChildExited))
	assert.NotContains(t, state.RecentOutput(), "leftover")
	assert.Contains(t, state.RecentOutput(), "second run")
}

func TestWriteReachesChildStdin(t *testing.T) {
	cfg := shellConfig(t, "read line; printf 'got:%s' \"$line\"")
	state := term.NewState(24, 80, term.DefaultSignals())

	s, err := Spawn(cfg, "p", 1, state)
	require.NoError(t, err)
	defer s.Teardown()

	_, err = s.Write([]byte("ping\r"))
	require.NoError(t, err)

	require.True(t, waitFor(t, 5*time.Second, func() bool {
		return strings.Contains(state.RecentOutput(), "got:ping")
	}), "echoed input should appear in output, got: %q", state.RecentOutput())
}

func TestTeardownKillsRunningChild(t *testing.T) {
	cfg := shellConfig(t, "sleep 60")
	state := term.NewState(24, 80, term.DefaultSignals())

	s, err := Spawn(cfg, "p", 1, state)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s.Teardown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("teardown did not finish")
	}
	assert.True(t, state.ChildExited())
}

func TestSpawnMissingBinary(t *testing.T) {
	cfg := shellConfig(t, "")
	cfg.Agent.Command = "definitely-not-a-real-binary-xyz"
	cfg.Agent.Args = nil
	state := term.NewState(24, 80, term.DefaultSignals())

	_, err := Spawn(cfg, "p", 1, state)
	assert.Error(t, err)
}
