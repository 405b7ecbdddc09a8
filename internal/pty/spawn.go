// Package pty spawns the agent subprocess behind a pseudo-terminal and
// pumps its output into the shared terminal state.
package pty

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	creack "github.com/creack/pty"

	"github.com/rilesc555/ralph-claude/internal/config"
	"github.com/rilesc555/ralph-claude/internal/term"
)

// Session is one live agent subprocess: the command, the PTY master and the
// reader goroutine feeding term.State.
type Session struct {
	cmd    *exec.Cmd
	master *os.File
	done   chan struct{}
}

// Spawn starts the agent with the built prompt as its final positional
// argument, attached to a PTY of the configured size. The shared state is
// reset first so nothing from the previous iteration leaks through, then a
// goroutine reads the master until EOF and marks the state exited.
//
// The prompt goes through a temp file so shell-hostile characters survive;
// the file is removed before the function returns.
func Spawn(cfg *config.Config, promptText string, iteration int, state *term.State) (*Session, error) {
	rows, cols := cfg.Terminal.Rows, cfg.Terminal.Cols

	tmpPath := filepath.Join(os.TempDir(),
		fmt.Sprintf("ralph_prompt_%d_%d.txt", os.Getpid(), iteration))
	if err := os.WriteFile(tmpPath, []byte(promptText), 0o600); err != nil {
		return nil, fmt.Errorf("write prompt file: %w", err)
	}
	promptBytes, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read prompt file: %w", err)
	}
	_ = os.Remove(tmpPath)

	args := append([]string{}, cfg.Agent.Args...)
	if settings := cfg.ResolveSettingsPath(); settings != "" {
		args = append(args, "--settings", settings)
	}
	args = append(args, string(promptBytes))

	cmd := exec.Command(cfg.Agent.Command, args...)
	if cwd, err := os.Getwd(); err == nil {
		cmd.Dir = cwd
	}
	cmd.Env = buildEnv(os.Environ())

	state.Reset(rows, cols)

	master, err := creack.StartWithSize(cmd, &creack.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", cfg.Agent.Command, err)
	}

	s := &Session{cmd: cmd, master: master, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		buf := make([]byte, 4096)
		for {
			n, err := master.Read(buf)
			if n > 0 {
				state.Feed(buf[:n])
			}
			if err != nil {
				// EOF or a closed master both mean the child is gone.
				state.MarkExited()
				return
			}
		}
	}()

	return s, nil
}

// buildEnv forces color-capable terminal variables onto the inherited
// environment. NO_COLOR is stripped entirely; any value disables color.
func buildEnv(parent []string) []string {
	env := make([]string, 0, len(parent)+3)
	for _, kv := range parent {
		switch {
		case hasKey(kv, "TERM"), hasKey(kv, "FORCE_COLOR"),
			hasKey(kv, "COLORTERM"), hasKey(kv, "NO_COLOR"):
			continue
		}
		env = append(env, kv)
	}
	return append(env,
		"TERM=xterm-256color",
		"FORCE_COLOR=1",
		"COLORTERM=truecolor",
	)
}

func hasKey(kv, key string) bool {
	return len(kv) > len(key) && kv[len(key)] == '=' && kv[:len(key)] == key
}

// Write sends raw bytes to the agent's terminal.
func (s *Session) Write(p []byte) (int, error) {
	return s.master.Write(p)
}

// Resize resizes the PTY device. The caller keeps the emulator in sync via
// term.State.Resize.
func (s *Session) Resize(rows, cols int) error {
	return creack.Setsize(s.master, &creack.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
}

// Wait blocks until the child exits and returns its wait error.
func (s *Session) Wait() error {
	return s.cmd.Wait()
}

// Teardown stops the session: kill the child, reap it, close the master so
// the reader sees EOF, then join the reader goroutine. Safe to call after
// the child already exited.
func (s *Session) Teardown() {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	_ = s.master.Close()
	<-s.done
}
