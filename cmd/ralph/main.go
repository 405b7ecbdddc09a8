// ralph drives a self-restarting coding agent through the user stories of a
// task directory, inside an interactive TUI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rilesc555/ralph-claude/internal/config"
	"github.com/rilesc555/ralph-claude/internal/engine"
	"github.com/rilesc555/ralph-claude/internal/logging"
	"github.com/rilesc555/ralph-claude/internal/prd"
	"github.com/rilesc555/ralph-claude/internal/progress"
)

var (
	maxIterations   int
	rotateThreshold int
	maxArchives     int
	skipPrompts     bool
	configPath      string
)

var rootCmd = &cobra.Command{
	Use:   "ralph [task-directory]",
	Short: "Autonomous agent loop with a terminal UI",
	Long: `ralph runs a coding agent in a loop against a task directory containing
prd.json (the user stories) and progress.txt (the append-only log). Each
iteration restarts the agent with the same prompt until every story passes,
the completion marker appears, or the iteration cap is hit.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  false,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().IntVarP(&maxIterations, "iterations", "i", 10, "Maximum iterations to run")
	rootCmd.Flags().IntVar(&rotateThreshold, "rotate-at", 300, "Rotate progress file at N lines")
	rootCmd.Flags().IntVar(&maxArchives, "max-archives", 5, "Progress archives to keep")
	rootCmd.Flags().BoolVarP(&skipPrompts, "yes", "y", false, "Skip confirmation prompts")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file (default ~/.config/ralph/config.yaml)")
}

func run(cmd *cobra.Command, args []string) error {
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	var taskDir string
	if len(args) == 1 {
		taskDir = args[0]
	} else {
		taskDir, err = selectTask(os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
	}

	if info, err := os.Stat(taskDir); err != nil || !info.IsDir() {
		return fmt.Errorf("task directory not found: %s", taskDir)
	}
	prdPath := filepath.Join(taskDir, prd.FileName)
	if _, err := os.Stat(prdPath); err != nil {
		return fmt.Errorf("%s not found in: %s", prd.FileName, taskDir)
	}

	if _, err := prd.CheckAndMigrate(prdPath, !skipPrompts, os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("schema migration: %w", err)
	}

	rotCfg := progress.RotationConfig{Threshold: rotateThreshold, MaxArchives: maxArchives}
	if !skipPrompts {
		rotCfg.Threshold = nudgeRotationThreshold(os.Stdin, os.Stdout, taskDir, rotCfg.Threshold)
	}

	logger, err := logging.New(taskDir, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	printBanner(taskDir, maxIterations)

	model, err := engine.NewModel(cfg, logger, taskDir, maxIterations, rotCfg)
	if err != nil {
		return err
	}
	defer model.Cleanup()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		logger.Error("tui failed", zap.Error(err))
		return err
	}
	if err := model.Err(); err != nil {
		return err
	}

	if reason := model.StopReason(); reason != "" {
		fmt.Printf("\nralph: %s\n", reason)
	}
	return nil
}

func printBanner(taskDir string, iterations int) {
	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║  Ralph - Autonomous Agent Loop                                ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Task:       %s\n", taskDir)
	fmt.Printf("  Max iters:  %d\n", iterations)
	fmt.Println()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
