// Package cli wires the cobra command tree. Invoked without a
// subcommand the tool starts the interactive TUI; subcommands cover
// scripted scanning, cleaning and path checks.
package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"macsweep/internal/cleaner"
	"macsweep/internal/logger"
	"macsweep/internal/tui"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "macsweep",
	Short: "Reclaim disk space on macOS, safely",
	Long: `macsweep scans caches, logs, build artifacts and other reclaimable
files, classifies every path by how safe it is to delete, and only
removes what the selected cleanup level allows.

Run without arguments for the interactive picker, or use the
subcommands for scripted workflows.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initEnv,
}

// Execute runs the root command. version comes from the build.
func Execute(version string) {
	rootCmd.Version = version
	err := rootCmd.Execute()
	logger.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the literal to avoid an
	// initialization cycle: runTUI reads rootCmd.Version.
	rootCmd.RunE = runTUI

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "replacement targets file (default: embedded)")
	pf.BoolP("dry-run", "n", false, "preview actions without deleting anything")
	pf.StringP("level", "l", "normal", "cleanup level (light, normal, deep, system)")
	pf.BoolP("yes", "y", false, "skip confirmation prompts")
	pf.Bool("debug", false, "write debug logs to ~/.config/macsweep/debug.log")

	_ = viper.BindPFlag("dry-run", pf.Lookup("dry-run"))
	_ = viper.BindPFlag("level", pf.Lookup("level"))
	_ = viper.BindPFlag("yes", pf.Lookup("yes"))
	_ = viper.BindPFlag("debug", pf.Lookup("debug"))

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(duCmd)
	rootCmd.AddCommand(updateCmd)
}

func initEnv(_ *cobra.Command, _ []string) error {
	viper.SetEnvPrefix("MACSWEEP")
	viper.AutomaticEnv()

	if err := logger.Init(viper.GetBool("debug")); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	return nil
}

// cleanupLevel resolves the --level flag into a policy level.
func cleanupLevel() (cleaner.CleanupLevel, error) {
	return cleaner.ParseCleanupLevel(viper.GetString("level"))
}

func runTUI(_ *cobra.Command, _ []string) error {
	level, err := cleanupLevel()
	if err != nil {
		return err
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	p := tea.NewProgram(
		tui.NewModel(tui.Params{
			Config:   app.Config,
			User:     app.User,
			Registry: app.Registry,
			Service:  app.Service,
			Journal:  app.Journal,
			Version:  rootCmd.Version,
			DryRun:   viper.GetBool("dry-run"),
			Level:    level,
		}),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
