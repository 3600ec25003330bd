package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/orion/internal/adapters/driving/tui"
)

// errNotTerminal is returned when the TUI is started without a terminal.
var errNotTerminal = errors.New("tui requires an interactive terminal")

var (
	tuiAlgorithm string
	tuiLimit     int

	// isTerminal reports whether stdout is a terminal. Replaced in tests.
	isTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal interface for searching a library,
browsing its documents and reading matched chunks.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Search / Open
  Tab      - Cycle algorithm
  Esc      - Back
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiAlgorithm, "algorithm", "a", "", "initial search algorithm")
	tuiCmd.Flags().IntVarP(&tuiLimit, "limit", "n", 10, "maximum number of results")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	if queryService == nil {
		return notConfigured("query")
	}
	email, err := resolveUser()
	if err != nil {
		return err
	}

	app, err := tui.NewApp(
		tui.NewPorts(queryService, ingestService, email),
		tui.WithAlgorithm(algorithmOrDefault(tuiAlgorithm)),
		tui.WithLimit(tuiLimit),
	)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if !isTerminal() {
		return errNotTerminal
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("TUI panic: %v\n%s", r, debug.Stack())
		}
	}()

	app.WithContext(cmd.Context())
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
