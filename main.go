package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/persist"
	"taskdeck/store"
	"taskdeck/tui"
)

func main() {
	stateDir := flag.String("state", defaultStateDir(), "directory holding persisted state")
	debounce := flag.Duration("debounce", persist.DefaultDebounce, "quiescence window before autosave writes")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	gw := persist.NewGateway(
		persist.NewFileKV(*stateDir),
		persist.WithDebounce(*debounce),
		persist.WithLogger(logger),
	)

	// Load once; whatever the outcome the app becomes interactive and
	// future saves are enabled.
	snap, ok := gw.Load()

	st := store.New()
	st.Restore(snap)
	st.Subscribe(gw.Schedule)

	status := ""
	if !ok {
		status = "Some saved data could not be read; starting with what loaded"
	}

	p := tea.NewProgram(tui.NewModel(st, gw, status), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	gw.Close()
}

func defaultStateDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".taskdeck"
	}
	return filepath.Join(base, "taskdeck")
}
