package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vincenthorn/kasina/internal/api"
	"github.com/vincenthorn/kasina/internal/persist"
	"github.com/vincenthorn/kasina/internal/store"
	"github.com/vincenthorn/kasina/internal/tui"
)

func main() {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	s, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	p, err := newPersister(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Sessions stranded locally by an earlier failure resync in the
	// background while the UI comes up.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		p.Recover(ctx)
	}()

	app := tui.NewApp(s, p)
	prog := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := prog.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newPersister(s *store.Store) (*persist.Persister, error) {
	serverURL, err := s.GetSetting("server_url")
	if err != nil {
		return nil, fmt.Errorf("read server url: %w", err)
	}

	timeout := 5 * time.Second
	if v, err := s.GetSetting("persist_timeout"); err == nil {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}

	clientID, err := s.ClientID()
	if err != nil {
		return nil, fmt.Errorf("client id: %w", err)
	}

	client := api.New(serverURL, clientID, timeout)
	return persist.New(s, client, persist.Options{RetryBackoff: time.Second}), nil
}
