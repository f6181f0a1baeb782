package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/serkm/effekt/internal/progs"
	"github.com/serkm/effekt/internal/ui"
)

// runAllWithUI drives every program under a live progress view.
func runAllWithUI(s *setup, programs []progs.Program, outcomes []runOutcome) error {
	events := make(chan ui.Event, 64)
	outcomeDone := make(chan error, 1)

	names := make([]string, len(programs))
	for i, p := range programs {
		names[i] = p.Name
	}

	go func() {
		var g errgroup.Group
		for i, p := range programs {
			i, p := i, p
			g.Go(func() error {
				events <- ui.Event{Program: p.Name, Status: "running"}
				o := executeProgram(s, p, io.Discard, nil, false)
				outcomes[i] = o
				if o.fault != nil {
					events <- ui.Event{Program: p.Name, Status: "failed", Detail: o.fault.Error()}
				} else {
					events <- ui.Event{Program: p.Name, Status: "ok", Detail: fmt.Sprintf("= %d", o.value)}
				}
				return nil
			})
		}
		outcomeDone <- g.Wait()
		close(events)
	}()

	model := ui.NewRunModel("effektrt run --all", names, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	if _, err := program.Run(); err != nil {
		return err
	}
	if err := <-outcomeDone; err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.fault != nil {
			failed++
			fmt.Printf("%s %s: %v\n", color.RedString("failed"), o.name, o.fault)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d programs faulted", failed, len(programs))
	}
	return nil
}
