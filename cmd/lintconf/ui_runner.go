package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"lintconf/internal/driver"
	"lintconf/internal/ui"
)

type dirOutcome struct {
	results []driver.FileResult
	err     error
}

// runProgram renders model to out until it quits. Tests swap it out.
var runProgram = func(model tea.Model, out io.Writer) error {
	_, err := tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil)).Run()
	return err
}

// resolveDirWithUI runs newDriver(sink).ResolveDir while a progress model
// renders the events to out.
func resolveDirWithUI(ctx context.Context, out io.Writer, title, dir string, files []string, newDriver func(driver.ProgressSink) (*driver.Driver, error)) ([]driver.FileResult, error) {
	events := make(chan driver.Event, 256)
	d, err := newDriver(driver.ChannelSink{Ch: events})
	if err != nil {
		return nil, err
	}
	outcomeCh := make(chan dirOutcome, 1)

	go func() {
		res, err := d.ResolveDir(ctx, dir)
		outcomeCh <- dirOutcome{results: res, err: err}
		close(events)
	}()

	uiErr := runProgram(ui.NewProgressModel(title, files, events), out)
	// The model may quit before the resolver finishes; whatever it left in
	// the channel must still be consumed or the resolver blocks on send.
	for range events {
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
