package main

import (
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/ticket-console/internal/events"
	"github.com/spec-kit/ticket-console/internal/worker"
)

func TestRunClosesConsoleWhenCommandFails(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	app := &console{
		logger:   logger,
		activity: worker.StartCacheActivityWorker(events.NewInMemoryDispatcher(), zap.NewNop()),
	}
	root := &cobra.Command{
		Use:           "console",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(*cobra.Command, []string) error {
			return errors.New("backend unreachable")
		},
	}
	root.SetArgs([]string{})

	err := run(root, app)
	assert.EqualError(t, err, "backend unreachable")
	assert.Len(t, logs.FilterMessage("cache activity").All(), 1)
}

func TestRunClosesConsoleBeforeSetup(t *testing.T) {
	root := &cobra.Command{Use: "console", RunE: func(*cobra.Command, []string) error { return nil }}
	root.SetArgs([]string{})

	assert.NoError(t, run(root, &console{}))
}
