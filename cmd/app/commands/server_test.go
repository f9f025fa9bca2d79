package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWatchReload(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reloader := &fakeReloader{results: []error{errors.New("bad file"), nil}, done: make(chan struct{}, 2)}

	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 2)
	finished := make(chan struct{})
	go func() {
		watchReload(ctx, signals, reloader, logger)
		close(finished)
	}()

	signals <- os.Interrupt
	signals <- os.Interrupt
	<-reloader.done
	<-reloader.done
	cancel()
	<-finished

	require.Equal(t, 2, reloader.calls)
}

type fakeReloader struct {
	results []error
	calls   int
	done    chan struct{}
}

func (f *fakeReloader) Reload(ctx context.Context) error {
	err := f.results[f.calls]
	f.calls++
	f.done <- struct{}{}
	return err
}
