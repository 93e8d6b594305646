//go:build !windows

package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	usecase "github.com/ca-srg/tokenmon/usecase/interface"
)

func TestWatchCommand(t *testing.T) {
	h := newTestHarness(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- h.controller.Execute(ctx, []string{"watch"})
	}()

	require.Eventually(t, func() bool {
		h.monitor.mu.Lock()
		defer h.monitor.mu.Unlock()
		return h.monitor.started
	}, 2*time.Second, 10*time.Millisecond)

	h.monitor.updates <- usecase.MonitorUpdate{Title: "CC ..."}
	h.monitor.updates <- usecase.MonitorUpdate{Title: "42%|03:15", Fetched: true}
	// an unchanged countdown tick is not printed again
	h.monitor.updates <- usecase.MonitorUpdate{Title: "42%|03:15"}
	h.monitor.updates <- usecase.MonitorUpdate{Title: "42%|03:14"}

	require.Eventually(t, func() bool {
		return h.out.String() == "CC ...\n42%|03:15\n42%|03:14\n"
	}, 2*time.Second, 10*time.Millisecond)

	t.Run("SIGUSR1 requests a refresh and reports the monitor state", func(t *testing.T) {
		fetchedAt := time.Date(2025, 3, 10, 6, 45, 0, 0, time.UTC)
		require.NoError(t, h.status.SetStarted(fetchedAt.Add(-time.Hour)))
		require.NoError(t, h.status.RecordFetch(fetchedAt))
		require.NoError(t, h.status.RecordFetch(fetchedAt))
		require.NoError(t, h.status.RecordError(errors.New("script timed out")))

		require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGUSR1))
		assert.Eventually(t, func() bool {
			refreshes, _, _ := h.monitor.counts()
			return refreshes == 1
		}, 2*time.Second, 10*time.Millisecond)
		assert.Eventually(t, func() bool {
			return strings.Contains(h.errOut.String(), "running=true fetches=2 last_fetch=2025-03-10 06:45:00 UTC")
		}, 2*time.Second, 10*time.Millisecond)
		assert.Contains(t, h.errOut.String(), "last_error=script timed out")
		// titles stay on stdout alone
		assert.NotContains(t, h.out.String(), "monitor:")
	})

	t.Run("config edits reschedule", func(t *testing.T) {
		path := filepath.Join(h.configDir, "config.json")
		assert.Eventually(t, func() bool {
			_ = os.WriteFile(path, []byte(`{"version": 1, "refresh": {"interval_seconds": 120}}`), 0600)
			_, reschedules, _ := h.monitor.counts()
			return reschedules > 0 && h.controller.deps.ConfigService.GetConfig().Refresh.IntervalSec == 120
		}, 5*time.Second, 400*time.Millisecond)
	})

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return after cancellation")
	}

	_, _, stopped := h.monitor.counts()
	assert.True(t, stopped)
	// the final state is reported once more on exit
	assert.Equal(t, 2, strings.Count(h.errOut.String(), "monitor: "))
}
