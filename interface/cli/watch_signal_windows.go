//go:build windows

package cli

import "os"

// Windows has no user signals; refreshes follow the schedule only
func refreshSignals() []os.Signal {
	return nil
}
