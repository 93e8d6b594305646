//go:build !windows

package cli

import (
	"os"
	"syscall"
)

func refreshSignals() []os.Signal {
	return []os.Signal{syscall.SIGUSR1}
}
