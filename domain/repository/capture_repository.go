package repository

import (
	"context"
	"time"
)

// CaptureRequest describes one execution of the external status-capture process
type CaptureRequest struct {
	// Interpreter runs ScriptPath; empty means ScriptPath is executed directly
	Interpreter string

	// ScriptPath is the capture script or program
	ScriptPath string

	// Args are the positional arguments passed after ScriptPath
	Args []string

	// WorkDir is the working directory of the process
	WorkDir string

	// Env holds variables set on top of the current process environment
	Env map[string]string

	// Timeout bounds the process run time; zero means unbounded
	Timeout time.Duration
}

// CaptureResult is the outcome of a process that was started successfully
type CaptureResult struct {
	// Stdout is the entire standard output stream
	Stdout []byte

	// Stderr is kept for diagnostics only
	Stderr []byte

	// ExitCode is the process exit status
	ExitCode int

	// Duration is the wall-clock run time
	Duration time.Duration
}

// CaptureRepository runs the external status-capture process.
// Run returns an error only when the process could not be started or was
// stopped by its timeout; a non-zero exit status is reported in CaptureResult.
type CaptureRepository interface {
	Run(ctx context.Context, req CaptureRequest) (*CaptureResult, error)
}
