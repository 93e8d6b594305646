package repository

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/ca-srg/tokenmon/domain"
	"github.com/ca-srg/tokenmon/domain/repository"
)

// processWaitDelay bounds how long Wait blocks on pipes held open by grandchildren after a kill
const processWaitDelay = 2 * time.Second

// ProcessCaptureRepository runs the capture script as a child process
type ProcessCaptureRepository struct {
	logger domain.Logger
}

// NewProcessCaptureRepository creates a new process-backed capture repository
func NewProcessCaptureRepository(logger domain.Logger) repository.CaptureRepository {
	return &ProcessCaptureRepository{
		logger: logger,
	}
}

// Run executes the request and collects its entire standard output
func (r *ProcessCaptureRepository) Run(ctx context.Context, req repository.CaptureRequest) (*repository.CaptureResult, error) {
	name, args := commandLine(req)
	if name == "" {
		return nil, domain.ErrCaptureLaunch(req.ScriptPath, errors.New("no capture program configured"))
	}

	runCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = req.WorkDir
	cmd.Env = mergeEnv(os.Environ(), req.Env)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = processWaitDelay

	r.logger.Debug(ctx, "Starting capture process",
		domain.NewField("program", name),
		domain.NewField("args", strings.Join(args, " ")),
		domain.NewField("dir", req.WorkDir))

	started := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, domain.ErrCaptureLaunch(req.ScriptPath, err)
	}
	waitErr := cmd.Wait()
	duration := time.Since(started)

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, domain.ErrCaptureTimeout(req.ScriptPath, int(req.Timeout/time.Second))
	}
	if ctx.Err() != nil {
		return nil, domain.ErrCaptureLaunch(req.ScriptPath, ctx.Err())
	}

	result := &repository.CaptureResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: duration,
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, domain.ErrCaptureLaunch(req.ScriptPath, waitErr)
		}
		result.ExitCode = exitErr.ExitCode()
	}

	r.logger.Debug(ctx, "Capture process finished",
		domain.NewField("exitCode", result.ExitCode),
		domain.NewField("stdoutBytes", len(result.Stdout)),
		domain.NewField("duration", duration.String()))

	return result, nil
}

// commandLine builds "<interpreter> <script> <args...>", or runs the script directly without an interpreter
func commandLine(req repository.CaptureRequest) (string, []string) {
	if req.Interpreter == "" {
		return req.ScriptPath, append([]string{}, req.Args...)
	}
	args := make([]string, 0, len(req.Args)+1)
	if req.ScriptPath != "" {
		args = append(args, req.ScriptPath)
	}
	args = append(args, req.Args...)
	return req.Interpreter, args
}

// mergeEnv overlays overrides on base; later entries win in exec, but duplicates are removed for clarity
func mergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	env := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, overridden := overrides[key]; overridden {
			continue
		}
		env = append(env, kv)
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}
