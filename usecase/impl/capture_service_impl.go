package impl

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/ca-srg/tokenmon/domain"
	"github.com/ca-srg/tokenmon/domain/entity"
	"github.com/ca-srg/tokenmon/domain/repository"
	"github.com/ca-srg/tokenmon/infrastructure/config"
	usecase "github.com/ca-srg/tokenmon/usecase/interface"
)

const (
	// every request shares one in-flight cycle
	captureKey = "status"

	captureTerm = "xterm-256color"

	// diagnosticTailLines is how many output lines are logged when the final attempt fails
	diagnosticTailLines = 6
)

// CaptureServiceImpl implements CaptureService on top of a singleflight group
type CaptureServiceImpl struct {
	runner        repository.CaptureRepository
	parser        usecase.StatusParser
	configService usecase.ConfigService
	timezones     repository.TimezoneService
	logger        domain.Logger

	group singleflight.Group

	now        func() time.Time
	executable func() (string, error)
	homeDir    func() (string, error)
}

// NewCaptureService creates a new capture service
func NewCaptureService(
	runner repository.CaptureRepository,
	parser usecase.StatusParser,
	configService usecase.ConfigService,
	timezones repository.TimezoneService,
	logger domain.Logger,
) usecase.CaptureService {
	return &CaptureServiceImpl{
		runner:        runner,
		parser:        parser,
		configService: configService,
		timezones:     timezones,
		logger:        logger,
		now:           time.Now,
		executable:    os.Executable,
		homeDir:       os.UserHomeDir,
	}
}

// FetchStatus joins the running cycle or starts a new one.
// If ctx ends first the channel is closed without a value; the cycle keeps running.
func (s *CaptureServiceImpl) FetchStatus(ctx context.Context) <-chan *entity.StatusSnapshot {
	out := make(chan *entity.StatusSnapshot, 1)

	// singleflight drops the key before handing results to waiters,
	// so a request that arrives after hand-off starts a fresh cycle.
	results := s.group.DoChan(captureKey, func() (interface{}, error) {
		return s.runCycle(), nil
	})

	go func() {
		defer close(out)
		select {
		case r := <-results:
			out <- r.Val.(*entity.StatusSnapshot)
		case <-ctx.Done():
		}
	}()

	return out
}

// Fetch blocks until the cycle's snapshot is delivered
func (s *CaptureServiceImpl) Fetch(ctx context.Context) (*entity.StatusSnapshot, error) {
	select {
	case snapshot, ok := <-s.FetchStatus(ctx):
		if !ok {
			return nil, ctx.Err()
		}
		return snapshot, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// runCycle runs up to MaxAttempts captures; it never returns nil
func (s *CaptureServiceImpl) runCycle() *entity.StatusSnapshot {
	// the cycle is shared, so no caller's context may cancel it
	ctx := context.Background()
	cfg := s.configService.GetConfig()
	logger := s.logger.WithFields(domain.NewField("cycle", uuid.NewString()))

	req, err := s.buildRequest(cfg)
	if err != nil {
		logger.Error(ctx, "Capture script unavailable", domain.ErrorField(err))
		return entity.EmptyStatusSnapshot(s.now())
	}

	capture := captureSettings(cfg)
	attempts := capture.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	zone := s.timezones.DefaultLocation()
	if cfg.Reset != nil {
		zone = s.timezones.LocationFor(cfg.Reset.Timezone)
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		logger.Debug(ctx, "Running capture",
			domain.NewField("attempt", attempt),
			domain.NewField("script", req.ScriptPath))

		result, err := s.runner.Run(ctx, req)
		if err != nil {
			// launch failures and timeouts are not retried
			logger.Error(ctx, "Capture launch failed",
				domain.NewField("attempt", attempt),
				domain.ErrorField(err))
			return entity.EmptyStatusSnapshot(s.now())
		}

		snapshot, parseErr := s.parser.ParseAt(result.Stdout, s.now(), zone)
		if parseErr == nil {
			logger.Debug(ctx, "Capture succeeded",
				domain.NewField("attempt", attempt),
				domain.NewField("duration", result.Duration.String()))
			return snapshot
		}

		if attempt < attempts {
			logger.Warn(ctx, "Capture output not understood, retrying",
				domain.NewField("attempt", attempt),
				domain.NewField("exitCode", result.ExitCode),
				domain.ErrorField(parseErr))
			waitRetry(ctx, capture.RetryDelay())
			continue
		}

		fields := []domain.Field{
			domain.NewField("attempts", attempts),
			domain.NewField("exitCode", result.ExitCode),
			domain.NewField("output", outputTail(result, diagnosticTailLines)),
			domain.ErrorField(parseErr),
		}
		var domainErr *domain.DomainError
		if errors.As(parseErr, &domainErr) {
			if rawTail, ok := domainErr.Details["rawTail"]; ok {
				fields = append(fields, domain.NewField("rawTail", rawTail))
			}
		}
		logger.Error(ctx, "Capture failed", fields...)
	}

	return entity.EmptyStatusSnapshot(s.now())
}

// buildRequest turns the capture configuration into a process invocation
func (s *CaptureServiceImpl) buildRequest(cfg *config.AppConfig) (repository.CaptureRequest, error) {
	capture := captureSettings(cfg)

	scriptPath, err := s.resolveScriptPath(capture.ScriptPath)
	if err != nil {
		return repository.CaptureRequest{}, err
	}

	home, _ := s.homeDir()
	workDir := capture.WorkDir
	if workDir == "" {
		workDir = home
	}
	claudeCWD := capture.ClaudeCWD
	if claudeCWD == "" {
		claudeCWD = os.TempDir()
	}

	args := []string{"--json"}
	if capture.RawOutputPath != "" {
		args = append(args, "--raw", capture.RawOutputPath)
	}

	env := map[string]string{
		"TERM":       captureTerm,
		"CLAUDE_CWD": claudeCWD,
	}
	if capture.SearchPath != "" {
		env["PATH"] = capture.SearchPath
	}
	if home != "" {
		env["HOME"] = home
	}

	return repository.CaptureRequest{
		Interpreter: capture.Interpreter,
		ScriptPath:  scriptPath,
		Args:        args,
		WorkDir:     workDir,
		Env:         env,
		Timeout:     capture.Timeout(),
	}, nil
}

func captureSettings(cfg *config.AppConfig) *config.CaptureConfig {
	if cfg == nil || cfg.Capture == nil {
		return config.DefaultConfig().Capture
	}
	return cfg.Capture
}

// resolveScriptPath prefers the configured path, then the script next to the executable, then the config directory
func (s *CaptureServiceImpl) resolveScriptPath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	var candidates []string
	if exe, err := s.executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), config.DefaultScriptName))
	}
	if dir := s.configService.GetConfigDir(); dir != "" {
		candidates = append(candidates, filepath.Join(dir, config.DefaultScriptName))
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", domain.ErrCaptureLaunch(config.DefaultScriptName, errors.New("capture script not found")).
		WithDetails("searched", strings.Join(candidates, ", "))
}

// waitRetry sleeps for d unless ctx ends first
func waitRetry(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// outputTail joins the last n non-empty lines of stdout and stderr with " | "
func outputTail(result *repository.CaptureResult, n int) string {
	var lines []string
	for _, chunk := range [][]byte{result.Stdout, result.Stderr} {
		for _, line := range strings.Split(string(chunk), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
