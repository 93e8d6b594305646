package impl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/ca-srg/tokenmon/domain"
	"github.com/ca-srg/tokenmon/domain/entity"
	"github.com/ca-srg/tokenmon/infrastructure/config"
	usecase "github.com/ca-srg/tokenmon/usecase/interface"
)

// updateBuffer is the number of pending updates kept for a slow reader
const updateBuffer = 16

// MonitorServiceImpl implements MonitorService
type MonitorServiceImpl struct {
	capture       usecase.CaptureService
	countdown     usecase.CountdownService
	metrics       usecase.MetricsService
	status        usecase.StatusService
	configService usecase.ConfigService
	logger        domain.Logger

	mu     sync.RWMutex
	latest *entity.StatusSnapshot

	// schedule state, guarded by schedMu
	schedMu      sync.Mutex
	scheduler    *cron.Cron
	refreshEntry cron.EntryID
	tickEntry    cron.EntryID
	limiter      *rate.Limiter
	runCtx       context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup

	updates chan usecase.MonitorUpdate

	now func() time.Time
}

// NewMonitorService creates a new monitor service
func NewMonitorService(
	capture usecase.CaptureService,
	countdown usecase.CountdownService,
	metrics usecase.MetricsService,
	status usecase.StatusService,
	configService usecase.ConfigService,
	logger domain.Logger,
) usecase.MonitorService {
	return &MonitorServiceImpl{
		capture:       capture,
		countdown:     countdown,
		metrics:       metrics,
		status:        status,
		configService: configService,
		logger:        logger,
		limiter:       manualLimiter(configService.GetConfig()),
		updates:       make(chan usecase.MonitorUpdate, updateBuffer),
		now:           time.Now,
	}
}

// Start schedules the refresh and countdown jobs, then fetches once and ticks once
func (s *MonitorServiceImpl) Start(ctx context.Context) error {
	s.schedMu.Lock()
	defer s.schedMu.Unlock()

	if s.scheduler != nil {
		return domain.ErrInvalidState("monitor", "running", "start")
	}

	s.runCtx, s.cancel = context.WithCancel(ctx)
	s.scheduler = cron.New()
	if err := s.scheduleLocked(s.configService.GetConfig()); err != nil {
		s.cancel()
		s.scheduler = nil
		return err
	}
	s.scheduler.Start()

	startedAt := s.now()
	_ = s.status.SetStarted(startedAt)
	s.updateNextFetchLocked()

	s.logger.Info(ctx, "Monitor started",
		domain.NewField("refreshInterval", refreshSettings(s.configService.GetConfig()).Interval().String()))

	runCtx := s.runCtx
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.refresh(runCtx)
	}()
	s.tick()

	return nil
}

// Stop cancels the schedule and waits for running jobs
func (s *MonitorServiceImpl) Stop() error {
	s.schedMu.Lock()
	scheduler := s.scheduler
	if scheduler == nil {
		s.schedMu.Unlock()
		return nil
	}
	s.scheduler = nil
	s.refreshEntry, s.tickEntry = 0, 0
	s.cancel()
	s.schedMu.Unlock()

	// running jobs may take schedMu, so wait outside it
	<-scheduler.Stop().Done()
	s.wg.Wait()
	_ = s.status.SetStopped()

	s.logger.Info(context.Background(), "Monitor stopped")
	return nil
}

// RefreshNow starts a fetch unless a manual refresh ran too recently.
// Without a running schedule the fetch runs synchronously on ctx.
func (s *MonitorServiceImpl) RefreshNow(ctx context.Context) bool {
	s.schedMu.Lock()
	if !s.limiter.Allow() {
		s.schedMu.Unlock()
		s.logger.Debug(ctx, "Manual refresh throttled")
		return false
	}
	if s.scheduler == nil {
		s.schedMu.Unlock()
		s.refresh(ctx)
		return true
	}
	runCtx := s.runCtx
	s.wg.Add(1)
	s.schedMu.Unlock()

	go func() {
		defer s.wg.Done()
		s.refresh(runCtx)
	}()
	return true
}

// Reschedule replaces the cron entries and the manual limiter with the current settings
func (s *MonitorServiceImpl) Reschedule() error {
	cfg := s.configService.GetConfig()

	s.schedMu.Lock()
	defer s.schedMu.Unlock()

	s.limiter = manualLimiter(cfg)
	if s.scheduler == nil {
		return nil
	}

	s.scheduler.Remove(s.refreshEntry)
	s.scheduler.Remove(s.tickEntry)
	s.refreshEntry, s.tickEntry = 0, 0
	if err := s.scheduleLocked(cfg); err != nil {
		return err
	}
	s.updateNextFetchLocked()

	refresh := refreshSettings(cfg)
	s.logger.Info(context.Background(), "Monitor rescheduled",
		domain.NewField("refreshInterval", refresh.Interval().String()),
		domain.NewField("countdownSeconds", refresh.CountdownSec))
	return nil
}

// Latest returns the most recent snapshot
func (s *MonitorServiceImpl) Latest() *entity.StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Updates returns the channel on which updates are published
func (s *MonitorServiceImpl) Updates() <-chan usecase.MonitorUpdate {
	return s.updates
}

// scheduleLocked registers the refresh and countdown jobs; a zero period leaves the job out
func (s *MonitorServiceImpl) scheduleLocked(cfg *config.AppConfig) error {
	runCtx := s.runCtx
	refresh := refreshSettings(cfg)

	if interval := refresh.Interval(); interval > 0 {
		id, err := s.scheduler.AddFunc(fmt.Sprintf("@every %s", interval), func() {
			s.refresh(runCtx)
		})
		if err != nil {
			return domain.ErrConfig("refresh.interval_seconds", err.Error())
		}
		s.refreshEntry = id
	}

	if refresh.CountdownSec > 0 {
		every := time.Duration(refresh.CountdownSec) * time.Second
		id, err := s.scheduler.AddFunc(fmt.Sprintf("@every %s", every), s.tick)
		if err != nil {
			return domain.ErrConfig("refresh.countdown_seconds", err.Error())
		}
		s.tickEntry = id
	}
	return nil
}

func (s *MonitorServiceImpl) updateNextFetchLocked() {
	if s.refreshEntry == 0 {
		_ = s.status.UpdateNextFetch(time.Time{})
		return
	}
	_ = s.status.UpdateNextFetch(s.scheduler.Entry(s.refreshEntry).Next)
}

// refresh fetches a snapshot, stores it, pushes metrics and publishes the title
func (s *MonitorServiceImpl) refresh(ctx context.Context) {
	snapshot, err := s.capture.Fetch(ctx)
	if err != nil {
		// only the caller's own context ends a fetch early
		return
	}

	s.mu.Lock()
	s.latest = snapshot
	s.mu.Unlock()

	now := s.now()
	cfg := s.configService.GetConfig()
	cycle := resetCycle(cfg)

	if snapshot.HasUnresolvedReset() {
		text, _ := snapshot.ResetText()
		s.logger.Warn(ctx, "Reset parse failed for text: "+text,
			domain.NewField("code", string(domain.ErrCodeResetUnresolved)))
	}

	title := s.countdown.Title(snapshot, now, cycle)
	s.logger.Info(ctx, "Status updated: "+title)

	_ = s.status.RecordFetch(now)
	if snapshot.IsEmpty() {
		_ = s.status.RecordError(domain.ErrCaptureParse("no status in this fetch cycle"))
	} else {
		_ = s.status.ClearError()
	}

	s.schedMu.Lock()
	if s.scheduler != nil {
		s.updateNextFetchLocked()
	}
	s.schedMu.Unlock()

	if s.metrics != nil && s.metrics.Enabled() && !snapshot.IsEmpty() {
		if err := s.metrics.SendSnapshot(ctx, snapshot); err != nil {
			s.logger.Error(ctx, "Failed to send metrics", domain.ErrorField(err))
			_ = s.status.RecordError(err)
		} else {
			_ = s.status.UpdateLastMetricsSent(s.now())
		}
	}

	s.publish(usecase.MonitorUpdate{
		Snapshot:  snapshot,
		Title:     title,
		Countdown: s.countdown.Project(snapshot, now, cycle),
		Fetched:   true,
	})
}

// tick re-renders the countdown from the latest snapshot
func (s *MonitorServiceImpl) tick() {
	snapshot := s.Latest()
	now := s.now()
	cycle := resetCycle(s.configService.GetConfig())

	s.publish(usecase.MonitorUpdate{
		Snapshot:  snapshot,
		Title:     s.countdown.Title(snapshot, now, cycle),
		Countdown: s.countdown.Project(snapshot, now, cycle),
	})
}

// publish never blocks; when the buffer is full the oldest update is dropped
func (s *MonitorServiceImpl) publish(update usecase.MonitorUpdate) {
	for {
		select {
		case s.updates <- update:
			return
		default:
		}
		select {
		case <-s.updates:
		default:
		}
	}
}

func resetCycle(cfg *config.AppConfig) time.Duration {
	if cfg == nil || cfg.Reset == nil {
		return 0
	}
	return cfg.Reset.Cycle()
}

// refreshSettings treats a missing refresh section as all periods disabled
func refreshSettings(cfg *config.AppConfig) *config.RefreshConfig {
	if cfg == nil || cfg.Refresh == nil {
		return &config.RefreshConfig{}
	}
	return cfg.Refresh
}

// manualLimiter allows one manual refresh per configured interval
func manualLimiter(cfg *config.AppConfig) *rate.Limiter {
	refresh := refreshSettings(cfg)
	if refresh.ManualMinIntervalSec <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Duration(refresh.ManualMinIntervalSec)*time.Second), 1)
}
