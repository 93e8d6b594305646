package impl

import (
	"sync"
	"time"

	usecase "github.com/ca-srg/tokenmon/usecase/interface"
)

// StatusServiceImpl implements StatusService
type StatusServiceImpl struct {
	mu     sync.RWMutex
	status usecase.StatusInfo
}

// NewStatusService creates a new instance of StatusService
func NewStatusService() usecase.StatusService {
	return &StatusServiceImpl{}
}

// GetStatus returns a copy of the current status information
func (s *StatusServiceImpl) GetStatus() (*usecase.StatusInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statusCopy := s.status
	return &statusCopy, nil
}

// RecordFetch records a completed fetch cycle
func (s *StatusServiceImpl) RecordFetch(fetchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.LastFetchAt = &fetchedAt
	s.status.FetchCount++
	return nil
}

// UpdateNextFetch updates the next scheduled fetch timestamp
func (s *StatusServiceImpl) UpdateNextFetch(nextAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if nextAt.IsZero() {
		s.status.NextFetchAt = nil
		return nil
	}
	s.status.NextFetchAt = &nextAt
	return nil
}

// UpdateLastMetricsSent updates the last metrics sent timestamp
func (s *StatusServiceImpl) UpdateLastMetricsSent(sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.LastMetricsSentAt = &sentAt
	return nil
}

// RecordError records an error that occurred
func (s *StatusServiceImpl) RecordError(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.status.LastError = err
	s.status.LastErrorAt = &now
	return nil
}

// ClearError clears the last error
func (s *StatusServiceImpl) ClearError() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.LastError = nil
	s.status.LastErrorAt = nil
	return nil
}

// SetStarted sets the monitor started timestamp
func (s *StatusServiceImpl) SetStarted(startedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.IsRunning = true
	s.status.StartedAt = &startedAt
	return nil
}

// SetStopped clears the monitor runtime information
func (s *StatusServiceImpl) SetStopped() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.IsRunning = false
	s.status.StartedAt = nil
	s.status.NextFetchAt = nil
	return nil
}
