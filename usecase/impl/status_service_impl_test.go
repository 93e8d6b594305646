package impl

import (
	"errors"
	"testing"
	"time"
)

func TestStatusServiceImpl_BasicOperations(t *testing.T) {
	service := NewStatusService()

	// Test initial status
	status, err := service.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if status.IsRunning {
		t.Error("Expected IsRunning to be false initially")
	}
	if status.LastFetchAt != nil {
		t.Error("Expected LastFetchAt to be nil initially")
	}
	if status.FetchCount != 0 {
		t.Error("Expected FetchCount to be 0 initially")
	}

	// Test SetStarted
	startTime := time.Now()
	if err := service.SetStarted(startTime); err != nil {
		t.Fatalf("SetStarted failed: %v", err)
	}

	status, _ = service.GetStatus()
	if !status.IsRunning {
		t.Error("Expected IsRunning to be true after SetStarted")
	}
	if status.StartedAt == nil || !status.StartedAt.Equal(startTime) {
		t.Error("StartedAt not set correctly")
	}

	// Test RecordFetch
	fetchTime := time.Now()
	_ = service.RecordFetch(fetchTime)
	_ = service.RecordFetch(fetchTime)

	status, _ = service.GetStatus()
	if status.LastFetchAt == nil || !status.LastFetchAt.Equal(fetchTime) {
		t.Error("LastFetchAt not set correctly")
	}
	if status.FetchCount != 2 {
		t.Errorf("Expected FetchCount to be 2, got %d", status.FetchCount)
	}

	// Test UpdateNextFetch
	nextTime := time.Now().Add(10 * time.Minute)
	if err := service.UpdateNextFetch(nextTime); err != nil {
		t.Fatalf("UpdateNextFetch failed: %v", err)
	}

	status, _ = service.GetStatus()
	if status.NextFetchAt == nil || !status.NextFetchAt.Equal(nextTime) {
		t.Error("NextFetchAt not set correctly")
	}

	// zero time clears the schedule
	_ = service.UpdateNextFetch(time.Time{})
	status, _ = service.GetStatus()
	if status.NextFetchAt != nil {
		t.Error("Expected NextFetchAt to be cleared by a zero time")
	}

	// Test UpdateLastMetricsSent
	sentTime := time.Now()
	_ = service.UpdateLastMetricsSent(sentTime)
	status, _ = service.GetStatus()
	if status.LastMetricsSentAt == nil || !status.LastMetricsSentAt.Equal(sentTime) {
		t.Error("LastMetricsSentAt not set correctly")
	}

	// Test SetStopped
	_ = service.UpdateNextFetch(nextTime)
	if err := service.SetStopped(); err != nil {
		t.Fatalf("SetStopped failed: %v", err)
	}

	status, _ = service.GetStatus()
	if status.IsRunning {
		t.Error("Expected IsRunning to be false after SetStopped")
	}
	if status.StartedAt != nil {
		t.Error("Expected StartedAt to be nil after SetStopped")
	}
	if status.NextFetchAt != nil {
		t.Error("Expected NextFetchAt to be nil after SetStopped")
	}
	if status.FetchCount != 2 {
		t.Error("Expected FetchCount to survive SetStopped")
	}
}

func TestStatusServiceImpl_GetStatusReturnsCopy(t *testing.T) {
	service := NewStatusService()
	_ = service.RecordFetch(time.Now())

	status, _ := service.GetStatus()
	status.FetchCount = 100

	again, _ := service.GetStatus()
	if again.FetchCount != 1 {
		t.Errorf("Expected stored FetchCount to stay 1, got %d", again.FetchCount)
	}
}

func TestStatusServiceImpl_ErrorHandling(t *testing.T) {
	service := NewStatusService()

	// Test RecordError
	testErr := errors.New("test error")
	if err := service.RecordError(testErr); err != nil {
		t.Fatalf("RecordError failed: %v", err)
	}

	status, _ := service.GetStatus()
	if status.LastError == nil || status.LastError.Error() != testErr.Error() {
		t.Error("LastError not set correctly")
	}
	if status.LastErrorAt == nil {
		t.Error("LastErrorAt not set")
	}

	// Test ClearError
	if err := service.ClearError(); err != nil {
		t.Fatalf("ClearError failed: %v", err)
	}

	status, _ = service.GetStatus()
	if status.LastError != nil {
		t.Error("Expected LastError to be nil after ClearError")
	}
	if status.LastErrorAt != nil {
		t.Error("Expected LastErrorAt to be nil after ClearError")
	}
}

func TestStatusServiceImpl_ConcurrentAccess(t *testing.T) {
	service := NewStatusService()
	done := make(chan bool)

	for i := 0; i < 10; i++ {
		go func(id int) {
			defer func() { done <- true }()

			_ = service.RecordFetch(time.Now())
			_ = service.UpdateLastMetricsSent(time.Now())
			_, _ = service.GetStatus()
			if id%2 == 0 {
				_ = service.RecordError(errors.New("concurrent error"))
			} else {
				_ = service.ClearError()
			}
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	status, err := service.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus failed after concurrent access: %v", err)
	}
	if status.FetchCount != 10 {
		t.Errorf("Expected FetchCount to be 10, got %d", status.FetchCount)
	}
}
