package repository

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/snappy"

	"github.com/ca-srg/tokenmon/domain/entity"
	"github.com/ca-srg/tokenmon/infrastructure/config"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestNewPrometheusMetricsRepository(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.PrometheusConfig
		wantErr bool
	}{
		{
			name:    "nil config",
			config:  nil,
			wantErr: true,
		},
		{
			name:    "disabled prometheus",
			config:  &config.PrometheusConfig{},
			wantErr: true, // RemoteWriteURL is required
		},
		{
			name: "enabled prometheus with valid config",
			config: &config.PrometheusConfig{
				RemoteWriteURL: "http://localhost:9091",
				HostLabel:      "test-host",
				TimeoutSec:     30,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, err := NewPrometheusMetricsRepository(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewPrometheusMetricsRepository() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && repo == nil {
				t.Error("NewPrometheusMetricsRepository() returned nil repository")
			}
		})
	}
}

func TestPrometheusMetricsRepository_HostnameDefault(t *testing.T) {
	expectedHostname, err := os.Hostname()
	if err != nil || expectedHostname == "" {
		expectedHostname = "unknown"
	}

	tests := []struct {
		name             string
		hostLabel        string
		expectedHostname string
	}{
		{
			name:             "empty host label uses hostname",
			hostLabel:        "",
			expectedHostname: expectedHostname,
		},
		{
			name:             "specified host label is used",
			hostLabel:        "custom-host",
			expectedHostname: "custom-host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, err := NewPrometheusMetricsRepository(&config.PrometheusConfig{
				RemoteWriteURL: "http://localhost:9091",
				HostLabel:      tt.hostLabel,
				TimeoutSec:     30,
			})
			if err != nil {
				t.Fatalf("Failed to create repository: %v", err)
			}

			promRepo := repo.(*PrometheusMetricsRepository)
			if promRepo.HostLabel() != tt.expectedHostname {
				t.Errorf("Expected hostname '%s', got '%s'", tt.expectedHostname, promRepo.HostLabel())
			}
		})
	}
}

func TestPrometheusMetricsRepository_SendStatusMetrics(t *testing.T) {
	var mu sync.Mutex
	var bodies [][]byte
	var receivedMethod string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		compressed, _ := io.ReadAll(r.Body)
		decoded, err := snappy.Decode(nil, compressed)
		if err != nil {
			t.Errorf("payload is not snappy encoded: %v", err)
		}
		mu.Lock()
		bodies = append(bodies, decoded)
		receivedMethod = r.Method
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	repo, err := NewPrometheusMetricsRepository(&config.PrometheusConfig{
		RemoteWriteURL: server.URL,
		HostLabel:      "test-host",
		TimeoutSec:     30,
	})
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}

	point := (&entity.StatusMetricPoint{
		Timestamp:             time.Unix(1700000000, 0),
		UsagePercent:          floatPtr(42),
		ResetRemainingSeconds: floatPtr(1800),
	}).WithTimezone("Asia/Seoul", "+09:00")

	if err := repo.SendStatusMetrics(context.Background(), point); err != nil {
		t.Fatalf("SendStatusMetrics() returned unexpected error: %v", err)
	}

	if len(bodies) != 1 {
		t.Fatalf("Expected 1 request, got %d", len(bodies))
	}
	if receivedMethod != http.MethodPost {
		t.Errorf("Expected POST method, got %s", receivedMethod)
	}

	series := decodeWriteRequest(t, bodies[0])
	if len(series) != 2 {
		t.Fatalf("Expected 2 series, got %d", len(series))
	}
	want := "__name__=" + UsagePercentMetric + ",host=test-host,timezone=Asia/Seoul,timezone_offset=+09:00"
	if series[0].labels != want {
		t.Errorf("labels = %s, want %s", series[0].labels, want)
	}
	if !strings.Contains(series[1].labels, ResetRemainingMetric) || series[1].value != 1800 {
		t.Errorf("unexpected second series %+v", series[1])
	}
	if series[0].timestamp != 1700000000000 {
		t.Errorf("timestamp = %d", series[0].timestamp)
	}
}

func TestPrometheusMetricsRepository_SkipsEmptyPoint(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	repo, _ := NewPrometheusMetricsRepository(&config.PrometheusConfig{RemoteWriteURL: server.URL, TimeoutSec: 5})

	if err := repo.SendStatusMetrics(context.Background(), &entity.StatusMetricPoint{Timestamp: time.Now()}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := repo.SendStatusMetrics(context.Background(), nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if requestCount != 0 {
		t.Errorf("Expected no requests, got %d", requestCount)
	}
}

func TestPrometheusMetricsRepository_WithAuth(t *testing.T) {
	var receivedAuthHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuthHeader = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	repo, err := NewPrometheusMetricsRepository(&config.PrometheusConfig{
		RemoteWriteURL:      server.URL,
		RemoteWriteUsername: "testuser",
		RemoteWritePassword: "testpass",
		TimeoutSec:          30,
	})
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}

	if err := repo.SendStatusMetrics(context.Background(), &entity.StatusMetricPoint{UsagePercent: floatPtr(1)}); err != nil {
		t.Fatalf("SendStatusMetrics() returned unexpected error: %v", err)
	}

	if want := "Basic dGVzdHVzZXI6dGVzdHBhc3M="; receivedAuthHeader != want { // base64("testuser:testpass")
		t.Errorf("Authorization = %q, want %q", receivedAuthHeader, want)
	}
}

func TestPrometheusMetricsRepository_ClientErrorIsWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	repo, _ := NewPrometheusMetricsRepository(&config.PrometheusConfig{RemoteWriteURL: server.URL, TimeoutSec: 5})

	err := repo.SendStatusMetrics(context.Background(), &entity.StatusMetricPoint{UsagePercent: floatPtr(1)})
	if err == nil {
		t.Fatal("expected error but got none")
	}
	if !strings.Contains(err.Error(), "metrics repository error in send") || !strings.Contains(err.Error(), "status 400") {
		t.Errorf("unexpected error: %v", err)
	}
}
