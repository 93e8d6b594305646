package usecase

import (
	"context"

	"github.com/ca-srg/tokenmon/domain/entity"
)

// CaptureService runs the status-capture process with request coalescing.
// Every request issued while a cycle is in flight receives that cycle's snapshot.
type CaptureService interface {
	// FetchStatus requests a snapshot; the channel receives exactly one value and is closed.
	// A failed cycle delivers the all-absent snapshot.
	FetchStatus(ctx context.Context) <-chan *entity.StatusSnapshot

	// Fetch blocks until the snapshot is available or ctx is done
	Fetch(ctx context.Context) (*entity.StatusSnapshot, error)
}
