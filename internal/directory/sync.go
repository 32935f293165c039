package directory

import (
	"context"
	"log/slog"
	"time"

	"github.com/lingopeer/lingopeer/internal/application/constant"
	"github.com/lingopeer/lingopeer/internal/application/metric"
)

const defaultTimeout = 5 * time.Second

// Sync reconciles room state with the directory store. Count updates are
// fire-and-forget so a slow store never stalls live traffic; failures are
// logged and counted, never retried or surfaced to clients.
type Sync struct {
	store   Store
	timeout time.Duration
}

func NewSync(store Store) *Sync {
	return &Sync{store: store, timeout: defaultTimeout}
}

// UpdateCount pushes the participant count without blocking the caller.
func (s *Sync) UpdateCount(roomID string, count int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.store.UpdateCount(ctx, roomID, count); err != nil {
			metric.DirectorySyncFailed("update-count")
			slog.Warn("directory count update failed",
				slog.String(constant.RoomID, roomID),
				slog.Any(constant.Error, err),
			)
		}
	}()
}

// ReconcileEmpty decides what happens to a room whose registry reached
// zero. Permanent rooms are left active. For non-permanent rooms the
// occupancy callback is consulted immediately before committing the
// deactivation, so a re-admission racing this read-then-write sequence
// aborts it. Returns true only when the room was deactivated.
//
// The caller runs this off the room's message path; it must never be
// invoked from the actor goroutine itself, since occupancy calls back in.
func (s *Sync) ReconcileEmpty(ctx context.Context, roomID string, occupancy func() int) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	permanent, err := s.store.ReadPermanence(ctx, roomID)
	if err != nil {
		metric.DirectorySyncFailed("read-permanence")
		slog.Warn("directory permanence read failed",
			slog.String(constant.RoomID, roomID),
			slog.Any(constant.Error, err),
		)
		return false
	}
	if permanent {
		return false
	}

	if occupancy() > 0 {
		slog.Info("room re-admitted during reconcile, keeping active",
			slog.String(constant.RoomID, roomID),
		)
		return false
	}

	if err := s.store.Deactivate(ctx, roomID); err != nil {
		metric.DirectorySyncFailed("deactivate")
		slog.Warn("directory deactivation failed",
			slog.String(constant.RoomID, roomID),
			slog.Any(constant.Error, err),
		)
		return false
	}

	slog.Info("room deactivated in directory", slog.String(constant.RoomID, roomID))
	return true
}
