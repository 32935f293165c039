package room

import (
	"log/slog"

	"github.com/lingopeer/lingopeer/internal/application/constant"
	"github.com/lingopeer/lingopeer/internal/application/metric"
)

// fanOut delivers msg to every session in registry except exclude and
// returns the ids whose sink rejected the write. It never mutates the
// registry; the caller prunes after the pass completes.
func fanOut(registry map[string]*Session, exclude string, msg any) []string {
	var dead []string

	for id, sess := range registry {
		if id == exclude {
			continue
		}
		if err := sess.send(msg); err != nil {
			slog.Warn("session write failed",
				slog.String(constant.ParticipantID, id),
				slog.Any(constant.Error, err),
			)
			metric.DeadSinkPruned()
			dead = append(dead, id)
		}
	}

	return dead
}

// sendTo delivers msg to a single session, reporting whether the sink is
// still alive.
func sendTo(sess *Session, msg any) bool {
	if err := sess.send(msg); err != nil {
		slog.Warn("session write failed",
			slog.String(constant.ParticipantID, sess.ID),
			slog.Any(constant.Error, err),
		)
		metric.DeadSinkPruned()
		return false
	}
	return true
}
