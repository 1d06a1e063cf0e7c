package system

import (
	"context"
	"time"

	"github.com/hearthfall/server/internal/core/event"
	coresys "github.com/hearthfall/server/internal/core/system"
	"github.com/hearthfall/server/internal/persist"
	"go.uber.org/zap"
)

// ResultSaver persists finished-encounter rows. Implemented by
// persist.EncounterRepo; nil disables persistence entirely.
type ResultSaver interface {
	SaveResult(ctx context.Context, res persist.EncounterResult) error
}

// PersistSystem writes completed encounters to the database. It subscribes
// to EncounterComplete and drains the queue during the persist phase, so a
// slow insert never lands in the middle of game logic. Phase 4 (Persist).
type PersistSystem struct {
	repo     ResultSaver
	serverID int
	log      *zap.Logger
	pending  []event.EncounterComplete
}

func NewPersistSystem(bus *event.Bus, repo ResultSaver, serverID int, log *zap.Logger) *PersistSystem {
	s := &PersistSystem{repo: repo, serverID: serverID, log: log}
	event.Subscribe(bus, func(ev event.EncounterComplete) {
		s.pending = append(s.pending, ev)
	})
	return s
}

func (s *PersistSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistSystem) Update(_ time.Duration) {
	if s.repo == nil || len(s.pending) == 0 {
		s.pending = s.pending[:0]
		return
	}
	for _, ev := range s.pending {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := s.repo.SaveResult(ctx, persist.EncounterResult{
			EncounterID: ev.EncounterID,
			ServerID:    s.serverID,
			Difficulty:  ev.Difficulty,
			DurationMs:  ev.DurationMs,
			Kills:       ev.Kills,
			BossDown:    ev.BossDown,
			PhasesFired: ev.PhasesFired,
		})
		cancel()
		if err != nil {
			s.log.Error("save encounter result", zap.Error(err),
				zap.String("encounter", ev.EncounterID))
		}
	}
	s.pending = s.pending[:0]
}
