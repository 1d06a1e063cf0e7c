package system

import (
	"time"

	coresys "github.com/hearthfall/server/internal/core/system"
	"github.com/hearthfall/server/internal/world"
	"go.uber.org/zap"
)

// RespawnSystem re-creates dead members of respawn-flagged waves at their
// spawn point after the wave's respawn delay. Bosses never respawn.
// Phase 3 (PostUpdate).
type RespawnSystem struct {
	state *world.State
	log   *zap.Logger
}

func NewRespawnSystem(ws *world.State, log *zap.Logger) *RespawnSystem {
	return &RespawnSystem{state: ws, log: log}
}

func (s *RespawnSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *RespawnSystem) Update(dt time.Duration) {
	dtMs := dt.Milliseconds()
	for _, in := range s.state.Instances {
		if in.Complete {
			continue
		}
		for _, npc := range in.Enemies {
			if !npc.Dead || npc.IsBoss {
				continue
			}
			if npc.WaveIndex < 0 || npc.WaveIndex >= len(in.Def.Waves) {
				continue
			}
			wave := &in.Def.Waves[npc.WaveIndex]
			if !wave.Respawn {
				continue
			}
			ai := in.AIFor(npc.ID)
			if ai == nil {
				continue
			}
			ai.RespawnMs += dtMs
			if ai.RespawnMs < wave.RespawnDelayMs {
				continue
			}
			s.respawn(npc, ai)
			s.log.Debug("enemy respawned",
				zap.String("encounter", in.ID),
				zap.Int64("entity", npc.ID),
				zap.Int("wave", npc.WaveIndex))
		}
	}
}

// respawn restores the entity at its spawn point with a clean AI record.
func (s *RespawnSystem) respawn(npc *world.Character, ai *world.AIState) {
	npc.Dead = false
	npc.Warmth = npc.MaxWarmth
	npc.Energy = npc.MaxEnergy
	npc.Pos = ai.SpawnPosition
	npc.AttackCooldownMs = 0
	npc.SlowMsLeft = 0
	npc.SlowFactor = 0
	npc.KnockdownMsLeft = 0

	ai.Engagement = world.EngagementIdle
	ai.ClearCombat()
	ai.RespawnMs = 0
}
