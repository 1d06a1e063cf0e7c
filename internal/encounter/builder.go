package encounter

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/hearthfall/server/internal/data"
	"github.com/hearthfall/server/internal/world"
	"go.uber.org/zap"
)

// Defaults applied when a wave leaves engagement tuning unset.
const (
	DefaultEngagementRadius  = 12.0
	DefaultLeashRadius       = 30.0
	DefaultEngagementDelayMs = 500
)

// goldenAngle spreads spawn offsets around the wave center so same-index
// rebuilds land on the same spot.
const goldenAngle = 2.399963229728653

// IDGenerator hands out unique entity IDs. world.NextEntityID satisfies it.
type IDGenerator func() int64

// Builder turns encounter definitions into live instances: spawned
// characters, per-entity AI state, hazard runtime state, with difficulty and
// affix scaling applied.
type Builder struct {
	enemies  *data.EnemyTable
	capacity int // entity pool capacity per instance; soft limit

	engageRadius  float64
	engageDelayMs int64

	log *zap.Logger
	seq int
}

func NewBuilder(enemies *data.EnemyTable, capacity int, engageRadius float64, engageDelayMs int64, log *zap.Logger) *Builder {
	if engageRadius <= 0 {
		engageRadius = DefaultEngagementRadius
	}
	if engageDelayMs <= 0 {
		engageDelayMs = DefaultEngagementDelayMs
	}
	return &Builder{
		enemies:       enemies,
		capacity:      capacity,
		engageRadius:  engageRadius,
		engageDelayMs: engageDelayMs,
		log:           log,
	}
}

// Build spawns one live instance from def. Malformed definitions (bad wave
// or hazard indices, unknown specs) fail here, before a match starts.
// Spawning past the entity pool capacity truncates instead of failing: a
// soft resource limit, not a correctness violation.
//
// Stat scaling is multiplicative and order-independent:
// final = base × difficulty × ∏ affix multipliers for that stat.
//
// Spawn offsets are derived from each entity's index plus the seeded rng,
// so rebuilding the same definition with the same seed reproduces the exact
// layout (replay and test determinism).
func (b *Builder) Build(def *data.EncounterDefinition, difficulty float64, affixes []data.ActiveAffix, rng *rand.Rand, idGen IDGenerator) (*world.Instance, error) {
	if err := def.Validate(b.enemies); err != nil {
		return nil, fmt.Errorf("build encounter: %w", err)
	}
	if difficulty <= 0 {
		difficulty = 1
	}
	if idGen == nil {
		idGen = world.NextEntityID
	}

	b.seq++
	in := &world.Instance{
		ID:         fmt.Sprintf("%s-%d", def.ID, b.seq),
		Def:        def,
		Difficulty: difficulty,
		Affixes:    affixes,
		AIStates:   make(map[int64]*world.AIState),
	}

	truncated := false
	for wi := range def.Waves {
		wave := &def.Waves[wi]
		idx := 0
		for _, m := range wave.Members {
			spec := b.enemies.Get(m.SpecID)
			for n := 0; n < m.Count; n++ {
				if b.capacity > 0 && len(in.Enemies) >= b.capacity {
					truncated = true
					break
				}
				b.spawnOne(in, spec, wave, wi, idx, difficulty, affixes, rng, idGen, false)
				idx++
			}
		}
	}
	if truncated {
		b.log.Warn("entity pool capacity reached, spawn truncated",
			zap.String("encounter", in.ID),
			zap.Int("capacity", b.capacity))
	}

	if def.Boss != nil {
		b.spawnBoss(in, def.Boss, difficulty, affixes, rng, idGen)
	}

	for hi := range def.Hazards {
		hz := &def.Hazards[hi]
		in.Hazards = append(in.Hazards, &world.HazardZoneState{
			Def:     hz,
			Index:   hi,
			Dormant: hz.Dormant,
		})
	}

	return in, nil
}

func (b *Builder) spawnOne(in *world.Instance, spec *data.EnemySpec, wave *data.EnemyWave, waveIndex, index int, difficulty float64, affixes []data.ActiveAffix, rng *rand.Rand, idGen IDGenerator, midCombat bool) *world.Character {
	center := world.Vec2{X: wave.SpawnX, Y: wave.SpawnY}
	pos := center.Add(spawnOffset(rng, wave.SpawnRadius, index))

	c := b.newCharacter(spec, difficulty, affixes, idGen)
	c.WaveIndex = waveIndex
	c.Pos = pos

	ai := &world.AIState{
		EntityID:          c.ID,
		Engagement:        world.EngagementIdle,
		SpawnPosition:     pos,
		EngagementRadius:  orDefault(wave.EngagementRadius, b.engageRadius),
		LeashRadius:       orDefault(wave.LeashRadius, DefaultLeashRadius),
		EngagementDelayMs: orDefaultI(wave.EngagementDelayMs, b.engageDelayMs),
		WaveIndex:         waveIndex,
	}
	if midCombat {
		// Adds join a fight already in progress: no alert delay.
		ai.Engagement = world.EngagementAlerted
		ai.EngagementDelayMs = 0
	}

	in.Enemies = append(in.Enemies, c)
	in.AIStates[c.ID] = ai
	return c
}

func (b *Builder) spawnBoss(in *world.Instance, cfg *data.BossConfig, difficulty float64, affixes []data.ActiveAffix, rng *rand.Rand, idGen IDGenerator) {
	spec := b.enemies.Get(cfg.SpecID)
	c := b.newCharacter(spec, difficulty, affixes, idGen)
	c.IsBoss = true
	c.WaveIndex = -1
	c.Pos = world.Vec2{X: cfg.ArenaX, Y: cfg.ArenaY}

	in.AIStates[c.ID] = &world.AIState{
		EntityID:      c.ID,
		Engagement:    world.EngagementIdle,
		SpawnPosition: c.Pos,
		// The boss notices anything entering its arena and never chases
		// beyond it.
		EngagementRadius:  cfg.ArenaRadius,
		LeashRadius:       cfg.ArenaRadius,
		EngagementDelayMs: b.engageDelayMs,
		WaveIndex:         -1,
	}
	in.Enemies = append(in.Enemies, c)
	in.Boss = c
	in.ArenaRadius = cfg.ArenaRadius
}

func (b *Builder) newCharacter(spec *data.EnemySpec, difficulty float64, affixes []data.ActiveAffix, idGen IDGenerator) *world.Character {
	warmth := spec.BaseWarmth() * difficulty * affixProduct(affixes, "warmth")
	energy := spec.BaseEnergy() * difficulty * affixProduct(affixes, "energy")
	damage := spec.BaseDamage() * difficulty * affixProduct(affixes, "damage")
	speed := spec.MoveSpeed * affixProduct(affixes, "speed")

	return &world.Character{
		ID:              idGen(),
		SpecID:          spec.SpecID,
		Name:            spec.Name,
		School:          spec.School,
		Team:            world.TeamEnemies,
		Warmth:          warmth,
		MaxWarmth:       warmth,
		Energy:          energy,
		MaxEnergy:       energy,
		BaseDamage:      damage,
		AttackRange:     spec.AttackRange,
		MoveSpeed:       speed,
		DamageMult:      1,
		SpeedMult:       1,
		ImmuneSlow:      spec.ImmuneSlow,
		ImmuneKnockdown: spec.ImmuneKnockdown,
	}
}

// SpawnAdds spawns count extra members of an existing wave into a running
// instance, cycling through the wave's member specs. Used by boss phases.
// Wave index is validated at build time; capacity still truncates.
func (b *Builder) SpawnAdds(in *world.Instance, waveIndex, count int) []*world.Character {
	if waveIndex < 0 || waveIndex >= len(in.Def.Waves) {
		return nil
	}
	wave := &in.Def.Waves[waveIndex]
	if len(wave.Members) == 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(int64(len(in.Enemies))*7919 + int64(waveIndex)))
	var out []*world.Character
	for n := 0; n < count; n++ {
		if b.capacity > 0 && len(in.Enemies) >= b.capacity {
			break
		}
		spec := b.enemies.Get(wave.Members[n%len(wave.Members)].SpecID)
		c := b.spawnOne(in, spec, wave, waveIndex, len(in.Enemies), in.Difficulty, in.Affixes, rng, world.NextEntityID, true)
		out = append(out, c)
	}
	if len(out) > 0 {
		b.log.Info("adds spawned",
			zap.String("encounter", in.ID),
			zap.Int("wave", waveIndex),
			zap.Int("count", len(out)))
	}
	return out
}

// spawnOffset places index i on a golden-angle spiral inside radius. The
// angle is pure index math; the radial fraction draws from the seeded rng,
// so identical seeds give identical layouts.
func spawnOffset(rng *rand.Rand, radius float64, index int) world.Vec2 {
	if radius <= 0 {
		return world.Vec2{}
	}
	angle := float64(index) * goldenAngle
	r := radius * math.Sqrt(rng.Float64())
	return world.Vec2{X: r * math.Cos(angle), Y: r * math.Sin(angle)}
}

func affixProduct(affixes []data.ActiveAffix, stat string) float64 {
	p := 1.0
	for _, a := range affixes {
		if a.Stat == stat && a.Multiplier > 0 {
			p *= a.Multiplier
		}
	}
	return p
}

func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

func orDefaultI(v, def int64) int64 {
	if v > 0 {
		return v
	}
	return def
}
