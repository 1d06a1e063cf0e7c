package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hearthfall/server/internal/data"
	"github.com/hearthfall/server/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding the combat resolver's damage
// formulas. Single-goroutine access only (game loop). Keeping the math in
// Lua lets balance changes ship without a server rebuild.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"core", "combat", "hazard"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

func (e *Engine) Close() {
	e.vm.Close()
}

// MeleeContext holds pre-packed data for one attack calculation.
type MeleeContext struct {
	AttackerDamage float64 // base damage after spec multipliers
	AttackerMult   float64 // current damage baseline (phases, enrage)
	AttackerSchool string
	TargetWarmth   float64
	TargetMax      float64
	TargetSchool   string
}

// MeleeResult is returned by the Lua melee function.
type MeleeResult struct {
	IsHit  bool
	Damage float64
}

// CalcMeleeDamage calls the Lua calc_melee_damage function. Falls back to
// plain damage × multiplier when the script is missing.
func (e *Engine) CalcMeleeDamage(ctx MeleeContext) MeleeResult {
	fallback := MeleeResult{IsHit: true, Damage: ctx.AttackerDamage * ctx.AttackerMult}

	fn := e.vm.GetGlobal("calc_melee_damage")
	if fn == lua.LNil {
		return fallback
	}

	t := e.vm.NewTable()
	atk := e.vm.NewTable()
	atk.RawSetString("damage", lua.LNumber(ctx.AttackerDamage))
	atk.RawSetString("mult", lua.LNumber(ctx.AttackerMult))
	atk.RawSetString("school", lua.LString(ctx.AttackerSchool))
	t.RawSetString("attacker", atk)

	tgt := e.vm.NewTable()
	tgt.RawSetString("warmth", lua.LNumber(ctx.TargetWarmth))
	tgt.RawSetString("max_warmth", lua.LNumber(ctx.TargetMax))
	tgt.RawSetString("school", lua.LString(ctx.TargetSchool))
	t.RawSetString("target", tgt)

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, t); err != nil {
		e.log.Error("lua calc_melee_damage failed", zap.Error(err))
		return fallback
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)

	res, ok := ret.(*lua.LTable)
	if !ok {
		return fallback
	}
	out := MeleeResult{}
	if v, ok := res.RawGetString("hit").(lua.LBool); ok {
		out.IsHit = bool(v)
	}
	if v, ok := res.RawGetString("damage").(lua.LNumber); ok {
		out.Damage = float64(v)
	}
	return out
}

// HazardDamage computes one zone tick's damage against a target by calling
// the Lua calc_hazard_tick function. Implements system.HazardResolver.
func (e *Engine) HazardDamage(zone *data.HazardZone, target *world.Character) float64 {
	fn := e.vm.GetGlobal("calc_hazard_tick")
	if fn == lua.LNil {
		return zone.Amount
	}

	t := e.vm.NewTable()
	t.RawSetString("amount", lua.LNumber(zone.Amount))
	t.RawSetString("radius", lua.LNumber(zone.Radius))
	t.RawSetString("target_warmth", lua.LNumber(target.Warmth))
	t.RawSetString("target_max", lua.LNumber(target.MaxWarmth))
	t.RawSetString("target_school", lua.LString(target.School))

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, t); err != nil {
		e.log.Error("lua calc_hazard_tick failed", zap.Error(err))
		return zone.Amount
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)

	if v, ok := ret.(lua.LNumber); ok {
		return float64(v)
	}
	return zone.Amount
}
