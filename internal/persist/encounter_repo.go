package persist

import (
	"context"
)

// EncounterResult is one finished-encounter row.
type EncounterResult struct {
	EncounterID string
	ServerID    int
	Difficulty  float64
	DurationMs  int64
	Kills       int
	BossDown    bool
	PhasesFired int
}

// EncounterRepo handles encounter telemetry database operations.
type EncounterRepo struct {
	db *DB
}

func NewEncounterRepo(db *DB) *EncounterRepo {
	return &EncounterRepo{db: db}
}

// SaveResult inserts one completed encounter.
func (r *EncounterRepo) SaveResult(ctx context.Context, res EncounterResult) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO encounter_results
		   (encounter_id, server_id, difficulty, duration_ms, kills, boss_down, phases_fired)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		res.EncounterID, res.ServerID, res.Difficulty, res.DurationMs,
		res.Kills, res.BossDown, res.PhasesFired)
	return err
}

// RecentResults returns the latest n rows for an encounter, newest first.
// Used by ops tooling to eyeball balance after a content change.
func (r *EncounterRepo) RecentResults(ctx context.Context, encounterID string, n int) ([]EncounterResult, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT encounter_id, server_id, difficulty, duration_ms, kills, boss_down, phases_fired
		 FROM encounter_results
		 WHERE encounter_id = $1
		 ORDER BY finished_at DESC
		 LIMIT $2`,
		encounterID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EncounterResult
	for rows.Next() {
		var res EncounterResult
		if err := rows.Scan(&res.EncounterID, &res.ServerID, &res.Difficulty,
			&res.DurationMs, &res.Kills, &res.BossDown, &res.PhasesFired); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
