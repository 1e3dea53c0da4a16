package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RunInfo identifies one engine run in the journal.
type RunInfo struct {
	ID       uuid.UUID
	Scene    string
	Workers  int
	Entities int
}

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Start records a new run.
func (r *RunRepo) Start(ctx context.Context, run RunInfo) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO engine_runs (id, scene, workers, entities) VALUES ($1, $2, $3, $4)`,
		run.ID, run.Scene, run.Workers, run.Entities,
	)
	if err != nil {
		return fmt.Errorf("start run %s: %w", run.ID, err)
	}
	return nil
}

// Finish stamps the run with its end time, tick count and exit status.
func (r *RunRepo) Finish(ctx context.Context, id uuid.UUID, ticks uint64, status string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE engine_runs SET finished_at = now(), ticks = $2, status = $3 WHERE id = $1`,
		id, int64(ticks), status,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finish run %s: no such run", id)
	}
	return nil
}
