package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/icarus-engine/icarus/internal/core/ecs"
	"github.com/jackc/pgx/v5"
)

var tickColumns = []string{"run_id", "tick", "duration_us", "dispatches", "row_count", "skipped"}

type TickRepo struct {
	db *DB
}

func NewTickRepo(db *DB) *TickRepo {
	return &TickRepo{db: db}
}

// InsertBatch copies a batch of tick stats into the journal in one round trip.
func (r *TickRepo) InsertBatch(ctx context.Context, runID string, stats []ecs.TickStats) error {
	if len(stats) == 0 {
		return nil
	}
	id, err := uuid.Parse(runID)
	if err != nil {
		return fmt.Errorf("journal run id: %w", err)
	}
	n, err := r.db.Pool.CopyFrom(ctx,
		pgx.Identifier{"tick_journal"},
		tickColumns,
		pgx.CopyFromSlice(len(stats), func(i int) ([]any, error) {
			s := stats[i]
			return []any{id, int64(s.Tick), s.Duration.Microseconds(), s.Dispatches, s.Rows, s.Skipped}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("journal copy: %w", err)
	}
	if int(n) != len(stats) {
		return fmt.Errorf("journal copy: wrote %d of %d rows", n, len(stats))
	}
	return nil
}

// Recent returns up to limit of the run's latest ticks, newest first.
func (r *TickRepo) Recent(ctx context.Context, runID uuid.UUID, limit int) ([]ecs.TickStats, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT tick, duration_us, dispatches, row_count, skipped
		 FROM tick_journal WHERE run_id = $1 ORDER BY tick DESC LIMIT $2`,
		runID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []ecs.TickStats
	for rows.Next() {
		var (
			s    ecs.TickStats
			tick int64
			us   int64
		)
		if err := rows.Scan(&tick, &us, &s.Dispatches, &s.Rows, &s.Skipped); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		s.Tick = uint64(tick)
		s.Duration = time.Duration(us) * time.Microsecond
		out = append(out, s)
	}
	return out, rows.Err()
}
