// Package ledger keeps a history of per-season batch results in PostgreSQL.
package ledger

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/strikezone/internal/contracts"
)

//go:embed schema.sql
var schemaSQL string

// Run is one stored season result
type Run struct {
	RunID      string    `json:"run_id"`
	ConfigHash string    `json:"config_hash"`
	RecordedAt time.Time `json:"recorded_at"`
	contracts.YearResult
}

// Store persists season results
type Store interface {
	EnsureSchema(ctx context.Context) error
	SaveYear(ctx context.Context, runID, configHash string, res contracts.YearResult) error
	ListRuns(ctx context.Context, year, limit int) ([]Run, error)
}

// Repository is the PostgreSQL Store
// ⭐ SSOT: year_runs 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new ledger repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the schema and table when missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply ledger schema: %w", err)
		}
	}
	return nil
}

// SaveYear upserts one season result of a run
func (r *Repository) SaveYear(ctx context.Context, runID, configHash string, res contracts.YearResult) error {
	artifacts := res.Artifacts
	if artifacts == nil {
		artifacts = []string{}
	}
	artifactsJSON, err := json.Marshal(artifacts)
	if err != nil {
		return fmt.Errorf("failed to marshal artifacts: %w", err)
	}

	var bottom, top *float64
	var derived *bool
	if res.Zone != nil {
		bottom, top, derived = &res.Zone.Bottom, &res.Zone.Top, &res.Zone.Derived
	}

	query := `
		INSERT INTO strikezone.year_runs (
			run_id, year, config_hash, source, status, error_kind, stage, reason,
			raw_rows, cleaned, dropped, binned,
			zone_bottom, zone_top, zone_derived,
			checksum, cache_hit, artifacts, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (run_id, year) DO UPDATE SET
			status = EXCLUDED.status,
			error_kind = EXCLUDED.error_kind,
			stage = EXCLUDED.stage,
			reason = EXCLUDED.reason,
			raw_rows = EXCLUDED.raw_rows,
			cleaned = EXCLUDED.cleaned,
			dropped = EXCLUDED.dropped,
			binned = EXCLUDED.binned,
			zone_bottom = EXCLUDED.zone_bottom,
			zone_top = EXCLUDED.zone_top,
			zone_derived = EXCLUDED.zone_derived,
			checksum = EXCLUDED.checksum,
			cache_hit = EXCLUDED.cache_hit,
			artifacts = EXCLUDED.artifacts,
			duration_ms = EXCLUDED.duration_ms,
			recorded_at = now()
	`

	_, err = r.pool.Exec(ctx, query,
		runID, res.Year, configHash, res.Source, string(res.Status), string(res.Kind), string(res.Stage), res.Reason,
		res.RawRows, res.Cleaned, res.Dropped, res.Binned,
		bottom, top, derived,
		res.Checksum, res.CacheHit, artifactsJSON, res.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to save year %d: %w", res.Year, err)
	}
	return nil
}

// ListRuns returns the latest results, newest first.
// year 0 lists every season.
func (r *Repository) ListRuns(ctx context.Context, year, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT run_id::text, year, config_hash, source, status, error_kind, stage, reason,
		       raw_rows, cleaned, dropped, binned,
		       zone_bottom, zone_top, zone_derived,
		       checksum, cache_hit, artifacts, duration_ms, recorded_at
		FROM strikezone.year_runs
		WHERE ($1 = 0 OR year = $1)
		ORDER BY recorded_at DESC, year
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, year, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var run Run
		var status, kind, stage string
		var bottom, top *float64
		var derived *bool
		var artifactsJSON []byte
		var durationMs int64

		if err := rows.Scan(
			&run.RunID, &run.Year, &run.ConfigHash, &run.Source, &status, &kind, &stage, &run.Reason,
			&run.RawRows, &run.Cleaned, &run.Dropped, &run.Binned,
			&bottom, &top, &derived,
			&run.Checksum, &run.CacheHit, &artifactsJSON, &durationMs, &run.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.Status = contracts.Status(status)
		run.Kind = contracts.ErrorKind(kind)
		run.Stage = contracts.Stage(stage)
		run.Duration = time.Duration(durationMs) * time.Millisecond
		if bottom != nil && top != nil {
			run.Zone = &contracts.ZoneBoundary{Bottom: *bottom, Top: *top, Derived: derived != nil && *derived}
		}
		if err := json.Unmarshal(artifactsJSON, &run.Artifacts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal artifacts: %w", err)
		}

		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// NopStore discards results; used when no database is configured
type NopStore struct{}

func (NopStore) EnsureSchema(context.Context) error { return nil }

func (NopStore) SaveYear(context.Context, string, string, contracts.YearResult) error { return nil }

func (NopStore) ListRuns(context.Context, int, int) ([]Run, error) { return nil, nil }
