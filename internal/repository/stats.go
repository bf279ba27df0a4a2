package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"valorant-scout/internal/cache"
	"valorant-scout/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

const (
	getStatsQuery = `
SELECT found, play_count, win_rate, attack_win_rate, defense_win_rate, compositions
FROM map_stats
WHERE team_id = ? AND map_name = ? AND window_key = ?`

	upsertStatsQuery = `
INSERT INTO map_stats (
    id, team_id, map_name, window_key, found, play_count,
    win_rate, attack_win_rate, defense_win_rate, compositions, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (team_id, map_name, window_key) DO UPDATE SET
    found = excluded.found,
    play_count = excluded.play_count,
    win_rate = excluded.win_rate,
    attack_win_rate = excluded.attack_win_rate,
    defense_win_rate = excluded.defense_win_rate,
    compositions = excluded.compositions`

	clearStatsQuery = `DELETE FROM map_stats`

	countStatsQuery = `SELECT COUNT(*) FROM map_stats`
)

// StatsRepository is a cache.Store over the map_stats table.
type StatsRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

var _ cache.Store = (*StatsRepository)(nil)

func NewStatsRepository(sqlDB *sql.DB, logger zerolog.Logger) *StatsRepository {
	return &StatsRepository{
		db:     sqlDB,
		logger: logger.With().Str("component", "stats_repository").Logger(),
	}
}

func (r *StatsRepository) Get(ctx context.Context, key cache.Key) (cache.Entry, bool, error) {
	var (
		found        bool
		record       domain.MapPerformanceRecord
		compositions string
	)
	err := r.db.QueryRowContext(ctx, getStatsQuery, key.TeamID, key.MapName, key.Window).Scan(
		&found,
		&record.PlayCount,
		&record.WinRate,
		&record.AttackWinRate,
		&record.DefenseWinRate,
		&compositions,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return cache.Entry{}, false, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("team_id", key.TeamID).Str("map", key.MapName).Msg("failed to read cached stats")
		return cache.Entry{}, false, fmt.Errorf("failed to read cached stats: %w", err)
	}

	if !found {
		return cache.Entry{}, true, nil
	}

	if err := json.Unmarshal([]byte(compositions), &record.Compositions); err != nil {
		return cache.Entry{}, false, fmt.Errorf("failed to decode cached compositions: %w", err)
	}
	if record.Compositions == nil {
		record.Compositions = []domain.Composition{}
	}
	record.MapName = key.MapName

	return cache.Entry{Record: &record}, true, nil
}

func (r *StatsRepository) Set(ctx context.Context, key cache.Key, entry cache.Entry) error {
	id, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate nanoid: %w", err)
	}

	var (
		record       domain.MapPerformanceRecord
		compositions = []byte("[]")
	)
	if entry.Found() {
		record = *entry.Record
		if len(record.Compositions) > 0 {
			compositions, err = json.Marshal(record.Compositions)
			if err != nil {
				return fmt.Errorf("failed to encode compositions: %w", err)
			}
		}
	}

	_, err = r.db.ExecContext(ctx, upsertStatsQuery,
		id,
		key.TeamID,
		key.MapName,
		key.Window,
		entry.Found(),
		record.PlayCount,
		record.WinRate,
		record.AttackWinRate,
		record.DefenseWinRate,
		string(compositions),
		time.Now().UTC(),
	)
	if err != nil {
		r.logger.Error().Err(err).Str("team_id", key.TeamID).Str("map", key.MapName).Msg("failed to cache stats")
		return fmt.Errorf("failed to cache stats: %w", err)
	}
	return nil
}

func (r *StatsRepository) Clear(ctx context.Context) error {
	res, err := r.db.ExecContext(ctx, clearStatsQuery)
	if err != nil {
		return fmt.Errorf("failed to clear cached stats: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		r.logger.Debug().Int64("rows", n).Msg("cached stats cleared")
	}
	return nil
}

func (r *StatsRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countStatsQuery).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cached stats: %w", err)
	}
	return n, nil
}
