package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"valorant-scout/internal/cache"
	"valorant-scout/internal/catalog"
	"valorant-scout/internal/config"
	"valorant-scout/internal/constants"
	"valorant-scout/internal/domain"
	"valorant-scout/internal/extract"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound means the stats page has no usable row for the map.
var ErrNotFound = errors.New("map stats not found")

var ErrInvalidArgument = errors.New("invalid argument")

type DocumentFetcher interface {
	Fetch(ctx context.Context, teamID string, window domain.DateWindow) (string, error)
}

type Status string

const (
	StatusFound       Status = "found"
	StatusNotFound    Status = "not_found"
	StatusUnavailable Status = "unavailable"
)

// MapResult is one lookup of a batch, keyed by team and map.
type MapResult struct {
	TeamID  string
	MapName string
	Status  Status
	Record  *domain.MapPerformanceRecord
	Err     error
}

type Scout struct {
	fetcher   DocumentFetcher
	extractor *extract.Extractor
	store     cache.Store
	logger    zerolog.Logger

	mu     sync.RWMutex
	window domain.DateWindow

	fetches singleflight.Group
}

func NewScout(fetcher DocumentFetcher, store cache.Store, cfg *config.Config, logger zerolog.Logger) *Scout {
	return &Scout{
		fetcher:   fetcher,
		extractor: extract.New(extract.DefaultLayout, logger),
		store:     store,
		logger:    logger.With().Str("component", "scout").Logger(),
		window:    domain.LastDays(cfg.DefaultWindowDays),
	}
}

func (s *Scout) Window() domain.DateWindow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window
}

// SetWindow makes w the active window. Switching to a different window clears
// the cache.
func (s *Scout) SetWindow(ctx context.Context, w domain.DateWindow) (bool, error) {
	if err := w.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.window.Key() == w.Key() {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear cache")
		return false, fmt.Errorf("failed to clear cache: %w", err)
	}

	s.logger.Info().Str("from", s.window.Key()).Str("to", w.Key()).Msg("date window changed, cache cleared")
	s.window = w
	return true, nil
}

// MapStats returns the record for one map in window. Callers resolve the
// window once per request so the cache key, the fetch and the reported window
// agree. It returns ErrNotFound when the page has no row for the map and a
// *vlr.TransportError when the stats site could not be reached.
func (s *Scout) MapStats(ctx context.Context, teamID, mapName string, window domain.DateWindow) (*domain.MapPerformanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	teamID = strings.TrimSpace(teamID)
	mapName = strings.TrimSpace(mapName)
	if teamID == "" {
		return nil, fmt.Errorf("%w: team id is required", ErrInvalidArgument)
	}
	if mapName == "" {
		return nil, fmt.Errorf("%w: map name is required", ErrInvalidArgument)
	}
	if err := window.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	key := cache.NewKey(teamID, mapName, window)
	log := s.logger.With().Str("team_id", teamID).Str("map", mapName).Str("window", window.Key()).Logger()

	entry, ok, err := s.store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Msg("cache read failed, fetching")
	}
	if ok {
		log.Debug().Bool("found", entry.Found()).Msg("returning cached stats")
		return resultOf(entry, mapName)
	}

	document, err := s.fetchDocument(ctx, teamID, window)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch stats page")
		return nil, err
	}

	record, found := s.extractor.Extract(document, mapName)
	entry = cache.Entry{}
	if found {
		entry.Record = record
	}

	if err := s.store.Set(ctx, key, entry); err != nil {
		log.Warn().Err(err).Msg("failed to cache stats")
	}

	log.Info().Bool("found", found).Msg("map stats loaded")
	return resultOf(entry, mapName)
}

// TeamMapStats looks up every map independently in window. An empty list means
// the whole map pool. Results keep the order of maps.
func (s *Scout) TeamMapStats(ctx context.Context, teamID string, maps []string, window domain.DateWindow) []MapResult {
	if len(maps) == 0 {
		maps = catalog.Pool()
	}

	results := make([]MapResult, len(maps))

	g := new(errgroup.Group)
	g.SetLimit(constants.MaxParallelLookups)
	for i, mapName := range maps {
		i, mapName := i, mapName
		g.Go(func() error {
			record, err := s.MapStats(ctx, teamID, mapName, window)
			results[i] = MapResult{
				TeamID:  teamID,
				MapName: mapName,
				Status:  StatusOf(err),
				Record:  record,
				Err:     err,
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Debug().Str("team_id", teamID).Str("window", window.Key()).Int("maps", len(maps)).Msg("team map stats loaded")
	return results
}

// fetchDocument coalesces concurrent fetches of the same team page.
func (s *Scout) fetchDocument(ctx context.Context, teamID string, window domain.DateWindow) (string, error) {
	ch := s.fetches.DoChan(teamID+"|"+window.Key(), func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.ExternalAPITimeout)
		defer cancel()
		return s.fetcher.Fetch(ctx, teamID, window)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// resultOf copies the cached record so MapName echoes the caller's spelling.
func resultOf(entry cache.Entry, mapName string) (*domain.MapPerformanceRecord, error) {
	if !entry.Found() {
		return nil, ErrNotFound
	}
	record := *entry.Record
	record.MapName = mapName
	return &record, nil
}

func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusFound
	case errors.Is(err, ErrNotFound):
		return StatusNotFound
	default:
		return StatusUnavailable
	}
}
