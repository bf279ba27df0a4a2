package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"valorant-scout/internal/cache"
	"valorant-scout/internal/catalog"
	"valorant-scout/internal/config"
	"valorant-scout/internal/domain"
	"valorant-scout/internal/vlr"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statsPage = `<html><body><table>
<tr><th>Map</th><th>WIN%</th></tr>
<tr><td>Ascent (14)</td><td></td><td>57%</td><td></td><td></td><td></td><td></td><td>52%</td><td></td><td></td><td>48%</td>
<td><div class="agent-comp-agg"><span>6</span><img src="/img/vlr/game/agents/jett.png"><img src="/img/vlr/game/agents/omen.png"></div></td></tr>
<tr><td>Bind (3)</td><td></td><td>33%</td><td></td><td></td><td></td><td></td></tr>
</table></body></html>`

type fakeFetcher struct {
	mu      sync.Mutex
	calls   atomic.Int32
	windows []domain.DateWindow
	body    string
	err     error
	delay   time.Duration
}

func (f *fakeFetcher) Fetch(ctx context.Context, teamID string, window domain.DateWindow) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.windows = append(f.windows, window)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.body, nil
}

func newTestScout(fetcher DocumentFetcher) (*Scout, *cache.MemoryStore) {
	store := cache.NewMemoryStore()
	cfg := &config.Config{DefaultWindowDays: 30}
	return NewScout(fetcher, store, cfg, zerolog.Nop()), store
}

func TestMapStatsCachesResult(t *testing.T) {
	fetcher := &fakeFetcher{body: statsPage}
	scout, store := newTestScout(fetcher)
	ctx := context.Background()

	first, err := scout.MapStats(ctx, "123", "Ascent", scout.Window())
	require.NoError(t, err)
	require.Equal(t, 14, first.PlayCount)
	require.Equal(t, "57%", first.WinRate)
	require.Len(t, first.Compositions, 1)

	second, err := scout.MapStats(ctx, "123", "Ascent", scout.Window())
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.EqualValues(t, 1, fetcher.calls.Load())
	require.Equal(t, 1, store.Len())
}

func TestMapStatsWindowChangeRefetches(t *testing.T) {
	fetcher := &fakeFetcher{body: statsPage}
	scout, store := newTestScout(fetcher)
	ctx := context.Background()

	_, err := scout.MapStats(ctx, "123", "Ascent", scout.Window())
	require.NoError(t, err)

	cleared, err := scout.SetWindow(ctx, domain.LastDays(30))
	require.NoError(t, err)
	require.False(t, cleared, "same window must keep the cache")
	require.Equal(t, 1, store.Len())

	cleared, err = scout.SetWindow(ctx, domain.Between("2024-01-01", "2024-06-30"))
	require.NoError(t, err)
	require.True(t, cleared)
	require.Equal(t, 0, store.Len())
	require.Equal(t, "2024-01-01_2024-06-30", scout.Window().Key())

	_, err = scout.MapStats(ctx, "123", "Ascent", scout.Window())
	require.NoError(t, err)
	require.EqualValues(t, 2, fetcher.calls.Load())

	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	require.Equal(t, domain.LastDays(30), fetcher.windows[0])
	require.Equal(t, domain.Between("2024-01-01", "2024-06-30"), fetcher.windows[1])
}

func TestSetWindowRejectsInvalidWindow(t *testing.T) {
	scout, _ := newTestScout(&fakeFetcher{body: statsPage})

	_, err := scout.SetWindow(context.Background(), domain.Between("2024-06-01", "2024-01-01"))
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.Equal(t, "30d", scout.Window().Key())
}

func TestMapStatsCachesNotFound(t *testing.T) {
	fetcher := &fakeFetcher{body: statsPage}
	scout, _ := newTestScout(fetcher)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		record, err := scout.MapStats(ctx, "123", "Haven", scout.Window())
		require.ErrorIs(t, err, ErrNotFound)
		require.Nil(t, record)
	}
	require.EqualValues(t, 1, fetcher.calls.Load())
}

func TestMapStatsTransportErrorIsNotCached(t *testing.T) {
	fetcher := &fakeFetcher{err: &vlr.TransportError{URL: "http://vlr.test/team/stats/123/", Status: 503}}
	scout, store := newTestScout(fetcher)
	ctx := context.Background()

	_, err := scout.MapStats(ctx, "123", "Ascent", scout.Window())
	var transportErr *vlr.TransportError
	require.True(t, errors.As(err, &transportErr))
	require.Equal(t, StatusUnavailable, StatusOf(err))
	require.Equal(t, 0, store.Len())

	fetcher.err = nil
	fetcher.body = statsPage
	record, err := scout.MapStats(ctx, "123", "Ascent", scout.Window())
	require.NoError(t, err)
	require.Equal(t, 14, record.PlayCount)
	require.EqualValues(t, 2, fetcher.calls.Load())
}

func TestMapStatsInvalidArguments(t *testing.T) {
	fetcher := &fakeFetcher{body: statsPage}
	scout, _ := newTestScout(fetcher)

	_, err := scout.MapStats(context.Background(), " ", "Ascent", scout.Window())
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = scout.MapStats(context.Background(), "123", "", scout.Window())
	require.ErrorIs(t, err, ErrInvalidArgument)

	require.EqualValues(t, 0, fetcher.calls.Load())
}

func TestMapStatsCoalescesConcurrentFetches(t *testing.T) {
	fetcher := &fakeFetcher{body: statsPage, delay: 50 * time.Millisecond}
	scout, _ := newTestScout(fetcher)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := scout.MapStats(context.Background(), "123", "Ascent", scout.Window())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, fetcher.calls.Load())
}

func TestTeamMapStatsIndependentResults(t *testing.T) {
	fetcher := &fakeFetcher{body: statsPage}
	scout, _ := newTestScout(fetcher)

	results := scout.TeamMapStats(context.Background(), "123", []string{"Ascent", "Haven", "Bind", ""}, scout.Window())
	require.Len(t, results, 4)

	require.Equal(t, "Ascent", results[0].MapName)
	require.Equal(t, StatusFound, results[0].Status)
	require.Equal(t, 14, results[0].Record.PlayCount)

	require.Equal(t, StatusNotFound, results[1].Status)
	require.Nil(t, results[1].Record)

	require.Equal(t, StatusFound, results[2].Status)
	require.Equal(t, domain.NotAvailable, results[2].Record.AttackWinRate)

	require.Equal(t, StatusUnavailable, results[3].Status)
	require.ErrorIs(t, results[3].Err, ErrInvalidArgument)

	for _, r := range results {
		require.Equal(t, "123", r.TeamID)
	}
}

func TestTeamMapStatsDefaultsToPool(t *testing.T) {
	fetcher := &fakeFetcher{body: statsPage}
	scout, _ := newTestScout(fetcher)

	results := scout.TeamMapStats(context.Background(), "123", nil, scout.Window())
	pool := catalog.Pool()
	require.Len(t, results, len(pool))
	for i, r := range results {
		require.Equal(t, pool[i], r.MapName)
		require.NotEqual(t, StatusUnavailable, r.Status)
	}
}

func TestTeamMapStatsFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: &vlr.TransportError{URL: "http://vlr.test", Err: errors.New("dial failed")}}
	scout, _ := newTestScout(fetcher)

	results := scout.TeamMapStats(context.Background(), "123", []string{"Ascent", "Bind"}, scout.Window())
	for _, r := range results {
		require.Equal(t, StatusUnavailable, r.Status)
		require.True(t, strings.Contains(r.Err.Error(), "dial failed"))
	}
}

func TestMapStatsFoldsMapNameInCacheKey(t *testing.T) {
	fetcher := &fakeFetcher{body: statsPage}
	scout, store := newTestScout(fetcher)
	ctx := context.Background()
	window := domain.LastDays(30)

	for _, name := range []string{"Ascent", "ascent", "ASCENT"} {
		record, err := scout.MapStats(ctx, "123", name, window)
		require.NoError(t, err)
		require.Equal(t, name, record.MapName)
		require.Equal(t, 14, record.PlayCount)
	}
	require.EqualValues(t, 1, fetcher.calls.Load())
	require.Equal(t, 1, store.Len())
}

func TestMapStatsUsesGivenWindow(t *testing.T) {
	fetcher := &fakeFetcher{body: statsPage}
	scout, _ := newTestScout(fetcher)

	_, err := scout.MapStats(context.Background(), "123", "Ascent", domain.Between("2023-01-01", "2023-12-31"))
	require.NoError(t, err)
	require.Equal(t, "30d", scout.Window().Key(), "a lookup must not switch the active window")

	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	require.Equal(t, []domain.DateWindow{domain.Between("2023-01-01", "2023-12-31")}, fetcher.windows)

	_, err = scout.MapStats(context.Background(), "123", "Ascent", domain.LastDays(0))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestStatusOf(t *testing.T) {
	require.Equal(t, StatusFound, StatusOf(nil))
	require.Equal(t, StatusNotFound, StatusOf(ErrNotFound))
	require.Equal(t, StatusUnavailable, StatusOf(context.DeadlineExceeded))
}
