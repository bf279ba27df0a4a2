package constants

import "time"

const (
	DefaultStatsBaseURL  = "https://www.vlr.gg"
	DefaultWindowDays    = 30
	DefaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultMemoryDBPath  = "file:valorant-scout?mode=memory&cache=shared"
	DefaultCacheBackend  = "memory"
	SQLiteCacheBackend   = "sqlite"
	MaxResponseBodyBytes = 8 << 20
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	// a shared in-memory database disappears when its last connection closes
	DBMaxOpenConns    = 10
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 0
	DBMaxIdleTime     = 0
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// bounds concurrent lookups of a single GetTeamMapStats call
	MaxParallelLookups = 6
)
