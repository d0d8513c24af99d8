package paperindex

import "log/slog"

// Checksum algorithm constants, selectable via Config.ChecksumAlgorithm.
const (
	AlgXXHash3 = 1 // Default, fastest
	AlgFNV1a   = 2 // No external dependencies
	AlgBlake2b = 3 // Best distribution
)

// Config holds index configuration options. Every field has a zero-value
// default filled in by Open; a caller only needs to set the fields they
// want to override.
type Config struct {
	// MaxRecordsPerFile bounds how many fixed-width records a single
	// papers_<i> file may hold before a new file is started.
	MaxRecordsPerFile int

	// MaxCacheSize bounds the number of decoded records held in the
	// record cache before a clean pass runs.
	MaxCacheSize int

	// CacheCleanFactor is the fraction of cached entries flushed and
	// evicted during a clean pass, in (0, 1].
	CacheCleanFactor float64

	// YearWidth is the fixed decimal width of a year field in the
	// record codec.
	YearWidth int

	// CountWidth is the fixed decimal width of a citation count field
	// in the record codec.
	CountWidth int

	// CitationYearCapacity (K) is the maximum number of distinct
	// citation years retained per record.
	CitationYearCapacity int

	// ChecksumAlgorithm selects the integrity hash used when
	// persisting the name mapping snapshot.
	ChecksumAlgorithm int

	// SyncWrites calls fsync after every paged storage write.
	SyncWrites bool

	// ReadBufferSize sizes the scratch buffer PagedStorage.ContentHash
	// uses when reading a file in chunks to compute its content hash.
	ReadBufferSize int

	// Logger receives structured warnings and lifecycle events. If
	// nil, slog.Default() is used.
	Logger *slog.Logger
}

// defaults returns config with every unset field filled with its
// production default.
func (c Config) defaults() Config {
	if c.MaxRecordsPerFile == 0 {
		c.MaxRecordsPerFile = 320_000
	}
	if c.MaxCacheSize == 0 {
		c.MaxCacheSize = 750_000
	}
	if c.CacheCleanFactor == 0 {
		c.CacheCleanFactor = 0.01
	}
	if c.YearWidth == 0 {
		c.YearWidth = 4
	}
	if c.CountWidth == 0 {
		c.CountWidth = 4
	}
	if c.CitationYearCapacity == 0 {
		c.CitationYearCapacity = 60
	}
	if c.ChecksumAlgorithm == 0 {
		c.ChecksumAlgorithm = AlgXXHash3
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = 64 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// recordLength computes the fixed record width for the configured
// field widths and citation-year capacity.
func (c Config) recordLength() int {
	return c.YearWidth + 1 + c.CitationYearCapacity*(c.YearWidth+c.CountWidth) + 1
}
