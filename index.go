// Paper Index facade: the single entry point the ingester calls into.
// It orchestrates the name mapping, record cache, codec, and paged
// storage to expose AddPaper, AddCitation, GetPaperRecordID, and Flush.
package paperindex

import (
	"fmt"
	"log/slog"
	"path/filepath"
)

// Outcome reports what AddPaper did, replacing a boolean success flag
// with a three-way result.
type Outcome int

const (
	// Inserted means a new record was created for a previously unseen
	// paper id.
	Inserted Outcome = iota
	// Updated means a placeholder record (created by an earlier
	// citation) received its publication year for the first time.
	Updated
	// DuplicatePublication means the paper id already had a complete
	// record; the call was a no-op and a warning was logged.
	DuplicatePublication
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	case DuplicatePublication:
		return "duplicate_publication"
	default:
		return "unknown"
	}
}

const nameMappingFile = "papers_name_mapping.json.zst"

// Index is the paper index facade. It is not safe for concurrent use by
// design: spec.md's concurrency model is single-threaded and sequential.
type Index struct {
	dir     string
	cfg     Config
	codec   *Codec
	storage *PagedStorage
	names   *NameMapping
	cache   *RecordCache
	log     *slog.Logger
	closed  bool
}

// Open opens (creating if necessary) a paper index rooted at dir.
func Open(dir string, cfg Config) (*Index, error) {
	cfg = cfg.defaults()

	storage, err := OpenPagedStorage(dir, cfg)
	if err != nil {
		return nil, err
	}

	names := NewNameMapping(cfg)
	codec := NewCodec(cfg)

	idx := &Index{
		dir:     dir,
		cfg:     cfg,
		codec:   codec,
		storage: storage,
		names:   names,
		log:     cfg.Logger,
	}
	idx.cache = NewRecordCache(storage, codec, cfg, names.ridWidth(), idx.onDroppedYears)

	return idx, nil
}

func (idx *Index) onDroppedYears(ridKey string, n int) {
	idx.log.Warn("dropped oldest citation years at encode, capacity exceeded",
		"record_id", ridKey, "dropped_years", n, "capacity", idx.cfg.CitationYearCapacity)
}

// ensureRID returns the RID for paperID, assigning a new one and
// seeding an empty placeholder record in the cache if this is the
// paper's first mention.
func (idx *Index) ensureRID(paperID string) (RID, bool, error) {
	if rid, ok := idx.names.Lookup(paperID); ok {
		return rid, false, nil
	}
	rid, err := idx.names.Assign(paperID)
	if err != nil {
		return RID{}, false, err
	}
	if err := idx.cache.Put(rid, newRecord()); err != nil {
		return RID{}, false, err
	}
	return rid, true, nil
}

// AddPaper records paperID's publication year. If paperID has not been
// seen before, a new record is created (Inserted). If paperID was
// already known only as a citation target, its placeholder record is
// completed (Updated). If paperID already has a publication year,
// the call is a no-op (DuplicatePublication) and a warning is logged.
func (idx *Index) AddPaper(paperID string, year uint16) (Outcome, error) {
	if idx.closed {
		return 0, ErrClosed
	}

	rid, isNew, err := idx.ensureRID(paperID)
	if err != nil {
		return 0, err
	}

	r, err := idx.cache.GetOrLoad(rid)
	if err != nil {
		idx.log.Error("failed to load paper record", "paper_id", paperID, "error", err)
		return 0, err
	}

	if r.PublicationYear != nil {
		idx.log.Warn("duplicate publication", "paper_id", paperID, "year", year)
		return DuplicatePublication, nil
	}

	y := year
	r.PublicationYear = &y
	if err := idx.cache.Put(rid, r); err != nil {
		idx.log.Error("failed to store paper record", "paper_id", paperID, "error", err)
		return 0, err
	}

	if isNew {
		return Inserted, nil
	}
	return Updated, nil
}

// AddCitation records that paperID was cited by a paper published in
// citingYear. If paperID has not been seen before, a placeholder record
// is created so the citation is not lost, to be completed by a later
// AddPaper call.
func (idx *Index) AddCitation(paperID string, citingYear string) error {
	if idx.closed {
		return ErrClosed
	}

	rid, _, err := idx.ensureRID(paperID)
	if err != nil {
		return err
	}

	r, err := idx.cache.GetOrLoad(rid)
	if err != nil {
		idx.log.Error("failed to load paper record", "paper_id", paperID, "error", err)
		return err
	}

	r.Citations[citingYear]++
	if err := idx.cache.Put(rid, r); err != nil {
		idx.log.Error("failed to store paper record", "paper_id", paperID, "error", err)
		return err
	}
	return nil
}

// GetPaperRecordID returns the internal record identifier assigned to
// paperID, if any.
func (idx *Index) GetPaperRecordID(paperID string) (RID, bool) {
	return idx.names.Lookup(paperID)
}

// Flush writes every dirty cached record through to paged storage,
// fsyncs every open file, and persists the name mapping snapshot. A
// clean shutdown requires calling Flush before Close.
func (idx *Index) Flush() error {
	if idx.closed {
		return ErrClosed
	}

	if err := idx.cache.FlushAll(); err != nil {
		return fmt.Errorf("index: flush cache: %w", err)
	}
	if err := idx.storage.Sync(); err != nil {
		return fmt.Errorf("index: sync storage: %w", err)
	}

	snapshotPath := filepath.Join(idx.dir, nameMappingFile)
	if err := idx.names.Persist(snapshotPath, idx.cfg.ChecksumAlgorithm); err != nil {
		return fmt.Errorf("index: persist name mapping: %w", err)
	}

	idx.log.Info("flushed paper index", "papers", idx.names.Len())
	return nil
}

// Close releases underlying file handles. Callers that want a durable
// shutdown must call Flush first; Close alone does not guarantee cached
// records reach disk.
func (idx *Index) Close() error {
	if idx.closed {
		return nil
	}
	idx.closed = true
	return idx.storage.Close()
}
