// Paged storage: a family of append-capable files, each a dense array of
// fixed-width records, addressed by (file index, record index).
//
// Files are named papers_<i> and live under a single sandboxed directory
// opened with os.Root. Handles are cached per file index and the file is
// created on first access (read or write); writing past the current end of a file is permitted and
// leaves the intervening bytes undefined, since the facade never reads a
// slot before writing it at least once.
package paperindex

import (
	"fmt"
	"os"
)

// PagedStorage manages the family of fixed-width record files.
type PagedStorage struct {
	root        *os.Root
	recordLen   int
	syncWrites  bool
	checksumAlg int
	readBuffer  int
	handles     map[int]*os.File
	checksums   map[int]uint64 // running per-file checksum, drift signal only
}

// OpenPagedStorage opens (creating if necessary) the storage directory
// at dir, sandboxed via os.Root.
func OpenPagedStorage(dir string, cfg Config) (*PagedStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("paged storage: %w", err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("paged storage: %w", err)
	}
	return &PagedStorage{
		root:        root,
		recordLen:   cfg.recordLength(),
		syncWrites:  cfg.SyncWrites,
		checksumAlg: cfg.ChecksumAlgorithm,
		readBuffer:  cfg.ReadBufferSize,
		handles:     make(map[int]*os.File),
		checksums:   make(map[int]uint64),
	}, nil
}

func fileName(fileIndex int) string {
	return fmt.Sprintf("papers_%d", fileIndex)
}

func (s *PagedStorage) handle(fileIndex int) (*os.File, error) {
	if f, ok := s.handles[fileIndex]; ok {
		return f, nil
	}
	f, err := s.root.OpenFile(fileName(fileIndex), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("paged storage: %w", err)
	}
	s.handles[fileIndex] = f
	return f, nil
}

// Read returns the raw RecordLength-byte slot at rid. A never-written
// slot inside the file reads as zero bytes; a slot past the end of the
// file returns an error. Callers never read a rid before writing it, per
// this module's allocation discipline.
func (s *PagedStorage) Read(rid RID) ([]byte, error) {
	f, err := s.handle(rid.FileIndex)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, s.recordLen)
	off := int64(rid.RecordIndex) * int64(s.recordLen)
	if _, err := f.ReadAt(buf, off); err != nil {
		return nil, fmt.Errorf("paged storage: read %s: %w", fileName(rid.FileIndex), err)
	}
	return buf, nil
}

// Write stores data (must be exactly RecordLength bytes) at rid.
func (s *PagedStorage) Write(rid RID, data []byte) error {
	if len(data) != s.recordLen {
		return fmt.Errorf("paged storage: write %s: expected %d bytes, got %d", fileName(rid.FileIndex), s.recordLen, len(data))
	}
	f, err := s.handle(rid.FileIndex)
	if err != nil {
		return err
	}
	off := int64(rid.RecordIndex) * int64(s.recordLen)
	if _, err := f.WriteAt(data, off); err != nil {
		return fmt.Errorf("paged storage: write %s: %w", fileName(rid.FileIndex), err)
	}
	s.checksums[rid.FileIndex] ^= sum64(data, s.checksumAlg) + uint64(rid.RecordIndex)
	if s.syncWrites {
		if err := f.Sync(); err != nil {
			return fmt.Errorf("paged storage: sync %s: %w", fileName(rid.FileIndex), err)
		}
	}
	return nil
}

// Checksum returns the running drift-detection checksum accumulated
// across every Write call for fileIndex, and whether that file has had
// any writes at all in this session. It is not a content hash of the
// file on disk — writes overwriting an existing slot fold their new
// checksum in via XOR without first removing the old one — it only
// signals that something changed, not what. Callers wanting a true
// content hash should read the file and hash it directly, in chunks of
// Config.ReadBufferSize.
func (s *PagedStorage) Checksum(fileIndex int) (uint64, bool) {
	v, ok := s.checksums[fileIndex]
	return v, ok
}

// ContentHash reads fileIndex's current on-disk content in
// Config.ReadBufferSize-sized chunks and returns its checksum under the
// configured algorithm. Unlike Checksum, this reads the file and always
// reflects what is actually on disk, including slots written in a
// previous session.
func (s *PagedStorage) ContentHash(fileIndex int) (uint64, error) {
	f, err := s.handle(fileIndex)
	if err != nil {
		return 0, err
	}
	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("paged storage: stat %s: %w", fileName(fileIndex), err)
	}

	buf := make([]byte, s.readBuffer)
	var acc uint64
	var off int64
	for off < info.Size() {
		n, err := f.ReadAt(buf, off)
		if n > 0 {
			acc ^= sum64(buf[:n], s.checksumAlg) + uint64(off)
		}
		if err != nil && n == 0 {
			return 0, fmt.Errorf("paged storage: read %s: %w", fileName(fileIndex), err)
		}
		off += int64(n)
	}
	return acc, nil
}

// Sync flushes every open file handle to disk, regardless of
// Config.SyncWrites. Called by Index.Flush to guarantee the durability
// boundary described in the error handling design.
func (s *PagedStorage) Sync() error {
	for idx, f := range s.handles {
		if err := f.Sync(); err != nil {
			return fmt.Errorf("paged storage: sync %s: %w", fileName(idx), err)
		}
	}
	return nil
}

// Close releases every open file handle and the sandboxed root.
func (s *PagedStorage) Close() error {
	var first error
	for _, f := range s.handles {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	if err := s.root.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

