// Name mapping: the surjection from external paper identifier to
// internal record identifier (RID). Entries are created the first time
// a paper id is mentioned, either as a publisher or as a citation
// target, and are never removed or reassigned.
//
// Persistence writes a zstd-compressed, checksummed JSON envelope in one
// shot at Flush; this module does not implement warm start (loading a
// snapshot back into a live mapping) — LoadSnapshot exists only for
// offline verification of a persisted file.
package paperindex

import (
	"fmt"
	"iter"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
)

// Shared encoder/decoder, built once: zstd encoder/decoder construction
// is expensive and this module only ever compresses one blob per Flush.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// NameMapping maps external paper ids to internal record identifiers and
// owns the allocation cursor for new ids.
type NameMapping struct {
	maxRecordsPerFile int
	recordIndexWidth  int
	byPaperID         map[string]RID
	curFile           int
	curSlot           int
}

// NewNameMapping returns an empty mapping with its allocation cursor at
// the start of file 0.
func NewNameMapping(cfg Config) *NameMapping {
	width := len(fmt.Sprintf("%d", cfg.MaxRecordsPerFile))
	if width < 1 {
		width = 1
	}
	return &NameMapping{
		maxRecordsPerFile: cfg.MaxRecordsPerFile,
		recordIndexWidth:  width,
		byPaperID:         make(map[string]RID),
	}
}

// Lookup returns the RID assigned to paperID, if any.
func (m *NameMapping) Lookup(paperID string) (RID, bool) {
	rid, ok := m.byPaperID[paperID]
	return rid, ok
}

// Assign allocates and returns a new RID for paperID. It errors if
// paperID already has an assigned RID.
func (m *NameMapping) Assign(paperID string) (RID, error) {
	if _, ok := m.byPaperID[paperID]; ok {
		return RID{}, fmt.Errorf("paperindex: %w: %s", ErrAlreadyAssigned, paperID)
	}

	rid := RID{FileIndex: m.curFile, RecordIndex: m.curSlot}
	m.byPaperID[paperID] = rid

	m.curSlot++
	if m.curSlot >= m.maxRecordsPerFile {
		m.curSlot = 0
		m.curFile++
	}
	return rid, nil
}

// Len returns the number of assigned paper ids.
func (m *NameMapping) Len() int { return len(m.byPaperID) }

// All yields every paper id and its assigned RID. Used by Persist; also
// available to callers that want to enumerate the live mapping without
// going through a snapshot round-trip.
func (m *NameMapping) All() iter.Seq2[string, RID] {
	return func(yield func(string, RID) bool) {
		for id, rid := range m.byPaperID {
			if !yield(id, rid) {
				return
			}
		}
	}
}

// ridWidth reports the zero-padding width RID.String should use so
// record indices sort lexicographically within a file.
func (m *NameMapping) ridWidth() int { return m.recordIndexWidth }

// snapshotEnvelope is the on-disk shape of a persisted name mapping: a
// small integrity-checked wrapper around the paper-id-to-rid map.
type snapshotEnvelope struct {
	Algorithm int               `json:"_alg"`
	Checksum  string            `json:"_sum"`
	Count     int               `json:"_n"`
	Mapping   map[string]string `json:"_m"`
}

// Persist writes the current mapping to path as a zstd-compressed,
// checksummed JSON envelope.
func (m *NameMapping) Persist(path string, alg int) error {
	flat := make(map[string]string, len(m.byPaperID))
	for id, rid := range m.All() {
		flat[id] = rid.String(m.recordIndexWidth)
	}

	body, err := json.Marshal(flat)
	if err != nil {
		return fmt.Errorf("name mapping: marshal: %w", err)
	}

	env := snapshotEnvelope{
		Algorithm: alg,
		Checksum:  sum(body, alg),
		Count:     len(flat),
		Mapping:   flat,
	}
	envBytes, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("name mapping: marshal envelope: %w", err)
	}

	compressed := zstdEncoder.EncodeAll(envBytes, nil)
	if err := writeFileAtomic(path, compressed); err != nil {
		return fmt.Errorf("name mapping: %w", err)
	}
	return nil
}

// LoadSnapshot reads and verifies a persisted name mapping file without
// wiring it back into a live NameMapping. It exists for offline tooling
// and tests; this module's running index never reads its own snapshot
// back in (no warm start).
func LoadSnapshot(path string) (map[string]string, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("name mapping: %w", err)
	}

	decompressed, err := zstdDecoder.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrCorruptSnapshot, err)
	}

	var env snapshotEnvelope
	if err := json.Unmarshal(decompressed, &env); err != nil {
		return nil, fmt.Errorf("%w: json: %v", ErrCorruptSnapshot, err)
	}

	// Recompute the checksum over the mapping body exactly as Persist
	// produced it, to catch truncation or bit rot the zstd frame itself
	// didn't already reject.
	body, err := json.Marshal(env.Mapping)
	if err != nil {
		return nil, fmt.Errorf("%w: re-marshal: %v", ErrCorruptSnapshot, err)
	}
	if got := sum(body, env.Algorithm); got != env.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptSnapshot)
	}
	if env.Count != len(env.Mapping) {
		return nil, fmt.Errorf("%w: count mismatch", ErrCorruptSnapshot)
	}

	return env.Mapping, nil
}
