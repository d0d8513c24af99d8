// Name mapping tests: allocation-cursor rollover, lookup stability, and
// the persisted snapshot's checksum/compression round trip.
package paperindex

import (
	"path/filepath"
	"testing"
)

func TestNameMappingAssignSequential(t *testing.T) {
	m := NewNameMapping(Config{MaxRecordsPerFile: 2}.defaults())

	r1, err := m.Assign("p1")
	if err != nil {
		t.Fatalf("Assign p1: %v", err)
	}
	r2, err := m.Assign("p2")
	if err != nil {
		t.Fatalf("Assign p2: %v", err)
	}
	r3, err := m.Assign("p3")
	if err != nil {
		t.Fatalf("Assign p3: %v", err)
	}

	want := []RID{{0, 0}, {0, 1}, {1, 0}}
	got := []RID{r1, r2, r3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rid[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestNameMappingRidWidthMatchesDigitCount(t *testing.T) {
	m := NewNameMapping(Config{MaxRecordsPerFile: 1000}.defaults())
	if got, want := m.ridWidth(), 4; got != want {
		t.Errorf("ridWidth() = %d, want %d (len(strconv.Itoa(MaxRecordsPerFile)))", got, want)
	}
}

func TestNameMappingAssignRejectsDuplicate(t *testing.T) {
	m := NewNameMapping(Config{}.defaults())
	if _, err := m.Assign("p1"); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, err := m.Assign("p1"); err == nil {
		t.Fatal("Assign duplicate: want error, got nil")
	}
}

func TestNameMappingLookup(t *testing.T) {
	m := NewNameMapping(Config{}.defaults())
	rid, err := m.Assign("p1")
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}

	got, ok := m.Lookup("p1")
	if !ok || got != rid {
		t.Errorf("Lookup(p1) = %+v, %v, want %+v, true", got, ok, rid)
	}

	if _, ok := m.Lookup("missing"); ok {
		t.Error("Lookup(missing): want false, got true")
	}
}

func TestNameMappingPersistAndLoadSnapshot(t *testing.T) {
	m := NewNameMapping(Config{}.defaults())
	for _, id := range []string{"p1", "p2", "p3"} {
		if _, err := m.Assign(id); err != nil {
			t.Fatalf("Assign %s: %v", id, err)
		}
	}

	path := filepath.Join(t.TempDir(), "papers_name_mapping.json.zst")
	if err := m.Persist(path, AlgXXHash3); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	flat, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(flat) != 3 {
		t.Fatalf("LoadSnapshot: %d entries, want 3", len(flat))
	}
	for _, id := range []string{"p1", "p2", "p3"} {
		rid, ok := m.Lookup(id)
		if !ok {
			t.Fatalf("Lookup(%s): not found", id)
		}
		if flat[id] != rid.String(m.ridWidth()) {
			t.Errorf("snapshot[%s] = %q, want %q", id, flat[id], rid.String(m.ridWidth()))
		}
	}
}

func TestLoadSnapshotRejectsCorruption(t *testing.T) {
	m := NewNameMapping(Config{}.defaults())
	if _, err := m.Assign("p1"); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	path := filepath.Join(t.TempDir(), "snapshot.zst")
	if err := m.Persist(path, AlgXXHash3); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	raw, err := readFile(path)
	if err != nil {
		t.Fatalf("readFile: %v", err)
	}
	raw[len(raw)-1] ^= 0xFF
	if err := writeFileAtomic(path, raw); err != nil {
		t.Fatalf("writeFileAtomic: %v", err)
	}

	if _, err := LoadSnapshot(path); err == nil {
		t.Fatal("LoadSnapshot: want error for corrupted file, got nil")
	}
}

func TestAllEnumeratesEveryEntry(t *testing.T) {
	m := NewNameMapping(Config{}.defaults())
	ids := []string{"p1", "p2", "p3"}
	for _, id := range ids {
		if _, err := m.Assign(id); err != nil {
			t.Fatalf("Assign %s: %v", id, err)
		}
	}

	seen := make(map[string]bool)
	for id, rid := range m.All() {
		seen[id] = true
		if _, ok := m.Lookup(id); !ok {
			t.Errorf("All() yielded %s with rid %+v not present in Lookup", id, rid)
		}
	}
	for _, id := range ids {
		if !seen[id] {
			t.Errorf("All() did not yield %s", id)
		}
	}
}
