// Record and record-identifier types.
//
// A Record holds a paper's publication year (nil while only known as a
// citation target) and a citation histogram keyed by year. RID is the
// stable internal identifier assigned the first time a paper is
// mentioned, either as a publisher or as a citation target.
package paperindex

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is a paper's publication year and citation histogram.
// PublicationYear is nil until AddPaper is called for this paper; until
// then the record exists only to accumulate incoming citations.
type Record struct {
	PublicationYear *uint16
	Citations       map[string]uint32 // year string -> count, count >= 1
}

// newRecord returns an empty placeholder record with no known
// publication year.
func newRecord() *Record {
	return &Record{Citations: make(map[string]uint32)}
}

// RID is the internal record identifier: a fixed-width-file index paired
// with the record's slot within that file.
type RID struct {
	FileIndex   int
	RecordIndex int
}

// String renders a RID as "<file_index>_<record_index>" with the record
// index zero-padded to width digits.
func (r RID) String(width int) string {
	return fmt.Sprintf("%d_%0*d", r.FileIndex, width, r.RecordIndex)
}

// parseRID parses a RID previously rendered by String.
func parseRID(s string) (RID, error) {
	parts := strings.SplitN(s, "_", 2)
	if len(parts) != 2 {
		return RID{}, fmt.Errorf("paperindex: malformed record id %q", s)
	}
	file, err := strconv.Atoi(parts[0])
	if err != nil {
		return RID{}, fmt.Errorf("paperindex: malformed record id %q: %w", s, err)
	}
	slot, err := strconv.Atoi(parts[1])
	if err != nil {
		return RID{}, fmt.Errorf("paperindex: malformed record id %q: %w", s, err)
	}
	return RID{FileIndex: file, RecordIndex: slot}, nil
}
