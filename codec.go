// Record codec: the bijection between a Record and its fixed-width ASCII
// byte representation.
//
// Layout, for YearWidth=4, CountWidth=4, CitationYearCapacity=K:
//
//	[0, YearWidth)                    publication year, "0000" if unknown
//	[YearWidth, YearWidth+1)          '#' separator
//	[YearWidth+1, ...)                up to K "YYYY"+count entries
//	last byte                         '#' terminator
//
// Unused citation slots and the terminator are '#'. Within an entry the
// year is written as-is (it must already be exactly YearWidth characters)
// and the count is left-padded with '#', not '0'
// (e.g. a count of 3 with CountWidth=4 encodes as "###3"), matching the
// original source's rjust(width, '#'); Decode strips the leading '#'
// before parsing. Citation years are sorted descending before encoding;
// when more than K distinct years are present, the oldest are dropped (a
// warning is the caller's concern, not the codec's — see index.go).
package paperindex

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Codec encodes and decodes records for a fixed set of field widths.
type Codec struct {
	yearWidth  int
	countWidth int
	k          int
	recordLen  int
}

// NewCodec builds a Codec for the given configuration.
func NewCodec(cfg Config) *Codec {
	return &Codec{
		yearWidth:  cfg.YearWidth,
		countWidth: cfg.CountWidth,
		k:          cfg.CitationYearCapacity,
		recordLen:  cfg.recordLength(),
	}
}

// RecordLength returns the fixed byte width of every encoded record.
func (c *Codec) RecordLength() int { return c.recordLen }

// padCount left-pads count's decimal string with '#' to width, mirroring
// the original source's rjust(width, '#'). Unlike the year field, counts
// are never zero-padded, so a leading zero byte can never be confused
// with '#' padding on decode.
func padCount(count uint32, width int) (string, bool) {
	s := strconv.FormatUint(uint64(count), 10)
	if len(s) > width {
		return "", false
	}
	return strings.Repeat("#", width-len(s)) + s, true
}

// Encode serialises r to exactly RecordLength bytes. If r has more than
// K distinct citation years, the oldest are dropped; droppedYears
// reports how many, so the caller can log a warning.
func (c *Codec) Encode(r *Record) (data []byte, droppedYears int, err error) {
	buf := make([]byte, c.recordLen)
	for i := range buf {
		buf[i] = '#'
	}

	year := uint16(0)
	if r.PublicationYear != nil {
		year = *r.PublicationYear
	}
	yearStr := fmt.Sprintf("%0*d", c.yearWidth, year)
	if len(yearStr) != c.yearWidth {
		return nil, 0, fmt.Errorf("%w: publication year %d exceeds width %d", ErrCounterOverflow, year, c.yearWidth)
	}
	copy(buf[0:c.yearWidth], yearStr)
	buf[c.yearWidth] = '#'

	years := make([]string, 0, len(r.Citations))
	for y := range r.Citations {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))

	if len(years) > c.k {
		droppedYears = len(years) - c.k
		years = years[:c.k]
	}

	entryWidth := c.yearWidth + c.countWidth
	off := c.yearWidth + 1
	for i, y := range years {
		count := r.Citations[y]
		countStr, ok := padCount(count, c.countWidth)
		if !ok {
			return nil, 0, fmt.Errorf("%w: year %s count %d exceeds width %d", ErrCounterOverflow, y, count, c.countWidth)
		}
		if len(y) != c.yearWidth {
			return nil, 0, fmt.Errorf("paperindex: citation year %q does not match width %d", y, c.yearWidth)
		}
		entryOff := off + i*entryWidth
		copy(buf[entryOff:entryOff+c.yearWidth], y)
		copy(buf[entryOff+c.yearWidth:entryOff+entryWidth], countStr)
	}

	buf[c.recordLen-1] = '#'
	return buf, droppedYears, nil
}

// Decode parses a RecordLength-byte buffer back into a Record.
func (c *Codec) Decode(data []byte) (*Record, error) {
	if len(data) != c.recordLen {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrCorruptRecord, c.recordLen, len(data))
	}
	if data[c.yearWidth] != '#' {
		return nil, fmt.Errorf("%w: missing year separator", ErrCorruptRecord)
	}

	r := newRecord()
	yearStr := string(data[0:c.yearWidth])
	year64, err := strconv.ParseUint(yearStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed year %q: %v", ErrCorruptRecord, yearStr, err)
	}
	if year64 != 0 {
		y := uint16(year64)
		r.PublicationYear = &y
	}

	entryWidth := c.yearWidth + c.countWidth
	off := c.yearWidth + 1
	for i := 0; i < c.k; i++ {
		entryOff := off + i*entryWidth
		if entryOff >= c.recordLen-1 {
			break
		}
		if data[entryOff] == '#' {
			break
		}
		yField := string(data[entryOff : entryOff+c.yearWidth])
		if _, err := strconv.ParseUint(yField, 10, 64); err != nil {
			return nil, fmt.Errorf("%w: malformed citation year %q: %v", ErrCorruptRecord, yField, err)
		}
		cField := strings.TrimLeft(string(data[entryOff+c.yearWidth:entryOff+entryWidth]), "#")
		if cField == "" {
			cField = "0"
		}
		count, err := strconv.ParseUint(cField, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed citation count %q: %v", ErrCorruptRecord, cField, err)
		}
		r.Citations[yField] = uint32(count)
	}

	return r, nil
}
