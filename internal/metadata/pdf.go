package metadata

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Andres9890/iadrive/pkg/types"
	"github.com/ledongthuc/pdf"
)

type PDFReader struct{}

func NewPDFReader() *PDFReader {
	return &PDFReader{}
}

func (p *PDFReader) Extract(rec types.FileRecord) (ed types.EmbeddedDate) {
	// The parser panics on malformed xref tables; treat that as a normal
	// per-file extraction failure.
	defer func() {
		if r := recover(); r != nil {
			ed = types.EmbeddedDate{Err: fmt.Sprintf("pdf parse: %v", r)}
		}
	}()

	f, r, err := pdf.Open(rec.Path)
	if err != nil {
		return types.EmbeddedDate{Err: "pdf open: " + err.Error()}
	}
	defer f.Close()

	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return types.EmbeddedDate{Err: "no document info dictionary"}
	}

	for _, key := range []string{"CreationDate", "ModDate"} {
		v := info.Key(key)
		if v.IsNull() {
			continue
		}
		t, err := parsePDFDate(v.RawString())
		if err != nil {
			continue
		}
		utc := t.UTC()
		return types.EmbeddedDate{Time: &utc, Source: "pdf:" + key}
	}

	return types.EmbeddedDate{Err: "no creation date in PDF info"}
}

// parsePDFDate parses the PDF date string format D:YYYYMMDDHHmmSSOHH'mm'.
// Everything after the year is optional; missing fields default to the
// earliest value (January, day 1, midnight).
func parsePDFDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "D:")
	if len(s) < 4 {
		return time.Time{}, fmt.Errorf("date string too short: %q", raw)
	}

	digits := s
	loc := time.UTC
	if i := strings.IndexAny(s, "Z+-"); i >= 0 {
		digits = s[:i]
		tz := s[i:]
		if tz != "Z" && len(tz) >= 3 {
			sign := 1
			if tz[0] == '-' {
				sign = -1
			}
			hh, err := strconv.Atoi(tz[1:3])
			if err != nil {
				return time.Time{}, fmt.Errorf("bad timezone in %q", raw)
			}
			mm := 0
			if len(tz) >= 6 {
				if v, err := strconv.Atoi(tz[4:6]); err == nil {
					mm = v
				}
			}
			loc = time.FixedZone("", sign*(hh*3600+mm*60))
		}
	}

	field := func(from, to, def int) (int, error) {
		if len(digits) < to {
			return def, nil
		}
		return strconv.Atoi(digits[from:to])
	}

	year, err := strconv.Atoi(digits[:4])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad year in %q", raw)
	}
	month, err := field(4, 6, 1)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad month in %q", raw)
	}
	day, err := field(6, 8, 1)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad day in %q", raw)
	}
	hour, err := field(8, 10, 0)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad hour in %q", raw)
	}
	minute, err := field(10, 12, 0)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad minute in %q", raw)
	}
	sec, err := field(12, 14, 0)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad second in %q", raw)
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || sec > 60 {
		return time.Time{}, fmt.Errorf("date out of range: %q", raw)
	}

	return time.Date(year, time.Month(month), day, hour, minute, sec, 0, loc), nil
}
