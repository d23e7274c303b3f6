package metadata

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Andres9890/iadrive/pkg/types"
	"github.com/abema/go-mp4"
	"github.com/araddon/dateparse"
	"github.com/dhowden/tag"
)

// qtEpoch is the QuickTime epoch used by mvhd creation timestamps.
var qtEpoch = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)

// tagDateKeys are raw tag frame names that may carry a recording date, in
// preference order. Covers ID3v2.3/2.4 frames, Vorbis comments and MP4 atoms.
var tagDateKeys = []string{
	"TDRC", "TDOR", "TDRL", "TYER",
	"date", "DATE", "originaldate", "ORIGINALDATE", "year", "YEAR",
	"\xa9day",
}

var yearOnly = regexp.MustCompile(`^\d{4}$`)

type MediaReader struct{}

func NewMediaReader() *MediaReader {
	return &MediaReader{}
}

func (m *MediaReader) Extract(rec types.FileRecord) types.EmbeddedDate {
	f, err := os.Open(rec.Path)
	if err != nil {
		return types.EmbeddedDate{Err: err.Error()}
	}
	defer f.Close()

	if ed, ok := m.fromTags(f); ok {
		return ed
	}

	// QuickTime-family containers often carry no tag atom but still record
	// a creation time in the movie header.
	if containerExts[rec.Ext] {
		if _, err := f.Seek(0, io.SeekStart); err == nil {
			if ed, ok := m.fromMovieHeader(f); ok {
				return ed
			}
		}
	}

	return types.EmbeddedDate{Err: "no creation date in media tags"}
}

func (m *MediaReader) fromTags(f *os.File) (types.EmbeddedDate, bool) {
	md, err := tag.ReadFrom(f)
	if err != nil {
		return types.EmbeddedDate{}, false
	}

	raw := md.Raw()
	for _, key := range tagDateKeys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		if t, err := parseTagDate(s); err == nil {
			utc := t.UTC()
			return types.EmbeddedDate{Time: &utc, Source: "tag:" + printableKey(key)}, true
		}
	}

	if y := md.Year(); y > 0 {
		t := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		return types.EmbeddedDate{Time: &t, Source: "tag:year"}, true
	}

	return types.EmbeddedDate{}, false
}

func (m *MediaReader) fromMovieHeader(f *os.File) (types.EmbeddedDate, bool) {
	boxes, err := mp4.ExtractBoxWithPayload(f, nil, mp4.BoxPath{mp4.BoxTypeMoov(), mp4.BoxTypeMvhd()})
	if err != nil || len(boxes) == 0 {
		return types.EmbeddedDate{}, false
	}
	mvhd, ok := boxes[0].Payload.(*mp4.Mvhd)
	if !ok {
		return types.EmbeddedDate{}, false
	}

	var secs uint64
	if mvhd.GetVersion() == 0 {
		secs = uint64(mvhd.CreationTimeV0)
	} else {
		secs = mvhd.CreationTimeV1
	}
	// Zero means the muxer did not record a time.
	if secs == 0 {
		return types.EmbeddedDate{}, false
	}

	t := qtEpoch.Add(time.Duration(secs) * time.Second)
	return types.EmbeddedDate{Time: &t, Source: "mvhd:creation_time"}, true
}

// parseTagDate parses a date value found in a media tag. Bare four-digit
// years are common in ID3 and Vorbis tags and resolve to January 1st.
func parseTagDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if yearOnly.MatchString(s) {
		y, err := strconv.Atoi(s)
		if err != nil || y == 0 {
			return time.Time{}, fmt.Errorf("bad year %q", s)
		}
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), nil
	}
	return dateparse.ParseAny(s)
}

// printableKey strips the MP4 atom copyright-symbol prefix so log output
// and DateSource values stay ASCII.
func printableKey(key string) string {
	return strings.TrimLeft(key, "\xa9")
}
