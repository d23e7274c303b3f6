package metadata

import (
	"os"
	"time"

	"github.com/Andres9890/iadrive/pkg/types"
	"github.com/rwcarlsen/goexif/exif"
)

type EXIFReader struct{}

func NewEXIFReader() *EXIFReader {
	return &EXIFReader{}
}

func (e *EXIFReader) Extract(rec types.FileRecord) types.EmbeddedDate {
	f, err := os.Open(rec.Path)
	if err != nil {
		return types.EmbeddedDate{Err: err.Error()}
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return types.EmbeddedDate{Err: "no EXIF data: " + err.Error()}
	}

	if t, err := x.DateTime(); err == nil {
		utc := t.UTC()
		return types.EmbeddedDate{
			Time:   &utc,
			Source: "exif:DateTimeOriginal",
		}
	}

	if tag, err := x.Get(exif.DateTimeDigitized); err == nil {
		if strVal, err := tag.StringVal(); err == nil {
			if t, err := time.Parse("2006:01:02 15:04:05", strVal); err == nil {
				utc := t.UTC()
				return types.EmbeddedDate{
					Time:   &utc,
					Source: "exif:DateTimeDigitized",
				}
			}
		}
	}

	return types.EmbeddedDate{Err: "no capture time found in EXIF"}
}
