// Package metadata extracts embedded creation dates from downloaded files.
//
// Extraction failures are per-file soft failures: the reader records the
// error on the returned EmbeddedDate and the walk continues. Filesystem
// timestamps are never consulted.
package metadata

import (
	"github.com/Andres9890/iadrive/pkg/types"
)

// imageExts are formats read with the EXIF reader.
var imageExts = map[string]bool{
	"jpg": true, "jpeg": true, "tif": true, "tiff": true,
	"png": true, "heic": true, "heif": true, "webp": true,
}

// audioExts are formats read through their tag headers.
var audioExts = map[string]bool{
	"mp3": true, "flac": true, "ogg": true, "opus": true,
	"wav": true, "aac": true,
}

// containerExts are QuickTime-family containers that additionally carry a
// creation time in the moov/mvhd box.
var containerExts = map[string]bool{
	"mp4": true, "m4a": true, "m4v": true, "mov": true, "3gp": true,
}

type Extractor struct {
	exif  *EXIFReader
	pdf   *PDFReader
	media *MediaReader
}

func New() *Extractor {
	return &Extractor{
		exif:  NewEXIFReader(),
		pdf:   NewPDFReader(),
		media: NewMediaReader(),
	}
}

// Extract attempts to read an embedded creation date for the given file.
// Files outside the known format families return an empty EmbeddedDate:
// no date and no error.
func (e *Extractor) Extract(rec types.FileRecord) types.EmbeddedDate {
	switch {
	case imageExts[rec.Ext]:
		return e.exif.Extract(rec)
	case rec.Ext == "pdf":
		return e.pdf.Extract(rec)
	case audioExts[rec.Ext] || containerExts[rec.Ext]:
		return e.media.Extract(rec)
	}
	return types.EmbeddedDate{}
}
