// Package types defines core data structures used across iadrive modules.
package types

import (
	"time"
)

// FileRecord represents one downloaded file discovered during the item walk.
type FileRecord struct {
	// RelPath is the path relative to the item root, always slash-separated.
	RelPath string
	// Path is the absolute path to the local file.
	Path string
	// Size is the file size in bytes.
	Size int64
	// Ext is the lowercase file extension without dot (e.g., "jpg", "pdf").
	Ext string
	// Date is the embedded creation date extracted from the file's own
	// metadata, normalized to UTC. Nil when no embedded date was found;
	// filesystem timestamps are never used as a substitute.
	Date *time.Time
	// DateSource records which reader produced Date (e.g., "exif:DateTimeOriginal").
	DateSource string
}

// EmbeddedDate is the outcome of one date extraction attempt.
type EmbeddedDate struct {
	// Time is the extracted creation time in UTC. Nil if extraction failed.
	Time *time.Time
	// Source indicates where the date came from (e.g., "pdf:CreationDate").
	Source string
	// Err contains the extraction error message if any. A non-empty Err is
	// a per-file soft failure and never aborts the walk.
	Err string
}

// ResourceKind classifies what a share link points at.
type ResourceKind string

const (
	ResourceFile         ResourceKind = "file"
	ResourceFolder       ResourceKind = "folder"
	ResourceDocument     ResourceKind = "document"
	ResourceSpreadsheet  ResourceKind = "spreadsheets"
	ResourcePresentation ResourceKind = "presentation"
)

// Resource identifies the Drive object behind a share link.
type Resource struct {
	// Kind is the link flavor derived from the URL shape.
	Kind ResourceKind
	// ID is the opaque identifier segment of the share URL.
	ID string
}

// IsDocs reports whether the resource is a Google Docs editor document
// (Docs, Sheets or Slides) rather than a plain Drive file or folder.
func (r Resource) IsDocs() bool {
	switch r.Kind {
	case ResourceDocument, ResourceSpreadsheet, ResourcePresentation:
		return true
	}
	return false
}

// ItemMetadata is the archive.org item record derived from a download.
// It is built once per run and consumed by the upload step, or printed
// and discarded in dry-run mode.
type ItemMetadata struct {
	// Identifier is the archive.org item identifier (e.g., "drive-<id>").
	Identifier string
	// Title is derived from the source folder or file name.
	Title string
	// Date is the minimum of all non-nil FileRecord dates. Nil when no
	// file carried an embedded date.
	Date *time.Time
	// Publisher is the Drive owner display name when resolved, otherwise
	// the configured default.
	Publisher string
	// Collection and Mediatype are archive.org placement fields.
	Collection string
	Mediatype  string
	// Subjects are tags derived from the distinct extensions present,
	// mapped through a fixed table. Sorted and duplicate-free.
	Subjects []string
	// Description is the human-readable file listing uploaded with the item.
	Description string
	// FileCount and FolderCount describe the mirrored tree.
	FileCount   int
	FolderCount int
	// SourceURL is the original share link, kept verbatim for provenance.
	SourceURL string
	// Scanner names the tool and version that produced the item.
	Scanner string
	// DocType is set for Google Docs links ("document", "spreadsheets",
	// "presentation") and empty otherwise.
	DocType string
	// Extra carries user-supplied metadata key/value pairs.
	Extra map[string]string
	// Files lists every FileRecord sorted by RelPath.
	Files []FileRecord
}

// MirrorResult contains statistics for a completed run.
type MirrorResult struct {
	Identifier    string
	ItemURL       string
	Metadata      ItemMetadata
	Uploaded      bool
	AlreadyExists bool
	DryRun        bool
	Duration      time.Duration
}
