// Package item assembles archive.org item metadata from downloaded files.
package item

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Andres9890/iadrive/pkg/types"
)

// Options configure a Builder. Zero values fall back to computed defaults.
type Options struct {
	Collection string
	Mediatype  string
	// MediatypeExplicit marks Mediatype as user-chosen. When false, Docs
	// text documents get mediatype "texts" instead of the default.
	MediatypeExplicit bool
	Publisher         string
	Scanner           string
	// Identifier overrides the derived identifier when non-empty.
	Identifier string
	// Extra carries user-supplied metadata key/value pairs.
	Extra map[string]string
}

type Builder struct {
	opts Options
}

func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Source describes the remote object the downloaded files came from.
type Source struct {
	Resource types.Resource
	Link     string
	// Name is the remote file/folder name when the Drive API resolved it.
	Name string
	// Owner is the owner display name when the lookup succeeded.
	Owner string
}

// Build assembles the item record for the downloaded files. Files must be
// sorted by RelPath (the scanner guarantees this); the earliest embedded
// date wins, ties keep the first file in walk order. Zero files is a valid
// outcome: no date, no subjects.
func (b *Builder) Build(src Source, files []types.FileRecord) (types.ItemMetadata, error) {
	identifier := b.opts.Identifier
	if identifier == "" {
		identifier = DefaultIdentifier(src.Resource)
	}
	identifier = SanitizeIdentifier(identifier)
	if identifier == "" {
		return types.ItemMetadata{}, fmt.Errorf("identifier is empty after sanitizing")
	}

	docType := ""
	if src.Resource.IsDocs() {
		docType = string(src.Resource.Kind)
	}

	mediatype := b.opts.Mediatype
	if docType == string(types.ResourceDocument) && !b.opts.MediatypeExplicit {
		mediatype = "texts"
	}

	publisher := b.opts.Publisher
	if src.Owner != "" {
		publisher = src.Owner
	}

	exts := make([]string, 0, len(files))
	for _, f := range files {
		exts = append(exts, f.Ext)
	}

	meta := types.ItemMetadata{
		Identifier:  identifier,
		Title:       title(src, files),
		Date:        earliestDate(files),
		Publisher:   publisher,
		Collection:  b.opts.Collection,
		Mediatype:   mediatype,
		Subjects:    Subjects(exts),
		Description: description(src, files),
		FileCount:   len(files),
		FolderCount: folderCount(files),
		SourceURL:   src.Link,
		Scanner:     b.opts.Scanner,
		DocType:     docType,
		Extra:       b.opts.Extra,
		Files:       files,
	}

	return meta, nil
}

// DefaultIdentifier derives the item identifier from the resource kind:
// docs-<id> for Docs editor documents, drive-<id> otherwise.
func DefaultIdentifier(res types.Resource) string {
	if res.IsDocs() {
		return "docs-" + res.ID
	}
	return "drive-" + res.ID
}

func title(src Source, files []types.FileRecord) string {
	if src.Name != "" {
		return src.Name
	}

	if src.Resource.IsDocs() && len(files) > 0 {
		// Docs exports share one stem across formats.
		base := path.Base(files[0].RelPath)
		return strings.TrimSuffix(base, path.Ext(base))
	}

	if len(files) == 1 {
		return path.Base(files[0].RelPath)
	}

	return "Google Drive - " + src.Resource.ID
}

func earliestDate(files []types.FileRecord) *time.Time {
	var min *time.Time
	for i := range files {
		d := files[i].Date
		if d == nil {
			continue
		}
		if min == nil || d.Before(*min) {
			min = d
		}
	}
	if min == nil {
		return nil
	}
	t := *min
	return &t
}

func description(src Source, files []types.FileRecord) string {
	lines := []string{descriptionHeader(src)}

	sorted := make([]types.FileRecord, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].RelPath < sorted[j].RelPath
	})

	for _, f := range sorted {
		lines = append(lines, fmt.Sprintf("- %s (%s)", f.RelPath, humanize.Bytes(uint64(f.Size))))
	}

	return strings.Join(lines, "<br>")
}

func descriptionHeader(src Source) string {
	switch src.Resource.Kind {
	case types.ResourceDocument:
		return "Google Document exported in:"
	case types.ResourceSpreadsheet:
		return "Google Spreadsheet exported in:"
	case types.ResourcePresentation:
		return "Google Presentation exported in:"
	}
	return "Files included:"
}

// folderCount counts the distinct directories that directly contain files.
func folderCount(files []types.FileRecord) int {
	dirs := make(map[string]bool)
	for _, f := range files {
		dir := path.Dir(f.RelPath)
		if dir != "." && dir != "" {
			dirs[dir] = true
		}
	}
	return len(dirs)
}
