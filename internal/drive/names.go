package drive

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Google Workspace files have no binary content and must be exported to a
// regular format before they can be mirrored.
const (
	mimeFolder     = "application/vnd.google-apps.folder"
	mimeShortcut   = "application/vnd.google-apps.shortcut"
	mimeAppsPrefix = "application/vnd.google-apps."
)

type exportFormat struct {
	MimeType  string
	Extension string
}

// exportableMimeTypes maps Google Workspace mimetypes to the editable
// format each one is exported as. App types missing from this table
// cannot be downloaded and are skipped.
var exportableMimeTypes = map[string]exportFormat{
	"application/vnd.google-apps.document": {
		MimeType:  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Extension: ".docx",
	},
	"application/vnd.google-apps.spreadsheet": {
		MimeType:  "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Extension: ".xlsx",
	},
	"application/vnd.google-apps.presentation": {
		MimeType:  "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		Extension: ".pptx",
	},
	"application/vnd.google-apps.drawing": {
		MimeType:  "image/png",
		Extension: ".png",
	},
}

var illegalPathChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// sanitizePart makes one Drive name safe to use as a local path element.
// Dot names would escape the download tree, so they are rewritten too.
func sanitizePart(part string) string {
	if part == "." {
		return "_"
	}
	if part == ".." {
		return "__"
	}
	s := illegalPathChars.ReplaceAllString(strings.TrimSpace(part), "_")
	if len(s) > 200 {
		s = s[:200]
	}
	if s == "" {
		s = "_"
	}
	return s
}

// nameTracker deduplicates sibling names within one local directory. Drive
// allows several children with the same name; locally the second one
// becomes name_1.ext, the third name_2.ext, and so on.
type nameTracker struct {
	used map[string]int
}

func newNameTracker() *nameTracker {
	return &nameTracker{used: make(map[string]int)}
}

func (nt *nameTracker) claim(name string) string {
	n := nt.used[name]
	nt.used[name] = n + 1
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%d%s", stem, n, ext)
}
