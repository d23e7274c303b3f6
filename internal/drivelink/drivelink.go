// Package drivelink parses Google Drive and Google Docs share links.
package drivelink

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/Andres9890/iadrive/pkg/types"
)

var (
	folderPattern = regexp.MustCompile(`/folders/([a-zA-Z0-9_-]+)`)
	filePattern   = regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`)
	docsPattern   = regexp.MustCompile(`/(document|spreadsheets|presentation)/d/([a-zA-Z0-9_-]+)`)
	idParamRegex  = regexp.MustCompile(`(?:^|[?&])id=([a-zA-Z0-9_-]+)`)
)

// Parse inspects a share link and returns the Drive resource it names.
// Any link that does not resolve to a file, folder or Docs editor document
// is an error; parsing happens before any network access so bad links fail
// fast.
func Parse(link string) (types.Resource, error) {
	s := strings.TrimSpace(link)
	if s == "" {
		return types.Resource{}, fmt.Errorf("empty link")
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return types.Resource{}, fmt.Errorf("invalid link %q: %w", link, err)
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case host == "docs.google.com" || strings.HasSuffix(host, ".docs.google.com"):
		if m := docsPattern.FindStringSubmatch(u.Path); m != nil {
			return types.Resource{Kind: docsKind(m[1]), ID: m[2]}, nil
		}
		return types.Resource{}, fmt.Errorf("could not extract document ID from link: %s", link)

	case host == "drive.google.com" || strings.HasSuffix(host, ".drive.google.com"):
		if m := folderPattern.FindStringSubmatch(u.Path); m != nil {
			return types.Resource{Kind: types.ResourceFolder, ID: m[1]}, nil
		}
		if m := filePattern.FindStringSubmatch(u.Path); m != nil {
			return types.Resource{Kind: types.ResourceFile, ID: m[1]}, nil
		}
		if m := idParamRegex.FindStringSubmatch(u.RawQuery); m != nil {
			return types.Resource{Kind: types.ResourceFile, ID: m[1]}, nil
		}
		return types.Resource{}, fmt.Errorf("could not extract Drive ID from link: %s", link)
	}

	return types.Resource{}, fmt.Errorf("not a Google Drive or Google Docs link: %s", link)
}

func docsKind(segment string) types.ResourceKind {
	switch segment {
	case "document":
		return types.ResourceDocument
	case "spreadsheets":
		return types.ResourceSpreadsheet
	default:
		return types.ResourcePresentation
	}
}
