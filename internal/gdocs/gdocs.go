// Package gdocs exports Google Docs, Sheets and Slides documents through
// the public export endpoint. Every format the editor offers is fetched so
// the archived item preserves the document even after a format dies.
package gdocs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/Andres9890/iadrive/pkg/types"
)

const defaultBaseURL = "https://docs.google.com"

// exportFormats lists every export format per editor type.
var exportFormats = map[types.ResourceKind][]string{
	types.ResourceDocument:     {"pdf", "docx", "odt", "rtf", "txt", "html", "epub"},
	types.ResourceSpreadsheet:  {"xlsx", "ods", "pdf", "csv", "tsv", "html"},
	types.ResourcePresentation: {"pdf", "pptx", "odp", "txt", "jpeg", "png", "svg"},
}

var (
	htmlTitle    = regexp.MustCompile(`(?i)<title>([^<]+)</title>`)
	titleSuffix  = regexp.MustCompile(` - Google (Docs|Sheets|Slides).*$`)
	unsafeInName = regexp.MustCompile(`[^\w\s-]`)
)

type Exporter struct {
	// BaseURL is the docs.google.com endpoint, overridable in tests.
	BaseURL string

	client *retryablehttp.Client
	logger *slog.Logger
}

func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil

	return &Exporter{
		BaseURL: defaultBaseURL,
		client:  client,
		logger:  logger,
	}
}

// Export downloads the document in every format its type offers and
// returns the local item root plus the document title. Individual format
// failures are skipped; only a document that exports in no format at all
// is a download error.
func (e *Exporter) Export(ctx context.Context, res types.Resource, destBase string) (string, string, error) {
	formats, ok := exportFormats[res.Kind]
	if !ok {
		return "", "", fmt.Errorf("no export formats for resource kind %q", res.Kind)
	}

	root := filepath.Join(destBase, "docs-"+res.ID)
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", "", fmt.Errorf("create download directory: %w", err)
	}

	title := e.fetchTitle(ctx, res)

	stem := strings.TrimSpace(unsafeInName.ReplaceAllString(title, ""))
	if len(stem) > 50 {
		stem = stem[:50]
	}
	if stem == "" {
		stem = fmt.Sprintf("%s_%s", res.Kind, res.ID)
	}

	exported := 0
	for _, format := range formats {
		dest := filepath.Join(root, stem+"."+format)
		if err := e.exportFormat(ctx, res, format, dest); err != nil {
			e.logger.Warn("export format failed", "format", format, "error", err)
			continue
		}
		exported++
		e.logger.Info("exported", "file", filepath.Base(dest))
	}

	if exported == 0 {
		return "", "", fmt.Errorf("failed to export google %s %s in any format", res.Kind, res.ID)
	}
	return root, title, nil
}

// fetchTitle scrapes the document title from the editor page. Failures
// fall back to a generic title; the export itself decides success.
func (e *Exporter) fetchTitle(ctx context.Context, res types.Resource) string {
	fallback := "Google Docs - " + res.ID

	u := fmt.Sprintf("%s/%s/d/%s", e.BaseURL, res.Kind, res.ID)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fallback
	}

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Debug("title fetch failed", "id", res.ID, "error", err)
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fallback
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256<<10))
	if err != nil {
		return fallback
	}

	m := htmlTitle.FindSubmatch(body)
	if m == nil {
		return fallback
	}
	title := strings.TrimSpace(titleSuffix.ReplaceAllString(string(m[1]), ""))
	if title == "" {
		return fallback
	}
	return title
}

func (e *Exporter) exportFormat(ctx context.Context, res types.Resource, format, dest string) error {
	u := fmt.Sprintf("%s/%s/d/%s/export?format=%s", e.BaseURL, res.Kind, res.ID, format)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("export endpoint returned %s", resp.Status)
	}

	partPath := dest + ".part"
	written, err := writeFile(resp.Body, partPath)
	if err != nil {
		os.Remove(partPath)
		return err
	}
	// An empty export means the format is not really available.
	if written == 0 {
		os.Remove(partPath)
		return fmt.Errorf("export returned an empty file")
	}

	if err := os.Rename(partPath, dest); err != nil {
		os.Remove(partPath)
		return err
	}
	return nil
}

func writeFile(r io.Reader, path string) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return n, err
}
