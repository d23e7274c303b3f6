// Package archive uploads items to the Internet Archive S3-like API.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/Andres9890/iadrive/pkg/types"
)

const (
	defaultS3Endpoint       = "https://s3.us.archive.org"
	defaultMetadataEndpoint = "https://archive.org"
)

type Client struct {
	// Endpoint is the S3-like upload endpoint.
	Endpoint string
	// MetadataEndpoint serves the item metadata read API.
	MetadataEndpoint string

	accessKey string
	secretKey string
	retry     *retryablehttp.Client
	logger    *slog.Logger
}

func NewClient(accessKey, secretKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	// The S3 endpoint throttles with 503 SlowDown; retry with backoff
	// instead of failing the whole run.
	retry := retryablehttp.NewClient()
	retry.RetryMax = 5
	retry.Logger = nil

	return &Client{
		Endpoint:         defaultS3Endpoint,
		MetadataEndpoint: defaultMetadataEndpoint,
		accessKey:        accessKey,
		secretKey:        secretKey,
		retry:            retry,
		logger:           logger,
	}
}

// Exists reports whether an item with the given identifier already exists.
// The metadata endpoint returns an empty JSON object for unknown items.
func (c *Client) Exists(ctx context.Context, identifier string) (bool, error) {
	u := c.MetadataEndpoint + "/metadata/" + url.PathEscape(identifier)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.retry.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("metadata endpoint returned %s", resp.Status)
	}

	var item struct {
		Metadata *struct {
			Identifier string `json:"identifier"`
		} `json:"metadata"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return false, fmt.Errorf("decode metadata response: %w", err)
	}

	return item.Metadata != nil, nil
}

// Upload PUTs every file of the item to the S3 endpoint. The first PUT
// carries the item metadata headers and creates the bucket; the remaining
// files are plain uploads. Any failed PUT aborts the upload.
func (c *Client) Upload(ctx context.Context, meta types.ItemMetadata, flat bool) error {
	if len(meta.Files) == 0 {
		return fmt.Errorf("no files to upload")
	}

	names := remoteNames(meta.Files, flat)
	for i, rec := range meta.Files {
		var hdr http.Header
		if i == 0 {
			hdr = c.metadataHeaders(meta)
			hdr.Set("x-amz-auto-make-bucket", "1")
		}

		if err := c.putFile(ctx, meta.Identifier, names[i], rec, hdr); err != nil {
			return fmt.Errorf("upload %s: %w", rec.RelPath, err)
		}
		c.logger.Info("uploaded", "file", names[i], "size", rec.Size)
	}

	return nil
}

func (c *Client) putFile(ctx context.Context, identifier, name string, rec types.FileRecord, hdr http.Header) error {
	f, err := os.Open(rec.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	u := c.Endpoint + "/" + url.PathEscape(identifier) + "/" + escapeRemotePath(name)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPut, u, f)
	if err != nil {
		return err
	}
	req.ContentLength = rec.Size
	req.Header.Set("authorization", "LOW "+c.accessKey+":"+c.secretKey)
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.retry.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("archive returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	io.Copy(io.Discard, resp.Body)

	return nil
}

// ItemURL returns the public details page for an identifier.
func ItemURL(identifier string) string {
	return "https://archive.org/details/" + identifier
}

// remoteNames maps records to their names inside the item. Preserving
// folders keeps RelPath; flat keeps only base names, deduplicating
// collisions with _1, _2 suffixes before the extension.
func remoteNames(files []types.FileRecord, flat bool) []string {
	names := make([]string, len(files))
	if !flat {
		for i, f := range files {
			names[i] = f.RelPath
		}
		return names
	}

	used := make(map[string]int)
	for i, f := range files {
		base := path.Base(f.RelPath)
		n := used[base]
		used[base] = n + 1
		if n == 0 {
			names[i] = base
			continue
		}
		ext := path.Ext(base)
		stem := strings.TrimSuffix(base, ext)
		names[i] = fmt.Sprintf("%s_%d%s", stem, n, ext)
	}
	return names
}

func (c *Client) metadataHeaders(meta types.ItemMetadata) http.Header {
	kv := map[string]string{
		"title":       meta.Title,
		"mediatype":   meta.Mediatype,
		"collection":  meta.Collection,
		"description": meta.Description,
		"publisher":   meta.Publisher,
		"subject":     subjectHeader(meta.Subjects),
		"filecount":   strconv.Itoa(meta.FileCount),
		"originalurl": meta.SourceURL,
		"scanner":     meta.Scanner,
	}
	if meta.Date != nil {
		kv["date"] = meta.Date.Format("2006-01-02")
		kv["year"] = strconv.Itoa(meta.Date.Year())
	}
	if meta.FolderCount > 0 {
		kv["foldercount"] = strconv.Itoa(meta.FolderCount)
	}
	if meta.DocType != "" {
		kv["doctype"] = meta.DocType
	}
	for k, v := range meta.Extra {
		k = strings.ToLower(strings.TrimSpace(k))
		// date and subject are derived from file contents and stay computed.
		if k == "" || k == "date" || k == "subject" {
			continue
		}
		kv[k] = v
	}

	hdr := http.Header{}
	for k, v := range kv {
		if v == "" {
			continue
		}
		hdr.Set("x-archive-meta-"+k, encodeHeaderValue(v))
	}
	return hdr
}

// subjectHeader joins subjects with semicolons. The archive caps the
// subject field at 255 bytes; trailing tags are dropped to fit.
func subjectHeader(subjects []string) string {
	if len(subjects) == 0 {
		return ""
	}
	tags := append([]string(nil), subjects...)
	s := strings.Join(tags, ";") + ";"
	for len(s) > 255 && len(tags) > 0 {
		tags = tags[:len(tags)-1]
		s = strings.Join(tags, ";") + ";"
	}
	if len(tags) == 0 {
		return ""
	}
	return s
}

// encodeHeaderValue wraps values that cannot travel in an HTTP header
// (non-ASCII bytes or control characters) in the archive's uri() encoding.
func encodeHeaderValue(v string) string {
	for _, r := range v {
		if r < 0x20 || r > 0x7e {
			return "uri(" + url.PathEscape(v) + ")"
		}
	}
	return v
}

func escapeRemotePath(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
