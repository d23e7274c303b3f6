// Package drive downloads public Google Drive files and folders through the
// official Drive v3 API and resolves item owners for the publisher field.
package drive

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

type Client struct {
	svc    *drivev3.Service
	jobs   int
	logger *slog.Logger
}

// NewClient builds a Drive client from either an API key (enough for public
// content) or a service account JSON file. Extra options are appended last
// so callers can redirect the client in tests.
func NewClient(ctx context.Context, apiKey, serviceAccountPath string, jobs int, logger *slog.Logger, extra ...option.ClientOption) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if jobs < 1 {
		jobs = 1
	}

	var opts []option.ClientOption
	switch {
	case serviceAccountPath != "":
		data, err := os.ReadFile(serviceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		jwtCfg, err := google.JWTConfigFromJSON(data, drivev3.DriveReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("parse service account file: %w", err)
		}
		opts = append(opts, option.WithHTTPClient(jwtCfg.Client(ctx)))
	case apiKey != "":
		opts = append(opts, option.WithAPIKey(apiKey))
	default:
		return nil, fmt.Errorf("no Google Drive credential configured")
	}
	opts = append(opts, extra...)

	svc, err := drivev3.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &Client{svc: svc, jobs: jobs, logger: logger}, nil
}

// OwnerNames returns the display names of the file's owners. Every failure
// is soft: the publisher simply falls back to the configured default.
func (c *Client) OwnerNames(ctx context.Context, id string) []string {
	resp, err := c.svc.Files.Get(id).
		Fields("owners(displayName)").
		SupportsAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		c.logger.Debug("owner lookup failed", "id", id, "error", err)
		return nil
	}

	var names []string
	for _, o := range resp.Owners {
		if o != nil && o.DisplayName != "" {
			names = append(names, o.DisplayName)
		}
	}
	return names
}

// FormatOwners renders an owner list as a publisher value: a single owner
// keeps its name, several owners become "{a, b}", none yields "".
func FormatOwners(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return "{" + strings.Join(names, ", ") + "}"
}
