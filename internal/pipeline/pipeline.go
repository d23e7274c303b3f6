// Package pipeline wires download, scan, metadata and upload into one run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Andres9890/iadrive/internal/archive"
	"github.com/Andres9890/iadrive/internal/config"
	"github.com/Andres9890/iadrive/internal/drive"
	"github.com/Andres9890/iadrive/internal/drivelink"
	"github.com/Andres9890/iadrive/internal/gdocs"
	"github.com/Andres9890/iadrive/internal/history"
	"github.com/Andres9890/iadrive/internal/item"
	"github.com/Andres9890/iadrive/internal/scanner"
	"github.com/Andres9890/iadrive/pkg/types"
)

type Pipeline struct {
	cfg     *config.Config
	drive   *drive.Client
	docs    *gdocs.Exporter
	scanner *scanner.Scanner
	builder *item.Builder
	archive *archive.Client
	history *history.History
	logger  *slog.Logger
}

// New wires the pipeline components from the validated config. The Drive
// client is only built when a Google credential is configured; runs that
// need it without one fail before any download in Run.
func New(ctx context.Context, cfg *config.Config, version string) (*Pipeline, error) {
	logger := slog.Default()

	hist, err := history.Load(cfg.HistoryFile)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	var driveClient *drive.Client
	if cfg.GoogleAPIKey != "" || cfg.GoogleServiceAccount != "" {
		driveClient, err = drive.NewClient(ctx, cfg.GoogleAPIKey, cfg.GoogleServiceAccount, cfg.Jobs, logger)
		if err != nil {
			return nil, fmt.Errorf("create drive client: %w", err)
		}
	}

	builder := item.NewBuilder(item.Options{
		Collection:        cfg.Collection,
		Mediatype:         cfg.Mediatype,
		MediatypeExplicit: cfg.MediatypeExplicit,
		Publisher:         cfg.Publisher,
		Scanner:           "iadrive " + version,
		Identifier:        cfg.Identifier,
		Extra:             cfg.Metadata,
	})

	return &Pipeline{
		cfg:     cfg,
		drive:   driveClient,
		docs:    gdocs.NewExporter(logger),
		scanner: scanner.New(cfg.Jobs, logger),
		builder: builder,
		archive: archive.NewClient(cfg.IAAccessKey, cfg.IASecretKey, logger),
		history: hist,
		logger:  logger,
	}, nil
}

// Run mirrors one share link to an archive.org item. Per-file extraction
// and owner lookup failures are absorbed along the way; link, download and
// upload errors abort the run.
func (p *Pipeline) Run(ctx context.Context, link string) (*types.MirrorResult, error) {
	start := time.Now()

	res, err := drivelink.Parse(link)
	if err != nil {
		return nil, err
	}

	destBase, err := filepath.Abs(p.cfg.Dest)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(destBase, 0755); err != nil {
		return nil, fmt.Errorf("create destination directory: %w", err)
	}

	var root, title string
	if res.IsDocs() {
		root, title, err = p.docs.Export(ctx, res, destBase)
	} else {
		if p.drive == nil {
			return nil, fmt.Errorf("GOOGLE_API_KEY or GOOGLE_SERVICE_ACCOUNT is required to download Drive content")
		}
		root, title, err = p.drive.Download(ctx, res, destBase)
	}
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	p.logger.Info("download complete", "path", root)

	records, err := p.scanner.Scan(root)
	if err != nil {
		return nil, fmt.Errorf("scan downloaded files: %w", err)
	}
	p.logger.Info("found files", "count", len(records))
	records = p.scanner.ExtractDates(records)

	owner := ""
	if p.drive != nil {
		owner = drive.FormatOwners(p.drive.OwnerNames(ctx, res.ID))
	}

	meta, err := p.builder.Build(item.Source{
		Resource: res,
		Link:     link,
		Name:     title,
		Owner:    owner,
	}, records)
	if err != nil {
		return nil, err
	}

	result := &types.MirrorResult{
		Identifier: meta.Identifier,
		ItemURL:    archive.ItemURL(meta.Identifier),
		Metadata:   meta,
		DryRun:     p.cfg.DryRun,
	}

	if p.cfg.DryRun {
		p.logger.Info("dry run, skipping upload", "identifier", meta.Identifier)
		result.Duration = time.Since(start)
		return result, nil
	}

	if len(records) == 0 {
		p.logger.Warn("no files downloaded, nothing to upload", "identifier", meta.Identifier)
		result.Duration = time.Since(start)
		return result, nil
	}

	exists, err := p.archive.Exists(ctx, meta.Identifier)
	if err != nil {
		return nil, fmt.Errorf("check existing item: %w", err)
	}
	if exists {
		p.logger.Warn("item already exists on archive.org, skipping upload", "identifier", meta.Identifier)
		result.AlreadyExists = true
		result.Duration = time.Since(start)
		return result, nil
	}

	if err := p.archive.Upload(ctx, meta, p.cfg.Flat); err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	result.Uploaded = true

	p.history.Record(history.Entry{
		Identifier: meta.Identifier,
		SourceURL:  link,
		Title:      meta.Title,
		FileCount:  meta.FileCount,
	})
	if err := p.history.Save(); err != nil {
		p.logger.Warn("failed to save history", "error", err)
	}

	result.Duration = time.Since(start)
	return result, nil
}
