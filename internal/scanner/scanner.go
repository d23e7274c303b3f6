// Package scanner walks a downloaded item tree and extracts embedded dates.
package scanner

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Andres9890/iadrive/internal/metadata"
	"github.com/Andres9890/iadrive/pkg/types"
)

type Scanner struct {
	extractor *metadata.Extractor
	workers   int
	logger    *slog.Logger
}

func New(workers int, logger *slog.Logger) *Scanner {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		extractor: metadata.New(),
		workers:   workers,
		logger:    logger,
	}
}

// Scan walks root and returns one FileRecord per regular file, sorted by
// RelPath. In-progress downloads (.part files) are skipped.
func (s *Scanner) Scan(root string) ([]types.FileRecord, error) {
	var records []types.FileRecord

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".part") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		records = append(records, types.FileRecord{
			RelPath: filepath.ToSlash(rel),
			Path:    path,
			Size:    info.Size(),
			Ext:     ext,
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].RelPath < records[j].RelPath
	})

	return records, nil
}

// ExtractDates runs the metadata extractor over every record using a worker
// pool and returns records with Date and DateSource filled in where a date
// was found. Extraction failures are logged at debug level and leave the
// record dateless.
func (s *Scanner) ExtractDates(records []types.FileRecord) []types.FileRecord {
	out := make([]types.FileRecord, len(records))
	copy(out, records)

	idxChan := make(chan int, len(out))

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range idxChan {
				ed := s.extractor.Extract(out[idx])
				if ed.Err != "" {
					s.logger.Debug("no embedded date",
						"file", out[idx].RelPath, "reason", ed.Err)
					continue
				}
				if ed.Time != nil {
					out[idx].Date = ed.Time
					out[idx].DateSource = ed.Source
					s.logger.Debug("embedded date found",
						"file", out[idx].RelPath, "date", ed.Time.Format("2006-01-02"), "source", ed.Source)
				}
			}
		}()
	}

	for i := range out {
		idxChan <- i
	}
	close(idxChan)

	wg.Wait()
	return out
}
