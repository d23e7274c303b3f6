package drive

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	drivev3 "google.golang.org/api/drive/v3"

	"github.com/Andres9890/iadrive/pkg/types"
)

// fileFields covers everything needed to mirror and verify one file.
const fileFields = "id, name, mimeType, size, md5Checksum"

// fetchTask describes one remote file to place at a local path. Workspace
// files set exportAs and carry no size or checksum.
type fetchTask struct {
	id       string
	name     string
	dest     string
	size     int64
	md5      string
	exportAs string
}

type fetchResult struct {
	task fetchTask
	err  error
}

// Download mirrors the resource into destBase and returns the local item
// root together with the remote display name, which becomes the item title.
// Single files land in a wrapper directory named after the file stem so the
// item root is always a directory.
func (c *Client) Download(ctx context.Context, res types.Resource, destBase string) (string, string, error) {
	meta, err := c.svc.Files.Get(res.ID).
		Fields(fileFields).
		SupportsAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("fetch drive metadata for %s: %w", res.ID, err)
	}

	if meta.MimeType == mimeFolder {
		return c.downloadFolder(ctx, meta, destBase)
	}
	return c.downloadFile(ctx, meta, destBase)
}

func (c *Client) downloadFile(ctx context.Context, f *drivev3.File, destBase string) (string, string, error) {
	name := sanitizePart(f.Name)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" {
		stem = name
	}

	root := filepath.Join(destBase, stem)
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", "", fmt.Errorf("create download directory: %w", err)
	}

	task := fetchTask{id: f.Id, name: f.Name, dest: filepath.Join(root, name), size: f.Size, md5: f.Md5Checksum}
	if strings.HasPrefix(f.MimeType, mimeAppsPrefix) {
		ef, ok := exportableMimeTypes[f.MimeType]
		if !ok {
			return "", "", fmt.Errorf("cannot export %s (%s)", f.Name, f.MimeType)
		}
		task = fetchTask{id: f.Id, name: f.Name, dest: filepath.Join(root, name+ef.Extension), exportAs: ef.MimeType}
	}

	if err := c.fetchOne(ctx, task); err != nil {
		return "", "", fmt.Errorf("download %s: %w", f.Name, err)
	}
	return root, f.Name, nil
}

func (c *Client) downloadFolder(ctx context.Context, folder *drivev3.File, destBase string) (string, string, error) {
	root := filepath.Join(destBase, sanitizePart(folder.Name))
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", "", fmt.Errorf("create download directory: %w", err)
	}

	var tasks []fetchTask
	if err := c.collectFolder(ctx, folder.Id, root, &tasks); err != nil {
		return "", "", err
	}
	c.logger.Info("fetching drive folder", "name", folder.Name, "files", len(tasks))

	if err := c.fetchAll(ctx, tasks); err != nil {
		return "", "", err
	}
	return root, folder.Name, nil
}

// collectFolder walks the remote tree, creates the matching local
// directories and gathers one fetchTask per downloadable file. Listing is
// ordered by name so duplicate-name counters come out the same on every
// run.
func (c *Client) collectFolder(ctx context.Context, id, dir string, tasks *[]fetchTask) error {
	names := newNameTracker()
	q := fmt.Sprintf("'%s' in parents and trashed = false", id)

	pageToken := ""
	for {
		call := c.svc.Files.List().Q(q).
			Fields("nextPageToken, files(id, name, mimeType, size, md5Checksum)").
			OrderBy("folder,name").
			PageSize(1000).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		page, err := call.Do()
		if err != nil {
			return fmt.Errorf("list folder %s: %w", id, err)
		}

		for _, child := range page.Files {
			switch {
			case child.MimeType == mimeFolder:
				sub := filepath.Join(dir, names.claim(sanitizePart(child.Name)))
				if err := os.MkdirAll(sub, 0755); err != nil {
					return fmt.Errorf("create download directory: %w", err)
				}
				if err := c.collectFolder(ctx, child.Id, sub, tasks); err != nil {
					return err
				}
			case child.MimeType == mimeShortcut:
				c.logger.Warn("skipping drive shortcut", "name", child.Name)
			case strings.HasPrefix(child.MimeType, mimeAppsPrefix):
				ef, ok := exportableMimeTypes[child.MimeType]
				if !ok {
					c.logger.Warn("skipping unexportable file", "name", child.Name, "mimetype", child.MimeType)
					continue
				}
				local := names.claim(sanitizePart(child.Name) + ef.Extension)
				*tasks = append(*tasks, fetchTask{
					id:       child.Id,
					name:     child.Name,
					dest:     filepath.Join(dir, local),
					exportAs: ef.MimeType,
				})
			default:
				local := names.claim(sanitizePart(child.Name))
				*tasks = append(*tasks, fetchTask{
					id:   child.Id,
					name: child.Name,
					dest: filepath.Join(dir, local),
					size: child.Size,
					md5:  child.Md5Checksum,
				})
			}
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			return nil
		}
	}
}

// fetchAll downloads the collected tasks over a small worker pool. Files
// are independent, so order does not matter; the first failure aborts the
// run because a partial mirror must not be uploaded.
func (c *Client) fetchAll(ctx context.Context, tasks []fetchTask) error {
	if len(tasks) == 0 {
		return nil
	}

	workers := c.jobs
	if workers > len(tasks) {
		workers = len(tasks)
	}

	taskChan := make(chan fetchTask, len(tasks))
	resultChan := make(chan fetchResult, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskChan {
				resultChan <- fetchResult{task: task, err: c.fetchOne(ctx, task)}
			}
		}()
	}

	for _, task := range tasks {
		taskChan <- task
	}
	close(taskChan)
	wg.Wait()
	close(resultChan)

	for result := range resultChan {
		if result.err != nil {
			return fmt.Errorf("download %s: %w", result.task.name, result.err)
		}
	}
	return nil
}

// fetchOne streams one file to dest through a .part temp so interrupted
// downloads never look like finished files. The temp is verified against
// the Drive-reported size and checksum before the rename.
func (c *Client) fetchOne(ctx context.Context, task fetchTask) error {
	var resp *http.Response
	var err error
	if task.exportAs != "" {
		resp, err = c.svc.Files.Export(task.id, task.exportAs).Context(ctx).Download()
	} else {
		resp, err = c.svc.Files.Get(task.id).SupportsAllDrives(true).Context(ctx).Download()
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	partPath := task.dest + ".part"
	written, err := writeFile(resp.Body, partPath)
	if err != nil {
		os.Remove(partPath)
		return err
	}
	if err := verifyDownload(partPath, task); err != nil {
		os.Remove(partPath)
		return err
	}
	if err := os.Rename(partPath, task.dest); err != nil {
		os.Remove(partPath)
		return err
	}

	c.logger.Info("downloaded", "file", task.name, "size", humanize.Bytes(uint64(written)))
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

// verifyDownload compares the temp file against what Drive reported.
// Exports carry neither size nor checksum and pass through.
func verifyDownload(path string, task fetchTask) error {
	if task.size > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() != task.size {
			return fmt.Errorf("size mismatch: expected %d, got %d", task.size, info.Size())
		}
	}

	if task.md5 != "" {
		sum, err := md5File(path)
		if err != nil {
			return err
		}
		if !strings.EqualFold(sum, task.md5) {
			return fmt.Errorf("md5 mismatch: expected %s, got %s", task.md5, sum)
		}
	}
	return nil
}

func md5File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
