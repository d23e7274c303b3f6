// Package history keeps a local record of items uploaded by previous runs.
// It is informational only; the archive.org metadata endpoint remains the
// authority on whether an item exists.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Entry struct {
	Identifier string    `json:"identifier"`
	SourceURL  string    `json:"source_url"`
	Title      string    `json:"title"`
	FileCount  int       `json:"file_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type History struct {
	mu       sync.RWMutex
	filePath string

	Items      map[string]Entry `json:"items"`
	LastUpload time.Time        `json:"last_upload"`
}

func New(filePath string) *History {
	return &History{
		filePath: filePath,
		Items:    make(map[string]Entry),
	}
}

func Load(filePath string) (*History, error) {
	h := New(filePath)

	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return h, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, h); err != nil {
		return nil, err
	}
	if h.Items == nil {
		h.Items = make(map[string]Entry)
	}

	return h, nil
}

func (h *History) Save() error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(h.filePath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(h.filePath, data, 0644)
}

// Record stores an uploaded item, replacing any earlier entry with the
// same identifier.
func (h *History) Record(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	e.UploadedAt = time.Now()
	h.Items[e.Identifier] = e
	h.LastUpload = e.UploadedAt
}

func (h *History) Has(identifier string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.Items[identifier]
	return ok
}
