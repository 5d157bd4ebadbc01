// Package filestore keeps the vault in a single JSON file: the whole
// collection is read on every call and rewritten on every mutation.
package filestore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/starford/recvault/internal/models"
	"github.com/starford/recvault/internal/storage"
)

// Collection reads and writes the backing JSON array.
type Collection struct {
	store  storage.Provider
	file   string
	logger *slog.Logger

	mu      sync.Mutex
	lastSum string // checksum of the last content this process wrote
}

// NewCollection returns a collection stored at file (relative to the
// provider root).
func NewCollection(store storage.Provider, file string, logger *slog.Logger) *Collection {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collection{store: store, file: file, logger: logger}
}

// File returns the backing file path relative to the provider root.
func (c *Collection) File() string { return c.file }

// Read parses the backing file. A missing file is an empty collection.
// A file that is not valid JSON is moved aside to <file>.corrupt and also
// read as empty, so the next write cannot destroy the only copy. Values of
// any JSON type are accepted (see models.ValueText).
func (c *Collection) Read() ([]models.Record, error) {
	data, err := c.store.Read(c.file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Record{}, nil
		}
		return nil, fmt.Errorf("filestore: read: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.Record{}, nil
	}

	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		var syntaxErr *json.SyntaxError
		if !errors.As(err, &syntaxErr) {
			// Well-formed JSON of the wrong shape is left in place.
			return nil, fmt.Errorf("filestore: decode %s: %w", c.file, err)
		}
		aside := c.file + ".corrupt"
		c.logger.Warn("filestore: unparsable vault file, starting empty",
			slog.String("file", c.file),
			slog.String("moved_to", aside),
			slog.String("error", err.Error()))
		if mvErr := c.store.Move(c.file, aside); mvErr != nil {
			return nil, fmt.Errorf("filestore: quarantine corrupt file: %w", mvErr)
		}
		return []models.Record{}, nil
	}
	if records == nil {
		records = []models.Record{}
	}
	return records, nil
}

// Write replaces the backing file with records.
func (c *Collection) Write(records []models.Record) error {
	if records == nil {
		records = []models.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: encode: %w", err)
	}
	data = append(data, '\n')

	if err := c.store.Write(c.file, data); err != nil {
		return fmt.Errorf("filestore: write: %w", err)
	}
	c.mu.Lock()
	c.lastSum = checksum(data)
	c.mu.Unlock()
	return nil
}

// ModTime returns the backing file's last modification time, or the zero
// time if the file does not exist yet.
func (c *Collection) ModTime() (time.Time, error) {
	meta, err := c.store.Stat(c.file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("filestore: stat: %w", err)
	}
	return meta.UpdatedAt, nil
}

// ownWrite reports whether data is exactly what this process last wrote.
func (c *Collection) ownWrite(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSum != "" && c.lastSum == checksum(data)
}

func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
