// Package collector accumulates the pending upload batch for one analysis
// run. Validation is all-or-nothing: a batch containing any non-CSV file is
// rejected before anything is staged.
package collector

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jeevamani007/data-analysis-sub000/internal/models"
)

// AcceptedExtension is the only file type the dashboard accepts.
const AcceptedExtension = ".csv"

// ErrEmptyBatch is returned when an empty batch is submitted or added.
var ErrEmptyBatch = fmt.Errorf("no files in batch")

// MixedTypeError reports the first offending file of a rejected batch.
type MixedTypeError struct {
	FileName string
}

func (e *MixedTypeError) Error() string {
	return fmt.Sprintf("only %s files are accepted: %q is not", AcceptedExtension, e.FileName)
}

// Collector holds the accumulated files of one pending batch.
type Collector struct {
	mu    sync.RWMutex
	files []models.BatchFile
}

// New creates an empty collector.
func New() *Collector {
	return &Collector{files: make([]models.BatchFile, 0, 4)}
}

// Add stages the given files, preserving their order. If any file is not an
// accepted CSV the whole call is rejected and nothing is staged.
func (c *Collector) Add(files []models.BatchFile) error {
	if len(files) == 0 {
		return ErrEmptyBatch
	}
	for _, f := range files {
		if !Accepted(f.Name) {
			return &MixedTypeError{FileName: f.Name}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = append(c.files, files...)
	return nil
}

// RemoveAt removes the file at position i. The previously-last file takes
// the vacated position; every other relative order is preserved.
func (c *Collector) RemoveAt(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= len(c.files) {
		return fmt.Errorf("file index %d out of range (have %d)", i, len(c.files))
	}

	last := len(c.files) - 1
	c.files[i] = c.files[last]
	c.files = c.files[:last]
	return nil
}

// Files returns a copy of the staged files in order.
func (c *Collector) Files() []models.BatchFile {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.BatchFile, len(c.files))
	copy(out, c.files)
	return out
}

// Len returns the number of staged files.
func (c *Collector) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.files)
}

// Clear drops all staged files.
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = c.files[:0]
}

// Accepted reports whether the file name carries the accepted extension.
func Accepted(name string) bool {
	return strings.EqualFold(filepath.Ext(name), AcceptedExtension)
}
