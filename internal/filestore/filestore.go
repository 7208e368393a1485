// Package filestore resolves package file references to document bytes.
// Rendering and storage of the PDFs themselves happen in another system;
// this service only needs read access for participant downloads.
package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/paraphe-sign/internal/apperrors"
)

type FileStore interface {
	Get(ctx context.Context, ref string) ([]byte, error)
}

// Disk serves files from a configured root directory. References are
// kept relative to the root; path escapes are rejected.
type Disk struct {
	root string
}

func NewDisk(root string) *Disk {
	return &Disk{root: root}
}

func (d *Disk) Get(ctx context.Context, ref string) ([]byte, error) {
	clean := filepath.Clean(ref)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, apperrors.Validation("invalid file reference")
	}
	data, err := os.ReadFile(filepath.Join(d.root, clean))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NotFound("document file")
		}
		return nil, err
	}
	return data, nil
}

// Memory is a map-backed store for tests and demo seeding.
type Memory struct {
	files map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

func (m *Memory) Put(ref string, data []byte) {
	m.files[ref] = data
}

func (m *Memory) Get(ctx context.Context, ref string) ([]byte, error) {
	data, ok := m.files[ref]
	if !ok {
		return nil, apperrors.NotFound("document file")
	}
	return data, nil
}
