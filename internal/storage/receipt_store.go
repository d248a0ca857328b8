package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// ReceiptStore abstracts the receipt-image asset storage. Uploads happen on
// the client side; the backend only needs to clean assets up when their
// spending record goes away.
type ReceiptStore interface {
	// Remove deletes the asset at path. Missing assets are not an error.
	Remove(path string) error
}

type localReceiptStore struct {
	baseDir string
}

// NewLocalReceiptStore serves receipt assets from a directory on disk.
func NewLocalReceiptStore(baseDir string) ReceiptStore {
	return &localReceiptStore{baseDir: baseDir}
}

func (s *localReceiptStore) Remove(path string) error {
	if path == "" {
		return nil
	}

	base, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve receipts dir: %w", err)
	}

	full := filepath.Clean(path)
	if !filepath.IsAbs(full) {
		// Client-side paths carry their own directory prefix; only the file
		// name is meaningful here.
		full = filepath.Join(base, filepath.Base(full))
	}

	// Never touch anything outside the managed receipts directory, whatever
	// the stored path claims.
	rel, err := filepath.Rel(base, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		logrus.WithField("path", path).Debug("skipping removal of unmanaged receipt path")
		return nil
	}

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to remove receipt image %s: %w", path, err)
	}
	return nil
}
