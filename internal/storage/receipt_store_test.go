package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRemoveDeletesManagedFile(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalReceiptStore(dir)

	target := filepath.Join(dir, "receipt-1.jpg")
	if err := os.WriteFile(target, []byte("jpeg"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := store.Remove("receipts/receipt-1.jpg"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Error("file still exists after removal")
	}
}

func TestRemoveMissingFileIsNoError(t *testing.T) {
	store := NewLocalReceiptStore(t.TempDir())

	if err := store.Remove("receipts/never-uploaded.jpg"); err != nil {
		t.Fatalf("remove missing file: %v", err)
	}
}

func TestRemoveIgnoresEmptyAndUnmanagedPaths(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalReceiptStore(dir)

	outside := filepath.Join(t.TempDir(), "passwd")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := store.Remove(""); err != nil {
		t.Errorf("empty path: %v", err)
	}
	if err := store.Remove(outside); err != nil {
		t.Errorf("unmanaged path: %v", err)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Error("unmanaged file must not be deleted")
	}
}

func TestRemoveRejectsReceiptsPathOutsideBaseDir(t *testing.T) {
	store := NewLocalReceiptStore(t.TempDir())

	// An absolute path with a receipts/ segment that still points outside
	// the managed directory must not be honored.
	outsideDir := filepath.Join(t.TempDir(), "receipts")
	if err := os.MkdirAll(outsideDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	target := filepath.Join(outsideDir, "photo.jpg")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := store.Remove(target); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Error("file outside the managed directory must not be deleted")
	}
}

func TestRemoveTraversalPathStaysInBaseDir(t *testing.T) {
	root := t.TempDir()
	baseDir := filepath.Join(root, "receipts")
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	store := NewLocalReceiptStore(baseDir)

	secret := filepath.Join(root, "secret.txt")
	if err := os.WriteFile(secret, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := store.Remove("receipts/../secret.txt"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(secret); err != nil {
		t.Error("traversal path must not delete files outside the managed directory")
	}
}
