package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFileReplacesContent(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out.json")
	if err := SafeWriteFile(p, []byte("one")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := SafeWriteFile(p, []byte("two")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "two" {
		t.Fatalf("unexpected content: %q", b)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestCopyFileKeepsBytes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "ventes.xlsx")
	if err := os.WriteFile(src, []byte("PK\x03\x04fake"), 0o640); err != nil {
		t.Fatalf("write: %v", err)
	}
	dst := filepath.Join(dir, "nested", "copy.xlsx")
	n, err := CopyFile(src, dst)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if n != 8 {
		t.Fatalf("expected 8 bytes copied, got %d", n)
	}
	b, _ := os.ReadFile(dst)
	if string(b) != "PK\x03\x04fake" {
		t.Fatalf("content mismatch: %q", b)
	}
}

func TestBackupPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/data/ventes.xlsx", "/data/ventes_backup.xlsx"},
		{"report.csv", "report_backup.csv"},
		{"/data/noext", "/data/noext_backup"},
		{"/data/archive.tar.xlsx", "/data/archive.tar_backup.xlsx"},
	}
	for _, tt := range tests {
		if got := BackupPath(tt.in); got != tt.want {
			t.Errorf("BackupPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
