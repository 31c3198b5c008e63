package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestFileOpenReadsContents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "lex.csv")
	const payload = "a,1\nb,2\n"
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rc, err := NewFile(path).Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != payload {
		t.Errorf("contents = %q, want %q", got, payload)
	}
}

func TestFileOpenSequentialScan(t *testing.T) {
	t.Parallel()

	// A payload spanning many read buffers, scanned front to back the way
	// the extraction pass does. Open advises the kernel about this pattern;
	// the handle must still read back byte for byte.
	path := filepath.Join(t.TempDir(), "big.csv")
	row := []byte("some_key,some_value\n")
	payload := bytes.Repeat(row, 64*1024)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rc, err := NewFile(path).Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("read %d bytes, want %d and identical contents", len(got), len(payload))
	}
}

func TestFileOpenMissingPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nope.csv")
	_, err := NewFile(path).Open(context.Background())
	if err == nil {
		t.Fatal("Open of missing file succeeded, want error")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want errors.Is(err, os.ErrNotExist)", err)
	}
}

func TestFileOpenCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFile("irrelevant").Open(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
