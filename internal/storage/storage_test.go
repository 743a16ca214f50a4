package storage

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
)

func TestCreateReadWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t1")

	if err := CreatePageFile(path); err != nil {
		t.Fatalf("CreatePageFile: %v", err)
	}

	h, err := OpenPageFile(path)
	if err != nil {
		t.Fatalf("OpenPageFile: %v", err)
	}
	if h.TotalNumPages != 1 {
		t.Fatalf("TotalNumPages = %d, want 1", h.TotalNumPages)
	}

	payload := make([]byte, PageSize)
	for i := range payload {
		payload[i] = byte(i % 256)
	}
	if err := h.WriteBlock(0, payload); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	if err := ClosePageFile(h); err != nil {
		t.Fatalf("ClosePageFile: %v", err)
	}

	h2, err := OpenPageFile(path)
	if err != nil {
		t.Fatalf("OpenPageFile (reopen): %v", err)
	}
	defer ClosePageFile(h2)

	got := make([]byte, PageSize)
	if err := h2.ReadBlock(0, got); err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round-trip mismatch")
	}
}

func TestEnsureCapacityGrows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t2")
	if err := CreatePageFile(path); err != nil {
		t.Fatalf("CreatePageFile: %v", err)
	}
	h, err := OpenPageFile(path)
	if err != nil {
		t.Fatalf("OpenPageFile: %v", err)
	}
	defer ClosePageFile(h)

	if err := h.EnsureCapacity(5); err != nil {
		t.Fatalf("EnsureCapacity: %v", err)
	}
	if h.TotalNumPages != 5 {
		t.Fatalf("TotalNumPages = %d, want 5", h.TotalNumPages)
	}

	buf := make([]byte, PageSize)
	zero := make([]byte, PageSize)
	for p := 0; p < 5; p++ {
		if err := h.ReadBlock(p, buf); err != nil {
			t.Fatalf("ReadBlock(%d): %v", p, err)
		}
		if !bytes.Equal(buf, zero) {
			t.Fatalf("page %d not zero-filled", p)
		}
	}
}

func TestReadNonExistingPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t3")
	if err := CreatePageFile(path); err != nil {
		t.Fatalf("CreatePageFile: %v", err)
	}
	h, err := OpenPageFile(path)
	if err != nil {
		t.Fatalf("OpenPageFile: %v", err)
	}
	defer ClosePageFile(h)

	buf := make([]byte, PageSize)
	err = h.ReadBlock(5, buf)
	if !errors.Is(err, ErrReadNonExistingPage) {
		t.Fatalf("ReadBlock(5) err = %v, want ErrReadNonExistingPage", err)
	}

	err = h.ReadBlock(-1, buf)
	if !errors.Is(err, ErrReadNonExistingPage) {
		t.Fatalf("ReadBlock(-1) err = %v, want ErrReadNonExistingPage", err)
	}
}

func TestDestroyPageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t4")
	if err := CreatePageFile(path); err != nil {
		t.Fatalf("CreatePageFile: %v", err)
	}
	if err := DestroyPageFile(path); err != nil {
		t.Fatalf("DestroyPageFile: %v", err)
	}
	if _, err := OpenPageFile(path); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("OpenPageFile after destroy = %v, want ErrFileNotFound", err)
	}
}
