// Package storage implements the paged file layer: a contiguous, zero-padded
// sequence of fixed-size blocks on disk, addressed by a zero-based page
// number, with a random-access cursor over the last-touched page.
//
// There is no magic number and no checksum in the on-disk format. The file's
// physical size is always an exact multiple of PageSize once an operation
// returns.
package storage

import (
	"fmt"
	"os"
)

// PageSize is the canonical block size used consistently across the storage
// layer, the buffer pool, and the record manager's catalog layout.
const PageSize = 4096

// NoPage is the sentinel page number meaning "no page loaded".
const NoPage = -1

// FileHandle is the client-visible handle to an open paged file. It owns the
// underlying OS file descriptor for its whole lifetime — the file is opened
// once and kept open, never reopened per operation. (The legacy source has a
// second, buggy variant of this layer that reopens the file on every write
// and measures payload length with strlen, which corrupts any write whose
// body contains a NUL byte; that variant is not implemented here.)
type FileHandle struct {
	FileName      string
	TotalNumPages int
	CurPagePos    int
	file          *os.File
}

// CreatePageFile creates a new paged file containing exactly one zero-filled
// page, then closes it.
func CreatePageFile(name string) error {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			f, err = os.OpenFile(name, os.O_RDWR|os.O_TRUNC, 0o644)
		}
		if err != nil {
			return fmt.Errorf("create page file %q: %w", name, ErrFileNotFound)
		}
	}
	defer f.Close()

	buf := make([]byte, PageSize)
	n, err := f.Write(buf)
	if err != nil || n != PageSize {
		return fmt.Errorf("create page file %q: %w", name, ErrWriteFailed)
	}
	return nil
}

// OpenPageFile opens an existing paged file for read/write and positions the
// cursor at page 0. A physical size that is not an exact multiple of
// PageSize has its remainder ignored when computing TotalNumPages.
func OpenPageFile(name string) (*FileHandle, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open page file %q: %w", name, ErrFileNotFound)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat page file %q: %w", name, ErrFileNotFound)
	}
	return &FileHandle{
		FileName:      name,
		TotalNumPages: int(info.Size() / PageSize),
		CurPagePos:    0,
		file:          f,
	}, nil
}

// ClosePageFile releases the handle's OS file descriptor.
func ClosePageFile(h *FileHandle) error {
	if h == nil || h.file == nil {
		return ErrFileHandleNotInit
	}
	err := h.file.Close()
	h.file = nil
	if err != nil {
		return fmt.Errorf("close page file %q: %w", h.FileName, ErrFileHandleNotInit)
	}
	return nil
}

// DestroyPageFile unlinks a paged file from disk.
func DestroyPageFile(name string) error {
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("destroy page file %q: %w", name, ErrFileNotFound)
	}
	return nil
}

// ReadBlock reads page pageNum into buf, which must be at least PageSize
// bytes, and advances the cursor to pageNum.
func (h *FileHandle) ReadBlock(pageNum int, buf []byte) error {
	if h == nil || h.file == nil {
		return ErrFileHandleNotInit
	}
	if pageNum < 0 || pageNum >= h.TotalNumPages {
		return fmt.Errorf("read block %d of %q: %w", pageNum, h.FileName, ErrReadNonExistingPage)
	}
	n, err := h.file.ReadAt(buf[:PageSize], int64(pageNum)*PageSize)
	if err != nil || n != PageSize {
		return fmt.Errorf("read block %d of %q: %w", pageNum, h.FileName, ErrReadError)
	}
	h.CurPagePos = pageNum
	return nil
}

// ReadFirstBlock reads page 0.
func (h *FileHandle) ReadFirstBlock(buf []byte) error { return h.ReadBlock(0, buf) }

// ReadLastBlock reads the final page of the file.
func (h *FileHandle) ReadLastBlock(buf []byte) error {
	return h.ReadBlock(h.TotalNumPages-1, buf)
}

// ReadPreviousBlock reads the page immediately before the cursor.
func (h *FileHandle) ReadPreviousBlock(buf []byte) error {
	return h.ReadBlock(h.CurPagePos-1, buf)
}

// ReadCurrentBlock re-reads the page the cursor currently points at.
func (h *FileHandle) ReadCurrentBlock(buf []byte) error {
	return h.ReadBlock(h.CurPagePos, buf)
}

// ReadNextBlock reads the page immediately after the cursor.
func (h *FileHandle) ReadNextBlock(buf []byte) error {
	return h.ReadBlock(h.CurPagePos+1, buf)
}

// WriteBlock writes exactly PageSize bytes of buf to page pageNum and
// advances the cursor to pageNum, regardless of what the payload contains.
func (h *FileHandle) WriteBlock(pageNum int, buf []byte) error {
	if h == nil || h.file == nil {
		return ErrFileHandleNotInit
	}
	if pageNum < 0 || pageNum >= h.TotalNumPages {
		return fmt.Errorf("write block %d of %q: %w", pageNum, h.FileName, ErrWriteNonExistingPage)
	}
	n, err := h.file.WriteAt(buf[:PageSize], int64(pageNum)*PageSize)
	if err != nil || n != PageSize {
		return fmt.Errorf("write block %d of %q: %w", pageNum, h.FileName, ErrWriteFailed)
	}
	h.CurPagePos = pageNum
	return nil
}

// AppendEmptyBlock appends one zero-filled page and grows TotalNumPages.
func (h *FileHandle) AppendEmptyBlock() error {
	if h == nil || h.file == nil {
		return ErrFileHandleNotInit
	}
	buf := make([]byte, PageSize)
	n, err := h.file.WriteAt(buf, int64(h.TotalNumPages)*PageSize)
	if err != nil || n != PageSize {
		return fmt.Errorf("append block to %q: %w", h.FileName, ErrWriteFailed)
	}
	h.TotalNumPages++
	return nil
}

// EnsureCapacity grows the file by appending empty blocks until it holds at
// least n pages.
func (h *FileHandle) EnsureCapacity(n int) error {
	for h.TotalNumPages < n {
		if err := h.AppendEmptyBlock(); err != nil {
			return err
		}
	}
	return nil
}
