// Package bufferpool caches a bounded number of page frames over one
// underlying paged file, tracking pin counts and dirty bits and evicting
// under a pluggable replacement policy (FIFO, LRU, CLOCK, or LFU).
package bufferpool

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/coredbms/pagestore/internal/storage"
)

// Strategy names a replacement policy.
type Strategy int

const (
	FIFO Strategy = iota
	LRU
	CLOCK
	LFU
)

func (s Strategy) String() string {
	switch s {
	case FIFO:
		return "FIFO"
	case LRU:
		return "LRU"
	case CLOCK:
		return "CLOCK"
	case LFU:
		return "LFU"
	default:
		return "UNKNOWN"
	}
}

// NoPage is the sentinel page number meaning an empty frame.
const NoPage = storage.NoPage

// Frame is one buffer-pool slot. HitNum, RefBit, and RefNum are policy
// cookies — only the active strategy's cookie is meaningful at any time, but
// all three are tracked unconditionally since switching strategy mid-life
// is not supported and keeping them as plain fields avoids a type switch on
// every pin.
type Frame struct {
	Buf      []byte
	PageNum  int
	Dirty    bool
	PinCount int

	insertSeq int64 // FIFO: load order
	HitNum    int64 // LRU: last-touched logical clock
	RefBit    bool  // CLOCK: second-chance bit
	RefNum    int64 // LFU: reference count
}

// policy selects eviction victims and updates a frame's cookie on pin. It is
// implemented once per Strategy in policy_*.go.
type policy interface {
	// onLoad is called when a page is freshly loaded into frame idx (an
	// empty-frame fill or a post-eviction load).
	onLoad(p *Pool, idx int)
	// onRepin is called when an already-resident page at frame idx is
	// pinned again.
	onRepin(p *Pool, idx int)
	selectVictim(p *Pool) (int, bool)
}

// Pool is a fixed-size array of frames over one paged file.
type Pool struct {
	ID uuid.UUID

	file     *storage.FileHandle
	strategy Strategy
	pol      policy
	frames   []Frame

	readIO  int
	writeIO int

	loadCounter int64 // FIFO: next insertSeq to assign
	lruCounter  int64 // LRU: monotonic clock
	clockHand   int   // CLOCK: sweep position
}

// PageHandle is the client view returned by PinPage: a page number paired
// with a slice aliasing the frame's buffer. The alias is valid only between
// pin and the matching unpin; callers must not retain it afterward.
type PageHandle struct {
	PageNum int
	Data    []byte
}

// InitBufferPool allocates numPages empty frames over an already-open file.
func InitBufferPool(file *storage.FileHandle, numPages int, strategy Strategy) (*Pool, error) {
	if numPages < 1 {
		return nil, fmt.Errorf("bufferpool: numPages must be >= 1, got %d", numPages)
	}
	p := &Pool{
		ID:       uuid.New(),
		file:     file,
		strategy: strategy,
		frames:   make([]Frame, numPages),
	}
	for i := range p.frames {
		p.frames[i].PageNum = NoPage
	}
	switch strategy {
	case FIFO:
		p.pol = fifoPolicy{}
	case LRU:
		p.pol = lruPolicy{}
	case CLOCK:
		p.pol = clockPolicy{}
	case LFU:
		p.pol = lfuPolicy{}
	default:
		return nil, fmt.Errorf("bufferpool: unknown strategy %d", strategy)
	}
	return p, nil
}

// NumPages reports the fixed size of the pool.
func (p *Pool) NumPages() int { return len(p.frames) }

func (p *Pool) findFrame(pageNum int) int {
	for i := range p.frames {
		if p.frames[i].PageNum == pageNum {
			return i
		}
	}
	return -1
}

func (p *Pool) writeBack(idx int) error {
	f := &p.frames[idx]
	if err := p.file.WriteBlock(f.PageNum, f.Buf); err != nil {
		return err
	}
	f.Dirty = false
	p.writeIO++
	return nil
}

// ForceFlushPool writes every dirty, unpinned frame back to disk.
func (p *Pool) ForceFlushPool() error {
	for i := range p.frames {
		f := &p.frames[i]
		if f.PageNum != NoPage && f.PinCount == 0 && f.Dirty {
			if err := p.writeBack(i); err != nil {
				return err
			}
		}
	}
	return nil
}

// ShutdownBufferPool flushes dirty frames, then fails with
// ErrPinnedPagesInBuffer if any frame still has a nonzero pin count.
func (p *Pool) ShutdownBufferPool() error {
	if err := p.ForceFlushPool(); err != nil {
		return err
	}
	for i := range p.frames {
		if p.frames[i].PinCount > 0 {
			return ErrPinnedPagesInBuffer
		}
	}
	p.frames = nil
	return nil
}

// PinPage resolves pageNum into a frame and returns a handle aliasing its
// buffer, loading or evicting as needed.
func (p *Pool) PinPage(pageNum int) (*PageHandle, error) {
	if idx := p.findFrame(pageNum); idx >= 0 {
		f := &p.frames[idx]
		f.PinCount++
		p.pol.onRepin(p, idx)
		return &PageHandle{PageNum: pageNum, Data: f.Buf}, nil
	}

	if idx := p.emptyFrame(); idx >= 0 {
		if err := p.loadInto(idx, pageNum); err != nil {
			return nil, err
		}
		return &PageHandle{PageNum: pageNum, Data: p.frames[idx].Buf}, nil
	}

	idx, ok := p.pol.selectVictim(p)
	if !ok {
		return nil, fmt.Errorf("bufferpool: no unpinned frame available to evict")
	}
	if p.frames[idx].Dirty {
		if err := p.writeBack(idx); err != nil {
			return nil, err
		}
	}
	if err := p.loadInto(idx, pageNum); err != nil {
		return nil, err
	}
	return &PageHandle{PageNum: pageNum, Data: p.frames[idx].Buf}, nil
}

func (p *Pool) emptyFrame() int {
	for i := range p.frames {
		if p.frames[i].PageNum == NoPage {
			return i
		}
	}
	return -1
}

func (p *Pool) loadInto(idx, pageNum int) error {
	if err := p.file.EnsureCapacity(pageNum + 1); err != nil {
		return err
	}
	f := &p.frames[idx]
	if f.Buf == nil {
		f.Buf = make([]byte, storage.PageSize)
	}
	if err := p.file.ReadBlock(pageNum, f.Buf); err != nil {
		return err
	}
	f.PageNum = pageNum
	f.Dirty = false
	f.PinCount = 1
	p.readIO++
	p.pol.onLoad(p, idx)
	return nil
}

// MarkDirty sets the dirty bit of the frame holding handle's page.
func (p *Pool) MarkDirty(h *PageHandle) error {
	idx := p.findFrame(h.PageNum)
	if idx < 0 {
		return ErrFrameNotFound
	}
	p.frames[idx].Dirty = true
	return nil
}

// UnpinPage decrements the pin count of the frame holding handle's page.
// Unpinning an already-unpinned frame is tolerated, matching the legacy
// contract, which treats it as a no-op rather than an error.
func (p *Pool) UnpinPage(h *PageHandle) error {
	idx := p.findFrame(h.PageNum)
	if idx < 0 {
		return ErrFrameNotFound
	}
	if p.frames[idx].PinCount > 0 {
		p.frames[idx].PinCount--
	}
	return nil
}

// ForcePage writes the frame holding handle's page back to disk
// unconditionally and clears its dirty bit.
func (p *Pool) ForcePage(h *PageHandle) error {
	idx := p.findFrame(h.PageNum)
	if idx < 0 {
		return ErrFrameNotFound
	}
	return p.writeBack(idx)
}

// GetFrameContents returns the page number held by each frame (NoPage for
// empty frames).
func (p *Pool) GetFrameContents() []int {
	out := make([]int, len(p.frames))
	for i := range p.frames {
		out[i] = p.frames[i].PageNum
	}
	return out
}

// GetDirtyFlags returns each frame's dirty bit.
func (p *Pool) GetDirtyFlags() []bool {
	out := make([]bool, len(p.frames))
	for i := range p.frames {
		out[i] = p.frames[i].Dirty
	}
	return out
}

// GetFixCounts returns each frame's pin count.
func (p *Pool) GetFixCounts() []int {
	out := make([]int, len(p.frames))
	for i := range p.frames {
		out[i] = p.frames[i].PinCount
	}
	return out
}

// GetNumReadIO returns the total number of on-demand page loads since init.
func (p *Pool) GetNumReadIO() int { return p.readIO }

// GetNumWriteIO returns the total number of block writes to disk since init,
// including ForceFlushPool and ForcePage.
func (p *Pool) GetNumWriteIO() int { return p.writeIO }
