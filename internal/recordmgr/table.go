// Package recordmgr lays tables out on top of a buffer pool: page 0 holds a
// catalog header and schema, pages 1..N hold fixed-stride slotted records
// identified by tombstone byte, and a predicate-driven sequential scan
// drives evaluation of an externally supplied Expr.
package recordmgr

import (
	"encoding/binary"
	"fmt"

	"github.com/coredbms/pagestore/internal/bufferpool"
	"github.com/coredbms/pagestore/internal/storage"
)

// DefaultPoolPages is the buffer pool size OpenTable allocates per table,
// matching the legacy MAX_NUMBER_OF_PAGES default.
const DefaultPoolPages = 100

// catalog header byte offsets within page 0.
const (
	offTuplesCount = 0
	offFreePage    = 4
	offNumAttr     = 8
	offKeySize     = 12
	offAttrsStart  = 16
	attrEntrySize  = AttributeNameSize + 4 + 4
)

// Table is an open handle to a fixed-schema table file: its buffer pool,
// decoded schema, and catalog counters.
type Table struct {
	Name        string
	file        *storage.FileHandle
	Pool        *bufferpool.Pool
	Schema      *Schema
	TuplesCount int
	FreePage    int
	recordSize  int
}

func encodeHeader(buf []byte, schema *Schema, tuplesCount, freePage int) {
	for i := range buf {
		buf[i] = 0
	}
	binary.LittleEndian.PutUint32(buf[offTuplesCount:], uint32(tuplesCount))
	binary.LittleEndian.PutUint32(buf[offFreePage:], uint32(freePage))
	binary.LittleEndian.PutUint32(buf[offNumAttr:], uint32(len(schema.Attrs)))
	binary.LittleEndian.PutUint32(buf[offKeySize:], uint32(schema.KeySize))
	off := offAttrsStart
	for _, a := range schema.Attrs {
		nameBuf := make([]byte, AttributeNameSize)
		copy(nameBuf, a.Name)
		copy(buf[off:], nameBuf)
		binary.LittleEndian.PutUint32(buf[off+AttributeNameSize:], uint32(a.Type))
		binary.LittleEndian.PutUint32(buf[off+AttributeNameSize+4:], uint32(a.TypeLength))
		off += attrEntrySize
	}
}

func decodeHeader(buf []byte) (schema *Schema, tuplesCount, freePage int) {
	tuplesCount = int(int32(binary.LittleEndian.Uint32(buf[offTuplesCount:])))
	freePage = int(int32(binary.LittleEndian.Uint32(buf[offFreePage:])))
	numAttr := int(binary.LittleEndian.Uint32(buf[offNumAttr:]))
	keySize := int(binary.LittleEndian.Uint32(buf[offKeySize:]))

	attrs := make([]Attribute, numAttr)
	off := offAttrsStart
	for i := 0; i < numAttr; i++ {
		nameBuf := buf[off : off+AttributeNameSize]
		end := AttributeNameSize
		for j, b := range nameBuf {
			if b == 0 {
				end = j
				break
			}
		}
		dt := DataType(int32(binary.LittleEndian.Uint32(buf[off+AttributeNameSize:])))
		tl := int(binary.LittleEndian.Uint32(buf[off+AttributeNameSize+4:]))
		attrs[i] = Attribute{Name: string(nameBuf[:end]), Type: dt, TypeLength: tl}
		off += attrEntrySize
	}
	// The catalog layout does not persist which attribute indices form the
	// key, only the aggregate KeySize — the legacy on-disk format never
	// recorded it either. Key-attribute identity is a caller-side concern.
	schema = &Schema{Attrs: attrs, KeySize: keySize}
	return schema, tuplesCount, freePage
}

// CreateTable creates a new paged file for name, writes the page-0 catalog
// header and schema, and leaves the file closed (it is opened by OpenTable).
func CreateTable(name string, schema *Schema) error {
	if err := storage.CreatePageFile(name); err != nil {
		return err
	}
	h, err := storage.OpenPageFile(name)
	if err != nil {
		return err
	}
	defer storage.ClosePageFile(h)

	buf := make([]byte, storage.PageSize)
	encodeHeader(buf, schema, 0, 1)
	if err := h.WriteBlock(0, buf); err != nil {
		return err
	}
	return nil
}

// OpenTable opens an existing table file, decodes its catalog header, and
// allocates a buffer pool over it sized DefaultPoolPages with LRU
// replacement, matching the legacy default.
func OpenTable(name string) (*Table, error) {
	return OpenTableWithPool(name, DefaultPoolPages, bufferpool.LRU)
}

// OpenTableWithPool is OpenTable with an explicit buffer pool size and
// replacement strategy, for callers that resolve those from configuration
// (internal/config) rather than taking the legacy default.
func OpenTableWithPool(name string, poolSize int, strategy bufferpool.Strategy) (*Table, error) {
	h, err := storage.OpenPageFile(name)
	if err != nil {
		return nil, err
	}
	pool, err := bufferpool.InitBufferPool(h, poolSize, strategy)
	if err != nil {
		storage.ClosePageFile(h)
		return nil, err
	}

	ph, err := pool.PinPage(0)
	if err != nil {
		storage.ClosePageFile(h)
		return nil, err
	}
	schema, tuplesCount, freePage := decodeHeader(ph.Data)
	if err := pool.UnpinPage(ph); err != nil {
		storage.ClosePageFile(h)
		return nil, err
	}
	if err := pool.ForcePage(ph); err != nil {
		storage.ClosePageFile(h)
		return nil, err
	}

	return &Table{
		Name:        name,
		file:        h,
		Pool:        pool,
		Schema:      schema,
		TuplesCount: tuplesCount,
		FreePage:    freePage,
		recordSize:  GetRecordSize(schema),
	}, nil
}

// CloseTable shuts down the table's buffer pool and releases its file.
func CloseTable(t *Table) error {
	if err := t.Pool.ShutdownBufferPool(); err != nil {
		return err
	}
	return storage.ClosePageFile(t.file)
}

// DeleteTable destroys a table's paged file. The table must already be
// closed.
func DeleteTable(name string) error {
	return storage.DestroyPageFile(name)
}

// GetNumTuples returns the table's current tuple counter.
func GetNumTuples(t *Table) int { return t.TuplesCount }

func (t *Table) slotsPerPage() int {
	return storage.PageSize / t.recordSize
}

// findFreeSlot scans page data at stride recordSize for the first slot
// whose tombstone byte is not '+'. Returns -1 if the page is full.
func findFreeSlot(page []byte, recordSize int) int {
	n := len(page) / recordSize
	for i := 0; i < n; i++ {
		if page[i*recordSize] != tombstoneLive {
			return i
		}
	}
	return -1
}

func (t *Table) writeHeader() error {
	ph, err := t.Pool.PinPage(0)
	if err != nil {
		return err
	}
	encodeHeader(ph.Data, t.Schema, t.TuplesCount, t.FreePage)
	if err := t.Pool.MarkDirty(ph); err != nil {
		return err
	}
	return t.Pool.UnpinPage(ph)
}

// InsertRecord writes rec's payload into the first free slot starting from
// the table's free page, growing the file as needed, and sets rec.ID.
func (t *Table) InsertRecord(rec *Record) error {
	if rec == nil {
		return ErrNullArgument
	}
	page := t.FreePage
	for {
		ph, err := t.Pool.PinPage(page)
		if err != nil {
			return err
		}
		slot := findFreeSlot(ph.Data, t.recordSize)
		if slot < 0 {
			if err := t.Pool.UnpinPage(ph); err != nil {
				return err
			}
			page++
			continue
		}

		off := slot * t.recordSize
		ph.Data[off] = tombstoneLive
		copy(ph.Data[off+1:off+t.recordSize], rec.Data[1:])
		if err := t.Pool.MarkDirty(ph); err != nil {
			return err
		}
		if err := t.Pool.UnpinPage(ph); err != nil {
			return err
		}

		rec.ID = RID{Page: page, Slot: slot}
		t.TuplesCount++
		t.FreePage = page
		return t.writeHeader()
	}
}

// DeleteRecord tombstones the record at rid and records its page as the
// table's next free page to search from.
func (t *Table) DeleteRecord(rid RID) error {
	ph, err := t.Pool.PinPage(rid.Page)
	if err != nil {
		return err
	}
	off := rid.Slot * t.recordSize
	ph.Data[off] = tombstoneDeleted
	if err := t.Pool.MarkDirty(ph); err != nil {
		return err
	}
	if err := t.Pool.UnpinPage(ph); err != nil {
		return err
	}
	t.FreePage = rid.Page
	return t.writeHeader()
}

// UpdateRecord overwrites the record at rec.ID in place.
func (t *Table) UpdateRecord(rec *Record) error {
	if rec == nil {
		return ErrNullArgument
	}
	ph, err := t.Pool.PinPage(rec.ID.Page)
	if err != nil {
		return err
	}
	off := rec.ID.Slot * t.recordSize
	ph.Data[off] = tombstoneLive
	copy(ph.Data[off+1:off+t.recordSize], rec.Data[1:])
	if err := t.Pool.MarkDirty(ph); err != nil {
		return err
	}
	return t.Pool.UnpinPage(ph)
}

// GetRecord reads the record at rid, failing NoTupleWithGivenRID if its
// slot is not live.
func (t *Table) GetRecord(rid RID) (*Record, error) {
	ph, err := t.Pool.PinPage(rid.Page)
	if err != nil {
		return nil, err
	}
	off := rid.Slot * t.recordSize
	if ph.Data[off] != tombstoneLive {
		t.Pool.UnpinPage(ph)
		return nil, fmt.Errorf("rid %+v: %w", rid, ErrNoTupleWithGivenRID)
	}
	data := make([]byte, t.recordSize)
	copy(data, ph.Data[off:off+t.recordSize])
	if err := t.Pool.UnpinPage(ph); err != nil {
		return nil, err
	}
	return &Record{ID: rid, Data: data}, nil
}
