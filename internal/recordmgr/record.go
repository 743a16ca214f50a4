package recordmgr

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// tombstone byte values.
const (
	tombstoneLive    = '+'
	tombstoneDeleted = '-'
	tombstoneFree    = 0
)

// RID identifies a record by the page and slot it occupies.
type RID struct {
	Page int
	Slot int
}

// Record is a fixed-size byte string: Data[0] is the tombstone byte and
// Data[1:] is the attribute payload laid out in schema order.
type Record struct {
	ID   RID
	Data []byte
}

// CreateRecord allocates a record buffer sized for schema, with the
// tombstone byte initialized to deleted (matching the legacy convention of
// stamping a fresh, not-yet-inserted record with '-').
func CreateRecord(schema *Schema) *Record {
	data := make([]byte, GetRecordSize(schema))
	data[0] = tombstoneDeleted
	return &Record{Data: data}
}

// FreeRecord exists to mirror the legacy API surface; Go's garbage collector
// reclaims the Record once it is no longer referenced.
func FreeRecord(*Record) {}

// Value is a tagged attribute value produced by GetAttr and consumed by
// SetAttr and by the external expression evaluator.
type Value struct {
	Type     DataType
	IntVal   int32
	FloatVal float32
	BoolVal  bool
	StrVal   string
}

// GetAttr decodes the attribute at idx out of rec according to schema.
func GetAttr(rec *Record, schema *Schema, idx int) (Value, error) {
	if idx < 0 || idx >= len(schema.Attrs) {
		return Value{}, fmt.Errorf("get attr %d: %w", idx, ErrInvalidAttributeNum)
	}
	off, err := AttrOffset(schema, idx)
	if err != nil {
		return Value{}, err
	}
	a := schema.Attrs[idx]
	switch a.Type {
	case TypeInt:
		v := int32(binary.LittleEndian.Uint32(rec.Data[off:]))
		return Value{Type: TypeInt, IntVal: v}, nil
	case TypeFloat:
		bits := binary.LittleEndian.Uint32(rec.Data[off:])
		return Value{Type: TypeFloat, FloatVal: math.Float32frombits(bits)}, nil
	case TypeBool:
		return Value{Type: TypeBool, BoolVal: rec.Data[off] != 0}, nil
	case TypeString:
		raw := rec.Data[off : off+a.TypeLength]
		s := strings.TrimRight(string(raw), "\x00")
		return Value{Type: TypeString, StrVal: s}, nil
	default:
		return Value{}, fmt.Errorf("get attr %d: %w", idx, ErrDatatypeMismatch)
	}
}

// SetAttr encodes val into the attribute at idx within rec according to
// schema, failing DatatypeMismatch if val's tag does not match the schema.
func SetAttr(rec *Record, schema *Schema, idx int, val Value) error {
	if idx < 0 || idx >= len(schema.Attrs) {
		return fmt.Errorf("set attr %d: %w", idx, ErrInvalidAttributeNum)
	}
	a := schema.Attrs[idx]
	if val.Type != a.Type {
		return fmt.Errorf("set attr %d: %w", idx, ErrDatatypeMismatch)
	}
	off, err := AttrOffset(schema, idx)
	if err != nil {
		return err
	}
	switch a.Type {
	case TypeInt:
		binary.LittleEndian.PutUint32(rec.Data[off:], uint32(val.IntVal))
	case TypeFloat:
		binary.LittleEndian.PutUint32(rec.Data[off:], math.Float32bits(val.FloatVal))
	case TypeBool:
		if val.BoolVal {
			rec.Data[off] = 1
		} else {
			rec.Data[off] = 0
		}
	case TypeString:
		dst := rec.Data[off : off+a.TypeLength]
		for i := range dst {
			dst[i] = 0
		}
		copy(dst, val.StrVal)
	}
	return nil
}
