package recordmgr

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testSchema() *Schema {
	return CreateSchema([]Attribute{
		{Name: "a", Type: TypeInt},
		{Name: "b", Type: TypeString, TypeLength: 4},
	}, 4, []int{0})
}

func openTestTable(t *testing.T) *Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "people.tbl")
	require.NoError(t, CreateTable(path, testSchema()))
	tbl, err := OpenTable(path)
	require.NoError(t, err)
	t.Cleanup(func() { CloseTable(tbl) })
	return tbl
}

func makeRecord(t *testing.T, schema *Schema, a int32, b string) *Record {
	t.Helper()
	rec := CreateRecord(schema)
	require.NoError(t, SetAttr(rec, schema, 0, Value{Type: TypeInt, IntVal: a}))
	require.NoError(t, SetAttr(rec, schema, 1, Value{Type: TypeString, StrVal: b}))
	return rec
}

type gtIntPredicate struct {
	attrIdx   int
	threshold int32
}

func (p gtIntPredicate) Eval(rec *Record, schema *Schema) (Value, error) {
	v, err := GetAttr(rec, schema, p.attrIdx)
	if err != nil {
		return Value{}, err
	}
	return Value{Type: TypeBool, BoolVal: v.IntVal > p.threshold}, nil
}

func TestInsertThenGetRoundTrip(t *testing.T) {
	tbl := openTestTable(t)
	rec := makeRecord(t, tbl.Schema, 42, "aaaa")
	require.NoError(t, tbl.InsertRecord(rec))

	got, err := tbl.GetRecord(rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec.Data[1:], got.Data[1:])
}

func TestUpdateRecordIdempotent(t *testing.T) {
	tbl := openTestTable(t)
	rec := makeRecord(t, tbl.Schema, 1, "aaaa")
	require.NoError(t, tbl.InsertRecord(rec))

	updated := makeRecord(t, tbl.Schema, 2, "bbbb")
	updated.ID = rec.ID

	require.NoError(t, tbl.UpdateRecord(updated))
	first, err := tbl.GetRecord(rec.ID)
	require.NoError(t, err)

	require.NoError(t, tbl.UpdateRecord(updated))
	second, err := tbl.GetRecord(rec.ID)
	require.NoError(t, err)

	require.Equal(t, first.Data, second.Data)
}

func TestGetRecordAfterDeleteFails(t *testing.T) {
	tbl := openTestTable(t)
	rec := makeRecord(t, tbl.Schema, 1, "aaaa")
	require.NoError(t, tbl.InsertRecord(rec))
	require.NoError(t, tbl.DeleteRecord(rec.ID))

	_, err := tbl.GetRecord(rec.ID)
	require.ErrorIs(t, err, ErrNoTupleWithGivenRID)
}

func TestDeleteThenInsertReusesSlot(t *testing.T) {
	tbl := openTestTable(t)
	r0 := makeRecord(t, tbl.Schema, 0, "r0")
	r1 := makeRecord(t, tbl.Schema, 1, "r1")
	r2 := makeRecord(t, tbl.Schema, 2, "r2")
	require.NoError(t, tbl.InsertRecord(r0))
	require.NoError(t, tbl.InsertRecord(r1))
	require.NoError(t, tbl.InsertRecord(r2))

	require.NoError(t, tbl.DeleteRecord(r1.ID))

	r3 := makeRecord(t, tbl.Schema, 3, "r3")
	require.NoError(t, tbl.InsertRecord(r3))

	require.Equal(t, r1.ID, r3.ID)
}

func TestInsertThenScan(t *testing.T) {
	tbl := openTestTable(t)
	r0 := makeRecord(t, tbl.Schema, 1, "aaaa")
	r1 := makeRecord(t, tbl.Schema, 2, "bbbb")
	r2 := makeRecord(t, tbl.Schema, 3, "cccc")
	require.NoError(t, tbl.InsertRecord(r0))
	require.NoError(t, tbl.InsertRecord(r1))
	require.NoError(t, tbl.InsertRecord(r2))

	scan, err := StartScan(tbl, gtIntPredicate{attrIdx: 0, threshold: 1})
	require.NoError(t, err)

	first, err := scan.Next()
	require.NoError(t, err)
	v, err := GetAttr(first, tbl.Schema, 0)
	require.NoError(t, err)
	require.EqualValues(t, 2, v.IntVal)

	second, err := scan.Next()
	require.NoError(t, err)
	v, err = GetAttr(second, tbl.Schema, 0)
	require.NoError(t, err)
	require.EqualValues(t, 3, v.IntVal)

	_, err = scan.Next()
	require.ErrorIs(t, err, ErrNoMoreTuples)

	require.NoError(t, CloseScan(scan))
}

func TestStartScanNilConditionFails(t *testing.T) {
	tbl := openTestTable(t)
	_, err := StartScan(tbl, nil)
	require.ErrorIs(t, err, ErrScanConditionNotFound)
}
