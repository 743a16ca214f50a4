package recordmgr

// scanSentinel is the tombstone byte the legacy expression evaluator
// expects on every candidate row it is handed, live or not.
const scanSentinel = tombstoneDeleted

// Scan holds the state of an in-progress sequential scan over a table.
type Scan struct {
	table     *Table
	cond      Expr
	page      int
	slot      int
	started   bool
	scanCount int
}

// StartScan begins a predicate-driven sequential scan of t starting at
// page 1, slot 0.
func StartScan(t *Table, cond Expr) (*Scan, error) {
	if cond == nil {
		return nil, ErrScanConditionNotFound
	}
	return &Scan{table: t, cond: cond, page: 1, slot: 0}, nil
}

// Next advances the scan to the next record satisfying the scan's
// predicate. It skips slots whose tombstone byte is not live — a strict
// improvement over the legacy behavior, which relies on deleted rows
// evaluating false against garbage attribute bytes instead of skipping them
// outright. Returns ErrNoMoreTuples, resetting the scan, once scanCount (the
// number of live rows examined) reaches the table's tuple count or the scan
// moves past the file's last page.
func (s *Scan) Next() (*Record, error) {
	slotsPerPage := s.table.slotsPerPage()

	for {
		if s.started {
			s.slot++
			if s.slot >= slotsPerPage {
				s.slot = 0
				s.page++
			}
		}
		s.started = true

		if s.scanCount >= s.table.TuplesCount || s.page >= s.table.file.TotalNumPages {
			s.reset()
			return nil, ErrNoMoreTuples
		}

		ph, err := s.table.Pool.PinPage(s.page)
		if err != nil {
			return nil, err
		}
		off := s.slot * s.table.recordSize
		live := ph.Data[off] == tombstoneLive

		if !live {
			if err := s.table.Pool.UnpinPage(ph); err != nil {
				return nil, err
			}
			continue
		}

		data := make([]byte, s.table.recordSize)
		copy(data, ph.Data[off:off+s.table.recordSize])
		data[0] = scanSentinel

		rec := &Record{ID: RID{Page: s.page, Slot: s.slot}, Data: data}
		ok, err := s.cond.Eval(rec, s.table.Schema)
		if err != nil {
			s.table.Pool.UnpinPage(ph)
			return nil, err
		}
		s.scanCount++

		if err := s.table.Pool.UnpinPage(ph); err != nil {
			return nil, err
		}
		if ok.Type == TypeBool && ok.BoolVal {
			rec.ID = RID{Page: s.page, Slot: s.slot}
			rec.Data[0] = tombstoneLive
			return rec, nil
		}
	}
}

func (s *Scan) reset() {
	s.page = 1
	s.slot = 0
	s.started = false
	s.scanCount = 0
}

// CloseScan resets the scan's state. No page remains pinned across or after
// a Next call, so there is nothing to unpin here.
func CloseScan(s *Scan) error {
	s.reset()
	return nil
}
