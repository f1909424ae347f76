// Copyright 2022 The OpenDDAL Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package result

import (
	"context"
	"fmt"

	"github.com/axiomhq/hyperloglog"

	"github.com/wuce7758/openddal/pkg/common/dberr"
	"github.com/wuce7758/openddal/pkg/container/value"
)

// LocalResult accumulates rows in memory, finalizes them once with
// Done and then serves them through a forward cursor. Rows may carry
// more cells than the visible column count; the extra cells are sort
// keys and are never part of the distinct identity.
type LocalResult struct {
	ses                Session
	expressions        []Expression
	visibleColumnCount int

	maxMemoryRows int
	offset        int
	limit         int
	sorter        Sorter

	distinct bool
	index    *distinctIndex

	rows     []value.Row
	rowCount int

	rowId      int
	currentRow value.Row

	done       bool
	closed     bool
	frozen     bool
	overflowed bool

	randomAccess bool
	fetchSize    int

	packer *value.Packer
	sketch *hyperloglog.Sketch
}

var _ Target = (*LocalResult)(nil)
var _ Result = (*LocalResult)(nil)

// NewLocalResult opens an empty buffer for the given output columns.
// visibleColumnCount is how many leading cells of each row the client
// sees; ses may be nil for an unbounded buffer without lob staging.
func NewLocalResult(ses Session, expressions []Expression, visibleColumnCount int) *LocalResult {
	r := &LocalResult{
		ses:                ses,
		expressions:        expressions,
		visibleColumnCount: visibleColumnCount,
		limit:              -1,
		rowId:              -1,
		rows:               make([]value.Row, 0),
		packer:             value.NewPacker(),
	}
	if ses != nil {
		r.maxMemoryRows = ses.MaxMemoryRows()
		r.fetchSize = ses.FetchSize()
	}
	return r
}

// SetSortOrder installs the sorter Done will run. Must be called
// before the first AddRow to sort everything that arrives.
func (r *LocalResult) SetSortOrder(sorter Sorter) {
	r.sorter = sorter
}

// SetDistinct switches the buffer to distinct mode. Must be called
// before the first AddRow.
func (r *LocalResult) SetDistinct() {
	r.distinct = true
	r.index = newDistinctIndex()
}

// SetOffset sets the number of leading rows Done drops. Negative
// offsets mean zero.
func (r *LocalResult) SetOffset(offset int) {
	if offset < 0 {
		offset = 0
	}
	r.offset = offset
}

// SetLimit caps the row count after the offset. Negative means no
// limit, zero means an empty result.
func (r *LocalResult) SetLimit(limit int) {
	r.limit = limit
}

// SetMaxMemoryRows overrides the session budget. Zero or negative
// disables the cap.
func (r *LocalResult) SetMaxMemoryRows(n int) {
	r.maxMemoryRows = n
}

// SetRandomAccess marks the buffer as one the client will scroll
// through; the flag travels with shallow copies.
func (r *LocalResult) SetRandomAccess() {
	r.randomAccess = true
}

func (r *LocalResult) RandomAccess() bool {
	return r.randomAccess
}

// SetStatsEnabled attaches a cardinality sketch fed by every accepted
// row's distinct key.
func (r *LocalResult) SetStatsEnabled() {
	if r.sketch == nil {
		r.sketch = hyperloglog.New14()
	}
}

// ApproxDistinctCount estimates how many distinct visible projections
// were added. Zero when stats were never enabled.
func (r *LocalResult) ApproxDistinctCount() uint64 {
	if r.sketch == nil {
		return 0
	}
	return r.sketch.Estimate()
}

// packKey builds the order-preserving byte key of the first n cells.
// Two rows produce the same key exactly when the cells compare equal.
func (r *LocalResult) packKey(row value.Row, n int) string {
	r.packer.Reset()
	r.packer.PackRowPrefix(row, n)
	return string(r.packer.Bytes())
}

func (r *LocalResult) writable(ctx context.Context) error {
	if r.closed {
		return dberr.NewInvalidState(ctx, "result buffer is closed")
	}
	if r.frozen {
		return dberr.NewInvalidState(ctx, "result buffer is shared by a shallow copy")
	}
	if r.done {
		return dberr.NewInvalidState(ctx, "result buffer is finalized")
	}
	if r.overflowed {
		return dberr.NewResultTooLarge(ctx, r.maxMemoryRows)
	}
	return nil
}

func (r *LocalResult) exceedsBudget(wouldBe int) bool {
	return r.maxMemoryRows > 0 && wouldBe > r.maxMemoryRows
}

// stageLobs hands oversized lob cells to the session and swaps in the
// returned handles. Reports whether a visible cell changed from
// inline to stored, which invalidates a key packed beforehand.
func (r *LocalResult) stageLobs(ctx context.Context, row value.Row) (bool, error) {
	if r.ses == nil {
		return false, nil
	}
	rekeyed := false
	for i, cell := range row {
		lob, ok := cell.(value.Lob)
		if !ok {
			continue
		}
		staged, err := r.ses.StageLob(ctx, &lob)
		if err != nil {
			return false, err
		}
		row[i] = *staged
		if staged.Stored && !lob.Stored && i < r.visibleColumnCount {
			rekeyed = true
		}
	}
	return rekeyed, nil
}

// AddRow appends one row. In distinct mode a duplicate visible
// projection replaces the previous row in place. When accepting the
// row would push the buffer past its budget the row is rejected
// without side effects and the buffer becomes unusable.
func (r *LocalResult) AddRow(ctx context.Context, row value.Row) error {
	if err := r.writable(ctx); err != nil {
		return err
	}
	var key string
	if r.distinct {
		// The budget guard must run before lob staging: a rejected
		// row may not leave stored lobs behind. Keys packed from raw
		// lob bytes never collide with keys packed from handles, and
		// a row whose lobs are about to be staged cannot already be
		// in the index, so probing with the pre-staging key is exact.
		key = r.packKey(row, r.visibleColumnCount)
		if !r.index.contains(key) && r.exceedsBudget(r.index.size()+1) {
			r.overflowed = true
			return dberr.NewResultTooLarge(ctx, r.maxMemoryRows)
		}
	} else if r.exceedsBudget(r.rowCount + 1) {
		r.overflowed = true
		return dberr.NewResultTooLarge(ctx, r.maxMemoryRows)
	}
	rekeyed, err := r.stageLobs(ctx, row)
	if err != nil {
		return err
	}
	if r.distinct {
		if rekeyed {
			key = r.packKey(row, r.visibleColumnCount)
		}
		r.index.insert(key, row)
		r.rowCount = r.index.size()
	} else {
		r.rows = append(r.rows, row)
		r.rowCount++
	}
	if r.sketch != nil {
		if !r.distinct {
			key = r.packKey(row, r.visibleColumnCount)
		}
		r.sketch.Insert([]byte(key))
	}
	return nil
}

// RemoveDistinct deletes the row whose visible projection equals the
// given values. Only valid on a distinct buffer before Done.
func (r *LocalResult) RemoveDistinct(ctx context.Context, values value.Row) error {
	if !r.distinct {
		return dberr.NewInvalidState(ctx, "result buffer is not distinct")
	}
	if err := r.writable(ctx); err != nil {
		return err
	}
	key := r.packKey(values, len(values))
	r.index.remove(key)
	r.rowCount = r.index.size()
	return nil
}

// ContainsDistinct reports whether a row with the given visible
// projection was added. On a non-distinct buffer the first call
// builds a lookup index over the rows seen so far; rows added later
// are not visible to it.
func (r *LocalResult) ContainsDistinct(ctx context.Context, values value.Row) (bool, error) {
	if r.closed {
		return false, dberr.NewInvalidState(ctx, "result buffer is closed")
	}
	index := r.index
	if index == nil {
		index = newDistinctIndex()
		for _, row := range r.rows {
			index.insert(r.packKey(row, r.visibleColumnCount), row[:r.visibleColumnCount])
		}
		r.index = index
	}
	return index.contains(r.packKey(values, len(values))), nil
}

// Done finalizes the buffer: materializes distinct rows in insertion
// order, sorts, applies offset and limit and rewinds the cursor.
// Calling it again is a no-op.
func (r *LocalResult) Done() {
	if r.done {
		return
	}
	r.done = true
	if r.distinct {
		r.rows = r.index.materialize()
	}
	if r.sorter != nil {
		if r.offset > 0 || r.limit > 0 {
			limit := r.limit
			if limit < 0 {
				limit = len(r.rows)
			}
			r.sorter.SortWindow(r.rows, r.offset, limit)
		} else {
			r.sorter.Sort(r.rows)
		}
	}
	if r.offset > 0 {
		if r.offset >= len(r.rows) {
			r.rows = r.rows[:0]
		} else {
			r.rows = r.rows[r.offset:]
		}
	}
	if r.limit >= 0 && r.limit < len(r.rows) {
		r.rows = r.rows[:r.limit]
	}
	r.rowCount = len(r.rows)
	r.Reset()
}

// Reset rewinds the cursor to before the first row.
func (r *LocalResult) Reset() {
	r.rowId = -1
	r.currentRow = nil
}

// Next advances to the next row. Once it returns false it keeps
// returning false until Reset.
func (r *LocalResult) Next() bool {
	if r.closed || r.rowId >= r.rowCount {
		return false
	}
	r.rowId++
	if r.rowId < r.rowCount {
		r.currentRow = r.rows[r.rowId]
		return true
	}
	r.currentRow = nil
	return false
}

func (r *LocalResult) CurrentRow() value.Row {
	return r.currentRow
}

func (r *LocalResult) RowId() int {
	return r.rowId
}

func (r *LocalResult) RowCount() int {
	return r.rowCount
}

func (r *LocalResult) VisibleColumnCount() int {
	return r.visibleColumnCount
}

// Close ends iteration. Metadata stays readable and shallow copies
// keep scanning their shared rows; stored lobs belong to the session
// and outlive the buffer.
func (r *LocalResult) Close() {
	r.closed = true
}

func (r *LocalResult) Closed() bool {
	return r.closed
}

// NeedsClose reports whether skipping Close leaks anything. Memory
// buffers hold no external resources.
func (r *LocalResult) NeedsClose() bool {
	return false
}

func (r *LocalResult) FetchSize() int {
	return r.fetchSize
}

func (r *LocalResult) SetFetchSize(n int) {
	r.fetchSize = n
}

// CreateShallowCopy hands the finalized rows to another session. The
// copy shares the row storage, so both the source and the copy refuse
// further writes. Returns nil when the rows are not materialized.
func (r *LocalResult) CreateShallowCopy(ses Session) *LocalResult {
	if r.rows == nil || len(r.rows) < r.rowCount {
		return nil
	}
	r.frozen = true
	cp := &LocalResult{
		ses:                ses,
		expressions:        r.expressions,
		visibleColumnCount: r.visibleColumnCount,
		limit:              -1,
		sorter:             r.sorter,
		distinct:           r.distinct,
		index:              r.index,
		rows:               r.rows,
		rowCount:           r.rowCount,
		rowId:              -1,
		done:               r.done,
		frozen:             true,
		randomAccess:       r.randomAccess,
		packer:             value.NewPacker(),
	}
	if ses != nil {
		cp.maxMemoryRows = ses.MaxMemoryRows()
		cp.fetchSize = ses.FetchSize()
	}
	return cp
}

func (r *LocalResult) ColumnAlias(i int) string {
	return r.expressions[i].Alias()
}

func (r *LocalResult) TableName(i int) string {
	return r.expressions[i].TableName()
}

func (r *LocalResult) SchemaName(i int) string {
	return r.expressions[i].SchemaName()
}

func (r *LocalResult) ColumnName(i int) string {
	return r.expressions[i].ColumnName()
}

func (r *LocalResult) ColumnType(i int) value.T {
	return r.expressions[i].Type()
}

func (r *LocalResult) DisplaySize(i int) int {
	return r.expressions[i].DisplaySize()
}

func (r *LocalResult) Precision(i int) int64 {
	return r.expressions[i].Precision()
}

func (r *LocalResult) Scale(i int) int {
	return r.expressions[i].Scale()
}

func (r *LocalResult) Nullable(i int) bool {
	return r.expressions[i].Nullable()
}

func (r *LocalResult) AutoIncrement(i int) bool {
	return r.expressions[i].AutoIncrement()
}

func (r *LocalResult) String() string {
	return fmt.Sprintf("columns: %d rows: %d pos: %d",
		r.visibleColumnCount, r.rowCount, r.rowId)
}
