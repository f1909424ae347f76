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
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wuce7758/openddal/pkg/common/dberr"
	"github.com/wuce7758/openddal/pkg/container/value"
	"github.com/wuce7758/openddal/pkg/sort"
)

type stubSession struct {
	maxMemoryRows int
	fetchSize     int
	inlineLimit   int64
	nextLobID     uint64
	staged        map[uint64][]byte
	stageErr      error
}

func (s *stubSession) MaxMemoryRows() int { return s.maxMemoryRows }
func (s *stubSession) FetchSize() int     { return s.fetchSize }

func (s *stubSession) StageLob(ctx context.Context, lob *value.Lob) (*value.Lob, error) {
	if s.stageErr != nil {
		return nil, s.stageErr
	}
	if lob.Stored {
		return lob, nil
	}
	size := int64(len(lob.Data))
	if size <= s.inlineLimit {
		return &value.Lob{Data: append([]byte(nil), lob.Data...), Size: size}, nil
	}
	if s.staged == nil {
		s.staged = make(map[uint64][]byte)
	}
	s.nextLobID++
	s.staged[s.nextLobID] = append([]byte(nil), lob.Data...)
	return &value.Lob{ID: s.nextLobID, Size: size, Stored: true}, nil
}

type column struct {
	name string
	typ  value.T
}

func (c column) Alias() string       { return c.name }
func (c column) TableName() string   { return "t1" }
func (c column) SchemaName() string  { return "db1" }
func (c column) ColumnName() string  { return c.name }
func (c column) Type() value.T       { return c.typ }
func (c column) DisplaySize() int    { return 20 }
func (c column) Precision() int64    { return 20 }
func (c column) Scale() int          { return 0 }
func (c column) Nullable() bool      { return true }
func (c column) AutoIncrement() bool { return false }

func intColumns(n int) []Expression {
	out := make([]Expression, n)
	for i := range out {
		out[i] = column{name: fmt.Sprintf("c%d", i), typ: value.T_int64}
	}
	return out
}

func intRow(vs ...int64) value.Row {
	row := make(value.Row, len(vs))
	for i, v := range vs {
		row[i] = value.Int64(v)
	}
	return row
}

func addAll(t *testing.T, r *LocalResult, rows ...value.Row) {
	t.Helper()
	for _, row := range rows {
		require.NoError(t, r.AddRow(context.TODO(), row))
	}
}

func scanInts(t *testing.T, r *LocalResult) []int64 {
	t.Helper()
	var out []int64
	for r.Next() {
		out = append(out, int64(r.CurrentRow()[0].(value.Int64)))
	}
	return out
}

func TestAddRowAndScan(t *testing.T) {
	r := NewLocalResult(nil, intColumns(1), 1)
	addAll(t, r, intRow(10), intRow(20), intRow(30))
	require.Equal(t, 3, r.RowCount())
	r.Done()

	require.Equal(t, -1, r.RowId())
	require.Nil(t, r.CurrentRow())

	require.True(t, r.Next())
	require.Equal(t, 0, r.RowId())
	require.Equal(t, value.Int64(10), r.CurrentRow()[0])
	require.True(t, r.Next())
	require.True(t, r.Next())
	require.Equal(t, value.Int64(30), r.CurrentRow()[0])

	// one false past the end, then false forever
	require.False(t, r.Next())
	require.Nil(t, r.CurrentRow())
	require.Equal(t, 3, r.RowId())
	require.False(t, r.Next())
	require.Equal(t, 3, r.RowId())

	r.Reset()
	require.Equal(t, []int64{10, 20, 30}, scanInts(t, r))
}

func TestDoneIdempotent(t *testing.T) {
	r := NewLocalResult(nil, intColumns(1), 1)
	addAll(t, r, intRow(2), intRow(1))
	r.SetOffset(1)
	r.Done()
	require.Equal(t, 1, r.RowCount())
	r.Done()
	require.Equal(t, 1, r.RowCount())

	err := r.AddRow(context.TODO(), intRow(3))
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrInvalidState))
}

func TestSortOrder(t *testing.T) {
	asc, err := sort.New([]int{0}, []int{0})
	require.NoError(t, err)
	r := NewLocalResult(nil, intColumns(1), 1)
	r.SetSortOrder(asc)
	addAll(t, r, intRow(3), intRow(1), intRow(2))
	r.Done()
	require.Equal(t, []int64{1, 2, 3}, scanInts(t, r))

	desc, err := sort.New([]int{0}, []int{sort.Descending})
	require.NoError(t, err)
	r = NewLocalResult(nil, intColumns(1), 1)
	r.SetSortOrder(desc)
	addAll(t, r, intRow(3), intRow(1), intRow(2))
	r.Done()
	require.Equal(t, []int64{3, 2, 1}, scanInts(t, r))
}

func TestSortByInvisibleColumn(t *testing.T) {
	// one visible column, the second cell is only a sort key
	ord, err := sort.New([]int{1}, []int{sort.Descending})
	require.NoError(t, err)
	r := NewLocalResult(nil, intColumns(1), 1)
	r.SetSortOrder(ord)
	addAll(t, r, intRow(10, 1), intRow(20, 3), intRow(30, 2))
	r.Done()

	require.Equal(t, 1, r.VisibleColumnCount())
	require.Equal(t, []int64{20, 30, 10}, scanInts(t, r))
	r.Reset()
	require.True(t, r.Next())
	require.Len(t, r.CurrentRow(), 2)
}

func TestOffsetAndLimit(t *testing.T) {
	cases := []struct {
		name   string
		offset int
		limit  int
		want   []int64
	}{
		{"all", 0, -1, []int64{1, 2, 3, 4, 5}},
		{"offsetOnly", 2, -1, []int64{3, 4, 5}},
		{"window", 1, 2, []int64{2, 3}},
		{"limitZero", 0, 0, nil},
		{"offsetPastEnd", 9, -1, nil},
		{"limitPastEnd", 0, 99, []int64{1, 2, 3, 4, 5}},
		{"negativeOffset", -3, -1, []int64{1, 2, 3, 4, 5}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ord, err := sort.New([]int{0}, []int{0})
			require.NoError(t, err)
			r := NewLocalResult(nil, intColumns(1), 1)
			r.SetSortOrder(ord)
			r.SetOffset(c.offset)
			r.SetLimit(c.limit)
			addAll(t, r, intRow(3), intRow(1), intRow(2), intRow(5), intRow(4))
			r.Done()
			require.Equal(t, len(c.want), r.RowCount())
			require.Equal(t, c.want, scanInts(t, r))
		})
	}
}

func TestOffsetLimitWithoutSort(t *testing.T) {
	r := NewLocalResult(nil, intColumns(1), 1)
	r.SetOffset(1)
	r.SetLimit(2)
	addAll(t, r, intRow(3), intRow(1), intRow(2), intRow(5))
	r.Done()
	require.Equal(t, []int64{1, 2}, scanInts(t, r))
}

func TestDistinct(t *testing.T) {
	r := NewLocalResult(nil, intColumns(1), 1)
	r.SetDistinct()
	addAll(t, r, intRow(1), intRow(2), intRow(1), intRow(3), intRow(2))
	require.Equal(t, 3, r.RowCount())
	r.Done()
	require.Equal(t, []int64{1, 2, 3}, scanInts(t, r))
}

func TestDistinctKeepsSlotTakesLastRow(t *testing.T) {
	// the duplicate keeps the position of the first arrival but
	// carries the cells of the last one
	r := NewLocalResult(nil, intColumns(1), 1)
	r.SetDistinct()
	addAll(t, r, intRow(1, 100), intRow(2, 200), intRow(1, 300))
	require.Equal(t, 2, r.RowCount())
	r.Done()

	require.True(t, r.Next())
	require.Equal(t, value.Row{value.Int64(1), value.Int64(300)}, r.CurrentRow())
	require.True(t, r.Next())
	require.Equal(t, value.Row{value.Int64(2), value.Int64(200)}, r.CurrentRow())
}

func TestDistinctIdentityIsVisibleProjection(t *testing.T) {
	// two visible cells, third cell invisible: rows that differ only
	// in the invisible cell are duplicates
	r := NewLocalResult(nil, intColumns(2), 2)
	r.SetDistinct()
	addAll(t, r, intRow(1, 2, 7), intRow(1, 2, 8), intRow(1, 3, 7))
	require.Equal(t, 2, r.RowCount())
}

func TestRemoveDistinct(t *testing.T) {
	ctx := context.TODO()
	r := NewLocalResult(nil, intColumns(1), 1)
	r.SetDistinct()
	addAll(t, r, intRow(1), intRow(2), intRow(3))

	require.NoError(t, r.RemoveDistinct(ctx, intRow(2)))
	require.Equal(t, 2, r.RowCount())

	// removing an absent key is a no-op
	require.NoError(t, r.RemoveDistinct(ctx, intRow(9)))
	require.Equal(t, 2, r.RowCount())

	r.Done()
	require.Equal(t, []int64{1, 3}, scanInts(t, r))
}

func TestRemoveDistinctStateErrors(t *testing.T) {
	ctx := context.TODO()
	r := NewLocalResult(nil, intColumns(1), 1)
	err := r.RemoveDistinct(ctx, intRow(1))
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrInvalidState))

	r = NewLocalResult(nil, intColumns(1), 1)
	r.SetDistinct()
	addAll(t, r, intRow(1))
	r.Done()
	err = r.RemoveDistinct(ctx, intRow(1))
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrInvalidState))
}

func TestContainsDistinct(t *testing.T) {
	ctx := context.TODO()
	r := NewLocalResult(nil, intColumns(1), 1)
	r.SetDistinct()
	addAll(t, r, intRow(1), intRow(2))

	ok, err := r.ContainsDistinct(ctx, intRow(1))
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = r.ContainsDistinct(ctx, intRow(9))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestContainsDistinctLazyIndex(t *testing.T) {
	ctx := context.TODO()
	r := NewLocalResult(nil, intColumns(1), 1)
	addAll(t, r, intRow(1, 7), intRow(2, 8), intRow(1, 9))
	require.Equal(t, 3, r.RowCount())

	ok, err := r.ContainsDistinct(ctx, intRow(1))
	require.NoError(t, err)
	require.True(t, ok)

	// probing does not turn the buffer distinct
	addAll(t, r, intRow(1, 10))
	require.Equal(t, 4, r.RowCount())

	// the index is built once; later rows are invisible to it
	ok, err = r.ContainsDistinct(ctx, intRow(3))
	require.NoError(t, err)
	require.False(t, ok)
	addAll(t, r, intRow(3, 11))
	ok, err = r.ContainsDistinct(ctx, intRow(3))
	require.NoError(t, err)
	require.False(t, ok)

	r.Close()
	_, err = r.ContainsDistinct(ctx, intRow(1))
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrInvalidState))
}

func TestMaxMemoryRowsOverflow(t *testing.T) {
	ctx := context.TODO()
	r := NewLocalResult(nil, intColumns(1), 1)
	r.SetMaxMemoryRows(2)
	addAll(t, r, intRow(1), intRow(2))

	err := r.AddRow(ctx, intRow(3))
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrResultTooLarge))
	require.Equal(t, 2, r.RowCount())

	// the buffer is unusable from here on
	err = r.AddRow(ctx, intRow(4))
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrResultTooLarge))
	err = r.AddRow(ctx, intRow(1))
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrResultTooLarge))
}

func TestMaxMemoryRowsDistinctCountsUniqueRows(t *testing.T) {
	ctx := context.TODO()
	r := NewLocalResult(nil, intColumns(1), 1)
	r.SetDistinct()
	r.SetMaxMemoryRows(2)

	// duplicates never move the budget
	addAll(t, r, intRow(1), intRow(2), intRow(1), intRow(2), intRow(1))
	require.Equal(t, 2, r.RowCount())

	err := r.AddRow(ctx, intRow(3))
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrResultTooLarge))
	require.Equal(t, 2, r.RowCount())
}

func TestSessionBudgetApplies(t *testing.T) {
	ses := &stubSession{maxMemoryRows: 1, fetchSize: 64}
	r := NewLocalResult(ses, intColumns(1), 1)
	require.Equal(t, 64, r.FetchSize())
	addAll(t, r, intRow(1))
	err := r.AddRow(context.TODO(), intRow(2))
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrResultTooLarge))

	r.SetFetchSize(128)
	require.Equal(t, 128, r.FetchSize())
}

func TestLobStagingInline(t *testing.T) {
	ses := &stubSession{inlineLimit: 8}
	r := NewLocalResult(ses, []Expression{column{name: "b", typ: value.T_lob}}, 1)
	addAll(t, r, value.Row{value.Lob{Data: []byte("tiny"), Size: 4}})
	r.Done()

	require.True(t, r.Next())
	lob := r.CurrentRow()[0].(value.Lob)
	require.False(t, lob.Stored)
	require.Equal(t, []byte("tiny"), lob.Data)
	require.Empty(t, ses.staged)
}

func TestLobStagingStored(t *testing.T) {
	ses := &stubSession{inlineLimit: 8}
	r := NewLocalResult(ses, []Expression{column{name: "b", typ: value.T_lob}}, 1)
	data := bytes.Repeat([]byte("x"), 100)
	addAll(t, r, value.Row{value.Lob{Data: data, Size: int64(len(data))}})
	r.Done()

	require.True(t, r.Next())
	lob := r.CurrentRow()[0].(value.Lob)
	require.True(t, lob.Stored)
	require.Equal(t, int64(100), lob.Size)
	require.Equal(t, data, ses.staged[lob.ID])
}

func TestLobDistinctIdentity(t *testing.T) {
	// small lobs stay inline and deduplicate by content; staged lobs
	// get a fresh id on every arrival and so never collide
	ses := &stubSession{inlineLimit: 8}
	r := NewLocalResult(ses, []Expression{column{name: "b", typ: value.T_lob}}, 1)
	r.SetDistinct()

	addAll(t, r,
		value.Row{value.Lob{Data: []byte("tiny"), Size: 4}},
		value.Row{value.Lob{Data: []byte("tiny"), Size: 4}})
	require.Equal(t, 1, r.RowCount())

	big := bytes.Repeat([]byte("y"), 100)
	addAll(t, r,
		value.Row{value.Lob{Data: big, Size: int64(len(big))}},
		value.Row{value.Lob{Data: big, Size: int64(len(big))}})
	require.Equal(t, 3, r.RowCount())
	require.Len(t, ses.staged, 2)
}

func TestLobOverflowStagesNothing(t *testing.T) {
	ctx := context.TODO()
	ses := &stubSession{inlineLimit: 8, maxMemoryRows: 1}
	r := NewLocalResult(ses, []Expression{column{name: "b", typ: value.T_lob}}, 1)
	r.SetDistinct()

	big := bytes.Repeat([]byte("z"), 100)
	addAll(t, r, value.Row{value.Lob{Data: big, Size: int64(len(big))}})
	require.Len(t, ses.staged, 1)

	other := bytes.Repeat([]byte("w"), 100)
	err := r.AddRow(ctx, value.Row{value.Lob{Data: other, Size: int64(len(other))}})
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrResultTooLarge))
	require.Len(t, ses.staged, 1)
}

func TestLobStagingFailure(t *testing.T) {
	ctx := context.TODO()
	ses := &stubSession{inlineLimit: 8}
	r := NewLocalResult(ses, []Expression{column{name: "b", typ: value.T_lob}}, 1)

	ses.stageErr = dberr.NewInvalidState(ctx, "lob store is closed")
	err := r.AddRow(ctx, value.Row{value.Lob{Data: []byte("tiny"), Size: 4}})
	require.Error(t, err)
	require.Equal(t, 0, r.RowCount())

	// a staging failure does not poison the buffer
	ses.stageErr = nil
	addAll(t, r, value.Row{value.Lob{Data: []byte("tiny"), Size: 4}})
	require.Equal(t, 1, r.RowCount())
}

func TestShallowCopy(t *testing.T) {
	ctx := context.TODO()
	src := NewLocalResult(&stubSession{fetchSize: 10}, intColumns(1), 1)
	addAll(t, src, intRow(1), intRow(2), intRow(3))
	src.Done()
	require.True(t, src.Next())

	cp := src.CreateShallowCopy(&stubSession{fetchSize: 20})
	require.NotNil(t, cp)
	require.Equal(t, 3, cp.RowCount())
	require.Equal(t, 20, cp.FetchSize())
	require.Equal(t, -1, cp.RowId())
	require.Equal(t, []int64{1, 2, 3}, scanInts(t, cp))

	// both sides refuse writes now
	err := src.AddRow(ctx, intRow(4))
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrInvalidState))
	err = cp.AddRow(ctx, intRow(4))
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrInvalidState))

	// closing one side leaves the other readable
	cp.Close()
	require.False(t, cp.Next())
	require.True(t, src.Next())
	require.Equal(t, value.Int64(2), src.CurrentRow()[0])
}

func TestShallowCopyEmptyResult(t *testing.T) {
	src := NewLocalResult(nil, intColumns(1), 1)
	src.Done()
	cp := src.CreateShallowCopy(nil)
	require.NotNil(t, cp)
	require.Equal(t, 0, cp.RowCount())
	require.False(t, cp.Next())
}

func TestShallowCopyDistinctBeforeDone(t *testing.T) {
	src := NewLocalResult(nil, intColumns(1), 1)
	src.SetDistinct()
	addAll(t, src, intRow(1))

	// distinct rows live in the index until Done materializes them
	require.Nil(t, src.CreateShallowCopy(nil))
	require.NoError(t, src.AddRow(context.TODO(), intRow(2)))

	src.Done()
	cp := src.CreateShallowCopy(nil)
	require.NotNil(t, cp)
	require.Equal(t, []int64{1, 2}, scanInts(t, cp))
}

func TestCloseEndsIteration(t *testing.T) {
	r := NewLocalResult(nil, intColumns(1), 1)
	addAll(t, r, intRow(1), intRow(2))
	r.Done()
	require.True(t, r.Next())

	r.Close()
	require.True(t, r.Closed())
	require.False(t, r.Next())

	// metadata survives close
	require.Equal(t, 2, r.RowCount())
	require.Equal(t, "c0", r.ColumnAlias(0))

	err := r.AddRow(context.TODO(), intRow(3))
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrInvalidState))
}

func TestNeedsClose(t *testing.T) {
	r := NewLocalResult(nil, intColumns(1), 1)
	require.False(t, r.NeedsClose())
}

func TestRandomAccessFlag(t *testing.T) {
	r := NewLocalResult(nil, intColumns(1), 1)
	require.False(t, r.RandomAccess())
	r.SetRandomAccess()
	require.True(t, r.RandomAccess())
	addAll(t, r, intRow(1))
	r.Done()
	cp := r.CreateShallowCopy(nil)
	require.NotNil(t, cp)
	require.True(t, cp.RandomAccess())
}

func TestApproxDistinctCount(t *testing.T) {
	r := NewLocalResult(nil, intColumns(1), 1)
	require.Zero(t, r.ApproxDistinctCount())

	r.SetStatsEnabled()
	for i := 0; i < 1000; i++ {
		addAll(t, r, intRow(int64(i%500)))
	}
	require.Equal(t, 1000, r.RowCount())

	got := float64(r.ApproxDistinctCount())
	require.InDelta(t, 500, got, 500*0.02)
}

func TestApproxDistinctCountDistinctMode(t *testing.T) {
	r := NewLocalResult(nil, intColumns(1), 1)
	r.SetDistinct()
	r.SetStatsEnabled()
	for i := 0; i < 300; i++ {
		addAll(t, r, intRow(int64(i)), intRow(int64(i)))
	}
	require.Equal(t, 300, r.RowCount())
	got := float64(r.ApproxDistinctCount())
	require.InDelta(t, 300, got, 300*0.02)
}

func TestMetadata(t *testing.T) {
	exprs := []Expression{
		column{name: "id", typ: value.T_int64},
		column{name: "name", typ: value.T_varchar},
	}
	r := NewLocalResult(nil, exprs, 2)
	require.Equal(t, "id", r.ColumnAlias(0))
	require.Equal(t, "name", r.ColumnName(1))
	require.Equal(t, "t1", r.TableName(0))
	require.Equal(t, "db1", r.SchemaName(0))
	require.Equal(t, value.T_varchar, r.ColumnType(1))
	require.Equal(t, 20, r.DisplaySize(0))
	require.Equal(t, int64(20), r.Precision(0))
	require.Equal(t, 0, r.Scale(0))
	require.True(t, r.Nullable(0))
	require.False(t, r.AutoIncrement(0))
}

func TestString(t *testing.T) {
	r := NewLocalResult(nil, intColumns(2), 2)
	addAll(t, r, intRow(1, 2), intRow(3, 4))
	r.Done()
	require.Equal(t, "columns: 2 rows: 2 pos: -1", r.String())
	r.Next()
	require.Equal(t, "columns: 2 rows: 2 pos: 0", r.String())
}
