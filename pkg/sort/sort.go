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

package sort

import (
	"sort"

	"github.com/google/btree"
	"github.com/wuce7758/openddal/pkg/common/dberr"
	"github.com/wuce7758/openddal/pkg/container/value"
)

// Sort flags, one int per sort column.
const (
	Descending = 1 << iota
	// NullsFirst and NullsLast place NULL regardless of the sort
	// direction. With neither set NULL sorts as the lowest value.
	NullsFirst
	NullsLast
)

const windowTreeDegree = 32

// Order describes a multi-column sort. Columns index into the full
// row, so invisible helper columns can serve as sort keys.
type Order struct {
	Columns []int
	Flags   []int
}

func New(columns, flags []int) (*Order, error) {
	if len(columns) != len(flags) {
		return nil, dberr.NewInvalidInputNoCtx("sort described by %d columns but %d flags", len(columns), len(flags))
	}
	for i := range columns {
		if columns[i] < 0 {
			return nil, dberr.NewInvalidInputNoCtx("negative sort column %d", columns[i])
		}
		if flags[i]&NullsFirst != 0 && flags[i]&NullsLast != 0 {
			return nil, dberr.NewInvalidInputNoCtx("sort column %d asks for nulls first and nulls last", columns[i])
		}
	}
	return &Order{Columns: columns, Flags: flags}, nil
}

// Compare orders two rows column by column under the sort flags.
func (ord *Order) Compare(a, b value.Row) int {
	for i, col := range ord.Columns {
		flags := ord.Flags[i]
		x, y := a[col], b[col]
		xNull := x == nil || x.IsNull()
		yNull := y == nil || y.IsNull()
		if xNull || yNull {
			if xNull == yNull {
				continue
			}
			ret := 1
			if xNull {
				ret = -1
			}
			switch {
			case flags&NullsFirst != 0:
			case flags&NullsLast != 0:
				ret = -ret
			case flags&Descending != 0:
				ret = -ret
			}
			return ret
		}
		if ret := x.Compare(y); ret != 0 {
			if flags&Descending != 0 {
				return -ret
			}
			return ret
		}
	}
	return 0
}

// Sort orders rows in place. Equal keys keep their relative positions.
func (ord *Order) Sort(rows []value.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return ord.Compare(rows[i], rows[j]) < 0
	})
}

type rowItem struct {
	row value.Row
	pos int
	ord *Order
}

func (it *rowItem) Less(than btree.Item) bool {
	other := than.(*rowItem)
	if ret := it.ord.Compare(it.row, other.row); ret != 0 {
		return ret < 0
	}
	return it.pos < other.pos
}

// SortWindow orders only the first offset+limit positions: afterwards
// they hold the globally first offset+limit rows in stable sorted
// order. The remaining rows keep the same multiset in unspecified
// order. Degenerate windows fall back to a full sort.
func (ord *Order) SortWindow(rows []value.Row, offset, limit int) {
	n := offset + limit
	if n <= 0 || n >= len(rows) {
		ord.Sort(rows)
		return
	}

	// bounded top-K: the tree never holds more than n+1 items
	tree := btree.New(windowTreeDegree)
	for i, row := range rows {
		tree.ReplaceOrInsert(&rowItem{row: row, pos: i, ord: ord})
		if tree.Len() > n {
			tree.DeleteMax()
		}
	}

	win := make([]value.Row, 0, n)
	taken := make([]bool, len(rows))
	tree.Ascend(func(item btree.Item) bool {
		it := item.(*rowItem)
		win = append(win, it.row)
		taken[it.pos] = true
		return true
	})
	rest := make([]value.Row, 0, len(rows)-n)
	for i, row := range rows {
		if !taken[i] {
			rest = append(rest, row)
		}
	}
	copy(rows, win)
	copy(rows[n:], rest)
}
