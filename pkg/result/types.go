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

// Package result buffers the rows a query produces until a client
// reads them: deduplication, ordering, offset/limit windowing and the
// forward cursor all live here.
package result

import (
	"context"

	"github.com/wuce7758/openddal/pkg/container/value"
)

// Target is the producer half of a result buffer. One execution
// context pushes rows sequentially; concurrent AddRow calls on the
// same buffer are not supported.
type Target interface {
	AddRow(ctx context.Context, row value.Row) error
	RowCount() int
}

// Result is the consumer half: a finalized, scannable result set.
type Result interface {
	Reset()
	Next() bool
	CurrentRow() value.Row
	RowId() int
	RowCount() int
	VisibleColumnCount() int
	Close()
	Closed() bool
	NeedsClose() bool
	FetchSize() int
	SetFetchSize(n int)

	ColumnAlias(i int) string
	TableName(i int) string
	SchemaName(i int) string
	ColumnName(i int) string
	ColumnType(i int) value.T
	DisplaySize(i int) int
	Precision(i int) int64
	Scale(i int) int
	Nullable(i int) bool
	AutoIncrement(i int) bool
}

// Expression describes one output column.
type Expression interface {
	Alias() string
	TableName() string
	SchemaName() string
	ColumnName() string
	Type() value.T
	DisplaySize() int
	Precision() int64
	Scale() int
	Nullable() bool
	AutoIncrement() bool
}

// Sorter orders rows in place. SortWindow may leave everything past
// offset+limit unordered. Both must be stable.
type Sorter interface {
	Sort(rows []value.Row)
	SortWindow(rows []value.Row, offset, limit int)
}

// Session is the execution context that owns a buffer: it supplies
// the memory budget and takes over the lifetime of staged lobs. A nil
// Session means unbounded and no staging.
type Session interface {
	MaxMemoryRows() int
	FetchSize() int
	StageLob(ctx context.Context, lob *value.Lob) (*value.Lob, error)
}
