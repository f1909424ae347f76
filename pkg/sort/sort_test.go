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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wuce7758/openddal/pkg/common/dberr"
	"github.com/wuce7758/openddal/pkg/container/value"
)

func TestNewValidation(t *testing.T) {
	_, err := New([]int{0, 1}, []int{0})
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrInvalidInput))

	_, err = New([]int{-1}, []int{0})
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrInvalidInput))

	_, err = New([]int{0}, []int{NullsFirst | NullsLast})
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrInvalidInput))

	ord, err := New([]int{1, 0}, []int{Descending, 0})
	require.NoError(t, err)
	require.NotNil(t, ord)
}

func rowOf(vs ...value.Value) value.Row { return value.Row(vs) }

func TestCompareFlags(t *testing.T) {
	asc, err := New([]int{0}, []int{0})
	require.NoError(t, err)
	desc, err := New([]int{0}, []int{Descending})
	require.NoError(t, err)

	a := rowOf(value.Int64(1))
	b := rowOf(value.Int64(2))
	nul := rowOf(value.Null{})

	require.Equal(t, -1, asc.Compare(a, b))
	require.Equal(t, 1, desc.Compare(a, b))
	require.Equal(t, 0, asc.Compare(a, a))

	// NULL is the lowest value unless a flag pins it
	require.Equal(t, -1, asc.Compare(nul, a))
	require.Equal(t, 1, desc.Compare(nul, a))
	require.Equal(t, 0, asc.Compare(nul, nul))

	nf, err := New([]int{0}, []int{Descending | NullsFirst})
	require.NoError(t, err)
	require.Equal(t, -1, nf.Compare(nul, a))

	nl, err := New([]int{0}, []int{NullsLast})
	require.NoError(t, err)
	require.Equal(t, 1, nl.Compare(nul, a))
}

func TestCompareMultiColumn(t *testing.T) {
	ord, err := New([]int{0, 1}, []int{0, Descending})
	require.NoError(t, err)

	a := rowOf(value.Bytes("x"), value.Int64(1))
	b := rowOf(value.Bytes("x"), value.Int64(2))
	c := rowOf(value.Bytes("y"), value.Int64(0))

	require.Equal(t, 1, ord.Compare(a, b))
	require.Equal(t, -1, ord.Compare(b, c))
}

func TestSortStable(t *testing.T) {
	ord, err := New([]int{0}, []int{0})
	require.NoError(t, err)

	// column 1 records the arrival order and is not a sort key
	rows := []value.Row{
		rowOf(value.Int64(2), value.Int64(0)),
		rowOf(value.Int64(1), value.Int64(1)),
		rowOf(value.Int64(2), value.Int64(2)),
		rowOf(value.Int64(1), value.Int64(3)),
	}
	ord.Sort(rows)

	want := []int64{1, 3, 0, 2}
	for i, w := range want {
		require.Equal(t, value.Int64(w), rows[i][1])
	}
}

func TestSortWindow(t *testing.T) {
	ord, err := New([]int{0}, []int{0})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	rows := make([]value.Row, 200)
	for i := range rows {
		rows[i] = rowOf(value.Int64(rng.Intn(50)), value.Int64(int64(i)))
	}
	full := make([]value.Row, len(rows))
	copy(full, rows)
	ord.Sort(full)

	ord.SortWindow(rows, 10, 20)
	for i := 0; i < 30; i++ {
		require.True(t, rows[i].Equal(full[i]), "window position %d", i)
	}

	// the tail keeps the same multiset
	seen := map[int64]bool{}
	for _, r := range rows {
		seen[int64(r[1].(value.Int64))] = true
	}
	require.Equal(t, len(rows), len(seen))
}

func TestSortWindowDegenerate(t *testing.T) {
	ord, err := New([]int{0}, []int{0})
	require.NoError(t, err)

	rows := []value.Row{
		rowOf(value.Int64(3)),
		rowOf(value.Int64(1)),
		rowOf(value.Int64(2)),
	}
	// window covers everything, same as a full sort
	ord.SortWindow(rows, 0, 10)
	require.Equal(t, value.Int64(1), rows[0][0])
	require.Equal(t, value.Int64(2), rows[1][0])
	require.Equal(t, value.Int64(3), rows[2][0])
}
