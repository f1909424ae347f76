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

// Package nulls wraps up functions for the manipulation of the bitmap
// library roaring. A Nulls records which rows of a column are NULL.
package nulls

import (
	"fmt"

	roaring "github.com/RoaringBitmap/roaring/roaring64"
)

type Nulls struct {
	Np *roaring.Bitmap
}

// Build returns a null mask covering the given rows.
func Build(rows ...uint64) *Nulls {
	nsp := &Nulls{}
	Add(nsp, rows...)
	return nsp
}

func (nsp *Nulls) Clone() *Nulls {
	if nsp == nil {
		return nil
	}
	if nsp.Np == nil {
		return &Nulls{}
	}
	return &Nulls{Np: nsp.Np.Clone()}
}

// Any returns true if any bit in the Nulls is set
func Any(nsp *Nulls) bool {
	if nsp == nil || nsp.Np == nil {
		return false
	}
	return !nsp.Np.IsEmpty()
}

// Size returns the number of set bits
func Size(nsp *Nulls) int {
	if nsp == nil || nsp.Np == nil {
		return 0
	}
	return int(nsp.Np.GetCardinality())
}

func Contains(nsp *Nulls, row uint64) bool {
	if nsp == nil || nsp.Np == nil {
		return false
	}
	return nsp.Np.Contains(row)
}

func Add(nsp *Nulls, rows ...uint64) {
	if len(rows) == 0 {
		return
	}
	if nsp.Np == nil {
		nsp.Np = roaring.New()
	}
	nsp.Np.AddMany(rows)
}

func Del(nsp *Nulls, rows ...uint64) {
	if nsp == nil || nsp.Np == nil {
		return
	}
	for _, row := range rows {
		nsp.Np.Remove(row)
	}
}

func Reset(nsp *Nulls) {
	if nsp.Np != nil {
		nsp.Np.Clear()
	}
}

func String(nsp *Nulls) string {
	if nsp == nil || nsp.Np == nil {
		return "[]"
	}
	return fmt.Sprintf("%v", nsp.Np.ToArray())
}
