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

package value

import (
	"strings"

	"golang.org/x/exp/slices"
)

// Row is one materialized result row. The leading cells up to the
// owning buffer's visible column count are what clients see; trailing
// cells are helper columns used only for ordering.
type Row []Value

// Clone copies the row. Cells are shared, they are immutable anyway.
func (r Row) Clone() Row {
	return slices.Clone(r)
}

// Equal reports whether two rows have equal cells position by position.
func (r Row) Equal(o Row) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if r[i].Compare(o[i]) != 0 {
			return false
		}
	}
	return true
}

func (r Row) String() string {
	var buf strings.Builder
	buf.WriteString("[")
	for i, v := range r {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(v.String())
	}
	buf.WriteString("]")
	return buf.String()
}
