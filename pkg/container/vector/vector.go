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

package vector

import (
	"github.com/wuce7758/openddal/pkg/common/dberr"
	"github.com/wuce7758/openddal/pkg/container/nulls"
	"github.com/wuce7758/openddal/pkg/container/value"
)

// Vector is one column of an execution batch: the typed column data
// plus the null mask.
type Vector struct {
	Typ value.T
	Col any
	Nsp *nulls.Nulls
}

func New(typ value.T) *Vector {
	v := &Vector{Typ: typ, Nsp: &nulls.Nulls{}}
	switch typ {
	case value.T_bool:
		v.Col = []bool{}
	case value.T_int64:
		v.Col = []int64{}
	case value.T_uint64:
		v.Col = []uint64{}
	case value.T_float64:
		v.Col = []float64{}
	case value.T_varchar, value.T_lob:
		v.Col = [][]byte{}
	case value.T_date:
		v.Col = []value.Date{}
	case value.T_datetime:
		v.Col = []value.Datetime{}
	default:
		panic(dberr.NewInternalErrorNoCtx("unsupported vector type %s", typ))
	}
	return v
}

func Length(v *Vector) int {
	switch col := v.Col.(type) {
	case []bool:
		return len(col)
	case []int64:
		return len(col)
	case []uint64:
		return len(col)
	case []float64:
		return len(col)
	case [][]byte:
		return len(col)
	case []value.Date:
		return len(col)
	case []value.Datetime:
		return len(col)
	}
	panic(dberr.NewInternalErrorNoCtx("unsupported vector column %T", v.Col))
}

// AppendValue adds one cell. NULL occupies a slot with the zero of the
// column type and sets the null bit.
func AppendValue(v *Vector, x value.Value) error {
	if x == nil || x.IsNull() {
		row := uint64(Length(v))
		appendZero(v)
		nulls.Add(v.Nsp, row)
		return nil
	}
	switch col := v.Col.(type) {
	case []bool:
		b, ok := x.(value.Bool)
		if !ok {
			return typeMismatch(v, x)
		}
		v.Col = append(col, bool(b))
	case []int64:
		b, ok := x.(value.Int64)
		if !ok {
			return typeMismatch(v, x)
		}
		v.Col = append(col, int64(b))
	case []uint64:
		b, ok := x.(value.Uint64)
		if !ok {
			return typeMismatch(v, x)
		}
		v.Col = append(col, uint64(b))
	case []float64:
		b, ok := x.(value.Float64)
		if !ok {
			return typeMismatch(v, x)
		}
		v.Col = append(col, float64(b))
	case [][]byte:
		switch b := x.(type) {
		case value.Bytes:
			if v.Typ != value.T_varchar {
				return typeMismatch(v, x)
			}
			v.Col = append(col, b)
		case value.Lob:
			// vectors carry lob content inline, staging into the lob
			// store happens when the row enters a result buffer
			if v.Typ != value.T_lob || b.Stored {
				return typeMismatch(v, x)
			}
			v.Col = append(col, b.Data)
		default:
			return typeMismatch(v, x)
		}
	case []value.Date:
		b, ok := x.(value.Date)
		if !ok {
			return typeMismatch(v, x)
		}
		v.Col = append(col, b)
	case []value.Datetime:
		b, ok := x.(value.Datetime)
		if !ok {
			return typeMismatch(v, x)
		}
		v.Col = append(col, b)
	default:
		panic(dberr.NewInternalErrorNoCtx("unsupported vector column %T", v.Col))
	}
	return nil
}

// ValueAt reads cell i back as a Value, the null mask wins over the
// column data.
func ValueAt(v *Vector, i int) value.Value {
	if nulls.Contains(v.Nsp, uint64(i)) {
		return value.Null{}
	}
	switch col := v.Col.(type) {
	case []bool:
		return value.Bool(col[i])
	case []int64:
		return value.Int64(col[i])
	case []uint64:
		return value.Uint64(col[i])
	case []float64:
		return value.Float64(col[i])
	case [][]byte:
		if v.Typ == value.T_lob {
			return value.Lob{Data: col[i], Size: int64(len(col[i]))}
		}
		return value.Bytes(col[i])
	case []value.Date:
		return col[i]
	case []value.Datetime:
		return col[i]
	}
	panic(dberr.NewInternalErrorNoCtx("unsupported vector column %T", v.Col))
}

func appendZero(v *Vector) {
	switch col := v.Col.(type) {
	case []bool:
		v.Col = append(col, false)
	case []int64:
		v.Col = append(col, 0)
	case []uint64:
		v.Col = append(col, 0)
	case []float64:
		v.Col = append(col, 0)
	case [][]byte:
		v.Col = append(col, nil)
	case []value.Date:
		v.Col = append(col, 0)
	case []value.Datetime:
		v.Col = append(col, 0)
	default:
		panic(dberr.NewInternalErrorNoCtx("unsupported vector column %T", v.Col))
	}
}

func typeMismatch(v *Vector, x value.Value) error {
	return dberr.NewInvalidInputNoCtx("cannot append %s value to %s vector", x.Type(), v.Typ)
}
