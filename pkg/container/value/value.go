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
	"bytes"
	"strconv"
	"time"

	"github.com/wuce7758/openddal/pkg/common/dberr"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Value is one typed scalar cell. Values are immutable once stored in
// a row.
//
// Compare orders NULL before every non-null value and is only defined
// between compatible types; mixed numeric comparison widens to float64.
type Value interface {
	Type() T
	IsNull() bool
	Compare(o Value) int
	String() string
}

// Null is the NULL value of any type.
type Null struct{}

func (Null) Type() T        { return T_any }
func (Null) IsNull() bool   { return true }
func (Null) String() string { return "NULL" }

func (Null) Compare(o Value) int {
	if o.IsNull() {
		return 0
	}
	return -1
}

type Bool bool

func (v Bool) Type() T      { return T_bool }
func (v Bool) IsNull() bool { return false }

func (v Bool) String() string {
	return strconv.FormatBool(bool(v))
}

func (v Bool) Compare(o Value) int {
	if o.IsNull() {
		return 1
	}
	b, ok := o.(Bool)
	if !ok {
		panic(dberr.NewInternalErrorNoCtx("compare between %s and %s", v.Type(), o.Type()))
	}
	switch {
	case v == b:
		return 0
	case !v:
		return -1
	}
	return 1
}

type Int64 int64

func (v Int64) Type() T      { return T_int64 }
func (v Int64) IsNull() bool { return false }

func (v Int64) String() string {
	return strconv.FormatInt(int64(v), 10)
}

func (v Int64) Compare(o Value) int {
	if o.IsNull() {
		return 1
	}
	if b, ok := o.(Int64); ok {
		return compareOrdered(v, b)
	}
	return compareOrdered(float64(v), toFloat64(o))
}

type Uint64 uint64

func (v Uint64) Type() T      { return T_uint64 }
func (v Uint64) IsNull() bool { return false }

func (v Uint64) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

func (v Uint64) Compare(o Value) int {
	if o.IsNull() {
		return 1
	}
	if b, ok := o.(Uint64); ok {
		return compareOrdered(v, b)
	}
	return compareOrdered(float64(v), toFloat64(o))
}

type Float64 float64

func (v Float64) Type() T      { return T_float64 }
func (v Float64) IsNull() bool { return false }

func (v Float64) String() string {
	return strconv.FormatFloat(float64(v), 'g', -1, 64)
}

func (v Float64) Compare(o Value) int {
	if o.IsNull() {
		return 1
	}
	return compareOrdered(float64(v), toFloat64(o))
}

// Bytes holds varchar and binary cells.
type Bytes []byte

func (v Bytes) Type() T      { return T_varchar }
func (v Bytes) IsNull() bool { return false }

func (v Bytes) String() string {
	return string(v)
}

func (v Bytes) Compare(o Value) int {
	if o.IsNull() {
		return 1
	}
	b, ok := o.(Bytes)
	if !ok {
		panic(dberr.NewInternalErrorNoCtx("compare between %s and %s", v.Type(), o.Type()))
	}
	return bytes.Compare(v, b)
}

func compareOrdered[V constraints.Ordered](a, b V) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func toFloat64(o Value) float64 {
	switch b := o.(type) {
	case Bool:
		if b {
			return 1
		}
		return 0
	case Int64:
		return float64(b)
	case Uint64:
		return float64(b)
	case Float64:
		return float64(b)
	}
	panic(dberr.NewInternalErrorNoCtx("not a numeric value: %s", o.Type()))
}

// FromDriverValue converts a database/sql scan result into a Value.
// Byte slices are cloned, the driver reuses its buffers between scans.
func FromDriverValue(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(x), nil
	case int64:
		return Int64(x), nil
	case uint64:
		return Uint64(x), nil
	case float64:
		return Float64(x), nil
	case []byte:
		return Bytes(slices.Clone(x)), nil
	case string:
		return Bytes(x), nil
	case time.Time:
		return DatetimeFromTime(x), nil
	}
	return nil, dberr.NewInvalidInputNoCtx("unsupported driver value type %T", v)
}
