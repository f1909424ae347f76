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

import "fmt"

// T is the type tag of a Value.
type T uint8

const (
	// T_any is the type of NULL.
	T_any T = iota
	T_bool
	T_int64
	T_uint64
	T_float64
	T_varchar
	T_date
	T_datetime
	T_lob
)

// String returns the SQL name of the type.
func (t T) String() string {
	switch t {
	case T_any:
		return "ANY"
	case T_bool:
		return "BOOL"
	case T_int64:
		return "BIGINT"
	case T_uint64:
		return "BIGINT UNSIGNED"
	case T_float64:
		return "DOUBLE"
	case T_varchar:
		return "VARCHAR"
	case T_date:
		return "DATE"
	case T_datetime:
		return "DATETIME"
	case T_lob:
		return "BLOB"
	}
	return fmt.Sprintf("unexpected type: %d", uint8(t))
}
