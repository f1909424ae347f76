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
	"fmt"

	"github.com/wuce7758/openddal/pkg/common/dberr"
)

// Lob is a large object cell. Small lobs travel inline in Data; lobs
// staged into a session lob store carry only the handle (ID, Size)
// with Stored set.
type Lob struct {
	ID     uint64
	Size   int64
	Data   []byte
	Stored bool
}

func (v Lob) Type() T      { return T_lob }
func (v Lob) IsNull() bool { return false }

func (v Lob) String() string {
	if v.Stored {
		return fmt.Sprintf("lob(id: %d, size: %d)", v.ID, v.Size)
	}
	return fmt.Sprintf("lob(inline, size: %d)", len(v.Data))
}

func (v Lob) Compare(o Value) int {
	if o.IsNull() {
		return 1
	}
	b, ok := o.(Lob)
	if !ok {
		panic(dberr.NewInternalErrorNoCtx("compare between %s and %s", v.Type(), o.Type()))
	}
	if v.Stored != b.Stored {
		// Stored lobs order after inline ones, comparing content
		// would need a store round trip.
		if b.Stored {
			return -1
		}
		return 1
	}
	if v.Stored {
		return compareOrdered(v.ID, b.ID)
	}
	return bytes.Compare(v.Data, b.Data)
}
