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

// Package batch groups the column vectors produced by one execution
// step. All vectors of a batch have the same length.
package batch

import (
	"github.com/wuce7758/openddal/pkg/container/vector"
)

type Batch struct {
	// Attrs are the column names
	Attrs []string
	// Vecs are the columns, position matched with Attrs
	Vecs []*vector.Vector
}

func New(attrs []string) *Batch {
	return &Batch{
		Attrs: attrs,
		Vecs:  make([]*vector.Vector, len(attrs)),
	}
}

func (bat *Batch) Vec(i int) *vector.Vector {
	return bat.Vecs[i]
}

func (bat *Batch) RowCount() int {
	if bat == nil || len(bat.Vecs) == 0 || bat.Vecs[0] == nil {
		return 0
	}
	return vector.Length(bat.Vecs[0])
}
