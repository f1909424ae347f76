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

package result

import (
	"github.com/wuce7758/openddal/pkg/container/value"
)

// distinctIndex keys rows by their packed visible projection. A
// re-inserted key swaps the stored row but keeps its slot, so the
// first arrival decides the position and the last arrival decides the
// content. Removed slots stay nil until materialize skips them.
type distinctIndex struct {
	keys map[string]int
	rows []value.Row
	live int
}

func newDistinctIndex() *distinctIndex {
	return &distinctIndex{
		keys: make(map[string]int),
	}
}

func (d *distinctIndex) insert(key string, row value.Row) {
	if slot, ok := d.keys[key]; ok {
		d.rows[slot] = row
		return
	}
	d.keys[key] = len(d.rows)
	d.rows = append(d.rows, row)
	d.live++
}

func (d *distinctIndex) remove(key string) {
	slot, ok := d.keys[key]
	if !ok {
		return
	}
	delete(d.keys, key)
	d.rows[slot] = nil
	d.live--
}

func (d *distinctIndex) contains(key string) bool {
	_, ok := d.keys[key]
	return ok
}

func (d *distinctIndex) size() int {
	return d.live
}

// materialize returns the live rows in insertion order.
func (d *distinctIndex) materialize() []value.Row {
	out := make([]value.Row, 0, d.live)
	for _, row := range d.rows {
		if row != nil {
			out = append(out, row)
		}
	}
	return out
}
