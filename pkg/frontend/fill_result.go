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

package frontend

import (
	"context"

	"github.com/wuce7758/openddal/pkg/container/batch"
	"github.com/wuce7758/openddal/pkg/container/value"
	"github.com/wuce7758/openddal/pkg/container/vector"
	"github.com/wuce7758/openddal/pkg/result"
)

// FillResult moves the rows of an execution batch into a result
// buffer. The null mask of every vector wins over its column data.
func FillResult(ctx context.Context, bat *batch.Batch, tgt result.Target) error {
	if bat == nil {
		return nil
	}
	n := bat.RowCount()
	for j := 0; j < n; j++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := make(value.Row, len(bat.Vecs))
		for i, vec := range bat.Vecs {
			row[i] = vector.ValueAt(vec, j)
		}
		if err := tgt.AddRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// ColumnsFromBatch derives output column metadata from the attributes
// and the vector types of a batch.
func ColumnsFromBatch(bat *batch.Batch) []result.Expression {
	exprs := make([]result.Expression, len(bat.Vecs))
	for i, vec := range bat.Vecs {
		exprs[i] = NewMysqlColumn(bat.Attrs[i], vec.Typ)
	}
	return exprs
}
