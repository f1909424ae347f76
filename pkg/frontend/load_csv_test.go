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
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wuce7758/openddal/pkg/common/dberr"
	"github.com/wuce7758/openddal/pkg/container/value"
	"github.com/wuce7758/openddal/pkg/result"
)

func loadColumns() []result.Expression {
	return []result.Expression{
		NewMysqlColumn("id", value.T_int64),
		NewMysqlColumn("name", value.T_varchar),
		NewMysqlColumn("score", value.T_float64),
	}
}

func TestLoadCSV(t *testing.T) {
	ctx := context.TODO()
	content := "1,ann,2.5\n2,bob,3\n3,\\N,\\N\n"

	r := result.NewLocalResult(nil, loadColumns(), 3)
	n, err := LoadCSV(ctx, strings.NewReader(content), LoadOptions{}, r, loadColumns())
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, 3, r.RowCount())
	r.Done()

	require.True(t, r.Next())
	require.Equal(t, value.Row{value.Int64(1), value.Bytes("ann"), value.Float64(2.5)}, r.CurrentRow())
	require.True(t, r.Next())
	require.True(t, r.Next())
	row := r.CurrentRow()
	require.Equal(t, value.Int64(3), row[0])
	require.True(t, row[1].IsNull())
	require.True(t, row[2].IsNull())
}

func TestLoadCSVHeader(t *testing.T) {
	ctx := context.TODO()
	content := "id,name,score\n7,kim,1.25\n"

	r := result.NewLocalResult(nil, loadColumns(), 3)
	n, err := LoadCSV(ctx, strings.NewReader(content), LoadOptions{Header: true}, r, loadColumns())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	r.Done()
	require.True(t, r.Next())
	require.Equal(t, value.Int64(7), r.CurrentRow()[0])
}

func TestLoadCSVFieldTerminator(t *testing.T) {
	ctx := context.TODO()
	content := "1|ann|2.5\n"

	r := result.NewLocalResult(nil, loadColumns(), 3)
	n, err := LoadCSV(ctx, strings.NewReader(content), LoadOptions{FieldTerminator: '|'}, r, loadColumns())
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestLoadCSVTemporalAndBool(t *testing.T) {
	ctx := context.TODO()
	exprs := []result.Expression{
		NewMysqlColumn("ok", value.T_bool),
		NewMysqlColumn("day", value.T_date),
		NewMysqlColumn("at", value.T_datetime),
	}
	content := "true,2022-03-01,2022-03-01 08:30:00\n"

	r := result.NewLocalResult(nil, exprs, 3)
	n, err := LoadCSV(ctx, strings.NewReader(content), LoadOptions{}, r, exprs)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	r.Done()

	require.True(t, r.Next())
	row := r.CurrentRow()
	require.Equal(t, value.Bool(true), row[0])
	require.Equal(t, "2022-03-01", row[1].String())
	require.Equal(t, "2022-03-01 08:30:00", row[2].String())
}

func TestLoadCSVLobColumn(t *testing.T) {
	ctx := context.TODO()
	exprs := []result.Expression{NewMysqlColumn("doc", value.T_lob)}

	r := result.NewLocalResult(nil, exprs, 1)
	n, err := LoadCSV(ctx, strings.NewReader("payload\n"), LoadOptions{}, r, exprs)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	r.Done()

	require.True(t, r.Next())
	lob := r.CurrentRow()[0].(value.Lob)
	require.False(t, lob.Stored)
	require.Equal(t, []byte("payload"), lob.Data)
}

func TestLoadCSVFieldCountMismatch(t *testing.T) {
	ctx := context.TODO()
	r := result.NewLocalResult(nil, loadColumns(), 3)
	_, err := LoadCSV(ctx, strings.NewReader("1,ann\n"), LoadOptions{}, r, loadColumns())
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrInvalidInput))
}

func TestLoadCSVBadField(t *testing.T) {
	ctx := context.TODO()
	r := result.NewLocalResult(nil, loadColumns(), 3)
	n, err := LoadCSV(ctx, strings.NewReader("1,ann,2.5\nx,bob,3\n"), LoadOptions{}, r, loadColumns())
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrInvalidInput))
	require.Contains(t, err.Error(), "line 2")
	require.Equal(t, 1, n)
}

func TestLoadCSVNotNullableColumn(t *testing.T) {
	ctx := context.TODO()
	col := NewMysqlColumn("id", value.T_int64)
	col.SetNullable(false)
	exprs := []result.Expression{col}

	r := result.NewLocalResult(nil, exprs, 1)
	_, err := LoadCSV(ctx, strings.NewReader("\\N\n"), LoadOptions{}, r, exprs)
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrInvalidInput))
}

func TestLoadCSVOverflowPropagates(t *testing.T) {
	ctx := context.TODO()
	r := result.NewLocalResult(nil, loadColumns(), 3)
	r.SetMaxMemoryRows(2)

	n, err := LoadCSV(ctx, strings.NewReader("1,a,1\n2,b,2\n3,c,3\n"), LoadOptions{}, r, loadColumns())
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrResultTooLarge))
	require.Equal(t, 2, n)
	require.Equal(t, 2, r.RowCount())
}

func TestLoadExportRoundtrip(t *testing.T) {
	ctx := context.TODO()
	content := "1,ann,2.5\n2,\\N,3\n"

	r := result.NewLocalResult(nil, loadColumns(), 3)
	n, err := LoadCSV(ctx, strings.NewReader(content), LoadOptions{}, r, loadColumns())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	r.Done()

	var out stringsWriter
	w := NewContentWriter(&out, nil)
	exported, err := ExportResult(ctx, r, w, ExportOptions{})
	require.NoError(t, err)
	require.Equal(t, n, exported)
	require.NoError(t, w.FlushAndClose())
	require.Equal(t, content, out.String())
}
