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
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"github.com/wuce7758/openddal/pkg/container/value"
)

func TestTypeFromDatabase(t *testing.T) {
	cases := []struct {
		name string
		want value.T
	}{
		{"TINYINT", value.T_int64},
		{"INT", value.T_int64},
		{"BIGINT", value.T_int64},
		{"UNSIGNED BIGINT", value.T_uint64},
		{"DOUBLE", value.T_float64},
		{"DECIMAL", value.T_float64},
		{"DATE", value.T_date},
		{"DATETIME", value.T_datetime},
		{"TIMESTAMP", value.T_datetime},
		{"BOOL", value.T_bool},
		{"BLOB", value.T_lob},
		{"LONGBLOB", value.T_lob},
		{"VARCHAR", value.T_varchar},
		{"TEXT", value.T_varchar},
		{"varchar", value.T_varchar},
		{"bigint", value.T_int64},
	}
	for _, c := range cases {
		require.Equal(t, c.want, typeFromDatabase(c.name), c.name)
	}
}

func TestConvertScanned(t *testing.T) {
	v, err := convertScanned(value.Bytes("payload"), value.T_lob)
	require.NoError(t, err)
	lob, ok := v.(value.Lob)
	require.True(t, ok)
	require.False(t, lob.Stored)
	require.Equal(t, []byte("payload"), lob.Data)
	require.Equal(t, int64(7), lob.Size)

	v, err = convertScanned(value.Bytes("2022-03-15"), value.T_date)
	require.NoError(t, err)
	d, err := value.ParseDate("2022-03-15")
	require.NoError(t, err)
	require.Equal(t, d, v)

	v, err = convertScanned(value.Bytes("2022-03-15 08:30:00"), value.T_datetime)
	require.NoError(t, err)
	dt, err := value.ParseDatetime("2022-03-15 08:30:00")
	require.NoError(t, err)
	require.Equal(t, dt, v)

	// binary-protocol drivers scan temporals as time.Time already
	v, err = convertScanned(dt, value.T_date)
	require.NoError(t, err)
	require.Equal(t, d, v)

	_, err = convertScanned(value.Bytes("not a date"), value.T_date)
	require.Error(t, err)

	// text protocol numerics arrive as bytes
	v, err = convertScanned(value.Bytes("-42"), value.T_int64)
	require.NoError(t, err)
	require.Equal(t, value.Int64(-42), v)
	v, err = convertScanned(value.Bytes("42"), value.T_uint64)
	require.NoError(t, err)
	require.Equal(t, value.Uint64(42), v)
	v, err = convertScanned(value.Bytes("2.5"), value.T_float64)
	require.NoError(t, err)
	require.Equal(t, value.Float64(2.5), v)
	v, err = convertScanned(value.Bytes("1"), value.T_bool)
	require.NoError(t, err)
	require.Equal(t, value.Bool(true), v)
	v, err = convertScanned(value.Int64(0), value.T_bool)
	require.NoError(t, err)
	require.Equal(t, value.Bool(false), v)
	_, err = convertScanned(value.Bytes("x"), value.T_int64)
	require.Error(t, err)

	// binary protocol numerics pass through untouched
	v, err = convertScanned(value.Int64(-42), value.T_int64)
	require.NoError(t, err)
	require.Equal(t, value.Int64(-42), v)

	// nulls and matching types pass through untouched
	v, err = convertScanned(value.Null{}, value.T_date)
	require.NoError(t, err)
	require.True(t, v.IsNull())
	v, err = convertScanned(value.Bytes("plain"), value.T_varchar)
	require.NoError(t, err)
	require.Equal(t, value.Bytes("plain"), v)
}

// TestFromRowsMySQL needs a reachable server, for example
//
//	DDAL_TEST_MYSQL_DSN='root:pwd@tcp(127.0.0.1:3306)/mysql' go test ./pkg/result/
func TestFromRowsMySQL(t *testing.T) {
	dsn := os.Getenv("DDAL_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("DDAL_TEST_MYSQL_DSN not set")
	}
	ctx := context.TODO()

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		"SELECT 1 AS id, 'a' AS name UNION ALL SELECT 2, 'b' UNION ALL SELECT 3, 'c' ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()

	r, err := FromRows(ctx, nil, rows, 0)
	require.NoError(t, err)
	require.Equal(t, 3, r.RowCount())
	require.Equal(t, 2, r.VisibleColumnCount())
	require.Equal(t, "id", r.ColumnAlias(0))
	require.Equal(t, "name", r.ColumnAlias(1))

	require.True(t, r.Next())
	require.Equal(t, 0, r.CurrentRow()[0].Compare(value.Int64(1)))
	require.Equal(t, 0, r.CurrentRow()[1].Compare(value.Bytes("a")))

	rows2, err := db.QueryContext(ctx,
		"SELECT 1 UNION ALL SELECT 2 UNION ALL SELECT 3")
	require.NoError(t, err)
	defer rows2.Close()

	capped, err := FromRows(ctx, nil, rows2, 2)
	require.NoError(t, err)
	require.Equal(t, 2, capped.RowCount())
}
