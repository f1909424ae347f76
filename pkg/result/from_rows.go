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
	"strconv"
	"strings"

	"github.com/wuce7758/openddal/pkg/common/dberr"
	"github.com/wuce7758/openddal/pkg/container/value"
)

// sqlColumn adapts driver column metadata to Expression. Backend
// drivers do not report table or schema names through ColumnTypes.
type sqlColumn struct {
	name     string
	typ      value.T
	size     int64
	scale    int
	nullable bool
}

var _ Expression = sqlColumn{}

func newSQLColumn(ct *sql.ColumnType) sqlColumn {
	col := sqlColumn{
		name:     ct.Name(),
		typ:      typeFromDatabase(ct.DatabaseTypeName()),
		nullable: true,
	}
	if nullable, ok := ct.Nullable(); ok {
		col.nullable = nullable
	}
	if length, ok := ct.Length(); ok {
		col.size = length
	}
	if precision, scale, ok := ct.DecimalSize(); ok {
		col.size = precision
		col.scale = int(scale)
	}
	return col
}

func (c sqlColumn) Alias() string       { return c.name }
func (c sqlColumn) TableName() string   { return "" }
func (c sqlColumn) SchemaName() string  { return "" }
func (c sqlColumn) ColumnName() string  { return c.name }
func (c sqlColumn) Type() value.T       { return c.typ }
func (c sqlColumn) DisplaySize() int    { return int(c.size) }
func (c sqlColumn) Precision() int64    { return c.size }
func (c sqlColumn) Scale() int          { return c.scale }
func (c sqlColumn) Nullable() bool      { return c.nullable }
func (c sqlColumn) AutoIncrement() bool { return false }

func typeFromDatabase(name string) value.T {
	switch strings.ToUpper(name) {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT":
		return value.T_int64
	case "UNSIGNED TINYINT", "UNSIGNED SMALLINT", "UNSIGNED MEDIUMINT",
		"UNSIGNED INT", "UNSIGNED BIGINT":
		return value.T_uint64
	case "FLOAT", "DOUBLE", "DECIMAL":
		return value.T_float64
	case "DATE":
		return value.T_date
	case "DATETIME", "TIMESTAMP":
		return value.T_datetime
	case "BOOL", "BOOLEAN":
		return value.T_bool
	case "TINYBLOB", "BLOB", "MEDIUMBLOB", "LONGBLOB":
		return value.T_lob
	default:
		return value.T_varchar
	}
}

// convertScanned reshapes a scanned value for columns whose driver
// representation differs from ours. Text-protocol drivers hand every
// cell back as bytes, so numbers and temporals may need parsing.
func convertScanned(v value.Value, typ value.T) (value.Value, error) {
	if v.IsNull() {
		return v, nil
	}
	b, isBytes := v.(value.Bytes)
	switch typ {
	case value.T_lob:
		if isBytes {
			return value.Lob{Data: b, Size: int64(len(b))}, nil
		}
	case value.T_int64:
		if isBytes {
			n, err := strconv.ParseInt(string(b), 10, 64)
			if err != nil {
				return nil, dberr.NewInvalidInputNoCtx("cannot parse %q as %s", string(b), typ)
			}
			return value.Int64(n), nil
		}
	case value.T_uint64:
		if isBytes {
			n, err := strconv.ParseUint(string(b), 10, 64)
			if err != nil {
				return nil, dberr.NewInvalidInputNoCtx("cannot parse %q as %s", string(b), typ)
			}
			return value.Uint64(n), nil
		}
	case value.T_float64:
		if isBytes {
			f, err := strconv.ParseFloat(string(b), 64)
			if err != nil {
				return nil, dberr.NewInvalidInputNoCtx("cannot parse %q as %s", string(b), typ)
			}
			return value.Float64(f), nil
		}
	case value.T_bool:
		switch x := v.(type) {
		case value.Bytes:
			n, err := strconv.ParseInt(string(x), 10, 64)
			if err != nil {
				return nil, dberr.NewInvalidInputNoCtx("cannot parse %q as %s", string(x), typ)
			}
			return value.Bool(n != 0), nil
		case value.Int64:
			return value.Bool(x != 0), nil
		}
	case value.T_date:
		switch x := v.(type) {
		case value.Bytes:
			return value.ParseDate(string(x))
		case value.Datetime:
			return x.ToDate(), nil
		}
	case value.T_datetime:
		if isBytes {
			return value.ParseDatetime(string(b))
		}
	}
	return v, nil
}

// FromRows drains a database/sql result set into a finalized buffer.
// maxRows > 0 stops reading after that many rows; the rest of the set
// is left unread. The caller still owns rows and must close it.
func FromRows(ctx context.Context, ses Session, rows *sql.Rows, maxRows int) (*LocalResult, error) {
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	expressions := make([]Expression, len(columnTypes))
	for i, ct := range columnTypes {
		expressions[i] = newSQLColumn(ct)
	}
	r := NewLocalResult(ses, expressions, len(expressions))
	dest := make([]any, len(columnTypes))
	for i := range dest {
		dest[i] = new(any)
	}
	for maxRows <= 0 || r.RowCount() < maxRows {
		if !rows.Next() {
			break
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make(value.Row, len(dest))
		for i := range dest {
			v, err := value.FromDriverValue(*(dest[i].(*any)))
			if err != nil {
				return nil, err
			}
			if row[i], err = convertScanned(v, expressions[i].Type()); err != nil {
				return nil, err
			}
		}
		if err := r.AddRow(ctx, row); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.Done()
	return r, nil
}
