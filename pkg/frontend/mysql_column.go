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
	"github.com/wuce7758/openddal/pkg/container/value"
	"github.com/wuce7758/openddal/pkg/defines"
	"github.com/wuce7758/openddal/pkg/result"
)

// Column is the protocol-facing description of an output column.
type Column interface {
	SetName(string)
	Name() string

	//data type: MYSQL_TYPE_XXXX
	SetColumnType(defines.MysqlType)
	ColumnType() defines.MysqlType
}

type ColumnImpl struct {
	//the name of the column
	name string
	//the data type of the column
	columnType defines.MysqlType
}

func (ci *ColumnImpl) ColumnType() defines.MysqlType {
	return ci.columnType
}

func (ci *ColumnImpl) SetColumnType(colType defines.MysqlType) {
	ci.columnType = colType
}

func (ci *ColumnImpl) Name() string {
	return ci.name
}

func (ci *ColumnImpl) SetName(name string) {
	ci.name = name
}

// MysqlColumn holds the column definition 41 fields of the mysql
// protocol. It doubles as the concrete result.Expression, so buffers
// built from hand-made columns carry full metadata.
type MysqlColumn struct {
	ColumnImpl
	//schema name
	schema string
	//virtual table name
	table string
	//physical table name
	orgTable string
	//physical column name
	orgName string
	//the column character set. Actually, it is the collation id
	charset uint16
	//maximum length of the field
	length uint32
	//max shown decimal digits
	decimal uint8
	//column definition flags
	flag uint16
	//default values
	defaultValue []byte
}

var _ Column = (*MysqlColumn)(nil)
var _ result.Expression = (*MysqlColumn)(nil)

func (mc *MysqlColumn) DefaultValue() []byte {
	return mc.defaultValue
}

func (mc *MysqlColumn) SetDefaultValue(defaultValue []byte) {
	mc.defaultValue = defaultValue
}

func (mc *MysqlColumn) Decimal() uint8 {
	return mc.decimal
}

func (mc *MysqlColumn) SetDecimal(decimal int32) {
	if decimal >= 0 {
		mc.decimal = uint8(decimal)
	}
}

func (mc *MysqlColumn) Table() string {
	return mc.table
}

func (mc *MysqlColumn) SetTable(table string) {
	mc.table = table
}

func (mc *MysqlColumn) OrgTable() string {
	return mc.orgTable
}

func (mc *MysqlColumn) SetOrgTable(orgTable string) {
	mc.orgTable = orgTable
}

func (mc *MysqlColumn) OrgName() string {
	return mc.orgName
}

func (mc *MysqlColumn) SetOrgName(orgName string) {
	mc.orgName = orgName
}

func (mc *MysqlColumn) Schema() string {
	return mc.schema
}

func (mc *MysqlColumn) SetSchema(schema string) {
	mc.schema = schema
}

func (mc *MysqlColumn) Charset() uint16 {
	return mc.charset
}

func (mc *MysqlColumn) SetCharset(charset uint16) {
	mc.charset = charset
}

func (mc *MysqlColumn) Length() uint32 {
	return mc.length
}

func (mc *MysqlColumn) SetLength(length uint32) {
	mc.length = length
}

func (mc *MysqlColumn) Flag() uint16 {
	return mc.flag
}

func (mc *MysqlColumn) SetFlag(flag uint16) {
	mc.flag = flag
}

func (mc *MysqlColumn) SetSigned(s bool) {
	if s {
		mc.flag &^= uint16(defines.UNSIGNED_FLAG)
	} else {
		mc.flag |= uint16(defines.UNSIGNED_FLAG)
	}
}

func (mc *MysqlColumn) IsSigned() bool {
	return mc.flag&uint16(defines.UNSIGNED_FLAG) == 0
}

func (mc *MysqlColumn) SetNullable(n bool) {
	if n {
		mc.flag &^= uint16(defines.NOT_NULL_FLAG)
	} else {
		mc.flag |= uint16(defines.NOT_NULL_FLAG)
	}
}

func (mc *MysqlColumn) SetAutoIncr(a bool) {
	if a {
		mc.flag |= uint16(defines.AUTO_INCREMENT_FLAG)
	} else {
		mc.flag &^= uint16(defines.AUTO_INCREMENT_FLAG)
	}
}

// result.Expression

func (mc *MysqlColumn) Alias() string {
	return mc.name
}

func (mc *MysqlColumn) ColumnName() string {
	if mc.orgName != "" {
		return mc.orgName
	}
	return mc.name
}

func (mc *MysqlColumn) TableName() string {
	return mc.table
}

func (mc *MysqlColumn) SchemaName() string {
	return mc.schema
}

func (mc *MysqlColumn) Type() value.T {
	switch mc.columnType {
	case defines.MYSQL_TYPE_TINY:
		return value.T_bool
	case defines.MYSQL_TYPE_SHORT, defines.MYSQL_TYPE_INT24, defines.MYSQL_TYPE_LONG:
		return value.T_int64
	case defines.MYSQL_TYPE_LONGLONG:
		if mc.flag&uint16(defines.UNSIGNED_FLAG) != 0 {
			return value.T_uint64
		}
		return value.T_int64
	case defines.MYSQL_TYPE_FLOAT, defines.MYSQL_TYPE_DOUBLE,
		defines.MYSQL_TYPE_DECIMAL, defines.MYSQL_TYPE_NEWDECIMAL:
		return value.T_float64
	case defines.MYSQL_TYPE_DATE:
		return value.T_date
	case defines.MYSQL_TYPE_DATETIME, defines.MYSQL_TYPE_TIMESTAMP:
		return value.T_datetime
	case defines.MYSQL_TYPE_TINY_BLOB, defines.MYSQL_TYPE_BLOB,
		defines.MYSQL_TYPE_MEDIUM_BLOB, defines.MYSQL_TYPE_LONG_BLOB:
		return value.T_lob
	default:
		return value.T_varchar
	}
}

func (mc *MysqlColumn) DisplaySize() int {
	return int(mc.length)
}

func (mc *MysqlColumn) Precision() int64 {
	return int64(mc.length)
}

func (mc *MysqlColumn) Scale() int {
	return int(mc.decimal)
}

func (mc *MysqlColumn) Nullable() bool {
	return mc.flag&uint16(defines.NOT_NULL_FLAG) == 0
}

func (mc *MysqlColumn) AutoIncrement() bool {
	return mc.flag&uint16(defines.AUTO_INCREMENT_FLAG) != 0
}

// MysqlTypeOf maps a value type to its column type byte.
func MysqlTypeOf(typ value.T) defines.MysqlType {
	switch typ {
	case value.T_bool:
		return defines.MYSQL_TYPE_TINY
	case value.T_int64, value.T_uint64:
		return defines.MYSQL_TYPE_LONGLONG
	case value.T_float64:
		return defines.MYSQL_TYPE_DOUBLE
	case value.T_date:
		return defines.MYSQL_TYPE_DATE
	case value.T_datetime:
		return defines.MYSQL_TYPE_DATETIME
	case value.T_lob:
		return defines.MYSQL_TYPE_BLOB
	default:
		return defines.MYSQL_TYPE_VAR_STRING
	}
}

func setCharacter(column *MysqlColumn) {
	switch column.columnType {
	// blob type should use 0x3f to show the binary data
	case defines.MYSQL_TYPE_VARCHAR, defines.MYSQL_TYPE_STRING, defines.MYSQL_TYPE_VAR_STRING:
		column.SetCharset(charsetVarchar)
	default:
		column.SetCharset(charsetBinary)
	}
}

func setColLength(column *MysqlColumn, width int32) {
	column.length = column.columnType.GetLength(width)
}

func setColFlag(column *MysqlColumn) {
	switch column.Type() {
	case value.T_uint64:
		column.flag |= uint16(defines.UNSIGNED_FLAG)
	case value.T_lob:
		column.flag |= uint16(defines.BLOB_FLAG) | uint16(defines.BINARY_FLAG)
	}
}

// NewMysqlColumn builds a column definition for one value type with
// the default charset, length and flags of that type.
func NewMysqlColumn(name string, typ value.T) *MysqlColumn {
	col := &MysqlColumn{}
	col.SetName(name)
	col.SetOrgName(name)
	col.SetColumnType(MysqlTypeOf(typ))
	if typ == value.T_uint64 {
		col.SetSigned(false)
	}
	setCharacter(col)
	setColLength(col, 0)
	setColFlag(col)
	return col
}

// ColumnsFromResult rebuilds the column definitions of a materialized
// result from its metadata, visible columns only.
func ColumnsFromResult(r result.Result) []*MysqlColumn {
	columns := make([]*MysqlColumn, 0, r.VisibleColumnCount())
	for i := 0; i < r.VisibleColumnCount(); i++ {
		col := NewMysqlColumn(r.ColumnAlias(i), r.ColumnType(i))
		col.SetOrgName(r.ColumnName(i))
		col.SetTable(r.TableName(i))
		col.SetOrgTable(r.TableName(i))
		col.SetSchema(r.SchemaName(i))
		if size := r.DisplaySize(i); size > 0 {
			col.SetLength(uint32(size))
		}
		col.SetDecimal(int32(r.Scale(i)))
		col.SetNullable(r.Nullable(i))
		col.SetAutoIncr(r.AutoIncrement(i))
		columns = append(columns, col)
	}
	return columns
}
