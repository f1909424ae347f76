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

package defines

// MysqlType is the column type byte of the mysql protocol.
type MysqlType uint8

const (
	MYSQL_TYPE_DECIMAL   MysqlType = 0x00
	MYSQL_TYPE_TINY      MysqlType = 0x01
	MYSQL_TYPE_SHORT     MysqlType = 0x02
	MYSQL_TYPE_LONG      MysqlType = 0x03
	MYSQL_TYPE_FLOAT     MysqlType = 0x04
	MYSQL_TYPE_DOUBLE    MysqlType = 0x05
	MYSQL_TYPE_NULL      MysqlType = 0x06
	MYSQL_TYPE_TIMESTAMP MysqlType = 0x07
	MYSQL_TYPE_LONGLONG  MysqlType = 0x08
	MYSQL_TYPE_INT24     MysqlType = 0x09
	MYSQL_TYPE_DATE      MysqlType = 0x0a
	MYSQL_TYPE_TIME      MysqlType = 0x0b
	MYSQL_TYPE_DATETIME  MysqlType = 0x0c
	MYSQL_TYPE_YEAR      MysqlType = 0x0d
	MYSQL_TYPE_NEWDATE   MysqlType = 0x0e
	MYSQL_TYPE_VARCHAR   MysqlType = 0x0f
	MYSQL_TYPE_BIT       MysqlType = 0x10

	MYSQL_TYPE_JSON        MysqlType = 0xf5
	MYSQL_TYPE_NEWDECIMAL  MysqlType = 0xf6
	MYSQL_TYPE_ENUM        MysqlType = 0xf7
	MYSQL_TYPE_SET         MysqlType = 0xf8
	MYSQL_TYPE_TINY_BLOB   MysqlType = 0xf9
	MYSQL_TYPE_MEDIUM_BLOB MysqlType = 0xfa
	MYSQL_TYPE_LONG_BLOB   MysqlType = 0xfb
	MYSQL_TYPE_BLOB        MysqlType = 0xfc
	MYSQL_TYPE_VAR_STRING  MysqlType = 0xfd
	MYSQL_TYPE_STRING      MysqlType = 0xfe
	MYSQL_TYPE_GEOMETRY    MysqlType = 0xff
)

// GetLength returns the display length of a column definition. A
// positive width overrides the default of the type.
func (t MysqlType) GetLength(width int32) uint32 {
	if width > 0 {
		return uint32(width)
	}
	switch t {
	case MYSQL_TYPE_TINY:
		return 1
	case MYSQL_TYPE_SHORT:
		return 6
	case MYSQL_TYPE_LONG, MYSQL_TYPE_INT24:
		return 11
	case MYSQL_TYPE_LONGLONG:
		return 20
	case MYSQL_TYPE_FLOAT:
		return 12
	case MYSQL_TYPE_DOUBLE:
		return 22
	case MYSQL_TYPE_DATE:
		return 10
	case MYSQL_TYPE_DATETIME, MYSQL_TYPE_TIMESTAMP:
		return 26
	case MYSQL_TYPE_TINY_BLOB, MYSQL_TYPE_BLOB, MYSQL_TYPE_MEDIUM_BLOB, MYSQL_TYPE_LONG_BLOB:
		return 65535
	default:
		return 1024
	}
}

// Header byte of the mysql response packets.
const (
	OKHeader          byte = 0x00
	ErrHeader         byte = 0xff
	EOFHeader         byte = 0xfe
	LocalInFileHeader byte = 0xfb
)

// Column definition flags of the mysql protocol.
const (
	NOT_NULL_FLAG       uint32 = 1 << 0
	PRI_KEY_FLAG        uint32 = 1 << 1
	UNIQUE_KEY_FLAG     uint32 = 1 << 2
	MULTIPLE_KEY_FLAG   uint32 = 1 << 3
	BLOB_FLAG           uint32 = 1 << 4
	UNSIGNED_FLAG       uint32 = 1 << 5
	ZEROFILL_FLAG       uint32 = 1 << 6
	BINARY_FLAG         uint32 = 1 << 7
	ENUM_FLAG           uint32 = 1 << 8
	AUTO_INCREMENT_FLAG uint32 = 1 << 9
	TIMESTAMP_FLAG      uint32 = 1 << 10
	SET_FLAG            uint32 = 1 << 11
)
