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

// Package frontend speaks the server side of the mysql wire protocol:
// column definitions, text result rows and the OK/EOF/ERR packets. The
// csv load and export paths live here too.
package frontend

import (
	"context"
	"encoding/binary"
	"math"
	"strconv"
	"time"

	goetty_buf "github.com/fagongzi/goetty/v2/buf"
	"github.com/fagongzi/util/hack"

	"github.com/wuce7758/openddal/pkg/common/dberr"
	"github.com/wuce7758/openddal/pkg/container/value"
	"github.com/wuce7758/openddal/pkg/defines"
	"github.com/wuce7758/openddal/pkg/result"
)

// capability bits of the mysql protocol
const (
	CLIENT_LONG_PASSWORD                  uint32 = 0x00000001
	CLIENT_FOUND_ROWS                     uint32 = 0x00000002
	CLIENT_LONG_FLAG                      uint32 = 0x00000004
	CLIENT_CONNECT_WITH_DB                uint32 = 0x00000008
	CLIENT_LOCAL_FILES                    uint32 = 0x00000080
	CLIENT_PROTOCOL_41                    uint32 = 0x00000200
	CLIENT_INTERACTIVE                    uint32 = 0x00000400
	CLIENT_TRANSACTIONS                   uint32 = 0x00002000
	CLIENT_SECURE_CONNECTION              uint32 = 0x00008000
	CLIENT_MULTI_STATEMENTS               uint32 = 0x00010000
	CLIENT_MULTI_RESULTS                  uint32 = 0x00020000
	CLIENT_PLUGIN_AUTH                    uint32 = 0x00080000
	CLIENT_CONNECT_ATTRS                  uint32 = 0x00100000
	CLIENT_PLUGIN_AUTH_LENENC_CLIENT_DATA uint32 = 0x00200000
	CLIENT_DEPRECATE_EOF                  uint32 = 0x01000000
)

// DefaultCapability means default capabilities of the server
var DefaultCapability = CLIENT_LONG_PASSWORD |
	CLIENT_FOUND_ROWS |
	CLIENT_LONG_FLAG |
	CLIENT_CONNECT_WITH_DB |
	CLIENT_LOCAL_FILES |
	CLIENT_PROTOCOL_41 |
	CLIENT_INTERACTIVE |
	CLIENT_TRANSACTIONS |
	CLIENT_SECURE_CONNECTION |
	CLIENT_MULTI_STATEMENTS |
	CLIENT_MULTI_RESULTS |
	CLIENT_PLUGIN_AUTH |
	CLIENT_PLUGIN_AUTH_LENENC_CLIENT_DATA |
	CLIENT_DEPRECATE_EOF |
	CLIENT_CONNECT_ATTRS

// server status bits of the OK/EOF packets
const (
	SERVER_STATUS_IN_TRANS      uint16 = 0x0001
	SERVER_STATUS_AUTOCOMMIT    uint16 = 0x0002
	SERVER_MORE_RESULTS_EXISTS  uint16 = 0x0008
	SERVER_STATUS_CURSOR_EXISTS uint16 = 0x0040
	SERVER_STATUS_LAST_ROW_SENT uint16 = 0x0080
)

// DefaultClientConnStatus default server status
var DefaultClientConnStatus = SERVER_STATUS_AUTOCOMMIT

type CommandType uint8

const (
	COM_QUERY      CommandType = 0x03
	COM_FIELD_LIST CommandType = 0x04
)

const (
	//the length of the mysql protocol header
	HeaderLengthOfTheProtocol int = 4

	// MaxPayloadSize If the payload is larger than or equal to 2^24−1 bytes the length is set to 2^24−1 (ff ff ff)
	//and additional packets are sent with the rest of the payload until the payload of a packet
	//is less than 2^24−1 bytes.
	MaxPayloadSize uint32 = (1 << 24) - 1

	// DefaultMySQLState is the default state of the mySQL
	DefaultMySQLState string = "HY000"

	charsetBinary  = 0x3f
	charsetVarchar = 0x21

	//when the bytes held in the out buffer exceed it, the buffer is flushed
	untilBytesInOutbufToFlush int = 64 * 1024
)

// PacketWriter frames payloads into mysql packets and sends them to
// the client.
type PacketWriter interface {
	WritePacket(payload []byte) error
	Flush() error
}

// Conn is the subset of goetty.IOSession the packet writer needs.
type Conn interface {
	OutBuf() *goetty_buf.ByteBuf
	Flush(timeout time.Duration) error
	RemoteAddress() string
}

// LobReader loads the content of a stored lob when a row holding a
// handle is rendered.
type LobReader interface {
	ReadLob(ctx context.Context, id uint64) ([]byte, error)
}

// ConnPacketWriter writes packets into the out buffer of a connection
// and flushes it past a threshold. The sequence id of the packet
// header lives here.
type ConnPacketWriter struct {
	conn Conn

	sequenceId uint8

	//the bytes in the outbuffer
	bytesInOutBuffer int
}

var _ PacketWriter = (*ConnPacketWriter)(nil)

func NewConnPacketWriter(conn Conn) *ConnPacketWriter {
	return &ConnPacketWriter{conn: conn}
}

func (cw *ConnPacketWriter) GetSequenceId() uint8 {
	return cw.sequenceId
}

func (cw *ConnPacketWriter) AddSequenceId(a uint8) {
	cw.sequenceId += a
}

func (cw *ConnPacketWriter) SetSequenceID(value uint8) {
	cw.sequenceId = value
}

func (cw *ConnPacketWriter) RemoteAddress() string {
	return cw.conn.RemoteAddress()
}

// WritePacket splits the payload into packets of at most
// MaxPayloadSize bytes. If the size of the last packet is exactly
// MaxPayloadSize, a zero-size payload is sent after it.
func (cw *ConnPacketWriter) WritePacket(payload []byte) error {
	var i, curLen int
	length := len(payload)
	for ; i < length; i += curLen {
		curLen = Min(int(MaxPayloadSize), length-i)
		if err := cw.writeFrame(payload[i : i+curLen]); err != nil {
			return err
		}
		if i+curLen == length && curLen == int(MaxPayloadSize) {
			if err := cw.writeFrame(nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeFrame writes one header plus payload into the out buffer. The
// header carries the payload length in its low three bytes and the
// sequence id in the fourth.
func (cw *ConnPacketWriter) writeFrame(payload []byte) error {
	outbuf := cw.conn.OutBuf()
	n := HeaderLengthOfTheProtocol + len(payload)
	outbuf.Grow(n)
	buf := outbuf.RawBuf()
	writeIdx := outbuf.GetWriteIndex()
	binary.LittleEndian.PutUint32(buf[writeIdx:], uint32(len(payload)))
	buf[writeIdx+3] = cw.GetSequenceId()
	copy(buf[writeIdx+HeaderLengthOfTheProtocol:], payload)
	outbuf.SetWriteIndex(writeIdx + n)
	cw.AddSequenceId(1)
	cw.bytesInOutBuffer += n
	if cw.bytesInOutBuffer >= untilBytesInOutbufToFlush {
		return cw.Flush()
	}
	return nil
}

func (cw *ConnPacketWriter) Flush() error {
	if cw.bytesInOutBuffer == 0 {
		return nil
	}
	if err := cw.conn.Flush(0); err != nil {
		return err
	}
	cw.bytesInOutBuffer = 0
	return nil
}

// MysqlProtocolImpl encodes the response packets of the text protocol
// and hands them to a PacketWriter.
type MysqlProtocolImpl struct {
	//joint capability shared by the server and the client
	capability uint32

	writer PacketWriter

	io IOPackage

	//the buffer for encoding the length encoded integers
	lenEncBuffer []byte

	//the buffer for converting the values into the strings
	strconvBuffer []byte
}

func NewMysqlClientProtocol(writer PacketWriter) *MysqlProtocolImpl {
	return &MysqlProtocolImpl{
		capability:    DefaultCapability,
		writer:        writer,
		io:            NewIOPackage(true),
		lenEncBuffer:  make([]byte, 0, 10),
		strconvBuffer: make([]byte, 0, 16*1024),
	}
}

func (mp *MysqlProtocolImpl) GetCapability() uint32 {
	return mp.capability
}

func (mp *MysqlProtocolImpl) SetCapability(cap uint32) {
	mp.capability = cap
}

// read an int with length encoded from the buffer at the position
// return the int ; position + the count of bytes for length encoded (1 or 3 or 4 or 9)
func (mp *MysqlProtocolImpl) readIntLenEnc(data []byte, pos int) (uint64, int, bool) {
	if pos >= len(data) {
		return 0, 0, false
	}
	switch data[pos] {
	case 0xfb:
		//zero, one byte
		return 0, pos + 1, true
	case 0xfc:
		// int in two bytes
		if pos+2 >= len(data) {
			return 0, 0, false
		}
		value := uint64(data[pos+1]) |
			uint64(data[pos+2])<<8
		return value, pos + 3, true
	case 0xfd:
		// int in three bytes
		if pos+3 >= len(data) {
			return 0, 0, false
		}
		value := uint64(data[pos+1]) |
			uint64(data[pos+2])<<8 |
			uint64(data[pos+3])<<16
		return value, pos + 4, true
	case 0xfe:
		// int in eight bytes
		if pos+8 >= len(data) {
			return 0, 0, false
		}
		value := uint64(data[pos+1]) |
			uint64(data[pos+2])<<8 |
			uint64(data[pos+3])<<16 |
			uint64(data[pos+4])<<24 |
			uint64(data[pos+5])<<32 |
			uint64(data[pos+6])<<40 |
			uint64(data[pos+7])<<48 |
			uint64(data[pos+8])<<56
		return value, pos + 9, true
	}
	// 0-250
	return uint64(data[pos]), pos + 1, true
}

// write an int with length encoded into the buffer at the position
// return position + the count of bytes for length encoded (1 or 3 or 4 or 9)
func (mp *MysqlProtocolImpl) writeIntLenEnc(data []byte, pos int, value uint64) int {
	switch {
	case value < 251:
		data[pos] = byte(value)
		return pos + 1
	case value < (1 << 16):
		data[pos] = 0xfc
		data[pos+1] = byte(value)
		data[pos+2] = byte(value >> 8)
		return pos + 3
	case value < (1 << 24):
		data[pos] = 0xfd
		data[pos+1] = byte(value)
		data[pos+2] = byte(value >> 8)
		data[pos+3] = byte(value >> 16)
		return pos + 4
	default:
		data[pos] = 0xfe
		data[pos+1] = byte(value)
		data[pos+2] = byte(value >> 8)
		data[pos+3] = byte(value >> 16)
		data[pos+4] = byte(value >> 24)
		data[pos+5] = byte(value >> 32)
		data[pos+6] = byte(value >> 40)
		data[pos+7] = byte(value >> 48)
		data[pos+8] = byte(value >> 56)
		return pos + 9
	}
}

func (mp *MysqlProtocolImpl) append(data []byte, elems ...byte) []byte {
	return append(data, elems...)
}

// append an int with length encoded to the buffer
// return the buffer
func (mp *MysqlProtocolImpl) appendIntLenEnc(data []byte, value uint64) []byte {
	mp.lenEncBuffer = mp.lenEncBuffer[:9]
	pos := mp.writeIntLenEnc(mp.lenEncBuffer, 0, value)
	return mp.append(data, mp.lenEncBuffer[:pos]...)
}

// read the count of bytes from the buffer at the position
// return bytes slice ; position + count ; true - succeeded or false - failed
func (mp *MysqlProtocolImpl) readCountOfBytes(data []byte, pos int, count int) ([]byte, int, bool) {
	if pos+count-1 >= len(data) {
		return nil, 0, false
	}
	return data[pos : pos+count], pos + count, true
}

// write the count of bytes into the buffer at the position
// return position + the number of bytes
func (mp *MysqlProtocolImpl) writeCountOfBytes(data []byte, pos int, value []byte) int {
	pos += copy(data[pos:], value)
	return pos
}

// append the count of bytes to the buffer
// return the buffer
func (mp *MysqlProtocolImpl) appendCountOfBytes(data []byte, value []byte) []byte {
	return mp.append(data, value...)
}

// read a string with fixed length from the buffer at the position
// return string ; position + length ; true - succeeded or false - failed
func (mp *MysqlProtocolImpl) readStringFix(data []byte, pos int, length int) (string, int, bool) {
	var sdata []byte
	var ok bool
	sdata, pos, ok = mp.readCountOfBytes(data, pos, length)
	if !ok {
		return "", 0, false
	}
	return string(sdata), pos, true
}

// write a string with fixed length into the buffer at the position
// return pos + string.length
func (mp *MysqlProtocolImpl) writeStringFix(data []byte, pos int, value string, length int) int {
	pos += copy(data[pos:], value[0:length])
	return pos
}

// append a string with fixed length to the buffer
// return the buffer
func (mp *MysqlProtocolImpl) appendStringFix(data []byte, value string, length int) []byte {
	return mp.append(data, hack.StringToSlice(value[:length])...)
}

// read a string with length encoded from the buffer at the position
// return string ; the next position ; true - succeeded or false - failed
func (mp *MysqlProtocolImpl) readStringLenEnc(data []byte, pos int) (string, int, bool) {
	var value uint64
	var ok bool
	value, pos, ok = mp.readIntLenEnc(data, pos)
	if !ok {
		return "", 0, false
	}
	sLength := int(value)
	if pos+sLength-1 >= len(data) {
		return "", 0, false
	}
	return string(data[pos : pos+sLength]), pos + sLength, true
}

// write a string with length encoded into the buffer at the position
// return the next position
func (mp *MysqlProtocolImpl) writeStringLenEnc(data []byte, pos int, value string) int {
	pos = mp.writeIntLenEnc(data, pos, uint64(len(value)))
	return mp.writeStringFix(data, pos, value, len(value))
}

// append a string with length encoded to the buffer
// return the buffer
func (mp *MysqlProtocolImpl) appendStringLenEnc(data []byte, value string) []byte {
	data = mp.appendIntLenEnc(data, uint64(len(value)))
	return mp.appendStringFix(data, value, len(value))
}

// append bytes with length encoded to the buffer
// return the buffer
func (mp *MysqlProtocolImpl) appendCountOfBytesLenEnc(data []byte, value []byte) []byte {
	data = mp.appendIntLenEnc(data, uint64(len(value)))
	return mp.appendCountOfBytes(data, value)
}

// append an int64 value converted to string with length encoded to the buffer
// return the buffer
func (mp *MysqlProtocolImpl) appendStringLenEncOfInt64(data []byte, value int64) []byte {
	mp.strconvBuffer = mp.strconvBuffer[:0]
	mp.strconvBuffer = strconv.AppendInt(mp.strconvBuffer, value, 10)
	return mp.appendCountOfBytesLenEnc(data, mp.strconvBuffer)
}

// append an uint64 value converted to string with length encoded to the buffer
// return the buffer
func (mp *MysqlProtocolImpl) appendStringLenEncOfUint64(data []byte, value uint64) []byte {
	mp.strconvBuffer = mp.strconvBuffer[:0]
	mp.strconvBuffer = strconv.AppendUint(mp.strconvBuffer, value, 10)
	return mp.appendCountOfBytesLenEnc(data, mp.strconvBuffer)
}

// append a float64 value converted to string with length encoded to the buffer
// return the buffer
func (mp *MysqlProtocolImpl) appendStringLenEncOfFloat64(data []byte, value float64, bitSize int) []byte {
	mp.strconvBuffer = mp.strconvBuffer[:0]
	if !math.IsInf(value, 0) {
		mp.strconvBuffer = strconv.AppendFloat(mp.strconvBuffer, value, 'f', -1, bitSize)
	} else {
		if math.IsInf(value, 1) {
			mp.strconvBuffer = append(mp.strconvBuffer, []byte("+Infinity")...)
		} else {
			mp.strconvBuffer = append(mp.strconvBuffer, []byte("-Infinity")...)
		}
	}
	return mp.appendCountOfBytesLenEnc(data, mp.strconvBuffer)
}

func (mp *MysqlProtocolImpl) appendUint8(data []byte, e uint8) []byte {
	return mp.append(data, e)
}

// make the column information with the format of column definition41
func (mp *MysqlProtocolImpl) makeColumnDefinition41Payload(column *MysqlColumn, cmd int) []byte {
	space := 8*9 + //lenenc bytes of 8 fields
		21 + //fixed-length fields
		3 + // catalog "def"
		len(column.Schema()) +
		len(column.Table()) +
		len(column.OrgTable()) +
		len(column.Name()) +
		len(column.OrgName()) +
		len(column.DefaultValue()) +
		100 // for safe

	data := make([]byte, space)
	pos := 0

	//lenenc_str     catalog(always "def")
	pos = mp.writeStringLenEnc(data, pos, "def")

	//lenenc_str     schema
	pos = mp.writeStringLenEnc(data, pos, column.Schema())

	//lenenc_str     table
	pos = mp.writeStringLenEnc(data, pos, column.Table())

	//lenenc_str     org_table
	pos = mp.writeStringLenEnc(data, pos, column.OrgTable())

	//lenenc_str     name
	pos = mp.writeStringLenEnc(data, pos, column.Name())

	//lenenc_str     org_name
	pos = mp.writeStringLenEnc(data, pos, column.OrgName())

	//lenenc_int     length of fixed-length fields [0c]
	pos = mp.io.WriteUint8(data, pos, 0x0c)

	//int<2>              character set
	pos = mp.io.WriteUint16(data, pos, column.Charset())

	//int<4>              column length
	pos = mp.io.WriteUint32(data, pos, column.Length())

	//int<1>              type
	pos = mp.io.WriteUint8(data, pos, uint8(column.ColumnType()))

	//int<2>              flags
	pos = mp.io.WriteUint16(data, pos, column.Flag())

	//int<1>              decimals
	pos = mp.io.WriteUint8(data, pos, column.Decimal())

	//int<2>              filler [00] [00]
	pos = mp.io.WriteUint16(data, pos, 0)

	if CommandType(cmd) == COM_FIELD_LIST {
		pos = mp.writeIntLenEnc(data, pos, uint64(len(column.DefaultValue())))
		pos = mp.writeCountOfBytes(data, pos, column.DefaultValue())
	}

	return data[:pos]
}

// SendColumnDefinitionPacket the server send the column definition to the client
func (mp *MysqlProtocolImpl) SendColumnDefinitionPacket(ctx context.Context, column Column, cmd int) error {
	mysqlColumn, ok := column.(*MysqlColumn)
	if !ok {
		return dberr.NewInternalError(ctx, "sendColumn need MysqlColumn")
	}

	var data []byte
	if mp.capability&CLIENT_PROTOCOL_41 != 0 {
		data = mp.makeColumnDefinition41Payload(mysqlColumn, cmd)
	}

	return mp.writer.WritePacket(data)
}

// SendColumnCountPacket makes the column count packet
func (mp *MysqlProtocolImpl) SendColumnCountPacket(count uint64) error {
	data := make([]byte, 20)
	pos := mp.writeIntLenEnc(data, 0, count)

	return mp.writer.WritePacket(data[:pos])
}

func (mp *MysqlProtocolImpl) sendColumns(ctx context.Context, columns []*MysqlColumn, cmd int, warnings, status uint16) error {
	//column_count * Protocol::ColumnDefinition packets
	for _, column := range columns {
		err := mp.SendColumnDefinitionPacket(ctx, column, cmd)
		if err != nil {
			return err
		}
	}

	//If the CLIENT_DEPRECATE_EOF client capabilities flag is not set, EOF_Packet
	if mp.capability&CLIENT_DEPRECATE_EOF == 0 {
		err := mp.SendEOFPacket(warnings, status)
		if err != nil {
			return err
		}
	}
	return nil
}

// make a OK packet
func (mp *MysqlProtocolImpl) makeOKPayload(affectedRows, lastInsertId uint64, statusFlags, warnings uint16, message string) []byte {
	data := make([]byte, 128+len(message)+10)
	pos := 0
	pos = mp.io.WriteUint8(data, pos, defines.OKHeader)
	pos = mp.writeIntLenEnc(data, pos, affectedRows)
	pos = mp.writeIntLenEnc(data, pos, lastInsertId)
	if mp.capability&CLIENT_PROTOCOL_41 != 0 {
		pos = mp.io.WriteUint16(data, pos, statusFlags)
		pos = mp.io.WriteUint16(data, pos, warnings)
	} else if mp.capability&CLIENT_TRANSACTIONS != 0 {
		pos = mp.io.WriteUint16(data, pos, statusFlags)
	}

	//string<lenenc> instead of string<EOF> in the manual of mysql
	pos = mp.writeStringLenEnc(data, pos, message)
	return data[:pos]
}

// makeOKPayloadWithEof makes the OK packet fulfilling the role of the
// EOF packet when CLIENT_DEPRECATE_EOF is on.
func (mp *MysqlProtocolImpl) makeOKPayloadWithEof(affectedRows, lastInsertId uint64, statusFlags, warnings uint16, message string) []byte {
	data := make([]byte, 128+len(message)+10)
	pos := 0
	pos = mp.io.WriteUint8(data, pos, defines.EOFHeader)
	pos = mp.writeIntLenEnc(data, pos, affectedRows)
	pos = mp.writeIntLenEnc(data, pos, lastInsertId)
	if mp.capability&CLIENT_PROTOCOL_41 != 0 {
		pos = mp.io.WriteUint16(data, pos, statusFlags)
		pos = mp.io.WriteUint16(data, pos, warnings)
	} else if mp.capability&CLIENT_TRANSACTIONS != 0 {
		pos = mp.io.WriteUint16(data, pos, statusFlags)
	}

	pos = mp.writeStringLenEnc(data, pos, message)
	return data[:pos]
}

// SendOKPacket sends the OK packet to the client
func (mp *MysqlProtocolImpl) SendOKPacket(affectedRows, lastInsertId uint64, status, warnings uint16, message string) error {
	okPkt := mp.makeOKPayload(affectedRows, lastInsertId, status, warnings, message)
	return mp.writer.WritePacket(okPkt)
}

func (mp *MysqlProtocolImpl) SendOKPacketWithEof(affectedRows, lastInsertId uint64, status, warnings uint16, message string) error {
	okPkt := mp.makeOKPayloadWithEof(affectedRows, lastInsertId, status, warnings, message)
	return mp.writer.WritePacket(okPkt)
}

// make Err packet
func (mp *MysqlProtocolImpl) makeErrPayload(errorCode uint16, sqlState, errorMessage string) []byte {
	data := make([]byte, 9+len(errorMessage))
	pos := 0
	pos = mp.io.WriteUint8(data, pos, defines.ErrHeader)
	pos = mp.io.WriteUint16(data, pos, errorCode)
	if mp.capability&CLIENT_PROTOCOL_41 != 0 {
		pos = mp.io.WriteUint8(data, pos, '#')
		if len(sqlState) < 5 {
			stuff := "      "
			sqlState += stuff[:5-len(sqlState)]
		}
		pos = mp.writeStringFix(data, pos, sqlState, 5)
	}
	pos = mp.writeStringFix(data, pos, errorMessage, len(errorMessage))
	return data[:pos]
}

// SendErrPacket sends the Error packet to the client.
//
// information from https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
func (mp *MysqlProtocolImpl) SendErrPacket(errorCode uint16, sqlState, errorMessage string) error {
	errPkt := mp.makeErrPayload(errorCode, sqlState, errorMessage)
	return mp.writer.WritePacket(errPkt)
}

// SendDbError sends an error with its mysql code and sql state when it
// is a dberr, and as an unknown error otherwise.
func (mp *MysqlProtocolImpl) SendDbError(err error) error {
	if err == nil {
		return nil
	}
	if de, ok := err.(*dberr.Error); ok {
		return mp.SendErrPacket(de.MySQLCode(), de.SqlState(), de.Error())
	}
	return mp.SendErrPacket(dberr.ER_UNKNOWN_ERROR, DefaultMySQLState, err.Error())
}

func (mp *MysqlProtocolImpl) makeEOFPayload(warnings, status uint16) []byte {
	data := make([]byte, 10)
	pos := 0
	pos = mp.io.WriteUint8(data, pos, defines.EOFHeader)
	if mp.capability&CLIENT_PROTOCOL_41 != 0 {
		pos = mp.io.WriteUint16(data, pos, warnings)
		pos = mp.io.WriteUint16(data, pos, status)
	}
	return data[:pos]
}

func (mp *MysqlProtocolImpl) SendEOFPacket(warnings, status uint16) error {
	data := mp.makeEOFPayload(warnings, status)
	return mp.writer.WritePacket(data)
}

func (mp *MysqlProtocolImpl) SendEOFPacketIf(warnings, status uint16) error {
	//If the CLIENT_DEPRECATE_EOF client capabilities flag is not set, EOF_Packet
	if mp.capability&CLIENT_DEPRECATE_EOF == 0 {
		return mp.SendEOFPacket(warnings, status)
	}
	return nil
}

// the OK or EOF packet
func (mp *MysqlProtocolImpl) sendEOFOrOkPacket(warnings, status uint16) error {
	//If the CLIENT_DEPRECATE_EOF client capabilities flag is set, OK_Packet; else EOF_Packet.
	if mp.capability&CLIENT_DEPRECATE_EOF != 0 {
		return mp.SendOKPacketWithEof(0, 0, status, 0, "")
	}
	return mp.SendEOFPacket(warnings, status)
}

// the server convert one row of the result set into the format that mysql protocol needs
func (mp *MysqlProtocolImpl) makeResultSetTextRow(ctx context.Context, data []byte, row value.Row, lobs LobReader) ([]byte, error) {
	for _, cell := range row {
		if cell == nil || cell.IsNull() {
			//NULL is sent as 0xfb
			data = mp.appendUint8(data, 0xFB)
			continue
		}

		switch v := cell.(type) {
		case value.Bool:
			if v {
				data = mp.appendStringLenEncOfInt64(data, 1)
			} else {
				data = mp.appendStringLenEncOfInt64(data, 0)
			}
		case value.Int64:
			data = mp.appendStringLenEncOfInt64(data, int64(v))
		case value.Uint64:
			data = mp.appendStringLenEncOfUint64(data, uint64(v))
		case value.Float64:
			data = mp.appendStringLenEncOfFloat64(data, float64(v), 64)
		case value.Bytes:
			data = mp.appendCountOfBytesLenEnc(data, v)
		case value.Date:
			data = mp.appendStringLenEnc(data, v.String())
		case value.Datetime:
			data = mp.appendStringLenEnc(data, v.String())
		case value.Lob:
			if !v.Stored {
				data = mp.appendCountOfBytesLenEnc(data, v.Data)
				continue
			}
			if lobs == nil {
				return nil, dberr.NewInvalidState(ctx, "no lob reader for stored lob %d", v.ID)
			}
			content, err := lobs.ReadLob(ctx, v.ID)
			if err != nil {
				return nil, err
			}
			data = mp.appendCountOfBytesLenEnc(data, content)
		default:
			return nil, dberr.NewInternalError(ctx, "unsupported value type %s in the text row", cell.Type())
		}
	}
	return data, nil
}

// SendResultSetTextRow sends one row of the result set as an independent packet
func (mp *MysqlProtocolImpl) SendResultSetTextRow(ctx context.Context, row value.Row, lobs LobReader) error {
	data, err := mp.makeResultSetTextRow(ctx, nil, row, lobs)
	if err != nil {
		return err
	}
	return mp.writer.WritePacket(data)
}

// SendResultSet sends a materialized result set to the client.
// the routine follows the article: https://dev.mysql.com/doc/internals/en/com-query-response.html
func (mp *MysqlProtocolImpl) SendResultSet(ctx context.Context, r result.Result, lobs LobReader, cmd int, warnings, status uint16) error {
	if r.Closed() {
		return dberr.NewInvalidState(ctx, "result buffer is closed")
	}
	columns := ColumnsFromResult(r)

	//A packet containing a Protocol::LengthEncodedInteger column_count
	err := mp.SendColumnCountPacket(uint64(len(columns)))
	if err != nil {
		return err
	}

	if err = mp.sendColumns(ctx, columns, cmd, warnings, status); err != nil {
		return err
	}

	//One or more ProtocolText::ResultsetRow packets, each containing column_count values
	r.Reset()
	for r.Next() {
		row := r.CurrentRow()
		if err = mp.SendResultSetTextRow(ctx, row[:r.VisibleColumnCount()], lobs); err != nil {
			return err
		}
	}

	//If the CLIENT_DEPRECATE_EOF client capabilities flag is set, OK_Packet; else EOF_Packet.
	if err = mp.sendEOFOrOkPacket(warnings, status); err != nil {
		return err
	}

	return mp.writer.Flush()
}
