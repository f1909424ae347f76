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

// IOPackage reads and writes the fixed-width integers of the wire.
type IOPackage interface {
	// WriteUint8 writes an uint8 into the buffer at the position
	// returns position + 1
	WriteUint8([]byte, int, uint8) int

	// WriteUint16 writes an uint16 into the buffer at the position
	// returns position + 2
	WriteUint16([]byte, int, uint16) int

	// WriteUint32 writes an uint32 into the buffer at the position
	// returns position + 4
	WriteUint32([]byte, int, uint32) int

	// WriteUint64 writes an uint64 into the buffer at the position
	// returns position + 8
	WriteUint64([]byte, int, uint64) int

	// ReadUint8 reads an uint8 from the buffer at the position
	// returns uint8 value ; position+1 ; true - succeeded or false - failed
	ReadUint8([]byte, int) (uint8, int, bool)

	// ReadUint16 reads an uint16 from the buffer at the position
	ReadUint16([]byte, int) (uint16, int, bool)

	// ReadUint32 reads an uint32 from the buffer at the position
	ReadUint32([]byte, int) (uint32, int, bool)

	// ReadUint64 reads an uint64 from the buffer at the position
	ReadUint64([]byte, int) (uint64, int, bool)

	// IsLittleEndian the byte order
	IsLittleEndian() bool
}

// IOPackageImpl implements the IOPackage for the mysql protocol, which
// is little endian on the wire.
type IOPackageImpl struct {
	littleEndian bool
}

func NewIOPackage(littleEndian bool) *IOPackageImpl {
	return &IOPackageImpl{
		littleEndian: littleEndian,
	}
}

func (bio *IOPackageImpl) IsLittleEndian() bool {
	return bio.littleEndian
}

func (bio *IOPackageImpl) WriteUint8(data []byte, pos int, value uint8) int {
	data[pos] = value
	return pos + 1
}

func (bio *IOPackageImpl) WriteUint16(data []byte, pos int, value uint16) int {
	if bio.littleEndian {
		data[pos] = byte(value)
		data[pos+1] = byte(value >> 8)
	} else {
		data[pos] = byte(value >> 8)
		data[pos+1] = byte(value)
	}
	return pos + 2
}

func (bio *IOPackageImpl) WriteUint32(data []byte, pos int, value uint32) int {
	if bio.littleEndian {
		data[pos] = byte(value)
		data[pos+1] = byte(value >> 8)
		data[pos+2] = byte(value >> 16)
		data[pos+3] = byte(value >> 24)
	} else {
		data[pos] = byte(value >> 24)
		data[pos+1] = byte(value >> 16)
		data[pos+2] = byte(value >> 8)
		data[pos+3] = byte(value)
	}
	return pos + 4
}

func (bio *IOPackageImpl) WriteUint64(data []byte, pos int, value uint64) int {
	if bio.littleEndian {
		for i := 0; i < 8; i++ {
			data[pos+i] = byte(value >> uint(i*8))
		}
	} else {
		for i := 0; i < 8; i++ {
			data[pos+7-i] = byte(value >> uint(i*8))
		}
	}
	return pos + 8
}

func (bio *IOPackageImpl) ReadUint8(data []byte, pos int) (uint8, int, bool) {
	if pos >= len(data) {
		return 0, 0, false
	}
	return data[pos], pos + 1, true
}

func (bio *IOPackageImpl) ReadUint16(data []byte, pos int) (uint16, int, bool) {
	if pos+1 >= len(data) {
		return 0, 0, false
	}
	if bio.littleEndian {
		return uint16(data[pos]) | uint16(data[pos+1])<<8, pos + 2, true
	}
	return uint16(data[pos])<<8 | uint16(data[pos+1]), pos + 2, true
}

func (bio *IOPackageImpl) ReadUint32(data []byte, pos int) (uint32, int, bool) {
	if pos+3 >= len(data) {
		return 0, 0, false
	}
	if bio.littleEndian {
		return uint32(data[pos]) |
			uint32(data[pos+1])<<8 |
			uint32(data[pos+2])<<16 |
			uint32(data[pos+3])<<24, pos + 4, true
	}
	return uint32(data[pos])<<24 |
		uint32(data[pos+1])<<16 |
		uint32(data[pos+2])<<8 |
		uint32(data[pos+3]), pos + 4, true
}

func (bio *IOPackageImpl) ReadUint64(data []byte, pos int) (uint64, int, bool) {
	if pos+7 >= len(data) {
		return 0, 0, false
	}
	var value uint64
	if bio.littleEndian {
		for i := 0; i < 8; i++ {
			value |= uint64(data[pos+i]) << uint(i*8)
		}
	} else {
		for i := 0; i < 8; i++ {
			value |= uint64(data[pos+7-i]) << uint(i*8)
		}
	}
	return value, pos + 8, true
}

func Min(a int, b int) int {
	if a < b {
		return a
	}
	return b
}

func Max(a int, b int) int {
	if a < b {
		return b
	}
	return a
}
