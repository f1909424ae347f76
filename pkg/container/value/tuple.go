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

package value

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/wuce7758/openddal/pkg/common/dberr"
)

/*
 * Packer encodes a sequence of values into a single []byte so that
 * multiple columns can be used as one key. Two packed sequences are
 * byte-equal exactly when the sequences are equal value by value:
 *
 *    packer := NewPacker()
 *    packer.EncodeInt64(a)
 *    packer.EncodeBytes(b)
 *    key := packer.Bytes()
 *
 * Each value renders as a type code byte followed by a payload that
 * cannot collide with any other value of any type. Deduplication keys
 * and lob store keys are built this way.
 */

const (
	nilCode      = 0x00
	bytesCode    = 0x01
	intZeroCode  = 0x14
	float64Code  = 0x21
	falseCode    = 0x26
	trueCode     = 0x27
	int64Code    = 0x3b
	uint64Code   = 0x40
	dateCode     = 0x41
	datetimeCode = 0x42
	lobCode      = 0x48
)

var sizeLimits = []uint64{
	1<<(0*8) - 1,
	1<<(1*8) - 1,
	1<<(2*8) - 1,
	1<<(3*8) - 1,
	1<<(4*8) - 1,
	1<<(5*8) - 1,
	1<<(6*8) - 1,
	1<<(7*8) - 1,
	1<<(8*8) - 1,
}

func bisectLeft(u uint64) int {
	var n int
	for sizeLimits[n] < u {
		n++
	}
	return n
}

func adjustFloatBytes(b []byte, encode bool) {
	if (encode && b[0]&0x80 != 0x00) || (!encode && b[0]&0x80 == 0x00) {
		// Negative numbers: flip all of the bytes.
		for i := 0; i < len(b); i++ {
			b[i] = b[i] ^ 0xff
		}
	} else {
		// Positive number: flip just the sign bit.
		b[0] = b[0] ^ 0x80
	}
}

type Packer struct {
	buf []byte
}

func NewPacker() *Packer {
	return &Packer{buf: make([]byte, 0, 64)}
}

func (p *Packer) putByte(b byte) {
	p.buf = append(p.buf, b)
}

func (p *Packer) putBytes(b []byte) {
	p.buf = append(p.buf, b...)
}

func (p *Packer) putBytesNil(b []byte, i int) {
	for i >= 0 {
		p.putBytes(b[:i+1])
		p.putByte(0xFF)
		b = b[i+1:]
		i = bytes.IndexByte(b, 0x00)
	}
	p.putBytes(b)
}

// encodeBytes escapes every 0x00 in b as 0x00 0xFF and terminates the
// payload with a bare 0x00.
func (p *Packer) encodeBytes(code byte, b []byte) {
	p.putByte(code)
	if i := bytes.IndexByte(b, 0x00); i >= 0 {
		p.putBytesNil(b, i)
	} else {
		p.putBytes(b)
	}
	p.putByte(0x00)
}

// encodeInt writes intZeroCode±n followed by the n-byte big-endian
// magnitude; negative values are offset by sizeLimits[n].
func (p *Packer) encodeInt(i int64) {
	if i == 0 {
		p.putByte(intZeroCode)
		return
	}
	var scratch [8]byte
	if i > 0 {
		n := bisectLeft(uint64(i))
		p.putByte(byte(intZeroCode + n))
		binary.BigEndian.PutUint64(scratch[:], uint64(i))
		p.putBytes(scratch[8-n:])
		return
	}
	n := bisectLeft(uint64(-i))
	p.putByte(byte(intZeroCode - n))
	binary.BigEndian.PutUint64(scratch[:], uint64(i)+sizeLimits[n])
	p.putBytes(scratch[8-n:])
}

func (p *Packer) encodeUint(i uint64) {
	if i == 0 {
		p.putByte(intZeroCode)
		return
	}
	var scratch [8]byte
	n := bisectLeft(i)
	p.putByte(byte(intZeroCode + n))
	binary.BigEndian.PutUint64(scratch[:], i)
	p.putBytes(scratch[8-n:])
}

func (p *Packer) EncodeNull() {
	p.putByte(nilCode)
}

func (p *Packer) EncodeBool(b bool) {
	if b {
		p.putByte(trueCode)
		return
	}
	p.putByte(falseCode)
}

func (p *Packer) EncodeInt64(i int64) {
	p.putByte(int64Code)
	p.encodeInt(i)
}

func (p *Packer) EncodeUint64(i uint64) {
	p.putByte(uint64Code)
	p.encodeUint(i)
}

func (p *Packer) EncodeFloat64(f float64) {
	var scratch [8]byte
	p.putByte(float64Code)
	binary.BigEndian.PutUint64(scratch[:], math.Float64bits(f))
	adjustFloatBytes(scratch[:], true)
	p.putBytes(scratch[:])
}

func (p *Packer) EncodeBytes(b []byte) {
	p.encodeBytes(bytesCode, b)
}

func (p *Packer) EncodeDate(d Date) {
	p.putByte(dateCode)
	p.encodeInt(int64(d))
}

func (p *Packer) EncodeDatetime(dt Datetime) {
	p.putByte(datetimeCode)
	p.encodeInt(int64(dt))
}

// EncodeLob packs the storage handle for staged lobs and the raw
// content for inline ones.
func (p *Packer) EncodeLob(l Lob) {
	p.putByte(lobCode)
	if l.Stored {
		p.putByte(trueCode)
		p.encodeUint(l.ID)
		p.encodeInt(l.Size)
		return
	}
	p.putByte(falseCode)
	p.encodeBytes(bytesCode, l.Data)
}

func (p *Packer) EncodeValue(v Value) {
	switch x := v.(type) {
	case nil:
		p.EncodeNull()
	case Null:
		p.EncodeNull()
	case Bool:
		p.EncodeBool(bool(x))
	case Int64:
		p.EncodeInt64(int64(x))
	case Uint64:
		p.EncodeUint64(uint64(x))
	case Float64:
		p.EncodeFloat64(float64(x))
	case Bytes:
		p.EncodeBytes(x)
	case Date:
		p.EncodeDate(x)
	case Datetime:
		p.EncodeDatetime(x)
	case Lob:
		p.EncodeLob(x)
	default:
		panic(dberr.NewInternalErrorNoCtx("cannot pack value type %s", v.Type()))
	}
}

// PackRowPrefix appends the first n cells of row in tuple order.
func (p *Packer) PackRowPrefix(row Row, n int) {
	for _, v := range row[:n] {
		p.EncodeValue(v)
	}
}

// Bytes returns a copy of everything encoded so far.
func (p *Packer) Bytes() []byte {
	ret := make([]byte, len(p.buf))
	copy(ret, p.buf)
	return ret
}

func (p *Packer) Reset() {
	p.buf = p.buf[:0]
}

func (p *Packer) Close() {
	p.buf = nil
}
