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
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func Test_MinMax(t *testing.T) {
	convey.Convey("min", t, func() {
		convey.So(Min(10, 9), convey.ShouldEqual, 9)
		convey.So(Min(9, 10), convey.ShouldEqual, 9)
	})

	convey.Convey("max", t, func() {
		convey.So(Max(10, 9), convey.ShouldEqual, 10)
		convey.So(Max(9, 10), convey.ShouldEqual, 10)
	})
}

func Test_ioPackage(t *testing.T) {
	convey.Convey("little endian", t, func() {
		io := NewIOPackage(true)
		convey.So(io.IsLittleEndian(), convey.ShouldBeTrue)

		data := make([]byte, 15)
		pos := io.WriteUint8(data, 0, 0x12)
		pos = io.WriteUint16(data, pos, 0x3456)
		pos = io.WriteUint32(data, pos, 0x789abcde)
		pos = io.WriteUint64(data, pos, 0x0f1e2d3c4b5a6978)
		convey.So(pos, convey.ShouldEqual, 15)
		convey.So(data[1], convey.ShouldEqual, 0x56)
		convey.So(data[2], convey.ShouldEqual, 0x34)

		u8, pos, ok := io.ReadUint8(data, 0)
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(u8, convey.ShouldEqual, 0x12)
		u16, pos, ok := io.ReadUint16(data, pos)
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(u16, convey.ShouldEqual, 0x3456)
		u32, pos, ok := io.ReadUint32(data, pos)
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(u32, convey.ShouldEqual, 0x789abcde)
		u64, pos, ok := io.ReadUint64(data, pos)
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(u64, convey.ShouldEqual, 0x0f1e2d3c4b5a6978)
		convey.So(pos, convey.ShouldEqual, 15)
	})

	convey.Convey("big endian", t, func() {
		io := NewIOPackage(false)
		convey.So(io.IsLittleEndian(), convey.ShouldBeFalse)

		data := make([]byte, 14)
		pos := io.WriteUint16(data, 0, 0x3456)
		pos = io.WriteUint32(data, pos, 0x789abcde)
		pos = io.WriteUint64(data, pos, 0x0f1e2d3c4b5a6978)
		convey.So(pos, convey.ShouldEqual, 14)
		convey.So(data[0], convey.ShouldEqual, 0x34)
		convey.So(data[1], convey.ShouldEqual, 0x56)

		u16, pos, ok := io.ReadUint16(data, 0)
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(u16, convey.ShouldEqual, 0x3456)
		u32, pos, ok := io.ReadUint32(data, pos)
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(u32, convey.ShouldEqual, 0x789abcde)
		u64, _, ok := io.ReadUint64(data, pos)
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(u64, convey.ShouldEqual, 0x0f1e2d3c4b5a6978)
	})

	convey.Convey("short reads fail", t, func() {
		io := NewIOPackage(true)
		data := []byte{0x01}
		_, _, ok := io.ReadUint16(data, 0)
		convey.So(ok, convey.ShouldBeFalse)
		_, _, ok = io.ReadUint32(data, 0)
		convey.So(ok, convey.ShouldBeFalse)
		_, _, ok = io.ReadUint64(data, 0)
		convey.So(ok, convey.ShouldBeFalse)
		_, _, ok = io.ReadUint8(data, 1)
		convey.So(ok, convey.ShouldBeFalse)
	})
}
