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
	"time"

	"github.com/wuce7758/openddal/pkg/common/dberr"
)

// Date counts days since the unix epoch. Datetime counts microseconds
// since the unix epoch. Both are UTC.
type (
	Date     int32
	Datetime int64
)

const (
	secsPerDay      = 24 * 60 * 60
	microSecsPerSec = 1000000

	dateLayout     = "2006-01-02"
	datetimeLayout = "2006-01-02 15:04:05.999999"
)

func DateFromTime(t time.Time) Date {
	secs := t.UTC().Unix()
	days := secs / secsPerDay
	if secs%secsPerDay < 0 {
		days--
	}
	return Date(days)
}

func DatetimeFromTime(t time.Time) Datetime {
	return Datetime(t.UTC().UnixMicro())
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return 0, dberr.NewInvalidInputNoCtx("invalid date value %s", s)
	}
	return DateFromTime(t), nil
}

// ParseDatetime parses a "YYYY-MM-DD hh:mm:ss" string with an optional
// fractional part of up to microsecond precision.
func ParseDatetime(s string) (Datetime, error) {
	t, err := time.ParseInLocation(datetimeLayout, s, time.UTC)
	if err != nil {
		return 0, dberr.NewInvalidInputNoCtx("invalid datetime value %s", s)
	}
	return DatetimeFromTime(t), nil
}

func (d Date) ToTime() time.Time {
	return time.Unix(int64(d)*secsPerDay, 0).UTC()
}

func (d Date) ToDatetime() Datetime {
	return Datetime(int64(d) * secsPerDay * microSecsPerSec)
}

func (d Date) Type() T      { return T_date }
func (d Date) IsNull() bool { return false }

func (d Date) String() string {
	return d.ToTime().Format(dateLayout)
}

func (d Date) Compare(o Value) int {
	if o.IsNull() {
		return 1
	}
	switch b := o.(type) {
	case Date:
		return compareOrdered(d, b)
	case Datetime:
		return compareOrdered(d.ToDatetime(), b)
	}
	panic(dberr.NewInternalErrorNoCtx("compare between %s and %s", d.Type(), o.Type()))
}

func (dt Datetime) ToTime() time.Time {
	return time.UnixMicro(int64(dt)).UTC()
}

func (dt Datetime) ToDate() Date {
	return DateFromTime(dt.ToTime())
}

func (dt Datetime) Type() T      { return T_datetime }
func (dt Datetime) IsNull() bool { return false }

func (dt Datetime) String() string {
	t := dt.ToTime()
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02 15:04:05")
	}
	return t.Format("2006-01-02 15:04:05.000000")
}

func (dt Datetime) Compare(o Value) int {
	if o.IsNull() {
		return 1
	}
	switch b := o.(type) {
	case Datetime:
		return compareOrdered(dt, b)
	case Date:
		return compareOrdered(dt, b.ToDatetime())
	}
	panic(dberr.NewInternalErrorNoCtx("compare between %s and %s", dt.Type(), o.Type()))
}
