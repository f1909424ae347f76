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

package vector

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wuce7758/openddal/pkg/common/dberr"
	"github.com/wuce7758/openddal/pkg/container/value"
)

func TestVectorAppendAndRead(t *testing.T) {
	v := New(value.T_int64)
	require.NoError(t, AppendValue(v, value.Int64(7)))
	require.NoError(t, AppendValue(v, value.Null{}))
	require.NoError(t, AppendValue(v, value.Int64(-7)))

	require.Equal(t, 3, Length(v))
	require.Equal(t, value.Int64(7), ValueAt(v, 0))
	require.Equal(t, value.Null{}, ValueAt(v, 1))
	require.Equal(t, value.Int64(-7), ValueAt(v, 2))
}

func TestVectorVarchar(t *testing.T) {
	v := New(value.T_varchar)
	require.NoError(t, AppendValue(v, value.Bytes("abc")))
	require.NoError(t, AppendValue(v, nil))
	require.Equal(t, value.Bytes("abc"), ValueAt(v, 0))
	require.Equal(t, value.Null{}, ValueAt(v, 1))
}

func TestVectorLob(t *testing.T) {
	v := New(value.T_lob)
	require.NoError(t, AppendValue(v, value.Lob{Data: []byte("blob"), Size: 4}))
	got := ValueAt(v, 0)
	require.Equal(t, value.Lob{Data: []byte("blob"), Size: 4}, got)

	err := AppendValue(v, value.Lob{ID: 3, Stored: true})
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrInvalidInput))
}

func TestVectorTypeMismatch(t *testing.T) {
	v := New(value.T_int64)
	err := AppendValue(v, value.Bytes("abc"))
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrInvalidInput))
	require.Equal(t, 0, Length(v))

	v = New(value.T_varchar)
	err = AppendValue(v, value.Int64(1))
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrInvalidInput))
}

func TestVectorDateDatetime(t *testing.T) {
	d, err := value.ParseDate("2022-01-02")
	require.NoError(t, err)
	dt, err := value.ParseDatetime("2022-01-02 03:04:05")
	require.NoError(t, err)

	dv := New(value.T_date)
	require.NoError(t, AppendValue(dv, d))
	require.Equal(t, d, ValueAt(dv, 0))

	dtv := New(value.T_datetime)
	require.NoError(t, AppendValue(dtv, dt))
	require.Equal(t, dt, ValueAt(dtv, 0))
}
