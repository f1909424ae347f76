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

package config

import (
	"context"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wuce7758/openddal/pkg/common/dberr"
)

func TestParameters_SetDefaultValues(t *testing.T) {
	sv := &Parameters{}
	sv.SetDefaultValues()
	require.Equal(t, int64(40000), sv.MaxMemoryRows)
	require.Equal(t, int64(4096), sv.LobInlineLimit)
	require.Equal(t, "ddal-tmp", sv.TempDir)
	require.Equal(t, int64(4), sv.ExportConcurrency)
	require.Equal(t, ",", sv.ExportFieldTerminator)
	require.Equal(t, "info", sv.LogLevel)
	require.Equal(t, "console", sv.LogFormat)
	require.NoError(t, sv.Validate(context.Background()))

	sv = &Parameters{MaxMemoryRows: 100}
	sv.SetDefaultValues()
	require.Equal(t, int64(100), sv.MaxMemoryRows)
}

func TestParameters_Validate(t *testing.T) {
	ctx := context.Background()

	sv := &Parameters{MaxMemoryRows: -1}
	err := sv.Validate(ctx)
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrBadConfig))

	sv = &Parameters{MaxMemoryRows: 10, ExportConcurrency: -2}
	err = sv.Validate(ctx)
	require.True(t, dberr.IsDbErrCode(err, dberr.ErrBadConfig))
}

func TestLoadvarsConfigFromFile(t *testing.T) {
	fname := path.Join(t.TempDir(), "ddal.toml")
	data := `
maxMemoryRows = 128
logLevel = "debug"
exportFieldTerminator = "|"
`
	require.NoError(t, os.WriteFile(fname, []byte(data), 0644))

	sv := &Parameters{}
	require.NoError(t, LoadvarsConfigFromFile(fname, sv))
	require.Equal(t, int64(128), sv.MaxMemoryRows)
	require.Equal(t, "debug", sv.LogLevel)
	require.Equal(t, "|", sv.ExportFieldTerminator)
	// untouched keys keep their defaults
	require.Equal(t, int64(4096), sv.LobInlineLimit)

	require.Error(t, LoadvarsConfigFromFile(path.Join(t.TempDir(), "absent.toml"), &Parameters{}))
}

func TestGetParameterUnit(t *testing.T) {
	sv := &Parameters{}
	sv.SetDefaultValues()
	pu := NewParameterUnit(sv)
	ctx := context.WithValue(context.Background(), ParameterUnitKey, pu)
	require.Equal(t, pu, GetParameterUnit(ctx))
}
