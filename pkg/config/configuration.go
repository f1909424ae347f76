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

	"github.com/BurntSushi/toml"

	"github.com/wuce7758/openddal/pkg/common/dberr"
)

type ConfigurationKeyType int

const (
	ParameterUnitKey ConfigurationKeyType = 1
)

// Parameters of the result engine
type Parameters struct {
	//the maximum count of rows a result buffer may hold in memory. default: 40000
	MaxMemoryRows int64 `toml:"maxMemoryRows"`

	//large object values at or under this byte size stay inline in the row. default: 4096
	LobInlineLimit int64 `toml:"lobInlineLimit"`

	//the directory of the temporary lob store. default: ddal-tmp
	TempDir string `toml:"tempDir"`

	//default is false. true enables the distinct-value sketch on result buffers
	CollectResultStats bool `toml:"collectResultStats"`

	//advisory fetch size reported to clients. default: 0
	FetchSize int64 `toml:"fetchSize"`

	//the count of go routines running export jobs. default: 4
	ExportConcurrency int64 `toml:"exportConcurrency"`

	//field terminator of csv export. default: ,
	ExportFieldTerminator string `toml:"exportFieldTerminator"`

	//default is 'info'. the level of log.
	LogLevel string `toml:"logLevel"`

	//default is 'console'. the format of log.
	LogFormat string `toml:"logFormat"`

	//default is ''. the file
	LogFilename string `toml:"logFilename"`

	//default is 512MB. the maximum of log file size
	LogMaxSize int64 `toml:"logMaxSize"`

	//default is 0. the maximum days of log file to be kept
	LogMaxDays int64 `toml:"logMaxDays"`

	//default is 0. the maximum numbers of log file to be retained
	LogMaxBackups int64 `toml:"logMaxBackups"`
}

// SetDefaultValues fills the zero fields with their defaults.
func (sv *Parameters) SetDefaultValues() {
	if sv.MaxMemoryRows == 0 {
		sv.MaxMemoryRows = 40000
	}
	if sv.LobInlineLimit == 0 {
		sv.LobInlineLimit = 4096
	}
	if sv.TempDir == "" {
		sv.TempDir = "ddal-tmp"
	}
	if sv.ExportConcurrency == 0 {
		sv.ExportConcurrency = 4
	}
	if sv.ExportFieldTerminator == "" {
		sv.ExportFieldTerminator = ","
	}
	if sv.LogLevel == "" {
		sv.LogLevel = "info"
	}
	if sv.LogFormat == "" {
		sv.LogFormat = "console"
	}
	if sv.LogMaxSize == 0 {
		sv.LogMaxSize = 512
	}
}

// Validate reports the first invalid parameter.
func (sv *Parameters) Validate(ctx context.Context) error {
	if sv.MaxMemoryRows <= 0 {
		return dberr.NewBadConfig(ctx, "maxMemoryRows must be positive, got %d", sv.MaxMemoryRows)
	}
	if sv.LobInlineLimit < 0 {
		return dberr.NewBadConfig(ctx, "lobInlineLimit must not be negative, got %d", sv.LobInlineLimit)
	}
	if sv.ExportConcurrency <= 0 {
		return dberr.NewBadConfig(ctx, "exportConcurrency must be positive, got %d", sv.ExportConcurrency)
	}
	if sv.FetchSize < 0 {
		return dberr.NewBadConfig(ctx, "fetchSize must not be negative, got %d", sv.FetchSize)
	}
	return nil
}

// LoadvarsConfigFromFile decodes the toml file over the defaults.
func LoadvarsConfigFromFile(fname string, params *Parameters) error {
	params.SetDefaultValues()
	if _, err := toml.DecodeFile(fname, params); err != nil {
		return dberr.NewBadConfig(context.TODO(), "decode %s: %v", fname, err)
	}
	return params.Validate(context.TODO())
}

type ParameterUnit struct {
	SV *Parameters
}

func NewParameterUnit(sv *Parameters) *ParameterUnit {
	return &ParameterUnit{
		SV: sv,
	}
}

// GetParameterUnit gets the configuration from the context.
func GetParameterUnit(ctx context.Context) *ParameterUnit {
	pu := ctx.Value(ParameterUnitKey).(*ParameterUnit)
	if pu == nil {
		panic("parameter unit is invalid")
	}
	return pu
}
