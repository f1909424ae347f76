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

package logutil

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/wuce7758/openddal/pkg/common/dberr"
)

// LogConfig describes the process logger. The zero value logs to the
// console at info level.
type LogConfig struct {
	Level      string
	Format     string
	Filename   string
	MaxSize    int
	MaxDays    int
	MaxBackups int
}

type ZapSink struct {
	enc zapcore.Encoder
	out zapcore.WriteSyncer
}

var globalLogger atomic.Value // *zap.Logger

// SetupLogger builds the global logger from conf. Call it once at
// process start, before any package logs.
func SetupLogger(conf *LogConfig) *zap.Logger {
	var cores []zapcore.Core
	level := conf.getLevel()
	for _, sink := range conf.getSinks() {
		cores = append(cores, zapcore.NewCore(sink.enc, sink.out, level))
	}
	logger := zap.New(zapcore.NewTee(cores...), conf.getOptions()...)
	globalLogger.Store(logger)
	return logger
}

// GetGlobalLogger returns the logger built by SetupLogger, setting up a
// console logger on first use when no setup has happened.
func GetGlobalLogger() *zap.Logger {
	if l, ok := globalLogger.Load().(*zap.Logger); ok {
		return l
	}
	return SetupLogger(&LogConfig{Level: "info", Format: "console"})
}

func (cfg *LogConfig) getLevel() zap.AtomicLevel {
	if cfg.Level == "" {
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		panic(dberr.NewBadConfig(context.TODO(), "log level %s: %v", cfg.Level, err))
	}
	return zap.NewAtomicLevelAt(level)
}

func (cfg *LogConfig) getOptions() []zap.Option {
	return []zap.Option{zap.AddStacktrace(zapcore.FatalLevel), zap.AddCaller()}
}

func (cfg *LogConfig) getSinks() []ZapSink {
	var sinks []ZapSink
	sinks = append(sinks, ZapSink{cfg.getEncoder(), cfg.getSyncer()})
	return sinks
}

func (cfg *LogConfig) getSyncer() zapcore.WriteSyncer {
	if cfg.Filename == "" {
		return getConsoleSyncer()
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxDays,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
		Compress:   false,
	})
}

func (cfg *LogConfig) getEncoder() zapcore.Encoder {
	return getLoggerEncoder(cfg.Format)
}

func getConsoleSyncer() zapcore.WriteSyncer {
	stdout, _, err := zap.Open("stderr")
	if err != nil {
		panic(err)
	}
	return stdout
}

func getLoggerEncoder(format string) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	switch format {
	case "json", "":
		return zapcore.NewJSONEncoder(encoderConfig)
	case "console":
		return zapcore.NewConsoleEncoder(encoderConfig)
	default:
		panic(dberr.NewInternalError(context.TODO(), "unsupported log format: %s", format))
	}
}
