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

// ddal-export loads csv files into result buffers, applies the
// requested distinct, ordering and windowing, and renders the
// materialized results back to csv. Input/output pairs are exported
// concurrently on the worker pool.
//
// usage:
//
//	ddal-export -columns "id:int,name:varchar" -in a.csv,b.csv -out a2.csv,b2.csv \
//	    [-config ddal.toml] [-distinct] [-sort "name:desc,id"] \
//	    [-offset 10] [-limit 100] [-header] [-stats]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wuce7758/openddal/pkg/common/dberr"
	"github.com/wuce7758/openddal/pkg/config"
	"github.com/wuce7758/openddal/pkg/container/value"
	"github.com/wuce7758/openddal/pkg/engine"
	"github.com/wuce7758/openddal/pkg/frontend"
	"github.com/wuce7758/openddal/pkg/logutil"
	"github.com/wuce7758/openddal/pkg/result"
	"github.com/wuce7758/openddal/pkg/sort"
)

var (
	configFile = flag.String("config", "", "toml configuration file")
	inputs     = flag.String("in", "", "input csv files, comma separated")
	outputs    = flag.String("out", "", "output csv files, one per input")
	columns    = flag.String("columns", "", "column spec, name:type pairs comma separated")
	distinct   = flag.Bool("distinct", false, "keep one row per distinct projection")
	sortSpec   = flag.String("sort", "", "sort spec, col[:desc][:nullsfirst|:nullslast] comma separated")
	offset     = flag.Int("offset", 0, "rows to skip after ordering")
	limit      = flag.Int("limit", -1, "maximum rows to keep, -1 keeps all")
	header     = flag.Bool("header", false, "inputs carry a header record, outputs get one")
	stats      = flag.Bool("stats", false, "estimate the distinct row count while loading")
)

func main() {
	flag.Parse()
	if err := run(context.Background()); err != nil {
		logutil.Error("ddal-export failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	params := &config.Parameters{}
	if *configFile != "" {
		if err := config.LoadvarsConfigFromFile(*configFile, params); err != nil {
			return err
		}
	} else {
		params.SetDefaultValues()
	}

	//before anything using the logger
	logutil.SetupLogger(&logutil.LogConfig{
		Level:      params.LogLevel,
		Format:     params.LogFormat,
		Filename:   params.LogFilename,
		MaxSize:    int(params.LogMaxSize),
		MaxDays:    int(params.LogMaxDays),
		MaxBackups: int(params.LogMaxBackups),
	})

	ins := splitList(*inputs)
	outs := splitList(*outputs)
	if len(ins) == 0 {
		flag.Usage()
		return dberr.NewBadConfig(ctx, "at least one input file is required")
	}
	if len(ins) != len(outs) {
		return dberr.NewBadConfig(ctx, "%d input files but %d output files", len(ins), len(outs))
	}
	exprs, err := parseColumns(ctx, *columns)
	if err != nil {
		return err
	}
	order, err := parseSortOrder(ctx, *sortSpec, exprs)
	if err != nil {
		return err
	}
	fieldTerm := ','
	if len(params.ExportFieldTerminator) > 0 {
		fieldTerm = []rune(params.ExportFieldTerminator)[0]
	}

	ses, err := engine.NewSession(ctx, config.NewParameterUnit(params))
	if err != nil {
		return err
	}
	defer func() {
		if err := ses.Close(ctx); err != nil {
			logutil.Warnf("close session: %v", err)
		}
	}()

	manager, err := frontend.NewExportManager(int(params.ExportConcurrency))
	if err != nil {
		return err
	}
	defer manager.Close()

	csvOpts := &frontend.CsvOptions{
		FieldTerminator: fieldTerm,
		EncloseRune:     '"',
		Terminator:      '\n',
	}
	tasks := make([]*frontend.ExportTask, len(ins))
	for i := range ins {
		r, err := loadOne(ctx, ses, exprs, order, ins[i], fieldTerm)
		if err != nil {
			return err
		}
		w, err := frontend.NewFileCSVWriter(outs[i], csvOpts)
		if err != nil {
			return err
		}
		tasks[i], err = manager.Submit(ctx, frontend.ExportJob{
			Name:    outs[i],
			Result:  r,
			Writer:  w,
			Options: frontend.ExportOptions{Header: *header, Lobs: ses},
		})
		if err != nil {
			return err
		}
	}

	failed := 0
	total := 0
	for _, task := range tasks {
		//the job already logged its own failure
		n, err := task.Wait()
		if err != nil {
			failed++
			continue
		}
		total += n
	}
	if failed > 0 {
		return dberr.NewInternalErrorNoCtx("%d of %d exports failed", failed, len(tasks))
	}
	logutil.Info("all exports done", zap.Int("files", len(tasks)), zap.Int("rows", total))
	return nil
}

// loadOne reads the whole csv file into a fresh result buffer of the
// session and finalizes it. Distinct mode has to be active before the
// first row goes in, so all knobs are applied up front.
func loadOne(ctx context.Context, ses *engine.Session, exprs []result.Expression, order *sort.Order, path string, fieldTerm rune) (*result.LocalResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := result.NewLocalResult(ses, exprs, len(exprs))
	if *distinct {
		r.SetDistinct()
	}
	if order != nil {
		r.SetSortOrder(order)
	}
	if *offset > 0 {
		r.SetOffset(*offset)
	}
	if *limit >= 0 {
		r.SetLimit(*limit)
	}
	if *stats || ses.StatsEnabled() {
		r.SetStatsEnabled()
	}

	loaded, err := frontend.LoadCSV(ctx, f, frontend.LoadOptions{
		FieldTerminator: fieldTerm,
		Header:          *header,
	}, r, exprs)
	if err != nil {
		return nil, err
	}
	r.Done()

	fields := []zap.Field{
		zap.String("file", path),
		zap.Int("loaded", loaded),
		zap.Int("rows", r.RowCount()),
	}
	if n := r.ApproxDistinctCount(); n > 0 {
		fields = append(fields, zap.Uint64("approxDistinct", n))
	}
	logutil.Info("load done", fields...)
	return r, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseColumns(ctx context.Context, spec string) ([]result.Expression, error) {
	parts := splitList(spec)
	if len(parts) == 0 {
		return nil, dberr.NewBadConfig(ctx, "a column spec like \"id:int,name:varchar\" is required")
	}
	exprs := make([]result.Expression, 0, len(parts))
	for _, part := range parts {
		name, typName, ok := strings.Cut(part, ":")
		if !ok || name == "" {
			return nil, dberr.NewBadConfig(ctx, "column %q: want name:type", part)
		}
		typ, err := parseType(typName)
		if err != nil {
			return nil, dberr.NewBadConfig(ctx, "column %q: %v", name, err)
		}
		exprs = append(exprs, frontend.NewMysqlColumn(name, typ))
	}
	return exprs, nil
}

func parseType(s string) (value.T, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bool", "boolean":
		return value.T_bool, nil
	case "int", "int64", "bigint":
		return value.T_int64, nil
	case "uint", "uint64":
		return value.T_uint64, nil
	case "float", "float64", "double":
		return value.T_float64, nil
	case "varchar", "string", "text":
		return value.T_varchar, nil
	case "date":
		return value.T_date, nil
	case "datetime", "timestamp":
		return value.T_datetime, nil
	case "lob", "blob":
		return value.T_lob, nil
	default:
		return 0, fmt.Errorf("unknown column type %q", s)
	}
}

func parseSortOrder(ctx context.Context, spec string, exprs []result.Expression) (*sort.Order, error) {
	parts := splitList(spec)
	if len(parts) == 0 {
		return nil, nil
	}
	cols := make([]int, 0, len(parts))
	flags := make([]int, 0, len(parts))
	for _, part := range parts {
		fields := strings.Split(part, ":")
		col, err := resolveColumn(ctx, fields[0], exprs)
		if err != nil {
			return nil, err
		}
		f := 0
		for _, mod := range fields[1:] {
			switch strings.ToLower(strings.TrimSpace(mod)) {
			case "asc":
			case "desc":
				f |= sort.Descending
			case "nullsfirst":
				f |= sort.NullsFirst
			case "nullslast":
				f |= sort.NullsLast
			default:
				return nil, dberr.NewBadConfig(ctx, "sort column %q: unknown modifier %q", fields[0], mod)
			}
		}
		cols = append(cols, col)
		flags = append(flags, f)
	}
	return sort.New(cols, flags)
}

// resolveColumn accepts a column name from the column spec or a
// zero-based index.
func resolveColumn(ctx context.Context, name string, exprs []result.Expression) (int, error) {
	name = strings.TrimSpace(name)
	for i, expr := range exprs {
		if expr.Alias() == name {
			return i, nil
		}
	}
	if i, err := strconv.Atoi(name); err == nil && i >= 0 && i < len(exprs) {
		return i, nil
	}
	return 0, dberr.NewBadConfig(ctx, "sort column %q is not in the column spec", name)
}
