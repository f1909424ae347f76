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
	"context"
	"io"
	"strconv"

	"github.com/fagongzi/util/format"
	"github.com/matrixorigin/simdcsv"

	"github.com/wuce7758/openddal/pkg/common/dberr"
	"github.com/wuce7758/openddal/pkg/container/value"
	"github.com/wuce7758/openddal/pkg/result"
)

type CSVReader interface {
	ReadLine() ([]string, error)
	Close()
}

// BatchReadRows is the record batch one simdcsv Read call fills.
const BatchReadRows = 4000

// ContentReader parses csv content in batches and hands it out line
// by line. ReadLine returns a nil record at the end of the content.
type ContentReader struct {
	ctx     context.Context
	idx     int
	length  int
	content [][]string

	reader *simdcsv.Reader
	raw    io.ReadCloser
}

func NewContentReader(ctx context.Context, reader *simdcsv.Reader, raw io.ReadCloser) *ContentReader {
	return &ContentReader{
		ctx:     ctx,
		content: make([][]string, BatchReadRows),
		reader:  reader,
		raw:     raw,
	}
}

func (s *ContentReader) ReadLine() ([]string, error) {
	if s.idx == s.length && s.reader != nil {
		var cnt int
		var err error
		s.content, cnt, err = s.reader.Read(BatchReadRows, s.ctx, s.content)
		if err != nil {
			return nil, err
		}
		if cnt < BatchReadRows {
			//the simdcsv Close is an empty op, closing the raw reader ends the parse
			s.reader = nil
			s.raw.Close()
			s.raw = nil
		}
		s.idx = 0
		s.length = cnt
	}
	if s.idx < s.length {
		idx := s.idx
		s.idx++
		return s.content[idx], nil
	}
	return nil, nil
}

func (s *ContentReader) Close() {
	if s.raw != nil {
		s.raw.Close()
		s.raw = nil
	}
	s.reader = nil
	capLen := cap(s.content)
	s.content = s.content[:capLen]
	for idx := range s.content {
		s.content[idx] = nil
	}
}

// NewCSVReader wraps a raw reader with the batched csv parser. The
// raw reader is closed when the content ends or on Close.
func NewCSVReader(ctx context.Context, raw io.ReadCloser, fieldTerminator rune) CSVReader {
	simdCsvReader := simdcsv.NewReaderWithOptions(raw,
		fieldTerminator,
		'#',
		true,
		true)

	return NewContentReader(ctx, simdCsvReader, raw)
}

// LoadOptions control the csv ingestion.
type LoadOptions struct {
	//field separator of the input, comma when zero
	FieldTerminator rune
	//the first record carries column names and is skipped
	Header bool
}

// nullFieldMarker is the \N convention of mysqldump and LOAD DATA.
const nullFieldMarker = `\N`

// LoadCSV reads csv records and pushes them into a result buffer, one
// row per record converted cell by cell following the column types of
// exprs. It returns the count of loaded rows. The buffer's own limits
// still apply, a full buffer fails the load.
func LoadCSV(ctx context.Context, rd io.Reader, opts LoadOptions, tgt result.Target, exprs []result.Expression) (int, error) {
	if opts.FieldTerminator == 0 {
		opts.FieldTerminator = CommonCsvOptions.FieldTerminator
	}
	raw, ok := rd.(io.ReadCloser)
	if !ok {
		raw = io.NopCloser(rd)
	}
	reader := NewCSVReader(ctx, raw, opts.FieldTerminator)
	defer reader.Close()

	loaded := 0
	lineNo := 0
	for {
		if err := ctx.Err(); err != nil {
			return loaded, err
		}
		record, err := reader.ReadLine()
		if err != nil {
			return loaded, err
		}
		if record == nil {
			break
		}
		lineNo++
		if lineNo == 1 && opts.Header {
			continue
		}
		if len(record) != len(exprs) {
			return loaded, dberr.NewInvalidInput(ctx, "line %d has %d fields, want %d", lineNo, len(record), len(exprs))
		}
		row := make(value.Row, len(exprs))
		for i, field := range record {
			cell, err := convertField(ctx, field, exprs[i], lineNo)
			if err != nil {
				return loaded, err
			}
			row[i] = cell
		}
		if err := tgt.AddRow(ctx, row); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

// convertField turns one csv field into the typed cell of its column.
// \N is NULL; an empty field of a nullable non-text column is NULL too.
func convertField(ctx context.Context, field string, expr result.Expression, line int) (value.Value, error) {
	if field == nullFieldMarker {
		if !expr.Nullable() {
			return nil, dberr.NewInvalidInput(ctx, "line %d: column %s does not take null", line, expr.ColumnName())
		}
		return value.Null{}, nil
	}
	if len(field) == 0 && expr.Nullable() && expr.Type() != value.T_varchar && expr.Type() != value.T_lob {
		return value.Null{}, nil
	}
	switch expr.Type() {
	case value.T_bool:
		b, err := strconv.ParseBool(field)
		if err != nil {
			return nil, convertError(ctx, field, expr, line)
		}
		return value.Bool(b), nil
	case value.T_int64:
		v, err := format.ParseStringInt64(field)
		if err != nil {
			return nil, convertError(ctx, field, expr, line)
		}
		return value.Int64(v), nil
	case value.T_uint64:
		v, err := format.ParseStringUint64(field)
		if err != nil {
			return nil, convertError(ctx, field, expr, line)
		}
		return value.Uint64(v), nil
	case value.T_float64:
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, convertError(ctx, field, expr, line)
		}
		return value.Float64(v), nil
	case value.T_date:
		d, err := value.ParseDate(field)
		if err != nil {
			return nil, convertError(ctx, field, expr, line)
		}
		return d, nil
	case value.T_datetime:
		dt, err := value.ParseDatetime(field)
		if err != nil {
			return nil, convertError(ctx, field, expr, line)
		}
		return dt, nil
	case value.T_lob:
		data := []byte(field)
		return value.Lob{Data: data, Size: int64(len(data))}, nil
	default:
		return value.Bytes(field), nil
	}
}

func convertError(ctx context.Context, field string, expr result.Expression, line int) *dberr.Error {
	return dberr.NewInvalidInput(ctx, "line %d: cannot parse %q as %s", line, field, expr.Type())
}
