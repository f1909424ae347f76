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
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/fagongzi/util/format"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/wuce7758/openddal/pkg/common/dberr"
	"github.com/wuce7758/openddal/pkg/container/value"
	"github.com/wuce7758/openddal/pkg/logutil"
	"github.com/wuce7758/openddal/pkg/result"
)

type CsvOptions struct {
	FieldTerminator rune // like: ','
	EncloseRune     rune // like: '"'
	Terminator      rune // like: '\n'
}

var CommonCsvOptions = &CsvOptions{
	FieldTerminator: ',',
	EncloseRune:     '"',
	Terminator:      '\n',
}

type CSVWriter interface {
	// WriteStrings write record as one line into csv file
	WriteStrings(record []string) error
	// FlushAndClose flush its buffer and close.
	FlushAndClose() error
}

var _ CSVWriter = (*ContentWriter)(nil)

// ContentWriter renders records into an in memory buffer and hands the
// whole content to the underlying writer on FlushAndClose.
type ContentWriter struct {
	writer io.StringWriter
	buf    *bytes.Buffer
	parser *csv.Writer
}

func NewContentWriter(writer io.StringWriter, buffer []byte) *ContentWriter {
	buf := bytes.NewBuffer(buffer)
	return &ContentWriter{
		writer: writer,
		buf:    buf,
		parser: csv.NewWriter(buf),
	}
}

// SetFieldTerminator switches the field separator, comma by default.
func (w *ContentWriter) SetFieldTerminator(fieldTerminator rune) {
	w.parser.Comma = fieldTerminator
}

func (w *ContentWriter) WriteStrings(record []string) error {
	if err := w.parser.Write(record); err != nil {
		return err
	}
	w.parser.Flush()
	return nil
}

func (w *ContentWriter) FlushAndClose() error {
	_, err := w.writer.WriteString(w.buf.String())
	return err
}

var OpenFile = os.OpenFile

var _ CSVWriter = (*FileCSVWriter)(nil)

// FileCSVWriter writes csv content into a file created on open.
// FlushAndClose writes the content and closes the file.
type FileCSVWriter struct {
	*ContentWriter
	file *os.File
}

func NewFileCSVWriter(path string, opts *CsvOptions) (*FileCSVWriter, error) {
	if opts == nil {
		opts = CommonCsvOptions
	}
	f, err := OpenFile(path, os.O_RDWR|os.O_EXCL|os.O_CREATE, os.ModePerm)
	if err != nil {
		return nil, err
	}
	content := NewContentWriter(f, nil)
	content.SetFieldTerminator(opts.FieldTerminator)
	return &FileCSVWriter{
		ContentWriter: content,
		file:          f,
	}, nil
}

func (w *FileCSVWriter) FlushAndClose() error {
	err := w.ContentWriter.FlushAndClose()
	if err1 := w.file.Close(); err == nil {
		err = err1
	}
	return err
}

// ExportOptions control the csv rendering of one result set.
type ExportOptions struct {
	//write the column aliases as the first record
	Header bool
	//text standing for NULL, \N when empty
	NullMarker string
	//resolves stored lobs while rendering
	Lobs LobReader
}

// ExportResult renders every row of r through w, restarting the scan
// from the first row. It returns the count of exported data rows, the
// header record not included. The writer stays open, callers flush
// and close it.
func ExportResult(ctx context.Context, r result.Result, w CSVWriter, opts ExportOptions) (int, error) {
	if r.Closed() {
		return 0, dberr.NewInvalidState(ctx, "result buffer is closed")
	}
	nullMarker := opts.NullMarker
	if len(nullMarker) == 0 {
		nullMarker = nullFieldMarker
	}
	n := r.VisibleColumnCount()
	if opts.Header {
		header := make([]string, n)
		for i := 0; i < n; i++ {
			header[i] = r.ColumnAlias(i)
		}
		if err := w.WriteStrings(header); err != nil {
			return 0, err
		}
	}
	r.Reset()
	exported := 0
	record := make([]string, n)
	for r.Next() {
		if err := ctx.Err(); err != nil {
			return exported, err
		}
		row := r.CurrentRow()
		for i := 0; i < n; i++ {
			field, err := formatCsvField(ctx, row[i], nullMarker, opts.Lobs)
			if err != nil {
				return exported, err
			}
			record[i] = field
		}
		if err := w.WriteStrings(record); err != nil {
			return exported, err
		}
		exported++
	}
	return exported, nil
}

func formatCsvField(ctx context.Context, cell value.Value, nullMarker string, lobs LobReader) (string, error) {
	if cell == nil || cell.IsNull() {
		return nullMarker, nil
	}
	switch v := cell.(type) {
	case value.Bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case value.Int64:
		return format.Int64ToString(int64(v)), nil
	case value.Uint64:
		return format.UInt64ToString(uint64(v)), nil
	case value.Float64:
		return strconv.FormatFloat(float64(v), 'f', -1, 64), nil
	case value.Bytes:
		return string(v), nil
	case value.Date:
		return v.String(), nil
	case value.Datetime:
		return v.String(), nil
	case value.Lob:
		if !v.Stored {
			return string(v.Data), nil
		}
		if lobs == nil {
			return "", dberr.NewInvalidState(ctx, "no lob reader for stored lob %d", v.ID)
		}
		data, err := lobs.ReadLob(ctx, v.ID)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", dberr.NewInternalError(ctx, "unsupported value type %s in the csv record", cell.Type())
	}
}

// ExportJob is one result set bound for one csv destination.
type ExportJob struct {
	//used in the log lines, usually the destination path
	Name    string
	Result  result.Result
	Writer  CSVWriter
	Options ExportOptions
}

// ExportManager runs export jobs on a bounded worker pool. Jobs on
// distinct result sets run concurrently.
type ExportManager struct {
	pool *ants.Pool
}

func NewExportManager(concurrency int) (*ExportManager, error) {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, err
	}
	return &ExportManager{pool: pool}, nil
}

// Submit schedules the job and returns its handle. The job flushes
// and closes its writer when the rendering ends.
func (m *ExportManager) Submit(ctx context.Context, job ExportJob) (*ExportTask, error) {
	task := &ExportTask{done: make(chan struct{})}
	err := m.pool.Submit(func() {
		defer close(task.done)
		task.count, task.err = ExportResult(ctx, job.Result, job.Writer, job.Options)
		if err := job.Writer.FlushAndClose(); task.err == nil {
			task.err = err
		}
		if task.err != nil {
			logutil.Error("export failed",
				zap.String("name", job.Name),
				zap.Int("rows", task.count),
				zap.Error(task.err))
			return
		}
		logutil.Info("export done",
			zap.String("name", job.Name),
			zap.Int("rows", task.count))
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Close releases the pool. Wait on outstanding tasks first.
func (m *ExportManager) Close() {
	m.pool.Release()
}

// ExportTask is the handle of one submitted job.
type ExportTask struct {
	done  chan struct{}
	count int
	err   error
}

// Wait blocks until the job ends and reports the exported row count.
func (t *ExportTask) Wait() (int, error) {
	<-t.done
	return t.count, t.err
}
