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

package dberr

import (
	"context"
	"fmt"
	"io"
)

const MySQLDefaultSqlState = "HY000"

const (
	// 0 - 99 is OK. They do not contain info and should not leak
	// back to the client.
	Ok    uint16 = 0
	OkMax uint16 = 99

	// Group 1: internal errors
	ErrStart    uint16 = 20100
	ErrInternal uint16 = 20101

	// Group 2: invalid input
	ErrBadConfig    uint16 = 20200
	ErrInvalidInput uint16 = 20201

	// Group 3: unexpected state and io errors
	ErrInvalidState   uint16 = 20400
	ErrResultTooLarge uint16 = 20401
	ErrLobNotFound    uint16 = 20402
	ErrUnexpectedEOF  uint16 = 20403

	// ErrEnd, the max value of the error code
	ErrEnd uint16 = 65535
)

type errorMsgItem struct {
	mysqlCode        uint16
	sqlStates        []string
	errorMsgOrFormat string
}

var errorMsgRefer = map[uint16]errorMsgItem{
	// Group 1: internal errors
	ErrStart:    {ER_UNKNOWN_ERROR, []string{MySQLDefaultSqlState}, "internal error: error code start"},
	ErrInternal: {ER_UNKNOWN_ERROR, []string{MySQLDefaultSqlState}, "internal error: %s"},

	// Group 2: invalid input
	ErrBadConfig:    {ER_UNKNOWN_ERROR, []string{MySQLDefaultSqlState}, "invalid configuration: %s"},
	ErrInvalidInput: {ER_UNKNOWN_ERROR, []string{MySQLDefaultSqlState}, "invalid input: %s"},

	// Group 3: unexpected state and io errors
	ErrInvalidState:   {ER_UNKNOWN_ERROR, []string{MySQLDefaultSqlState}, "invalid state %s"},
	ErrResultTooLarge: {ER_TOO_BIG_SELECT, []string{MySQLDefaultSqlState}, "too big result, exceeds max in-memory rows %d"},
	ErrLobNotFound:    {ER_UNKNOWN_ERROR, []string{MySQLDefaultSqlState}, "temporary lob %d not found"},
	ErrUnexpectedEOF:  {ER_UNKNOWN_ERROR, []string{MySQLDefaultSqlState}, "unexpected end of file %s"},

	// Group End: max value of the error code
	ErrEnd: {ER_UNKNOWN_ERROR, []string{MySQLDefaultSqlState}, "internal error: end of errcode code"},
}

func newError(ctx context.Context, code uint16, args ...any) *Error {
	var err *Error
	item, has := errorMsgRefer[code]
	if !has {
		panic(NewInternalError(ctx, "not exist error code: %d", code))
	}
	if len(args) == 0 {
		err = &Error{
			code:      code,
			mysqlCode: item.mysqlCode,
			message:   item.errorMsgOrFormat,
			sqlState:  item.sqlStates[0],
		}
	} else {
		err = &Error{
			code:      code,
			mysqlCode: item.mysqlCode,
			message:   fmt.Sprintf(item.errorMsgOrFormat, args...),
			sqlState:  item.sqlStates[0],
		}
	}
	return err
}

type Error struct {
	code      uint16
	mysqlCode uint16
	message   string
	sqlState  string
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) ErrorCode() uint16 {
	return e.code
}

func (e *Error) MySQLCode() uint16 {
	return e.mysqlCode
}

func (e *Error) SqlState() string {
	return e.sqlState
}

func IsDbErrCode(e error, rc uint16) bool {
	if e == nil {
		return rc == Ok
	}

	me, ok := e.(*Error)
	if !ok {
		// This is not a dberr
		return false
	}
	return me.code == rc
}

// ConvertPanicError converts a runtime panic to an internal error.
func ConvertPanicError(ctx context.Context, v interface{}) *Error {
	if e, ok := v.(*Error); ok {
		return e
	}
	return newError(ctx, ErrInternal, fmt.Sprintf("panic %v", v))
}

// ConvertGoError converts a go error into a dberr.
// Note here we must return error, because nil error
// is not the same as nil *Error.
func ConvertGoError(ctx context.Context, err error) error {
	// nil is nil
	if err == nil {
		return err
	}

	// already a dberr, return it as is
	if _, ok := err.(*Error); ok {
		return err
	}

	if err == io.EOF || err == io.ErrUnexpectedEOF {
		// if io.EOF reaches here, we believe it is not expected.
		return NewUnexpectedEOF(ctx, err.Error())
	}

	return NewInternalError(ctx, "convert go error to db error %v", err)
}

func NewInternalError(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrInternal, xmsg)
}

// NewInternalErrorNoCtx is for call sites that do not carry a context,
// value comparisons and encoders mostly.
func NewInternalErrorNoCtx(msg string, args ...any) *Error {
	return NewInternalError(context.TODO(), msg, args...)
}

func NewBadConfig(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrBadConfig, xmsg)
}

func NewInvalidInput(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrInvalidInput, xmsg)
}

func NewInvalidInputNoCtx(msg string, args ...any) *Error {
	return NewInvalidInput(context.TODO(), msg, args...)
}

func NewInvalidState(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrInvalidState, xmsg)
}

func NewResultTooLarge(ctx context.Context, maxMemoryRows int) *Error {
	return newError(ctx, ErrResultTooLarge, maxMemoryRows)
}

func NewLobNotFound(ctx context.Context, id uint64) *Error {
	return newError(ctx, ErrLobNotFound, id)
}

func NewUnexpectedEOF(ctx context.Context, msg string) *Error {
	return newError(ctx, ErrUnexpectedEOF, msg)
}
