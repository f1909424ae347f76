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

package engine

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/wuce7758/openddal/pkg/common/dberr"
	"github.com/wuce7758/openddal/pkg/config"
	"github.com/wuce7758/openddal/pkg/container/value"
	"github.com/wuce7758/openddal/pkg/logutil"
	"golang.org/x/exp/slices"
)

// Session is the execution context that owns result buffers. It
// supplies the memory budget and keeps large values out of row memory
// by staging them into its lob store. Staged lobs live until the
// session closes, result buffers never release them on their own.
type Session struct {
	id uuid.UUID
	pu *config.ParameterUnit

	mu struct {
		sync.Mutex
		store    *LobStore
		tempLobs []uint64
		closed   bool
	}
}

func NewSession(ctx context.Context, pu *config.ParameterUnit) (*Session, error) {
	if pu == nil || pu.SV == nil {
		return nil, dberr.NewBadConfig(ctx, "session needs parameters")
	}
	id, err := uuid.NewUUID()
	if err != nil {
		return nil, dberr.ConvertGoError(ctx, err)
	}
	return &Session{id: id, pu: pu}, nil
}

func (ses *Session) ID() string {
	return ses.id.String()
}

func (ses *Session) MaxMemoryRows() int {
	return int(ses.pu.SV.MaxMemoryRows)
}

func (ses *Session) FetchSize() int {
	return int(ses.pu.SV.FetchSize)
}

func (ses *Session) StatsEnabled() bool {
	return ses.pu.SV.CollectResultStats
}

// StageLob normalizes one lob value on its way into a result buffer.
// Content at or under the inline limit is copied and stays in the row;
// anything larger moves to the lob store and only the handle remains.
func (ses *Session) StageLob(ctx context.Context, lob *value.Lob) (*value.Lob, error) {
	if lob == nil {
		return nil, dberr.NewInvalidInput(ctx, "cannot stage a nil lob")
	}
	if lob.Stored {
		return lob, nil
	}
	size := int64(len(lob.Data))
	if size <= ses.pu.SV.LobInlineLimit {
		// the producer may reuse its buffer after AddRow returns
		return &value.Lob{Data: slices.Clone(lob.Data), Size: size}, nil
	}

	ses.mu.Lock()
	defer ses.mu.Unlock()
	if ses.mu.closed {
		return nil, dberr.NewInvalidState(ctx, "session is closed")
	}
	if ses.mu.store == nil {
		dir := filepath.Join(ses.pu.SV.TempDir, "lob-"+ses.id.String())
		store, err := OpenLobStore(ctx, dir)
		if err != nil {
			return nil, err
		}
		ses.mu.store = store
	}
	id, err := ses.mu.store.Put(ctx, lob.Data)
	if err != nil {
		logutil.Errorf("stage lob of %d bytes: %v", size, err)
		return nil, err
	}
	ses.mu.tempLobs = append(ses.mu.tempLobs, id)
	return &value.Lob{ID: id, Size: size, Stored: true}, nil
}

// ReadLob fetches staged lob content back from the store.
func (ses *Session) ReadLob(ctx context.Context, id uint64) ([]byte, error) {
	ses.mu.Lock()
	store := ses.mu.store
	closed := ses.mu.closed
	ses.mu.Unlock()
	if closed || store == nil {
		return nil, dberr.NewLobNotFound(ctx, id)
	}
	return store.Get(ctx, id)
}

// Close releases every lob the session staged and shuts the store.
// It is idempotent.
func (ses *Session) Close(ctx context.Context) error {
	ses.mu.Lock()
	defer ses.mu.Unlock()
	if ses.mu.closed {
		return nil
	}
	ses.mu.closed = true
	if ses.mu.store == nil {
		return nil
	}
	for _, id := range ses.mu.tempLobs {
		if err := ses.mu.store.Remove(ctx, id); err != nil {
			logutil.Warnf("release temporary lob %d: %v", id, err)
		}
	}
	ses.mu.tempLobs = nil
	return ses.mu.store.Close(ctx)
}
