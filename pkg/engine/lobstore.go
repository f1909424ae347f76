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
	"encoding/binary"
	"os"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/pierrec/lz4"
	"github.com/wuce7758/openddal/pkg/common/dberr"
	"github.com/wuce7758/openddal/pkg/container/value"
)

// Lob values are stored lz4 block compressed. Incompressible data is
// stored raw behind a marker byte.
const (
	rawLobMarker = 0x00
	lz4LobMarker = 0x01
)

// LobStore stages large object values in a pebble scratch database.
// The store owns its directory and removes it on Close.
type LobStore struct {
	dir    string
	db     *pebble.DB
	lastID uint64

	mu struct {
		sync.Mutex
		closed bool
		ht     []int
	}
}

func OpenLobStore(ctx context.Context, dir string) (*LobStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, dberr.ConvertGoError(ctx, err)
	}
	s := &LobStore{dir: dir, db: db}
	s.mu.ht = make([]int, 1<<16)
	return s, nil
}

func lobKey(id uint64) []byte {
	packer := value.NewPacker()
	defer packer.Close()
	packer.EncodeUint64(id)
	return packer.Bytes()
}

// Put stores data under a fresh id. Scratch writes skip the WAL sync.
func (s *LobStore) Put(ctx context.Context, data []byte) (uint64, error) {
	id := atomic.AddUint64(&s.lastID, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mu.closed {
		return 0, dberr.NewInvalidState(ctx, "lob store is closed")
	}
	if err := s.db.Set(lobKey(id), s.compress(data), pebble.NoSync); err != nil {
		return 0, dberr.ConvertGoError(ctx, err)
	}
	return id, nil
}

func (s *LobStore) Get(ctx context.Context, id uint64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mu.closed {
		return nil, dberr.NewInvalidState(ctx, "lob store is closed")
	}
	v, closer, err := s.db.Get(lobKey(id))
	if err == pebble.ErrNotFound {
		return nil, dberr.NewLobNotFound(ctx, id)
	}
	if err != nil {
		return nil, dberr.ConvertGoError(ctx, err)
	}
	defer closer.Close()
	return uncompress(ctx, id, v)
}

func (s *LobStore) Remove(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mu.closed {
		return dberr.NewInvalidState(ctx, "lob store is closed")
	}
	if err := s.db.Delete(lobKey(id), pebble.NoSync); err != nil {
		return dberr.ConvertGoError(ctx, err)
	}
	return nil
}

// Close shuts the database and removes the scratch directory. It is
// idempotent.
func (s *LobStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mu.closed {
		return nil
	}
	s.mu.closed = true
	err := s.db.Close()
	if rmErr := os.RemoveAll(s.dir); err == nil {
		err = rmErr
	}
	return dberr.ConvertGoError(ctx, err)
}

// compress needs s.mu held, it reuses the store's hash table.
func (s *LobStore) compress(data []byte) []byte {
	bound := lz4.CompressBlockBound(len(data))
	buf := make([]byte, bound)
	n, err := lz4.CompressBlock(data, buf, s.mu.ht)
	if err != nil || n == 0 || n >= len(data) {
		out := make([]byte, 1+len(data))
		out[0] = rawLobMarker
		copy(out[1:], data)
		return out
	}
	out := make([]byte, 1+8+n)
	out[0] = lz4LobMarker
	binary.BigEndian.PutUint64(out[1:], uint64(len(data)))
	copy(out[1+8:], buf[:n])
	return out
}

func uncompress(ctx context.Context, id uint64, v []byte) ([]byte, error) {
	if len(v) == 0 {
		return nil, dberr.NewInternalError(ctx, "lob %d has an empty frame", id)
	}
	switch v[0] {
	case rawLobMarker:
		out := make([]byte, len(v)-1)
		copy(out, v[1:])
		return out, nil
	case lz4LobMarker:
		if len(v) < 1+8 {
			return nil, dberr.NewInternalError(ctx, "lob %d has a short frame", id)
		}
		size := binary.BigEndian.Uint64(v[1:])
		out := make([]byte, size)
		if _, err := lz4.UncompressBlock(v[1+8:], out); err != nil {
			return nil, dberr.ConvertGoError(ctx, err)
		}
		return out, nil
	}
	return nil, dberr.NewInternalError(ctx, "lob %d has an unknown frame marker %d", id, v[0])
}
