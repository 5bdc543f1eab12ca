// Package cursor implements a query handle registry: materialised query
// results, buffered under a random handle and served in one shot.
package cursor

import (
	"crypto/rand"
	"encoding/binary"
	"sync"

	"github.com/kaedr/OgmaDB/internal/codec"
)

// Registry maps a qid to its materialised row buffer. All query results are
// materialised in full at registration time: this is a deliberate
// simplification, cursors are one-shot snapshots rather than streaming
// iterators.
type Registry struct {
	mu      sync.Mutex
	buffers map[uint64][]codec.RawRow
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{buffers: make(map[uint64][]codec.RawRow)}
}

// Register draws a uniformly random qid, rerolling on collision, and
// buffers rows under it.
func (r *Registry) Register(rows []codec.RawRow) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	qid := r.freshQID()
	r.buffers[qid] = rows
	return qid
}

// freshQID draws a random uint64, rerolling until it does not collide with
// an existing entry. Caller must hold r.mu.
func (r *Registry) freshQID() uint64 {
	for {
		qid := randomUint64()
		if _, exists := r.buffers[qid]; !exists {
			return qid
		}
	}
}

// Take removes and returns the buffered rows for qid, if present.
func (r *Registry) Take(qid uint64) ([]codec.RawRow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, ok := r.buffers[qid]
	if !ok {
		return nil, false
	}
	delete(r.buffers, qid)
	return rows, true
}

func randomUint64() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand.Read on a supported platform does not fail; if it
		// somehow does, panicking surfaces the broken environment loudly
		// rather than silently degrading collision resistance.
		panic("cursor: crypto/rand unavailable: " + err.Error())
	}
	return binary.LittleEndian.Uint64(buf[:])
}
