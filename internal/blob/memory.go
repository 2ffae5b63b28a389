package blob

import (
	"bytes"
	"context"
	"strconv"
	"sync"
)

// Memory is an in-process Store. Versions are monotonically increasing counters.
type Memory struct {
	mu      sync.Mutex
	objects map[string]memObject
	seq     int64
	// failures are returned (and consumed) before the next call of the given op.
	failures map[string][]error
}

type memObject struct {
	data    []byte
	version string
	message string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject), failures: make(map[string][]error)}
}

func (m *Memory) Driver() Driver { return DriverMemory }

// FailNext queues errors returned by the next calls of op ("get" or "put").
func (m *Memory) FailNext(op string, errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = append(m.failures[op], errs...)
}

func (m *Memory) popFailure(op string) error {
	q := m.failures[op]
	if len(q) == 0 {
		return nil
	}
	m.failures[op] = q[1:]
	return q[0]
}

func (m *Memory) Get(ctx context.Context, key string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.popFailure("get"); err != nil {
		return Object{}, err
	}
	o, ok := m.objects[key]
	if !ok {
		return Object{}, ErrNotFound
	}
	return Object{Key: key, Data: bytes.Clone(o.data), Version: o.version}, nil
}

func (m *Memory) Put(ctx context.Context, key string, data []byte, opts PutOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.popFailure("put"); err != nil {
		return "", err
	}
	// existing objects always carry a non-empty version
	cur := m.objects[key]
	if cur.version != opts.IfMatch {
		return "", &ConflictError{Key: key, Expected: opts.IfMatch, Current: cur.version}
	}
	m.seq++
	v := strconv.FormatInt(m.seq, 10)
	m.objects[key] = memObject{data: bytes.Clone(data), version: v, message: opts.Message}
	return v, nil
}

// LastMessage returns the change description of the latest write to key.
func (m *Memory) LastMessage(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[key].message
}
