package blob

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore проверяет общий контракт Store: not found, create-only, обновление по версии, конфликт.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "dir/table.xlsx")
	assert.ErrorIs(t, err, ErrNotFound)

	v1, err := s.Put(ctx, "dir/table.xlsx", []byte("one"), PutOptions{Message: "create"})
	require.NoError(t, err)
	assert.NotEmpty(t, v1)

	// повторное создание без версии — конфликт
	_, err = s.Put(ctx, "dir/table.xlsx", []byte("again"), PutOptions{})
	assert.ErrorIs(t, err, ErrConflict)

	obj, err := s.Get(ctx, "dir/table.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), obj.Data)
	assert.Equal(t, v1, obj.Version)

	v2, err := s.Put(ctx, "dir/table.xlsx", []byte("two"), PutOptions{IfMatch: v1})
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)

	// устаревшая версия
	_, err = s.Put(ctx, "dir/table.xlsx", []byte("three"), PutOptions{IfMatch: v1})
	var ce *ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, v1, ce.Expected)
	assert.Equal(t, v2, ce.Current)

	obj, err = s.Get(ctx, "dir/table.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), obj.Data)
}

func TestMemory_Contract(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestFilesystem_Contract(t *testing.T) {
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, s)

	_, err = s.Get(context.Background(), "../escape")
	assert.Error(t, err)
	_, err = s.Put(context.Background(), "/abs", nil, PutOptions{})
	assert.Error(t, err)
}

func TestMemory_FailNext(t *testing.T) {
	m := NewMemory()
	boom := Transient("get", errors.New("503"))
	m.FailNext("get", boom)

	_, err := m.Get(context.Background(), "k")
	assert.True(t, IsTransient(err))

	_, err = m.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestErrors_Classification(t *testing.T) {
	err := error(&ConflictError{Key: "k"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.False(t, IsTransient(err))

	wrapped := Transient("put", context.DeadlineExceeded)
	assert.True(t, IsTransient(wrapped))
	assert.ErrorIs(t, wrapped, context.DeadlineExceeded)
}
