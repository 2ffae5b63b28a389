package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableTransforms(t *testing.T) {
	rows := []string{"a", "b", "c"}

	out := Append(rows, "d")
	assert.Equal(t, []string{"a", "b", "c", "d"}, out)
	assert.Equal(t, []string{"a", "b", "c"}, rows)

	out, err := Replace(rows, 1, "B")
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "B", "c"}, out)
	assert.Equal(t, "b", rows[1])

	out, err = Remove(rows, 0)
	assert.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, out)
	assert.Equal(t, []string{"a", "b", "c"}, rows)

	for _, i := range []int{-1, 3} {
		_, err = Replace(rows, i, "x")
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		_, err = Remove(rows, i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	}
}
