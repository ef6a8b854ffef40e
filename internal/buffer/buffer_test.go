package buffer_test

import (
	"testing"

	"github.com/stealthrocket/httpcraft/internal/assert"
	"github.com/stealthrocket/httpcraft/internal/buffer"
)

func TestAlign(t *testing.T) {
	assert.Equal(t, buffer.Align(0, 4096), 4096)
	assert.Equal(t, buffer.Align(1, 4096), 4096)
	assert.Equal(t, buffer.Align(4096, 4096), 4096)
	assert.Equal(t, buffer.Align(4097, 4096), 8192)
}

func TestPool(t *testing.T) {
	var pool buffer.Pool

	b := pool.Get(100)
	assert.Equal(t, b.Size(), 0)
	assert.Equal(t, cap(b.Data), buffer.DefaultSize)

	b.Data = append(b.Data, "hello"...)
	buffer.Release(&b, &pool)
	assert.Equal(t, b, (*buffer.Buffer)(nil))

	b = pool.Get(10)
	assert.Equal(t, b.Size(), 0)
	assert.Less(t, int64(9), int64(cap(b.Data)))

	large := pool.Get(buffer.MaxSize + 1)
	assert.Less(t, int64(buffer.MaxSize), int64(cap(large.Data)))
}
