package buffer

import "sync"

const (
	DefaultSize = 4096
	// MaxSize is the capacity above which buffers are not returned to a pool,
	// so a single large response does not pin its memory forever.
	MaxSize = 1 << 20
)

type Buffer struct{ Data []byte }

func (buf *Buffer) Size() int64 {
	return int64(len(buf.Data))
}

type Pool struct{ pool sync.Pool }

// Get returns an empty buffer with at least size bytes of capacity.
func (p *Pool) Get(size int64) *Buffer {
	b, _ := p.pool.Get().(*Buffer)
	if b != nil {
		if int(size) <= cap(b.Data) {
			b.Data = b.Data[:0]
			return b
		}
		p.Put(b)
	}
	return New(size)
}

func (p *Pool) Put(b *Buffer) {
	if b != nil && cap(b.Data) <= MaxSize {
		p.pool.Put(b)
	}
}

func New(size int64) *Buffer {
	return &Buffer{Data: make([]byte, 0, Align(size, DefaultSize))}
}

func Release(buf **Buffer, pool *Pool) {
	if b := *buf; b != nil {
		*buf = nil
		pool.Put(b)
	}
}

func Align(size, to int64) int64 {
	if size <= 0 {
		return to
	}
	return ((size + (to - 1)) / to) * to
}
