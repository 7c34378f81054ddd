package server

import "sync"

// BytePool is a pool of reusable frame buffers.
// Каждое соединение берёт буфер чтения и буфер ответа на всё время жизни.
type BytePool struct {
	pool    sync.Pool
	size    int
	maxKeep int
}

// NewBytePool создаёт пул слайсов длиной size.
// Буферы, выросшие больше maxKeep, в пул не возвращаются.
func NewBytePool(size, maxKeep int) *BytePool {
	p := &BytePool{size: size, maxKeep: max(maxKeep, size)}
	p.pool.New = func() any {
		b := make([]byte, size)
		return &b
	}
	return p
}

// Get возвращает буфер длиной size (содержимое не очищается).
func (p *BytePool) Get() []byte {
	b := *p.pool.Get().(*[]byte)
	return b[:p.size]
}

// Put возвращает буфер в пул для повторного использования.
func (p *BytePool) Put(b []byte) {
	if cap(b) < p.size || cap(b) > p.maxKeep {
		return
	}
	b = b[:p.size]
	p.pool.Put(&b)
}
