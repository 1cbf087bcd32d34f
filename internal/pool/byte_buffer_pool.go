// Package pool provides reusable byte buffers for serializing container images.
package pool

import (
	"io"
	"sync"
)

const (
	ImageBufferDefaultSize  = 1024 * 16       // 16KiB, enough for a metadata-only container
	ImageBufferMaxThreshold = 1024 * 1024 * 4 // 4MiB
	ChunkBufferDefaultSize  = 1024 * 4        // 4KiB
	ChunkBufferMaxThreshold = 1024 * 256      // 256KiB
)

type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps the allocated memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// MustWrite appends data, growing the buffer if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// Grow ensures the buffer can hold requiredBytes more bytes without reallocating.
//
// Small buffers grow by ImageBufferDefaultSize, larger ones by 25% of their
// capacity, and never by less than requiredBytes.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := ImageBufferDefaultSize
	if cap(bb.B) > 4*ImageBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// PutAt overwrites len(data) bytes starting at offset. Panics if the range is
// outside the current length.
func (bb *ByteBuffer) PutAt(offset int, data []byte) {
	if offset < 0 || offset+len(data) > len(bb.B) {
		panic("PutAt: range out of bounds")
	}
	copy(bb.B[offset:], data)
}

// Write appends the contents of data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a sync.Pool of ByteBuffers that refuses to retain buffers
// larger than maxThreshold.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	imageDefaultPool = NewByteBufferPool(ImageBufferDefaultSize, ImageBufferMaxThreshold)
	chunkDefaultPool = NewByteBufferPool(ChunkBufferDefaultSize, ChunkBufferMaxThreshold)
)

// GetImageBuffer retrieves a buffer for a whole container image.
func GetImageBuffer() *ByteBuffer {
	return imageDefaultPool.Get()
}

// PutImageBuffer returns an image buffer to its pool.
func PutImageBuffer(bb *ByteBuffer) {
	imageDefaultPool.Put(bb)
}

// GetChunkBuffer retrieves a buffer for reassembling entry chunks.
func GetChunkBuffer() *ByteBuffer {
	return chunkDefaultPool.Get()
}

// PutChunkBuffer returns a chunk buffer to its pool.
func PutChunkBuffer(bb *ByteBuffer) {
	chunkDefaultPool.Put(bb)
}
