package framegrab

import (
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/gentlkit/framegrab/pixel"
)

// ErrReleased is returned when a Frame is used after Release, or released a
// second time. A release is never silently swallowed; the underlying buffer
// went back to the hardware ring the first time.
var ErrReleased = errors.New("frame already released")

// A Frame owns one hardware buffer from the moment the acquisition loop
// accepts it until the consumer calls Release. The consumer is the sole
// owner once it receives the frame and must eventually release it, from any
// goroutine, so the buffer can return to the hardware ring.
//
// A Frame is not safe for concurrent use; the single consumer that holds it
// must not interleave Image and Release calls.
type Frame struct {
	seq      int64
	buf      *RawBuffer
	cam      Camera
	pool     *BufferPool
	released atomic.Bool
}

func newFrame(seq int64, buf *RawBuffer, cam Camera, pool *BufferPool) *Frame {
	pool.Increment()
	return &Frame{seq: seq, buf: buf, cam: cam, pool: pool}
}

// SequenceIndex returns the acquisition loop's iteration counter at the
// moment this frame's buffer was accepted. Indices increase strictly across
// a run but may skip values: an iteration that timed out or discarded its
// buffer consumes an index without emitting a frame.
func (f *Frame) SequenceIndex() int64 {
	return f.seq
}

// FrameID returns the hardware's frame counter for the underlying buffer.
func (f *Frame) FrameID() (uint64, error) {
	if f.released.Load() {
		return 0, ErrReleased
	}
	return f.buf.FrameID, nil
}

// Image normalizes the underlying payload into an 8-bit RGB image. It may
// be called any number of times before Release and does not mutate the
// frame. A payload the normalizer cannot interpret yields
// pixel.ErrUnsupported, which is "nothing to display" rather than a
// failure.
func (f *Frame) Image() (*pixel.Image, error) {
	if f.released.Load() {
		return nil, ErrReleased
	}
	return pixel.Normalize(f.buf.Payload)
}

// Release returns the buffer to the hardware ring and marks it no longer in
// use. Release is single-use: a second call returns ErrReleased and touches
// neither the pool nor the hardware.
func (f *Frame) Release() error {
	if !f.released.CompareAndSwap(false, true) {
		return ErrReleased
	}
	buf := f.buf
	f.buf = nil
	f.pool.Decrement()
	f.cam.Requeue(buf)
	return nil
}
