package framegrab

import (
	"time"

	"github.com/pkg/errors"

	"github.com/gentlkit/framegrab/pixel"
)

// ErrTimeout is returned by Camera.NextBuffer when no frame arrived within
// the poll timeout. It is an expected outcome, not a failure; the
// acquisition loop simply moves on to its next iteration.
var ErrTimeout = errors.New("timed out waiting for a new buffer")

// PayloadType tags what a hardware buffer contains.
type PayloadType int

const (
	PayloadTypeUnknown PayloadType = iota
	PayloadTypeImage
	PayloadTypeChunkData
	PayloadTypeMultiPart
)

// Payload types that can produce a displayable frame. Everything else is
// requeued without a frame event.
var visiblePayloadTypes = map[PayloadType]bool{
	PayloadTypeImage:     true,
	PayloadTypeChunkData: true,
	PayloadTypeMultiPart: true,
}

// A RawBuffer is one hardware frame buffer on loan from the camera's ring.
// It must be given back, either through Requeue on the discard paths or by
// releasing the Frame built on top of it.
type RawBuffer struct {
	pixel.Payload

	// Complete is false when the hardware delivered a partial transfer.
	Complete    bool
	PayloadType PayloadType

	// FrameID is the hardware's own monotonically increasing frame counter.
	FrameID uint64
}

// Camera is the capability surface the acquisition loop needs from a camera
// driver. Implementations wrap a real transport layer; the fake package
// provides a synthetic one. The Acquirer treats the camera as its own for
// the duration of a run and calls Destroy exactly once, after draining.
type Camera interface {
	StartAcquisition() error
	StopAcquisition() error
	IsAcquiring() bool

	// NextBuffer blocks up to timeout for the next hardware buffer and
	// returns ErrTimeout if none arrived. Any other error is fatal to the
	// acquisition run.
	NextBuffer(timeout time.Duration) (*RawBuffer, error)

	// Requeue returns a buffer to the hardware ring without producing a
	// frame event.
	Requeue(buf *RawBuffer)

	// Destroy finalizes the camera handle and invalidates all of its
	// outstanding buffers.
	Destroy() error
}
