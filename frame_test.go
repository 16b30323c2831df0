package framegrab

import (
	"testing"

	"go.viam.com/test"
)

func TestFrameReleaseOnce(t *testing.T) {
	cam := &scriptedCamera{}
	pool := NewBufferPool()
	frame := newFrame(0, monoBuffer(7), cam, pool)
	test.That(t, pool.InUse(), test.ShouldBeTrue)

	test.That(t, frame.Release(), test.ShouldBeNil)
	test.That(t, pool.InUse(), test.ShouldBeFalse)
	test.That(t, len(cam.requeuedBuffers()), test.ShouldEqual, 1)

	// A second release is rejected and does not touch the pool or the
	// hardware ring again.
	test.That(t, frame.Release(), test.ShouldBeError, ErrReleased)
	test.That(t, len(cam.requeuedBuffers()), test.ShouldEqual, 1)
}

func TestFrameUseAfterRelease(t *testing.T) {
	cam := &scriptedCamera{}
	pool := NewBufferPool()
	frame := newFrame(3, monoBuffer(7), cam, pool)
	test.That(t, frame.Release(), test.ShouldBeNil)

	_, err := frame.Image()
	test.That(t, err, test.ShouldBeError, ErrReleased)
	_, err = frame.FrameID()
	test.That(t, err, test.ShouldBeError, ErrReleased)

	// The sequence index is plain data and stays readable.
	test.That(t, frame.SequenceIndex(), test.ShouldEqual, 3)
}

func TestFrameImageIdempotent(t *testing.T) {
	cam := &scriptedCamera{}
	pool := NewBufferPool()
	frame := newFrame(0, monoBuffer(7), cam, pool)
	defer func() {
		test.That(t, frame.Release(), test.ShouldBeNil)
	}()

	first, err := frame.Image()
	test.That(t, err, test.ShouldBeNil)
	second, err := frame.Image()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, second.Bytes(), test.ShouldResemble, first.Bytes())
}
