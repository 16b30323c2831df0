package fake

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"github.com/gentlkit/framegrab"
	"github.com/gentlkit/framegrab/pixel"
)

func TestCameraProducesDisplayableBuffers(t *testing.T) {
	cam := NewCamera(8, 4, pixel.FormatMono8)
	test.That(t, cam.StartAcquisition(), test.ShouldBeNil)

	first, err := cam.NextBuffer(time.Millisecond)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, first.Complete, test.ShouldBeTrue)
	test.That(t, first.PayloadType, test.ShouldEqual, framegrab.PayloadTypeImage)
	test.That(t, first.Width, test.ShouldEqual, 8)
	test.That(t, first.Height, test.ShouldEqual, 4)
	test.That(t, len(first.Data), test.ShouldEqual, 32)

	second, err := cam.NextBuffer(time.Millisecond)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, second.FrameID, test.ShouldEqual, first.FrameID+1)

	img, err := pixel.Normalize(first.Payload)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Stride(), test.ShouldEqual, 24)

	test.That(t, cam.Destroy(), test.ShouldBeNil)
	test.That(t, cam.Destroy(), test.ShouldNotBeNil)
}

func TestCameraInjectedError(t *testing.T) {
	cam := NewCamera(2, 2, pixel.FormatMono8)
	test.That(t, cam.StartAcquisition(), test.ShouldBeNil)

	cam.InjectError(errors.New("cable pulled"))
	_, err := cam.NextBuffer(time.Millisecond)
	test.That(t, err, test.ShouldBeError)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cable pulled")

	// The fault is one-shot.
	_, err = cam.NextBuffer(time.Millisecond)
	test.That(t, err, test.ShouldBeNil)
}

func TestCameraHonorsPollTimeout(t *testing.T) {
	cam := NewCamera(2, 2, pixel.FormatMono8)

	// Not acquiring means no frame is ever ready; the poll window is waited
	// out before the timeout comes back.
	start := time.Now()
	_, err := cam.NextBuffer(25 * time.Millisecond)
	test.That(t, err, test.ShouldBeError, framegrab.ErrTimeout)
	test.That(t, time.Since(start), test.ShouldBeGreaterThanOrEqualTo, 25*time.Millisecond)
}

func TestCameraFrameInterval(t *testing.T) {
	mock := clock.NewMock()
	cam := NewCamera(2, 2, pixel.FormatMono8)
	cam.SetClock(mock)
	cam.SetFrameInterval(time.Second)
	test.That(t, cam.StartAcquisition(), test.ShouldBeNil)

	first, err := cam.NextBuffer(time.Millisecond)
	test.That(t, err, test.ShouldBeNil)

	// The next frame is not due for another second, so a short poll waits
	// out its window on the mock clock and then times out.
	result := make(chan error, 1)
	go func() {
		_, err := cam.NextBuffer(100 * time.Millisecond)
		result <- err
	}()
	time.Sleep(50 * time.Millisecond) // let the poll reach its wait
	mock.Add(100 * time.Millisecond)
	test.That(t, <-result, test.ShouldBeError, framegrab.ErrTimeout)

	// Once a full interval has passed, the next frame is ready immediately.
	mock.Add(900 * time.Millisecond)
	second, err := cam.NextBuffer(time.Millisecond)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, second.FrameID, test.ShouldEqual, first.FrameID+1)
}

func TestCameraWithAcquirer(t *testing.T) {
	logger := golog.NewTestLogger(t)
	cam := NewCamera(16, 8, pixel.FormatRGB8)
	acquirer, err := framegrab.New(cam, framegrab.Config{FrameRate: 200, Logger: logger})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, acquirer.Start(), test.ShouldBeNil)

	for i := 0; i < 3; i++ {
		frame := <-acquirer.Frames()
		img, err := frame.Image()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, img.Width(), test.ShouldEqual, 16)
		test.That(t, img.Height(), test.ShouldEqual, 8)
		test.That(t, frame.Release(), test.ShouldBeNil)
	}
	test.That(t, acquirer.Stats().Snapshot().NumImages, test.ShouldBeGreaterThanOrEqualTo, 3)

	acquirer.Stop()
	for frame := range acquirer.Frames() {
		test.That(t, frame.Release(), test.ShouldBeNil)
	}
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, cam.Destroyed(), test.ShouldBeTrue)
	})
}
