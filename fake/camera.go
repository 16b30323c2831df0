// Package fake implements a synthetic camera that produces gradient frames,
// for tests and demos that need a camera without hardware attached.
package fake

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"github.com/gentlkit/framegrab"
	"github.com/gentlkit/framegrab/pixel"
)

// Camera is a framegrab.Camera producing complete, displayable gradient
// frames on every poll. It records requeue and destroy activity so
// lifecycle tests can assert on it.
type Camera struct {
	width  int
	height int
	format pixel.Format
	clock  clock.Clock

	mu        sync.Mutex
	acquiring bool
	interval  time.Duration
	nextAt    time.Time
	frameID   uint64
	requeued  int
	destroyed bool
	nextErr   error
}

// NewCamera returns a fake camera producing frames of the given size and
// format. Only Mono8 and RGB8 gradients are generated.
func NewCamera(width, height int, format pixel.Format) *Camera {
	return &Camera{
		width:  width,
		height: height,
		format: format,
		clock:  clock.New(),
	}
}

// SetClock replaces the wall clock. Must be called before the camera is
// handed to an acquirer.
func (c *Camera) SetClock(clk clock.Clock) {
	c.clock = clk
}

// SetFrameInterval paces frame production: at most one new frame per
// interval. Zero, the default, means a frame is always ready.
func (c *Camera) SetFrameInterval(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interval = d
}

// InjectError makes the next NextBuffer call fail with err, simulating a
// transport fault.
func (c *Camera) InjectError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextErr = err
}

func (c *Camera) StartAcquisition() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return errors.New("fake camera destroyed")
	}
	c.acquiring = true
	return nil
}

func (c *Camera) StopAcquisition() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.acquiring = false
	return nil
}

func (c *Camera) IsAcquiring() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acquiring
}

// NextBuffer returns the next gradient frame. When no frame is ready, the
// poll window is waited out on the camera's clock before ErrTimeout comes
// back, the way a real transport behaves.
func (c *Camera) NextBuffer(timeout time.Duration) (*framegrab.RawBuffer, error) {
	if buf, ok, err := c.tryNext(); ok {
		return buf, err
	}
	c.clock.Sleep(timeout)
	if buf, ok, err := c.tryNext(); ok {
		return buf, err
	}
	return nil, framegrab.ErrTimeout
}

func (c *Camera) tryNext() (*framegrab.RawBuffer, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nextErr != nil {
		err := c.nextErr
		c.nextErr = nil
		return nil, true, err
	}
	if !c.acquiring {
		return nil, false, nil
	}
	now := c.clock.Now()
	if c.interval > 0 && now.Before(c.nextAt) {
		return nil, false, nil
	}
	c.nextAt = now.Add(c.interval)
	id := c.frameID
	c.frameID++
	return &framegrab.RawBuffer{
		Payload:     c.gradientPayload(id),
		Complete:    true,
		PayloadType: framegrab.PayloadTypeImage,
		FrameID:     id,
	}, true, nil
}

func (c *Camera) gradientPayload(id uint64) pixel.Payload {
	components := 1
	if c.format == pixel.FormatRGB8 {
		components = 3
	}
	data := make([]byte, c.width*c.height*components)
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			v := byte((x + y + int(id)) % 256)
			base := (y*c.width + x) * components
			for ch := 0; ch < components; ch++ {
				data[base+ch] = v
			}
		}
	}
	return pixel.Payload{
		Width:      c.width,
		Height:     c.height,
		Format:     c.format,
		Components: components,
		Data:       data,
	}
}

func (c *Camera) Requeue(buf *framegrab.RawBuffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requeued++
}

func (c *Camera) Destroy() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return errors.New("fake camera destroyed twice")
	}
	c.destroyed = true
	c.acquiring = false
	return nil
}

// Requeued returns how many buffers have been returned to the ring.
func (c *Camera) Requeued() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requeued
}

// Destroyed reports whether Destroy has been called.
func (c *Camera) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}
