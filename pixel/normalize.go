// Package pixel turns raw camera payloads into canonical 8-bit RGB images.
//
// Cameras hand back frames in whatever layout the sensor produces: mono or
// Bayer grids, interleaved RGB/BGR with or without alpha, 8 to 16 bits per
// sample. Normalize collapses all of those into one display-ready layout so
// consumers never have to branch on the sensor's format.
package pixel

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ErrUnsupported is returned by Normalize when the payload's format cannot
// be interpreted. It is a legitimate "nothing to display" outcome rather
// than a failure; vendor-custom formats land here.
var ErrUnsupported = errors.New("unsupported pixel format")

// Payload describes one raw frame as delivered by a camera: the sample
// bytes plus the format metadata needed to interpret them.
type Payload struct {
	Width      int
	Height     int
	Format     Format
	Components int
	Data       []byte
}

// Normalize converts a raw payload into an 8-bit interleaved RGB image.
//
// Samples wider than 8 bits are carried as 16-bit little-endian words and
// are downscaled with a right shift so the most significant bits survive.
// Mono and Bayer grids are broadcast into all three output channels; BGR
// orderings are swapped to RGB; alpha, when present, is dropped.
func Normalize(p Payload) (*Image, error) {
	if p.Format.IsCustom() {
		return nil, ErrUnsupported
	}
	bits, ok := p.Format.BitsPerSample()
	if !ok {
		return nil, ErrUnsupported
	}
	exponent := bits - 8

	bytesPerSample := 1
	if exponent > 0 {
		bytesPerSample = 2
	}

	switch p.Format.sampleLocation() {
	case locationMono, locationBayer:
		// One sample per pixel position; the Bayer mosaic is displayed as
		// mono rather than demosaiced.
		return normalizeSingleChannel(p, bytesPerSample, exponent)
	case locationRGB, locationRGBA, locationBGR, locationBGRA:
		swap := p.Format.sampleLocation() == locationBGR || p.Format.sampleLocation() == locationBGRA
		return normalizeInterleaved(p, bytesPerSample, exponent, swap)
	default:
		return nil, ErrUnsupported
	}
}

func normalizeSingleChannel(p Payload, bytesPerSample, exponent int) (*Image, error) {
	need := p.Width * p.Height * bytesPerSample
	if len(p.Data) < need {
		return nil, errors.Errorf("payload too short: have %d bytes, need %d", len(p.Data), need)
	}

	img := newImage(p.Width, p.Height)
	out := img.pix
	for i := 0; i < p.Width*p.Height; i++ {
		v := sampleAt(p.Data, i, bytesPerSample, exponent)
		out[3*i] = v
		out[3*i+1] = v
		out[3*i+2] = v
	}
	return img, nil
}

func normalizeInterleaved(p Payload, bytesPerSample, exponent int, swap bool) (*Image, error) {
	channels := p.Components
	if channels == 0 {
		channels, _ = p.Format.Components()
	}
	if channels < 3 {
		return nil, errors.Errorf("interleaved payload with %d components", channels)
	}
	need := p.Width * p.Height * channels * bytesPerSample
	if len(p.Data) < need {
		return nil, errors.Errorf("payload too short: have %d bytes, need %d", len(p.Data), need)
	}

	// Sample offsets of R, G, B within one pixel; alpha is never read.
	rOff, gOff, bOff := 0, 1, 2
	if swap {
		rOff, bOff = 2, 0
	}

	img := newImage(p.Width, p.Height)
	out := img.pix
	for i := 0; i < p.Width*p.Height; i++ {
		base := i * channels
		out[3*i] = sampleAt(p.Data, base+rOff, bytesPerSample, exponent)
		out[3*i+1] = sampleAt(p.Data, base+gOff, bytesPerSample, exponent)
		out[3*i+2] = sampleAt(p.Data, base+bOff, bytesPerSample, exponent)
	}
	return img, nil
}

func sampleAt(data []byte, i, bytesPerSample, exponent int) byte {
	if bytesPerSample == 1 {
		return data[i]
	}
	return byte(binary.LittleEndian.Uint16(data[2*i:]) >> uint(exponent))
}
