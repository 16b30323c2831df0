// Package main streams frames from a synthetic camera and prints
// acquisition statistics once per second.
package main

import (
	"context"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/gentlkit/framegrab"
	"github.com/gentlkit/framegrab/fake"
	"github.com/gentlkit/framegrab/pixel"
)

var logger = golog.NewDevelopmentLogger("stream")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	FrameRate float64 `flag:"rate,default=10,usage=target frame rate in frames per second"`
	NumFrames int     `flag:"frames,default=0,usage=stop after this many frames (0 runs until interrupted)"`
	Width     int     `flag:"width,default=640,usage=frame width"`
	Height    int     `flag:"height,default=480,usage=frame height"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	cam := fake.NewCamera(argsParsed.Width, argsParsed.Height, pixel.FormatRGB8)
	acquirer, err := framegrab.New(cam, framegrab.Config{
		FrameRate: argsParsed.FrameRate,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	if err := acquirer.Start(); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var received int
	for {
		select {
		case <-ctx.Done():
			acquirer.Stop()
			return drain(acquirer)
		case <-ticker.C:
			logger.Info(acquirer.Stats().Summary())
		case frame, ok := <-acquirer.Frames():
			if !ok {
				return nil
			}
			if err := showFrame(logger, frame); err != nil {
				return multierr.Combine(err, drainAfterStop(acquirer))
			}
			received++
			if argsParsed.NumFrames > 0 && received >= argsParsed.NumFrames {
				logger.Info(acquirer.Stats().Summary())
				return drainAfterStop(acquirer)
			}
		}
	}
}

func showFrame(logger golog.Logger, frame *framegrab.Frame) error {
	defer func() {
		utils.UncheckedError(frame.Release())
	}()
	img, err := frame.Image()
	if err != nil {
		if errors.Is(err, pixel.ErrUnsupported) {
			logger.Debugw("nothing to display", "sequence", frame.SequenceIndex())
			return nil
		}
		return err
	}
	logger.Debugw("frame",
		"sequence", frame.SequenceIndex(),
		"width", img.Width(),
		"height", img.Height(),
	)
	return nil
}

func drainAfterStop(acquirer *framegrab.Acquirer) error {
	acquirer.Stop()
	return drain(acquirer)
}

// drain releases every frame still in flight so the run can finalize.
func drain(acquirer *framegrab.Acquirer) error {
	var errs error
	for frame := range acquirer.Frames() {
		errs = multierr.Combine(errs, frame.Release())
	}
	return errs
}
