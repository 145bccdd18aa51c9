package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Abhijeet1520/healthy-world/internal/capture"
	"github.com/Abhijeet1520/healthy-world/internal/detector"
	"github.com/Abhijeet1520/healthy-world/internal/exercise"
)

// VideoOptions configures a batch analysis run.
type VideoOptions struct {
	Exercise exercise.Definition
	Cooldown time.Duration

	// HighlightPath, when non-empty, writes an annotated copy of the video
	// (joint overlay, live angle and rep count) to this path.
	HighlightPath string
	// HighlightFPS is the frame rate of the annotated output; zero means 30.
	HighlightFPS float64

	// OnUpdate, when set, receives an update for every counted rep while
	// the video is processed.
	OnUpdate UpdateFunc

	Logger *slog.Logger
}

// AnalyzeVideo runs the rep counting pipeline over a finite frame source
// until end of stream and returns the final result. The counter's clock is
// the video's own timeline, so cooldown behavior is independent of decode
// speed. The context cancels a long-running analysis between frames.
func AnalyzeVideo(ctx context.Context, src capture.Source, det detector.Detector, opts VideoOptions) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "analyze", "exercise", opts.Exercise.ID)

	if err := opts.Exercise.Validate(); err != nil {
		return nil, err
	}

	if err := src.Open(); err != nil {
		return nil, fmt.Errorf("open video source: %w", err)
	}
	defer src.Close()

	var annot *annotator
	if opts.HighlightPath != "" {
		fps := opts.HighlightFPS
		if fps <= 0 {
			fps = 30
		}
		annot = newAnnotator(opts.HighlightPath, fps)
		defer annot.close()
	}

	counter := exercise.NewCounter(opts.Exercise, opts.Cooldown)

	var (
		frames  int
		lastTS  int64 = -1
		finalTS int64
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, ts, err := src.ReadFrame()
		if err == capture.ErrEndOfStream {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read frame: %w", err)
		}

		// The decode loop can outpace the video's real frame rate; an
		// unchanged timestamp means this frame was already processed.
		if ts == lastTS {
			frame.Close()
			continue
		}
		lastTS = ts
		finalTS = ts
		frames++

		pose, err := det.Detect(frame, ts)
		if err != nil {
			frame.Close()
			return nil, fmt.Errorf("pose detection at %dms: %w", ts, err)
		}

		if pose == nil {
			if annot != nil {
				annot.write(frame, nil, opts.Exercise.Joints, 0, counter.Reps())
			}
			frame.Close()
			continue
		}

		p1, p2, p3 := pose.Joints(opts.Exercise.Joints)
		angle := exercise.Angle(p1, p2, p3)
		reps, counted := counter.Update(angle, time.UnixMilli(ts))

		if annot != nil {
			annot.write(frame, pose, opts.Exercise.Joints, angle, reps)
		}
		frame.Close()

		if counted && opts.OnUpdate != nil {
			opts.OnUpdate(Update{
				Exercise:    opts.Exercise.ID,
				Reps:        reps,
				Phase:       counter.Phase(),
				Angle:       angle,
				TimestampMs: ts,
			})
		}
	}

	res := &Result{
		Exercise: opts.Exercise.ID,
		Reps:     counter.Reps(),
		Frames:   frames,
		Duration: time.Duration(finalTS) * time.Millisecond,
	}

	log.Info("video analyzed", "reps", res.Reps, "frames", res.Frames)

	if annot != nil && annot.err != nil {
		return res, fmt.Errorf("write annotated output: %w", annot.err)
	}

	return res, nil
}
