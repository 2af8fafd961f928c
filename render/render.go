package render

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"shortsbot/composer"
	"shortsbot/config"
	"shortsbot/effects"
)

// Input is everything a render needs. Paths must be local files.
type Input struct {
	Slides     []composer.Slide
	ImageDir   string
	AudioPath  string
	ASSPath    string
	OutputPath string
	Duration   float64
}

// Frames converts seconds to whole frames at the output rate.
func Frames(seconds float64) int {
	return int(math.Round(seconds * config.FrameRate))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ZoomExpr is the zoompan z expression for a slide of the given length.
func ZoomExpr(kind effects.ZoomKind, intensity float64, frames int) string {
	if intensity <= 0 {
		intensity = effects.DefaultZoomIntensity
	}
	if frames < 1 {
		frames = 1
	}
	i, n := num(intensity), strconv.Itoa(frames)
	switch kind {
	case effects.ZoomIn:
		return fmt.Sprintf("min(1+%s*on/%s,%s)", i, n, num(1+intensity))
	case effects.ZoomOut:
		return fmt.Sprintf("max(%s-%s*on/%s,1)", num(1+intensity), i, n)
	case effects.ZoomInOut:
		up := int(math.Round(float64(frames) * 0.6))
		if up < 1 {
			up = 1
		}
		down := frames - up
		if down < 1 {
			down = 1
		}
		return fmt.Sprintf("if(lte(on,%d),1+%s*on/%d,%s-%s*(on-%d)/%d)", up, i, up, num(1+intensity), i, up, down)
	}
	return "1"
}

func assFilterPath(path string) string {
	p := filepath.ToSlash(path)
	return strings.ReplaceAll(p, ":", "\\:")
}

func (in Input) duration() float64 {
	d := in.Duration
	if d <= 0 {
		for _, s := range in.Slides {
			d += s.Duration
		}
	}
	return math.Min(d, config.MaxVideoDuration)
}

func (in Input) imagePath(img string) string {
	if in.ImageDir == "" || filepath.IsAbs(img) {
		return img
	}
	return filepath.Join(in.ImageDir, img)
}

// Command builds the ffmpeg graph without running it.
func Command(in Input) (*ffmpeg.Stream, error) {
	if len(in.Slides) == 0 {
		return nil, errors.New("nothing to render: no slides")
	}
	size := fmt.Sprintf("%dx%d", config.VideoWidth, config.VideoHeight)

	total := 0.0
	for _, s := range in.Slides {
		total += s.Duration
	}
	// The last slide stays up through the caption hold.
	extra := math.Max(0, in.duration()-total)

	slides := make([]*ffmpeg.Stream, len(in.Slides))
	for i, s := range in.Slides {
		frames := Frames(s.Duration)
		if i == len(in.Slides)-1 {
			frames = Frames(s.Duration + extra)
		}
		slides[i] = ffmpeg.Input(in.imagePath(s.Image)).
			Filter("scale", ffmpeg.Args{fmt.Sprintf("%d:%d", config.VideoWidth, config.VideoHeight)}, ffmpeg.KwArgs{"force_original_aspect_ratio": "increase"}).
			Filter("crop", ffmpeg.Args{fmt.Sprintf("%d:%d", config.VideoWidth, config.VideoHeight)}).
			Filter("zoompan", ffmpeg.Args{}, ffmpeg.KwArgs{
				"z":   ZoomExpr(s.Effect.Zoom, s.Effect.ZoomIntensity, frames),
				"x":   "iw/2-(iw/zoom/2)",
				"y":   "ih/2-(ih/zoom/2)",
				"d":   frames,
				"s":   size,
				"fps": config.FrameRate,
			}).
			Filter("setsar", ffmpeg.Args{"1"})
	}

	video := slides[0]
	if len(slides) > 1 {
		video = ffmpeg.Concat(slides, ffmpeg.KwArgs{"n": len(slides), "v": 1, "a": 0})
	}
	if in.ASSPath != "" {
		video = video.Filter("ass", ffmpeg.Args{assFilterPath(in.ASSPath)})
	}

	streams := []*ffmpeg.Stream{video}
	if in.AudioPath != "" {
		streams = append(streams, ffmpeg.Input(in.AudioPath))
	}
	args := ffmpeg.KwArgs{
		"c:v":     config.VideoCodec,
		"preset":  config.VideoPreset,
		"pix_fmt": "yuv420p",
		"r":       config.FrameRate,
		"t":       fmt.Sprintf("%.2f", in.duration()),
	}
	if in.AudioPath != "" {
		args["c:a"] = config.AudioCodec
		args["b:a"] = config.AudioBitrate
	}
	return ffmpeg.Output(streams, in.OutputPath, args).OverWriteOutput(), nil
}

// Render runs ffmpeg for in. The process is killed if ctx is cancelled.
func Render(ctx context.Context, in Input) error {
	stream, err := Command(in)
	if err != nil {
		return err
	}
	cmd := stream.Compile()
	done := make(chan error, 1)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg failed to start: %w", err)
	}
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("ffmpeg failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	}
}
