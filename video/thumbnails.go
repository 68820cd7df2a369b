package video

import (
	"bytes"
	"context"
	"fmt"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// GenerateThumbnailStrip produces a tiled contact sheet JPEG: one sampled
// frame every intervalSeconds, scaled to width (aspect preserved), arranged
// in a 5x5 grid. Grounded on original_source's generate_strip filter graph
// (fps=1/interval,scale=width:-1,tile=5x5), expressed through ffmpeg-go's
// fluent builder the way transcode.go invokes ffmpeg elsewhere in this repo.
// This is a supplemented, non-completion-gating feature (SPEC_FULL.md §C.1).
func GenerateThumbnailStrip(ctx context.Context, sourcePath string, intervalSeconds float64, width int, outputPath string) error {
	if intervalSeconds <= 0 {
		intervalSeconds = 10
	}
	if width <= 0 {
		width = 160
	}
	filter := fmt.Sprintf("fps=1/%f,scale=%d:-1,tile=5x5", intervalSeconds, width)

	ffmpegErr := bytes.Buffer{}
	err := ffmpeg.Input(sourcePath).
		Output(outputPath, ffmpeg.KwArgs{
			"vf":      filter,
			"frames:v": 1,
		}).
		OverWriteOutput().WithContext(ctx).WithErrorOutput(&ffmpegErr).Run()
	if err != nil {
		return fmt.Errorf("%s: %s", err, ffmpegErr.String())
	}
	return nil
}
