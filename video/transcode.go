package video

import (
	"bytes"
	"context"
	"fmt"
	"os"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	hlsfragerrors "github.com/livepeer/hlsfrag/errors"
)

// TranscoderPort is what worker.Service needs from C2: cut one segment and,
// separately, produce the shared init segment. Matching Prober, it's an
// interface so workers can be exercised against a fake in tests without
// shelling out to ffmpeg.
type TranscoderPort interface {
	TranscodeSegment(ctx context.Context, sourcePath string, startSeconds, durationSeconds float64, outputPath string) error
	GenerateInitSegment(ctx context.Context, sourcePath string, outputPath string) error
}

// Transcoder runs the external encoder C2 needs: seek to start_seconds,
// clip duration_seconds, write fragmented MP4 with timestamps offset so the
// segment's internal timeline begins at its source time (required for
// playback continuity across #EXT-X-MAP).
type Transcoder struct{}

// TranscodeSegment encodes [startSeconds, startSeconds+durationSeconds) of
// sourcePath into a fragmented MP4, strips the leading ftyp/moov via the
// box walk, and writes the moof+mdat-only result to outputPath.
func (t Transcoder) TranscodeSegment(ctx context.Context, sourcePath string, startSeconds, durationSeconds float64, outputPath string) error {
	tmpFile, err := os.CreateTemp("", "hlsfrag-segment-*.mp4")
	if err != nil {
		return hlsfragerrors.IOFailure("creating temp file for segment encode", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	defer os.Remove(tmpPath)

	if err := encodeFragment(ctx, sourcePath, startSeconds, durationSeconds, tmpPath); err != nil {
		return hlsfragerrors.EncodeFailure(fmt.Sprintf("encoding segment at %.3fs", startSeconds), err)
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return hlsfragerrors.IOFailure("reading encoded segment", err)
	}

	stripped, err := StripInitHeader(data)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, stripped, 0644); err != nil {
		return hlsfragerrors.IOFailure("writing stripped segment", err)
	}
	return nil
}

// GenerateInitSegment stream-copies the first 0.1 s of sourcePath into a
// fragmented MP4 and extracts its ftyp+moov boxes - the shared
// initialization segment every player-visible segment references via
// #EXT-X-MAP. The sample is not limited to a single frame.
func (t Transcoder) GenerateInitSegment(ctx context.Context, sourcePath string, outputPath string) error {
	tmpFile, err := os.CreateTemp("", "hlsfrag-init-*.mp4")
	if err != nil {
		return hlsfragerrors.IOFailure("creating temp file for init encode", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	defer os.Remove(tmpPath)

	if err := encodeFragment(ctx, sourcePath, 0, 0.1, tmpPath); err != nil {
		return hlsfragerrors.EncodeFailure("encoding init segment sample", err)
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return hlsfragerrors.IOFailure("reading encoded init sample", err)
	}

	init, err := CollectInitBoxes(data)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, init, 0644); err != nil {
		return hlsfragerrors.IOFailure("writing init segment", err)
	}
	return nil
}

// encodeFragment invokes ffmpeg with movflags=frag_keyframe+empty_moov,
// the same incantation transmux.go's MuxTStoFMP4 uses to get a one
// moof-per-fragment layout, but for a single seek+clip instead of a whole
// HLS ladder.
func encodeFragment(ctx context.Context, sourcePath string, startSeconds, durationSeconds float64, outputPath string) error {
	ffmpegErr := bytes.Buffer{}
	err := ffmpeg.Input(sourcePath, ffmpeg.KwArgs{
		"ss": startSeconds,
	}).
		Output(outputPath, ffmpeg.KwArgs{
			"t":                durationSeconds,
			"c":                "copy",
			"avoid_negative_ts": "make_zero",
			"output_ts_offset": startSeconds,
			"movflags":         "frag_keyframe+empty_moov+default_base_moof",
			"f":                "mp4",
		}).
		OverWriteOutput().WithContext(ctx).WithErrorOutput(&ffmpegErr).Run()
	if err != nil {
		return fmt.Errorf("%s: %s", err, ffmpegErr.String())
	}
	return nil
}
