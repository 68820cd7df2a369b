package video

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	hlsfragerrors "github.com/livepeer/hlsfrag/errors"
	"github.com/livepeer/hlsfrag/log"
	"gopkg.in/vansante/go-ffprobe.v2"
)

// Prober extracts the keyframe PTS list and duration the orchestrator
// needs to build a segment schedule (spec C1).
type Prober interface {
	Probe(ctx context.Context, videoID, path string) (SourceMedia, error)
}

type Probe struct{}

// Probe runs ffprobe twice: once through go-ffprobe.v2 for container/stream
// duration, and once as a direct frame-table dump for keyframe PTS, since
// go-ffprobe.v2's ProbeData has no frame list - only stream/format metadata.
func (p Probe) Probe(ctx context.Context, videoID, path string) (SourceMedia, error) {
	info, err := p.probeDuration(ctx, path)
	if err != nil {
		return SourceMedia{}, hlsfragerrors.ProbeFailure("probing duration", err)
	}

	keyframes, err := p.probeKeyframes(ctx, path)
	if err != nil {
		return SourceMedia{}, hlsfragerrors.ProbeFailure("probing keyframes", err)
	}

	log.LogCtx(ctx, "probed source media", "video_id", videoID, "duration", info.Duration, "keyframes", len(keyframes))
	return SourceMedia{KeyframeTimes: keyframes, Duration: info.Duration}, nil
}

func (p Probe) probeDuration(ctx context.Context, path string) (MediaInfo, error) {
	var data *ffprobe.ProbeData
	operation := func() error {
		probeCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		defer cancel()
		var err error
		data, err = ffprobe.ProbeURL(probeCtx, path, "-loglevel", "error")
		return err
	}

	backOff := backoff.NewExponentialBackOff()
	backOff.InitialInterval = 500 * time.Millisecond
	backOff.MaxInterval = 2 * time.Second
	backOff.MaxElapsedTime = 0
	if err := backoff.Retry(operation, backoff.WithMaxRetries(backOff, 3)); err != nil {
		return MediaInfo{}, fmt.Errorf("error probing: %w", err)
	}

	if data.FirstVideoStream() == nil {
		return MediaInfo{}, fmt.Errorf("no video stream found in %s", path)
	}
	if data.Format == nil {
		return MediaInfo{}, fmt.Errorf("format information missing for %s", path)
	}

	return MediaInfo{Format: data.Format.FormatName, Duration: data.Format.DurationSeconds}, nil
}

// probeKeyframes shells directly to ffprobe (mirroring mp4box.go's runCmd
// pattern) to dump the primary video stream's frame table, filtered to
// key_frame=1, and parses out presentation timestamps in seconds.
func (p Probe) probeKeyframes(ctx context.Context, path string) ([]float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "frame=key_frame,pkt_pts_time,best_effort_timestamp_time",
		"-of", "csv=print_section=0",
		path,
	)
	out, err := runCmd(cmd)
	if err != nil {
		return nil, fmt.Errorf("ffprobe keyframe dump failed: %w", err)
	}
	return parseKeyframeTimes(out), nil
}

// parseKeyframeTimes parses ffprobe's frame CSV output
// (`key_frame,pkt_pts_time,best_effort_timestamp_time`), keeping only rows
// with key_frame=1 and returning their timestamps in non-decreasing order.
func parseKeyframeTimes(csv string) []float64 {
	var times []float64
	for _, line := range strings.Split(strings.TrimSpace(csv), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 2 || fields[0] != "1" {
			continue
		}
		ts := fields[1]
		if ts == "N/A" && len(fields) > 2 {
			ts = fields[2]
		}
		if ts == "N/A" || ts == "" {
			continue
		}
		t, err := strconv.ParseFloat(ts, 64)
		if err != nil {
			continue
		}
		times = append(times, t)
	}
	sort.Float64s(times)
	return times
}
