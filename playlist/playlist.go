// Package playlist builds the HLS VOD media playlist string. It is a pure,
// dependency-free string builder: no third-party m3u8 library is used here
// because the wire contract requires a byte-exact, deterministically
// ordered line sequence (init map, target duration, per-segment EXTINF)
// that a general-purpose m3u8 writer doesn't guarantee - see DESIGN.md.
package playlist

import (
	"fmt"
	"math"
	"strings"
)

const version = 7

// Build renders the HLS VOD media playlist for a completed video: one
// #EXTINF+URI pair per segment duration, an #EXT-X-MAP line referencing
// initURI when non-empty, and a trailing #EXT-X-ENDLIST. It performs no
// I/O - callers write the returned string via the Storage port.
func Build(segmentDurations []float64, initURI string) string {
	var b strings.Builder

	b.WriteString("#EXTM3U\n")
	fmt.Fprintf(&b, "#EXT-X-VERSION:%d\n", version)
	fmt.Fprintf(&b, "#EXT-X-TARGETDURATION:%d\n", targetDuration(segmentDurations))
	b.WriteString("#EXT-X-MEDIA-SEQUENCE:0\n")
	b.WriteString("#EXT-X-PLAYLIST-TYPE:VOD\n")
	b.WriteString("#EXT-X-INDEPENDENT-SEGMENTS\n")
	if initURI != "" {
		fmt.Fprintf(&b, "#EXT-X-MAP:URI=\"%s\"\n", initURI)
	}

	for i, d := range segmentDurations {
		fmt.Fprintf(&b, "#EXTINF:%.6f,\n", d)
		fmt.Fprintf(&b, "segment_%d.mp4\n", i)
	}

	b.WriteString("#EXT-X-ENDLIST\n")
	return b.String()
}

func targetDuration(durations []float64) int {
	max := 0.0
	for _, d := range durations {
		if d > max {
			max = d
		}
	}
	return int(math.Ceil(max))
}
