package video

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os/exec"

	hlsfragerrors "github.com/livepeer/hlsfrag/errors"
)

// box is one top-level MP4 box as seen by the linear scan: its 4-byte type
// and the byte offset (within the scanned buffer) where it starts,
// size (header + payload) included.
type box struct {
	boxType string
	offset  int
	size    int
}

// walkBoxes performs the bounded linear scan spec.md's MP4 Box View
// describes: read [size:u32 BE][type:4 ASCII] at each offset, stop at
// size < 8 or at end-of-file. It does not allocate payload copies - callers
// slice the original buffer using the offsets it returns.
func walkBoxes(data []byte) []box {
	var boxes []box
	offset := 0
	for offset+8 <= len(data) {
		size := int(binary.BigEndian.Uint32(data[offset : offset+4]))
		boxType := string(data[offset+4 : offset+8])
		if size < 8 || offset+size > len(data) {
			break
		}
		boxes = append(boxes, box{boxType: boxType, offset: offset, size: size})
		offset += size
	}
	return boxes
}

// StripInitHeader implements C2's init-header stripping: scan the encoder's
// temp output for the first moof box and return everything from that point
// on (moof + mdat + any trailing boxes), discarding the leading ftyp/moov.
// Fails with MalformedFragment if no moof box is ever found.
func StripInitHeader(data []byte) ([]byte, error) {
	for _, b := range walkBoxes(data) {
		if b.boxType == "moof" {
			return data[b.offset:], nil
		}
	}
	return nil, hlsfragerrors.MalformedFragment("no moof box found in encoder output")
}

// CollectInitBoxes implements the init segment half of C2: return the
// ftyp and moov boxes found before the first moof, concatenated in the
// order they were encountered, which becomes the wire payload for
// init.mp4. Any other box before the first moof is left out. Fails with
// MalformedFragment if no moof box terminates the scan, or if no ftyp or
// no moov precedes it; the number and order of ftyp/moov boxes are not
// checked.
func CollectInitBoxes(data []byte) ([]byte, error) {
	boxes := walkBoxes(data)
	var end = -1
	var sawFtyp, sawMoov bool
	var init []byte
	for _, b := range boxes {
		if b.boxType == "moof" {
			end = b.offset
			break
		}
		switch b.boxType {
		case "ftyp":
			sawFtyp = true
			init = append(init, data[b.offset:b.offset+b.size]...)
		case "moov":
			sawMoov = true
			init = append(init, data[b.offset:b.offset+b.size]...)
		}
	}
	if end < 0 {
		return nil, hlsfragerrors.MalformedFragment("no moof box found in encoder output")
	}
	if !sawFtyp || !sawMoov {
		return nil, hlsfragerrors.MalformedFragment("encoder output missing ftyp or moov before first moof")
	}
	return init, nil
}

func runCmd(cmd *exec.Cmd) (string, error) {
	var stdOut bytes.Buffer
	var stdErr bytes.Buffer
	cmd.Stdout = &stdOut
	cmd.Stderr = &stdErr

	if err := cmd.Run(); err != nil {
		return stdOut.String(), fmt.Errorf("%s: %s", err, stdErr.String())
	}
	return stdOut.String(), nil
}
