// Package lola implements the wire codec and physical backend for the
// NAO's low-level LoLA transport: length-prefixed MessagePack frames
// over a stream socket.
package lola

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Codec error classes. One bad frame is never fatal: the caller drops
// it and waits for the next.
var (
	// ErrTruncated means a frame declared more bytes than were
	// available.
	ErrTruncated = errors.New("lola: truncated frame")

	// ErrSchemaMismatch means a required field was missing or had the
	// wrong shape for the LoLA schema.
	ErrSchemaMismatch = errors.New("lola: schema mismatch")

	// ErrCorrupt means the frame failed structural validation:
	// malformed MessagePack or bytes past the declared length.
	ErrCorrupt = errors.New("lola: corrupt frame")
)

// Frames are [4-byte little-endian payload length][payload]. The
// header never counts itself.
const headerSize = 4

// maxPayloadSize bounds a declared frame length. A LoLA state message
// is under 1 KiB; anything near this bound is garbage, not telemetry.
const maxPayloadSize = 1 << 16

// appendFrame prepends the length header to payload, producing one
// complete frame.
func appendFrame(payload []byte) []byte {
	frame := make([]byte, headerSize+len(payload))
	binary.LittleEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[headerSize:], payload)
	return frame
}

// splitFrame validates the header of a complete frame and returns the
// payload. The declared length must match the available bytes
// exactly: fewer is ErrTruncated, more is ErrCorrupt.
func splitFrame(frame []byte) ([]byte, error) {
	if len(frame) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes, need %d byte header", ErrTruncated, len(frame), headerSize)
	}
	declared := binary.LittleEndian.Uint32(frame)
	if declared > maxPayloadSize {
		return nil, fmt.Errorf("%w: declared length %d exceeds limit", ErrCorrupt, declared)
	}
	avail := len(frame) - headerSize
	if int(declared) > avail {
		return nil, fmt.Errorf("%w: declared %d bytes, have %d", ErrTruncated, declared, avail)
	}
	if int(declared) < avail {
		return nil, fmt.Errorf("%w: %d bytes past declared length", ErrCorrupt, avail-int(declared))
	}
	return frame[headerSize:], nil
}

// frameReader reassembles frames from a stream, keeping partial reads
// across calls. A deadline that fires mid-frame must not desynchronize
// the stream: the bytes already consumed stay buffered and the next
// call resumes the same frame at the same offset.
type frameReader struct {
	r io.Reader

	header   [headerSize]byte
	headerN  int
	payload  []byte
	payloadN int
}

func (fr *frameReader) reset() {
	fr.headerN = 0
	fr.payload = nil
	fr.payloadN = 0
}

// read returns the next complete payload. Transport errors (timeouts,
// resets) pass through for the caller to classify, with the partial
// frame retained; a stream that ends mid-frame yields ErrTruncated.
func (fr *frameReader) read() ([]byte, error) {
	for fr.headerN < headerSize {
		n, err := fr.r.Read(fr.header[fr.headerN:])
		fr.headerN += n
		if err != nil {
			if fr.headerN < headerSize {
				return nil, fr.streamErr(err)
			}
			break
		}
	}

	if fr.payload == nil {
		declared := binary.LittleEndian.Uint32(fr.header[:])
		if declared == 0 || declared > maxPayloadSize {
			fr.reset()
			return nil, fmt.Errorf("%w: declared length %d", ErrCorrupt, declared)
		}
		fr.payload = make([]byte, declared)
	}

	for fr.payloadN < len(fr.payload) {
		n, err := fr.r.Read(fr.payload[fr.payloadN:])
		fr.payloadN += n
		if err != nil && fr.payloadN < len(fr.payload) {
			return nil, fr.streamErr(err)
		}
	}

	payload := fr.payload
	fr.reset()
	return payload, nil
}

// streamErr maps a read error that hit with a frame in flight. The
// stream ending mid-frame is a truncated frame and clears the partial
// state; every other error keeps it so the frame can be resumed.
func (fr *frameReader) streamErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		if fr.headerN > 0 || fr.payloadN > 0 {
			fr.reset()
			return fmt.Errorf("%w: stream ended mid-frame: %v", ErrTruncated, err)
		}
	}
	return err
}

// readFrame reads exactly one frame from r, for callers that own the
// whole stream and need no resume state.
func readFrame(r io.Reader) ([]byte, error) {
	fr := frameReader{r: r}
	return fr.read()
}

// writeFrame writes one complete frame to w. The frame is assembled
// first so a single Write carries header and payload together.
func writeFrame(w io.Writer, payload []byte) error {
	_, err := w.Write(appendFrame(payload))
	return err
}
