package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/udisondev/navgo/internal/constants"
)

// ReadFrameHeader reads the length prefix and returns the frame length
// (type byte plus body).
func ReadFrameHeader(r io.Reader) (int, error) {
	var header [constants.FrameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, fmt.Errorf("reading frame header: %w", err)
	}

	n := int(int32(binary.LittleEndian.Uint32(header[:])))
	if n < constants.MinFrameLength || n > constants.MaxFrameLength {
		return 0, fmt.Errorf("%w: invalid frame length %d", ErrMalformedFrame, n)
	}
	return n, nil
}

// ReadFramePayload reads n bytes announced by ReadFrameHeader into buf.
// Returns the message type and a subslice of buf with the body.
func ReadFramePayload(r io.Reader, buf []byte, n int) (MessageType, []byte, error) {
	if n > len(buf) {
		return 0, nil, fmt.Errorf("%w: frame length %d exceeds buffer size %d", ErrMalformedFrame, n, len(buf))
	}

	payload := buf[:n]
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("reading frame payload: %w", err)
	}
	return MessageType(payload[0]), payload[constants.FrameTypeSize:], nil
}

// ReadFrame reads one complete frame from r into buf.
func ReadFrame(r io.Reader, buf []byte) (MessageType, []byte, error) {
	n, err := ReadFrameHeader(r)
	if err != nil {
		return 0, nil, err
	}
	return ReadFramePayload(r, buf, n)
}

// AppendFrame appends a frame of msgType with body to dst.
func AppendFrame(dst []byte, msgType MessageType, body []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(constants.FrameTypeSize+len(body)))
	dst = append(dst, byte(msgType))
	return append(dst, body...)
}

// WriteFrame writes a frame of msgType with body to w.
func WriteFrame(w io.Writer, msgType MessageType, body []byte) error {
	if constants.FrameTypeSize+len(body) > constants.MaxFrameLength {
		return fmt.Errorf("%w: body of %d bytes exceeds frame limit", ErrMalformedFrame, len(body))
	}
	if _, err := w.Write(AppendFrame(nil, msgType, body)); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}
