package api

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Frame layout: an 8 byte big-endian payload length followed by the payload.
const frameHeaderLen = 8

// FrameReader reads length-prefixed frames from a stream. The payload buffer
// is reused between reads; it grows to the largest frame seen and never
// shrinks.
type FrameReader struct {
	r       io.Reader
	header  [frameHeaderLen]byte
	payload []byte
}

// NewFrameReader returns a frame reader on r.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r}
}

// ReadFrame reads one frame and returns its payload. The returned slice is
// only valid until the next call. A clean EOF before any header byte is
// returned as io.EOF (orderly disconnect); EOF inside a frame is returned as
// io.ErrUnexpectedEOF (abrupt disconnect).
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(fr.r, fr.header[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	length := binary.BigEndian.Uint64(fr.header[:])
	if length > uint64(maxFrameLen) {
		return nil, fmt.Errorf("frame of %d bytes exceeds the %d byte limit", length, maxFrameLen)
	}

	if uint64(cap(fr.payload)) < length {
		fr.payload = make([]byte, length)
	}
	payload := fr.payload[:length]
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}

// maxFrameLen bounds a single frame. Listings of very large directories stay
// far below this; anything larger indicates a corrupt stream.
const maxFrameLen = 64 << 20

// FrameWriter writes length-prefixed frames to a stream.
type FrameWriter struct {
	w      io.Writer
	header [frameHeaderLen]byte
}

// NewFrameWriter returns a frame writer on w.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteFrame writes one frame containing payload.
func (fw *FrameWriter) WriteFrame(payload []byte) error {
	binary.BigEndian.PutUint64(fw.header[:], uint64(len(payload)))
	if _, err := fw.w.Write(fw.header[:]); err != nil {
		return err
	}
	_, err := fw.w.Write(payload)
	return err
}

// WriteRequest encodes and frames a request.
func (fw *FrameWriter) WriteRequest(req Request) error {
	payload, err := EncodeRequest(req)
	if err != nil {
		return err
	}
	return fw.WriteFrame(payload)
}

// WriteResponse encodes and frames a response.
func (fw *FrameWriter) WriteResponse(resp Response) error {
	payload, err := EncodeResponse(resp)
	if err != nil {
		return err
	}
	return fw.WriteFrame(payload)
}

// ReadRequest reads and decodes one request frame.
func (fr *FrameReader) ReadRequest() (Request, error) {
	payload, err := fr.ReadFrame()
	if err != nil {
		return Request{}, err
	}
	return DecodeRequest(payload)
}

// ReadResponse reads and decodes one response frame.
func (fr *FrameReader) ReadResponse() (Response, error) {
	payload, err := fr.ReadFrame()
	if err != nil {
		return Response{}, err
	}
	return DecodeResponse(payload)
}
