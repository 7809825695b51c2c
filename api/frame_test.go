package api

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	writer := NewFrameWriter(&buf)
	reader := NewFrameReader(&buf)

	payloads := [][]byte{
		[]byte("first"),
		{},
		[]byte("a somewhat longer payload to grow the buffer"),
		[]byte("short"),
	}
	for _, payload := range payloads {
		require.NoError(t, writer.WriteFrame(payload))
	}
	for _, expected := range payloads {
		payload, err := reader.ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, expected, append([]byte{}, payload...))
	}
}

func TestFrameReaderCleanEOF(t *testing.T) {
	reader := NewFrameReader(bytes.NewReader(nil))
	_, err := reader.ReadFrame()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrameReaderEOFInsideHeader(t *testing.T) {
	reader := NewFrameReader(bytes.NewReader([]byte{0, 0, 0}))
	_, err := reader.ReadFrame()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestFrameReaderEOFInsidePayload(t *testing.T) {
	var buf bytes.Buffer
	var header [8]byte
	binary.BigEndian.PutUint64(header[:], 10)
	buf.Write(header[:])
	buf.WriteString("only4")

	reader := NewFrameReader(&buf)
	_, err := reader.ReadFrame()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestFrameReaderBufferGrowsAndIsReused(t *testing.T) {
	var buf bytes.Buffer
	writer := NewFrameWriter(&buf)
	require.NoError(t, writer.WriteFrame(bytes.Repeat([]byte("x"), 100)))
	require.NoError(t, writer.WriteFrame([]byte("tiny")))

	reader := NewFrameReader(&buf)
	first, err := reader.ReadFrame()
	require.NoError(t, err)
	firstCap := cap(first)

	second, err := reader.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, "tiny", string(second))
	// The payload buffer never shrinks.
	assert.Equal(t, firstCap, cap(second))
}

func TestFrameReaderRejectsHugeFrames(t *testing.T) {
	var header [8]byte
	binary.BigEndian.PutUint64(header[:], 1<<40)
	reader := NewFrameReader(bytes.NewReader(header[:]))
	_, err := reader.ReadFrame()
	assert.Error(t, err)
}

func TestRequestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	writer := NewFrameWriter(&buf)
	reader := NewFrameReader(&buf)

	request := NewFindFilesRequest("/proj", "foo")
	require.NoError(t, writer.WriteRequest(request))

	decoded, err := reader.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, request, decoded)
}
