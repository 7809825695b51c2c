package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyParserPrintableRunes(t *testing.T) {
	parser := &keyParser{}
	events := parser.feed([]byte("jK"))
	require.Len(t, events, 2)
	assert.True(t, events[0].IsChar('j'))
	assert.True(t, events[1].IsChar('K'))
	assert.Equal(t, []byte("j"), events[0].Bytes)
}

func TestKeyParserSpecialKeys(t *testing.T) {
	parser := &keyParser{}
	events := parser.feed([]byte{'\r', '\t', 0x7f})
	require.Len(t, events, 3)
	assert.Equal(t, KeyEnter, events[0].Key)
	assert.Equal(t, KeyTab, events[1].Key)
	assert.Equal(t, KeyBackspace, events[2].Key)
}

func TestKeyParserCtrlChords(t *testing.T) {
	parser := &keyParser{}
	events := parser.feed([]byte{0x11, 0x18}) // Ctrl-q, Ctrl-x
	require.Len(t, events, 2)
	assert.True(t, events[0].IsCtrl('q'))
	assert.True(t, events[1].IsCtrl('x'))
}

func TestKeyParserPassesCSISequencesAsEscapeEvents(t *testing.T) {
	parser := &keyParser{}
	events := parser.feed([]byte("\x1b[Aj")) // up arrow then j
	require.Len(t, events, 2)
	assert.Equal(t, KeyEscapeSeq, events[0].Key)
	assert.Equal(t, []byte("\x1b[A"), events[0].Bytes)
	assert.True(t, events[1].IsChar('j'))
}

func TestKeyParserBuffersSplitCSI(t *testing.T) {
	parser := &keyParser{}
	assert.Empty(t, parser.feed([]byte("\x1b[")))
	events := parser.feed([]byte("Bk"))
	require.Len(t, events, 2)
	assert.Equal(t, []byte("\x1b[B"), events[0].Bytes)
	assert.True(t, events[1].IsChar('k'))
}

func TestKeyParserLoneEscape(t *testing.T) {
	parser := &keyParser{}
	events := parser.feed([]byte{0x1b})
	require.Len(t, events, 1)
	assert.Equal(t, KeyEscapeSeq, events[0].Key)
	assert.Equal(t, []byte{0x1b}, events[0].Bytes)
}

func TestKeyParserUTF8AcrossReads(t *testing.T) {
	parser := &keyParser{}
	encoded := []byte("é")
	require.Len(t, encoded, 2)

	assert.Empty(t, parser.feed(encoded[:1]))
	events := parser.feed(encoded[1:])
	require.Len(t, events, 1)
	assert.Equal(t, 'é', events[0].Rune)
	assert.Equal(t, encoded, events[0].Bytes)
}

func TestKeyParserKeepsRawBytes(t *testing.T) {
	parser := &keyParser{}
	events := parser.feed([]byte{'\r'})
	require.Len(t, events, 1)
	// The raw encoding survives so a pty hand-off can forward it.
	assert.Equal(t, []byte{'\r'}, events[0].Bytes)
}
