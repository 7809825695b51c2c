package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterPassesPlainText(t *testing.T) {
	var out bytes.Buffer
	filter := newAltScreenFilter(&out)

	_, err := filter.Write([]byte("plain text"))
	require.NoError(t, err)
	assert.Equal(t, "plain text", out.String())
}

func TestFilterStripsAltScreenToggles(t *testing.T) {
	var out bytes.Buffer
	filter := newAltScreenFilter(&out)

	_, err := filter.Write([]byte("before\x1b[?1049hinside\x1b[?1049lafter"))
	require.NoError(t, err)
	assert.Equal(t, "beforeinsideafter", out.String())
}

func TestFilterBuffersPartialSequencesAcrossWrites(t *testing.T) {
	var out bytes.Buffer
	filter := newAltScreenFilter(&out)

	// The sequence arrives one byte at a time; nothing of it may leak.
	for _, b := range []byte("\x1b[?1049h") {
		_, err := filter.Write([]byte{b})
		require.NoError(t, err)
	}
	assert.Equal(t, "", out.String())

	_, err := filter.Write([]byte("done"))
	require.NoError(t, err)
	assert.Equal(t, "done", out.String())
}

func TestFilterForwardsOtherEscapes(t *testing.T) {
	var out bytes.Buffer
	filter := newAltScreenFilter(&out)

	_, err := filter.Write([]byte("\x1b[2Jcleared"))
	require.NoError(t, err)
	assert.Equal(t, "\x1b[2Jcleared", out.String())
}

func TestFilterDisambiguatesSimilarPrefix(t *testing.T) {
	var out bytes.Buffer
	filter := newAltScreenFilter(&out)

	// Shares the "\x1b[?1049" prefix but ends differently; it must come
	// through whole.
	_, err := filter.Write([]byte("\x1b[?1049x"))
	require.NoError(t, err)
	assert.Equal(t, "\x1b[?1049x", out.String())
}
