package ui

import (
	"unicode"
	"unicode/utf8"
)

// Key identifies a non-printable key.
type Key uint8

// Keys.
const (
	KeyRune Key = iota
	KeyEnter
	KeyTab
	KeyBackspace
	// KeyEscapeSeq is an escape or an escape sequence the UI has no binding
	// for. Components treat it as unmapped; a program hand-off forwards its
	// raw bytes so arrows and escapes still reach the child.
	KeyEscapeSeq
)

// Mod is a set of key modifiers.
type Mod uint8

// Modifiers.
const (
	ModNone Mod = 0
	ModCtrl Mod = 1 << iota
)

// KeyEvent is one decoded keystroke. Bytes retains the raw encoding that was
// read from the terminal so a program hand-off can forward the keystroke
// unchanged.
type KeyEvent struct {
	Key   Key
	Rune  rune
	Mods  Mod
	Bytes []byte
}

// IsChar reports whether the event is the printable rune r with no control
// modifier.
func (e KeyEvent) IsChar(r rune) bool {
	return e.Key == KeyRune && e.Mods == ModNone && e.Rune == r
}

// IsCtrl reports whether the event is Ctrl plus the letter r.
func (e KeyEvent) IsCtrl(r rune) bool {
	return e.Key == KeyRune && e.Mods == ModCtrl && e.Rune == r
}

// keyParser turns raw terminal bytes into key events. Escape sequences
// (arrows, function keys) come out as KeyEscapeSeq events carrying their raw
// bytes; multi-byte UTF-8 runes are buffered until complete.
type keyParser struct {
	pending []byte
}

func (p *keyParser) feed(data []byte) []KeyEvent {
	p.pending = append(p.pending, data...)

	var events []KeyEvent
	for len(p.pending) > 0 {
		event, consumed, ok := p.next()
		if !ok {
			break
		}
		p.pending = p.pending[consumed:]
		if event != nil {
			events = append(events, *event)
		}
	}
	return events
}

// next decodes one event from the pending buffer. It returns ok=false when
// the buffer holds an incomplete prefix.
func (p *keyParser) next() (*KeyEvent, int, bool) {
	b := p.pending[0]

	switch {
	case b == 0x1b:
		return p.nextEscape()
	case b == '\r':
		return &KeyEvent{Key: KeyEnter, Bytes: []byte{b}}, 1, true
	case b == '\t':
		return &KeyEvent{Key: KeyTab, Bytes: []byte{b}}, 1, true
	case b == 0x7f || b == 0x08:
		return &KeyEvent{Key: KeyBackspace, Bytes: []byte{b}}, 1, true
	case b < 0x20:
		// Control chord: Ctrl-a .. Ctrl-z, minus the bytes handled above.
		return &KeyEvent{
			Key:   KeyRune,
			Rune:  rune('a' + b - 1),
			Mods:  ModCtrl,
			Bytes: []byte{b},
		}, 1, true
	default:
		r, size := utf8.DecodeRune(p.pending)
		if r == utf8.RuneError && size == 1 && !utf8.FullRune(p.pending) {
			return nil, 0, false
		}
		if !unicode.IsPrint(r) {
			return nil, size, true
		}
		bytes := make([]byte, size)
		copy(bytes, p.pending[:size])
		return &KeyEvent{Key: KeyRune, Rune: r, Bytes: bytes}, size, true
	}
}

// nextEscape consumes a bare escape or an escape sequence. CSI sequences run
// to their final byte (0x40-0x7e). All of them come out as KeyEscapeSeq
// events so their bytes survive for program hand-offs.
func (p *keyParser) nextEscape() (*KeyEvent, int, bool) {
	if len(p.pending) == 1 {
		// Nothing followed in this read: the escape key itself.
		return p.escapeEvent(1), 1, true
	}
	if p.pending[1] != '[' {
		return p.escapeEvent(2), 2, true
	}
	for i := 2; i < len(p.pending); i++ {
		if p.pending[i] >= 0x40 && p.pending[i] <= 0x7e {
			return p.escapeEvent(i + 1), i + 1, true
		}
	}
	return nil, 0, false
}

func (p *keyParser) escapeEvent(length int) *KeyEvent {
	bytes := make([]byte, length)
	copy(bytes, p.pending[:length])
	return &KeyEvent{Key: KeyEscapeSeq, Bytes: bytes}
}
