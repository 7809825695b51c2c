package ui

import "strings"

// phraseEffectKind tags a phrase input effect.
type phraseEffectKind uint8

const (
	phraseEnter phraseEffectKind = iota
	phraseBell
	phraseQuit
)

// phraseEffect is what the phrase input surfaces to its parent.
type phraseEffect struct {
	kind   phraseEffectKind
	phrase string
}

// phraseInput is a single-line editable buffer with a focused and an
// unfocused look. An optional completer offers a completion that Tab
// accepts.
type phraseInput struct {
	value     []rune
	completer func(string) string
	completion string
	focused   bool
}

func newPhraseInput(value string) *phraseInput {
	return &phraseInput{value: []rune(value), focused: true}
}

func (p *phraseInput) String() string {
	return string(p.value)
}

func (p *phraseInput) focus() {
	p.focused = true
}

func (p *phraseInput) unfocus() {
	p.focused = false
}

func (p *phraseInput) set(value string) {
	p.value = []rune(value)
	p.refreshCompletion()
}

// handleKey consumes one keystroke. Unhandled keys ring the bell.
func (p *phraseInput) handleKey(key KeyEvent) *phraseEffect {
	switch {
	case key.IsCtrl('q'):
		return &phraseEffect{kind: phraseQuit}
	case key.Key == KeyBackspace:
		if len(p.value) > 0 {
			p.value = p.value[:len(p.value)-1]
		}
		p.refreshCompletion()
		return nil
	case key.Key == KeyTab && key.Mods == ModNone:
		if p.completion != "" {
			p.value = []rune(p.completion)
			p.completion = ""
		}
		return nil
	case key.Key == KeyEnter:
		p.focused = false
		return &phraseEffect{kind: phraseEnter, phrase: string(p.value)}
	case key.Key == KeyRune && key.Mods == ModNone:
		p.value = append(p.value, key.Rune)
		p.refreshCompletion()
		return nil
	default:
		return &phraseEffect{kind: phraseBell}
	}
}

func (p *phraseInput) refreshCompletion() {
	if p.completer == nil {
		p.completion = ""
		return
	}
	p.completion = p.completer(string(p.value))
}

func (p *phraseInput) Render(size Size) Fabric {
	yarn := NewYarn(string(p.value))
	yarn.SetColor(ColorInvertedText)

	if p.focused && p.completion != "" {
		if rest, ok := strings.CutPrefix(p.completion, string(p.value)); ok {
			restYarn := NewYarn(rest)
			restYarn.SetColor(ColorInvertedGrayedText)
			yarn = yarn.Concat(restYarn)
		}
	}

	yarn.Resize(size.Columns)
	yarn.SetBackground(focusOrUnfocused(p.focused))
	return FabricFromYarns([]Yarn{yarn})
}
