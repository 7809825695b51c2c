package ui

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AustinScola/insh-sub000/api"
)

// finderEffectKind tags a finder effect.
type finderEffectKind uint8

const (
	finderRequest finderEffectKind = iota
	finderBrowse
	finderOpenVim
	finderQuit
	finderBell
)

// finderEffect is what the finder surfaces to the root.
type finderEffect struct {
	kind    finderEffectKind
	request *api.Request
	dir     string
	file    string
	vimArgs VimArgs
}

// finderFocus is which part of the finder has focus.
type finderFocus uint8

const (
	finderFocusPhrase finderFocus = iota
	finderFocusContents
)

// FinderProps configure a finder.
type FinderProps struct {
	Dir    string
	Size   Size
	Phrase string
}

// Finder stacks the directory header, the phrase input, and the streamed
// results.
type Finder struct {
	header   *dirHeader
	phrase   *phraseInput
	contents *finderContents
	focus    finderFocus
}

// NewFinder returns a finder for props. A non-empty starting phrase is
// committed by StartingEffect.
func NewFinder(props FinderProps) *Finder {
	return &Finder{
		header: newDirHeader(props.Dir),
		phrase: newPhraseInput(props.Phrase),
		contents: &finderContents{
			size:     contentsSize(props.Size),
			dir:      props.Dir,
			selected: -1,
		},
	}
}

// StartingEffect commits a pre-filled phrase, as if the user had pressed
// enter. It returns nil when the phrase is empty.
func (f *Finder) StartingEffect() *finderEffect {
	if f.phrase.String() == "" {
		return nil
	}
	f.phrase.unfocus()
	f.focus = finderFocusContents
	req := f.contents.find(f.phrase.String())
	return &finderEffect{kind: finderRequest, request: req}
}

// contentsSize is the finder's tri-row layout: header and phrase above the
// contents.
func contentsSize(size Size) Size {
	return Size{Rows: max(size.Rows-2, 0), Columns: size.Columns}
}

// Handle consumes one event.
func (f *Finder) Handle(event Event) *finderEffect {
	switch {
	case event.Term != nil && event.Term.Resize != nil:
		f.contents.resize(contentsSize(*event.Term.Resize))
		return nil
	case event.Response != nil:
		if effect := f.contents.handleResponse(*event.Response); effect != nil {
			return f.translateContentsEffect(effect)
		}
		return nil
	case event.Term != nil && event.Term.Key != nil:
		key := *event.Term.Key
		if f.focus == finderFocusPhrase {
			effect := f.phrase.handleKey(key)
			if effect == nil {
				return nil
			}
			switch effect.kind {
			case phraseEnter:
				f.focus = finderFocusContents
				req := f.contents.find(effect.phrase)
				return &finderEffect{kind: finderRequest, request: req}
			case phraseQuit:
				return &finderEffect{kind: finderQuit}
			default:
				return &finderEffect{kind: finderBell}
			}
		}
		return f.translateContentsEffect(f.contents.handleKey(key))
	}
	return nil
}

func (f *Finder) translateContentsEffect(effect *finderContentsEffect) *finderEffect {
	if effect == nil {
		return nil
	}
	switch effect.kind {
	case finderContentsUnfocus:
		f.focus = finderFocusPhrase
		f.phrase.focus()
		return nil
	case finderContentsRequest:
		return &finderEffect{kind: finderRequest, request: effect.request}
	case finderContentsGoto:
		return &finderEffect{kind: finderBrowse, dir: effect.dir, file: effect.file}
	case finderContentsOpenVim:
		return &finderEffect{kind: finderOpenVim, vimArgs: effect.vimArgs}
	default:
		return &finderEffect{kind: finderBell}
	}
}

// Render stacks the header, the phrase and the contents.
func (f *Finder) Render(size Size) Fabric {
	switch size.Rows {
	case 0:
		return NewFabric(size)
	case 1:
		return f.phrase.Render(size)
	case 2:
		fabric := f.header.Render(Size{Rows: 1, Columns: size.Columns})
		return fabric.QuiltBottom(f.phrase.Render(Size{Rows: 1, Columns: size.Columns}))
	default:
		fabric := f.header.Render(Size{Rows: 1, Columns: size.Columns})
		fabric = fabric.QuiltBottom(f.phrase.Render(Size{Rows: 1, Columns: size.Columns}))
		return fabric.QuiltBottom(f.contents.Render(Size{Rows: size.Rows - 2, Columns: size.Columns}))
	}
}

// finderContentsEffectKind tags a finder contents effect.
type finderContentsEffectKind uint8

const (
	finderContentsUnfocus finderContentsEffectKind = iota
	finderContentsRequest
	finderContentsGoto
	finderContentsOpenVim
	finderContentsBell
)

type finderContentsEffect struct {
	kind    finderContentsEffectKind
	request *api.Request
	dir     string
	file    string
	vimArgs VimArgs
}

// finderContents accumulates the streamed results of a find. The first
// response after a commit clears the previous result list; later responses
// append.
type finderContents struct {
	size Size
	dir  string

	phrase  string
	focused bool

	// hasHits is unset until a find concludes something: false renders the
	// error message, or the no-matches message when there is no error.
	hasHits *bool
	errMsg  string
	entries []api.Entry

	selected int
	offset   int

	pendingRequest *uuid.UUID
	receivedFirst  bool
}

// find starts a new find and returns the request to dispatch.
func (c *finderContents) find(phrase string) *api.Request {
	c.focused = true
	c.phrase = phrase
	c.receivedFirst = false

	req := api.NewFindFilesRequest(c.dir, phrase)
	c.pendingRequest = &req.ID
	return &req
}

func (c *finderContents) handleKey(key KeyEvent) *finderContentsEffect {
	switch {
	case key.IsCtrl('q'):
		c.focused = false
		return &finderContentsEffect{kind: finderContentsUnfocus}
	case key.IsChar('j'):
		c.down()
		return nil
	case key.IsChar('J'):
		c.reallyDown()
		return nil
	case key.IsChar('k'):
		c.up()
		return nil
	case key.IsChar('K'):
		c.reallyUp()
		return nil
	case key.IsChar('r'):
		if c.phrase == "" {
			return nil
		}
		req := c.find(c.phrase)
		return &finderContentsEffect{kind: finderContentsRequest, request: req}
	case key.IsChar('l'), key.Key == KeyEnter:
		return c.edit()
	case key.IsChar('g'):
		return c.goTo(false)
	case key.IsChar('G'):
		return c.goTo(true)
	case key.IsChar('y'):
		c.yank(false)
		return nil
	case key.IsChar('Y'):
		c.yank(true)
		return nil
	default:
		return &finderContentsEffect{kind: finderContentsBell}
	}
}

func (c *finderContents) entryNumber() int {
	if c.selected < 0 {
		return -1
	}
	return c.offset + c.selected
}

func (c *finderContents) entryPath() string {
	number := c.entryNumber()
	if number < 0 || number >= len(c.entries) {
		return ""
	}
	return c.entries[number].Path
}

func (c *finderContents) down() {
	if len(c.entries) == 0 || c.selected < 0 {
		return
	}
	if c.entryNumber() >= len(c.entries)-1 {
		return
	}
	if c.selected < c.size.Rows-1 {
		c.selected++
	} else {
		c.offset++
	}
}

func (c *finderContents) reallyDown() {
	if len(c.entries) == 0 {
		return
	}
	if len(c.entries) > c.size.Rows {
		c.offset = len(c.entries) - c.size.Rows
		c.selected = c.size.Rows - 1
	} else {
		c.offset = 0
		c.selected = len(c.entries) - 1
	}
}

func (c *finderContents) up() {
	if c.selected > 0 {
		c.selected--
	} else if c.selected == 0 && c.offset > 0 {
		c.offset--
	}
}

func (c *finderContents) reallyUp() {
	if c.selected >= 0 {
		c.offset = 0
		c.selected = 0
	}
}

func (c *finderContents) edit() *finderContentsEffect {
	path := c.entryPath()
	if path == "" {
		return nil
	}
	return &finderContentsEffect{kind: finderContentsOpenVim, vimArgs: VimArgs{Path: path}}
}

// goTo returns to the browser at the selection's parent directory; when
// really is set the file itself is preselected.
func (c *finderContents) goTo(really bool) *finderContentsEffect {
	path := c.entryPath()
	if path == "" {
		return nil
	}
	effect := &finderContentsEffect{kind: finderContentsGoto, dir: filepath.Dir(path)}
	if really {
		effect.file = path
	}
	return effect
}

// yank copies the selection's path relative to the search root; really yanks
// the absolute path.
func (c *finderContents) yank(really bool) {
	path := c.entryPath()
	if path == "" {
		return
	}
	if !really {
		path = relativeTo(c.dir, path)
	}
	copyToClipboard(path)
}

// handleResponse folds one streamed response in. Responses for anything but
// the pending request are discarded.
func (c *finderContents) handleResponse(resp api.Response) *finderContentsEffect {
	if c.pendingRequest == nil || resp.ID != *c.pendingRequest {
		logrus.Debug("The response is not for the pending request.")
		return nil
	}
	if resp.Params.FindFiles == nil {
		logrus.Error("Unexpected response parameters.")
		return nil
	}

	if !c.receivedFirst {
		c.hasHits = nil
		c.errMsg = ""
		c.entries = c.entries[:0]
		c.selected = -1
		c.offset = 0
	}
	c.receivedFirst = true

	params := resp.Params.FindFiles
	c.entries = append(c.entries, params.Entries...)

	if resp.Last {
		c.pendingRequest = nil
	}

	if params.Err != "" {
		c.errMsg = params.Err
		hits := false
		c.hasHits = &hits
		c.selected = -1
		c.focused = false
		return &finderContentsEffect{kind: finderContentsUnfocus}
	}

	if len(c.entries) == 0 && resp.Last {
		hits := false
		c.hasHits = &hits
		c.selected = -1
		c.focused = false
		return &finderContentsEffect{kind: finderContentsUnfocus}
	}
	if len(c.entries) > 0 {
		hits := true
		c.hasHits = &hits
		if c.selected < 0 {
			c.selected = 0
		}
	}
	return nil
}

// resize mirrors the browser's proportional viewport preservation.
func (c *finderContents) resize(newSize Size) {
	if c.selected >= 0 && len(c.entries) > 0 {
		visible := min(c.size.Rows, len(c.entries)-c.offset)
		if visible > 0 {
			selectedPercent := float64(c.selected) / float64(visible)
			newSelected := int(float64(newSize.Rows) * selectedPercent)
			entryNumber := c.offset + c.selected

			var newOffset int
			if entryNumber <= newSelected {
				newOffset = 0
				newSelected = entryNumber
			} else {
				newOffset = entryNumber - newSelected
				if len(c.entries)-newOffset < newSize.Rows {
					bottomPinned := max(len(c.entries)-newSize.Rows, 0)
					newSelected += newOffset - bottomPinned
					newOffset = bottomPinned
				}
			}

			c.offset = newOffset
			c.selected = newSelected
		}
	}
	c.size = newSize
}

func (c *finderContents) Render(size Size) Fabric {
	if c.hasHits == nil {
		return NewFabric(size)
	}
	if !*c.hasHits {
		if c.errMsg != "" {
			return CenterFabric(c.errMsg, size)
		}
		return CenterFabric("No matching files.", size)
	}

	end := min(c.offset+size.Rows, len(c.entries))
	yarns := make([]Yarn, 0, end-c.offset)
	for i := c.offset; i < end; i++ {
		entry := c.entries[i]
		display := relativeTo(c.dir, entry.Path)
		yarn := NewYarn(display)

		nameStart := len([]rune(display)) - len([]rune(entry.Name()))
		row := i - c.offset
		if c.focused && row == c.selected {
			yarn.SetColorBefore(ColorInvertedGrayedText, nameStart)
			yarn.SetColorAfter(ColorInvertedText, nameStart)
			yarn.SetBackground(ColorHighlight)
		} else {
			yarn.SetColorBefore(ColorGrayedText, nameStart)
		}
		yarn.Resize(size.Columns)
		yarns = append(yarns, yarn)
	}

	fabric := FabricFromYarns(yarns)
	fabric.PadBottom(size.Rows)
	return fabric
}

// relativeTo strips dir (and its separator) from path.
func relativeTo(dir, path string) string {
	rest := strings.TrimPrefix(path, dir)
	return strings.TrimPrefix(rest, string(filepath.Separator))
}
