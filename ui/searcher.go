package ui

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/AustinScola/insh-sub000/config"
	"github.com/AustinScola/insh-sub000/search"
)

// searcherEffectKind tags a searcher effect.
type searcherEffectKind uint8

const (
	searcherGoto searcherEffectKind = iota
	searcherOpenVim
	searcherQuit
	searcherBell
)

// searcherEffect is what the searcher surfaces to the root.
type searcherEffect struct {
	kind    searcherEffectKind
	dir     string
	file    string
	vimArgs VimArgs
}

// searcherFocus is which part of the searcher has focus.
type searcherFocus uint8

const (
	searcherFocusPhrase searcherFocus = iota
	searcherFocusContents
)

// SearcherProps configure a searcher.
type SearcherProps struct {
	Config config.Config
	Dir    string
	Size   Size
	Phrase string
	// Store persists the search history; nil disables persistence.
	Store *search.Store
}

// Searcher stacks the directory header, the phrase input, and the hits of a
// local recursive phrase search. The phrase search runs in this process, not
// in the daemon.
type Searcher struct {
	header   *dirHeader
	phrase   *phraseInput
	contents *searcherContents
	focus    searcherFocus
}

// NewSearcher returns a searcher for props. A non-empty starting phrase is
// committed immediately.
func NewSearcher(props SearcherProps) *Searcher {
	contents := &searcherContents{
		tabWidth:         props.Config.General.TabWidth,
		maxHistoryLength: props.Config.Searcher.History.Length,
		store:            props.Store,
		size:             contentsSize(props.Size),
		dir:              props.Dir,
		selected:         -1,
	}

	phrase := newPhraseInput("")
	phrase.completer = contents.completeFromHistory

	s := &Searcher{
		header:   newDirHeader(props.Dir),
		phrase:   phrase,
		contents: contents,
	}

	if props.Phrase != "" {
		s.phrase.set(props.Phrase)
		s.phrase.unfocus()
		s.focus = searcherFocusContents
		if !s.contents.search(props.Phrase) {
			s.phrase.focus()
			s.focus = searcherFocusPhrase
		}
	}
	return s
}

// Handle consumes one event.
func (s *Searcher) Handle(event Event) *searcherEffect {
	switch {
	case event.Term != nil && event.Term.Resize != nil:
		s.contents.resize(contentsSize(*event.Term.Resize))
		return nil
	case event.Term != nil && event.Term.Key != nil:
		key := *event.Term.Key
		if s.focus == searcherFocusPhrase {
			effect := s.phrase.handleKey(key)
			if effect == nil {
				return nil
			}
			switch effect.kind {
			case phraseEnter:
				if s.contents.search(effect.phrase) {
					s.focus = searcherFocusContents
				} else {
					// No hits: focus stays on the phrase.
					s.phrase.focus()
				}
				return nil
			case phraseQuit:
				return &searcherEffect{kind: searcherQuit}
			default:
				return &searcherEffect{kind: searcherBell}
			}
		}

		effect := s.contents.handleKey(key)
		if effect == nil {
			return nil
		}
		switch effect.kind {
		case searcherContentsUnfocus:
			s.focus = searcherFocusPhrase
			s.phrase.focus()
			return nil
		case searcherContentsGoto:
			return &searcherEffect{kind: searcherGoto, dir: effect.dir, file: effect.file}
		case searcherContentsOpenVim:
			return &searcherEffect{kind: searcherOpenVim, vimArgs: effect.vimArgs}
		default:
			return &searcherEffect{kind: searcherBell}
		}
	}
	return nil
}

// Render stacks the header, the phrase and the hits.
func (s *Searcher) Render(size Size) Fabric {
	switch size.Rows {
	case 0:
		return NewFabric(size)
	case 1:
		return s.phrase.Render(size)
	case 2:
		fabric := s.header.Render(Size{Rows: 1, Columns: size.Columns})
		return fabric.QuiltBottom(s.phrase.Render(Size{Rows: 1, Columns: size.Columns}))
	default:
		fabric := s.header.Render(Size{Rows: 1, Columns: size.Columns})
		fabric = fabric.QuiltBottom(s.phrase.Render(Size{Rows: 1, Columns: size.Columns}))
		return fabric.QuiltBottom(s.contents.Render(Size{Rows: size.Rows - 2, Columns: size.Columns}))
	}
}

// searcherContentsEffectKind tags a searcher contents effect.
type searcherContentsEffectKind uint8

const (
	searcherContentsUnfocus searcherContentsEffectKind = iota
	searcherContentsGoto
	searcherContentsOpenVim
	searcherContentsBell
)

type searcherContentsEffect struct {
	kind    searcherContentsEffectKind
	dir     string
	file    string
	vimArgs VimArgs
}

// searcherRow is one visual row of the hit list: a file path row, one line
// hit, or a blank separator.
type searcherRow struct {
	hit  int
	// line indexes the hit's line hits; -1 marks the path row, -2 a blank
	// separator.
	line int
}

const (
	rowPath  = -1
	rowBlank = -2
)

// searcherContents renders phrase search hits and scrolls over them by
// visual row: the selection moves one row at a time and may cross hit
// boundaries; Ctrl-j/Ctrl-k move the viewport without the selection.
type searcherContents struct {
	tabWidth         int
	maxHistoryLength int
	store            *search.Store

	size Size
	dir  string

	phrase   string
	focused  bool
	searched bool
	hits     []search.FileHit
	rows     []searcherRow

	// selected indexes rows (never a blank row); -1 means no selection.
	selected int
	offset   int
}

// search runs the phrase search synchronously, records the phrase in the
// history, and reports whether there were any hits.
func (c *searcherContents) search(phrase string) bool {
	c.phrase = phrase
	c.searched = true
	c.addToHistory(phrase)

	c.hits = search.NewPhraseSearcher(c.dir, phrase).Search()
	c.buildRows()
	c.offset = 0

	if len(c.hits) == 0 {
		c.selected = -1
		c.focused = false
		return false
	}
	c.selected = 0
	c.focused = true
	return true
}

// buildRows flattens the hits into visual rows: path, its lines, and a blank
// row between consecutive hits.
func (c *searcherContents) buildRows() {
	c.rows = c.rows[:0]
	for i, hit := range c.hits {
		if i > 0 {
			c.rows = append(c.rows, searcherRow{hit: i, line: rowBlank})
		}
		c.rows = append(c.rows, searcherRow{hit: i, line: rowPath})
		for j := range hit.LineHits {
			c.rows = append(c.rows, searcherRow{hit: i, line: j})
		}
	}
}

// addToHistory persists the phrase in the bounded history.
func (c *searcherContents) addToHistory(phrase string) {
	if c.store == nil || phrase == "" {
		return
	}
	err := c.store.Update(func(data *search.Data) {
		data.Searcher.AddToHistory(phrase, c.maxHistoryLength)
	})
	if err != nil {
		logrus.Warnf("Failed to record the search history: %v", err)
	}
}

// completeFromHistory offers the most recent history entry extending prefix.
func (c *searcherContents) completeFromHistory(prefix string) string {
	if c.store == nil {
		return ""
	}
	data, err := c.store.Load()
	if err != nil {
		return ""
	}
	return data.Searcher.Completion(prefix)
}

func (c *searcherContents) handleKey(key KeyEvent) *searcherContentsEffect {
	switch {
	case key.IsCtrl('q'):
		c.focused = false
		return &searcherContentsEffect{kind: searcherContentsUnfocus}
	case key.IsChar('j'):
		c.down()
		return nil
	case key.IsChar('J'):
		c.reallyDown()
		return nil
	case key.IsCtrl('j'):
		c.scrollDown(1)
		return nil
	case key.IsChar('k'):
		c.up()
		return nil
	case key.IsChar('K'):
		c.reallyUp()
		return nil
	case key.IsCtrl('k'):
		c.scrollUp(1)
		return nil
	case key.IsChar('r'):
		if c.phrase != "" {
			c.search(c.phrase)
		}
		return nil
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
		return &searcherContentsEffect{kind: searcherContentsBell}
	}
}

// selectedRow returns the selected visual row.
func (c *searcherContents) selectedRow() *searcherRow {
	if c.selected < 0 || c.selected >= len(c.rows) {
		return nil
	}
	return &c.rows[c.selected]
}

// down moves the selection one visual row, skipping blank separators.
func (c *searcherContents) down() {
	for next := c.selected + 1; next < len(c.rows); next++ {
		if c.rows[next].line == rowBlank {
			continue
		}
		c.selected = next
		if c.selected-c.offset >= c.size.Rows {
			c.offset = c.selected - c.size.Rows + 1
		}
		return
	}
}

// up moves the selection one visual row up, skipping blank separators.
func (c *searcherContents) up() {
	for prev := c.selected - 1; prev >= 0; prev-- {
		if c.rows[prev].line == rowBlank {
			continue
		}
		c.selected = prev
		if c.selected < c.offset {
			c.offset = c.selected
		}
		return
	}
}

// reallyDown jumps to the last hit's path row.
func (c *searcherContents) reallyDown() {
	if len(c.hits) == 0 {
		return
	}
	for i := len(c.rows) - 1; i >= 0; i-- {
		if c.rows[i].line == rowPath {
			c.selected = i
			break
		}
	}
	c.offset = max(len(c.rows)-c.size.Rows, 0)
	if c.selected < c.offset {
		c.offset = c.selected
	}
}

// reallyUp jumps to the first hit's path row.
func (c *searcherContents) reallyUp() {
	if len(c.hits) == 0 {
		return
	}
	c.selected = 0
	c.offset = 0
}

// scrollDown moves the viewport down without moving the selection.
func (c *searcherContents) scrollDown(rows int) {
	c.offset = min(c.offset+rows, max(len(c.rows)-c.size.Rows, 0))
}

// scrollUp moves the viewport up without moving the selection.
func (c *searcherContents) scrollUp(rows int) {
	c.offset = max(c.offset-rows, 0)
}

// edit opens vim at the selected hit, jumping to the line when a line row is
// selected.
func (c *searcherContents) edit() *searcherContentsEffect {
	row := c.selectedRow()
	if row == nil {
		return nil
	}
	hit := c.hits[row.hit]
	args := VimArgs{Path: hit.Path}
	if row.line >= 0 {
		args.Line = hit.LineHits[row.line].LineNumber
	}
	return &searcherContentsEffect{kind: searcherContentsOpenVim, vimArgs: args}
}

// goTo returns to the browser at the hit's parent directory; really also
// preselects the file.
func (c *searcherContents) goTo(really bool) *searcherContentsEffect {
	row := c.selectedRow()
	if row == nil {
		return nil
	}
	path := c.hits[row.hit].Path
	effect := &searcherContentsEffect{kind: searcherContentsGoto, dir: filepath.Dir(path)}
	if really {
		effect.file = path
	}
	return effect
}

// yank copies the selected line, or the hit's path when the path row is
// selected: relative to the search root, or absolute with really.
func (c *searcherContents) yank(really bool) {
	row := c.selectedRow()
	if row == nil {
		return
	}
	hit := c.hits[row.hit]
	if row.line >= 0 {
		copyToClipboard(hit.LineHits[row.line].Line)
		return
	}
	path := hit.Path
	if !really {
		path = relativeTo(c.dir, path)
	}
	copyToClipboard(path)
}

// resize keeps the selection visible in the new viewport.
func (c *searcherContents) resize(newSize Size) {
	c.size = newSize
	if c.selected >= 0 {
		if c.selected < c.offset {
			c.offset = c.selected
		} else if c.selected-c.offset >= newSize.Rows {
			c.offset = c.selected - newSize.Rows + 1
		}
	}
	c.offset = min(c.offset, max(len(c.rows)-newSize.Rows, 0))
}

func (c *searcherContents) Render(size Size) Fabric {
	if !c.searched {
		return NewFabric(size)
	}
	if len(c.hits) == 0 {
		return CenterFabric("No matching lines.", size)
	}

	end := min(c.offset+size.Rows, len(c.rows))
	yarns := make([]Yarn, 0, end-c.offset)
	for i := c.offset; i < end; i++ {
		row := c.rows[i]
		var yarn Yarn
		switch row.line {
		case rowBlank:
			yarn = BlankYarn(size.Columns)
		case rowPath:
			yarn = NewYarn(relativeTo(c.dir, c.hits[row.hit].Path))
		default:
			lineHit := c.hits[row.hit].LineHits[row.line]
			text := strconv.Itoa(lineHit.LineNumber) + ": " + c.detab(lineHit.Line)
			yarn = NewYarn(text)
			yarn.SetColorBefore(ColorGrayedText, len(strconv.Itoa(lineHit.LineNumber))+1)
		}

		if c.focused && i == c.selected {
			yarn.SetColor(ColorInvertedText)
			yarn.SetBackground(ColorHighlight)
		}
		yarn.Resize(size.Columns)
		yarns = append(yarns, yarn)
	}

	fabric := FabricFromYarns(yarns)
	fabric.PadBottom(size.Rows)
	return fabric
}

// detab expands tabs to the configured width.
func (c *searcherContents) detab(line string) string {
	return strings.ReplaceAll(line, "\t", strings.Repeat(" ", c.tabWidth))
}
