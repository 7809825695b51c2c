package ui

import (
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AustinScola/insh-sub000/api"
)

// browserEffectKind tags a browser effect.
type browserEffectKind uint8

const (
	browserOpenFileCreator browserEffectKind = iota
	browserOpenFinder
	browserOpenSearcher
	browserOpenVim
	browserRunBash
	browserBell
	browserRequest
)

// browserEffect is what the browser surfaces to the root.
type browserEffect struct {
	kind     browserEffectKind
	dir      string
	fileType api.FileType
	vimArgs  VimArgs
	request  *api.Request
}

// BrowserProps configure a browser.
type BrowserProps struct {
	Dir  string
	Size Size
	// File, when set, is preselected once the first listing arrives.
	File string
	// PendingRequest is the id of a GetFiles request that was already
	// dispatched for Dir.
	PendingRequest *uuid.UUID
}

// Browser stacks the directory header over the directory contents.
type Browser struct {
	header   *dirHeader
	contents *browserContents
}

// NewBrowser returns a browser for props.
func NewBrowser(props BrowserProps) *Browser {
	return &Browser{
		header: newDirHeader(props.Dir),
		contents: &browserContents{
			size:           Size{Rows: max(props.Size.Rows-1, 0), Columns: props.Size.Columns},
			dir:            props.Dir,
			startingFile:   props.File,
			pendingRequest: props.PendingRequest,
			selected:       -1,
		},
	}
}

// Handle consumes one event.
func (b *Browser) Handle(event Event) *browserEffect {
	switch {
	case event.Response != nil:
		b.contents.handleResponse(*event.Response)
		return nil
	case event.Term != nil && event.Term.Resize != nil:
		size := *event.Term.Resize
		b.contents.resize(Size{Rows: max(size.Rows-1, 0), Columns: size.Columns})
		return nil
	case event.Term != nil && event.Term.Key != nil:
		effect := b.contents.handleKey(*event.Term.Key)
		if effect == nil {
			return nil
		}
		switch effect.kind {
		case contentsSetDir:
			b.header.setDir(effect.dir)
			return &browserEffect{kind: browserRequest, request: effect.request}
		case contentsPopDir:
			b.header.popDir()
			return &browserEffect{kind: browserRequest, request: effect.request}
		case contentsOpenFileCreator:
			return &browserEffect{kind: browserOpenFileCreator, dir: effect.dir, fileType: effect.fileType}
		case contentsOpenFinder:
			return &browserEffect{kind: browserOpenFinder, dir: effect.dir}
		case contentsOpenSearcher:
			return &browserEffect{kind: browserOpenSearcher, dir: effect.dir}
		case contentsOpenVim:
			return &browserEffect{kind: browserOpenVim, vimArgs: effect.vimArgs}
		case contentsRunBash:
			return &browserEffect{kind: browserRunBash, dir: effect.dir}
		case contentsRequest:
			return &browserEffect{kind: browserRequest, request: effect.request}
		default:
			return &browserEffect{kind: browserBell}
		}
	}
	return nil
}

// Render stacks the one-row header over the contents.
func (b *Browser) Render(size Size) Fabric {
	switch size.Rows {
	case 0:
		return NewFabric(size)
	case 1:
		return b.header.Render(size)
	default:
		fabric := b.header.Render(Size{Rows: 1, Columns: size.Columns})
		contents := b.contents.Render(Size{Rows: size.Rows - 1, Columns: size.Columns})
		return fabric.QuiltBottom(contents)
	}
}

// contentsEffectKind tags a browser contents effect.
type contentsEffectKind uint8

const (
	contentsSetDir contentsEffectKind = iota
	contentsPopDir
	contentsOpenFileCreator
	contentsOpenFinder
	contentsOpenSearcher
	contentsOpenVim
	contentsRunBash
	contentsBell
	contentsRequest
)

type contentsEffect struct {
	kind     contentsEffectKind
	dir      string
	fileType api.FileType
	vimArgs  VimArgs
	request  *api.Request
}

// browserContents is the scrollable directory listing: one highlighted
// selection, an offset adjusting when the selection would leave the window.
type browserContents struct {
	size Size
	dir  string

	startingFile   string
	pendingRequest *uuid.UUID

	// result is nil until the first listing arrives.
	result *api.GetFilesResult

	// selected indexes the visible window; -1 means no selection.
	selected int
	offset   int
}

// files returns the listed entries, or nil when there is no usable listing.
func (c *browserContents) files() []api.FileInfo {
	if c.result == nil || c.result.Err != nil {
		return nil
	}
	return c.result.Files
}

// entryNumber returns the index of the selection into the whole listing.
func (c *browserContents) entryNumber() int {
	if c.selected < 0 {
		return -1
	}
	return c.offset + c.selected
}

// entry returns the selected entry.
func (c *browserContents) entry() *api.FileInfo {
	files := c.files()
	number := c.entryNumber()
	if files == nil || number < 0 || number >= len(files) {
		return nil
	}
	return &files[number]
}

func (c *browserContents) handleKey(key KeyEvent) *contentsEffect {
	switch {
	case key.IsChar('j'):
		return c.down()
	case key.IsChar('J'):
		return c.reallyDown()
	case key.IsChar('k'):
		return c.up()
	case key.IsChar('K'):
		return c.reallyUp()
	case key.IsChar('r'):
		return c.refresh()
	case key.IsChar('l'), key.Key == KeyEnter:
		return c.push()
	case key.IsChar('h'), key.Key == KeyBackspace:
		return c.pop()
	case key.IsChar('y'):
		return c.yank()
	case key.IsChar('Y'):
		return c.reallyYank()
	case key.IsChar('b'):
		return &contentsEffect{kind: contentsRunBash, dir: c.dir}
	case key.IsChar('c'):
		return &contentsEffect{kind: contentsOpenFileCreator, dir: c.dir, fileType: api.FileTypeFile}
	case key.IsChar('C'):
		return &contentsEffect{kind: contentsOpenFileCreator, dir: c.dir, fileType: api.FileTypeDir}
	case key.IsChar('f'):
		return &contentsEffect{kind: contentsOpenFinder, dir: c.dir}
	case key.IsChar('s'):
		return &contentsEffect{kind: contentsOpenSearcher, dir: c.dir}
	default:
		return &contentsEffect{kind: contentsBell}
	}
}

func (c *browserContents) down() *contentsEffect {
	files := c.files()
	if len(files) == 0 || c.selected < 0 {
		return nil
	}
	if c.entryNumber() >= len(files)-1 {
		return nil
	}
	if c.selected < c.size.Rows-1 {
		c.selected++
	} else {
		c.offset++
	}
	return nil
}

// reallyDown selects the last entry and adjusts the scroll position.
func (c *browserContents) reallyDown() *contentsEffect {
	files := c.files()
	if len(files) == 0 {
		return nil
	}
	if len(files) > c.size.Rows {
		c.offset = len(files) - c.size.Rows
		c.selected = c.size.Rows - 1
	} else {
		c.offset = 0
		c.selected = len(files) - 1
	}
	return nil
}

func (c *browserContents) up() *contentsEffect {
	if c.selected > 0 {
		c.selected--
	} else if c.selected == 0 && c.offset > 0 {
		c.offset--
	}
	return nil
}

// reallyUp selects the first entry and adjusts the scroll position.
func (c *browserContents) reallyUp() *contentsEffect {
	if c.selected >= 0 {
		c.offset = 0
		c.selected = 0
	}
	return nil
}

// refresh re-requests the current directory.
func (c *browserContents) refresh() *contentsEffect {
	previous := ""
	if entry := c.entry(); entry != nil {
		previous = entry.Path
	}

	c.result = nil
	c.selected = -1
	c.offset = 0
	// Keep the selection on the same path if it survives the refresh.
	c.startingFile = previous

	req := api.NewGetFilesRequest(c.dir)
	c.pendingRequest = &req.ID
	return &contentsEffect{kind: contentsRequest, request: &req}
}

// push descends into the selected directory or opens the selected file.
func (c *browserContents) push() *contentsEffect {
	entry := c.entry()
	if entry == nil {
		return nil
	}

	switch entry.Type {
	case api.FileTypeDir:
		c.dir = entry.Path
		c.result = nil
		c.selected = -1
		c.offset = 0

		req := api.NewGetFilesRequest(c.dir)
		c.pendingRequest = &req.ID
		return &contentsEffect{kind: contentsSetDir, dir: c.dir, request: &req}
	case api.FileTypeFile:
		return &contentsEffect{kind: contentsOpenVim, vimArgs: VimArgs{Path: entry.Path}}
	default:
		return nil
	}
}

// pop ascends one level.
func (c *browserContents) pop() *contentsEffect {
	parent := filepath.Dir(c.dir)
	if parent == c.dir {
		return nil
	}
	c.dir = parent
	c.result = nil
	c.selected = -1
	c.offset = 0

	req := api.NewGetFilesRequest(c.dir)
	c.pendingRequest = &req.ID
	return &contentsEffect{kind: contentsPopDir, request: &req}
}

// yank copies the base name of the selection, with a trailing slash for
// directories.
func (c *browserContents) yank() *contentsEffect {
	entry := c.entry()
	if entry == nil {
		return nil
	}
	contents := entry.Name()
	if entry.Type.IsDir() {
		contents += "/"
	}
	copyToClipboard(contents)
	return nil
}

// reallyYank copies the absolute path of the selection, with a trailing
// slash for directories.
func (c *browserContents) reallyYank() *contentsEffect {
	entry := c.entry()
	if entry == nil {
		return nil
	}
	contents := entry.Path
	if entry.Type.IsDir() {
		contents += "/"
	}
	copyToClipboard(contents)
	return nil
}

// handleResponse installs a listing. Responses for anything but the pending
// request are discarded.
func (c *browserContents) handleResponse(resp api.Response) {
	if c.pendingRequest == nil || resp.ID != *c.pendingRequest {
		logrus.Debug("The response is not for the pending request.")
		return
	}
	if resp.Params.GetFiles == nil {
		logrus.Error("Unexpected response parameters.")
		return
	}

	c.result = resp.Params.GetFiles
	c.pendingRequest = nil

	files := c.files()
	c.selected = 0
	c.offset = 0
	switch {
	case c.result.Err != nil:
		// Nothing selectable; the error is rendered instead.
	case len(files) == 0:
		c.selected = -1
	case c.startingFile != "":
		index := -1
		for i := range files {
			if files[i].Path == c.startingFile {
				index = i
				break
			}
		}
		if index >= 0 {
			if index < c.size.Rows {
				c.selected = index
			} else {
				c.selected = 0
				c.offset = index
			}
		}
	}
	c.startingFile = ""
}

// resize proportionally preserves the selection's position within the
// viewport, clamping when the listing is shorter than the new viewport.
func (c *browserContents) resize(newSize Size) {
	files := c.files()
	if c.selected >= 0 && len(files) > 0 {
		visible := min(c.size.Rows, len(files)-c.offset)
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
				if len(files)-newOffset < newSize.Rows {
					bottomPinned := max(len(files)-newSize.Rows, 0)
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

// visibleFiles returns the slice of the listing inside the viewport.
func (c *browserContents) visibleFiles() []api.FileInfo {
	files := c.files()
	if len(files) == 0 {
		return nil
	}
	end := min(c.offset+c.size.Rows, len(files))
	if c.offset >= end {
		return nil
	}
	return files[c.offset:end]
}

func (c *browserContents) Render(size Size) Fabric {
	if c.result == nil {
		return NewFabric(size)
	}
	if c.result.Err != nil {
		return CenterFabric(c.result.Err.Error(), size)
	}

	visible := c.visibleFiles()
	if len(visible) == 0 {
		return CenterFabric("The directory is empty.", size)
	}

	yarns := make([]Yarn, 0, min(len(visible), size.Rows))
	for row := 0; row < len(visible) && row < size.Rows; row++ {
		entry := visible[row]
		name := entry.Name()
		if entry.Type.IsDir() {
			name += "/"
		}
		hidden := len(name) > 0 && name[0] == '.'

		yarn := NewYarn(name)
		if row == c.selected {
			yarn.SetColor(ColorInvertedText)
			yarn.SetBackground(ColorHighlight)
		} else if hidden {
			yarn.SetColor(ColorLightGrayedText)
		}
		yarn.Resize(size.Columns)
		yarns = append(yarns, yarn)
	}

	fabric := FabricFromYarns(yarns)
	fabric.PadBottom(size.Rows)
	return fabric
}
