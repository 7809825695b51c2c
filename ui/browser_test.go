package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AustinScola/insh-sub000/api"
)

func listingResponse(id [16]byte, dir string, names ...string) api.Response {
	result := &api.GetFilesResult{}
	for _, name := range names {
		info := api.FileInfo{Path: dir + "/" + name, Type: api.FileTypeFile}
		if strings.HasSuffix(name, "/") {
			info.Path = dir + "/" + strings.TrimSuffix(name, "/")
			info.Type = api.FileTypeDir
		}
		result.Files = append(result.Files, info)
	}
	return api.Response{ID: id, Last: true, Params: api.ResponseParams{GetFiles: result}}
}

func keyEvent(key KeyEvent) Event {
	return Event{Term: &TermEvent{Key: &key}}
}

func responseEvent(resp api.Response) Event {
	return Event{Response: &resp}
}

// newTestBrowser returns a browser of the given size with a listing already
// installed.
func newTestBrowser(t *testing.T, rows int, names ...string) *Browser {
	t.Helper()

	req := api.NewGetFilesRequest("/dir")
	browser := NewBrowser(BrowserProps{
		Dir:            "/dir",
		Size:           Size{Rows: rows + 1, Columns: 40},
		PendingRequest: &req.ID,
	})
	effect := browser.Handle(responseEvent(listingResponse(req.ID, "/dir", names...)))
	require.Nil(t, effect)
	return browser
}

func TestBrowserSelectsFirstEntryOnListing(t *testing.T) {
	browser := newTestBrowser(t, 5, "a", "b", "c")
	assert.Equal(t, 0, browser.contents.selected)
	assert.Equal(t, 0, browser.contents.offset)
}

func TestBrowserIgnoresResponsesForOtherRequests(t *testing.T) {
	browser := newTestBrowser(t, 5, "a")

	stale := api.NewGetFilesRequest("/elsewhere")
	browser.Handle(responseEvent(listingResponse(stale.ID, "/elsewhere", "x", "y")))
	require.Len(t, browser.contents.files(), 1)
}

func TestBrowserMovesAndClampsSelection(t *testing.T) {
	browser := newTestBrowser(t, 5, "a", "b", "c")
	contents := browser.contents

	browser.Handle(keyEvent(charKey('j')))
	assert.Equal(t, 1, contents.selected)
	browser.Handle(keyEvent(charKey('j')))
	browser.Handle(keyEvent(charKey('j'))) // clamped at the last entry
	assert.Equal(t, 2, contents.selected)

	browser.Handle(keyEvent(charKey('k')))
	browser.Handle(keyEvent(charKey('k')))
	browser.Handle(keyEvent(charKey('k'))) // clamped at the first entry
	assert.Equal(t, 0, contents.selected)
}

func TestBrowserScrollsWhenSelectionLeavesWindow(t *testing.T) {
	browser := newTestBrowser(t, 2, "a", "b", "c", "d")
	contents := browser.contents

	browser.Handle(keyEvent(charKey('j')))
	assert.Equal(t, 1, contents.selected)
	assert.Equal(t, 0, contents.offset)

	browser.Handle(keyEvent(charKey('j')))
	assert.Equal(t, 1, contents.selected)
	assert.Equal(t, 1, contents.offset)
}

func TestBrowserJumpKeys(t *testing.T) {
	browser := newTestBrowser(t, 2, "a", "b", "c", "d")
	contents := browser.contents

	browser.Handle(keyEvent(charKey('J')))
	assert.Equal(t, 3, contents.entryNumber())
	assert.Equal(t, 2, contents.offset)

	browser.Handle(keyEvent(charKey('K')))
	assert.Equal(t, 0, contents.entryNumber())
	assert.Equal(t, 0, contents.offset)
}

func TestBrowserPushIntoDirectory(t *testing.T) {
	browser := newTestBrowser(t, 5, "sub/")

	effect := browser.Handle(keyEvent(charKey('l')))
	require.NotNil(t, effect)
	require.Equal(t, browserRequest, effect.kind)
	require.NotNil(t, effect.request)
	require.NotNil(t, effect.request.Params.GetFiles)
	assert.Equal(t, "/dir/sub", effect.request.Params.GetFiles.Dir)
	assert.Equal(t, "/dir/sub", browser.contents.dir)
}

func TestBrowserPushOnFileOpensEditor(t *testing.T) {
	browser := newTestBrowser(t, 5, "notes.txt")

	effect := browser.Handle(keyEvent(KeyEvent{Key: KeyEnter}))
	require.NotNil(t, effect)
	assert.Equal(t, browserOpenVim, effect.kind)
	assert.Equal(t, "/dir/notes.txt", effect.vimArgs.Path)
}

func TestBrowserPopAscends(t *testing.T) {
	browser := newTestBrowser(t, 5, "a")

	effect := browser.Handle(keyEvent(charKey('h')))
	require.NotNil(t, effect)
	assert.Equal(t, browserRequest, effect.kind)
	assert.Equal(t, "/", browser.contents.dir)
}

func TestBrowserRefreshKeepsSelectionWhenPathSurvives(t *testing.T) {
	browser := newTestBrowser(t, 5, "a", "b", "c")
	browser.Handle(keyEvent(charKey('j')))

	effect := browser.Handle(keyEvent(charKey('r')))
	require.NotNil(t, effect)
	require.Equal(t, browserRequest, effect.kind)
	requestID := effect.request.ID

	browser.Handle(responseEvent(listingResponse(requestID, "/dir", "a", "b", "c")))
	assert.Equal(t, 1, browser.contents.entryNumber())
}

func TestBrowserRefreshFallsBackToFirstEntry(t *testing.T) {
	browser := newTestBrowser(t, 5, "a", "b")
	browser.Handle(keyEvent(charKey('j')))

	effect := browser.Handle(keyEvent(charKey('r')))
	require.NotNil(t, effect)

	// The previously selected entry is gone after the refresh.
	browser.Handle(responseEvent(listingResponse(effect.request.ID, "/dir", "a", "c")))
	assert.Equal(t, 0, browser.contents.entryNumber())
}

func TestBrowserStartingFilePreselected(t *testing.T) {
	req := api.NewGetFilesRequest("/dir")
	browser := NewBrowser(BrowserProps{
		Dir:            "/dir",
		Size:           Size{Rows: 6, Columns: 40},
		File:           "/dir/b",
		PendingRequest: &req.ID,
	})
	browser.Handle(responseEvent(listingResponse(req.ID, "/dir", "a", "b", "c")))
	assert.Equal(t, 1, browser.contents.entryNumber())
}

func TestBrowserEmptyDirectoryMessage(t *testing.T) {
	browser := newTestBrowser(t, 5, []string{}...)

	fabric := browser.Render(Size{Rows: 6, Columns: 40})
	joined := strings.Join(fabricLines(fabric), "\n")
	assert.Contains(t, joined, "The directory is empty.")
}

func TestBrowserRendersErrorCentered(t *testing.T) {
	req := api.NewGetFilesRequest("/gone")
	browser := NewBrowser(BrowserProps{
		Dir:            "/gone",
		Size:           Size{Rows: 6, Columns: 60},
		PendingRequest: &req.ID,
	})
	browser.Handle(responseEvent(api.Response{
		ID:   req.ID,
		Last: true,
		Params: api.ResponseParams{GetFiles: &api.GetFilesResult{
			Err: &api.GetFilesError{Kind: api.GetFilesErrDirDoesNotExist},
		}},
	}))

	fabric := browser.Render(Size{Rows: 6, Columns: 60})
	joined := strings.Join(fabricLines(fabric), "\n")
	assert.Contains(t, joined, "The directory does not exist.")
}

func TestBrowserDirectoriesRenderWithTrailingSlash(t *testing.T) {
	browser := newTestBrowser(t, 5, "sub/", "plain")

	fabric := browser.Render(Size{Rows: 6, Columns: 40})
	joined := strings.Join(fabricLines(fabric), "\n")
	assert.Contains(t, joined, "sub/")
	assert.Contains(t, joined, "plain")
}

func TestBrowserResizePreservesSelectionProportionally(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	browser := newTestBrowser(t, 4, names...)
	contents := browser.contents

	// Move to the last visible row, then scroll a bit.
	for i := 0; i < 5; i++ {
		browser.Handle(keyEvent(charKey('j')))
	}
	entryBefore := contents.entryNumber()

	browser.Handle(Event{Term: &TermEvent{Resize: &Size{Rows: 3, Columns: 40}}})

	// The same entry stays selected and remains inside the viewport.
	assert.Equal(t, entryBefore, contents.entryNumber())
	assert.GreaterOrEqual(t, contents.selected, 0)
	assert.Less(t, contents.selected, contents.size.Rows)
}

func TestBrowserOpensFinderSearcherCreator(t *testing.T) {
	browser := newTestBrowser(t, 5, "a")

	effect := browser.Handle(keyEvent(charKey('f')))
	require.NotNil(t, effect)
	assert.Equal(t, browserOpenFinder, effect.kind)
	assert.Equal(t, "/dir", effect.dir)

	effect = browser.Handle(keyEvent(charKey('s')))
	require.NotNil(t, effect)
	assert.Equal(t, browserOpenSearcher, effect.kind)

	effect = browser.Handle(keyEvent(charKey('c')))
	require.NotNil(t, effect)
	assert.Equal(t, browserOpenFileCreator, effect.kind)
	assert.Equal(t, api.FileTypeFile, effect.fileType)

	effect = browser.Handle(keyEvent(charKey('C')))
	require.NotNil(t, effect)
	assert.Equal(t, api.FileTypeDir, effect.fileType)

	effect = browser.Handle(keyEvent(charKey('b')))
	require.NotNil(t, effect)
	assert.Equal(t, browserRunBash, effect.kind)
}

func TestBrowserUnmappedKeyRingsBell(t *testing.T) {
	browser := newTestBrowser(t, 5, "a")
	effect := browser.Handle(keyEvent(charKey('z')))
	require.NotNil(t, effect)
	assert.Equal(t, browserBell, effect.kind)
}
