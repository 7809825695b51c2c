package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AustinScola/insh-sub000/api"
	"github.com/AustinScola/insh-sub000/config"
)

func newTestRoot(t *testing.T) *Insh {
	t.Helper()

	req := api.NewGetFilesRequest("/dir")
	root := NewInsh(InshProps{
		Dir:                   "/dir",
		Size:                  Size{Rows: 10, Columns: 60},
		Start:                 StartBrowser,
		Config:                config.Default(),
		PendingBrowserRequest: &req.ID,
	})
	require.Nil(t, root.Handle(responseEvent(listingResponse(req.ID, "/dir", "file.txt", "sub/"))))
	return root
}

func TestRootCtrlXExitsAnywhere(t *testing.T) {
	root := newTestRoot(t)
	effect := root.Handle(keyEvent(ctrlKey('x')))
	require.NotNil(t, effect)
	assert.True(t, effect.Exit)
}

func TestRootOpensEditorFromBrowser(t *testing.T) {
	root := newTestRoot(t)
	effect := root.Handle(keyEvent(KeyEvent{Key: KeyEnter}))
	require.NotNil(t, effect)
	require.NotNil(t, effect.Program)
	vim, ok := effect.Program.(*Vim)
	require.True(t, ok)
	assert.Contains(t, vim.Args(), "/dir/file.txt")
}

func TestRootRunsShellInCurrentDirectory(t *testing.T) {
	root := newTestRoot(t)
	effect := root.Handle(keyEvent(charKey('b')))
	require.NotNil(t, effect)
	bash, ok := effect.Program.(*Bash)
	require.True(t, ok)
	assert.Equal(t, "/dir", bash.Cwd())
}

func TestRootFinderFlow(t *testing.T) {
	root := newTestRoot(t)

	require.Nil(t, root.Handle(keyEvent(charKey('f'))))
	assert.Equal(t, modeFinder, root.mode)

	// Commit a pattern; the root surfaces the request.
	root.Handle(keyEvent(charKey('x')))
	effect := root.Handle(keyEvent(KeyEvent{Key: KeyEnter}))
	require.NotNil(t, effect)
	require.NotNil(t, effect.Request)
	require.NotNil(t, effect.Request.Params.FindFiles)
	assert.Equal(t, "/dir", effect.Request.Params.FindFiles.Dir)

	// A hit arrives, then a goto returns to the browser and re-requests the
	// listing of the hit's parent.
	root.Handle(responseEvent(findResponse(effect.Request.ID, false, "/dir/sub/x.txt")))
	browse := root.Handle(keyEvent(charKey('g')))
	require.NotNil(t, browse)
	assert.Equal(t, modeBrowse, root.mode)
	require.NotNil(t, browse.Request)
	require.NotNil(t, browse.Request.Params.GetFiles)
	assert.Equal(t, "/dir/sub", browse.Request.Params.GetFiles.Dir)
}

func TestRootFileCreatorFlow(t *testing.T) {
	root := newTestRoot(t)

	require.Nil(t, root.Handle(keyEvent(charKey('c'))))
	assert.Equal(t, modeFileCreator, root.mode)

	// Name the file and commit; the root surfaces the CreateFile request.
	root.Handle(keyEvent(charKey('n')))
	root.Handle(keyEvent(charKey('e')))
	root.Handle(keyEvent(charKey('w')))
	effect := root.Handle(keyEvent(KeyEvent{Key: KeyEnter}))
	require.NotNil(t, effect)
	require.NotNil(t, effect.Request)
	require.NotNil(t, effect.Request.Params.CreateFile)
	assert.Equal(t, "/dir/new", effect.Request.Params.CreateFile.Path)
	assert.Equal(t, api.FileTypeFile, effect.Request.Params.CreateFile.FileType)

	// Success returns to the browser with the new file's listing pending.
	created := api.Response{
		ID:     effect.Request.ID,
		Last:   true,
		Params: api.ResponseParams{CreateFile: &api.CreateFileResult{}},
	}
	browse := root.Handle(responseEvent(created))
	require.NotNil(t, browse)
	assert.Equal(t, modeBrowse, root.mode)
	require.NotNil(t, browse.Request)
	assert.Equal(t, "/dir", browse.Request.Params.GetFiles.Dir)

	// The new file is preselected once the listing lands.
	root.Handle(responseEvent(listingResponse(browse.Request.ID, "/dir", "file.txt", "new", "sub/")))
	assert.Equal(t, 1, root.browser.contents.entryNumber())
}

func TestRootFileCreatorAlreadyExists(t *testing.T) {
	root := newTestRoot(t)
	root.Handle(keyEvent(charKey('c')))
	root.Handle(keyEvent(charKey('x')))
	effect := root.Handle(keyEvent(KeyEvent{Key: KeyEnter}))
	require.NotNil(t, effect)

	failed := api.Response{
		ID:   effect.Request.ID,
		Last: true,
		Params: api.ResponseParams{CreateFile: &api.CreateFileResult{
			Err: &api.CreateFileError{Kind: api.CreateFileErrAlreadyExists, Path: "/dir/x"},
		}},
	}
	require.Nil(t, root.Handle(responseEvent(failed)))
	// Still in the creator, showing the error, input refocused.
	assert.Equal(t, modeFileCreator, root.mode)
	assert.Contains(t, root.creator.errMsg, "already exists")
	assert.True(t, root.creator.phrase.focused)
}

func TestRootQuitFinderReturnsToBrowser(t *testing.T) {
	root := newTestRoot(t)
	root.Handle(keyEvent(charKey('f')))
	require.Equal(t, modeFinder, root.mode)

	effect := root.Handle(keyEvent(ctrlKey('q')))
	assert.Nil(t, effect)
	assert.Equal(t, modeBrowse, root.mode)
}

func TestRootBellRespectsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.General.Bell = false

	req := api.NewGetFilesRequest("/dir")
	root := NewInsh(InshProps{
		Dir:                   "/dir",
		Size:                  Size{Rows: 10, Columns: 60},
		Start:                 StartBrowser,
		Config:                cfg,
		PendingBrowserRequest: &req.ID,
	})
	root.Handle(responseEvent(listingResponse(req.ID, "/dir", "a")))

	// An unmapped key would ring the bell, but the config silences it.
	assert.Nil(t, root.Handle(keyEvent(charKey('z'))))
}
