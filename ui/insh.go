package ui

import (
	"github.com/google/uuid"

	"github.com/AustinScola/insh-sub000/api"
	"github.com/AustinScola/insh-sub000/config"
	"github.com/AustinScola/insh-sub000/search"
)

// StartMode is which component the application starts in.
type StartMode uint8

// Start modes.
const (
	StartBrowser StartMode = iota
	StartFinder
	StartSearcher
	// StartNothing exits after the starting effects (the bare edit
	// command).
	StartNothing
)

// InshProps configure the root component.
type InshProps struct {
	Dir    string
	Size   Size
	Start  StartMode
	Phrase string
	Config config.Config
	// Store persists the search history; nil disables persistence.
	Store *search.Store
	// PendingBrowserRequest is the id of a GetFiles request the main
	// already dispatched for Dir.
	PendingBrowserRequest *uuid.UUID
}

// inshMode is the active component.
type inshMode uint8

const (
	modeBrowse inshMode = iota
	modeFileCreator
	modeFinder
	modeSearcher
	modeNothing
)

// Insh is the root component: it owns the browser, finder, searcher and
// file creator, dispatches events to the active one, and translates their
// effects into system effects.
type Insh struct {
	mode    inshMode
	size    Size
	cfg     config.Config
	store   *search.Store
	browser *Browser
	creator *FileCreator
	finder  *Finder
	search  *Searcher
}

// NewInsh returns the root component.
func NewInsh(props InshProps) *Insh {
	root := &Insh{
		size:  props.Size,
		cfg:   props.Config,
		store: props.Store,
	}

	root.browser = NewBrowser(BrowserProps{
		Dir:            props.Dir,
		Size:           props.Size,
		PendingRequest: props.PendingBrowserRequest,
	})

	switch props.Start {
	case StartFinder:
		root.mode = modeFinder
		root.finder = NewFinder(FinderProps{Dir: props.Dir, Size: props.Size, Phrase: props.Phrase})
	case StartSearcher:
		root.mode = modeSearcher
		root.search = NewSearcher(SearcherProps{
			Config: props.Config,
			Dir:    props.Dir,
			Size:   props.Size,
			Phrase: props.Phrase,
			Store:  props.Store,
		})
	case StartNothing:
		root.mode = modeNothing
	default:
		root.mode = modeBrowse
	}
	return root
}

// StartingEffects returns effects to interpret before the first event (a
// find pre-filled from the command line dispatches its request immediately).
func (i *Insh) StartingEffects() []SystemEffect {
	if i.mode == modeFinder && i.finder != nil {
		if effect := i.finder.StartingEffect(); effect != nil && effect.request != nil {
			return []SystemEffect{{Request: effect.request}}
		}
	}
	return nil
}

// Handle consumes one event.
func (i *Insh) Handle(event Event) *SystemEffect {
	if event.Term != nil && event.Term.Key != nil && event.Term.Key.IsCtrl('x') {
		return &SystemEffect{Exit: true}
	}
	if event.Term != nil && event.Term.Resize != nil {
		i.size = *event.Term.Resize
	}

	switch i.mode {
	case modeBrowse:
		return i.handleBrowse(event)
	case modeFileCreator:
		return i.handleFileCreator(event)
	case modeFinder:
		return i.handleFinder(event)
	case modeSearcher:
		return i.handleSearcher(event)
	default:
		return &SystemEffect{Exit: true}
	}
}

func (i *Insh) handleBrowse(event Event) *SystemEffect {
	effect := i.browser.Handle(event)
	if effect == nil {
		return nil
	}
	switch effect.kind {
	case browserOpenFileCreator:
		i.mode = modeFileCreator
		i.creator = NewFileCreator(FileCreatorProps{Dir: effect.dir, FileType: effect.fileType})
		return nil
	case browserOpenFinder:
		i.mode = modeFinder
		i.finder = NewFinder(FinderProps{Dir: effect.dir, Size: i.size})
		return nil
	case browserOpenSearcher:
		i.mode = modeSearcher
		i.search = NewSearcher(SearcherProps{
			Config: i.cfg,
			Dir:    effect.dir,
			Size:   i.size,
			Store:  i.store,
		})
		return nil
	case browserOpenVim:
		return &SystemEffect{Program: NewVim(effect.vimArgs)}
	case browserRunBash:
		return &SystemEffect{Program: NewBash(effect.dir)}
	case browserRequest:
		return &SystemEffect{Request: effect.request}
	default:
		return i.bell()
	}
}

func (i *Insh) handleFileCreator(event Event) *SystemEffect {
	effect := i.creator.Handle(event)
	if effect == nil {
		return nil
	}
	switch effect.kind {
	case creatorRequest:
		return &SystemEffect{Request: effect.request}
	case creatorBrowse:
		return i.browse(effect.dir, effect.file)
	case creatorQuit:
		i.mode = modeBrowse
		return nil
	default:
		return i.bell()
	}
}

func (i *Insh) handleFinder(event Event) *SystemEffect {
	effect := i.finder.Handle(event)
	if effect == nil {
		return nil
	}
	switch effect.kind {
	case finderRequest:
		return &SystemEffect{Request: effect.request}
	case finderBrowse:
		return i.browse(effect.dir, effect.file)
	case finderOpenVim:
		return &SystemEffect{Program: NewVim(effect.vimArgs)}
	case finderQuit:
		i.mode = modeBrowse
		return nil
	default:
		return i.bell()
	}
}

func (i *Insh) handleSearcher(event Event) *SystemEffect {
	effect := i.search.Handle(event)
	if effect == nil {
		return nil
	}
	switch effect.kind {
	case searcherGoto:
		return i.browse(effect.dir, effect.file)
	case searcherOpenVim:
		return &SystemEffect{Program: NewVim(effect.vimArgs)}
	case searcherQuit:
		i.mode = modeBrowse
		return nil
	default:
		return i.bell()
	}
}

// browse switches to a fresh browser at dir, preselecting file, and
// dispatches the listing request for it.
func (i *Insh) browse(dir, file string) *SystemEffect {
	req := api.NewGetFilesRequest(dir)
	i.mode = modeBrowse
	i.browser = NewBrowser(BrowserProps{
		Dir:            dir,
		Size:           i.size,
		File:           file,
		PendingRequest: &req.ID,
	})
	return &SystemEffect{Request: &req}
}

// bell rings the bell when it is not configured off.
func (i *Insh) bell() *SystemEffect {
	if !i.cfg.General.Bell {
		return nil
	}
	return &SystemEffect{Bell: true}
}

// Render draws the active component.
func (i *Insh) Render(size Size) Fabric {
	switch i.mode {
	case modeBrowse:
		return i.browser.Render(size)
	case modeFileCreator:
		return i.creator.Render(size)
	case modeFinder:
		return i.finder.Render(size)
	case modeSearcher:
		return i.search.Render(size)
	default:
		return NewFabric(size)
	}
}
