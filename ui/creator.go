package ui

import (
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AustinScola/insh-sub000/api"
)

// creatorEffectKind tags a file creator effect.
type creatorEffectKind uint8

const (
	creatorRequest creatorEffectKind = iota
	creatorBrowse
	creatorQuit
	creatorBell
)

// creatorEffect is what the file creator surfaces to the root.
type creatorEffect struct {
	kind    creatorEffectKind
	request *api.Request
	dir     string
	file    string
}

// FileCreatorProps configure a file creator.
type FileCreatorProps struct {
	Dir      string
	FileType api.FileType
}

// FileCreator asks for a name and dispatches a CreateFile request. On
// success it returns to the browser with the new file preselected; on error
// the message is shown under the input and the input refocused.
type FileCreator struct {
	header *dirHeader
	phrase *phraseInput

	dir      string
	fileType api.FileType

	pendingRequest *uuid.UUID
	pendingFile    string

	errMsg string
}

// NewFileCreator returns a file creator for props.
func NewFileCreator(props FileCreatorProps) *FileCreator {
	return &FileCreator{
		header:   newDirHeader(props.Dir),
		phrase:   newPhraseInput(""),
		dir:      props.Dir,
		fileType: props.FileType,
	}
}

// Handle consumes one event.
func (fc *FileCreator) Handle(event Event) *creatorEffect {
	switch {
	case event.Response != nil:
		return fc.handleResponse(*event.Response)
	case event.Term != nil && event.Term.Key != nil:
		effect := fc.phrase.handleKey(*event.Term.Key)
		if effect == nil {
			return nil
		}
		switch effect.kind {
		case phraseEnter:
			return fc.createFile(effect.phrase)
		case phraseQuit:
			return &creatorEffect{kind: creatorQuit}
		default:
			return &creatorEffect{kind: creatorBell}
		}
	}
	return nil
}

func (fc *FileCreator) createFile(filename string) *creatorEffect {
	path := filepath.Join(fc.dir, filename)

	req := api.NewCreateFileRequest(path, fc.fileType)
	fc.pendingRequest = &req.ID
	fc.pendingFile = path
	return &creatorEffect{kind: creatorRequest, request: &req}
}

func (fc *FileCreator) handleResponse(resp api.Response) *creatorEffect {
	if fc.pendingRequest == nil || resp.ID != *fc.pendingRequest {
		logrus.Debug("The response is not for the pending request.")
		return nil
	}
	if resp.Params.CreateFile == nil {
		logrus.Error("Unexpected response parameters.")
		return nil
	}
	fc.pendingRequest = nil

	if err := resp.Params.CreateFile.Err; err != nil {
		fc.errMsg = err.Error()
		fc.phrase.focus()
		return nil
	}

	return &creatorEffect{kind: creatorBrowse, dir: fc.dir, file: fc.pendingFile}
}

// Render stacks the header, the input, and any error below them.
func (fc *FileCreator) Render(size Size) Fabric {
	switch size.Rows {
	case 0:
		return NewFabric(size)
	case 1:
		return fc.phrase.Render(size)
	case 2:
		fabric := fc.header.Render(Size{Rows: 1, Columns: size.Columns})
		return fabric.QuiltBottom(fc.phrase.Render(Size{Rows: 1, Columns: size.Columns}))
	default:
		fabric := fc.header.Render(Size{Rows: 1, Columns: size.Columns})
		fabric = fabric.QuiltBottom(fc.phrase.Render(Size{Rows: 1, Columns: size.Columns}))

		rest := Size{Rows: size.Rows - 2, Columns: size.Columns}
		if fc.errMsg != "" {
			return fabric.QuiltBottom(CenterFabric(fc.errMsg, rest))
		}
		fabric.PadBottom(size.Rows)
		return fabric
	}
}
