package daemon

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AustinScola/insh-sub000/api"
)

// workerDied reports that a worker goroutine panicked out of its loop.
type workerDied struct {
	number int
}

// worker executes requests from its inbox, forwarding every produced
// response on the shared response channel. For each request exactly one
// response carries the last marker, even when the work itself fails.
type worker struct {
	number    int
	requests  <-chan api.Request
	responses chan<- api.Response
	stop      <-chan struct{}
	died      chan<- workerDied
}

// run is the worker loop. A panic anywhere inside request handling is
// reified as a died event so the manager can respawn the slot; the request
// being handled at that moment is lost.
func (w *worker) run() {
	log := logrus.WithField("request-handler", w.number)
	log.Info("Request handler running.")

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Request handler panicked: %v", r)
			w.died <- workerDied{number: w.number}
		}
	}()

	for {
		select {
		case <-w.stop:
			log.Info("Request handler stopping...")
			return
		case req, ok := <-w.requests:
			if !ok {
				return
			}
			log.WithField("request", req.ID).Info("Handling request.")
			w.handle(req)
			log.WithField("request", req.ID).Info("Done handling request.")
		}
	}
}

func (w *worker) handle(req api.Request) {
	switch {
	case req.Params.GetFiles != nil:
		w.getFiles(req.ID, req.Params.GetFiles)
	case req.Params.FindFiles != nil:
		w.findFiles(req.ID, req.Params.FindFiles)
	case req.Params.CreateFile != nil:
		w.createFile(req.ID, req.Params.CreateFile)
	default:
		logrus.WithField("request", req.ID).Error("Request carries no parameters.")
	}
}

// send forwards a response, aborting if the worker is stopping. It reports
// whether the caller should continue producing.
func (w *worker) send(resp api.Response) bool {
	select {
	case w.responses <- resp:
		return true
	case <-w.stop:
		return false
	}
}

// getFiles lists the immediate children of a directory. Errors reading the
// directory itself go into the result error; a failure to stat an individual
// entry is carried inline on that entry.
func (w *worker) getFiles(id uuid.UUID, params *api.GetFilesParams) {
	result := &api.GetFilesResult{}

	entries, err := os.ReadDir(params.Dir)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			result.Err = &api.GetFilesError{Kind: api.GetFilesErrDirDoesNotExist}
		case os.IsPermission(err):
			result.Err = &api.GetFilesError{Kind: api.GetFilesErrPermissionDenied}
		default:
			result.Err = &api.GetFilesError{Kind: api.GetFilesErrOther, Message: err.Error()}
		}
	} else {
		result.Files = make([]api.FileInfo, 0, len(entries))
		for _, entry := range entries {
			info := api.FileInfo{Path: filepath.Join(params.Dir, entry.Name())}
			fi, err := entry.Info()
			switch {
			case err != nil:
				info.TypeErr = err.Error()
			case fi.IsDir():
				info.Type = api.FileTypeDir
			case fi.Mode().IsRegular():
				info.Type = api.FileTypeFile
			default:
				info.Type = api.FileTypeOther
			}
			result.Files = append(result.Files, info)
		}
	}

	w.send(api.Response{
		ID:     id,
		Last:   true,
		Params: api.ResponseParams{GetFiles: result},
	})
}

// findFiles streams matching entries from a finder goroutine, one per
// response, and terminates the stream with an empty last response.
func (w *worker) findFiles(id uuid.UUID, params *api.FindFilesParams) {
	results := make(chan findResult)
	finder := &fileFinder{
		dir:     params.Dir,
		pattern: params.Pattern,
		results: results,
		stop:    w.stop,
	}
	go finder.run()

	var failure string
	for result := range results {
		if result.err != nil {
			failure = result.err.Error()
			break
		}
		ok := w.send(api.Response{
			ID:     id,
			Params: api.ResponseParams{FindFiles: &api.FindFilesResult{Entries: []api.Entry{result.entry}}},
		})
		if !ok {
			return
		}
	}

	w.send(api.Response{
		ID:     id,
		Last:   true,
		Params: api.ResponseParams{FindFiles: &api.FindFilesResult{Err: failure}},
	})
}

// createFile creates a regular file or a directory. The outcome, success or
// not, is always a single last response.
func (w *worker) createFile(id uuid.UUID, params *api.CreateFileParams) {
	result := &api.CreateFileResult{}

	if _, err := os.Lstat(params.Path); err == nil {
		result.Err = &api.CreateFileError{Kind: api.CreateFileErrAlreadyExists, Path: params.Path}
	} else {
		switch params.FileType {
		case api.FileTypeFile:
			file, err := os.OpenFile(params.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
			if err != nil {
				result.Err = &api.CreateFileError{Kind: api.CreateFileErrOther, Message: err.Error()}
			} else {
				_ = file.Close()
			}
		case api.FileTypeDir:
			if err := os.Mkdir(params.Path, 0o755); err != nil {
				result.Err = &api.CreateFileError{Kind: api.CreateFileErrOther, Message: err.Error()}
			}
		default:
			result.Err = &api.CreateFileError{
				Kind:    api.CreateFileErrUnsupportedFileType,
				Message: params.FileType.String(),
			}
		}
	}

	w.send(api.Response{
		ID:     id,
		Last:   true,
		Params: api.ResponseParams{CreateFile: result},
	})
}
