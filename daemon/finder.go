package daemon

import (
	"errors"
	"io/fs"
	"path/filepath"
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/AustinScola/insh-sub000/api"
)

// findResult is one output of a fileFinder: a matching entry, or the error
// that prevented the find from running.
type findResult struct {
	entry api.Entry
	err   error
}

var errFinderStopped = errors.New("finder stopped")

// fileFinder walks a directory tree and emits every file whose base name
// matches the pattern. Directories and unreadable entries are skipped
// silently. The results channel is closed when the walk ends, whichever way
// it ends.
type fileFinder struct {
	dir     string
	pattern string
	results chan<- findResult
	stop    <-chan struct{}
}

func (f *fileFinder) run() {
	defer close(f.results)

	logrus.WithField("dir", f.dir).Info("File finder running...")

	re, err := regexp.Compile(f.pattern)
	if err != nil {
		select {
		case f.results <- findResult{err: err}:
		case <-f.stop:
		}
		return
	}

	err = filepath.WalkDir(f.dir, func(path string, entry fs.DirEntry, err error) error {
		select {
		case <-f.stop:
			return errFinderStopped
		default:
		}
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			return nil
		}
		if path == f.dir || entry.IsDir() {
			return nil
		}
		if !re.MatchString(entry.Name()) {
			return nil
		}
		select {
		case f.results <- findResult{entry: api.Entry{Path: path}}:
		case <-f.stop:
			return errFinderStopped
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFinderStopped) {
		logrus.WithField("dir", f.dir).Warnf("File finder walk ended early: %v", err)
	}

	logrus.WithField("dir", f.dir).Info("File finder stopping...")
}
