package search

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
	yaml "gopkg.in/yaml.v2"

	"github.com/AustinScola/insh-sub000/config"
)

// Data is the persistent client data, stored as YAML in the state directory.
type Data struct {
	Searcher SearcherData `yaml:"searcher"`
}

// SearcherData holds persistent searcher state.
type SearcherData struct {
	// History of searches, oldest to newest.
	History []string `yaml:"history"`
}

// AddToHistory appends a phrase, evicting the oldest entries beyond
// maxLength.
func (d *SearcherData) AddToHistory(phrase string, maxLength int) {
	d.History = append(d.History, phrase)
	if len(d.History) > maxLength {
		d.History = d.History[len(d.History)-maxLength:]
	}
}

// Completion returns the most recent history entry starting with prefix, or
// "" when there is none. An empty prefix completes to nothing.
func (d *SearcherData) Completion(prefix string) string {
	if prefix == "" {
		return ""
	}
	for i := len(d.History) - 1; i >= 0; i-- {
		entry := d.History[i]
		if entry != prefix && len(entry) > len(prefix) && entry[:len(prefix)] == prefix {
			return entry
		}
	}
	return ""
}

// Store reads and writes Data under an advisory file lock. The lock is held
// only across a read-modify-write and the holder's pid is recorded in the
// lock file.
type Store struct {
	dataPath string
	lockPath string
}

// NewStore returns a store over the default state directory paths.
func NewStore() (*Store, error) {
	if _, err := config.EnsureStateDir(); err != nil {
		return nil, err
	}
	dataPath, err := config.DataFilePath()
	if err != nil {
		return nil, err
	}
	lockPath, err := config.DataLockFilePath()
	if err != nil {
		return nil, err
	}
	return &Store{dataPath: dataPath, lockPath: lockPath}, nil
}

// NewStoreAt returns a store over explicit paths.
func NewStoreAt(dataPath, lockPath string) *Store {
	return &Store{dataPath: dataPath, lockPath: lockPath}
}

// Load reads the data file. A missing file yields empty data.
func (s *Store) Load() (Data, error) {
	var data Data

	raw, err := os.ReadFile(s.dataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return data, fmt.Errorf("could not read stored data: %w", err)
	}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("could not parse stored data: %w", err)
	}
	return data, nil
}

// Update runs modify over the current data under the lock and writes the
// result back.
func (s *Store) Update(modify func(*Data)) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	data, err := s.Load()
	if err != nil {
		return err
	}

	modify(&data)

	raw, err := yaml.Marshal(&data)
	if err != nil {
		return fmt.Errorf("could not serialize data: %w", err)
	}
	if err := os.WriteFile(s.dataPath, raw, config.StateFilePerm); err != nil {
		return fmt.Errorf("could not write the data file: %w", err)
	}
	return nil
}

// lock takes an exclusive flock on the lock file and records the holder's
// pid in it.
func (s *Store) lock() (func(), error) {
	file, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_WRONLY, config.StateFilePerm)
	if err != nil {
		return nil, fmt.Errorf("could not open the data lock file: %w", err)
	}
	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("could not lock the data file: %w", err)
	}
	_ = file.Truncate(0)
	_, _ = file.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)

	return func() {
		_ = unix.Flock(int(file.Fd()), unix.LOCK_UN)
		_ = file.Close()
	}, nil
}
