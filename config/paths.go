package config

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
)

// Permissions for the state directory and the files inside it.
const (
	StateDirPerm  = 0o700
	StateFilePerm = 0o600
)

// StateDir returns the directory holding the socket, pid file, log file and
// persistent data: $XDG_STATE_HOME/insh, defaulting to ~/.local/state/insh.
func StateDir() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "insh"), nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("cannot determine the home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "insh"), nil
}

// EnsureStateDir creates the state directory if necessary and returns it.
func EnsureStateDir() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, StateDirPerm); err != nil {
		return "", fmt.Errorf("failed to create the state directory %q: %w", dir, err)
	}
	return dir, nil
}

// SocketPath returns the path of the daemon socket.
func SocketPath() (string, error) {
	return statePath("inshd.sock")
}

// PidFilePath returns the path of the daemon pid file.
func PidFilePath() (string, error) {
	return statePath("inshd.pid")
}

// LogFilePath returns the default path of the daemon log file.
func LogFilePath() (string, error) {
	return statePath("inshd.log")
}

// DataFilePath returns the path of the persistent data file.
func DataFilePath() (string, error) {
	return statePath("data.yaml")
}

// DataLockFilePath returns the path of the lock file guarding the data file.
func DataLockFilePath() (string, error) {
	return statePath("data.lock")
}

func statePath(name string) (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
