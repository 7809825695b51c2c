package daemon

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"

	"github.com/AustinScola/insh-sub000/config"
)

// ErrPidFileNotFound is returned when the pid file does not exist, meaning
// the daemon is not running.
var ErrPidFileNotFound = errors.New("pid file not found")

// WritePidFile records the current process id: the decimal pid followed by a
// newline.
func WritePidFile(path string) error {
	contents := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(path, []byte(contents), config.StateFilePerm); err != nil {
		return fmt.Errorf("failed to write the pid file: %w", err)
	}
	return nil
}

// ReadPidFile returns the pid recorded in the pid file.
func ReadPidFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrPidFileNotFound
		}
		return 0, fmt.Errorf("error reading the pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse the pid: %w", err)
	}
	return pid, nil
}

// Status describes whether the daemon is running.
type Status struct {
	Running bool
	Pid     int
}

func (s Status) String() string {
	if s.Running {
		return fmt.Sprintf("Running (PID: %d)", s.Pid)
	}
	return "Not running"
}

// GetStatus reads the pid file and verifies that the recorded process is
// alive.
func GetStatus(pidFilePath string) (Status, error) {
	pid, err := ReadPidFile(pidFilePath)
	if err != nil {
		if errors.Is(err, ErrPidFileNotFound) {
			return Status{}, nil
		}
		return Status{}, err
	}

	alive, err := process.PidExists(int32(pid))
	if err != nil {
		return Status{}, fmt.Errorf("failed to check the process: %w", err)
	}
	return Status{Running: alive, Pid: pid}, nil
}

// Stop signals the daemon recorded in the pid file: SIGTERM, or SIGKILL when
// force is set. It returns the signaled pid.
func Stop(pidFilePath string, force bool) (int, error) {
	pid, err := ReadPidFile(pidFilePath)
	if err != nil {
		return 0, err
	}

	sig := unix.SIGTERM
	if force {
		sig = unix.SIGKILL
	}
	if err := unix.Kill(pid, sig); err != nil {
		return 0, fmt.Errorf("failed to send %s: %w", unix.SignalName(sig), err)
	}
	return pid, nil
}
