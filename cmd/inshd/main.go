// Command inshd is the insh daemon: it serves file system work to insh
// clients over a unix socket.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AustinScola/insh-sub000/config"
	"github.com/AustinScola/insh-sub000/daemon"
)

var (
	logFile  string
	logLevel string

	foreground bool
	numWorkers int
	stopForce  bool
)

func main() {
	root := &cobra.Command{
		Use:           "inshd",
		Short:         "The insh daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configureLogging()
		},
	}
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "log to this file instead of stderr")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	start := &cobra.Command{
		Use:   "start",
		Short: "Start the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart()
		},
	}
	start.Flags().BoolVar(&foreground, "foreground", false, "run in the foreground instead of daemonizing")
	start.Flags().IntVar(&numWorkers, "request-handlers", daemon.DefaultNumWorkers, "number of request handlers")

	stop := &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop()
		},
	}
	stop.Flags().BoolVar(&stopForce, "force", false, "send SIGKILL instead of SIGTERM")

	status := &cobra.Command{
		Use:   "status",
		Short: "Report whether the daemon is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}

	root.AddCommand(start, stop, status)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configureLogging() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("bad log level %q: %w", logLevel, err)
	}
	logrus.SetLevel(level)

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, config.StateFilePerm)
		if err != nil {
			return fmt.Errorf("failed to open the log file: %w", err)
		}
		logrus.SetOutput(file)
	}
	return nil
}

// runStart daemonizes unless --foreground is given: the parent re-executes
// itself detached in its own session with stdio pointed at the log file,
// then exits. The child writes the pid file and runs the server.
func runStart() error {
	dir, err := config.EnsureStateDir()
	if err != nil {
		return err
	}
	socketPath, err := config.SocketPath()
	if err != nil {
		return err
	}
	pidFilePath, err := config.PidFilePath()
	if err != nil {
		return err
	}

	if !foreground {
		return daemonize(dir)
	}

	logrus.Info("Starting inshd...")
	if err := daemon.WritePidFile(pidFilePath); err != nil {
		return err
	}

	server := daemon.NewServer(daemon.Options{
		SocketPath:  socketPath,
		PidFilePath: pidFilePath,
		NumWorkers:  numWorkers,
	})
	if err := server.Run(); err != nil {
		_ = os.Remove(pidFilePath)
		return fmt.Errorf("failed to run the server: %w", err)
	}

	logrus.Info("Inshd stopped.")
	return nil
}

// daemonize re-executes inshd with --foreground, detached from this
// terminal, logging into the state directory.
func daemonize(stateDir string) error {
	if status, err := daemon.GetStatus(pidFilePathOrEmpty()); err == nil && status.Running {
		return fmt.Errorf("inshd is already running (PID: %d)", status.Pid)
	}

	logPath := logFile
	if logPath == "" {
		var err error
		logPath, err = config.LogFilePath()
		if err != nil {
			return err
		}
	}
	out, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, config.StateFilePerm)
	if err != nil {
		return fmt.Errorf("failed to open the log file: %w", err)
	}
	defer func() { _ = out.Close() }()

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to find the inshd executable: %w", err)
	}

	cmd := exec.Command(exe,
		"start", "--foreground",
		"--request-handlers", fmt.Sprint(numWorkers),
		"--log-file", logPath,
		"--log-level", logLevel,
	)
	cmd.Dir = stateDir
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to daemonize: %w", err)
	}
	// The child belongs to its own session now; let it go.
	_ = cmd.Process.Release()

	fmt.Println("Started inshd.")
	return nil
}

func pidFilePathOrEmpty() string {
	path, err := config.PidFilePath()
	if err != nil {
		return ""
	}
	return path
}

func runStop() error {
	pidFilePath, err := config.PidFilePath()
	if err != nil {
		return err
	}

	pid, err := daemon.Stop(pidFilePath, stopForce)
	if err != nil {
		if errors.Is(err, daemon.ErrPidFileNotFound) {
			return errors.New("inshd is not running")
		}
		return err
	}

	signal := "SIGTERM"
	if stopForce {
		signal = "SIGKILL"
	}
	fmt.Printf("Sent %s to inshd (PID: %d).\n", signal, pid)
	return nil
}

func runStatus() error {
	pidFilePath, err := config.PidFilePath()
	if err != nil {
		return err
	}

	status, err := daemon.GetStatus(pidFilePath)
	if err != nil {
		return fmt.Errorf("failed to get the status of inshd: %w", err)
	}
	fmt.Println(status)
	return nil
}
