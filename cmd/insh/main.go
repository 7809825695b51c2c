// Command insh is an interactive, full-screen terminal file navigator backed
// by the inshd daemon.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AustinScola/insh-sub000/api"
	"github.com/AustinScola/insh-sub000/client"
	"github.com/AustinScola/insh-sub000/config"
	"github.com/AustinScola/insh-sub000/search"
	"github.com/AustinScola/insh-sub000/ui"
)

var (
	startDir string
	logFile  string
	logLevel string

	editBrowse bool
)

func main() {
	root := &cobra.Command{
		Use:           "insh",
		Short:         "A graphical, interactive, terminal file navigator",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configureLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(ui.StartBrowser, "", ui.VimArgs{})
		},
	}
	root.PersistentFlags().StringVarP(&startDir, "dir", "d", "", "the starting directory")
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "log to this file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	browse := &cobra.Command{
		Use:   "browse",
		Short: "Browse a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(ui.StartBrowser, "", ui.VimArgs{})
		},
	}

	find := &cobra.Command{
		Use:   "find [pattern]",
		Short: "Find files with names matching a regular expression",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phrase := ""
			if len(args) > 0 {
				phrase = args[0]
			}
			return run(ui.StartFinder, phrase, ui.VimArgs{})
		},
	}

	searchCmd := &cobra.Command{
		Use:   "search [phrase]",
		Short: "Search file contents for a phrase",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phrase := ""
			if len(args) > 0 {
				phrase = args[0]
			}
			return run(ui.StartSearcher, phrase, ui.VimArgs{})
		},
	}

	edit := &cobra.Command{
		Use:   "edit <file[:line[,column]]>",
		Short: "Edit a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vimArgs, err := parseFileLineColumn(args[0])
			if err != nil {
				return err
			}
			start := ui.StartNothing
			if editBrowse {
				start = ui.StartBrowser
				if startDir == "" {
					startDir = filepath.Dir(vimArgs.Path)
				}
			}
			return run(start, "", vimArgs)
		},
	}
	edit.Flags().BoolVar(&editBrowse, "browse", false, "browse the file's directory after editing")

	root.AddCommand(browse, find, searchCmd, edit)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// configureLogging sends logs to the log file, or nowhere: stderr is the
// interactive terminal.
func configureLogging() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("bad log level %q: %w", logLevel, err)
	}
	logrus.SetLevel(level)

	if logFile == "" {
		logrus.SetOutput(io.Discard)
		return nil
	}
	file, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open the log file: %w", err)
	}
	logrus.SetOutput(file)
	return nil
}

func run(start ui.StartMode, phrase string, vimArgs ui.VimArgs) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dir, err := resolveDir()
	if err != nil {
		return err
	}

	socketPath, err := config.SocketPath()
	if err != nil {
		return err
	}
	conn, err := client.Dial(socketPath)
	if err != nil {
		return fmt.Errorf("%w (is inshd running?)", err)
	}

	store, err := search.NewStore()
	if err != nil {
		logrus.Warnf("Search history is unavailable: %v", err)
		store = nil
	}

	app := ui.NewApp()

	size, err := ui.TerminalSize()
	if err != nil {
		return err
	}

	var startingEffects []ui.SystemEffect

	props := ui.InshProps{
		Dir:    dir,
		Size:   size,
		Start:  start,
		Phrase: phrase,
		Config: cfg,
		Store:  store,
	}

	// The edit command runs vim before anything renders.
	if vimArgs.Path != "" {
		startingEffects = append(startingEffects, ui.SystemEffect{Program: ui.NewVim(vimArgs)})
	}
	if start == ui.StartNothing {
		startingEffects = append(startingEffects, ui.SystemEffect{Exit: true})
	}

	// Modes that show the browser ask for the first listing up front.
	if start == ui.StartBrowser {
		req := api.NewGetFilesRequest(dir)
		props.PendingBrowserRequest = &req.ID
		startingEffects = append(startingEffects, ui.SystemEffect{Request: &req})
	}

	root := ui.NewInsh(props)
	startingEffects = append(startingEffects, root.StartingEffects()...)

	return app.Run(ui.RunOptions{
		Root:                   root,
		StartingEffects:        startingEffects,
		Requester:              client.NewRequester(conn),
		ResponseHandler:        client.NewResponseHandler(conn),
		ResponseHandlerStopper: client.NewStopper(conn),
	})
}

// resolveDir returns the absolute starting directory.
func resolveDir() (string, error) {
	if startDir == "" {
		dir, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("cannot determine the current directory: %w", err)
		}
		return dir, nil
	}
	if filepath.IsAbs(startDir) {
		return filepath.Clean(startDir), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("cannot determine the current directory: %w", err)
	}
	return filepath.Join(cwd, startDir), nil
}

// parseFileLineColumn parses <file>[:<line>[,<column>]]. The suffix is only
// treated as a position when it is numeric, so file names containing colons
// still work.
func parseFileLineColumn(arg string) (ui.VimArgs, error) {
	args := ui.VimArgs{Path: arg}

	colon := strings.LastIndex(arg, ":")
	if colon < 0 || colon == len(arg)-1 {
		return args, nil
	}

	position := arg[colon+1:]
	lineStr, columnStr, hasColumn := strings.Cut(position, ",")

	line, err := strconv.Atoi(lineStr)
	if err != nil || line <= 0 {
		return args, nil
	}
	args.Path = arg[:colon]
	args.Line = line

	if hasColumn {
		column, err := strconv.Atoi(columnStr)
		if err != nil || column <= 0 {
			return ui.VimArgs{}, fmt.Errorf("bad column in %q", arg)
		}
		args.Column = column
	}
	return args, nil
}
