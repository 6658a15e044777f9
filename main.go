// bookterm is a terminal reader for EPUB books.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"bookterm/config"
	"bookterm/document"
	"bookterm/epub"
	"bookterm/opener"
	"bookterm/pager"
	"bookterm/reader"
	"bookterm/render"
	"bookterm/state"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	width      int
	hyphenate  bool
	language   string
	dbfile     string
	noState    bool
	configPath string
	logFile    string
	print      bool
	initConfig bool
}

func newRootCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "bookterm [flags] FILE",
		Short: "Read EPUB books in the terminal",
		Long: `bookterm shows an EPUB book one chapter at a time, with search, links,
a table of contents and markers. The reading position is saved on exit.

Configuration:
  Settings:     ~/.config/bookterm/config.toml (bookterm --init-config)
  Command file: ~/.config/bookterm/bookrc (set/map directives)`,
		Args: func(cmd *cobra.Command, args []string) error {
			if o.initConfig {
				return nil
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.initConfig {
				fmt.Fprint(cmd.OutOrStdout(), config.DefaultTOML())
				return nil
			}
			return runBook(cmd, args[0], o)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&o.width, "width", 0, "wrap width (default 80)")
	flags.BoolVar(&o.hyphenate, "hyphenate", false, "hyphenate text")
	flags.StringVar(&o.language, "language", "", "hyphenation language when the book names none (default en_US)")
	flags.StringVar(&o.dbfile, "dbfile", "", "state database (default ~/.local/share/bookterm/bookterm.sqlite)")
	flags.BoolVar(&o.noState, "no-state", false, "neither restore nor save the reading position")
	flags.StringVar(&o.configPath, "config", "", "config file (default ~/.config/bookterm/config.toml)")
	flags.StringVar(&o.logFile, "log", "", "append a debug log to this file")
	flags.BoolVarP(&o.print, "print", "p", false, "print the book to stdout and exit")
	flags.BoolVar(&o.initConfig, "init-config", false, "print the default config and exit")
	return cmd
}

// loadConfig layers the config file, the command file and the flags.
func loadConfig(cmd *cobra.Command, o options) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("%s", config.FormatError(err))
	}

	path, err := config.CommandFilePath()
	if err == nil {
		directives, err := config.LoadCommands(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.ApplyAll(path, directives); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		if o.width < 1 {
			return nil, fmt.Errorf("invalid width %d", o.width)
		}
		cfg.Reader.Width = o.width
	}
	if flags.Changed("hyphenate") {
		cfg.Reader.Hyphenate = o.hyphenate
	}
	if flags.Changed("language") {
		cfg.Reader.Language = o.language
	}
	if flags.Changed("dbfile") {
		cfg.State.DBFile = o.dbfile
	}
	if o.noState {
		cfg.State.Enabled = false
	}
	return cfg, nil
}

func newLogger(path string) (*slog.Logger, io.Closer, error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log: %w", err)
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(h), f, nil
}

// loadHyphenator loads the patterns for the book language. Missing
// patterns only matter when hyphenation is on.
func loadHyphenator(cfg *config.Config, book *epub.Book, log *slog.Logger) document.Hyphenator {
	lang := book.Metadata().Language
	if lang == "" {
		lang = cfg.Reader.Language
	}
	h, err := document.LoadHyphenator(cfg.PatternsPath(), lang)
	if err != nil {
		if cfg.Reader.Hyphenate {
			log.Warn("hyphenation disabled", "language", lang, "err", err)
		}
		return nil
	}
	log.Debug("loaded hyphenation patterns", "language", lang)
	return h
}

func runBook(cmd *cobra.Command, path string, o options) error {
	cfg, err := loadConfig(cmd, o)
	if err != nil {
		return err
	}
	log, logCloser, err := newLogger(o.logFile)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	book, err := epub.Open(path)
	if err != nil {
		return err
	}
	defer book.Close()
	log.Info("opened book", "path", path, "chapters", len(book.Chapters()))

	hy := loadHyphenator(cfg, book, log)
	render.SetEastAsian(runewidth.IsEastAsian())

	fd := os.Stdout.Fd()
	if o.print || (!isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)) {
		return runPrint(cmd.OutOrStdout(), book, cfg, hy)
	}
	return run(book, cfg, hy, log)
}

// runPrint writes every chapter to w, separated by a blank line.
func runPrint(w io.Writer, book *epub.Book, cfg *config.Config, hy document.Hyphenator) error {
	if !cfg.Reader.Hyphenate {
		hy = nil
	}
	out := bufio.NewWriter(w)
	for i, ch := range book.Chapters() {
		if i > 0 {
			out.WriteString("\n")
		}
		lines := document.Render(ch.Markup, cfg.Reader.Width, hy).Lines
		if len(lines) > 0 {
			out.WriteString(strings.Join(lines, "\n") + "\n")
		}
	}
	return out.Flush()
}

func openStore(cfg *config.Config, log *slog.Logger) reader.Store {
	if !cfg.State.Enabled {
		return nil
	}
	path := cfg.State.DBFile
	if path == "" {
		p, err := state.DefaultPath()
		if err != nil {
			log.Warn("no state directory", "err", err)
			return nil
		}
		path = p
	}
	store, err := state.Open(path)
	if err != nil {
		log.Warn("reading positions will not be saved", "path", path, "err", err)
		return nil
	}
	log.Debug("opened state", "path", path)
	return store
}

func run(book *epub.Book, cfg *config.Config, hy document.Hyphenator, log *slog.Logger) error {
	store := openStore(cfg, log)
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	// Set up terminal
	width, height, err := render.TerminalSize()
	if err != nil {
		return fmt.Errorf("detecting terminal: %w", err)
	}

	term, err := render.NewTerminal(os.Stdin)
	if err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}

	render.EnterAltScreen(os.Stdout)
	if err := term.EnterRawMode(); err != nil {
		render.ExitAltScreen(os.Stdout)
		return fmt.Errorf("entering raw mode: %w", err)
	}

	defer func() {
		fmt.Fprint(os.Stdout, render.CursorShow)
		term.RestoreMode()
		render.ExitAltScreen(os.Stdout)
	}()

	resizeCh := make(chan os.Signal, 1)
	signal.Notify(resizeCh, syscall.SIGWINCH)
	defer signal.Stop(resizeCh)

	screen := render.NewScreen(os.Stdout, width, height)
	keys := render.NewKeyReader(render.TerminalInput{File: os.Stdin}, resizeCh)

	runner := opener.New(cfg.Opener.Command, term, log)
	p := pager.New(screen, keys, nil)
	p.TermSize = render.TerminalSize
	p.Shell = runner.RunShell

	r, err := reader.New(book, p, reader.Options{
		Config:     cfg,
		Hyphenator: hy,
		Opener:     runner,
		Store:      store,
		Logger:     log,
	})
	if err != nil {
		return err
	}

	r.Start()
	err = p.Run()
	if serr := r.Save(); serr != nil {
		log.Warn("saving position", "err", serr)
		err = errors.Join(err, serr)
	}
	return err
}
