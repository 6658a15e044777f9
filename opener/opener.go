// Package opener runs external programs from the viewer: the resource
// opener for links and extracted files, and shell escapes.
package opener

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"golang.org/x/term"
)

// Releaser hands the terminal over to a child process and takes it back.
// render.Terminal implements it.
type Releaser interface {
	Suspend(out *os.File) error
	Resume(out *os.File) error
}

// Runner runs programs with the terminal released. After the program
// exits it prints a prompt and waits for a key, so its output stays
// visible.
type Runner struct {
	Command string // opener program, given the target as its argument
	Shell   string // used for shell escapes, default $SHELL or /bin/sh

	Term Releaser
	In   *os.File
	Out  *os.File
	Err  io.Writer

	// Wait blocks until the user acknowledges. The default reads one key
	// from In.
	Wait func() error
	Log  *slog.Logger
}

// New creates a Runner attached to the process's standard streams.
func New(command string, t Releaser, log *slog.Logger) *Runner {
	return &Runner{
		Command: command,
		Term:    t,
		In:      os.Stdin,
		Out:     os.Stdout,
		Err:     os.Stderr,
		Log:     log,
	}
}

// Open hands target, a URI or a file path, to the opener program.
func (r *Runner) Open(target string) error {
	return r.run(exec.Command(r.Command, target))
}

// RunShell runs a command line through the shell.
func (r *Runner) RunShell(line string) error {
	sh := r.Shell
	if sh == "" {
		sh = os.Getenv("SHELL")
	}
	if sh == "" {
		sh = "/bin/sh"
	}
	return r.run(exec.Command(sh, "-c", line))
}

func (r *Runner) run(cmd *exec.Cmd) error {
	log := r.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	stderr := r.Err
	if stderr == nil {
		stderr = io.Discard
	}

	if r.Term != nil {
		if err := r.Term.Suspend(r.Out); err != nil {
			return fmt.Errorf("releasing terminal: %w", err)
		}
	}

	cmd.Stdin = r.In
	if r.Out != nil {
		cmd.Stdout = r.Out
	}
	cmd.Stderr = stderr
	name := cmd.Args[0]
	log.Info("running external program", "args", cmd.Args)

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		fmt.Fprintf(stderr, "%s returned non-zero exit status %d\n", name, exitErr.ExitCode())
		err = fmt.Errorf("%s returned non-zero exit status %d", name, exitErr.ExitCode())
	case err != nil:
		fmt.Fprintf(stderr, "Error calling %s: %v\n", name, err)
		err = fmt.Errorf("calling %s: %w", name, err)
	}
	if err != nil {
		log.Warn("external program failed", "args", cmd.Args, "err", err)
	}

	fmt.Fprint(stderr, "Press any key to continue...")
	if werr := r.wait(); werr != nil {
		log.Warn("waiting for key", "err", werr)
	}
	fmt.Fprintln(stderr)

	if r.Term != nil {
		if rerr := r.Term.Resume(r.Out); rerr != nil && err == nil {
			err = fmt.Errorf("reacquiring terminal: %w", rerr)
		}
	}
	return err
}

func (r *Runner) wait() error {
	if r.Wait != nil {
		return r.Wait()
	}
	if r.In == nil {
		return nil
	}
	return WaitForKey(r.In)
}

// WaitForKey reads a single key from f, switching a terminal to raw mode
// for the read.
func WaitForKey(f *os.File) error {
	fd := int(f.Fd())
	if term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return err
		}
		defer term.Restore(fd, old)
	}
	var b [1]byte
	_, err := f.Read(b[:])
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
