package pager

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bookterm/lineedit"
	"bookterm/render"
)

// Source supplies the lines to display, laid out for a wrap width.
type Source interface {
	Lines(width int) []string
}

// Text is a Source of fixed lines.
type Text []string

// Lines implements Source.
func (t Text) Lines(int) []string { return t }

// Surface is the character grid the pager draws on. render.Screen
// implements it.
type Surface interface {
	Size() (int, int)
	Resize(width, height int)
	Clear()
	WriteString(x, y int, s string, style render.Style) int
	SetStyle(x, y, length int, style render.Style)
	ShowCursor(x, y int)
	HideCursor()
	Show() error
}

// Count is the numeric prefix typed before a command.
type Count struct {
	N   int
	Set bool
}

// Or returns the count, or def when none was typed.
func (c Count) Or(def int) int {
	if c.Set {
		return c.N
	}
	return def
}

// Action tells the pager what a Handler did with a command.
type Action int

const (
	Unhandled Action = iota // run the default behavior
	Handled                 // done, keep reading keys
	Exit                    // leave the pager
)

// Handler gets the first look at every dispatched command.
type Handler interface {
	Handle(p *Pager, cmd Command, n Count) (Action, error)
}

// Pager runs the interactive loop over a Viewport.
type Pager struct {
	View        *Viewport
	Source      Source
	Handler     Handler
	Keys        Keymap
	Title       string
	StatusLeft  string
	StatusRight string

	// Extras adds fields to the status line templates.
	Extras func() map[string]string
	// BeforeJump runs before motions that jump rather than scroll.
	BeforeJump func()
	// Eval applies a line entered at the ':' prompt.
	Eval func(p *Pager, line string) error
	// CompleteCommand completes the ':' prompt.
	CompleteCommand lineedit.Completer
	// Shell runs a command line, releasing the terminal meanwhile.
	Shell func(command string) error
	// TermSize reports the terminal size after a resize notification.
	// When nil the surface keeps its size.
	TermSize func() (int, int, error)

	surface Surface
	keys    lineedit.KeySource
	prefix  string
	message string

	searchHistory  *lineedit.History
	commandHistory *lineedit.History
	shellHistory   *lineedit.History
}

// New creates a pager showing src on s, reading keys from keys.
func New(s Surface, keys lineedit.KeySource, src Source) *Pager {
	cols, rows := s.Size()
	return &Pager{
		View:           NewViewport(cols, rows),
		Source:         src,
		Keys:           DefaultKeymap(),
		StatusLeft:     DefaultStatusLeft,
		StatusRight:    DefaultStatusRight,
		surface:        s,
		keys:           keys,
		searchHistory:  lineedit.NewHistory(100),
		commandHistory: lineedit.NewHistory(100),
		shellHistory:   lineedit.NewHistory(100),
	}
}

// Sub creates a pager for a secondary view such as help, sharing the
// screen, the input and the prompt histories.
func (p *Pager) Sub(title string, src Source) *Pager {
	c := New(p.surface, p.keys, src)
	c.Title = title
	c.View.SetWidth(p.View.Width())
	c.Shell = p.Shell
	c.TermSize = p.TermSize
	c.searchHistory = p.searchHistory
	c.commandHistory = p.commandHistory
	c.shellHistory = p.shellHistory
	return c
}

// RunSub runs c, then adapts p to whatever size the screen ended at.
func (p *Pager) RunSub(c *Pager) error {
	err := c.Run()
	cols, rows := p.surface.Size()
	p.View.Resize(cols, rows)
	p.Reload()
	return err
}

// Run shows the source and handles keys until a command exits the pager
// or the input ends.
func (p *Pager) Run() error {
	p.Reload()
	for {
		if err := p.draw(); err != nil {
			return err
		}
		key, err := p.keys.ReadKey()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		quit, err := p.HandleKey(key)
		if err != nil || quit {
			return err
		}
	}
}

// HandleKey processes one key. Digits accumulate the prefix count; a
// bound key dispatches its command and clears the prefix.
func (p *Pager) HandleKey(key string) (bool, error) {
	if key == render.KeyResize {
		p.resize()
		return false, nil
	}
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		p.prefix += key
		return false, nil
	}
	cmd, ok := p.Keys[key]
	if !ok {
		p.Error(fmt.Sprintf("Key %s is not bound.  Press 'h' for help.", key))
		return false, nil
	}

	var n Count
	if p.prefix != "" {
		v, err := strconv.Atoi(p.prefix)
		p.prefix = ""
		if err != nil {
			p.Error("Prefix out of range")
			return false, nil
		}
		n = Count{N: v, Set: true}
	}
	return p.Dispatch(cmd, n)
}

// Prefix returns the digits typed so far.
func (p *Pager) Prefix() string { return p.prefix }

// Dispatch runs cmd through the handler, falling back to Do.
func (p *Pager) Dispatch(cmd Command, n Count) (bool, error) {
	if p.Handler != nil {
		act, err := p.Handler.Handle(p, cmd, n)
		if err != nil {
			return false, err
		}
		switch act {
		case Exit:
			return true, nil
		case Handled:
			return false, nil
		}
	}
	return p.Do(cmd, n)
}

// Do runs the built-in behavior of cmd. It reports whether the pager
// should exit.
func (p *Pager) Do(cmd Command, n Count) (bool, error) {
	v := p.View
	switch cmd {
	case NextLine:
		v.NextLine(n.Or(1))
	case PrevLine:
		v.PrevLine(n.Or(1))
	case NextPage:
		p.Jump()
		v.NextPage()
	case PrevPage:
		p.Jump()
		v.PrevPage()
	case FirstPage:
		p.Jump()
		v.FirstPage()
	case LastPage:
		p.Jump()
		v.LastPage()
	case GotoLine:
		p.Jump()
		v.GotoLine(n.Or(1))
	case GotoEnd:
		p.Jump()
		if n.Set {
			v.GotoLine(n.N)
		} else {
			v.LastPage()
		}
	case GotoPercent:
		p.Jump()
		v.GotoPercent(n.Or(0))
	case ScrollLeft:
		v.ScrollLeft(n.Or(0))
	case ScrollRight:
		v.ScrollRight(n.Or(0))
	case SetWidth:
		if !n.Set {
			p.Message(fmt.Sprintf("Width is %d", v.Width()))
			break
		}
		if n.N < 1 {
			p.Error("Prefix out of range")
			break
		}
		p.SetWidth(n.N)
	case SearchForward, SearchBackward:
		dir := Forward
		if cmd == SearchBackward {
			dir = Backward
		}
		ok, err := p.PromptPattern(dir)
		if err != nil {
			return false, err
		}
		if ok && !v.Repeat(false) {
			p.Error("Pattern not found")
		}
	case RepeatSearch, ReverseSearch:
		if v.Pattern() == nil {
			p.Error("No previous search pattern")
		} else if !v.Repeat(cmd == ReverseSearch) {
			p.Error("Pattern not found")
		}
	case ToggleHighlight:
		v.SetHighlight(!v.Highlight())
	case CancelPrefix, Redraw:
		// every frame is drawn in full and the prefix is already gone
	case Resize:
		p.resize()
	case EvalCommand:
		return false, p.evalCommand()
	case ShellEscape:
		return false, p.shellEscape()
	case ShowHelp:
		return false, p.RunSub(p.Sub("Help", Text(HelpLines(p.Keys))))
	case Quit:
		return true, nil
	default:
		p.Error(fmt.Sprintf("Command %s is not available here", cmd))
	}
	return false, nil
}

// Jump runs the BeforeJump hook.
func (p *Pager) Jump() {
	if p.BeforeJump != nil {
		p.BeforeJump()
	}
}

// SetWidth changes the wrap width and lays the source out again if it
// changed.
func (p *Pager) SetWidth(w int) {
	if p.View.SetWidth(w) {
		p.Reload()
	}
}

// Reload asks the source for its lines at the current width.
func (p *Pager) Reload() {
	if p.Source != nil {
		p.View.SetLines(p.Source.Lines(p.View.Width()))
	}
}

func (p *Pager) resize() {
	if p.TermSize != nil {
		if cols, rows, err := p.TermSize(); err == nil {
			p.surface.Resize(cols, rows)
		}
	}
	cols, rows := p.surface.Size()
	p.View.Resize(cols, rows)
	p.Reload()
}

// Message shows s on the message line until the next key.
func (p *Pager) Message(s string) { p.message = s }

// Error reports a failed command on the message line.
func (p *Pager) Error(s string) { p.message = s }

// ReadKey reads a single key, for commands taking a key argument. A
// resize is handled and reported as ok=false.
func (p *Pager) ReadKey() (string, bool, error) {
	if err := p.draw(); err != nil {
		return "", false, err
	}
	key, err := p.keys.ReadKey()
	if err != nil {
		return "", false, err
	}
	if key == render.KeyResize {
		p.resize()
		return "", false, nil
	}
	return key, true, nil
}

// Prompt reads a line on the message row. A cancelled or interrupted
// prompt reports ok=false; an interruption also resizes the view.
func (p *Pager) Prompt(label string, opts lineedit.Options) (string, bool, error) {
	res, err := lineedit.Prompt(p.keys, promptLine{p}, label, opts)
	p.surface.HideCursor()
	if err != nil {
		return "", false, err
	}
	switch res.Status {
	case lineedit.Interrupted:
		p.resize()
		return "", false, nil
	case lineedit.Cancelled:
		return "", false, nil
	}
	return res.Text, true, nil
}

// PromptPattern asks for a search pattern and activates it. It reports
// whether a valid pattern was entered.
func (p *Pager) PromptPattern(dir Direction) (bool, error) {
	label := "/"
	if dir == Backward {
		label = "?"
	}
	expr, ok, err := p.Prompt(label, lineedit.Options{History: p.searchHistory})
	if err != nil || !ok || expr == "" {
		return false, err
	}
	if err := p.View.SetPattern(expr, dir); err != nil {
		p.Error("Invalid pattern: " + err.Error())
		return false, nil
	}
	return true, nil
}

func (p *Pager) evalCommand() error {
	line, ok, err := p.Prompt(":", lineedit.Options{
		History:  p.commandHistory,
		Complete: p.CompleteCommand,
	})
	line = strings.TrimSpace(line)
	if err != nil || !ok || line == "" {
		return err
	}
	if p.Eval == nil {
		p.Error("Commands are not available here")
		return nil
	}
	if err := p.Eval(p, line); err != nil {
		p.Error(err.Error())
	}
	return nil
}

func (p *Pager) shellEscape() error {
	line, ok, err := p.Prompt("Shell command: ", lineedit.Options{History: p.shellHistory})
	if err != nil || !ok || strings.TrimSpace(line) == "" {
		return err
	}
	if p.Shell == nil {
		p.Error("Shell commands are not available")
		return nil
	}
	if err := p.Shell(line); err != nil {
		p.Error(err.Error())
	}
	return nil
}

// StatusData returns the values available to the status templates.
func (p *Pager) StatusData() map[string]string {
	data := map[string]string{
		"percent":   strconv.Itoa(p.View.Percent()) + "%",
		"title":     p.Title,
		"title_len": strconv.Itoa(render.StringWidth(p.Title)),
	}
	if p.Extras != nil {
		for k, v := range p.Extras() {
			data[k] = v
		}
	}
	return data
}

func (p *Pager) drawPage() {
	v := p.View
	p.surface.Clear()

	lines := v.Lines()
	for row := 0; row < v.Rows() && v.Y()+row < len(lines); row++ {
		line := lines[v.Y()+row]
		p.surface.WriteString(0, row, render.ClipColumns(line, v.X(), v.Cols()), render.Style{})
		if v.Highlight() && v.Pattern() != nil {
			for _, loc := range v.Pattern().FindAllStringIndex(line, -1) {
				start := max(render.ColumnOf(line, loc[0])-v.X(), 0)
				end := render.ColumnOf(line, loc[1]) - v.X()
				if end > start {
					p.surface.SetStyle(start, row, end-start, render.Style{Reverse: true})
				}
			}
		}
	}

	data := p.StatusData()
	status := StatusLine(FormatStatus(p.StatusLeft, data), FormatStatus(p.StatusRight, data), v.Cols(), '-')
	reverse := render.Style{Reverse: true}
	p.surface.WriteString(0, v.Rows(), status, reverse)
	p.surface.SetStyle(0, v.Rows(), v.Cols(), reverse)
}

func (p *Pager) draw() error {
	p.drawPage()
	p.surface.WriteString(0, p.View.Rows()+1, render.TruncateToWidth(p.message, p.View.Cols()), render.Style{})
	p.message = ""
	p.surface.HideCursor()
	return p.surface.Show()
}

// promptLine draws a prompt on the message row, scrolling it sideways
// when the cursor would leave the screen.
type promptLine struct {
	p *Pager
}

func (l promptLine) DrawPrompt(line string, cursor int) error {
	p := l.p
	p.drawPage()
	cols := p.View.Cols()
	offset := 0
	if step := max(cols-1, 1); cursor >= cols {
		offset = cursor / step * step
	}
	row := p.View.Rows() + 1
	p.surface.WriteString(0, row, render.ClipColumns(line, offset, cols), render.Style{})
	p.surface.ShowCursor(cursor-offset, row)
	return p.surface.Show()
}

// HelpLines lists the bindings of k as a table.
func HelpLines(k Keymap) []string {
	t := render.NewTable("Key", "Command", "Description")
	for _, key := range k.Keys() {
		cmd := k[key]
		t.AddRow(key, cmd.String(), cmd.Help())
	}
	return t.Lines()
}
