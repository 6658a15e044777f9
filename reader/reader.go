// Package reader adds chapters to the pager: chapter stepping at page
// boundaries, link following, a table of contents, markers, search
// across chapters and saved reading positions.
package reader

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"

	"bookterm/config"
	"bookterm/document"
	"bookterm/pager"
	"bookterm/render"
	"bookterm/state"
)

// Book is the chapter provider.
type Book interface {
	Path() string
	Metadata() document.Metadata
	Chapters() []document.Chapter
	BodyStart() (document.Location, bool)
	TOC() (markup, base string, ok bool)
	PageList() []document.PageLabel
	Hash() string
	Extract(name, dir string) (string, error)
}

// Opener hands a URI or file path to an external program.
type Opener interface {
	Open(target string) error
}

// Store persists reading positions by content hash.
type Store interface {
	Get(hash string) (state.Position, error)
	Put(hash, filename string, pos state.Position, at time.Time) error
}

var (
	ErrNoChapters     = errors.New("book has no chapters")
	ErrNoTOC          = errors.New("no table of content found")
	ErrNoPrefix       = errors.New("no prefix entered")
	ErrBadLink        = errors.New("illegal index")
	ErrUnknownChapter = errors.New("file unknown")
	ErrNoOffset       = errors.New("character not found")
	ErrNoMarker       = errors.New("position not set")
)

// Options configures a Reader.
type Options struct {
	Config     *config.Config      // nil = config.Default()
	Hyphenator document.Hyphenator // used while hyphenation is enabled
	Opener     Opener
	Store      Store // nil disables saved positions
	Logger     *slog.Logger
	Now        func() time.Time
}

// Reader is the chapter-aware navigator driving a pager.
type Reader struct {
	book     Book
	pager    *pager.Pager
	chapters []document.Chapter
	index    int
	rendered *document.Rendered

	cfg         *config.Config
	hyphenator  document.Hyphenator
	hyphenating bool
	cache       *document.Cache
	tocCache    *document.Cache

	pages   map[string][]document.PageLabel // chapter id -> labels in order
	markers map[string]state.Position

	opener Opener
	store  Store
	log    *slog.Logger
	now    func() time.Time
}

// New attaches a reader for book to p.
func New(book Book, p *pager.Pager, opts Options) (*Reader, error) {
	chapters := book.Chapters()
	if len(chapters) == 0 {
		return nil, ErrNoChapters
	}
	r := &Reader{
		book:       book,
		pager:      p,
		chapters:   chapters,
		cfg:        opts.Config,
		hyphenator: opts.Hyphenator,
		tocCache:   document.NewCache(nil),
		pages:      make(map[string][]document.PageLabel),
		markers:    make(map[string]state.Position),
		opener:     opts.Opener,
		store:      opts.Store,
		log:        opts.Logger,
		now:        opts.Now,
	}
	if r.cfg == nil {
		r.cfg = config.Default()
	}
	if r.log == nil {
		r.log = slog.New(slog.DiscardHandler)
	}
	if r.now == nil {
		r.now = time.Now
	}
	for _, pl := range book.PageList() {
		r.pages[pl.Target.Path] = append(r.pages[pl.Target.Path], pl)
	}

	md := book.Metadata()
	p.Title = md.Title
	if md.Author != "" {
		p.Title = fmt.Sprintf("%s (%s)", md.Title, md.Author)
	}
	p.Source = r
	p.Handler = r
	p.Extras = r.statusData
	p.BeforeJump = r.markMovement
	p.Eval = r.Eval
	p.CompleteCommand = r.complete

	if err := r.Configure(); err != nil {
		return nil, err
	}
	return r, nil
}

// Keymap returns the pager bindings plus the reader's own.
func Keymap() pager.Keymap {
	k := pager.DefaultKeymap()
	k["]"] = pager.NextChapter
	k["["] = pager.PrevChapter
	k["t"] = pager.GotoTOC
	k["o"] = pager.FollowLink
	k["m"] = pager.SaveMarker
	k["'"] = pager.GotoMarker
	k["\\"] = pager.ShowSource
	return k
}

// Configure pushes the current settings into the pager.
func (r *Reader) Configure() error {
	c, p := r.cfg, r.pager

	keys := Keymap()
	for key, name := range c.Keys {
		if err := keys.Bind(key, name); err != nil {
			return err
		}
	}
	p.Keys = keys
	p.StatusLeft = c.Reader.StatusLeft
	p.StatusRight = c.Reader.StatusRight
	p.View.SetHighlight(c.Reader.Highlight)
	p.View.SetIncrement(c.Reader.HorizontalIncrement)

	hyphenate := c.Reader.Hyphenate && r.hyphenator != nil
	if r.cache == nil || hyphenate != r.hyphenating {
		var h document.Hyphenator
		if hyphenate {
			h = r.hyphenator
		}
		r.cache = document.NewCache(h)
		r.hyphenating = hyphenate
	}
	p.SetWidth(c.Reader.Width)
	p.Reload()
	return nil
}

// Lines implements pager.Source with the active chapter.
func (r *Reader) Lines(width int) []string {
	ch := r.chapters[r.index]
	misses := r.cache.Misses()
	r.rendered = r.cache.Get(ch, width)
	if r.cache.Misses() > misses {
		r.log.Debug("rendered chapter", "id", ch.ID, "width", width, "lines", len(r.rendered.Lines))
	}
	return r.rendered.Lines
}

// Index returns the active chapter.
func (r *Reader) Index() int { return r.index }

// Chapter returns the active chapter.
func (r *Reader) Chapter() document.Chapter { return r.chapters[r.index] }

// Rendered returns the layout of the active chapter.
func (r *Reader) Rendered() *document.Rendered { return r.rendered }

// LoadChapter makes chapter n, clamped to the book, active at its top.
func (r *Reader) LoadChapter(n int) {
	r.index = max(0, min(n, len(r.chapters)-1))
	r.pager.View.SetY(0)
	r.pager.Reload()
}

// NextChapter steps forward. It reports false at the last chapter.
func (r *Reader) NextChapter() bool {
	if r.index >= len(r.chapters)-1 {
		r.pager.Message("No more chapters.")
		return false
	}
	r.markMovement()
	r.LoadChapter(r.index + 1)
	return true
}

// PrevChapter steps backward. It reports false at the first chapter.
func (r *Reader) PrevChapter() bool {
	if r.index == 0 {
		r.pager.Message("Already at first chapter.")
		return false
	}
	r.markMovement()
	r.LoadChapter(r.index - 1)
	return true
}

func (r *Reader) find(id string) int {
	for i, ch := range r.chapters {
		if ch.ID == id {
			return i
		}
	}
	return -1
}

// Handle implements pager.Handler.
func (r *Reader) Handle(p *pager.Pager, cmd pager.Command, n pager.Count) (pager.Action, error) {
	v := p.View
	var err error
	switch cmd {
	case pager.NextPage:
		p.Jump()
		if !v.NextPage() {
			r.NextChapter()
		}
	case pager.PrevPage:
		p.Jump()
		if !v.PrevPage() && r.PrevChapter() {
			v.LastPage()
		}
	case pager.NextChapter:
		r.NextChapter()
	case pager.PrevChapter:
		r.PrevChapter()
	case pager.SearchForward, pager.SearchBackward:
		dir := pager.Forward
		if cmd == pager.SearchBackward {
			dir = pager.Backward
		}
		ok, perr := p.PromptPattern(dir)
		if perr != nil {
			return pager.Handled, perr
		}
		if ok && !r.Search(false) {
			p.Error("Pattern not found")
		}
	case pager.RepeatSearch, pager.ReverseSearch:
		if v.Pattern() == nil {
			p.Error("No previous search pattern")
		} else if !r.Search(cmd == pager.ReverseSearch) {
			p.Error("Pattern not found")
		}
	case pager.FollowLink:
		err = r.FollowLink(n)
	case pager.GotoTOC:
		err = r.ShowTOC()
	case pager.SaveMarker:
		key, ok, kerr := p.ReadKey()
		if kerr != nil {
			return pager.Handled, kerr
		}
		if ok {
			r.markers[key] = r.Position()
		}
	case pager.GotoMarker:
		key, ok, kerr := p.ReadKey()
		if kerr != nil {
			return pager.Handled, kerr
		}
		if ok {
			err = r.GotoMarker(key)
		}
	case pager.ShowSource:
		src := document.PrettySource(r.Chapter().Markup)
		return pager.Handled, p.RunSub(p.Sub("Source", pager.Text(src)))
	case pager.SetWidth:
		if n.Set && n.N >= 1 {
			r.cfg.Reader.Width = n.N
		}
		return pager.Unhandled, nil
	default:
		return pager.Unhandled, nil
	}
	if err != nil {
		r.log.Debug("command failed", "command", cmd.String(), "err", err)
		p.Error(message(err))
	}
	return pager.Handled, nil
}

// message turns an error into a status line message.
func message(err error) string {
	s := err.Error()
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// Search repeats the active search, continuing into following chapters,
// or preceding ones when searching backward. It reports whether a match
// was found.
func (r *Reader) Search(reverse bool) bool {
	v := r.pager.View
	p := r.pager
	p.Jump()
	if v.Repeat(reverse) {
		return true
	}

	forward := (v.Direction() == pager.Forward) != reverse
	pat := v.Pattern()
	step := 1
	if !forward {
		step = -1
	}
	for i := r.index + step; i >= 0 && i < len(r.chapters); i += step {
		rendered := r.cache.Get(r.chapters[i], v.Width())
		found := false
		for _, l := range rendered.Lines {
			if pat.MatchString(l) {
				found = true
				break
			}
		}
		if !found {
			continue
		}
		r.LoadChapter(i)
		if forward {
			return v.NextMatchAfter(-1)
		}
		return v.PrevMatchBefore(len(v.Lines()))
	}
	return false
}

// FollowLink follows link n of the active chapter, counting from 1.
func (r *Reader) FollowLink(n pager.Count) error {
	if !n.Set {
		return ErrNoPrefix
	}
	links := r.rendered.Links
	if n.N < 1 || n.N > len(links) {
		return fmt.Errorf("%w %d", ErrBadLink, n.N)
	}
	loc, err := document.ResolveLink(links[n.N-1], r.Chapter().ID)
	if err != nil {
		return fmt.Errorf("%w %d: %v", ErrBadLink, n.N, err)
	}
	return r.GotoLocation(loc)
}

// GotoLocation shows loc: external targets and embedded resources go to
// the opener, chapters are loaded and scrolled to the fragment.
func (r *Reader) GotoLocation(loc document.Location) error {
	if loc.IsExternal() {
		return r.open(loc.External)
	}
	if i := r.find(loc.Path); i >= 0 {
		r.markMovement()
		r.LoadChapter(i)
		if loc.Fragment != "" {
			if line, ok := r.rendered.Anchors[loc.Fragment]; ok {
				r.pager.View.SetY(line)
			}
		}
		return nil
	}

	dir, err := os.MkdirTemp("", "bookterm-")
	if err != nil {
		return fmt.Errorf("creating temporary directory: %w", err)
	}
	defer os.RemoveAll(dir)
	file, err := r.book.Extract(loc.Path, dir)
	if err != nil {
		return err
	}
	return r.open(file)
}

func (r *Reader) open(target string) error {
	if r.opener == nil {
		return errors.New("no program configured to open " + target)
	}
	r.log.Info("opening", "target", target)
	return r.opener.Open(target)
}

// ShowTOC displays the table of contents. Following a link there leaves
// it and goes to the link target.
func (r *Reader) ShowTOC() error {
	markup, base, ok := r.book.TOC()
	if !ok {
		return ErrNoTOC
	}
	toc := &tocView{cache: r.tocCache, chapter: document.Chapter{ID: base, Markup: markup}}
	sub := r.pager.Sub("Table of contents", toc)
	sub.Keys = r.pager.Keys.Clone()
	sub.Handler = toc
	if err := r.pager.RunSub(sub); err != nil {
		return err
	}
	if toc.chosen == nil {
		return nil
	}
	return r.GotoLocation(*toc.chosen)
}

// tocView is the table of contents as a pager source and handler.
type tocView struct {
	cache    *document.Cache
	chapter  document.Chapter
	rendered *document.Rendered
	chosen   *document.Location
}

func (t *tocView) Lines(width int) []string {
	t.rendered = t.cache.Get(t.chapter, width)
	return t.rendered.Lines
}

func (t *tocView) Handle(p *pager.Pager, cmd pager.Command, n pager.Count) (pager.Action, error) {
	if cmd != pager.FollowLink {
		return pager.Unhandled, nil
	}
	switch {
	case !n.Set:
		p.Error(message(ErrNoPrefix))
	case n.N < 1 || n.N > len(t.rendered.Links):
		p.Error(message(fmt.Errorf("%w %d", ErrBadLink, n.N)))
	default:
		loc, err := document.ResolveLink(t.rendered.Links[n.N-1], t.chapter.ID)
		if err != nil {
			p.Error(message(err))
			break
		}
		t.chosen = &loc
		return pager.Exit, nil
	}
	return pager.Handled, nil
}

// Position returns the active chapter and the display width of the lines
// above the top line, plus one.
func (r *Reader) Position() state.Position {
	offset := 1
	lines := r.pager.View.Lines()
	for _, l := range lines[:min(r.pager.View.Y(), len(lines))] {
		offset += render.StringWidth(l)
	}
	return state.Position{ChapterID: r.Chapter().ID, Offset: offset}
}

// Restore loads the chapter of pos and scrolls to the first line whose
// cumulative width reaches the offset.
func (r *Reader) Restore(pos state.Position) error {
	i := r.find(pos.ChapterID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownChapter, pos.ChapterID)
	}
	r.LoadChapter(i)
	if pos.Offset <= 1 {
		return nil
	}
	count := 0
	for idx, l := range r.pager.View.Lines() {
		count += render.StringWidth(l)
		if count >= pos.Offset {
			r.pager.View.SetY(idx)
			return nil
		}
	}
	return ErrNoOffset
}

func (r *Reader) markMovement() {
	if r.rendered != nil {
		r.markers["'"] = r.Position()
	}
}

// GotoMarker jumps to the position saved under key. The position left
// becomes the "'" marker.
func (r *Reader) GotoMarker(key string) error {
	pos, ok := r.markers[key]
	if !ok {
		return ErrNoMarker
	}
	here := r.Position()
	index, y := r.index, r.pager.View.Y()
	if err := r.Restore(pos); err != nil {
		if r.index != index {
			r.LoadChapter(index)
		}
		r.pager.View.SetY(y)
		return fmt.Errorf("can't restore mark: %w", err)
	}
	r.markers["'"] = here
	return nil
}

// Start shows the saved position of the book, or the start of its body.
func (r *Reader) Start() {
	if r.store != nil && r.restoreSaved() {
		return
	}
	r.LoadChapter(0)
	loc, ok := r.book.BodyStart()
	if !ok || loc.IsExternal() || r.find(loc.Path) < 0 {
		return
	}
	r.GotoLocation(loc)
	delete(r.markers, "'")
}

func (r *Reader) restoreSaved() bool {
	hash := r.book.Hash()
	pos, err := r.store.Get(hash)
	if errors.Is(err, state.ErrNotFound) {
		r.log.Debug("no saved position", "hash", hash)
		return false
	}
	if err == nil {
		err = r.Restore(pos)
	}
	if err != nil {
		r.log.Warn("restoring position", "hash", hash, "err", err)
		r.pager.Error(message(fmt.Errorf("can't restore position: %w", err)))
		return false
	}
	r.log.Info("restored position", "chapter", pos.ChapterID, "offset", pos.Offset)
	return true
}

// Save stores the current position of the book.
func (r *Reader) Save() error {
	if r.store == nil || !r.cfg.State.Enabled {
		return nil
	}
	pos := r.Position()
	if err := r.store.Put(r.book.Hash(), r.book.Path(), pos, r.now()); err != nil {
		return err
	}
	r.log.Info("saved position", "chapter", pos.ChapterID, "offset", pos.Offset)
	return nil
}

// PageLabel returns the printed page at the top of the screen.
func (r *Reader) PageLabel() (string, bool) {
	label, found := "", false
	for _, pl := range r.pages[r.Chapter().ID] {
		line, ok := r.rendered.Anchors[pl.Target.Fragment]
		if !ok {
			continue
		}
		if line > r.pager.View.Y() {
			break
		}
		label, found = pl.Label, true
	}
	return label, found
}

func (r *Reader) statusData() map[string]string {
	data := map[string]string{
		"author":          r.book.Metadata().Author,
		"chapter":         r.Chapter().ID,
		"chapter_counter": strconv.Itoa(r.index+1) + "/" + strconv.Itoa(len(r.chapters)),
		"current_page":    "",
	}
	if label, ok := r.PageLabel(); ok {
		data["current_page"] = "p." + label
	}
	return data
}
