// Package pager implements a scrollable, searchable text viewer driven by
// prefix-counted key commands.
package pager

import (
	"fmt"
	"sort"
)

// Command is one bindable viewer action.
type Command int

const (
	NoCommand Command = iota
	NextLine
	PrevLine
	NextPage
	PrevPage
	FirstPage
	LastPage
	GotoLine
	GotoEnd
	GotoPercent
	ScrollLeft
	ScrollRight
	SetWidth
	SearchForward
	SearchBackward
	RepeatSearch
	ReverseSearch
	ToggleHighlight
	CancelPrefix
	Redraw
	Resize
	EvalCommand
	ShellEscape
	ShowHelp
	Quit

	// Book navigation, handled by the reader.
	NextChapter
	PrevChapter
	GotoTOC
	FollowLink
	SaveMarker
	GotoMarker
	ShowSource
)

type commandInfo struct {
	name string
	help string
}

var commands = map[Command]commandInfo{
	NextLine:        {"next_line", "Scroll forward N lines, default 1"},
	PrevLine:        {"prev_line", "Scroll backward N lines, default 1"},
	NextPage:        {"next_page", "Display next page"},
	PrevPage:        {"prev_page", "Display previous page"},
	FirstPage:       {"jump_to_first_page", "Go to the start of the chapter"},
	LastPage:        {"jump_to_last_page", "Go to the end of the chapter"},
	GotoLine:        {"goto_line", "Go to line N, default 1"},
	GotoEnd:         {"goto_end", "Go to line N, default the end"},
	GotoPercent:     {"goto_percent", "Go to a position N percent into the chapter"},
	ScrollLeft:      {"scroll_left", "Scroll left N columns, default half the screen"},
	ScrollRight:     {"scroll_right", "Scroll right N columns, default half the screen"},
	SetWidth:        {"set_width", "Set the text width to N"},
	SearchForward:   {"search_forward", "Search forward for pattern"},
	SearchBackward:  {"search_backward", "Search backward for pattern"},
	RepeatSearch:    {"repeat_previous_search", "Repeat previous search"},
	ReverseSearch:   {"reverse_previous_search", "Repeat previous search in the reverse direction"},
	ToggleHighlight: {"toggle_highlighting", "Toggle search highlighting"},
	CancelPrefix:    {"cancel_prefix", "Cancel current prefix"},
	Redraw:          {"redraw", "Redraw screen"},
	Resize:          {"resize", "Adapt to the terminal size"},
	EvalCommand:     {"eval_command", "Enter a command file directive"},
	ShellEscape:     {"shell_escape", "Invoke a command in a subshell"},
	ShowHelp:        {"show_help", "Show key bindings"},
	Quit:            {"exit", "Quit"},
	NextChapter:     {"next_chapter", "Go to the next chapter"},
	PrevChapter:     {"prev_chapter", "Go to the previous chapter"},
	GotoTOC:         {"goto_toc", "Show the table of contents"},
	FollowLink:      {"follow_link", "Follow link N"},
	SaveMarker:      {"save_marker", "Remember the position under the next key"},
	GotoMarker:      {"goto_marker", "Go to the position remembered under the next key"},
	ShowSource:      {"show_source", "Show the chapter markup"},
}

var byName = func() map[string]Command {
	m := make(map[string]Command, len(commands))
	for c, info := range commands {
		m[info.name] = c
	}
	return m
}()

func (c Command) String() string {
	if info, ok := commands[c]; ok {
		return info.name
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// Help returns a one-line description of c.
func (c Command) Help() string {
	return commands[c].help
}

// ParseCommand looks a command up by name.
func ParseCommand(name string) (Command, bool) {
	c, ok := byName[name]
	return c, ok
}

// CommandNames returns all command names in alphabetical order.
func CommandNames() []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
