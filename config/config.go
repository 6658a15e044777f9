// Package config provides configuration loading for bookterm: a TOML
// settings file and a command file of set/map directives.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Reader settings
type Reader struct {
	Width               int    `toml:"width"`
	Hyphenate           bool   `toml:"hyphenate"`
	Language            string `toml:"language"`     // fallback when the book names none
	PatternsDir         string `toml:"patterns_dir"` // hyph-utf8 .pat.txt files
	Highlight           bool   `toml:"highlight"`
	StatusLeft          string `toml:"status_left"`
	StatusRight         string `toml:"status_right"`
	HorizontalIncrement int    `toml:"horizontal_increment"`
}

// State persistence settings
type State struct {
	Enabled bool   `toml:"enabled"`
	DBFile  string `toml:"dbfile"` // empty = $XDG_DATA_HOME/bookterm/bookterm.sqlite
}

// Opener settings
type Opener struct {
	Command string `toml:"command"`
}

// Config is the main configuration struct
type Config struct {
	Reader Reader            `toml:"reader"`
	State  State             `toml:"state"`
	Opener Opener            `toml:"opener"`
	Keys   map[string]string `toml:"keys"` // key name -> command name
}

// Default status templates of the reader.
const (
	DefaultStatusLeft  = "-{title}"
	DefaultStatusRight = "{current_page}---{chapter_counter}--{percent:->4}--"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Reader: Reader{
			Width:       80,
			Language:    "en_US",
			StatusLeft:  DefaultStatusLeft,
			StatusRight: DefaultStatusRight,
		},
		State: State{
			Enabled: true,
		},
		Opener: Opener{
			Command: "xdg-open",
		},
		Keys: map[string]string{},
	}
}

// Dir returns the configuration directory, $XDG_CONFIG_HOME/bookterm.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "bookterm"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "bookterm"), nil
}

// ConfigPath returns the path to the user's config file.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CommandFilePath returns the path to the user's command file.
func CommandFilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bookrc"), nil
}

// PatternsPath returns the directory searched for hyphenation patterns.
func (c *Config) PatternsPath() string {
	if c.Reader.PatternsDir != "" {
		return c.Reader.PatternsDir
	}
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "bookterm", "patterns")
}

// Load loads configuration, layering the file at path on top of defaults.
// An empty path means the default location, which may be absent.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return cfg, nil // Return defaults if we can't determine path
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return cfg, nil
		}
		path = p
	}

	userCfg, md, err := loadFromTOML(path)
	if err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("loading config from %s: unknown setting %q", path, undecoded[0].String())
	}
	return merge(cfg, userCfg, md), nil
}

// loadFromTOML loads a TOML config file and returns the config.
func loadFromTOML(path string) (*Config, toml.MetaData, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, md, fmt.Errorf("parsing config TOML: %w", err)
	}
	return &cfg, md, nil
}

// merge layers user config on top of defaults. Only keys present in the
// file override, so an explicit false or 0 is kept.
func merge(defaults, user *Config, md toml.MetaData) *Config {
	result := *defaults
	result.Keys = make(map[string]string, len(defaults.Keys)+len(user.Keys))
	for k, v := range defaults.Keys {
		result.Keys[k] = v
	}

	set := func(key ...string) bool { return md.IsDefined(key...) }

	// Reader
	if set("reader", "width") {
		result.Reader.Width = user.Reader.Width
	}
	if set("reader", "hyphenate") {
		result.Reader.Hyphenate = user.Reader.Hyphenate
	}
	if set("reader", "language") {
		result.Reader.Language = user.Reader.Language
	}
	if set("reader", "patterns_dir") {
		result.Reader.PatternsDir = user.Reader.PatternsDir
	}
	if set("reader", "highlight") {
		result.Reader.Highlight = user.Reader.Highlight
	}
	if set("reader", "status_left") {
		result.Reader.StatusLeft = user.Reader.StatusLeft
	}
	if set("reader", "status_right") {
		result.Reader.StatusRight = user.Reader.StatusRight
	}
	if set("reader", "horizontal_increment") {
		result.Reader.HorizontalIncrement = user.Reader.HorizontalIncrement
	}

	// State
	if set("state", "enabled") {
		result.State.Enabled = user.State.Enabled
	}
	if set("state", "dbfile") {
		result.State.DBFile = user.State.DBFile
	}

	// Opener
	if user.Opener.Command != "" {
		result.Opener.Command = user.Opener.Command
	}

	// Keys - each entry overrides or adds one binding
	for k, v := range user.Keys {
		result.Keys[k] = v
	}

	return &result
}

// DefaultTOML returns the default configuration as a TOML string.
// Used for --init-config to generate a user config file.
func DefaultTOML() string {
	return `# bookterm configuration
# Save to ~/.config/bookterm/config.toml and customize
# Only include settings you want to change from defaults

[reader]
width = 80                    # Wrap width, limited to the terminal width
hyphenate = false             # Break long words at hyphenation points
language = "en_US"            # Hyphenation language when the book names none
patterns_dir = ""             # hyph-utf8 patterns (empty = ~/.local/share/bookterm/patterns)
highlight = false             # Highlight search matches
status_left = "-{title}"
status_right = "{current_page}---{chapter_counter}--{percent:->4}--"
horizontal_increment = 0      # Columns per sideways scroll (0 = half the screen)

[state]
enabled = true                # Remember the reading position of each book
dbfile = ""                   # empty = ~/.local/share/bookterm/bookterm.sqlite

[opener]
command = "xdg-open"          # Program for web links and embedded resources

# Key overrides: key name = command name. See 'h' in the viewer.
[keys]
# "ESC-n" = "next_chapter"
`
}

// FormatError formats a configuration error for user display.
func FormatError(err error) string {
	return fmt.Sprintf("Configuration error:\n\n%s", err.Error())
}
