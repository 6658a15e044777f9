package render

import (
	"io"
	"os"
	"strings"
	"syscall"
	"testing"
)

func readAll(t *testing.T, k *KeyReader) []string {
	t.Helper()
	var keys []string
	for {
		key, err := k.ReadKey()
		if err == io.EOF {
			return keys
		}
		if err != nil {
			t.Fatalf("ReadKey: %v", err)
		}
		keys = append(keys, key)
	}
}

func TestReadKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"printable", "jk", []string{"j", "k"}},
		{"specials", "\r \t\x7f", []string{"RETURN", "SPACE", "TAB", "BACKSPACE"}},
		{"control", "\x07\x0c", []string{"CTRL-G", "CTRL-L"}},
		{"arrows", "\x1b[A\x1b[B", []string{"UP", "DOWN"}},
		{"paging", "\x1b[5~\x1b[6~", []string{"PAGE_UP", "PAGE_DOWN"}},
		{"meta", "\x1bu\x1b(", []string{"ESC-u", "ESC-("}},
		{"lone escape", "\x1b", []string{"ESC"}},
		{"utf8", "é日", []string{"é", "日"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readAll(t, NewKeyReader(strings.NewReader(tt.input), nil))
			if strings.Join(got, ",") != strings.Join(tt.expected, ",") {
				t.Errorf("got %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestReadKeyResize(t *testing.T) {
	ch := make(chan os.Signal, 1)
	ch <- syscall.SIGWINCH
	k := NewKeyReader(strings.NewReader("q"), ch)

	got := readAll(t, k)
	if len(got) != 2 || got[0] != KeyResize || got[1] != "q" {
		t.Errorf("expected resize before key, got %q", got)
	}
}

func TestTerminalInputTimeout(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "tty")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	n, err := TerminalInput{f}.Read(make([]byte, 8))
	if n != 0 || err != nil {
		t.Errorf("got %d, %v, expected an empty read without error", n, err)
	}
}
