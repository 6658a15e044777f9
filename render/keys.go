package render

import (
	"errors"
	"io"
	"os"
	"unicode/utf8"
)

// KeyResize is delivered by KeyReader when the terminal changed size.
const KeyResize = "KEY_RESIZE"

// escape sequences for the named keys, as sent by xterm-compatible
// terminals in normal and application cursor mode.
var escapeKeys = map[string]string{
	"[A":  "UP",
	"[B":  "DOWN",
	"[C":  "RIGHT",
	"[D":  "LEFT",
	"OA":  "UP",
	"OB":  "DOWN",
	"OC":  "RIGHT",
	"OD":  "LEFT",
	"[H":  "HOME",
	"[F":  "END",
	"OH":  "HOME",
	"OF":  "END",
	"[1~": "HOME",
	"[4~": "END",
	"[7~": "HOME",
	"[8~": "END",
	"[2~": "INSERT",
	"[3~": "DELETE",
	"[5~": "PAGE_UP",
	"[6~": "PAGE_DOWN",
}

// KeyReader decodes raw terminal input into key names: printable
// characters stand for themselves, everything else gets a name such as
// "RETURN", "PAGE_DOWN", "CTRL-L" or "ESC-u".
type KeyReader struct {
	r       io.Reader
	resize  <-chan os.Signal
	pending []byte
}

// TerminalInput reads a terminal in raw mode, where a read that times
// out returns no bytes. Such reads are not the end of input.
type TerminalInput struct {
	*os.File
}

func (t TerminalInput) Read(b []byte) (int, error) {
	n, err := t.File.Read(b)
	if n == 0 && errors.Is(err, io.EOF) {
		return 0, nil
	}
	return n, err
}

// NewKeyReader reads keys from r. A value arriving on resize is reported
// as KeyResize before the next key; resize may be nil.
func NewKeyReader(r io.Reader, resize <-chan os.Signal) *KeyReader {
	return &KeyReader{r: r, resize: resize}
}

// ReadKey blocks until one key is available. It returns io.EOF once the
// input is exhausted.
func (k *KeyReader) ReadKey() (string, error) {
	for {
		if k.resize != nil {
			select {
			case <-k.resize:
				return KeyResize, nil
			default:
			}
		}
		if len(k.pending) > 0 {
			if key, n, ok := decodeKey(k.pending, false); ok {
				k.pending = k.pending[n:]
				return key, nil
			}
		}
		buf := make([]byte, 64)
		n, err := k.r.Read(buf)
		if n > 0 {
			k.pending = append(k.pending, buf[:n]...)
			continue
		}
		if err != nil {
			if len(k.pending) > 0 {
				key, n, _ := decodeKey(k.pending, true)
				k.pending = k.pending[n:]
				return key, nil
			}
			return "", err
		}
		// A read timeout with a lone ESC pending means the user pressed ESC.
		if len(k.pending) > 0 {
			key, n, _ := decodeKey(k.pending, true)
			k.pending = k.pending[n:]
			return key, nil
		}
	}
}

// decodeKey decodes the first key from b. With final unset, incomplete
// sequences report ok=false so the caller can read more input.
func decodeKey(b []byte, final bool) (key string, n int, ok bool) {
	c := b[0]
	switch {
	case c == 27:
		if len(b) == 1 {
			return "ESC", 1, final
		}
		if b[1] == '[' || b[1] == 'O' {
			for i := 2; i < len(b) && i < 8; i++ {
				if b[i] >= 0x40 && b[i] <= 0x7E {
					seq := string(b[1 : i+1])
					if name, found := escapeKeys[seq]; found {
						return name, i + 1, true
					}
					return "ESC-" + seq, i + 1, true
				}
			}
			if !final {
				return "", 0, false
			}
			return "ESC-" + string(b[1]), 2, true
		}
		r, size := utf8.DecodeRune(b[1:])
		return "ESC-" + string(r), 1 + size, true
	case c == '\r' || c == '\n':
		return "RETURN", 1, true
	case c == '\t':
		return "TAB", 1, true
	case c == ' ':
		return "SPACE", 1, true
	case c == 127 || c == 8:
		return "BACKSPACE", 1, true
	case c == 0:
		return "CTRL-@", 1, true
	case c < 32:
		return "CTRL-" + string(rune('A'+c-1)), 1, true
	}
	if !final && !utf8.FullRune(b) {
		return "", 0, false
	}
	r, size := utf8.DecodeRune(b)
	return string(r), size, true
}
