package term

import (
	"bufio"

	"github.com/vburojevic/sdbg/internal/mux"
)

// decodeKey reads one keystroke from a raw-mode byte stream. Unknown
// control bytes and unrecognized escape sequences are swallowed so a
// stray sequence never ends up in the edit buffer.
func decodeKey(in *bufio.Reader) (mux.KeyEvent, error) {
	for {
		b, err := in.ReadByte()
		if err != nil {
			return mux.KeyEvent{}, err
		}
		switch b {
		case '\r', '\n':
			return mux.KeyEvent{Key: mux.KeyEnter}, nil
		case 0x04:
			return mux.KeyEvent{Key: mux.KeyCtrlD}, nil
		case 0x03:
			return mux.KeyEvent{Key: mux.KeyCtrlC}, nil
		case 0x7f, 0x08:
			return mux.KeyEvent{Key: mux.KeyBackspace}, nil
		case 0x1b:
			k, ok, err := decodeEscape(in)
			if err != nil {
				return mux.KeyEvent{}, err
			}
			if ok {
				return k, nil
			}
		default:
			if b < 0x20 {
				continue
			}
			if err := in.UnreadByte(); err != nil {
				return mux.KeyEvent{}, err
			}
			r, _, err := in.ReadRune()
			if err != nil {
				return mux.KeyEvent{}, err
			}
			return mux.KeyEvent{Key: mux.KeyRune, Rune: r}, nil
		}
	}
}

func decodeEscape(in *bufio.Reader) (mux.KeyEvent, bool, error) {
	b, err := in.ReadByte()
	if err != nil {
		return mux.KeyEvent{}, false, err
	}
	if b != '[' {
		// Lone ESC or an alt-modified key; ignore both.
		return mux.KeyEvent{}, false, nil
	}
	final, err := in.ReadByte()
	if err != nil {
		return mux.KeyEvent{}, false, err
	}
	switch final {
	case 'A':
		return mux.KeyEvent{Key: mux.KeyUp}, true, nil
	case 'B':
		return mux.KeyEvent{Key: mux.KeyDown}, true, nil
	case 'C':
		return mux.KeyEvent{Key: mux.KeyRight}, true, nil
	case 'D':
		return mux.KeyEvent{Key: mux.KeyLeft}, true, nil
	}
	// Swallow the rest of an unhandled CSI sequence (params + final).
	for final >= 0x30 && final <= 0x3f {
		final, err = in.ReadByte()
		if err != nil {
			return mux.KeyEvent{}, false, err
		}
	}
	return mux.KeyEvent{}, false, nil
}
