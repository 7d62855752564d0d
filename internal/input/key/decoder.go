package key

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

// Decode errors.
var (
	// ErrIncomplete indicates the buffer ends mid-sequence; the caller
	// should read more bytes and retry.
	ErrIncomplete = errors.New("incomplete input sequence")

	// ErrUnknownSequence indicates a well-formed but unrecognized
	// sequence. The reported consumed count skips past it.
	ErrUnknownSequence = errors.New("unknown input sequence")
)

// tildeKeys maps CSI ...~ parameters to keys.
var tildeKeys = map[int]Key{
	1:  KeyHome,
	2:  KeyInsert,
	3:  KeyDelete,
	4:  KeyEnd,
	5:  KeyPageUp,
	6:  KeyPageDown,
	7:  KeyHome,
	8:  KeyEnd,
	11: KeyF1,
	12: KeyF2,
	13: KeyF3,
	14: KeyF4,
	15: KeyF5,
	17: KeyF6,
	18: KeyF7,
	19: KeyF8,
	20: KeyF9,
	21: KeyF10,
	23: KeyF11,
	24: KeyF12,
}

// DecodeSequence decodes the next key event from the head of buf and
// reports how many bytes it consumed.
//
// On ErrIncomplete nothing was consumed and the caller should retry with
// more data. On ErrUnknownSequence the consumed count covers the whole
// unrecognized sequence so the caller can skip it.
func DecodeSequence(buf []byte) (Event, int, error) {
	if len(buf) == 0 {
		return Event{}, 0, ErrIncomplete
	}

	b := buf[0]
	switch {
	case b == 0x1b:
		return decodeEscape(buf)
	case b < 0x20 || b == 0x7f:
		return decodeControl(b)
	default:
		return decodeRune(buf)
	}
}

// Flush decodes whatever remains in buf at end of stream, resolving the
// ambiguity ErrIncomplete leaves open: a trailing lone ESC is a real
// escape key press once no more bytes can arrive.
func Flush(buf []byte) []Event {
	var events []Event
	for len(buf) > 0 {
		ev, n, err := DecodeSequence(buf)
		switch {
		case err == nil:
			events = append(events, ev)
			buf = buf[n:]
		case errors.Is(err, ErrIncomplete):
			if buf[0] == 0x1b {
				events = append(events, NewSpecialEvent(KeyEscape, ModNone))
				buf = buf[1:]
				continue
			}
			// Truncated rune; nothing more can be made of it.
			return events
		default:
			buf = buf[n:]
		}
	}
	return events
}

func decodeControl(b byte) (Event, int, error) {
	switch b {
	case 0x0d:
		return NewSpecialEvent(KeyEnter, ModNone), 1, nil
	case 0x09:
		return NewSpecialEvent(KeyTab, ModNone), 1, nil
	case 0x08, 0x7f:
		return NewSpecialEvent(KeyBackspace, ModNone), 1, nil
	case 0x00:
		return NewRuneEvent(' ', ModCtrl), 1, nil
	}
	if b >= 0x01 && b <= 0x1a {
		return NewRuneEvent(rune('a'+b-1), ModCtrl), 1, nil
	}
	return Event{}, 1, ErrUnknownSequence
}

func decodeRune(buf []byte) (Event, int, error) {
	r, size := utf8.DecodeRune(buf)
	if r == utf8.RuneError && size == 1 {
		if !utf8.FullRune(buf) {
			return Event{}, 0, ErrIncomplete
		}
		return Event{}, 1, ErrUnknownSequence
	}

	var mods Modifier
	if unicode.IsUpper(r) {
		mods = ModShift
	}
	return NewRuneEvent(r, mods), size, nil
}

func decodeEscape(buf []byte) (Event, int, error) {
	if len(buf) == 1 {
		return Event{}, 0, ErrIncomplete
	}

	switch buf[1] {
	case '[':
		return decodeCSI(buf)
	case 'O':
		return decodeSS3(buf)
	case 0x1b:
		// ESC ESC: report the first as a real escape press.
		return NewSpecialEvent(KeyEscape, ModNone), 1, nil
	}

	// Alt-modified key: ESC prefixing an ordinary sequence.
	ev, n, err := DecodeSequence(buf[1:])
	if errors.Is(err, ErrIncomplete) {
		return Event{}, 0, ErrIncomplete
	}
	if err != nil {
		return ev, n + 1, err
	}
	ev.Modifiers = ev.Modifiers.With(ModAlt)
	return ev, n + 1, nil
}

// decodeCSI handles ESC [ params final, including xterm modifier
// parameters (CSI 1;5C is Ctrl+Right).
func decodeCSI(buf []byte) (Event, int, error) {
	i := 2
	for {
		if i >= len(buf) {
			return Event{}, 0, ErrIncomplete
		}
		if buf[i] >= 0x40 && buf[i] <= 0x7e {
			break
		}
		i++
	}

	final := buf[i]
	consumed := i + 1
	params := parseParams(buf[2:i])

	var mods Modifier
	if len(params) >= 2 {
		mods = xtermModifier(params[1])
	}

	switch final {
	case 'A':
		return NewSpecialEvent(KeyUp, mods), consumed, nil
	case 'B':
		return NewSpecialEvent(KeyDown, mods), consumed, nil
	case 'C':
		return NewSpecialEvent(KeyRight, mods), consumed, nil
	case 'D':
		return NewSpecialEvent(KeyLeft, mods), consumed, nil
	case 'H':
		return NewSpecialEvent(KeyHome, mods), consumed, nil
	case 'F':
		return NewSpecialEvent(KeyEnd, mods), consumed, nil
	case 'Z':
		return NewSpecialEvent(KeyTab, ModShift), consumed, nil
	case '~':
		if len(params) >= 1 {
			if k, ok := tildeKeys[params[0]]; ok {
				return NewSpecialEvent(k, mods), consumed, nil
			}
		}
		return Event{}, consumed, ErrUnknownSequence
	}
	return Event{}, consumed, ErrUnknownSequence
}

// decodeSS3 handles ESC O final, the application-mode PF keys and arrows.
func decodeSS3(buf []byte) (Event, int, error) {
	if len(buf) < 3 {
		return Event{}, 0, ErrIncomplete
	}

	consumed := 3
	switch buf[2] {
	case 'P':
		return NewSpecialEvent(KeyF1, ModNone), consumed, nil
	case 'Q':
		return NewSpecialEvent(KeyF2, ModNone), consumed, nil
	case 'R':
		return NewSpecialEvent(KeyF3, ModNone), consumed, nil
	case 'S':
		return NewSpecialEvent(KeyF4, ModNone), consumed, nil
	case 'A':
		return NewSpecialEvent(KeyUp, ModNone), consumed, nil
	case 'B':
		return NewSpecialEvent(KeyDown, ModNone), consumed, nil
	case 'C':
		return NewSpecialEvent(KeyRight, ModNone), consumed, nil
	case 'D':
		return NewSpecialEvent(KeyLeft, ModNone), consumed, nil
	case 'H':
		return NewSpecialEvent(KeyHome, ModNone), consumed, nil
	case 'F':
		return NewSpecialEvent(KeyEnd, ModNone), consumed, nil
	}
	return Event{}, consumed, ErrUnknownSequence
}

func parseParams(raw []byte) []int {
	if len(raw) == 0 {
		return nil
	}

	var params []int
	value := 0
	for _, b := range raw {
		switch {
		case b >= '0' && b <= '9':
			value = value*10 + int(b-'0')
		case b == ';':
			params = append(params, value)
			value = 0
		default:
			// Private-mode and intermediate bytes are not meaningful
			// for key decoding.
		}
	}
	return append(params, value)
}

// xtermModifier converts an xterm modifier parameter into a mask.
// The encoding is (mask + 1) where bit 0 is Shift, 1 is Alt, 2 is Ctrl,
// and 3 is Meta.
func xtermModifier(param int) Modifier {
	if param < 2 {
		return ModNone
	}
	m := param - 1

	var mods Modifier
	if m&1 != 0 {
		mods = mods.With(ModShift)
	}
	if m&2 != 0 {
		mods = mods.With(ModAlt)
	}
	if m&4 != 0 {
		mods = mods.With(ModCtrl)
	}
	if m&8 != 0 {
		mods = mods.With(ModMeta)
	}
	return mods
}
