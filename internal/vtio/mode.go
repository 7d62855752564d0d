// Package vtio bridges the console host's screen and input model to a
// terminal peer speaking VT sequences over a pair of named pipes.
package vtio

import "fmt"

// Mode identifies the wire protocol variant spoken with the terminal peer.
type Mode int

const (
	// ModeInvalid is the unresolved sentinel. It is both the initial
	// value and the value restored on any resolution failure.
	ModeInvalid Mode = iota

	// ModeXterm256 is full-fidelity xterm with 24-bit color.
	ModeXterm256

	// ModeXterm is 16-color xterm, quantized through the host palette.
	ModeXterm

	// ModeWinTelnet is the restricted variant for telnet-negotiated
	// VT peers.
	ModeWinTelnet
)

// Mode strings accepted by ParseMode.
const (
	Xterm256ModeString  = "xterm-256color"
	XtermModeString     = "xterm"
	WinTelnetModeString = "win-telnet"
	DefaultModeString   = "default"
)

// String returns the mode's configuration literal.
func (m Mode) String() string {
	switch m {
	case ModeXterm256:
		return Xterm256ModeString
	case ModeXterm:
		return XtermModeString
	case ModeWinTelnet:
		return WinTelnetModeString
	default:
		return "invalid"
	}
}

// ParseMode resolves a configuration string to a protocol mode. The
// "default" literal resolves to the richest variant. Matching is
// case-sensitive; any unrecognized string, including the empty string,
// fails with ErrInvalidMode and ModeInvalid.
func ParseMode(s string) (Mode, error) {
	switch s {
	case Xterm256ModeString:
		return ModeXterm256, nil
	case XtermModeString:
		return ModeXterm, nil
	case WinTelnetModeString:
		return ModeWinTelnet, nil
	case DefaultModeString:
		return ModeXterm256, nil
	}
	return ModeInvalid, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}
