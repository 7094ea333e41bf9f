package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/teslashibe/go-linefollow/pkg/vision"
)

// Serial line alphabet. Every control message is exactly one of
//
//	E<int>\n   signed offset of the line from the frame centre
//	S\n        no line in view, stop
const (
	PrefixError byte = 'E'
	PrefixStop  byte = 'S'
	Terminator  byte = '\n'
)

// ErrMalformed is returned when a line is not a valid control message.
var ErrMalformed = errors.New("protocol: malformed control message")

// Command is one outbound control message.
type Command struct {
	Stop  bool // No line detected
	Error int  // Offset in pixels, meaningful only when Stop is false
}

// ErrorCommand returns the command reporting offset e.
func ErrorCommand(e int) Command {
	return Command{Error: e}
}

// StopCommand returns the no-line command.
func StopCommand() Command {
	return Command{Stop: true}
}

// FromOffset maps an aggregated offset to its command. A missing line is
// a stop; a centred line is E0.
func FromOffset(o vision.Offset) Command {
	if !o.Found {
		return StopCommand()
	}
	return ErrorCommand(o.Error)
}

// AppendTo appends the encoded message, terminator included, to dst.
func (c Command) AppendTo(dst []byte) []byte {
	if c.Stop {
		return append(dst, PrefixStop, Terminator)
	}
	dst = append(dst, PrefixError)
	dst = strconv.AppendInt(dst, int64(c.Error), 10)
	return append(dst, Terminator)
}

// Encode returns the complete wire form of the command.
func (c Command) Encode() []byte {
	return c.AppendTo(make([]byte, 0, 8))
}

// String returns the message without its terminator, e.g. "E-37" or "S".
func (c Command) String() string {
	b := c.Encode()
	return string(b[:len(b)-1])
}

// Parse decodes a single control line. The trailing newline is optional.
func Parse(line []byte) (Command, error) {
	line = bytes.TrimSuffix(line, []byte{Terminator})
	if len(line) == 0 {
		return Command{}, ErrMalformed
	}

	switch line[0] {
	case PrefixStop:
		if len(line) != 1 {
			return Command{}, fmt.Errorf("%w: %q", ErrMalformed, line)
		}
		return StopCommand(), nil

	case PrefixError:
		digits := line[1:]
		if len(digits) == 0 || digits[0] == '+' {
			return Command{}, fmt.Errorf("%w: %q", ErrMalformed, line)
		}
		v, err := strconv.Atoi(string(digits))
		if err != nil {
			return Command{}, fmt.Errorf("%w: %q", ErrMalformed, line)
		}
		return ErrorCommand(v), nil
	}

	return Command{}, fmt.Errorf("%w: %q", ErrMalformed, line)
}
