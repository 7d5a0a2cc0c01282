// Package jsonscan finds the boundaries of top-level JSON objects inside a
// byte stream without parsing them. It is used to split event streams into
// individual JSON documents before decoding, and works with input arriving
// in fragments of any size.
package jsonscan

import "errors"

// ErrInvalidByte is returned when a byte shows up where only whitespace or
// the start of an object is allowed. It signals stream corruption: the
// scanner cannot recover and the framing pass must be abandoned.
var ErrInvalidByte = errors.New("jsonscan: unexpected byte outside object")

type state uint8

const (
	lookingForStart state = iota
	inObject
	inString
	inEscape
)

// Scanner is a restartable state machine that reports where a top-level
// `{...}` object ends. It keeps no buffered bytes: callers own the buffer
// and may feed the same logical stream in arbitrarily small slices.
//
// The zero value is ready to use.
type Scanner struct {
	state state
	depth int
}

// Scan consumes buf and reports the end of the current object.
//
// It returns n > 0 when a complete object ends at buf[n-1]; the caller
// should decode the bytes scanned so far up to that offset and call Scan
// again with the remainder. It returns 0 with a nil error when more input
// is needed, and ErrInvalidByte when the stream is corrupt.
//
// Braces inside strings are masked, and an escape consumes exactly the byte
// that follows it, even when that byte is a quote or backslash.
func (s *Scanner) Scan(buf []byte) (int, error) {
	for i, b := range buf {
		switch s.state {
		case lookingForStart:
			switch {
			case b == '{':
				s.state = inObject
				s.depth = 1
			case isSpace(b):
			default:
				return 0, ErrInvalidByte
			}
		case inObject:
			switch b {
			case '{':
				s.depth++
			case '}':
				s.depth--
				if s.depth == 0 {
					s.Reset()
					return i + 1, nil
				}
			case '"':
				s.state = inString
			}
		case inString:
			switch b {
			case '"':
				s.state = inObject
			case '\\':
				s.state = inEscape
			}
		case inEscape:
			s.state = inString
		}
	}
	return 0, nil
}

// Reset returns the scanner to its initial state, discarding any partially
// scanned object.
func (s *Scanner) Reset() {
	s.state = lookingForStart
	s.depth = 0
}

// midObject reports whether the scanner is inside an unfinished object.
func (s *Scanner) midObject() bool {
	return s.state != lookingForStart
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}
