package klaus

import (
	"bufio"
	"bytes"
	"io"
)

// sseDataReader strips server-sent event framing from a stream, yielding
// only the bytes of the data payloads. Anthropic repeats the event name in
// every payload's type field, so the event: lines carry no extra
// information; comments and blank lines are separators.
//
// The result is a plain sequence of JSON objects, which jsonscan.Decoder
// then splits into individual events.
type sseDataReader struct {
	scanner *bufio.Scanner
	buf     []byte
}

func newSSEDataReader(r io.Reader) *sseDataReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &sseDataReader{scanner: scanner}
}

func (r *sseDataReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		line := r.scanner.Bytes()
		data, ok := bytes.CutPrefix(line, []byte("data:"))
		if !ok {
			continue
		}
		r.buf = append(r.buf, bytes.TrimSpace(data)...)
		// Multi-line data fields are joined with a newline, which is plain
		// whitespace as far as the JSON framing is concerned.
		r.buf = append(r.buf, '\n')
	}

	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}
