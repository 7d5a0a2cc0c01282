package jsonscan

import "io"

const readChunkSize = 4096

// Decoder reads a sequence of JSON objects from a stream that carries no
// framing of its own, such as the payload side of a server-sent event feed.
// Each call to Decode returns the raw bytes of one complete object.
type Decoder struct {
	r       io.Reader
	scanner Scanner
	buf     []byte
	scanned int // prefix of buf the scanner has already consumed
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode returns the next complete JSON object, including any leading
// whitespace. It returns io.EOF when the stream ends cleanly between
// objects, and io.ErrUnexpectedEOF when it ends inside one.
func (d *Decoder) Decode() ([]byte, error) {
	for {
		if d.scanned < len(d.buf) {
			n, err := d.scanner.Scan(d.buf[d.scanned:])
			if err != nil {
				return nil, err
			}
			if n > 0 {
				end := d.scanned + n
				obj := d.buf[:end:end]
				d.buf = d.buf[end:]
				d.scanned = 0
				return obj, nil
			}
			d.scanned = len(d.buf)
		}

		chunk := make([]byte, readChunkSize)
		n, err := d.r.Read(chunk)
		if n > 0 {
			d.buf = append(d.buf, chunk[:n]...)
			continue
		}
		if err == io.EOF {
			if d.scanner.midObject() {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}
	}
}
