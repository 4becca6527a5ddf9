package crlfstat

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// DefaultBufferSize is the read chunk size used when none is configured.
const DefaultBufferSize = 32 * 1024

const (
	cr    = '\r'
	lf    = '\n'
	space = ' '
	tab   = '\t'
)

// bom is the UTF-8 byte order mark.
var bom = []byte{0xEF, 0xBB, 0xBF} //nolint:gochecknoglobals // Constant byte sequence

// isBinaryByte reports whether b is neither printable ASCII nor one of the
// whitespace controls 9 through 13.
func isBinaryByte(b byte) bool {
	return b < 9 || (b > 13 && b < 32) || b > 126
}

// Scanner is the streaming state of one file's classification.
// Feed it chunks in order; the state carried between chunks is what makes
// a CRLF pair or a line-start run split across two reads come out right.
// The zero value is not ready for use, call NewScanner.
type Scanner struct {
	consumed    int64
	prev        byte
	atLineStart bool
	verdict     Verdict
}

// NewScanner returns a scanner positioned at the start of a file.
// The start of the file counts as the start of the first line.
func NewScanner() *Scanner {
	return &Scanner{atLineStart: true}
}

// Done reports whether the file has already been classified as binary.
func (s *Scanner) Done() bool {
	return s.verdict.Binary
}

// Feed consumes the next chunk of the file and reports whether scanning is done.
// Once it returns true, further calls are no-ops.
//
// The byte order mark is only recognised when the very first chunk holds all
// three of its bytes.
func (s *Scanner) Feed(chunk []byte) bool {
	if s.verdict.Binary {
		return true
	}

	start := 0
	if s.consumed == 0 && bytes.HasPrefix(chunk, bom) {
		start = len(bom)
	}

	for i := start; i < len(chunk); i++ {
		b := chunk[i]

		if isBinaryByte(b) {
			s.verdict.Binary = true
			s.consumed += int64(i + 1)

			return true
		}

		if s.atLineStart {
			switch b {
			case space:
				s.verdict.SpaceIndent = true
			case tab:
				s.verdict.TabIndent = true
			default:
				s.atLineStart = false
			}
		}

		if b == lf {
			if s.prev == cr {
				s.verdict.CRLF = true
			} else {
				s.verdict.LF = true
			}

			s.atLineStart = true
		}

		s.prev = b
	}

	s.consumed += int64(len(chunk))

	return false
}

// Verdict returns the classification so far, tagged with ext.
func (s *Scanner) Verdict(ext string) Verdict {
	v := s.verdict
	v.Ext = ext
	v.Bytes = s.consumed

	return v
}

// Classify reads r to the end (or to the first binary byte) using a buffer of
// bufSize bytes and returns the verdict. A read error aborts classification.
func Classify(r io.Reader, bufSize int, ext string) (Verdict, error) {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	buf := make([]byte, bufSize)
	scanner := NewScanner()

	for {
		n, err := r.Read(buf)
		if n > 0 && scanner.Feed(buf[:n]) {
			break
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return Verdict{}, fmt.Errorf("reading: %w", err)
		}
	}

	return scanner.Verdict(ext), nil
}
