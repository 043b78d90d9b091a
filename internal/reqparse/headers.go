package reqparse

import (
	"bytes"
	"strconv"

	"github.com/lzldev/aou-http/internal/rangeset"
)

// Header is a parsed (name-range, value-range) pair. The value range
// excludes the single leading SP and the trailing CR the wire format
// requires around it.
type Header struct {
	Name  rangeset.Range
	Value rangeset.Range
}

// HeaderParseResult is what a successful ParseHeaders call hands back to the
// parser state machine.
type HeaderParseResult struct {
	Size    int // bytes consumed, including the blank-line terminator
	Headers []Header
	Options HeaderOptions
}

// ParseHeaders scans complete header lines starting at buf[offset:], up to
// and including the blank line (CRLF) that terminates the header block.
//
// It returns ErrHeadersIncomplete when the next line hasn't fully arrived,
// when the header block hasn't reached its terminator yet, or when zero
// headers have been collected by the time a terminator is seen (so a
// caller that hasn't sent any headers yet isn't mistaken for one that sent
// none on purpose). It returns ErrHeaderInvalid when a header value doesn't
// begin with the single mandatory SP. Both are treated identically by the
// parser state machine (§4.E): only the non-progress guard distinguishes a
// truly malformed stream from one that simply needs more bytes.
func ParseHeaders(buf []byte, offset int) (HeaderParseResult, error) {
	var (
		headers []Header
		opts    HeaderOptions
		cursor  = offset
	)

	for {
		nl := bytes.IndexByte(buf[cursor:], '\n')
		if nl < 0 {
			return HeaderParseResult{}, ErrHeadersIncomplete
		}
		line := buf[cursor : cursor+nl] // excludes '\n', may include trailing '\r'
		lineEnd := cursor + nl + 1

		if len(line) == 0 || (len(line) == 1 && line[0] == '\r') {
			// Blank line: end of header block.
			if len(headers) == 0 {
				return HeaderParseResult{}, ErrHeadersIncomplete
			}
			return HeaderParseResult{
				Size:    lineEnd - offset,
				Headers: headers,
				Options: opts,
			}, nil
		}

		colon := bytes.IndexByte(line, ':')
		if colon < 0 {
			return HeaderParseResult{}, ErrHeadersIncomplete
		}
		name := line[:colon]
		value := line[colon+1:]

		if len(name) == 0 || bytes.ContainsAny(name, " \t:") {
			return HeaderParseResult{}, ErrHeaderInvalid
		}
		if len(value) == 0 || value[0] != ' ' {
			return HeaderParseResult{}, ErrHeaderInvalid
		}
		if value[len(value)-1] != '\r' {
			return HeaderParseResult{}, ErrHeadersIncomplete
		}

		trimmedValue := value[1 : len(value)-1]

		headers = append(headers, Header{
			Name:  rangeset.FromSubslice(buf, name),
			Value: rangeset.FromSubslice(buf, trimmedValue),
		})
		applyHeaderOption(&opts, name, trimmedValue)

		cursor = lineEnd
	}
}

func applyHeaderOption(opts *HeaderOptions, name, value []byte) {
	switch {
	case bytesEqualFold(name, []byte("host")):
		opts.HostSeen = true
	case bytesEqualFold(name, []byte("content-length")):
		if n, err := strconv.Atoi(string(bytes.TrimSpace(value))); err == nil && n >= 0 {
			opts.ContentLength = &n
		}
	case bytesEqualFold(name, []byte("connection")):
		if isCloseValue(value) {
			opts.Connection = ConnectionClose
		}
	}
}
