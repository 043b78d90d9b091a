package reqparse

import (
	"bytes"

	"github.com/lzldev/aou-http/internal/rangeset"
)

// http1_1CR is the version token as it must appear on the wire: the literal
// bytes "HTTP/1.1" followed by the line's trailing CR (the LF has already
// been stripped off by the line scanner).
var http1_1CR = []byte("HTTP/1.1\r")

// Head holds the three ranges parsed out of the request line.
type Head struct {
	Method      Method
	MethodRange rangeset.Range
	Path        rangeset.Range
	Version     rangeset.Range
}

// ParseHead parses the request line starting at buf[0:]. It returns the
// number of bytes consumed (the line length including the trailing LF) and
// the parsed Head on success.
//
// A missing terminator or missing token is reported as one of the
// Err{NoHead,NoMethod,NoPath,NoVersion} incomplete signals; a terminator
// followed by anything other than exactly "HTTP/1.1\r" is ErrInvalidHTTPVersion,
// which is terminal.
func ParseHead(buf []byte) (Head, int, error) {
	nl := bytes.IndexByte(buf, '\n')
	if nl < 0 {
		return Head{}, 0, ErrNoHead
	}
	line := buf[:nl] // includes trailing \r if present, excludes \n

	tokens := bytes.SplitN(line, []byte(" "), 3)
	if len(tokens) < 1 || len(tokens[0]) == 0 {
		return Head{}, 0, ErrNoMethod
	}
	if len(tokens) < 2 || len(tokens[1]) == 0 {
		return Head{}, 0, ErrNoPath
	}
	if len(tokens) < 3 || len(tokens[2]) == 0 {
		return Head{}, 0, ErrNoVersion
	}

	methodTok, pathTok, versionTok := tokens[0], tokens[1], tokens[2]

	if !bytes.Equal(versionTok, http1_1CR) {
		return Head{}, 0, ErrInvalidHTTPVersion
	}

	method, ok := ParseMethod(methodTok)
	if !ok {
		return Head{}, 0, ErrInvalidMethod
	}

	versionNoCR := versionTok[:len(versionTok)-1]

	head := Head{
		Method:      method,
		MethodRange: rangeset.FromSubslice(buf, methodTok),
		Path:        rangeset.FromSubslice(buf, pathTok),
		Version:     rangeset.FromSubslice(buf, versionNoCR),
	}
	return head, nl + 1, nil
}
