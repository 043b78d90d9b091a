package reqparse

import "github.com/lzldev/aou-http/internal/rangeset"

// StateKind names which stage a ParserState has reached.
type StateKind uint8

const (
	// StateStart carries no parsed tokens yet; the next Parse call attempts
	// the request line from byte 0.
	StateStart StateKind = iota
	// StateHead has a parsed request line; the next Parse call resumes at
	// the header block.
	StateHead
	// StateHeaders has a complete, Host-validated header block; the next
	// Parse call resumes at the body (or completes immediately if there is
	// none).
	StateHeaders
	// StateBody has a known Content-Length and is waiting for the
	// remaining body bytes to arrive.
	StateBody
)

// ParserState is the resumable state the engine threads between Parse
// calls across however many reads it takes for a request to fully arrive.
// Fields are populated progressively as Kind advances; Cursor always names
// the byte offset (within whatever buffer accompanies this state) where the
// next stage should resume scanning.
type ParserState struct {
	Kind StateKind

	// ReadUntil is the buffer length observed the last time Parse returned
	// Incomplete for this connection, or -1 if Parse has never been called
	// yet. Two Incomplete returns in a row with the same ReadUntil mean the
	// connection is stalled (§4.E step 5).
	ReadUntil int

	// Cursor is the byte offset where the next parse stage resumes.
	Cursor int

	Head    *Head
	Headers []Header
	Options HeaderOptions
	Body    rangeset.Range
}

// StartState returns the initial state for a freshly accepted connection or
// a freshly rearmed keep-alive slot.
func StartState() ParserState {
	return ParserState{Kind: StateStart, ReadUntil: -1}
}

// IsBody reports whether enough of the request has been parsed that the
// read loop may finalize it once no more bytes are forthcoming (subject to
// §9a's content-length rule — reaching StateBody never by itself means the
// body is complete).
func (s ParserState) IsBody() bool {
	return s.Kind == StateBody
}
