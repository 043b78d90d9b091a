package reqparse

import (
	"bytes"

	"github.com/lzldev/aou-http/internal/rangeset"
)

// Parse advances state by as much as buf currently allows and reports the
// outcome. It never re-scans a stage that state already carries a result
// for; each call resumes at the earliest stage state is missing output for.
//
// buf is the full byte sequence read so far for this request (state.Cursor
// and prior stages' ranges are offsets into this same buf across calls —
// the read loop is responsible for handing back the same backing buffer it
// was given in a prior Incomplete result, grown by whatever was read since).
func Parse(buf []byte, state ParserState) ParserStatus {
	bufLen := len(buf)

	head, offset, ok := resolveHead(buf, state)
	if !ok.success {
		if ok.malformed {
			return malformed(ok.reason)
		}
		return incomplete(buf, ParserState{Kind: StateStart, ReadUntil: bufLen})
	}

	headers, options, offset, ok2 := resolveHeaders(buf, state, head, offset)
	if !ok2.success {
		return incomplete(buf, ParserState{
			Kind:      StateHead,
			ReadUntil: bufLen,
			Cursor:    offset,
			Head:      &head,
		})
	}

	if !options.HostSeen {
		return malformed("missing Host header")
	}

	body, ok3 := resolveBody(buf, offset, options)
	if !ok3.success {
		return incomplete(buf, ParserState{
			Kind:      StateBody,
			ReadUntil: bufLen,
			Cursor:    offset,
			Head:      &head,
			Headers:   headers,
			Options:   options,
		})
	}

	req := newRequest(buf, head, headers, body, options)
	return success(req)
}

type stageResult struct {
	success   bool
	malformed bool
	reason    string
}

// resolveHead returns the parsed Head and the byte offset immediately after
// the request line, reusing state.Head when a prior call already parsed it.
func resolveHead(buf []byte, state ParserState) (Head, int, stageResult) {
	if state.Head != nil {
		return *state.Head, state.Cursor, stageResult{success: true}
	}

	head, consumed, err := ParseHead(buf)
	if err == nil {
		return head, consumed, stageResult{success: true}
	}
	if err == ErrInvalidHTTPVersion || err == ErrInvalidMethod {
		return Head{}, 0, stageResult{malformed: true, reason: err.Error()}
	}
	// NoHead/NoMethod/NoPath/NoVersion: need more bytes.
	return Head{}, 0, stageResult{}
}

// resolveHeaders returns the accumulated headers and options plus the byte
// offset immediately after the header block's terminating blank line. Once
// a prior call has reached StateBody the block is known complete and
// Host-validated, so the accumulators from state pass straight through —
// Merge only ever folds two HeaderOptions computed from the same bytes, a
// no-op kept for the one case in the state machine where it is reachable:
// a connection that loops through this stage while still waiting on body
// bytes arriving in a later read.
func resolveHeaders(buf []byte, state ParserState, head Head, headOffset int) ([]Header, HeaderOptions, int, stageResult) {
	if state.Headers != nil {
		opts := state.Options
		opts.Merge(state.Options)
		return state.Headers, opts, state.Cursor, stageResult{success: true}
	}

	result, err := ParseHeaders(buf, headOffset)
	if err != nil {
		// IsIncomplete is true for both ErrHeadersIncomplete and
		// ErrHeaderInvalid — a malformed-looking header line is still
		// reported up as "need more data", relying on the non-progress
		// guard in the read loop to eventually abort a stream that will
		// never complete (§4.E step 2).
		return nil, HeaderOptions{}, headOffset, stageResult{}
	}

	return result.Headers, result.Options, headOffset + result.Size, stageResult{success: true}
}

// resolveBody returns the body Range once it is fully present. With no
// Content-Length, the body is empty and the request completes as soon as
// headers do.
func resolveBody(buf []byte, offset int, options HeaderOptions) (rangeset.Range, stageResult) {
	if options.ContentLength == nil {
		return rangeset.Range{Start: offset, End: offset}, stageResult{success: true}
	}

	n := *options.ContentLength
	need := offset + n
	if len(buf) < need {
		return rangeset.Range{}, stageResult{}
	}

	bodyBytes := buf[offset:need]
	return rangeset.FromSubslice(buf, bodyBytes), stageResult{success: true}
}

// SplitLines splits buf on LF with bytes.Split. The parser stages do not
// call it; they find each line end with bytes.IndexByte.
func SplitLines(buf []byte) [][]byte {
	return bytes.Split(buf, []byte{'\n'})
}
