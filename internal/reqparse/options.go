package reqparse

import "bytes"

// Connection records the value of the request's Connection header, with
// KeepAlive as the default when the header is absent.
type Connection uint8

const (
	ConnectionKeepAlive Connection = iota
	ConnectionClose
)

// HeaderOptions accumulates the handful of header values the engine inspects
// directly, independent of the generic header list. It is built up
// incrementally as headers are parsed, possibly across multiple resumed
// parse calls, via Merge.
type HeaderOptions struct {
	HostSeen      bool
	ContentLength *int
	Connection    Connection
}

// Merge folds other (freshly parsed from a later chunk) into h, the
// accumulator carried in ParserState. Close dominates KeepAlive, the first
// non-nil ContentLength wins, and HostSeen is monotonic-OR: once true, it
// stays true regardless of what a later partial parse observes.
func (h *HeaderOptions) Merge(other HeaderOptions) {
	if other.HostSeen {
		h.HostSeen = true
	}
	if h.ContentLength == nil && other.ContentLength != nil {
		h.ContentLength = other.ContentLength
	}
	if other.Connection == ConnectionClose {
		h.Connection = ConnectionClose
	}
}

func isCloseValue(value []byte) bool {
	if semi := bytes.IndexByte(value, ';'); semi >= 0 {
		value = value[:semi]
	}
	value = bytes.TrimSpace(value)
	return bytesEqualFold(value, []byte("close"))
}

func bytesEqualFold(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
