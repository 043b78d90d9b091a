package reqparse

import (
	"strings"

	"github.com/lzldev/aou-http/internal/rangeset"
)

// HeaderKV is a materialized (name, value) pair, in the order the header
// appeared on the wire.
type HeaderKV struct {
	Name  string
	Value string
}

// Request is a fully parsed request: the backing buffer it was parsed from,
// the ranges naming each token within it, and the mutable fields downstream
// collaborators (the route matcher, middleware, the handler) populate.
//
// A Request owns its backing buffer exclusively for the duration of the
// handler invocation; nothing else may retain a reference to it once the
// response has been written.
type Request struct {
	buf     []byte
	head    Head
	headers []Header
	body    rangeset.Range
	options HeaderOptions

	pathStr     string
	methodStr   string
	versionStr  string
	headersList []HeaderKV
	headersBuilt bool
	query        map[string]string
	queryBuilt   bool

	// Params is populated by the route matcher after a successful match.
	Params map[string]string
	// Context is an opaque slot handlers and middleware may use to pass
	// values down the chain without a global.
	Context any
}

// newRequest assembles the owned view from a completed parse. buf, head,
// headers, body, and options are not copied; buf must not be mutated after
// this call.
func newRequest(buf []byte, head Head, headers []Header, body rangeset.Range, options HeaderOptions) *Request {
	return &Request{
		buf:     buf,
		head:    head,
		headers: headers,
		body:    body,
		options: options,
	}
}

// Method returns the classified request method.
func (r *Request) Method() Method { return r.head.Method }

// MethodString lazily materializes the method token as a string.
func (r *Request) MethodString() string {
	if r.methodStr == "" {
		r.methodStr = string(r.head.MethodRange.Slice(r.buf))
	}
	return r.methodStr
}

// Path returns the raw path token, including any `?query` suffix.
func (r *Request) Path() string {
	if r.pathStr == "" {
		r.pathStr = string(r.head.Path.Slice(r.buf))
	}
	return r.pathStr
}

// HTTPVersion returns the request's HTTP version token, always "HTTP/1.1"
// for any request this engine accepted.
func (r *Request) HTTPVersion() string {
	if r.versionStr == "" {
		r.versionStr = string(r.head.Version.Slice(r.buf))
	}
	return r.versionStr
}

// Headers returns the headers in wire order. The slice is built and cached
// on first access.
func (r *Request) Headers() []HeaderKV {
	if !r.headersBuilt {
		r.headersList = make([]HeaderKV, len(r.headers))
		for i, h := range r.headers {
			r.headersList[i] = HeaderKV{
				Name:  string(h.Name.Slice(r.buf)),
				Value: string(h.Value.Slice(r.buf)),
			}
		}
		r.headersBuilt = true
	}
	return r.headersList
}

// Header returns the first header matching name case-insensitively.
func (r *Request) Header(name string) (string, bool) {
	for _, h := range r.Headers() {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// Body returns the raw request body bytes, empty when no Content-Length was
// present.
func (r *Request) Body() []byte {
	return r.body.Slice(r.buf)
}

// ContentLength returns the parsed Content-Length, if any.
func (r *Request) ContentLength() (int, bool) {
	if r.options.ContentLength == nil {
		return 0, false
	}
	return *r.options.ContentLength, true
}

// KeepAlive reports whether the connection should be reused for another
// request after this one's response is written.
func (r *Request) KeepAlive() bool {
	return r.options.Connection != ConnectionClose
}

// Query lazily parses the `?...` suffix of the path into a flat map, split
// on '&' then on the first '='; a token without '=' maps to the empty
// string. No percent-decoding is performed at this layer.
func (r *Request) Query() map[string]string {
	if r.queryBuilt {
		return r.query
	}
	r.queryBuilt = true

	path := r.Path()
	idx := strings.IndexByte(path, '?')
	if idx < 0 {
		r.query = map[string]string{}
		return r.query
	}

	raw := path[idx+1:]
	r.query = make(map[string]string)
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		if eq := strings.IndexByte(pair, '='); eq >= 0 {
			r.query[pair[:eq]] = pair[eq+1:]
		} else {
			r.query[pair] = ""
		}
	}
	return r.query
}
