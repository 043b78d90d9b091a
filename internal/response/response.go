// Package response serializes the engine's outbound wire image: a status
// line, the caller's headers merged with the server's static headers, a
// computed Content-Length, and the body.
package response

// Response is what a handler hands back to the engine. Status defaults to
// 200 when zero; StatusMessage defaults to the IANA reason phrase for
// Status when empty. Headers set here take precedence over any
// same-keyed static header the server was configured with; Content-Length
// is always computed from Body and never taken from either header map.
type Response struct {
	Status        int
	StatusMessage string
	Headers       map[string]string
	Body          []byte
}

// Text builds a Response carrying body as plain text with the given status.
func Text(status int, body string) *Response {
	return &Response{Status: status, Body: []byte(body)}
}

// JSON builds a Response carrying body as a pre-encoded JSON payload with
// the given status. The caller is expected to have already marshaled body;
// this package has no opinion on serialization formats.
func JSON(status int, body []byte) *Response {
	return &Response{
		Status:  status,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
	}
}

func (r *Response) effectiveStatus() int {
	if r.Status == 0 {
		return 200
	}
	return r.Status
}

func (r *Response) effectiveReason() string {
	if r.StatusMessage != "" {
		return r.StatusMessage
	}
	return ReasonPhrase(r.effectiveStatus())
}
