package response

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// contentLengthKey is compared case-insensitively against both header maps
// so a caller-supplied or static Content-Length is always dropped in favor
// of the one this package computes from the body.
const contentLengthKey = "content-length"

// Write serializes resp to w, merging resp.Headers over staticHeaders
// (static entries with the same key, case-insensitively, are overridden;
// either map's own Content-Length entry is always dropped in favor of the
// computed one). Header lines carry no trailing space after the value —
// "{key}: {value}\r\n" exactly.
func Write(w *bufio.Writer, resp *Response, staticHeaders map[string]string) error {
	status := resp.effectiveStatus()
	reason := resp.effectiveReason()

	if _, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", status, reason); err != nil {
		return err
	}

	merged := mergeHeaders(staticHeaders, resp.Headers)
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s: %s\r\n", k, merged[k]); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Content-Length: %s\r\n", strconv.Itoa(len(resp.Body))); err != nil {
		return err
	}
	if _, err := w.WriteString("\r\n"); err != nil {
		return err
	}
	if len(resp.Body) > 0 {
		if _, err := w.Write(resp.Body); err != nil {
			return err
		}
	}
	return w.Flush()
}

func mergeHeaders(static, override map[string]string) map[string]string {
	merged := make(map[string]string, len(static)+len(override))
	for k, v := range static {
		if strings.EqualFold(k, contentLengthKey) {
			continue
		}
		merged[k] = v
	}
	for k, v := range override {
		if strings.EqualFold(k, contentLengthKey) {
			continue
		}
		merged[k] = v
	}
	return merged
}
