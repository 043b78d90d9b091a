// Package router matches a method and path against registered routes,
// combining an O(1) static map with a per-method radix tree for
// ":param"/"*wildcard" patterns.
package router

import (
	"fmt"
	"strings"
	"sync"

	"github.com/lzldev/aou-http/internal/reqparse"
	"github.com/lzldev/aou-http/internal/response"
)

// HandlerFunc is what a registered route, and every middleware, ultimately
// produces or wraps.
type HandlerFunc func(*reqparse.Request) (*response.Response, error)

// Router is safe for concurrent Match calls once route registration is
// finished; Insert/InsertAll are expected to run single-threaded at startup
// but take a lock anyway since nothing in the specification forbids
// registering routes after the listener starts.
type Router struct {
	mu sync.RWMutex

	static map[string]HandlerFunc // "METHOD PATH"
	trees  map[string]*node       // method -> radix tree root
	any    *node                  // method-agnostic fallback tree
}

type node struct {
	segment   string
	isParam   bool
	isWild    bool
	paramName string
	children  []*node
	handler   HandlerFunc
}

// New returns an empty Router.
func New() *Router {
	return &Router{
		static: make(map[string]HandlerFunc),
		trees:  make(map[string]*node),
	}
}

// Insert registers handler for method+pattern. A pattern segment starting
// with ':' captures a named parameter; one starting with '*' is a trailing
// wildcard and must be the pattern's last segment. Re-registering the same
// method and pattern returns an error.
func (r *Router) Insert(pattern, method string, handler HandlerFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !strings.ContainsAny(pattern, ":*") {
		key := staticKey(method, pattern)
		if _, exists := r.static[key]; exists {
			return fmt.Errorf("router: route already registered: %s %s", method, pattern)
		}
		r.static[key] = handler
		return nil
	}

	root := r.trees[method]
	if root == nil {
		root = &node{}
		r.trees[method] = root
	}
	return insert(root, splitPath(pattern), handler)
}

// InsertAll registers handler for pattern under every method, consulted
// only after a method-specific route fails to match.
func (r *Router) InsertAll(pattern string, handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.any == nil {
		r.any = &node{}
	}
	// A pattern conflict on the fallback tree is not an error: a later
	// InsertAll simply cannot win a static-segment collision, matching the
	// "first registration wins" radix-tree convention used for the
	// per-method trees' insert order.
	_ = insert(r.any, splitPath(pattern), handler)
}

// Match looks up a static route first, then the method's radix tree, then
// the method-agnostic fallback tree.
func (r *Router) Match(method, path string) (HandlerFunc, map[string]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if handler, ok := r.static[staticKey(method, path)]; ok {
		return handler, nil, true
	}

	segments := splitPath(path)

	if root, ok := r.trees[method]; ok {
		params := make(map[string]string)
		if handler := search(root, segments, 0, params); handler != nil {
			return handler, params, true
		}
	}

	if r.any != nil {
		params := make(map[string]string)
		if handler := search(r.any, segments, 0, params); handler != nil {
			return handler, params, true
		}
	}

	return nil, nil, false
}

func staticKey(method, path string) string {
	return method + " " + path
}

func insert(root *node, segments []string, handler HandlerFunc) error {
	current := root
	for i, segment := range segments {
		last := i == len(segments)-1

		switch {
		case strings.HasPrefix(segment, ":"):
			child := findOrCreateChild(current, segment, true, false, segment[1:])
			current = child
			if last {
				if child.handler != nil {
					return fmt.Errorf("router: route already registered at %q", segment)
				}
				child.handler = handler
			}
		case strings.HasPrefix(segment, "*"):
			if !last {
				return fmt.Errorf("router: wildcard segment %q must be the last segment", segment)
			}
			child := findOrCreateChild(current, segment, false, true, segment[1:])
			if child.handler != nil {
				return fmt.Errorf("router: route already registered at %q", segment)
			}
			child.handler = handler
		default:
			child := findOrCreateChild(current, segment, false, false, "")
			current = child
			if last {
				if child.handler != nil {
					return fmt.Errorf("router: route already registered at %q", segment)
				}
				child.handler = handler
			}
		}
	}
	return nil
}

func findOrCreateChild(parent *node, segment string, isParam, isWild bool, paramName string) *node {
	for _, child := range parent.children {
		if child.segment == segment {
			return child
		}
	}
	child := &node{segment: segment, isParam: isParam, isWild: isWild, paramName: paramName}
	parent.children = append(parent.children, child)
	return child
}

func search(n *node, segments []string, idx int, params map[string]string) HandlerFunc {
	if n == nil {
		return nil
	}
	if idx >= len(segments) {
		return n.handler
	}
	segment := segments[idx]

	for _, child := range n.children {
		if !child.isParam && !child.isWild && child.segment == segment {
			if h := search(child, segments, idx+1, params); h != nil {
				return h
			}
		}
	}
	for _, child := range n.children {
		if child.isParam {
			params[child.paramName] = segment
			if h := search(child, segments, idx+1, params); h != nil {
				return h
			}
			delete(params, child.paramName)
		}
	}
	for _, child := range n.children {
		if child.isWild {
			params[child.paramName] = strings.Join(segments[idx:], "/")
			return child.handler
		}
	}
	return nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
