package rangeset

import "testing"

func TestFromSubsliceMiddle(t *testing.T) {
	backing := []byte("GET / HTTP/1.1\r\n")
	sub := backing[4:5]

	r := FromSubslice(backing, sub)
	if r.Start != 4 || r.End != 5 {
		t.Fatalf("got (%d,%d), want (4,5)", r.Start, r.End)
	}
	if string(r.Slice(backing)) != "/" {
		t.Fatalf("got %q, want %q", r.Slice(backing), "/")
	}
}

func TestFromSubsliceEmptyAtOffset(t *testing.T) {
	backing := make([]byte, 10)
	sub := backing[6:6]

	r := FromSubslice(backing, sub)
	if !r.Empty() {
		t.Fatalf("expected empty range, got (%d,%d)", r.Start, r.End)
	}
	if r.Start != 6 {
		t.Fatalf("got start %d, want 6", r.Start)
	}
}

func TestFromSubsliceWholeBuffer(t *testing.T) {
	backing := []byte("hello")
	r := FromSubslice(backing, backing)
	if r.Start != 0 || r.End != 5 {
		t.Fatalf("got (%d,%d), want (0,5)", r.Start, r.End)
	}
}
