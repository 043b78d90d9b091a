package bufpool

import "testing"

func TestClassForRoundsUp(t *testing.T) {
	cases := map[int]int{
		1:     Size2KB,
		2048:  Size2KB,
		2049:  Size4KB,
		70000: Size64KB,
	}
	for want, expect := range cases {
		if got := ClassFor(want); got != expect {
			t.Errorf("ClassFor(%d) = %d, want %d", want, got, expect)
		}
	}
}

func TestGetPutTracksHitsAndMisses(t *testing.T) {
	p := New()

	buf := p.Get(Size4KB)
	_, _, _, misses := p.Stats(Size4KB)
	if misses != 1 {
		t.Fatalf("misses = %d, want 1 on first Get", misses)
	}

	p.Put(buf)
	buf2 := p.Get(Size4KB)
	_, _, hits, _ := p.Stats(Size4KB)
	if hits != 1 {
		t.Fatalf("hits = %d, want 1 after reusing a returned buffer", hits)
	}
	p.Put(buf2)
}

func TestPutResetsBufferContents(t *testing.T) {
	p := New()
	buf := p.Get(Size2KB)
	buf.WriteString("leftover")
	p.Put(buf)

	buf2 := p.Get(Size2KB)
	if len(buf2.B) != 0 {
		t.Fatalf("expected reused buffer to be empty, got %d bytes", len(buf2.B))
	}
}
