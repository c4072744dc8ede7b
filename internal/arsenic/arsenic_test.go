package arsenic

import (
	"bytes"
	"sort"
	"testing"
)

// forwardBWT computes the last column and primary index of the
// rotation sort, the standard encoder-side counterpart to
// unblocksort, purely to give this test a known-good fixture.
func forwardBWT(s string) (lastCol []byte, primary uint32) {
	n := len(s)
	doubled := s + s
	rotations := make([]int, n)
	for i := range rotations {
		rotations[i] = i
	}
	sort.Slice(rotations, func(a, b int) bool {
		return doubled[rotations[a]:rotations[a]+n] < doubled[rotations[b]:rotations[b]+n]
	})
	out := make([]byte, n)
	for i, start := range rotations {
		out[i] = doubled[start+n-1]
		if start == 0 {
			primary = uint32(i)
		}
	}
	return out, primary
}

func TestUnblocksortInvertsForwardBWT(t *testing.T) {
	const s = "banana$"
	last, primary := forwardBWT(s)
	got := unblocksort(last, primary)
	if string(got) != s {
		t.Errorf("got %q, want %q", got, s)
	}
}

func TestDounmtfMovesToFront(t *testing.T) {
	d := &decoder{}
	d.dounmtf(-1)
	if got := d.dounmtf(1); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
	// 1 is now at the front; decoding symbol 0 returns that front byte
	// and leaves the order unchanged.
	if got := d.dounmtf(0); got != 1 {
		t.Fatalf("got %d, want 1 (the just-promoted symbol at index 0)", got)
	}
}

func TestModelUpdateKeepsMonotonicCumfreq(t *testing.T) {
	m := newModel(11, 0, 8, 1024)
	for i := 0; i < 50; i++ {
		updateModel(m, i%int(m.entries))
		prev := m.syms[0].cumfreq
		for j := 1; j <= int(m.entries); j++ {
			if m.syms[j].cumfreq > prev {
				t.Fatalf("cumfreq not monotonic at step %d, index %d", i, j)
			}
			prev = m.syms[j].cumfreq
		}
		if m.syms[m.entries].cumfreq != 0 {
			t.Fatalf("sentinel cumfreq not zero at step %d", i)
		}
	}
}

func TestWriteAndUnrleAndUnrndExpandsRepeat(t *testing.T) {
	// Four 'a's followed by a repeat count of 2 means two more 'a's.
	var out bytes.Buffer
	writeAndUnrleAndUnrnd(&out, []byte{'a', 'a', 'a', 'a', 2}, false)
	want := []byte{'a', 'a', 'a', 'a', 'a', 'a'}
	if !bytes.Equal(out.Bytes(), want) {
		t.Errorf("got % x, want % x", out.Bytes(), want)
	}
}

func TestWriteAndUnrleAndUnrndZeroRepeatConsumesMarker(t *testing.T) {
	var out bytes.Buffer
	writeAndUnrleAndUnrnd(&out, []byte{'a', 'a', 'a', 'a', 0, 'b'}, false)
	want := []byte{'a', 'a', 'a', 'a', 'b'}
	if !bytes.Equal(out.Bytes(), want) {
		t.Errorf("got % x, want % x", out.Bytes(), want)
	}
}

func TestDecodeEmptyStreamErrors(t *testing.T) {
	if _, err := Decode(nil, 0); err == nil {
		t.Fatal("expected an error for an empty stream")
	}
}
