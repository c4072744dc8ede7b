package decodecache

import (
	"bytes"
	"testing"
)

func TestHashInputIsDeterministic(t *testing.T) {
	a := HashInput([]byte("hello"))
	b := HashInput([]byte("hello"))
	if a != b {
		t.Fatalf("HashInput not deterministic: %v != %v", a, b)
	}
	if c := HashInput([]byte("world")); c == a {
		t.Fatalf("HashInput collided for distinct inputs")
	}
}

func TestOpenPutGetRoundTrip(t *testing.T) {
	c, err := Open(t.TempDir(), 16)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	key := HashInput([]byte("archive contents"))
	want := []byte("decoded entry list")
	if err := c.Put(key, want); err != nil {
		t.Fatal(err)
	}

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected cache hit after Put")
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGetMissReturnsFalse(t *testing.T) {
	c, err := Open(t.TempDir(), 16)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, ok := c.Get(HashInput([]byte("never stored"))); ok {
		t.Fatal("expected cache miss")
	}
}

func TestNilCacheIsAlwaysMiss(t *testing.T) {
	var c *Cache
	if _, ok := c.Get(HashInput([]byte("x"))); ok {
		t.Fatal("nil cache should never hit")
	}
	if err := c.Put(HashInput([]byte("x")), []byte("y")); err != nil {
		t.Fatalf("nil cache Put should be a no-op, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("nil cache Close should be a no-op, got %v", err)
	}
}
