package dedup

import (
	"testing"
	"time"
)

func TestShouldProcess(t *testing.T) {
	now := time.Date(2025, 11, 4, 10, 0, 0, 0, time.UTC)
	d := New(time.Minute, 10)
	d.now = func() time.Time { return now }

	if !d.ShouldProcess("a") {
		t.Fatal("first delivery must be processed")
	}
	if d.ShouldProcess("a") {
		t.Fatal("redelivery within ttl must be dropped")
	}
	now = now.Add(2 * time.Minute)
	if !d.ShouldProcess("a") {
		t.Fatal("delivery after ttl must be processed")
	}
	if !d.ShouldProcess("") || !d.ShouldProcess("") {
		t.Fatal("empty id is always processed")
	}
}

func TestBounded(t *testing.T) {
	now := time.Date(2025, 11, 4, 10, 0, 0, 0, time.UTC)
	d := New(time.Hour, 3)
	d.now = func() time.Time { return now }

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		now = now.Add(time.Second)
		d.ShouldProcess(id)
	}
	if d.Len() != 3 {
		t.Fatalf("len = %d, want 3", d.Len())
	}
	if !d.ShouldProcess("a") {
		t.Fatal("oldest key must have been evicted")
	}
	if d.ShouldProcess("e") {
		t.Fatal("newest key must be kept")
	}
}

func TestKey(t *testing.T) {
	if Key([]byte("x")) != Key([]byte("x")) || Key([]byte("x")) == Key([]byte("y")) {
		t.Fatal("Key must be a content hash")
	}
}
