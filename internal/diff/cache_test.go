package diff

import (
	"testing"
	"time"
)

func TestStatusCache_PutGet(t *testing.T) {
	c := newStatusCache(time.Minute)

	c.put("HEAD\x00a.go", GeneratedStatus{IsGenerated: true, Source: SourcePath})

	status, ok := c.get("HEAD\x00a.go")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !status.IsGenerated || status.Source != SourcePath {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestStatusCache_Miss(t *testing.T) {
	c := newStatusCache(time.Minute)

	if _, ok := c.get("missing"); ok {
		t.Error("expected cache miss")
	}
}

func TestStatusCache_Expiry(t *testing.T) {
	c := newStatusCache(10 * time.Millisecond)

	c.put("k", GeneratedStatus{IsGenerated: true, Source: SourceContent})
	time.Sleep(30 * time.Millisecond)

	if _, ok := c.get("k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestStatusCache_Clear(t *testing.T) {
	c := newStatusCache(time.Minute)

	c.put("a", GeneratedStatus{})
	c.put("b", GeneratedStatus{})
	c.clear()

	if _, ok := c.get("a"); ok {
		t.Error("expected cache to be empty after clear")
	}
	if _, ok := c.get("b"); ok {
		t.Error("expected cache to be empty after clear")
	}
}
