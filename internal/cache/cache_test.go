package cache

import (
	"os"
	"testing"
	"time"
)

func TestKey_StableAndNamespaced(t *testing.T) {
	a := Key("GET", "https://eutils.ncbi.nlm.nih.gov/esearch.fcgi?term=zinc")
	b := Key("GET", "https://eutils.ncbi.nlm.nih.gov/esearch.fcgi?term=zinc")
	c := Key("GET", "https://eutils.ncbi.nlm.nih.gov/esearch.fcgi?term=iron")

	if a != b {
		t.Error("expected identical parts to hash to the same key")
	}
	if a == c {
		t.Error("expected different parts to hash to different keys")
	}
	if len(a) != len("claimcheck:v1:")+64 {
		t.Errorf("unexpected key length: %s", a)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss")
	}
	_ = c.Set("k", []byte("v"), 0)
	if v, ok := c.Get("k"); !ok || string(v) != "v" {
		t.Errorf("expected hit, got %q %v", v, ok)
	}
	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestDiskCache_RoundTripAndExpiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := Key("GET", "https://api.semanticscholar.org/graph/v1/paper/DOI:10.1/abc")

	if err := c.Set(key, []byte(`{"paperId":"x"}`), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, ok := c.Get(key); !ok || string(v) != `{"paperId":"x"}` {
		t.Fatalf("expected hit, got %q %v", v, ok)
	}

	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, ok := c.Get(key); ok {
		t.Error("expected expired entry to miss")
	}
	if _, err := os.Stat(c.path(key)); !os.IsNotExist(err) {
		t.Error("expected expired entry to be removed from disk")
	}
}

func TestDiskCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := Key("corrupt")

	if err := c.Set(key, []byte("x"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := os.WriteFile(c.path(key), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("expected corrupt entry to miss")
	}
	if err := c.Delete(key); err != nil {
		t.Errorf("deleting a missing entry should not fail: %v", err)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	layered := NewLayeredCache(time.Minute, dir, time.Hour)
	key := Key("promote")

	// Write straight to disk, bypassing memory
	if err := layered.disk.Set(key, []byte("body"), 0); err != nil {
		t.Fatal(err)
	}
	if _, ok := layered.memory.Get(key); ok {
		t.Fatal("memory layer should start empty")
	}

	if v, ok := layered.Get(key); !ok || string(v) != "body" {
		t.Fatalf("expected disk hit, got %q %v", v, ok)
	}
	if _, ok := layered.memory.Get(key); !ok {
		t.Error("expected disk hit to be promoted to memory")
	}

	_ = layered.Clear()
	if _, ok := layered.Get(key); ok {
		t.Error("expected miss after clear")
	}
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	_ = c.Set("k", []byte("v"), 0)
	if _, ok := c.Get("k"); ok {
		t.Error("Nop must never hit")
	}
}
