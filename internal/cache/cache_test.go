package cache_test

import (
	"path/filepath"
	"testing"

	"github.com/vexlang/vex/internal/cache"
)

func open(t *testing.T, path string) *cache.Store {
	t.Helper()
	s, err := cache.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestHashIsStable(t *testing.T) {
	a := cache.Hash([]byte("hello"))
	b := cache.Hash([]byte("hello"))
	c := cache.Hash([]byte("hello!"))
	if a != b {
		t.Fatal("same bytes, same hash")
	}
	if a == c {
		t.Fatal("different bytes should not collide")
	}
}

func TestRecordAndLookup(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "cache.db"))

	hash := cache.Hash([]byte("dump"))
	if _, hit, err := s.Lookup(hash); err != nil || hit {
		t.Fatalf("fresh cache should miss: hit=%v err=%v", hit, err)
	}

	want := &cache.Result{File: "main.vex.json", OK: false, Diagnostics: "error[T001]: mismatch\n"}
	if err := s.Record(hash, want); err != nil {
		t.Fatal(err)
	}
	got, hit, err := s.Lookup(hash)
	if err != nil || !hit {
		t.Fatalf("expected a hit: hit=%v err=%v", hit, err)
	}
	if got.File != want.File || got.OK != want.OK || got.Diagnostics != want.Diagnostics {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestRecordReplacesPreviousEntry(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "cache.db"))
	hash := cache.Hash([]byte("dump"))

	if err := s.Record(hash, &cache.Result{File: "a.vex.json", OK: false, Diagnostics: "boom\n"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(hash, &cache.Result{File: "a.vex.json", OK: true}); err != nil {
		t.Fatal(err)
	}
	got, hit, err := s.Lookup(hash)
	if err != nil || !hit {
		t.Fatalf("hit=%v err=%v", hit, err)
	}
	if !got.OK || got.Diagnostics != "" {
		t.Fatalf("the second record should win: %+v", got)
	}
}

func TestResultsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	hash := cache.Hash([]byte("dump"))

	s1 := open(t, path)
	if err := s1.Record(hash, &cache.Result{File: "a.vex.json", OK: true}); err != nil {
		t.Fatal(err)
	}
	if err := s1.Close(); err != nil {
		t.Fatal(err)
	}

	s2 := open(t, path)
	if s2.RunID() == s1.RunID() {
		t.Fatal("each open should register a distinct run")
	}
	if _, hit, err := s2.Lookup(hash); err != nil || !hit {
		t.Fatalf("results should persist across opens: hit=%v err=%v", hit, err)
	}
}
