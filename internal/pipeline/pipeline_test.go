package pipeline_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vexlang/vex/internal/config"
	"github.com/vexlang/vex/internal/pipeline"
)

const cleanDump = `{
  "file": "ok.vex",
  "decs": [{
    "kind": "def", "line": 1, "col": 1, "name": "n",
    "ret": {"kind": "prim", "name": "i32", "line": 1, "col": 9},
    "body": {"kind": "int", "value": 5, "line": 1, "col": 15}
  }]
}`

const brokenDump = `{
  "file": "bad.vex",
  "decs": [{
    "kind": "def", "line": 1, "col": 1, "name": "n",
    "ret": {"kind": "prim", "name": "bool", "line": 1, "col": 9},
    "body": {"kind": "int", "value": 5, "line": 1, "col": 17}
  }]
}`

func writeDump(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCleanFile(t *testing.T) {
	dir := t.TempDir()
	path := writeDump(t, dir, "ok.vex.json", cleanDump)

	var out bytes.Buffer
	p, err := pipeline.New(nil, &out, false)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	ok, err := p.Run([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("clean file should pass, output:\n%s", out.String())
	}
}

func TestRunBrokenFile(t *testing.T) {
	dir := t.TempDir()
	path := writeDump(t, dir, "bad.vex.json", brokenDump)

	var out bytes.Buffer
	p, err := pipeline.New(nil, &out, false)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	ok, err := p.Run([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("a type error should fail the run")
	}
	if !strings.Contains(out.String(), "error[") {
		t.Fatalf("diagnostics should be rendered, got:\n%s", out.String())
	}
}

func TestCacheHitSkipsRecheck(t *testing.T) {
	dir := t.TempDir()
	path := writeDump(t, dir, "ok.vex.json", cleanDump)

	cfg := config.Default()
	cfg.Cache.Enabled = true
	cfg.Cache.Path = filepath.Join(dir, "cache.db")

	first, err := pipeline.New(cfg, os.Stdout, false)
	if err != nil {
		t.Fatal(err)
	}
	res, err := first.CheckFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Cached || !res.OK {
		t.Fatalf("first pass should check for real: %+v", res)
	}
	first.Close()

	second, err := pipeline.New(cfg, os.Stdout, false)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()
	res, err = second.CheckFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Cached || !res.OK {
		t.Fatalf("second pass should come from the cache: %+v", res)
	}
}

func TestCacheMissAfterEdit(t *testing.T) {
	dir := t.TempDir()
	path := writeDump(t, dir, "ok.vex.json", cleanDump)

	cfg := config.Default()
	cfg.Cache.Enabled = true
	cfg.Cache.Path = filepath.Join(dir, "cache.db")

	p1, err := pipeline.New(cfg, os.Stdout, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p1.CheckFile(path); err != nil {
		t.Fatal(err)
	}
	p1.Close()

	writeDump(t, dir, "ok.vex.json", brokenDump)

	p2, err := pipeline.New(cfg, os.Stdout, false)
	if err != nil {
		t.Fatal(err)
	}
	defer p2.Close()
	res, err := p2.CheckFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Cached {
		t.Fatal("edited content must be rechecked")
	}
	if res.OK {
		t.Fatal("the edited dump has a type error")
	}
}
