// Package pipeline drives a full check run: it loads AST dumps,
// consults the incremental cache, runs the checker and renders
// diagnostics.
package pipeline

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/vexlang/vex/internal/astjson"
	"github.com/vexlang/vex/internal/cache"
	"github.com/vexlang/vex/internal/checker"
	"github.com/vexlang/vex/internal/config"
	"github.com/vexlang/vex/internal/diagnostics"
)

// FileResult is the outcome of checking one dump.
type FileResult struct {
	Path        string
	OK          bool
	Cached      bool
	Diagnostics []*diagnostics.Diagnostic

	// Rendered holds the cache's stored rendering when the result was
	// a cache hit; structured diagnostics are not persisted.
	Rendered string
}

// Pipeline checks a batch of AST dumps under one configuration.
type Pipeline struct {
	cfg   *config.Config
	store *cache.Store
	out   io.Writer
	color bool
}

// New builds a pipeline. A nil config means defaults; the cache is
// opened lazily only when the config enables it.
func New(cfg *config.Config, out io.Writer, color bool) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	p := &Pipeline{cfg: cfg, out: out, color: color}
	if cfg.Cache.Enabled {
		store, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			return nil, err
		}
		p.store = store
	}
	return p, nil
}

// Close releases the cache, if open.
func (p *Pipeline) Close() error {
	if p.store != nil {
		return p.store.Close()
	}
	return nil
}

// CheckFile checks one dump, going through the cache when possible.
func (p *Pipeline) CheckFile(path string) (*FileResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var hash string
	if p.store != nil {
		hash = cache.Hash(data)
		if cached, hit, err := p.store.Lookup(hash); err != nil {
			return nil, err
		} else if hit {
			return &FileResult{Path: path, OK: cached.OK, Cached: true, Rendered: cached.Diagnostics}, nil
		}
	}

	prog, err := astjson.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	diags := checker.CheckProgram(prog, nil, nil)
	if !p.cfg.UnusedWarnings() {
		diags = dropCode(diags, diagnostics.WarnW001)
	}
	res := &FileResult{Path: path, Diagnostics: diags, OK: resultOK(diags, p.cfg.Warnings.AsErrors)}

	if p.store != nil {
		var sb strings.Builder
		for _, d := range diags {
			diagnostics.Render(&sb, d, false)
		}
		if err := p.store.Record(hash, &cache.Result{File: path, OK: res.OK, Diagnostics: sb.String()}); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Run checks every path and renders diagnostics as it goes. It
// returns true when every file checked clean.
func (p *Pipeline) Run(paths []string) (bool, error) {
	paths = append([]string(nil), paths...)
	sort.Strings(paths)
	allOK := true
	for _, path := range paths {
		res, err := p.CheckFile(path)
		if err != nil {
			return false, err
		}
		if !res.OK {
			allOK = false
		}
		p.render(res)
	}
	return allOK, nil
}

func (p *Pipeline) render(res *FileResult) {
	if res.Cached {
		if res.Rendered != "" {
			io.WriteString(p.out, res.Rendered)
		}
		return
	}
	for _, d := range res.Diagnostics {
		diagnostics.Render(p.out, d, p.color)
	}
}

func resultOK(diags []*diagnostics.Diagnostic, warningsAsErrors bool) bool {
	for _, d := range diags {
		if d.Severity == diagnostics.SeverityError || warningsAsErrors {
			return false
		}
	}
	return true
}

func dropCode(diags []*diagnostics.Diagnostic, code diagnostics.Code) []*diagnostics.Diagnostic {
	out := diags[:0]
	for _, d := range diags {
		if d.Code != code {
			out = append(out, d)
		}
	}
	return out
}
