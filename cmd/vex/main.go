package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/vexlang/vex/internal/config"
	"github.com/vexlang/vex/internal/pipeline"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: vex check [flags] <file.vex.json>...

Checks Vex AST dumps produced by the frontend.

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "path to vex.yaml (default: search upward from cwd)")
	colorFlag := flag.String("color", "", "colorize output: auto, always or never (overrides config)")
	noCache := flag.Bool("no-cache", false, "bypass the incremental check cache")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) > 0 && args[0] == "check" {
		args = args[1:]
	}
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	for _, path := range args {
		if !isSourceFile(path) {
			fmt.Fprintf(os.Stderr, "vex: %s is not an AST dump (expected %s)\n",
				path, strings.Join(config.SourceFileExtensions, " or "))
			os.Exit(2)
		}
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vex: %v\n", err)
		os.Exit(2)
	}
	if *noCache {
		cfg.Cache.Enabled = false
	}

	color := cfg.Output.Color
	if *colorFlag != "" {
		color = *colorFlag
	}

	p, err := pipeline.New(cfg, os.Stdout, useColor(color))
	if err != nil {
		fmt.Fprintf(os.Stderr, "vex: %v\n", err)
		os.Exit(2)
	}
	ok, err := p.Run(args)
	p.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vex: %v\n", err)
		os.Exit(2)
	}
	if !ok {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if found := config.Find(cwd); found != "" {
		return config.Load(found)
	}
	return config.Default(), nil
}

func isSourceFile(path string) bool {
	base := filepath.Base(path)
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}

func useColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
