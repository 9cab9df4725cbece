package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	qtpeek "github.com/qtpeek/qtpeek"
	"github.com/qtpeek/qtpeek/config"
	"github.com/qtpeek/qtpeek/decode"
	"github.com/qtpeek/qtpeek/snapshot"
)

func main() {
	var (
		snapFile    = flag.String("snap", "", "Path to memory snapshot file")
		rootName    = flag.String("root", "", "Root value to inspect (optional)")
		configFile  = flag.String("config", "", "Path to qtpeek.toml (default: search upwards)")
		depth       = flag.Int("depth", 1, "Child expansion depth")
		list        = flag.Bool("list", false, "List root values and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *snapFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: qtpeek -snap <file.qtsnap> [-root name] [-depth n]")
		fmt.Fprintln(os.Stderr, "       qtpeek -snap <file.qtsnap> -list")
		fmt.Fprintln(os.Stderr, "       qtpeek -snap <file.qtsnap> -i  (interactive mode)")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := setupLogger(cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*snapFile, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*snapFile, *rootName, *depth, *list, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.FindAndLoad(".")
}

func setupLogger(level string) error {
	if level == "warn" {
		return nil // the default no-op logger already suppresses debug noise
	}
	zc := zap.NewDevelopmentConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	zc.Level = lvl
	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	decode.SetLogger(logger)
	return nil
}

func run(snapFile, rootName string, depth int, listOnly bool, cfg *config.Config) error {
	snap, err := snapshot.Open(snapFile)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}

	arch := snap.Arch()
	fmt.Printf("Snapshot: %s\n", snapFile)
	fmt.Printf("Pointer size: %d\n", arch.PointerSize)
	fmt.Printf("Roots: %d\n", len(snap.Roots()))

	if listOnly {
		fmt.Printf("\nRoot values:\n")
		for _, r := range snap.Roots() {
			fmt.Printf("  %s  %s @ 0x%x\n", r.Name, r.Value.TypeName, r.Value.Addr)
		}
		return nil
	}

	engine, err := decode.NewEngine(snap, snap, arch, cfg.EngineOptions())
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	roots := snap.Roots()
	if rootName != "" {
		roots = nil
		for _, r := range snap.Roots() {
			if r.Name == rootName {
				roots = append(roots, r)
			}
		}
		if len(roots) == 0 {
			return fmt.Errorf("no root named %q in snapshot", rootName)
		}
	}

	fmt.Println()
	for _, r := range roots {
		printValue(engine, r.Name, r.Value, 0, depth)
	}
	return nil
}

// printValue renders one value line and recurses into its children up to
// maxDepth levels.
func printValue(engine *decode.Engine, label string, v qtpeek.Value, indent, maxDepth int) {
	pad := strings.Repeat("  ", indent)
	res, ok := engine.Inspect(v)
	if !ok {
		fmt.Printf("%s%s  %s @ 0x%x  (no decoder)\n", pad, label, v.TypeName, v.Addr)
		return
	}

	fmt.Printf("%s%s = %s\n", pad, label, res.Summary)
	if !res.HasChildren || indent >= maxDepth {
		return
	}

	it := engine.Children(v)
	for {
		child, ok := it.Next()
		if !ok {
			break
		}
		printValue(engine, child.Label, child.Value, indent+1, maxDepth)
	}
	if err := it.Err(); err != nil {
		fmt.Printf("%s  (enumeration stopped: %v)\n", pad, err)
	}
}
