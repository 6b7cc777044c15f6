package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/clrmeta/builder"
	"github.com/wippyai/clrmeta/cil"
	"github.com/wippyai/clrmeta/cts"
	"github.com/wippyai/clrmeta/metadata"
)

func main() {
	var (
		file        = flag.String("file", "", "Metadata root or mdinspect bundle to inspect")
		configFile  = flag.String("config", "", "TOML config file with defaults")
		codeFile    = flag.String("code", "", "Raw code/data bytes to map at -code-rva")
		codeRVA     = flag.Uint("code-rva", 0x2050, "RVA of the -code bytes")
		tables      = flag.String("tables", "", "Tables to dump (comma-separated, default all non-empty)")
		format      = flag.String("format", "", "Output format: auto, text, styled or msgpack")
		disasm      = flag.Bool("dis", false, "Disassemble method bodies instead of dumping tables")
		rebuild     = flag.String("rebuild", "", "Rebuild the image and write a bundle to this path")
		largeIdx    = flag.Bool("large-indices", false, "Write every heap index as 4 bytes when rebuilding")
		logLevel    = flag.String("log", "", "Log level (debug, info, warn, error)")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Usage: mdinspect -file <metadata> [-tables TypeDef,Method] [-format text|styled|msgpack]")
		fmt.Fprintln(os.Stderr, "       mdinspect -file <metadata> -code <bytes> -code-rva 0x2050 -dis")
		fmt.Fprintln(os.Stderr, "       mdinspect -file <metadata> -rebuild <out>")
		fmt.Fprintln(os.Stderr, "       mdinspect -file <metadata> -i  (interactive mode)")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Output.Format = *format
		case "tables":
			cfg.Output.Tables = splitList(*tables)
		case "log":
			cfg.Log.Level = *logLevel
		case "large-indices":
			cfg.Rebuild.ForceLargeIndices = *largeIdx
		}
	})

	log, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	metadata.SetLogger(log.Named("metadata"))
	cil.SetLogger(log.Named("cil"))
	cts.SetLogger(log.Named("cts"))
	builder.SetLogger(log.Named("builder"))

	in, err := openInput(*file, *codeFile, uint32(*codeRVA))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(*file, in); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(in, cfg, *disasm, *rebuild); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(in *input, cfg *Config, disasm bool, rebuildPath string) error {
	if rebuildPath != "" {
		return writeRebuild(in.image, cfg.builderOptions(), rebuildPath)
	}

	out := newPrinter(os.Stdout, cfg.Output.Format)
	if disasm {
		return out.disassemble(in.image)
	}
	kinds, err := selectTables(in.image.Tables(), cfg.Output.Tables)
	if err != nil {
		return err
	}
	return out.dumpTables(in.image, kinds)
}

func newLogger(cfg LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
