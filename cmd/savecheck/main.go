// savecheck verifies that every blob of an unpacked save decodes and
// re-encodes to the same bytes.
//
// Usage:
//
//	savecheck [flags] <bundle-dir>
//
// The bundle directory holds level.dat (or level.dat0..N chunks) and
// optionally level-init.dat, replay.dat and script.dat. With --dump the
// decoded bundle is written as CBOR; with --write the re-encoded bundle is
// stored in another directory using the configured compression.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/arloliu/factosave/bundle"
	"github.com/arloliu/factosave/config"
	"github.com/arloliu/factosave/format"
)

// errRoundTrip marks a run that completed but found blobs that did not
// round-trip.
var errRoundTrip = errors.New("round trip failed")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	configPath  string
	compression string
	logLevel    string
	dumpPath    string
	writeDir    string
	writeComp   string
}

func run(args []string, stdout, stderr io.Writer) error {
	var f flags

	flagSet := pflag.NewFlagSet("savecheck", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	flagSet.StringVar(&f.compression, "compression", "", "compression of blob files: none, zlib, zstd, s2, lz4")
	flagSet.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	flagSet.StringVar(&f.dumpPath, "dump", "", "write the decoded bundle as CBOR to this file")
	flagSet.StringVar(&f.writeDir, "write", "", "store the re-encoded bundle in this directory")
	flagSet.StringVar(&f.writeComp, "write-compression", "", "compression for --write (default: same as --compression)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stderr, flagSet)
		return nil
	}
	if flagSet.NArg() != 1 {
		printHelp(stderr, flagSet)
		return fmt.Errorf("expected one bundle directory, got %d arguments", flagSet.NArg())
	}

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	logger, err := cfg.NewLogger(stderr)
	if err != nil {
		return err
	}

	return check(flagSet.Arg(0), f, cfg, logger, stdout)
}

func loadConfig(f flags) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(f.configPath); err != nil {
			return nil, err
		}
	}
	if f.compression != "" {
		cfg.Bundle.Compression = f.compression
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}

	return cfg, cfg.Validate()
}

func check(dir string, f flags, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	opts, err := cfg.BundleOptions()
	if err != nil {
		return err
	}
	opts = append(opts, bundle.WithLogger(logger))

	b, err := bundle.ReadDir(os.DirFS(dir), opts...)
	if err != nil {
		return err
	}

	report, err := bundle.Verify(b, opts...)
	if err != nil {
		return err
	}
	printReport(stdout, report)
	if !report.OK() {
		return fmt.Errorf("%w: %d of %d blobs", errRoundTrip, len(report.Failed()), len(report.Blobs))
	}

	if f.dumpPath == "" && f.writeDir == "" {
		return nil
	}

	decoded, err := bundle.Decode(b, opts...)
	if err != nil {
		return err
	}
	if f.dumpPath != "" {
		if err := writeDump(f.dumpPath, decoded); err != nil {
			return fmt.Errorf("dump: %w", err)
		}
		logger.Info("dump written", "path", f.dumpPath)
	}
	if f.writeDir != "" {
		out, err := bundle.Encode(decoded, opts...)
		if err != nil {
			return err
		}
		writeOpts := opts
		comp := cfg.Bundle.Compression
		if f.writeComp != "" {
			ct, ok := format.ParseCompressionType(f.writeComp)
			if !ok {
				return fmt.Errorf("unknown --write-compression %q", f.writeComp)
			}
			writeOpts = append(writeOpts[:len(writeOpts):len(writeOpts)], bundle.WithCompression(ct))
			comp = f.writeComp
		}
		if err := bundle.WriteDir(f.writeDir, out, writeOpts...); err != nil {
			return err
		}
		logger.Info("bundle written", "dir", f.writeDir, "compression", comp)
	}

	return nil
}

func printReport(w io.Writer, report *bundle.Report) {
	for _, b := range report.Blobs {
		switch {
		case b.Err != nil:
			fmt.Fprintf(w, "%-15s %10d bytes  %016x  FAIL  %v\n", b.Name, b.Size, b.Digest, b.Err)
		case !b.Identical:
			fmt.Fprintf(w, "%-15s %10d bytes  %016x  DIFF  re-encoded %016x\n", b.Name, b.Size, b.Digest, b.Reencoded)
		default:
			fmt.Fprintf(w, "%-15s %10d bytes  %016x  ok\n", b.Name, b.Size, b.Digest)
		}
	}
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `savecheck - verify that save blobs round-trip byte for byte

Usage:
  savecheck [flags] <bundle-dir>

Flags:
%s
Examples:
  # Check an unpacked save
  savecheck saves/my-factory

  # Check, then store the blobs zstd-compressed in another directory
  savecheck --write-compression zstd --write out/ saves/my-factory

  # Dump the decoded tree for inspection
  savecheck --dump my-factory.cbor saves/my-factory
`, flagSet.FlagUsages())
}
