// labtriage is a hybrid triage service: an orchestration gateway performs
// non-emergency symptom triage and delegates lab-report structuring to a
// locally hosted OpenAI-compatible inference endpoint.
//
// Usage:
//
//	labtriage serve                       # start the service
//	labtriage serve --config config.yaml  # with a config file
//	labtriage version                     # show version
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/clinsight/labtriage/config"
)

var (
	// Set via -ldflags at build time.
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "serve":
		fs := flag.NewFlagSet("serve", flag.ExitOnError)
		configPath := fs.String("config", "", "path to YAML config file")
		_ = fs.Parse(os.Args[2:])
		if err := runServe(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "labtriage: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("labtriage %s (%s)\n", Version, GitCommit)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: labtriage <serve|version> [flags]")
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	srv, err := NewServer(cfg, logger)
	if err != nil {
		return err
	}
	return srv.Run()
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if !cfg.JSON {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
