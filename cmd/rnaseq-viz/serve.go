package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/AammarTufail/rnaseq-viz/internal/server"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)

	var addr string
	fs.StringVar(&addr, "addr", viper.GetString("server.addr"), "Listen address")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Serve DESeq2 result tables over an HTTP API.

Each uploaded table becomes an isolated session with its own thresholds.
Sessions live in memory and disappear on restart.

Usage:
  rnaseq-viz serve [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  rnaseq-viz serve
  rnaseq-viz serve --addr 127.0.0.1:9090

  # Upload a table and fetch its volcano plot data
  curl -F file=@results.tsv localhost:8080/api/v1/sessions
  curl localhost:8080/api/v1/sessions/<id>/volcano
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	cfg := server.Config{
		Thresholds: configThresholds(),
		Colors:     configColors(),
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: configured thresholds are invalid: %v\n", err)
		return ExitUsage
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		return ExitError
	}
	defer logger.Sync()

	srv := server.New(cfg)
	srv.SetLogger(logger)

	if err := srv.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}
