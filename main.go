package main

import (
	"flag"
	"log"
	"os"

	"github.com/masasa123jp/docshub/internal/bootstrap"
	"github.com/masasa123jp/docshub/internal/config"
	"github.com/masasa123jp/docshub/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showVersion {
		version.PrintVersion()
		os.Exit(0)
	}

	cfg := config.Load()
	if err := bootstrap.Run(cfg); err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
}
