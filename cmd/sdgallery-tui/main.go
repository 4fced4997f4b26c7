package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/handiism/sd-gallery/internal/config"
	"github.com/handiism/sd-gallery/internal/tui"
)

func main() {
	var (
		configFlag  = flag.String("config", "", "Path to config file (.json, .yaml or .yml)")
		rootFlag    = flag.String("root", "", "Outputs folder to scan (overrides config)")
		verboseFlag = flag.Bool("verbose", false, "Show verbose output")
	)
	flag.Parse()

	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if *rootFlag != "" {
		settings.OutputsPath = *rootFlag
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(settings, *verboseFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
