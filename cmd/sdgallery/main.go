package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/handiism/sd-gallery/internal/catalog"
	"github.com/handiism/sd-gallery/internal/config"
	"github.com/handiism/sd-gallery/internal/export"
	"github.com/handiism/sd-gallery/internal/filter"
	ioutils "github.com/handiism/sd-gallery/internal/io"
	"github.com/handiism/sd-gallery/internal/metadata"
	"github.com/handiism/sd-gallery/internal/model"
)

func main() {
	// Command line flags
	var (
		rootFlag        = flag.String("root", "", "Outputs folder to scan (overrides config)")
		configFlag      = flag.String("config", "", "Path to config file (.json, .yaml or .yml)")
		writeConfigFlag = flag.Bool("write-config", false, "Write the effective settings to -config and exit")
		folderFlag      = flag.String("folder", "", "Sub-folders to keep (comma-separated)")
		dateFlag        = flag.String("date", "", "Dates to keep (comma-separated)")
		modelFlag       = flag.String("model", "", "Models to keep (comma-separated)")
		tagFlag         = flag.String("tag", "", "Prompt tags every image must carry (comma-separated)")
		facetsFlag      = flag.Bool("facets", false, "Print the choices of every facet instead of images")
		detailFlag      = flag.String("detail", "", "Print the generation details of one image")
		formatFlag      = flag.String("format", "", "Export format: paths, csv, json, yaml, m3u (overrides config)")
		outFlag         = flag.String("out", "", "Write the export to a file instead of stdout")
		limitFlag       = flag.Int("limit", 0, "Maximum number of images to export (0 = all)")
		shuffleFlag     = flag.Bool("shuffle", false, "Shuffle images before applying -limit")
		workersFlag     = flag.Int("workers", 0, "Concurrent metadata readers (overrides config)")
		verboseFlag     = flag.Bool("verbose", false, "Show verbose output")
	)

	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintln(out, "SD Gallery - Index and filter Stable Diffusion outputs")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Usage:")
		fmt.Fprintln(out, "  sdgallery -root <dir> [filters] [options]")
		fmt.Fprintln(out, "  sdgallery -root <dir> -facets")
		fmt.Fprintln(out, "  sdgallery -root <dir> -detail <image>")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "For interactive mode, use: sdgallery-tui")
		fmt.Fprintln(out)
		flag.PrintDefaults()
	}
	flag.Parse()

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *rootFlag != "" {
		settings.OutputsPath = *rootFlag
	} else if flag.NArg() > 0 {
		settings.OutputsPath = flag.Arg(0)
	}
	if *workersFlag > 0 {
		settings.Workers = *workersFlag
	}
	if *formatFlag != "" {
		settings.ExportFormat = *formatFlag
	}

	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *writeConfigFlag {
		if *configFlag == "" {
			fmt.Fprintln(os.Stderr, "Error: -write-config needs -config")
			os.Exit(1)
		}
		if err := settings.Save(*configFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Settings written to %s\n", *configFlag)
		return
	}

	format, err := export.ParseFormat(settings.ExportFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nInterrupted, cancelling...")
		cancel()
	}()

	// Progress goes to stderr; stdout carries the export.
	reader := metadata.NewReader(settings.ReadDimensions)
	builder := catalog.NewBuilder(settings, reader, func(event catalog.ProgressEvent) {
		if event.Level == catalog.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := ""
		switch event.Level {
		case catalog.LevelError:
			prefix = "✗ "
		case catalog.LevelWarning:
			prefix = "! "
		case catalog.LevelSuccess:
			prefix = "✓ "
		case catalog.LevelInfo:
			prefix = "› "
		default:
			prefix = "  "
		}

		fmt.Fprintln(os.Stderr, prefix+event.Message)
	})

	cat, err := builder.Build(ctx, settings.OutputsPath)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "Scan cancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error building catalog: %v\n", err)
		os.Exit(1)
	}

	if *detailFlag != "" {
		if err := printDetail(cat, *detailFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	sel := filter.Selection{
		model.FacetSubFolder: splitList(*folderFlag),
		model.FacetDate:      splitList(*dateFlag),
		model.FacetModel:     splitList(*modelFlag),
		model.FacetPromptTag: splitList(*tagFlag),
	}
	res := filter.Apply(cat, sel)

	if *facetsFlag {
		printFacets(res, sel)
		return
	}

	var rng *rand.Rand
	if *shuffleFlag {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	records := filter.Sample(res.Catalog.Records, *limitFlag, rng)

	var buf bytes.Buffer
	if err := export.Write(&buf, records, format); err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
		os.Exit(1)
	}

	if *outFlag == "" {
		os.Stdout.Write(buf.Bytes())
		return
	}
	if err := ioutils.WriteFile(ctx, *outFlag, buf.Bytes()); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *outFlag, err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "✓ Exported %d of %d images to %s\n", len(records), res.Catalog.Len(), *outFlag)
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printDetail(cat *model.Catalog, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	r, ok := cat.Find(abs)
	if !ok {
		return fmt.Errorf("image not in catalog: %s", abs)
	}
	fmt.Println(r.Path)
	if r.Width > 0 {
		fmt.Printf("%dx%d\n", r.Width, r.Height)
	}
	fmt.Print(model.FormatDetail(r))
	return nil
}

func printFacets(res filter.Result, sel filter.Selection) {
	fmt.Printf("%d images match\n", res.Catalog.Len())
	for _, f := range model.Facets {
		state := res.Facets[f]
		fmt.Printf("\n%s\n", f.Label())
		for _, c := range state.Choices {
			mark := " "
			if sel.Has(f, c.Value) {
				mark = "*"
			}
			fmt.Printf("  %s %s\n", mark, c.Label())
		}
		// Selected values that no longer match anything.
		for _, c := range state.Selected {
			if c.Count == 0 {
				fmt.Printf("  * %s\n", c.Label())
			}
		}
	}
}
