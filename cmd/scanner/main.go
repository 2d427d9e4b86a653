package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/nthds/segyscope/internal/adapters/memstore"
	"github.com/nthds/segyscope/internal/adapters/segy"
	"github.com/nthds/segyscope/internal/core/domain"
	"github.com/nthds/segyscope/internal/core/usecases"
	"github.com/nthds/segyscope/internal/pkg/config"
	"github.com/nthds/segyscope/internal/pkg/geometry"
	"github.com/nthds/segyscope/internal/pkg/logging"
)

// fileReport is the per-file entry of the scan inventory.
type fileReport struct {
	File         string                `json:"file"`
	Status       string                `json:"status"` // "ok" | "unreadable" | "error"
	Error        string                `json:"error,omitempty"`
	Summary      *domain.SurveySummary `json:"summary,omitempty"`
	AreaKM2      float64               `json:"area_km2,omitempty"`
	SampleTraces int                   `json:"sample_traces,omitempty"`
}

// scanReport is the full output of one directory scan.
type scanReport struct {
	Directory   string                 `json:"directory"`
	Files       []fileReport           `json:"files"`
	Missing     []string               `json:"missing,omitempty"`
	Unreadable  []string               `json:"unreadable,omitempty"`
	Coverage    *domain.CoverageReport `json:"coverage"`
	CoverageKM2 float64                `json:"coverage_km2"`
}

func main() {
	var (
		dir         = flag.String("dir", ".", "directory to scan for .sgy/.segy files")
		inventory   = flag.String("inventory", "", "optional file listing expected SEGY paths, one per line; listed files not on disk are reported as missing")
		concurrency = flag.Int("concurrency", 4, "max files analyzed in parallel")
		jsonOut     = flag.Bool("json", false, "emit the full report as JSON on stdout")
	)
	flag.Parse()

	logging.Setup("segyscope-scanner", os.Getenv("LOG_LEVEL"), "text")

	cfg, err := config.Load("segyscope-scanner")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	// Same analysis pipeline as the API, minus the event feed.
	parser := &segy.Parser{MaxSampleTraces: cfg.Upload.MaxSampleTraces}
	svc := usecases.NewDatasetService(memstore.NewDatasetRepository(), parser, nil)

	var paths, missing []string
	if *inventory != "" {
		paths, missing, err = readInventory(*inventory, *dir)
		if err != nil {
			log.Fatalf("inventory %s: %v", *inventory, err)
		}
	} else {
		paths, err = findSegyFiles(*dir)
		if err != nil {
			log.Fatalf("scan %s: %v", *dir, err)
		}
	}
	if len(paths) == 0 && len(missing) == 0 {
		log.Fatalf("no .sgy or .segy files under %s", *dir)
	}

	if *concurrency < 1 {
		*concurrency = 1
	}

	reports := make([]fileReport, len(paths))
	var wg sync.WaitGroup
	sem := make(chan struct{}, *concurrency)

	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			reports[i] = analyzeFile(ctx, svc, path)
		}(i, path)
	}
	wg.Wait()

	report := scanReport{Directory: *dir, Files: reports, Missing: missing}
	for _, fr := range reports {
		if fr.Status == "unreadable" {
			report.Unreadable = append(report.Unreadable, fr.File)
		}
	}

	coverage, err := svc.Coverage(ctx)
	if err != nil {
		log.Fatalf("coverage: %v", err)
	}
	report.Coverage = coverage
	report.CoverageKM2 = geometry.SquareKilometers(coverage.TotalArea)

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatalf("encode report: %v", err)
		}
		return
	}

	printReport(report)
}

// readInventory reads expected SEGY paths (one per line, # comments allowed)
// and splits them into files present on disk and missing ones. Relative paths
// resolve against dir.
func readInventory(path, dir string) (present, missing []string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(line))
		if ext != ".sgy" && ext != ".segy" {
			continue
		}
		p := line
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		if _, err := os.Stat(p); err != nil {
			missing = append(missing, p)
			continue
		}
		present = append(present, p)
	}
	sort.Strings(present)
	sort.Strings(missing)
	return present, missing, nil
}

// findSegyFiles walks dir and returns sorted paths of SEGY files.
func findSegyFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".sgy" || ext == ".segy" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func analyzeFile(ctx context.Context, svc *usecases.DatasetService, path string) fileReport {
	fr := fileReport{File: path}

	f, err := os.Open(path)
	if err != nil {
		fr.Status = "error"
		fr.Error = err.Error()
		return fr
	}
	defer f.Close()

	ds, err := svc.Analyze(ctx, filepath.Base(path), f)
	if err != nil {
		if errors.Is(err, domain.ErrUnreadable) {
			fr.Status = "unreadable"
		} else {
			fr.Status = "error"
		}
		fr.Error = err.Error()
		return fr
	}

	fr.Status = "ok"
	fr.Summary = &ds.Summary
	// Coordinates are assumed to be meters; report km² for map-scale reading.
	fr.AreaKM2 = geometry.SquareKilometers(ds.Summary.Area)
	if ds.Amplitudes != nil {
		fr.SampleTraces = ds.Amplitudes.SampleCount
	}
	return fr
}

func printReport(report scanReport) {
	fmt.Printf("scanned %s: %d files\n\n", report.Directory, len(report.Files))

	for _, fr := range report.Files {
		switch fr.Status {
		case "ok":
			fmt.Printf("  %-40s traces=%-8d area=%.3f km²", fr.File, fr.Summary.TraceCount, fr.AreaKM2)
			if fr.Summary.InlineRange != nil {
				fmt.Printf(" inlines=%d-%d", fr.Summary.InlineRange.Min, fr.Summary.InlineRange.Max)
			}
			if fr.Summary.CrosslineRange != nil {
				fmt.Printf(" crosslines=%d-%d", fr.Summary.CrosslineRange.Min, fr.Summary.CrosslineRange.Max)
			}
			fmt.Println()
		default:
			fmt.Printf("  %-40s %s: %s\n", fr.File, fr.Status, fr.Error)
		}
	}

	fmt.Println()
	fmt.Printf("coverage: %d datasets, %d traces, %d bytes, %.3f km²\n",
		report.Coverage.Datasets, report.Coverage.Traces, report.Coverage.TotalBytes, report.CoverageKM2)
	if b := report.Coverage.Bounds; b != nil {
		fmt.Printf("bounds: x %.1f..%.1f, y %.1f..%.1f\n", b.MinX, b.MaxX, b.MinY, b.MaxY)
	}
	if len(report.Missing) > 0 {
		fmt.Printf("missing files: %s\n", strings.Join(report.Missing, ", "))
	}
	if len(report.Unreadable) > 0 {
		fmt.Printf("unreadable files: %s\n", strings.Join(report.Unreadable, ", "))
	}
}
