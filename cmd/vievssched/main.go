package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/vievs/vievssched/internal/catalog"
	"github.com/vievs/vievssched/internal/config"
	"github.com/vievs/vievssched/internal/driver"
	"github.com/vievs/vievssched/internal/planner"
	"github.com/vievs/vievssched/internal/quality"
	"github.com/vievs/vievssched/internal/schederr"
	"github.com/vievs/vievssched/internal/schedule"
)

const (
	Version   = "0.1.0"
	BuildTime = "2026-07-29 00:00:00"
	Program   = "vievssched"
)

func init() {
	log.SetOutput(os.Stderr)
	log.SetPrefix(fmt.Sprintf("[%s-%s] ", Program, Version))

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, helpText)
		os.Exit(2)
	}
}

func main() {
	var (
		version      = flag.Bool("version", false, "print version and exit")
		listStations = flag.Bool("list-stations", false, "print the catalog station table and exit")
		listSources  = flag.Bool("list-sources", false, "print the catalog source table and exit")
	)
	flag.Parse()

	if *version {
		fmt.Fprintf(os.Stderr, "%s-%s (%s)\n", Program, Version, BuildTime)
		return
	}

	if flag.Arg(0) == "" {
		Exit(schederr.New(schederr.Configuration, "missing configuration file argument"))
	}

	cfg, err := config.Load(flag.Arg(0))
	if err != nil {
		Exit(schederr.New(schederr.Configuration, "loading configuration: %v", err))
	}

	cat, err := catalog.Decode(cfg.CatalogPath)
	if err != nil {
		Exit(schederr.New(schederr.CatalogInconsistency, "loading catalog: %v", err))
	}

	if *listStations {
		listStationTable(cat)
		return
	}
	if *listSources {
		listSourceTable(cat)
		return
	}

	Exit(run(cat, cfg))
}

// run dispatches to a single planner.Build or to the multi-schedule driver
// (component C15) depending on cfg.MultiSched.Mode, writing the resulting
// statistics line(s) to cfg.OutputPath (or stdout when unset).
func run(cat catalog.Catalog, cfg *config.Resolved) error {
	out := os.Stdout
	if cfg.OutputPath != "" {
		f, err := os.Create(cfg.OutputPath)
		if err != nil {
			return schederr.New(schederr.Configuration, "creating output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	ctx := context.Background()

	switch cfg.MultiSched.Mode {
	case "genetic":
		res, err := driver.Genetic(ctx, cat, cfg, cfg.Genetic)
		if err != nil {
			return err
		}
		return reportMultiSchedule(out, res)
	case "grid":
		res, err := driver.Grid(ctx, cat, cfg, cfg.Grid)
		if err != nil {
			return err
		}
		return reportMultiSchedule(out, res)
	default:
		sch, err := planner.Build(ctx, cat, cfg)
		if err != nil {
			return err
		}
		report := quality.Assess(sch, *cfg)
		log.Printf("session %s: %d scans, %d observations, score %.4f (passed=%t)",
			cfg.SessionName, len(sch.Scans), sch.ObservationCount(), report.Score, report.Passed)
		schedule.StatisticsHeader(out)
		schedule.StatisticsRow(out, sch)
		return nil
	}
}

func reportMultiSchedule(out *os.File, res *driver.Result) error {
	if res.Best != nil {
		log.Printf("best build: index %d, score %.4f", res.Best.Index, res.Best.Report.Score)
	} else {
		log.Printf("no attempt passed its hard conditions")
	}
	driver.WriteSummary(out, res)
	return nil
}

func listStationTable(cat catalog.Catalog) {
	stations := append([]*catalog.Station(nil), cat.Stations()...)
	sort.Slice(stations, func(i, j int) bool { return stations[i].Name < stations[j].Name })
	fmt.Printf("%-12s %-4s %-4s %-6s\n", "name", "1code", "2code", "mount")
	for _, st := range stations {
		fmt.Printf("%-12s %-4s %-4s %-6s\n", st.Name, st.OneCode, st.TwoCode, st.Mount)
	}
}

func listSourceTable(cat catalog.Catalog) {
	sources := append([]*catalog.Source(nil), cat.Sources()...)
	sort.Slice(sources, func(i, j int) bool { return sources[i].Name < sources[j].Name })
	fmt.Printf("%-12s %10s %10s %7s\n", "name", "ra(rad)", "dec(rad)", "ignore")
	for _, src := range sources {
		fmt.Printf("%-12s %10.5f %10.5f %7t\n", src.Name, src.RARad, src.DecRad, src.Ignore)
	}
}

// Exit mirrors the teacher's err.go Exit: print the error and exit with its
// carried code, or 0/no-op on success.
func Exit(e error) {
	if e == nil {
		return
	}
	fmt.Fprintln(os.Stderr, e)
	if se, ok := e.(*schederr.Error); ok {
		os.Exit(se.Code)
	}
	os.Exit(1)
}
