package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/golang/glog"

	"github.com/edp1096/gmid-sizer/internal/config"
	"github.com/edp1096/gmid-sizer/internal/pipeline"
	"github.com/edp1096/gmid-sizer/pkg/analysis"
	"github.com/edp1096/gmid-sizer/pkg/database"
	"github.com/edp1096/gmid-sizer/pkg/util"
)

const usage = `Usage: gmid [flags] [simulate|plot|export|all]

  simulate  characterize, size and verify; writes one snapshot per circuit
  plot      draw the stored snapshots
  export    copy the stored snapshots into SQLite
  all       simulate, plot and export (default)

Flags:
`

func scalar(rec *database.Record, name, unit string) string {
	v, err := rec.Scalar(name)
	if err != nil {
		return "-"
	}
	if unit == "" {
		return fmt.Sprintf("%.2f", v)
	}
	return util.FormatValueFactor(v, unit)
}

func printResults(snaps map[analysis.Kind]*database.Database) {
	columns := map[analysis.Kind][]struct{ name, unit string }{
		analysis.KindCharacterization: {
			{analysis.Width, "m"}, {analysis.IDAtVStar, "A"}, {analysis.VodAtCM, "V"}, {analysis.FtAtVStar, "Hz"},
		},
		analysis.KindVerification: {
			{analysis.MaxGain, ""}, {analysis.VgAtMaxGain, "V"}, {analysis.VdAtCM, "V"},
		},
		analysis.KindTransient: {
			{analysis.InputSwing, "V"}, {analysis.OutputSwing, "V"}, {analysis.Gain, ""},
		},
		analysis.KindFrequency: {
			{analysis.DCGain, ""}, {analysis.UnityGain, "Hz"}, {analysis.PhaseMargin, ""},
		},
		analysis.KindCurrentMirror: {
			{analysis.RoAtHalfVdd, "Ohm"}, {analysis.IDAtHalfVdd, "A"},
		},
	}

	for _, kind := range analysis.Kinds() {
		db := snaps[kind]
		if db == nil {
			continue
		}
		fmt.Printf("\n%s (%s):\n", kind, db.RunID)
		fmt.Printf("%-8s", "Length")
		for _, c := range columns[kind] {
			fmt.Printf("  %-16s", c.name)
		}
		fmt.Println()

		for _, key := range db.SortedKeys() {
			rec, err := db.Get(key)
			if err != nil {
				continue
			}
			fmt.Printf("%-8s", key)
			for _, c := range columns[kind] {
				fmt.Printf("  %-16s", scalar(rec, c.name, c.unit))
			}
			fmt.Println()
		}
	}
}

func main() {
	configPath := flag.String("config", "", "design configuration file (TOML)")
	workdir := flag.String("workdir", "", "working directory, overrides the configuration")
	format := flag.String("format", "", "plot format, pdf or html")
	dbPath := flag.String("db", "", "SQLite file written by export")
	quiet := flag.Bool("quiet", false, "do not print the result tables")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	defer glog.Flush()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			glog.Fatalf("Error loading configuration: %v", err)
		}
	}
	if *workdir != "" {
		cfg.Simulator.WorkDir = *workdir
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	if *dbPath != "" {
		cfg.Output.Database = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		glog.Fatalf("Invalid configuration: %v", err)
	}

	command := "all"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p, err := pipeline.New(cfg, nil)
	if err != nil {
		glog.Fatalf("Error preparing pipeline: %v", err)
	}

	switch command {
	case "simulate":
		err = p.Simulate(ctx)
	case "plot":
		var path string
		path, err = p.Plot()
		if err == nil {
			fmt.Println("Plot written to", path)
		}
	case "export":
		var path string
		path, err = p.Export(ctx)
		if err == nil {
			fmt.Println("Results exported to", path)
		}
	case "all":
		err = p.Run(ctx)
	default:
		flag.Usage()
		glog.Fatalf("Unknown command %q", command)
	}
	if err != nil {
		glog.Fatalf("%s failed: %v", command, err)
	}

	if *quiet || (command != "simulate" && command != "all") {
		return
	}
	snaps, err := p.Snapshots()
	if err != nil {
		glog.Fatalf("Error reading snapshots: %v", err)
	}
	printResults(snaps)
}
