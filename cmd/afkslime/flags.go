package main

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/vktec/afkslime/config"
)

// cliFlags holds the command line. Settings given here win over the config file.
type cliFlags struct {
	fs *flag.FlagSet

	configPath string
	workers    int
	format     string
	top        int
	threshold  int
	sections   bool
	dbPath     string
	cached     bool
	history    bool
	exportPath string
	watchAddr  string
	showMask   bool
	quiet      bool
}

func newCLIFlags(fs *flag.FlagSet) *cliFlags {
	f := &cliFlags{fs: fs}
	fs.StringVar(&f.configPath, "config", "", "YAML config `file`")
	fs.IntVar(&f.workers, "j", 0, "Number of concurrent workers (default GOMAXPROCS)")
	fs.StringVar(&f.format, "f", "", "Output `format` (valid options: csv, json, human)")
	fs.IntVar(&f.top, "top", -1, "Number of ranked `chunks` to report")
	fs.IntVar(&f.threshold, "threshold", 0, "Only keep centers with at least this many slime chunks (negative: at most)")
	fs.BoolVar(&f.sections, "sections", false, "Scan with the section cache instead of the spiral")
	fs.StringVar(&f.dbPath, "db", "", "Record runs in this SQLite `file`")
	fs.BoolVar(&f.cached, "cached", false, "Reuse a matching run from -db instead of searching")
	fs.BoolVar(&f.history, "history", false, "List runs recorded in -db and exit")
	fs.StringVar(&f.exportPath, "export", "", "Write every ranked result to this .jsonl.zst `file`")
	fs.StringVar(&f.watchAddr, "watch", "", "Serve progress over WebSocket on this `address`")
	fs.BoolVar(&f.showMask, "show-mask", false, "Print the despawn mask and exit")
	fs.BoolVar(&f.quiet, "q", false, "Do not print progress")
	return f
}

// apply copies the flags that were actually given, then the seed and range
// arguments, over cfg. Flags left at their defaults keep the config's value.
func (f *cliFlags) apply(cfg *config.Config) error {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "j":
			cfg.Workers = f.workers
		case "f":
			cfg.Format = f.format
		case "top":
			cfg.Top = f.top
		case "threshold":
			cfg.Threshold = f.threshold
		case "sections":
			cfg.Sections = f.sections
		case "db":
			cfg.Store = f.dbPath
		case "export":
			cfg.Export = f.exportPath
		case "watch":
			cfg.Watch = f.watchAddr
		}
	})

	args := f.fs.Args()
	if len(args) > 0 {
		cfg.Seed = config.Seed(args[0])
	}
	if len(args) > 1 {
		searchRange, err := strconv.ParseInt(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("could not convert range to integer: %w", err)
		}
		cfg.Range = int32(searchRange)
	}
	return nil
}

// sectionArea is the half-open rectangle that SearchArea scans for a range.
// It holds the same chunks as afkslime.Spiral(searchRange, searchRange).
func sectionArea(searchRange int32) (x0, z0, x1, z1 int32) {
	lo, hi := -searchRange/2+1, searchRange/2+1
	return lo, lo, hi, hi
}
