package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/vktec/afkslime"
	"github.com/vktec/afkslime/config"
	"github.com/vktec/afkslime/cpu"
	"github.com/vktec/afkslime/export"
	"github.com/vktec/afkslime/store"
	"github.com/vktec/afkslime/watch"
)

func formatCSV(w io.Writer, rep afkslime.Report) error {
	if _, err := fmt.Fprintln(w, "Center Chunk X,Center Chunk Z,Slime Chunk Count"); err != nil {
		return err
	}
	for _, result := range rep.Top {
		if _, err := fmt.Fprint(w, result.X, ",", result.Z, ",", result.Count, "\n"); err != nil {
			return err
		}
	}
	return nil
}

func formatJSON(w io.Writer, rep afkslime.Report) error {
	return json.NewEncoder(w).Encode(rep)
}

func formatHuman(w io.Writer, rep afkslime.Report) error {
	return rep.WriteHuman(w)
}

var formatters = map[string]func(io.Writer, afkslime.Report) error{
	"csv":   formatCSV,
	"json":  formatJSON,
	"human": formatHuman,
}

func main() {
	flags := newCLIFlags(flag.CommandLine)

	flag.CommandLine.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] seed [range]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr)
	}
	flag.Parse()

	logger := log.New(os.Stderr, "[afkslime] ", log.LstdFlags)
	mask := afkslime.DespawnMask(afkslime.DespawnRadius)

	if flags.showMask {
		if err := mask.Print(os.Stdout); err != nil {
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Could not load config:", err)
		os.Exit(2)
	}

	// Flags and arguments override the config file
	if err := flags.apply(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var db *store.Store
	if cfg.Store != "" {
		db, err = store.OpenSQLite(cfg.Store)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Could not open run database:", err)
			os.Exit(1)
		}
		defer db.Close()
	}
	ctx := context.Background()

	if flags.history {
		if db == nil {
			fmt.Fprintln(os.Stderr, "-history needs -db")
			os.Exit(2)
		}
		if err := printHistory(ctx, db); err != nil {
			fmt.Fprintln(os.Stderr, "Could not list runs:", err)
			os.Exit(1)
		}
		return
	}

	if cfg.Seed == "" {
		flag.CommandLine.Usage()
		os.Exit(2)
	}
	// Normalize has already trimmed the seed, so " 7" on the command line
	// means 7 here even though ParseSeed on its own would hash it as text.
	seed := afkslime.ParseSeed(string(cfg.Seed))

	if flags.cached && db != nil {
		run, ok, err := db.FindRun(ctx, seed, cfg.Range, afkslime.DespawnRadius, cfg.Threshold)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Could not look up cached run:", err)
			os.Exit(1)
		}
		if ok && len(run.Report.Top) >= cfg.Top {
			logger.Printf("using run %s from %s", run.ID, humanize.Time(run.StartedAt))
			run.Report.Top = afkslime.Top(run.Report.Top, cfg.Top)
			if err := formatters[cfg.Format](os.Stdout, run.Report); err != nil {
				os.Exit(1)
			}
			return
		}
	}

	s, err := cpu.NewSearcher(cfg.Workers, mask)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Could not create searcher:", err)
		os.Exit(1)
	}
	defer s.Destroy()
	s.Threshold = cfg.Threshold
	s.Progress = new(afkslime.Progress)

	var (
		feed *watch.Server
		srv  *http.Server
	)
	if cfg.Watch != "" {
		feed = watch.NewServer(logger)
		srv = &http.Server{Handler: feed.Handler()}
	}

	started := time.Now()
	var results []afkslime.Result
	done := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(done)
		if cfg.Sections {
			x0, z0, x1, z1 := sectionArea(cfg.Range)
			results = s.SearchArea(seed, x0, z0, x1, z1)
		} else {
			results = s.Search(seed, afkslime.Spiral(cfg.Range, cfg.Range))
		}
		return nil
	})
	g.Go(func() error {
		return reportProgress(gctx, done, s.Progress, feed, flags.quiet)
	})
	if feed != nil {
		ln, err := net.Listen("tcp", cfg.Watch)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Could not listen for -watch:", err)
			os.Exit(1)
		}
		logger.Printf("watch: serving on ws://%s/", ln.Addr())
		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	// The search itself cannot fail, so wait for it before the server group
	<-done
	elapsed := time.Since(started)

	rep := afkslime.Report{
		Seed:       seed,
		SeedText:   string(cfg.Seed),
		Range:      cfg.Range,
		Candidates: int(s.Progress.Total()),
		Elapsed:    elapsed,
		Top:        afkslime.Top(results, cfg.Top),
	}
	if best, ok := afkslime.Best(results); ok {
		rep.Best = best
		rep.Slime = cpu.World(seed).SlimeAround(best.Center(), mask)
	}
	if !flags.quiet {
		logger.Printf("searched %s centers in %v", humanize.Comma(int64(rep.Candidates)), elapsed.Round(time.Millisecond))
	}

	if feed != nil {
		if err := feed.Publish(watch.NewResultMsg(rep)); err != nil {
			logger.Printf("watch: %v", err)
		}
		feed.Close()
		if !feed.Wait(5 * time.Second) {
			logger.Printf("watch: clients still connected, closing anyway")
		}
		_ = srv.Close()
	}

	exitCode := 0
	if err := formatters[cfg.Format](os.Stdout, rep); err != nil {
		exitCode = 1
	}

	if cfg.Export != "" {
		if err := export.WriteResults(cfg.Export, results); err != nil {
			logger.Printf("export: %v", err)
			exitCode = 1
		} else if fi, err := os.Stat(cfg.Export); err == nil {
			logger.Printf("exported %s results to %s (%s)", humanize.Comma(int64(len(results))), cfg.Export, humanize.Bytes(uint64(fi.Size())))
		}
	}

	if db != nil {
		run := &store.Run{StartedAt: started, Radius: afkslime.DespawnRadius, Threshold: cfg.Threshold, Report: rep}
		if err := db.RecordRun(ctx, run); err != nil {
			logger.Printf("store: %v", err)
			exitCode = 1
		} else {
			logger.Printf("recorded run %s", run.ID)
		}
	}

	if err := g.Wait(); err != nil {
		logger.Printf("%v", err)
		exitCode = 1
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func reportProgress(ctx context.Context, done <-chan struct{}, p *afkslime.Progress, feed *watch.Server, quiet bool) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			if !quiet {
				fmt.Fprintln(os.Stderr)
			}
			return nil
		case <-ticker.C:
			if feed != nil {
				_ = feed.Publish(watch.NewProgressMsg(p))
			}
			if !quiet {
				fmt.Fprintf(os.Stderr, "\r%s / %s centers (%.1f%%)",
					humanize.Comma(int64(p.Done())), humanize.Comma(int64(p.Total())), 100*p.Fraction())
			}
		}
	}
}

func printHistory(ctx context.Context, db *store.Store) error {
	runs, err := db.ListRuns(ctx, 20)
	if err != nil {
		return err
	}
	for _, run := range runs {
		rep := run.Report
		fmt.Printf("%s  %-12s seed %-24s range %-6d best %v %3d chunks\n",
			shortID(run.ID), humanize.Time(run.StartedAt), rep.SeedLabel(), rep.Range, rep.Best.Center(), rep.Best.Count)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
