// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ManuGH/recsched/internal/dvr"
	"github.com/ManuGH/recsched/internal/epg"
	xglog "github.com/ManuGH/recsched/internal/log"
	"github.com/ManuGH/recsched/internal/metrics"
)

// importResult summarises one import run.
type importResult struct {
	Matched   int
	Scheduled int
	Rejected  int
}

func runImportCLI(args []string) int {
	return runImport(context.Background(), args, os.Stdout, os.Stderr)
}

func runImport(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("import-xmltv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config file (YAML)")
	channel := fs.String("channel", "", "only programmes of this channel (id or display name)")
	fuzzy := fs.Int("fuzzy", 2, "maximum edit distance when matching -channel against display names")
	dryRun := fs.Bool("dry-run", false, "list matching programmes without scheduling")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: daemon import-xmltv [flags] <file> [title-substring]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	tv, err := readXMLTVFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error reading XMLTV: %v\n", err)
		return 1
	}

	filter := epg.Filter{Title: fs.Arg(1), After: time.Now()}
	if *channel != "" {
		id, ok := resolveChannel(tv, *channel, *fuzzy)
		if !ok {
			fmt.Fprintf(stderr, "Error: channel %q not found in %s\n", *channel, fs.Arg(0))
			return 1
		}
		filter.Channel = id
	}

	if *dryRun {
		for _, p := range tv.Select(filter) {
			fmt.Fprintf(stdout, "%s\t%s\t%dm\t%s\n", p.Channel, p.Start, p.LengthMinutes(), p.Title.Value)
		}
		return 0
	}

	sched, store, err := openScheduler(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening scheduler: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	res := scheduleProgrammes(ctx, sched, tv.Select(filter))
	fmt.Fprintf(stdout, "matched %d programmes: %d scheduled, %d rejected\n", res.Matched, res.Scheduled, res.Rejected)
	return 0
}

func readXMLTVFile(path string) (*epg.TV, error) {
	// path comes from the operator's command line
	f, err := os.Open(filepath.Clean(path)) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return epg.ReadXMLTV(f)
}

// resolveChannel accepts a channel id verbatim, otherwise the closest display name.
func resolveChannel(tv *epg.TV, name string, maxDist int) (string, bool) {
	for _, ch := range tv.Channels {
		if ch.ID == name {
			return ch.ID, true
		}
	}
	return epg.FindBest(name, tv.NameToID(), maxDist)
}

func scheduleProgrammes(ctx context.Context, sched *dvr.Scheduler, programmes []epg.Programme) importResult {
	logger := xglog.WithComponent("import")
	res := importResult{Matched: len(programmes)}
	for _, p := range programmes {
		ok := sched.AddProgram(ctx, p)
		metrics.IncXMLTVImport(ok)
		if ok {
			res.Scheduled++
			continue
		}
		res.Rejected++
		logger.Debug().
			Str(xglog.FieldChannelID, p.Channel).
			Str(xglog.FieldStart, p.Start).
			Str("title", p.Title.Value).
			Msg("programme not scheduled")
	}
	return res
}
