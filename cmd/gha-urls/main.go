// gha-urls emits the full list of GH Archive hour URLs for a date range,
// shuffled so concurrent scrape runs spread their load across the years
package main

import (
	"bufio"
	"flag"
	"math/rand"
	"os"
	"time"

	"github.com/carlospolop/github-archive-scraper/internal/adapters/ingest/gharchive"
	"github.com/carlospolop/github-archive-scraper/internal/platform/logger"
)

const dayFormat = "2006-01-02"

func main() {
	var (
		fOut   = flag.String("o", "gh_urls.txt", "output file for the URL list")
		fStart = flag.String("start", "2015-01-01", "first day (UTC), inclusive")
		fEnd   = flag.String("end", "", "last day (UTC), inclusive; empty = today")
		fSort  = flag.Bool("sorted", false, "keep chronological order instead of shuffling")
	)
	flag.Parse()

	l := logger.Get()

	start, err := time.Parse(dayFormat, *fStart)
	if err != nil {
		l.Fatal().Err(err).Msg("bad -start")
	}
	end := time.Now().UTC().Truncate(time.Hour)
	if *fEnd != "" {
		d, err := time.Parse(dayFormat, *fEnd)
		if err != nil {
			l.Fatal().Err(err).Msg("bad -end")
		}
		end = d.Add(23 * time.Hour)
	}
	if end.Before(start) {
		l.Fatal().Str("start", *fStart).Str("end", *fEnd).Msg("-end before -start")
	}

	var refs []gharchive.ShardRef
	for t := start; !t.After(end); t = t.Add(time.Hour) {
		refs = append(refs, gharchive.NewHourRef(t).Shard())
	}
	if !*fSort {
		rand.Shuffle(len(refs), func(i, j int) { refs[i], refs[j] = refs[j], refs[i] })
	}

	f, err := os.Create(*fOut)
	if err != nil {
		l.Fatal().Err(err).Str("file", *fOut).Msg("failed to create output file")
	}
	w := bufio.NewWriter(f)
	for _, ref := range refs {
		if _, err := w.WriteString(ref.String() + "\n"); err != nil {
			l.Fatal().Err(err).Msg("failed to write URL list")
		}
	}
	if err := w.Flush(); err != nil {
		l.Fatal().Err(err).Msg("failed to flush URL list")
	}
	if err := f.Close(); err != nil {
		l.Fatal().Err(err).Msg("failed to close URL list")
	}

	l.Info().Int("urls", len(refs)).Str("file", *fOut).Msg("url list written")
}
