package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"

	"osutimeline/dotosu"
)

// WriteReport prints a one-line summary of b and, with events, its timeline.
func WriteReport(w io.Writer, path string, b *dotosu.Beatmap, events bool) error {
	counts := map[dotosu.ObjectKind]int{}
	for _, ev := range b.Events() {
		counts[ev.Kind]++
	}

	length := "-"
	end, err := b.EndTimeMs()
	switch {
	case errors.Is(err, dotosu.ErrEmptyBeatmap):
	case err != nil:
		return err
	default:
		length = durafmt.Parse(time.Duration(end) * time.Millisecond).LimitFirstN(2).String()
	}

	if _, err := fmt.Fprintf(w, "%s: v%d, lead-in %dms, %s events (%s circles, %s sliders, %s spinners), length %s\n",
		path, b.FormatVersion(), b.LeadIn(),
		humanize.Comma(int64(b.Len())),
		humanize.Comma(int64(counts[dotosu.KindCircle])),
		humanize.Comma(int64(counts[dotosu.KindSlider])),
		humanize.Comma(int64(counts[dotosu.KindSpinner])),
		length,
	); err != nil {
		return err
	}
	if !events {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tkind\tstart ms\tduration ms\tend ms\t")
	for i, ev := range b.Events() {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t\n", i+1, ev.Kind, ev.StartTimeMs, ev.DurationMs, ev.EndTimeMs())
	}
	return tw.Flush()
}
