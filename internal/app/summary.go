package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/mdevolde/trace-analyzer/internal/activity"
	"github.com/mdevolde/trace-analyzer/internal/store"
)

const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorGray  = "\033[90m"
)

// colorEnabled reports whether w is a terminal and NO_COLOR is unset.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// summarize renders one row per label: total events, peak hour and a 24-cell
// activity strip where '#' marks an active hour.
func summarize(res *result, color bool) string {
	var sb strings.Builder

	header := "LABEL"
	if res.mode == store.ModeMedian {
		header = "DEVICE (median)"
	}
	sb.WriteString(fmt.Sprintf("%-24s %8s %5s  %s\n", header, "EVENTS", "PEAK", hourRuler()))

	var rows map[string][activity.HoursPerDay]int
	var labels []string
	if res.mode == store.ModeMedian {
		rows = map[string][activity.HoursPerDay]int{res.device: res.profile}
		labels = []string{res.device}
	} else {
		rows = res.series.Histograms()
		labels = res.series.Labels()
	}

	if len(labels) == 0 {
		sb.WriteString("No activity found for the known devices.\n")
		return sb.String()
	}

	for _, label := range labels {
		counts := rows[label]
		total, peak := 0, 0
		for h, c := range counts {
			total += c
			if c > counts[peak] {
				peak = h
			}
		}
		peakCol := fmt.Sprintf("%02d", peak)
		if total == 0 {
			peakCol = "-"
		}
		sb.WriteString(fmt.Sprintf("%-24s %8d %5s  %s\n", truncate(label, 24), total, peakCol, strip(counts, color)))
	}
	sb.WriteString(fmt.Sprintf("%d capture(s) from %s\n", res.files, res.source))
	return sb.String()
}

func hourRuler() string {
	var sb strings.Builder
	for h := 0; h < activity.HoursPerDay; h++ {
		if h%6 == 0 {
			sb.WriteString(fmt.Sprintf("%-6d", h))
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

func strip(counts [activity.HoursPerDay]int, color bool) string {
	var sb strings.Builder
	for _, c := range counts {
		switch {
		case c > 0 && color:
			sb.WriteString(colorGreen + "#" + colorReset)
		case c > 0:
			sb.WriteByte('#')
		case color:
			sb.WriteString(colorGray + "." + colorReset)
		default:
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}
