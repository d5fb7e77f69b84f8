package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mdevolde/trace-analyzer/internal/activity"
	"github.com/mdevolde/trace-analyzer/internal/fsutil"
	"github.com/mdevolde/trace-analyzer/internal/monitoring"
	"github.com/mdevolde/trace-analyzer/internal/timeutil"
)

// Resolver maps a canonical hardware address to a device identity.
// *directory.Directory satisfies it.
type Resolver interface {
	Lookup(addr string) (string, bool)
}

// AnalyzerConfig configures an Analyzer. Zero values select defaults.
type AnalyzerConfig struct {
	// Location hours are derived in. Defaults to UTC.
	Location *time.Location

	// ProgressInterval is the number of records between progress log lines.
	// Zero disables progress logging.
	ProgressInterval int

	// FS is used by AnalyzeFile. Defaults to the OS filesystem.
	FS fsutil.FileSystem

	// Clock times each capture for diagnostics. Defaults to the real clock.
	Clock timeutil.Clock
}

// Stats summarises one capture pass.
type Stats struct {
	Records int // records read
	Frames  int // records decoded as Ethernet frames
	Skipped int // records that were not decodable frames
	Events  int // activity events emitted to the sink
}

// Analyzer drives capture sources through the frame decoder and directory
// lookups. An Analyzer holds no per-capture state and may be reused.
type Analyzer struct {
	resolver Resolver
	cfg      AnalyzerConfig
}

// NewAnalyzer creates an Analyzer resolving addresses with r.
func NewAnalyzer(r Resolver, cfg AnalyzerConfig) *Analyzer {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.FS == nil {
		cfg.FS = fsutil.OSFileSystem{}
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	return &Analyzer{resolver: r, cfg: cfg}
}

// AnalyzeFile opens path and analyses it into sink.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, sink activity.Sink) (Stats, error) {
	r, err := OpenFile(a.cfg.FS, path)
	if err != nil {
		return Stats{}, err
	}
	defer r.Close()

	monitoring.Infof("Analyzing PCAP file: %s", path)
	stats, err := a.Analyze(ctx, r, sink)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", path, err)
	}
	return stats, nil
}

// Analyze reads r to the end. For every decodable frame the source and
// destination addresses are resolved independently and each hit is recorded
// in sink, so one frame yields zero, one or two events.
func (a *Analyzer) Analyze(ctx context.Context, r Reader, sink activity.Sink) (Stats, error) {
	var stats Stats
	start := a.cfg.Clock.Now()
	linkType := r.LinkType()

	for {
		if err := ctx.Err(); err != nil {
			monitoring.Infof("capture analysis stopping due to context cancellation (processed %d records)", stats.Records)
			return stats, err
		}

		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			monitoring.Warnf("capture truncated after %d records", stats.Records)
			break
		}
		if err != nil {
			return stats, fmt.Errorf("%w: record %d: %v", ErrUnreadableCapture, stats.Records+1, err)
		}
		stats.Records++

		frame, ok, err := DecodeFrame(rec, linkType, a.cfg.Location)
		if err != nil {
			return stats, fmt.Errorf("record %d: %w", stats.Records, err)
		}
		if !ok {
			stats.Skipped++
			continue
		}
		stats.Frames++

		if device, ok := a.resolver.Lookup(frame.Source); ok {
			sink.Record(device, frame.Hour)
			stats.Events++
			monitoring.Debugf("Device '%s' sent data at hour %d", device, frame.Hour)
		}
		if device, ok := a.resolver.Lookup(frame.Destination); ok {
			sink.Record(device, frame.Hour)
			stats.Events++
			monitoring.Debugf("Device '%s' received data at hour %d", device, frame.Hour)
		}

		if a.cfg.ProgressInterval > 0 && stats.Records%a.cfg.ProgressInterval == 0 {
			elapsed := a.cfg.Clock.Since(start)
			monitoring.Infof("capture progress: %d records processed in %v", stats.Records, elapsed)
		}
	}

	monitoring.Debugf("capture complete: %d records, %d frames, %d skipped, %d events in %v",
		stats.Records, stats.Frames, stats.Skipped, stats.Events, a.cfg.Clock.Since(start))
	return stats, nil
}
