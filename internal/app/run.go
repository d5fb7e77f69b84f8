package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mdevolde/trace-analyzer/internal/activity"
	"github.com/mdevolde/trace-analyzer/internal/aggregate"
	"github.com/mdevolde/trace-analyzer/internal/capture"
	"github.com/mdevolde/trace-analyzer/internal/config"
	"github.com/mdevolde/trace-analyzer/internal/directory"
	"github.com/mdevolde/trace-analyzer/internal/fsutil"
	"github.com/mdevolde/trace-analyzer/internal/monitoring"
	"github.com/mdevolde/trace-analyzer/internal/render"
	"github.com/mdevolde/trace-analyzer/internal/store"
	"github.com/mdevolde/trace-analyzer/internal/timeutil"
)

// Options mirrors the command line flags.
type Options struct {
	DeviceFile string
	PcapFile   string
	PcapFolder string
	OutputFile string
	Median     bool
	Verbosity  int
	Selected   []string
	ConfigFile string
	DBPath     string
}

// Validate checks flag combinations that need no I/O.
func (o Options) Validate() error {
	if o.Verbosity < monitoring.LevelQuiet || o.Verbosity > monitoring.LevelVerbose {
		return fmt.Errorf("invalid verbosity %d: must be 0, 1 or 2", o.Verbosity)
	}
	if o.DeviceFile == "" {
		return errors.New("a device file is required")
	}
	if o.OutputFile == "" {
		return errors.New("an output file is required")
	}
	switch {
	case o.PcapFile == "" && o.PcapFolder == "":
		return errors.New("one of --pcap-file or --pcap-folder is required")
	case o.PcapFile != "" && o.PcapFolder != "":
		return errors.New("--pcap-file and --pcap-folder are mutually exclusive")
	case o.Median && o.PcapFile != "":
		return errors.New("--median requires --pcap-folder")
	}
	return nil
}

// Runner executes one analysis.
type Runner struct {
	FS    fsutil.FileSystem
	Clock timeutil.Clock
	Out   io.Writer
}

type result struct {
	mode    string
	source  string
	device  string // median mode
	series  activity.Series       // file and daily modes
	profile activity.MedianProfile // median mode
	files   int
}

// Run performs the analysis described by opts. Nothing is written until the
// whole analysis has succeeded.
func (r *Runner) Run(ctx context.Context, opts Options) error {
	r.defaults()

	if err := opts.Validate(); err != nil {
		return err
	}
	monitoring.SetVerbosity(opts.Verbosity)

	if opts.PcapFolder != "" {
		if err := aggregate.ValidateSelection(opts.Selected); err != nil {
			fmt.Fprintln(r.Out, "For folder analysis, please select exactly one device.")
			return err
		}
	}

	cfg := config.DefaultAnalysisConfig()
	if opts.ConfigFile != "" {
		loaded, err := config.LoadAnalysisConfig(opts.ConfigFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	start := r.Clock.Now()
	monitoring.Infof("Starting analysis...")

	dir, err := directory.LoadFile(opts.DeviceFile, directory.LoadOptions{
		Selected:        opts.Selected,
		DuplicatePolicy: cfg.GetDuplicateAddressPolicy(),
		FS:              r.FS,
	})
	if err != nil {
		return err
	}

	analyzer := capture.NewAnalyzer(dir, capture.AnalyzerConfig{
		Location:         cfg.GetReferenceLocation(),
		ProgressInterval: cfg.GetProgressInterval(),
		FS:               r.FS,
		Clock:            r.Clock,
	})
	agg := aggregate.New(analyzer, aggregate.Config{
		Extensions: cfg.GetCaptureExtensions(),
		FS:         r.FS,
	})

	res, err := r.analyze(ctx, agg, opts)
	if err != nil {
		return err
	}

	renderer := render.New(render.Options{
		WidthPx:  cfg.GetChartWidthPx(),
		HeightPx: cfg.GetChartHeightPx(),
		FS:       r.FS,
	})
	switch res.mode {
	case store.ModeMedian:
		err = renderer.Median(res.profile, opts.OutputFile, cfg.GetMedianTitle(), res.device)
	case store.ModeDaily:
		err = renderer.Comparative(res.series, opts.OutputFile, cfg.GetDailyTitle())
	default:
		err = renderer.Comparative(res.series, opts.OutputFile, cfg.GetComparativeTitle())
	}
	if err != nil {
		return err
	}
	monitoring.Infof("Graph saved to %s", opts.OutputFile)

	if opts.DBPath != "" {
		if err := r.record(opts, res); err != nil {
			return err
		}
	}

	if monitoring.Enabled(monitoring.LevelInfo) {
		fmt.Fprint(r.Out, summarize(res, colorEnabled(r.Out)))
	}
	monitoring.Infof("Analysis completed in %s", r.Clock.Since(start).Round(time.Millisecond))
	return nil
}

func (r *Runner) defaults() {
	if r.FS == nil {
		r.FS = fsutil.OSFileSystem{}
	}
	if r.Clock == nil {
		r.Clock = timeutil.RealClock{}
	}
	if r.Out == nil {
		r.Out = os.Stdout
	}
}

func (r *Runner) analyze(ctx context.Context, agg *aggregate.Aggregator, opts Options) (*result, error) {
	switch {
	case opts.PcapFile != "":
		series, err := agg.File(ctx, opts.PcapFile)
		if err != nil {
			return nil, err
		}
		return &result{mode: store.ModeFile, source: opts.PcapFile, series: series, files: 1}, nil

	case opts.Median:
		samples, err := agg.Median(ctx, opts.PcapFolder)
		if err != nil {
			return nil, err
		}
		return &result{
			mode:    store.ModeMedian,
			source:  opts.PcapFolder,
			device:  opts.Selected[0],
			profile: activity.ReduceMedians(samples),
			files:   samples.Files(),
		}, nil

	default:
		series, err := agg.Comparative(ctx, opts.PcapFolder)
		if err != nil {
			return nil, err
		}
		files, err := agg.CaptureFiles(opts.PcapFolder)
		if err != nil {
			return nil, err
		}
		return &result{mode: store.ModeDaily, source: opts.PcapFolder, series: series, files: len(files)}, nil
	}
}

func (r *Runner) record(opts Options, res *result) error {
	s, err := store.Open(opts.DBPath, r.Clock)
	if err != nil {
		return fmt.Errorf("failed to open result store: %w", err)
	}
	defer s.Close()

	var runID string
	if res.mode == store.ModeMedian {
		runID, err = s.RecordMedian(res.source, res.device, res.profile)
	} else {
		runID, err = s.RecordSeries(res.mode, res.source, opts.Selected, res.series)
	}
	if err != nil {
		return fmt.Errorf("failed to record results: %w", err)
	}
	monitoring.Infof("Results recorded as run %s in %s", runID, opts.DBPath)
	return nil
}
