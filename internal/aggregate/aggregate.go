// Package aggregate runs the capture analyzer over single captures and
// capture folders and merges the per-file results.
//
// Each capture gets a fresh accumulator; once the file completes its result
// is merged into the aggregate and the accumulator is discarded. Files are
// processed one at a time.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mdevolde/trace-analyzer/internal/activity"
	"github.com/mdevolde/trace-analyzer/internal/capture"
	"github.com/mdevolde/trace-analyzer/internal/fsutil"
	"github.com/mdevolde/trace-analyzer/internal/monitoring"
)

var (
	// ErrInvalidSelection is returned when folder analysis is requested
	// without exactly one selected device.
	ErrInvalidSelection = errors.New("for folder analysis, please select exactly one device")
	// ErrUnreadableFolder is returned when the capture folder cannot be listed.
	ErrUnreadableFolder = errors.New("unreadable capture folder")
)

// ValidateSelection checks the device selection of a folder run. It performs
// no I/O and must be called before any capture is opened.
func ValidateSelection(selected []string) error {
	if len(selected) != 1 {
		return fmt.Errorf("%w (got %d)", ErrInvalidSelection, len(selected))
	}
	return nil
}

// Config configures an Aggregator.
type Config struct {
	// Extensions lists the capture file extensions, lowercase with the
	// leading dot. Defaults to ".pcap".
	Extensions []string

	// FS defaults to the OS filesystem. It should be the filesystem the
	// analyzer opens captures from.
	FS fsutil.FileSystem
}

// Aggregator drives an Analyzer over one or many capture files.
type Aggregator struct {
	analyzer   *capture.Analyzer
	fs         fsutil.FileSystem
	extensions map[string]struct{}
}

// New creates an Aggregator around analyzer.
func New(analyzer *capture.Analyzer, cfg Config) *Aggregator {
	if cfg.FS == nil {
		cfg.FS = fsutil.OSFileSystem{}
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".pcap"}
	}
	exts := make(map[string]struct{}, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}
	return &Aggregator{analyzer: analyzer, fs: cfg.FS, extensions: exts}
}

// File analyses one capture and returns the hours per device.
func (a *Aggregator) File(ctx context.Context, path string) (activity.Series, error) {
	seq := activity.NewDeviceSequences()
	if _, err := a.analyzer.AnalyzeFile(ctx, path, seq); err != nil {
		return nil, err
	}
	return seq.ByDevice(), nil
}

// Comparative analyses every capture in folder. Each file contributes one
// entry keyed by its base name without extension, holding every hour observed
// in that file. Files without any matching event are omitted.
func (a *Aggregator) Comparative(ctx context.Context, folder string) (activity.Series, error) {
	files, err := a.CaptureFiles(folder)
	if err != nil {
		return nil, err
	}

	monitoring.Infof("Analyzing PCAP files in folder: %s", folder)
	daily := make(activity.Series)
	for _, path := range files {
		seq := activity.NewDeviceSequences()
		if _, err := a.analyzer.AnalyzeFile(ctx, path, seq); err != nil {
			return nil, err
		}
		if seq.Events() == 0 {
			monitoring.Debugf("no activity in %s, omitting", path)
			continue
		}
		label := DayLabel(path)
		daily[label] = append(daily[label], seq.Hours()...)
	}
	monitoring.Infof("Finished analyzing folder.")
	return daily, nil
}

// Median analyses every capture in folder and contributes, per file, one
// count to each of the 24 hourly buckets (0 for idle hours).
func (a *Aggregator) Median(ctx context.Context, folder string) (activity.HourlySamples, error) {
	files, err := a.CaptureFiles(folder)
	if err != nil {
		return nil, err
	}

	monitoring.Infof("Analyzing PCAP files in folder for median: %s", folder)
	samples := activity.NewHourlySamples()
	for _, path := range files {
		counter := activity.NewHourlyCounter()
		if _, err := a.analyzer.AnalyzeFile(ctx, path, counter); err != nil {
			return nil, err
		}
		samples.Add(counter.Counts())
	}
	monitoring.Infof("Finished analyzing folder for median.")
	return samples, nil
}

// CaptureFiles lists the regular files of folder whose extension is a
// capture extension, in lexical order. Other entries are ignored.
func (a *Aggregator) CaptureFiles(folder string) ([]string, error) {
	info, err := a.fs.Stat(folder)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFolder, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrUnreadableFolder, folder)
	}

	entries, err := a.fs.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFolder, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := a.extensions[strings.ToLower(filepath.Ext(e.Name()))]; !ok {
			continue
		}
		files = append(files, filepath.Join(folder, e.Name()))
	}
	return files, nil
}

// DayLabel derives a day label from a capture path: its base name without
// the final extension.
func DayLabel(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
