// Package render draws hourly activity charts.
//
// The output format follows the file extension: .html produces an
// interactive go-echarts page, any image extension understood by gonum/plot
// (.png, .svg, .pdf, .jpg, .tif, .eps) produces a static line chart.
package render

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/mdevolde/trace-analyzer/internal/activity"
	"github.com/mdevolde/trace-analyzer/internal/fsutil"
	"github.com/mdevolde/trace-analyzer/internal/monitoring"
)

// Options configures a Renderer. Zero values select defaults.
type Options struct {
	WidthPx  int
	HeightPx int
	FS       fsutil.FileSystem
}

// Renderer writes charts to files.
type Renderer struct {
	width  int
	height int
	fs     fsutil.FileSystem
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	r := &Renderer{width: opts.WidthPx, height: opts.HeightPx, fs: opts.FS}
	if r.width <= 0 {
		r.width = 1280
	}
	if r.height <= 0 {
		r.height = 720
	}
	if r.fs == nil {
		r.fs = fsutil.OSFileSystem{}
	}
	return r
}

// series is one line of a chart: a label and its 24 hourly values.
type series struct {
	label  string
	values [activity.HoursPerDay]int
}

// chart is the format-independent description of a figure.
type chart struct {
	title  string
	lines  []series
	yMax   int
	width  int
	height int
}

// Comparative draws one line per label of s, each the hourly histogram of
// that label's hours.
func (r *Renderer) Comparative(s activity.Series, path, title string) error {
	hist := s.Histograms()
	c := r.newChart(title)
	for _, label := range s.Labels() {
		c.lines = append(c.lines, series{label: label, values: hist[label]})
	}
	c.yMax = axisMax(c.lines)
	if err := r.write(path, c); err != nil {
		return err
	}
	monitoring.Infof("Generated graph: %s", path)
	return nil
}

// Median draws the median profile of device as a single line.
func (r *Renderer) Median(profile activity.MedianProfile, path, title, device string) error {
	c := r.newChart(title)
	c.lines = []series{{label: device, values: profile}}
	c.yMax = axisMax(c.lines)
	if err := r.write(path, c); err != nil {
		return err
	}
	monitoring.Infof("Generated median graph: %s", path)
	return nil
}

func (r *Renderer) newChart(title string) *chart {
	return &chart{title: title, width: r.width, height: r.height}
}

func (r *Renderer) write(path string, c *chart) error {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format == "" {
		return fmt.Errorf("output file %q has no extension", path)
	}

	var writeTo func(io.Writer, *chart) error
	switch format {
	case "html", "htm":
		writeTo = writeHTML
	default:
		if !imageFormats[format] {
			return fmt.Errorf("unsupported output format %q", format)
		}
		writeTo = func(w io.Writer, c *chart) error { return writeImage(w, c, format) }
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := r.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	f, err := r.fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := writeTo(f, c); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}

// axisMax rounds the largest value up to the next multiple of 10, with a
// floor of 10 so an idle chart still has a visible axis.
func axisMax(lines []series) int {
	var values []float64
	for _, l := range lines {
		for _, v := range l.values {
			values = append(values, float64(v))
		}
	}
	if len(values) == 0 {
		return 10
	}
	top := int(floats.Max(values))
	top = ((top + 9) / 10) * 10
	if top == 0 {
		return 10
	}
	return top
}
